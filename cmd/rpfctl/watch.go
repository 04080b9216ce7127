package main

import (
	"fmt"

	"github.com/shenikar/railguard/internal/resolver"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Follow live incident updates, optionally keeping one incident on screen",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := newClient()
		out := cmd.OutOrStdout()
		bus := resolver.NewBus()

		if len(args) == 1 {
			page := resolver.NewPage(c, bus, func(res resolver.Result) {
				switch res.State {
				case resolver.StateReady:
					printView(out, res.View)
				case resolver.StateRedirecting:
					fmt.Fprintf(out, "%s -> %s\n", res.RouteID, res.RedirectTo)
				case resolver.StateNotFound:
					fmt.Fprintf(out, "incident %q not found\n", res.RouteID)
				}
			}, resolver.WithLogger(log))
			defer page.Close()
			page.Open(args[0])
		}

		updates, errs := c.StreamUpdates(ctx)
		log.Debug("Subscribed to incident updates")
		for event := range updates {
			if len(args) == 0 {
				fmt.Fprintf(out, "%s updated %s\n", event.ID, event.Status)
			}
			bus.Publish(event)
		}

		if err, ok := <-errs; ok && err != nil {
			return err
		}
		// остановка по Ctrl-C не ошибка
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
