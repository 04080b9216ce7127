package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/resolver"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := newClient().ListIncidents(cmd.Context())
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")

		views := make([]resolver.View, 0, len(docs))
		for _, doc := range docs {
			if status != "" && !strings.EqualFold(doc.Status, status) {
				continue
			}
			views = append(views, resolver.NewView(doc))
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), views)
		}
		printViewTable(cmd.OutOrStdout(), views)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an incident by primary key, business id or legacy id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, history, err := resolveIncident(cmd.Context(), newClient(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		printRedirect(cmd.OutOrStdout(), history)
		printView(cmd.OutOrStdout(), view)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change incident status (" + quickStatusList() + ")",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		view, _, err := resolveIncident(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}

		updated, err := resolver.NewStatusUpdater(c, nil).Apply(cmd.Context(), view.Document, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", view.DisplayID, view.Document.Status, updated.Status)
		return nil
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Assign duty staff and action time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		staff, _ := cmd.Flags().GetString("staff")
		actionTime, _ := cmd.Flags().GetString("time")
		if actionTime == "" {
			actionTime = time.Now().Format(time.RFC3339)
		}

		c := newClient()
		view, _, err := resolveIncident(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		updated, err := c.UpdateStaffAndTime(cmd.Context(), view.CanonicalID, staff, actionTime)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s assigned to %s at %s\n", view.DisplayID, updated.Officer, updated.ActionTime)
		return nil
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <id>",
	Short: "Show status transitions of an incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transitions, err := newClient().Timeline(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), transitions)
		}
		printTimeline(cmd.OutOrStdout(), transitions)
		return nil
	},
}

func init() {
	listCmd.Flags().String("status", "", "only incidents with this status")
	assignCmd.Flags().String("staff", "", "duty staff name")
	assignCmd.Flags().String("time", "", "action time (default now)")
	_ = assignCmd.MarkFlagRequired("staff")

	rootCmd.AddCommand(listCmd, showCmd, statusCmd, assignCmd, timelineCmd)
}

// resolveIncident проходит протокол страницы инцидента до первого окончательного состояния
func resolveIncident(ctx context.Context, c *client.Client, routeID string) (*resolver.View, []string, error) {
	results := make(chan resolver.Result, 16)
	page := resolver.NewPage(c, resolver.NewBus(), func(res resolver.Result) {
		select {
		case results <- res:
		default:
		}
	}, resolver.WithLogger(log))
	defer page.Close()

	page.Open(routeID)
	for {
		select {
		case <-ctx.Done():
			return nil, page.History(), ctx.Err()
		case res := <-results:
			switch res.State {
			case resolver.StateReady:
				return res.View, page.History(), nil
			case resolver.StateNotFound:
				return nil, page.History(), fmt.Errorf("incident %q not found", routeID)
			}
		}
	}
}

func quickStatusList() string {
	parts := make([]string, len(resolver.QuickStatuses))
	for i, s := range resolver.QuickStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ") + ", or " + string(models.StatusAssigned)
}
