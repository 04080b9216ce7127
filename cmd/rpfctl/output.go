package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/internal/resolver"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatWhen(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printViewTable(w io.Writer, views []resolver.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSTATION\tISSUE\tPHONE\tREPORTED")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.DisplayID, v.Document.Status, dash(v.Document.Station), dash(v.Document.IssueType),
			v.PhoneLabel(), formatWhen(v.Date))
	}
	_ = tw.Flush()
}

func printView(w io.Writer, v *resolver.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Incident:\t%s\n", v.DisplayID)
	fmt.Fprintf(tw, "Key:\t%s\n", v.CanonicalID)
	fmt.Fprintf(tw, "Status:\t%s\n", v.Document.Status)
	fmt.Fprintf(tw, "Issue:\t%s\n", dash(v.Document.IssueType))
	fmt.Fprintf(tw, "Station:\t%s\n", dash(v.Document.Station))
	fmt.Fprintf(tw, "Phone:\t%s\n", v.PhoneLabel())
	fmt.Fprintf(tw, "Reported:\t%s\n", formatWhen(v.Date))
	fmt.Fprintf(tw, "Officer:\t%s\n", dash(v.Document.Officer))
	fmt.Fprintf(tw, "Action time:\t%s\n", dash(v.Document.ActionTime))
	if v.Document.AudioURL != "" {
		fmt.Fprintf(tw, "Audio:\t%s\n", v.Document.AudioURL)
	}
	_ = tw.Flush()
}

func printRedirect(w io.Writer, history []string) {
	if len(history) > 1 {
		fmt.Fprintf(w, "(%s resolved to %s)\n", history[0], history[len(history)-1])
	}
}

func printTimeline(w io.Writer, transitions []client.Transition) {
	if len(transitions) == 0 {
		fmt.Fprintln(w, "no status changes recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFROM\tTO")
	for _, t := range transitions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ChangedAt.Local().Format(time.RFC3339), t.FromStatus, t.ToStatus)
	}
	_ = tw.Flush()
}
