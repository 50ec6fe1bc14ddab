package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"declutter/internal/history"
	"declutter/internal/logging"
	"declutter/internal/pipeline"
)

func newHistoryCommand() *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Started", "Source", "Moved", "Extracted", "Pruned", "Status"})
			for _, entry := range entries {
				tw.AppendRow(table.Row{
					entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
					entry.Source,
					strconv.Itoa(entry.Moved),
					strconv.Itoa(entry.Extracted),
					strconv.Itoa(entry.Pruned),
					entryStatus(entry),
				})
			}
			fmt.Fprintln(out, tw.Render())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print history as JSON")
	return cmd
}

func entryStatus(entry history.Entry) string {
	switch {
	case entry.DryRun:
		return "dry run"
	case entry.Clean():
		return "ok"
	default:
		return fmt.Sprintf("%d failure(s)", entry.MoveFailures+len(entry.FailedArchives))
	}
}

// recordHistory appends the summary to the local run log. History is
// best-effort; a failure is logged and the run still counts as successful.
func recordHistory(ctx context.Context, logger *slog.Logger, summary *pipeline.Summary) {
	path, err := history.DefaultPath()
	if err == nil {
		var store *history.Store
		if store, err = history.Open(path); err == nil {
			err = store.RecordRun(ctx, summary)
			if closeErr := store.Close(); err == nil {
				err = closeErr
			}
		}
	}
	if err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}
