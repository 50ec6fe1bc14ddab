package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"declutter/internal/config"
	"declutter/internal/pipeline"
	"declutter/internal/report"
	"declutter/internal/stage"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag    string
		logLevelFlag  string
		logFormatFlag string
		destFlag      string
		dryRun        bool
		jsonOut       bool
	)

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:           "declutter [folder]",
		Short:         "Sort a folder into category directories, expand its archives, and sweep empty directories",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runOnce(cmd, ctx, args[0], destFlag, dryRun, jsonOut)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	rootCmd.Flags().StringVarP(&destFlag, "dest", "d", "", "Destination root for category directories (defaults to the folder itself)")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Log planned moves without touching the disk")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func runOnce(cmd *cobra.Command, ctx *commandContext, folder, dest string, dryRun, jsonOut bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyDestination(cfg, dest); err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(cmd.Context(), cfg, logger, pipeline.Options{Source: folder, DryRun: dryRun})
	if err != nil {
		if errors.Is(err, stage.ErrNotFound) {
			return errors.New("Folder does not exist")
		}
		return err
	}
	recordHistory(cmd.Context(), logger, summary)

	var renderer report.Renderer = report.TableRenderer{}
	if jsonOut {
		renderer = report.JSONRenderer{}
	}
	out := cmd.OutOrStdout()
	if err := renderer.Render(out, summary); err != nil {
		return err
	}
	if !jsonOut && summary.Clean() {
		fmt.Fprintln(out, "All ok")
	}
	return nil
}

// applyDestination overrides the configured destination with the --dest
// flag, tilde-expanded.
func applyDestination(cfg *config.Config, dest string) error {
	if strings.TrimSpace(dest) == "" {
		return nil
	}
	expanded, err := config.ExpandPath(dest)
	if err != nil {
		return err
	}
	cfg.Organize.DestinationDir = expanded
	return nil
}
