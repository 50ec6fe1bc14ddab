package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"declutter/internal/config"
	"declutter/internal/logging"
	"declutter/internal/pipeline"
	"declutter/internal/stage"
	"declutter/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		destFlag string
		settle   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Keep a folder organized, sweeping it whenever new files settle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyDestination(cfg, destFlag); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			folder, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Fatal problems stop the watch; anything else is logged and
			// retried on the next sweep.
			runner := func(runCtx context.Context) error {
				summary, err := pipeline.Run(runCtx, cfg, logger, pipeline.Options{Source: folder})
				if err != nil {
					if stage.Fatal(err) {
						return err
					}
					logger.Error("sweep failed", logging.Error(err))
					return nil
				}
				recordHistory(runCtx, logger, summary)
				return nil
			}

			err = watch.New(folder, settle, runner, logger).Watch(signalCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "Destination root for category directories (defaults to the folder itself)")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Quiet period before a sweep runs")
	return cmd
}
