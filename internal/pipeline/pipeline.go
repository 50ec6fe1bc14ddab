// Package pipeline sequences the organize, unpack, and prune phases over a
// single source tree, guarded by a per-tree run lock, and reports what the
// run did.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"declutter/internal/config"
	"declutter/internal/fileutil"
	"declutter/internal/logging"
	"declutter/internal/organize"
	"declutter/internal/prune"
	"declutter/internal/stage"
	"declutter/internal/unpack"
)

// Options select what a single run operates on.
type Options struct {
	// Source is the directory to organize.
	Source string

	// DryRun logs the moves the organize phase would make and skips the
	// unpack and prune phases entirely.
	DryRun bool
}

// Run executes one full pass: relocate files into category directories,
// expand archives under the destination, then sweep empty directories.
// Per-file and per-archive failures are recorded in the Summary without
// aborting the run; only precondition and walk failures return an error.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Summary, error) {
	plog := logging.NewComponentLogger(logger, "pipeline")

	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, stage.Wrap(stage.ErrValidation, "pipeline", "resolve source path", opts.Source, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stage.Wrap(stage.ErrNotFound, "pipeline", "check source", "folder does not exist", err)
		}
		return nil, stage.Wrap(stage.ErrTransient, "pipeline", "check source", "unable to inspect source", err)
	}
	if !info.IsDir() {
		return nil, stage.Wrap(stage.ErrValidation, "pipeline", "check source", "path is not a folder", nil)
	}

	destination := cfg.Organize.DestinationDir
	if destination == "" {
		destination = source
	} else if destination, err = filepath.Abs(destination); err != nil {
		return nil, stage.Wrap(stage.ErrValidation, "pipeline", "resolve destination path", cfg.Organize.DestinationDir, err)
	}

	table, err := cfg.CategoryTable()
	if err != nil {
		return nil, stage.Wrap(stage.ErrConfiguration, "pipeline", "build category table", "invalid category configuration", err)
	}

	lock, err := acquireRunLock(source)
	if err != nil {
		return nil, err
	}
	defer lock.release(plog)

	ctx = stage.WithRunID(ctx, uuid.NewString())
	runID, _ := stage.RunIDFromContext(ctx)
	rlog := logging.WithContext(ctx, plog)

	summary := &Summary{
		RunID:       runID,
		Source:      source,
		Destination: destination,
		DryRun:      opts.DryRun,
		StartedAt:   time.Now(),
		ByCategory:  make(map[string]int),
	}

	rlog.Info("run started",
		logging.String(logging.FieldPath, source),
		logging.String(logging.FieldTarget, destination),
		logging.Bool("dry_run", opts.DryRun),
	)

	if destination != source && !opts.DryRun {
		if err := os.MkdirAll(destination, 0o755); err != nil {
			return nil, stage.Wrap(stage.ErrTransient, "pipeline", "create destination", destination, err)
		}
	}

	organizer := organize.NewOrganizer(source, destination, table, logger)
	organizer.DryRun = opts.DryRun
	orgStats, err := organizer.Execute(ctx)
	if err != nil {
		return nil, err
	}
	summary.Moved = orgStats.Moved
	summary.Skipped = orgStats.Skipped
	summary.MoveFailures = orgStats.Failed
	for name, n := range orgStats.ByCategory {
		summary.ByCategory[name] = n
	}

	if opts.DryRun {
		summary.Duration = time.Since(summary.StartedAt)
		rlog.Info("dry run complete, unpack and prune skipped",
			logging.Int("would_move", summary.Moved),
			logging.Int("skipped", summary.Skipped),
		)
		return summary, nil
	}

	expander := unpack.NewExpander(destination, filepath.Join(destination, unpack.ArchivesFolder), logger)
	unpackStats, err := expander.Execute(ctx)
	if err != nil {
		return nil, err
	}
	summary.Extracted = unpackStats.Extracted
	summary.FailedArchives = unpackStats.Failed

	for _, root := range pruneRoots(source, destination) {
		removed, err := prune.NewPruner(root, logger).Execute(ctx)
		if err != nil {
			return nil, err
		}
		summary.Pruned += removed
	}

	summary.Duration = time.Since(summary.StartedAt)
	rlog.Info("run complete",
		logging.Int("moved", summary.Moved),
		logging.Int("skipped", summary.Skipped),
		logging.Int("move_failures", summary.MoveFailures),
		logging.Int("extracted", summary.Extracted),
		logging.Int("failed_archives", len(summary.FailedArchives)),
		logging.Int("pruned", summary.Pruned),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// pruneRoots picks the directories the prune phase sweeps. When one root
// contains the other a single sweep of the outer root covers both;
// otherwise the emptied source needs its own pass after the destination.
func pruneRoots(source, destination string) []string {
	switch {
	case destination == source:
		return []string{source}
	case fileutil.IsSubpath(source, destination):
		return []string{source}
	case fileutil.IsSubpath(destination, source):
		return []string{destination}
	default:
		return []string{destination, source}
	}
}
