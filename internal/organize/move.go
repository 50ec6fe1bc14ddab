package organize

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"declutter/internal/category"
	"declutter/internal/fileutil"
	"declutter/internal/logging"
	"declutter/internal/normalize"
	"declutter/internal/stage"
)

// Outcome describes what Relocate did with one file.
type Outcome int

const (
	// OutcomeMoved means the file now lives at Move.Target.
	OutcomeMoved Outcome = iota
	// OutcomeSkipped means the target name was already taken and the file
	// was left untouched.
	OutcomeSkipped
)

// Move records the decision made for a single file.
type Move struct {
	Source   string
	Target   string
	Category string
	Outcome  Outcome
}

// Relocator files a single path into its category directory under the
// destination root. The category directory is created on first use, never
// ahead of time.
type Relocator struct {
	destination string
	table       *category.Table
	logger      *slog.Logger

	// DryRun computes and logs decisions without touching the filesystem.
	DryRun bool
}

// NewRelocator builds a relocator rooted at destination.
func NewRelocator(destination string, table *category.Table, logger *slog.Logger) *Relocator {
	return &Relocator{
		destination: destination,
		table:       table,
		logger:      logging.NewComponentLogger(logger, "organizer"),
	}
}

// Relocate classifies path by extension, normalizes its stem, and moves it
// to destination/<category>/<normalized stem><ext>. The extension keeps its
// original case; only the stem is rewritten. A file whose target name
// already exists is skipped, not overwritten.
func (r *Relocator) Relocate(ctx context.Context, path string) (Move, error) {
	logger := logging.WithContext(ctx, r.logger)

	base := filepath.Base(path)
	cat := r.table.Classify(base)
	stem, ext := normalize.SplitStem(base)
	target := filepath.Join(r.destination, cat, normalize.Normalize(stem)+ext)

	move := Move{Source: path, Target: target, Category: cat}

	if target == path {
		move.Outcome = OutcomeSkipped
		logger.Debug("already organized",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldCategory, cat),
		)
		return move, nil
	}
	if _, err := os.Lstat(target); err == nil {
		move.Outcome = OutcomeSkipped
		logger.Info("target name taken, leaving file in place",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldTarget, target),
			logging.String(logging.FieldCategory, cat),
		)
		return move, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return move, stage.Wrap(stage.ErrTransient, "organize", "probe target", "unable to check target path", err)
	}

	if r.DryRun {
		move.Outcome = OutcomeMoved
		logger.Info("would move file",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldTarget, target),
			logging.String(logging.FieldCategory, cat),
		)
		return move, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return move, stage.Wrap(stage.ErrTransient, "organize", "create category directory", "unable to create category directory", err)
	}
	if err := fileutil.MoveFile(path, target); err != nil {
		return move, stage.Wrap(stage.ErrTransient, "organize", "move file", "unable to relocate file", err)
	}

	move.Outcome = OutcomeMoved
	logger.Info("moved file",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldTarget, target),
		logging.String(logging.FieldCategory, cat),
	)
	return move, nil
}
