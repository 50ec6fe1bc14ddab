package organize

import (
	"context"
	"log/slog"

	"declutter/internal/category"
	"declutter/internal/fileutil"
	"declutter/internal/logging"
	"declutter/internal/stage"
)

// Stats accumulates the outcome of one organize phase.
type Stats struct {
	Moved      int
	Skipped    int
	Failed     int
	ByCategory map[string]int
}

// Organizer walks the source tree and relocates every regular file into
// its category directory under the destination root.
type Organizer struct {
	source      string
	destination string
	skip        string
	relocator   *Relocator
	logger      *slog.Logger

	// DryRun logs planned moves without performing them.
	DryRun bool
}

// NewOrganizer builds the organize phase for one run. When destination sits
// inside source, the destination subtree is excluded from the walk so a run
// never chews on its own output.
func NewOrganizer(source, destination string, table *category.Table, logger *slog.Logger) *Organizer {
	return &Organizer{
		source:      source,
		destination: destination,
		skip:        nestedDestination(source, destination),
		relocator:   NewRelocator(destination, table, logger),
		logger:      logging.NewComponentLogger(logger, "organizer"),
	}
}

// Execute snapshots the source tree and relocates each file in it. Failures
// are counted and logged per file; only a failed walk aborts the phase.
func (o *Organizer) Execute(ctx context.Context) (Stats, error) {
	ctx = stage.WithStage(ctx, "organize")
	logger := logging.WithContext(ctx, o.logger)
	stats := Stats{ByCategory: make(map[string]int)}

	files, err := Walk(o.source, o.skip)
	if err != nil {
		return stats, stage.Wrap(stage.ErrTransient, "organize", "walk source", "unable to enumerate source tree", err)
	}
	logger.Debug("snapshot complete", logging.Int("files", len(files)))

	o.relocator.DryRun = o.DryRun
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		move, err := o.relocator.Relocate(ctx, path)
		if err != nil {
			stats.Failed++
			logger.Error("move failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			continue
		}
		switch move.Outcome {
		case OutcomeMoved:
			stats.Moved++
			stats.ByCategory[move.Category]++
		case OutcomeSkipped:
			stats.Skipped++
		}
	}
	return stats, nil
}

// nestedDestination reports destination when it is a proper descendant of
// source, and "" otherwise. Both paths are expected to be absolute.
func nestedDestination(source, destination string) string {
	if fileutil.IsSubpath(source, destination) {
		return destination
	}
	return ""
}
