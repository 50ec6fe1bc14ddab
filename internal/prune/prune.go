// Package prune removes empty directories left behind once files have been
// relocated and archives expanded.
package prune

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"declutter/internal/logging"
	"declutter/internal/stage"
)

// Pruner deletes empty directories below a root, deepest first, so a chain
// of directories that only contained each other collapses in one pass. The
// root itself is never removed.
type Pruner struct {
	root   string
	logger *slog.Logger
}

// NewPruner builds the prune phase for one run.
func NewPruner(root string, logger *slog.Logger) *Pruner {
	return &Pruner{
		root:   root,
		logger: logging.NewComponentLogger(logger, "pruner"),
	}
}

// Execute sweeps the tree and returns how many directories were removed.
func (p *Pruner) Execute(ctx context.Context) (int, error) {
	ctx = stage.WithStage(ctx, "prune")
	logger := logging.WithContext(ctx, p.logger)

	removed, _, err := p.sweep(ctx, logger, p.root)
	if err != nil {
		return removed, stage.Wrap(stage.ErrTransient, "prune", "remove empty directories", "unable to prune destination", err)
	}
	logger.Debug("sweep complete", logging.Int("removed", removed))
	return removed, nil
}

// sweep reports how many directories it removed below dir and whether dir
// itself ended up empty. Symlinks are never followed; a directory holding
// only a symlink counts as occupied.
func (p *Pruner) sweep(ctx context.Context, logger *slog.Logger, dir string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false, err
	}

	removed := 0
	remaining := len(entries)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		n, empty, err := p.sweep(ctx, logger, child)
		removed += n
		if err != nil {
			return removed, false, err
		}
		if empty {
			if err := os.Remove(child); err != nil {
				return removed, false, err
			}
			logger.Debug("removed empty directory", logging.String(logging.FieldPath, child))
			removed++
			remaining--
		}
	}
	return removed, remaining == 0, nil
}
