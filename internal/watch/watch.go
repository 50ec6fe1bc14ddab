// Package watch keeps a source directory organized by re-running the
// pipeline whenever new files settle in it.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"declutter/internal/logging"
	"declutter/internal/stage"
)

// DefaultSettle is how long the tree must stay quiet before a sweep runs.
const DefaultSettle = 2 * time.Second

// Runner performs one organizing pass over the watched tree.
type Runner func(ctx context.Context) error

// Watcher re-runs a pipeline pass whenever files land in the source
// directory. Only the directory itself is watched, not its subtree; the
// pass it triggers walks everything anyway.
type Watcher struct {
	source string
	settle time.Duration
	runner Runner
	logger *slog.Logger
}

// New builds a watcher over source. A non-positive settle falls back to
// DefaultSettle.
func New(source string, settle time.Duration, runner Runner, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		source: source,
		settle: settle,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "watcher"),
	}
}

// Watch runs an initial pass, then blocks, sweeping the tree each time
// event activity settles. It returns when ctx is canceled or a pass fails
// outright; per-file failures inside a pass do not stop the watch.
//
// Writes reset the settle timer, so a file still being downloaded keeps
// postponing the sweep until it is complete.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return stage.Wrap(stage.ErrTransient, "watch", "start filesystem watcher", "", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.source); err != nil {
		return stage.Wrap(stage.ErrTransient, "watch", "watch source", w.source, err)
	}

	runs := make(chan struct{}, 1)
	requestRun := func() {
		select {
		case runs <- struct{}{}:
		default:
		}
	}
	settle := newDebouncer(w.settle, requestRun)
	defer settle.stop()

	w.logger.Info("watching for changes",
		logging.String(logging.FieldPath, w.source),
		logging.Duration("settle", w.settle),
	)

	// First pass picks up whatever is already sitting in the folder.
	requestRun()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.logger.Debug("change detected",
				logging.String(logging.FieldPath, event.Name),
				logging.String("op", event.Op.String()),
			)
			settle.trigger()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logging.Error(err))

		case <-runs:
			if err := w.runner(ctx); err != nil {
				return err
			}
		}
	}
}
