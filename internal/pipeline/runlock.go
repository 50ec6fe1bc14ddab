package pipeline

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"declutter/internal/config"
	"declutter/internal/logging"
	"declutter/internal/stage"
)

// runLock serializes runs over the same source tree. Lock files live under
// the user cache directory and are keyed by the source path, so runs over
// unrelated trees proceed concurrently.
type runLock struct {
	flock *flock.Flock
	path  string
}

func lockPathFor(source string) (string, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(source))
	return filepath.Join(dir, fmt.Sprintf("run-%x.lock", sum[:8])), nil
}

func acquireRunLock(source string) (*runLock, error) {
	path, err := lockPathFor(source)
	if err != nil {
		return nil, stage.Wrap(stage.ErrTransient, "pipeline", "acquire run lock", "unable to prepare lock directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, stage.Wrap(stage.ErrTransient, "pipeline", "acquire run lock", "unable to acquire run lock", err)
	}
	if !ok {
		return nil, stage.Wrap(stage.ErrConfiguration, "pipeline", "acquire run lock",
			fmt.Sprintf("another declutter run is already working on %s", source), nil)
	}
	return &runLock{flock: lock, path: path}, nil
}

func (l *runLock) release(logger *slog.Logger) {
	if err := l.flock.Unlock(); err != nil {
		logger.Warn("failed to release run lock",
			logging.String(logging.FieldPath, l.path),
			logging.Error(err),
		)
	}
}
