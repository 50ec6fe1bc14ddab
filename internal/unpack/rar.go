package unpack

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"

	"declutter/internal/stage"
)

// extractRar expands a rar archive into destDir with the same member
// sanitization as the generic path.
func extractRar(ctx context.Context, path, destDir string) error {
	reader, err := rardecode.OpenReader(path)
	if err != nil {
		return stage.Wrap(stage.ErrUnsupported, "unpack", "open rar", "unable to open rar archive", err)
	}
	defer reader.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return stage.Wrap(stage.ErrTransient, "unpack", "read rar entry", "corrupt rar entry", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return stage.Wrap(stage.ErrValidation, "unpack", "sanitize entry path", "archive member escapes destination", err)
		}
		if header.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return stage.Wrap(stage.ErrTransient, "unpack", "create member directory", "unable to create member directory", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return stage.Wrap(stage.ErrTransient, "unpack", "create member directory", "unable to create member directory", err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return stage.Wrap(stage.ErrTransient, "unpack", "write member", "unable to create member file", err)
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return stage.Wrap(stage.ErrTransient, "unpack", "write member", "unable to write member file", err)
		}
		if err := out.Close(); err != nil {
			return stage.Wrap(stage.ErrTransient, "unpack", "write member", "unable to finish member file", err)
		}
	}
}
