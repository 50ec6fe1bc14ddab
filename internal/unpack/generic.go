package unpack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"declutter/internal/stage"
)

// extractGeneric expands zip, tar, and compressed tar archives using format
// identification rather than trusting the extension. A file that identifies
// as a pure compression stream (a bare .gz that is not a tar) has no member
// list to extract and is reported as unsupported.
func extractGeneric(ctx context.Context, path, destDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return stage.Wrap(stage.ErrTransient, "unpack", "open archive", "unable to open archive", err)
	}
	defer f.Close()

	format, input, err := archives.Identify(ctx, filepath.Base(path), f)
	if err != nil {
		return stage.Wrap(stage.ErrUnsupported, "unpack", "identify archive", "no decoder recognizes this file", err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return stage.Wrap(stage.ErrUnsupported, "unpack", "identify archive",
			fmt.Sprintf("%s is a compression stream, not an extractable archive", format.Extension()), nil)
	}

	if err := extractor.Extract(ctx, input, entryWriter(destDir)); err != nil {
		return stage.Wrap(stage.ErrTransient, "unpack", "extract archive", "extraction failed", err)
	}
	return nil
}

// entryWriter materializes one archive member below destDir. Member paths
// are sanitized so an entry can never land outside destDir; symlink members
// are dropped rather than recreated.
func entryWriter(destDir string) archives.FileHandler {
	return func(ctx context.Context, f archives.FileInfo) error {
		target, err := securePath(destDir, f.NameInArchive)
		if err != nil {
			return err
		}
		if f.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if f.LinkTarget != "" {
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		reader, err := f.Open()
		if err != nil {
			return err
		}
		defer reader.Close()

		perm := f.Mode().Perm()
		if perm == 0 {
			perm = 0o644
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
		if err != nil {
			return err
		}
		defer out.Close()

		if _, err := io.Copy(out, reader); err != nil {
			return err
		}
		return out.Close()
	}
}

// securePath joins an archive member name onto destDir and rejects names
// that resolve outside it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid member path in archive: %s", name)
	}
	return target, nil
}
