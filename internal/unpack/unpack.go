// Package unpack expands archives found under the destination root into
// per-archive subfolders of the Archives category directory.
package unpack

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"declutter/internal/logging"
	"declutter/internal/normalize"
	"declutter/internal/stage"
)

// ArchivesFolder is the directory under the destination root that receives
// expanded archive contents. It matches the built-in Archives category, so
// archives are unpacked next to where the organize phase filed them.
const ArchivesFolder = "Archives"

// candidateExts are the extensions treated as archives. Anything else is
// left alone, whatever its contents.
var candidateExts = map[string]struct{}{
	".zip": {},
	".gz":  {},
	".tar": {},
	".rar": {},
}

// Stats accumulates the outcome of one unpack phase. Failed lists the
// archives that could not be expanded; they are kept on disk.
type Stats struct {
	Extracted int
	Failed    []string
}

// Expander locates archive files below root and extracts each one into
// archivesDir/<stem>/. An archive is deleted only after its extraction
// fully succeeds; a failed archive stays put, together with whatever
// partial output it produced, and the phase moves on.
type Expander struct {
	root        string
	archivesDir string
	logger      *slog.Logger
}

// NewExpander builds the unpack phase for one run.
func NewExpander(root, archivesDir string, logger *slog.Logger) *Expander {
	return &Expander{
		root:        root,
		archivesDir: archivesDir,
		logger:      logging.NewComponentLogger(logger, "unpacker"),
	}
}

// Execute snapshots the candidate list, then expands each archive in it.
// Archives created by the extraction itself (nested archives) are not
// picked up until a later run.
func (e *Expander) Execute(ctx context.Context) (Stats, error) {
	ctx = stage.WithStage(ctx, "unpack")
	logger := logging.WithContext(ctx, e.logger)
	var stats Stats

	candidates, err := e.scan()
	if err != nil {
		return stats, stage.Wrap(stage.ErrTransient, "unpack", "scan destination", "unable to enumerate archives", err)
	}
	logger.Debug("snapshot complete", logging.Int("archives", len(candidates)))

	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := e.expand(ctx, path); err != nil {
			stats.Failed = append(stats.Failed, path)
			logger.Error("extraction failed, keeping archive",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			continue
		}
		stats.Extracted++
	}
	return stats, nil
}

// scan returns the archive files below the root, in lexical order. A file
// qualifies by extension alone; dotfiles such as ".zip" have no extension
// and never qualify.
func (e *Expander) scan() ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		_, ext := normalize.SplitStem(d.Name())
		if ext == "" {
			return nil
		}
		if _, ok := candidateExts[strings.ToLower(ext)]; ok {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// expand extracts one archive into archivesDir/<stem>/ and deletes it on
// success. The subfolder may already exist from an earlier partial run;
// extraction merges into it.
func (e *Expander) expand(ctx context.Context, path string) error {
	logger := logging.WithContext(ctx, e.logger)

	base := filepath.Base(path)
	stem, ext := normalize.SplitStem(base)
	subdir := filepath.Join(e.archivesDir, stem)

	if err := os.MkdirAll(subdir, 0o755); err != nil {
		return stage.Wrap(stage.ErrTransient, "unpack", "create archive folder", "unable to create extraction folder", err)
	}

	var err error
	if strings.ToLower(ext) == ".rar" {
		err = extractRar(ctx, path, subdir)
	} else {
		err = extractGeneric(ctx, path, subdir)
	}
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return stage.Wrap(stage.ErrTransient, "unpack", "delete archive", "extracted but unable to delete archive", err)
	}

	logger.Info("expanded archive",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldTarget, subdir),
	)
	return nil
}
