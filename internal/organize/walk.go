package organize

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Walk returns every regular file below root, in lexical order. The list is
// materialized before the caller mutates anything, so files moved later in
// the run are never revisited.
//
// Directories are descended into but never returned. Symlinks are returned
// only when their target is a regular file; symlinks to directories are not
// followed, and broken symlinks are ignored.
//
// When skip names a directory below root, that subtree is left out. The
// pipeline uses this to keep a destination nested inside the source from
// being re-walked.
func Walk(root string, skip string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skip != "" && path == skip {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr == nil && info.Mode().IsRegular() {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
