package unpack_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"declutter/internal/logging"
	"declutter/internal/testsupport"
	"declutter/internal/unpack"
)

func newExpander(root string) *unpack.Expander {
	return unpack.NewExpander(root, filepath.Join(root, "Archives"), logging.NewNop())
}

func TestExpanderExtractsZip(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "report_2023.zip")
	testsupport.WriteZip(t, archive, map[string]string{
		"summary.txt":      "totals",
		"charts/q1.svg":    "<svg/>",
	})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 1 || len(stats.Failed) != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	for _, want := range []string{
		filepath.Join(root, "Archives", "report_2023", "summary.txt"),
		filepath.Join(root, "Archives", "report_2023", "charts", "q1.svg"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected %s to exist: %v", want, err)
		}
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("expected archive to be deleted, stat err = %v", err)
	}
}

func TestExpanderExtractsTar(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "bundle.tar")
	testsupport.WriteTar(t, archive, map[string]string{"readme.md": "hi"})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "Archives", "bundle", "readme.md")); err != nil {
		t.Fatalf("expected member to exist: %v", err)
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("expected archive to be deleted, stat err = %v", err)
	}
}

func TestExpanderExtractsTarGzIntoTarStemFolder(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "backup.tar.gz")
	testsupport.WriteTarGz(t, archive, map[string]string{"data.bin": "payload"})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// The subfolder keeps the inner extension: backup.tar.gz -> backup.tar/
	if _, err := os.Stat(filepath.Join(root, "Archives", "backup.tar", "data.bin")); err != nil {
		t.Fatalf("expected member under backup.tar folder: %v", err)
	}
}

func TestExpanderReportsBareGzip(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "notes.gz")
	testsupport.WriteGzip(t, archive, "just text")

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 0 || len(stats.Failed) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Failed[0] != archive {
		t.Fatalf("unexpected failed path: %v", stats.Failed)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected failed archive to be kept: %v", err)
	}
}

func TestExpanderKeepsCorruptArchive(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "broken.zip")
	testsupport.WriteCorruptArchive(t, archive)

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 0 || len(stats.Failed) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected corrupt archive to be kept: %v", err)
	}
}

func TestExpanderKeepsFakeRar(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "evil.rar")
	testsupport.WriteCorruptArchive(t, archive)

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(stats.Failed) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected unreadable rar to be kept: %v", err)
	}
}

func TestExpanderContinuesPastFailures(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteCorruptArchive(t, filepath.Join(root, "Archives", "aaa_broken.zip"))
	good := filepath.Join(root, "Archives", "zzz_good.zip")
	testsupport.WriteZip(t, good, map[string]string{"ok.txt": "fine"})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 1 || len(stats.Failed) != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "Archives", "zzz_good", "ok.txt")); err != nil {
		t.Fatalf("expected later archive to be extracted: %v", err)
	}
}

func TestExpanderBlocksTraversalMembers(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "Archives", "sneaky.zip")
	testsupport.WriteZip(t, archive, map[string]string{
		"../escape.txt": "outside",
	})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(stats.Failed) != 1 {
		t.Fatalf("expected traversal archive to fail: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "Archives", "escape.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected no file outside the member folder, stat err = %v", err)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected traversal archive to be kept: %v", err)
	}
}

func TestExpanderIgnoresNonArchives(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"Docs/paper.txt": "text",
		"Other/.zip":     "dotfile, not an archive",
	})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 0 || len(stats.Failed) != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "Docs", "paper.txt")); err != nil {
		t.Fatalf("expected non-archive untouched: %v", err)
	}
}

func TestExpanderLeavesNestedArchivesForNextRun(t *testing.T) {
	root := t.TempDir()

	innerPath := filepath.Join(t.TempDir(), "inner.zip")
	testsupport.WriteZip(t, innerPath, map[string]string{"seed.txt": "nested"})
	innerBytes, err := os.ReadFile(innerPath)
	if err != nil {
		t.Fatalf("read inner zip: %v", err)
	}

	outer := filepath.Join(root, "Archives", "outer.zip")
	testsupport.WriteZip(t, outer, map[string]string{"inner.zip": string(innerBytes)})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.Extracted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	nested := filepath.Join(root, "Archives", "outer", "inner.zip")
	if _, err := os.Stat(nested); err != nil {
		t.Fatalf("expected nested archive to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Archives", "inner")); !os.IsNotExist(err) {
		t.Fatalf("expected nested archive to stay packed this run, stat err = %v", err)
	}
}

func TestExpanderReportsStemCollisionWithFile(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"Archives/backup": "a plain file occupying the folder name",
	})
	archive := filepath.Join(root, "Archives", "backup.zip")
	testsupport.WriteZip(t, archive, map[string]string{"x.txt": "x"})

	stats, err := newExpander(root).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(stats.Failed) != 1 {
		t.Fatalf("expected collision to be reported: %+v", stats)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected archive to be kept: %v", err)
	}
}
