// Package report renders run summaries for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"declutter/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// Renderer writes a run summary to w.
type Renderer interface {
	Render(w io.Writer, s *pipeline.Summary) error
}

// TableRenderer prints a human-readable summary: a run header, a count
// table, a per-category breakdown when anything moved, and the archives
// that could not be expanded. Warnings are colored when w is a terminal.
type TableRenderer struct{}

func (TableRenderer) Render(w io.Writer, s *pipeline.Summary) error {
	colorize := shouldColorize(w)
	var b strings.Builder

	header := fmt.Sprintf("Organized %s", s.Source)
	if s.Destination != s.Source {
		header = fmt.Sprintf("Organized %s into %s", s.Source, s.Destination)
	}
	if s.DryRun {
		header += " (dry run)"
	}
	b.WriteString(header)
	b.WriteByte('\n')

	movedLabel := "Moved"
	if s.DryRun {
		movedLabel = "Would move"
	}
	rows := [][2]string{
		{movedLabel, strconv.Itoa(s.Moved)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Move failures", strconv.Itoa(s.MoveFailures)},
	}
	if !s.DryRun {
		rows = append(rows,
			[2]string{"Archives expanded", strconv.Itoa(s.Extracted)},
			[2]string{"Archives failed", strconv.Itoa(len(s.FailedArchives))},
			[2]string{"Empty dirs removed", strconv.Itoa(s.Pruned)},
		)
	}
	rows = append(rows, [2]string{"Duration", s.Duration.Round(time.Millisecond).String()})
	b.WriteString(renderCounts([2]string{"Result", "Count"}, rows))
	b.WriteByte('\n')

	if len(s.ByCategory) > 0 {
		b.WriteString(renderCounts([2]string{"Category", "Files"}, categoryRows(s.ByCategory)))
		b.WriteByte('\n')
	}

	for _, archive := range s.FailedArchives {
		line := fmt.Sprintf("  failed to expand: %s", archive)
		if colorize {
			line = ansiRed + line + ansiReset
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if s.MoveFailures > 0 {
		line := fmt.Sprintf("  %d file(s) could not be moved, see the log for details", s.MoveFailures)
		if colorize {
			line = ansiYellow + line + ansiReset
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONRenderer emits the summary as a single indented JSON document,
// suitable for piping into other tooling.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, s *pipeline.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// categoryRows flattens the per-category counts, busiest category first,
// ties broken by name so output stays stable.
func categoryRows(byCategory map[string]int) [][2]string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byCategory[names[i]] != byCategory[names[j]] {
			return byCategory[names[i]] > byCategory[names[j]]
		}
		return names[i] < names[j]
	})
	rows := make([][2]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, [2]string{name, strconv.Itoa(byCategory[name])})
	}
	return rows
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
