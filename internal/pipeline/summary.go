package pipeline

import "time"

// Summary describes everything a single run did, phase by phase. The CLI
// renders it after the run; callers embedding the pipeline can inspect it
// programmatically.
type Summary struct {
	RunID       string        `json:"run_id"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	DryRun      bool          `json:"dry_run"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`

	// Organize phase.
	Moved        int            `json:"moved"`
	Skipped      int            `json:"skipped"`
	MoveFailures int            `json:"move_failures"`
	ByCategory   map[string]int `json:"by_category"`

	// Unpack phase.
	Extracted      int      `json:"extracted"`
	FailedArchives []string `json:"failed_archives,omitempty"`

	// Prune phase.
	Pruned int `json:"pruned"`
}

// Clean reports whether the run finished without per-file or per-archive
// failures. A run can return a nil error and still be unclean when
// individual files could not be moved or archives could not be expanded.
func (s *Summary) Clean() bool {
	return s.MoveFailures == 0 && len(s.FailedArchives) == 0
}
