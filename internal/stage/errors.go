// Package stage carries the error taxonomy and context plumbing shared by
// the organize, unpack, and prune phases of a run.
package stage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing source or destination root.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks a bad argument or precondition failure.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration, including a run lock
	// held by another process.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnsupported marks an archive whose format no decoder handles.
	ErrUnsupported = errors.New("unsupported format")
	// ErrTransient marks filesystem failures that a re-run may clear.
	ErrTransient = errors.New("transient failure")
)

// Wrap tags err with a sentinel marker and a stage/operation/message detail
// chain so callers can classify with errors.Is while users see where the
// failure happened. A nil marker defaults to ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err should abort the whole run rather than a
// single item. Only the top-level precondition and lock failures qualify.
func Fatal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
