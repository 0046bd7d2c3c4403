package west

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWestNotFound indicates the west executable is not on PATH.
var ErrWestNotFound = errors.New("west: executable not found in PATH")

// SyncError reports a failed west invocation with the captured stderr, which
// carries the diagnostics west prints for fetch and checkout failures.
type SyncError struct {
	Args   []string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("west %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SyncError) Unwrap() error {
	return e.Err
}
