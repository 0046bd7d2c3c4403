package revision

import (
	"errors"
	"fmt"
)

// Sentinel errors for revision resolution.
var (
	// ErrUnknownRevision indicates a revision that is neither a tag, a
	// branch, nor a commit hash of the remote.
	ErrUnknownRevision = errors.New("revision: unknown revision")

	// ErrNoTags indicates a remote with no version tags to pick from.
	ErrNoTags = errors.New("revision: remote has no tags")

	// ErrGitNotFound indicates the git executable is not on PATH.
	ErrGitNotFound = errors.New("revision: git executable not found in PATH")
)

// UnknownRevisionError names the revision and remote that failed to resolve.
type UnknownRevisionError struct {
	Revision string
	URL      string
}

// Error implements the error interface.
func (e *UnknownRevisionError) Error() string {
	return fmt.Sprintf("revision: %q is not a tag, branch, or commit of %s", e.Revision, e.URL)
}

// Unwrap returns ErrUnknownRevision for errors.Is support.
func (e *UnknownRevisionError) Unwrap() error {
	return ErrUnknownRevision
}

// RemoteError reports a failed git remote query with the captured stderr.
type RemoteError struct {
	URL    string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("revision: query %s: %v", e.URL, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error {
	return e.Err
}
