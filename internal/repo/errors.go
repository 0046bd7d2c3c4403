package repo

import (
	"errors"
	"fmt"
)

// ErrNoRepo indicates a directory is not inside a ZMK config repo.
var ErrNoRepo = errors.New("repo: not a ZMK config repo")

// NoRepoError reports the path that failed the repo check.
type NoRepoError struct {
	Path string
}

// Error implements the error interface.
func (e *NoRepoError) Error() string {
	return fmt.Sprintf("repo: %q is not inside a ZMK config repo (no %s found)", e.Path, "config/west.yml")
}

// Unwrap returns ErrNoRepo for errors.Is support.
func (e *NoRepoError) Unwrap() error {
	return ErrNoRepo
}
