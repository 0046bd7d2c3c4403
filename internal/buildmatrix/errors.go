// Package buildmatrix reads and edits build.yaml: the ordered, declarative
// list of firmware build targets. File order is build order; edits append on
// add and remove stably, and fields this tool does not model round-trip
// verbatim for the external build pipeline.
package buildmatrix

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for build matrix operations.
var (
	// ErrUnknownHardware indicates a board or shield identifier that does
	// not exist in the current hardware catalog.
	ErrUnknownHardware = errors.New("buildmatrix: unknown hardware")

	// ErrMissingControllerBoard indicates a shield that needs a controller
	// board which is absent or does not provide the required interconnect.
	ErrMissingControllerBoard = errors.New("buildmatrix: missing controller board")

	// ErrIncompleteSplitPair indicates a split keyboard add that would leave
	// some of its halves out of the matrix.
	ErrIncompleteSplitPair = errors.New("buildmatrix: incomplete split keyboard")

	// ErrDuplicateTarget indicates the target is already in the matrix.
	ErrDuplicateTarget = errors.New("buildmatrix: duplicate build target")

	// ErrAmbiguousSelector indicates a removal selector matching several
	// targets without permission to remove them all.
	ErrAmbiguousSelector = errors.New("buildmatrix: ambiguous selector")

	// ErrEmptyTarget indicates an add request with neither board nor shield.
	ErrEmptyTarget = errors.New("buildmatrix: target needs a board or shield")
)

// UnknownHardwareError names the identifier that failed catalog lookup.
type UnknownHardwareError struct {
	Kind string // "board" or "shield"
	ID   string
}

// Error implements the error interface.
func (e *UnknownHardwareError) Error() string {
	return fmt.Sprintf("buildmatrix: no %s with ID %q in the hardware catalog", e.Kind, e.ID)
}

// Unwrap returns ErrUnknownHardware for errors.Is support.
func (e *UnknownHardwareError) Unwrap() error {
	return ErrUnknownHardware
}

// SplitPairError names the halves missing from a split keyboard add.
type SplitPairError struct {
	Shield  string
	Missing []string
}

// Error implements the error interface.
func (e *SplitPairError) Error() string {
	return fmt.Sprintf("buildmatrix: split keyboard %q needs entries for all halves; missing %s",
		e.Shield, strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrIncompleteSplitPair for errors.Is support.
func (e *SplitPairError) Unwrap() error {
	return ErrIncompleteSplitPair
}

// AmbiguousSelectorError carries the candidate targets so the boundary layer
// can present a choice instead of this package guessing.
type AmbiguousSelectorError struct {
	Selector   Selector
	Candidates []Target
}

// Error implements the error interface.
func (e *AmbiguousSelectorError) Error() string {
	return fmt.Sprintf("buildmatrix: selector matches %d targets; pass All to remove every match", len(e.Candidates))
}

// Unwrap returns ErrAmbiguousSelector for errors.Is support.
func (e *AmbiguousSelectorError) Unwrap() error {
	return ErrAmbiguousSelector
}
