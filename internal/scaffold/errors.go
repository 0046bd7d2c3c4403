// Package scaffold renders new hardware definition file sets from bundled,
// inheriting template sets. The engine is side-effect free: it returns the
// materialized files and leaves writing (and overwrite prompts) to the
// caller, which keeps previews and dry runs cheap.
package scaffold

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for template rendering.
var (
	// ErrSetNotFound indicates an unknown template set name.
	ErrSetNotFound = errors.New("scaffold: template set not found")

	// ErrTemplateCycle indicates a cyclic extends chain.
	ErrTemplateCycle = errors.New("scaffold: template inheritance cycle")

	// ErrMissingParameter indicates a block referenced a parameter that was
	// not supplied.
	ErrMissingParameter = errors.New("scaffold: missing template parameter")

	// ErrMissingBlock indicates a file references a block no set in the
	// chain defines.
	ErrMissingBlock = errors.New("scaffold: block not defined")

	// ErrInvalidID indicates a hardware identifier that is not a valid
	// devicetree-safe name.
	ErrInvalidID = errors.New("scaffold: invalid hardware ID")
)

// CycleError reports the chain that looped.
type CycleError struct {
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("scaffold: template inheritance cycle: %s", strings.Join(e.Chain, " -> "))
}

// Unwrap returns ErrTemplateCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrTemplateCycle
}
