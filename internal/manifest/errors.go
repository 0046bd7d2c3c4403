// Package manifest reads and edits the west manifest (config/west.yml): the
// ordered list of Zephyr modules pulled into the workspace. Edits are made on
// the YAML node tree so manifest content this tool does not understand
// (remotes, imports, extra project fields) round-trips untouched.
package manifest

import (
	"errors"
	"fmt"
)

// Sentinel errors for manifest operations.
var (
	// ErrDuplicateModule indicates the manifest already lists the module.
	ErrDuplicateModule = errors.New("manifest: module already present")

	// ErrModuleNotFound indicates no manifest entry matches the identifier.
	ErrModuleNotFound = errors.New("manifest: module not found")

	// ErrBadLocation indicates a module location that cannot be turned into
	// a fetch URL.
	ErrBadLocation = errors.New("manifest: invalid module location")

	// ErrProtectedModule indicates an attempt to remove a module the
	// workspace cannot function without.
	ErrProtectedModule = errors.New("manifest: module is protected")
)

// DuplicateModuleError reports which field of an existing entry collided.
type DuplicateModuleError struct {
	Field string // "name" or "url"
	Value string
}

// Error implements the error interface.
func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("manifest: a module with the %s %q already exists", e.Field, e.Value)
}

// Unwrap returns ErrDuplicateModule for errors.Is support.
func (e *DuplicateModuleError) Unwrap() error {
	return ErrDuplicateModule
}

// ProtectedModuleError reports a removal blocked by the protected list.
type ProtectedModuleError struct {
	Name string
}

// Error implements the error interface.
func (e *ProtectedModuleError) Error() string {
	return fmt.Sprintf("manifest: module %q is required and cannot be removed", e.Name)
}

// Unwrap returns ErrProtectedModule for errors.Is support.
func (e *ProtectedModuleError) Unwrap() error {
	return ErrProtectedModule
}

// NotFoundError reports the identifier that matched no entry.
type NotFoundError struct {
	Identifier string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("manifest: no module with name or URL %q", e.Identifier)
}

// Unwrap returns ErrModuleNotFound for errors.Is support.
func (e *NotFoundError) Unwrap() error {
	return ErrModuleNotFound
}
