package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for user settings.
var (
	// ErrUnknownKey indicates a settings key this tool does not define.
	ErrUnknownKey = errors.New("config: unknown settings key")

	// ErrHomeNotSet indicates no default repository is configured and none
	// was found from the working directory.
	ErrHomeNotSet = errors.New("config: no repository found; run inside a config repo or set user.home")
)

// UnknownKeyError names the rejected key.
type UnknownKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("config: unknown settings key %q", e.Key)
}

// Unwrap returns ErrUnknownKey for errors.Is support.
func (e *UnknownKeyError) Unwrap() error {
	return ErrUnknownKey
}
