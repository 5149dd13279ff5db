package shutdown

import (
	"errors"
	"fmt"
)

var (
	// ErrSignalSetup matches every *SetupError.
	ErrSignalSetup = errors.New("shutdown: signal listener setup failed")

	// ErrListenerInUse is returned when another listener already owns the
	// process termination signals.
	ErrListenerInUse = errors.New("shutdown: signal listener already installed")

	// ErrNoSignals is returned when a listener is requested for no signals.
	ErrNoSignals = errors.New("shutdown: no signals to listen for")
)

// SetupError reports that the signal listener could not be installed.
// It is fatal and is never retried.
type SetupError struct {
	Err error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("install signal listener: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// Is reports ErrSignalSetup as a match.
func (e *SetupError) Is(target error) bool {
	return target == ErrSignalSetup
}
