package component

import (
	"errors"
	"fmt"
)

// Sentinel errors for dispatch.
var (
	// ErrContainerClosed indicates the container was closed.
	ErrContainerClosed = errors.New("container is closed")

	// ErrComponentClosed indicates the wrapped component was released.
	ErrComponentClosed = errors.New("component is closed")

	// ErrMaxDepth indicates nested containers exceeded the configured depth,
	// usually because a container was attached to itself.
	ErrMaxDepth = errors.New("max dispatch depth exceeded")

	// ErrHandlerPanic is matched by PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error returned by a component.
type HandlerError struct {
	Handler   string // Name of the wrapped component
	EventID   string // ID of the event being handled
	EventType string // Type name of the event
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s on %s (event %s): %v", e.Handler, e.EventType, e.EventID, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a component.
type PanicError struct {
	Handler   string
	EventType string
	Value     any
	Stack     string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked on %s: %v", e.Handler, e.EventType, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
