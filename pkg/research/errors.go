package research

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxIterations is returned when the tool loop exhausts its budget.
	ErrMaxIterations = errors.New("maximum iterations reached")
	// ErrUnknownTool is returned for tool names outside the registry.
	ErrUnknownTool = errors.New("unknown tool")
)

// UnexpectedStopError reports a stop reason the loop cannot act on.
type UnexpectedStopError struct {
	Reason string
}

func (e *UnexpectedStopError) Error() string {
	return fmt.Sprintf("unexpected stop reason %q", e.Reason)
}

// ProviderError wraps a failed provider call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// RenderError turns a loop failure into the text shown to the user.
func RenderError(err error) string {
	var stop *UnexpectedStopError
	var provider *ProviderError
	switch {
	case errors.Is(err, ErrMaxIterations):
		return "Maximum iterations reached. Please try a simpler query."
	case errors.As(err, &stop):
		return "Unable to complete the request."
	case errors.As(err, &provider):
		return fmt.Sprintf("An error occurred: %v", provider.Err)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
