package engine

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned by Runner.Start while another run is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// InputArityError reports a plugin fed more parent outputs than it accepts.
type InputArityError struct {
	Node   string
	Plugin string
	Max    int
	Got    int
}

func (e *InputArityError) Error() string {
	return fmt.Sprintf("node '%s': plugin '%s' accepts at most %d input(s), got %d", e.Node, e.Plugin, e.Max, e.Got)
}

// PluginExecutionError wraps anything a plugin's Run returned or panicked
// with. Details carries the stack trace for panics.
type PluginExecutionError struct {
	Node    string
	Err     error
	Details string
}

func (e *PluginExecutionError) Error() string {
	return fmt.Sprintf("node '%s' failed: %v", e.Node, e.Err)
}

func (e *PluginExecutionError) Unwrap() error {
	return e.Err
}

// FailureOutput renders an execution error the way it is shown in place of
// a node's preview.
func FailureOutput(err error) string {
	var pe *PluginExecutionError
	if errors.As(err, &pe) && pe.Details != "" {
		return pe.Err.Error() + "\n\n" + pe.Details
	}
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
