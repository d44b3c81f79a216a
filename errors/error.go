package errors

import (
	"fmt"
)

// SourceIOError occurs when a load node's Loader or one of its readers fails
type SourceIOError struct {
	Location string
	Cause    error
}

// Error returns a textual representation of this SourceIOError
func (e SourceIOError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("load source failure: %v", e.Cause)
	}
	return fmt.Sprintf("load source failure at %s: %v", e.Location, e.Cause)
}

// Unwrap returns the underlying cause of this SourceIOError
func (e SourceIOError) Unwrap() error { return e.Cause }

// SinkIOError occurs when a store node's Storer or its writer fails
type SinkIOError struct {
	Cause error
}

// Error returns a textual representation of this SinkIOError
func (e SinkIOError) Error() string {
	return fmt.Sprintf("store sink failure: %v", e.Cause)
}

// Unwrap returns the underlying cause of this SinkIOError
func (e SinkIOError) Unwrap() error { return e.Cause }

// TransformError occurs when a user-supplied row function returns an error
// or panics
type TransformError struct {
	Op    string
	Row   string
	Cause error
}

// Error returns a textual representation of this TransformError
func (e TransformError) Error() string {
	return fmt.Sprintf("%s failure on row %s: %v", e.Op, e.Row, e.Cause)
}

// Unwrap returns the underlying cause of this TransformError
func (e TransformError) Unwrap() error { return e.Cause }

// GraphIntegrityError occurs when a plan violates the engine's topological
// invariants: an ancestor id referenced before being built, a node id built
// twice, or a command variant the engine does not know. Fatal and not
// user-recoverable.
type GraphIntegrityError struct {
	NodeID string
	Reason string
}

// Error returns a textual representation of this GraphIntegrityError
func (e GraphIntegrityError) Error() string {
	return fmt.Sprintf("graph integrity violation at node %s: %s", e.NodeID, e.Reason)
}
