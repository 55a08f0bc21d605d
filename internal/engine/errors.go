package engine

import "fmt"

// RejectedError is a configuration-level rejection issued before any state
// is touched: locked or disabled stages, unknown stages, unresolvable
// platforms. It never wraps an execution-time failure.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// PersistenceError reports that a stage settled but writing its result (or
// the in-progress placeholder) to disk failed. The in-memory state is
// already applied; callers should warn that the result may not survive a
// restart rather than roll back.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("stage result may not survive restart: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
