// Package types provides type definitions for structured data used throughout the publish-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Status represents the lifecycle state of one stage run for one content item.
type Status string

// Status constants define the possible stage statuses
const (
	// StatusPending means the stage has never produced a result
	StatusPending Status = "pending"
	// StatusInProgress means a run has started but not yet settled
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the last run succeeded
	StatusCompleted Status = "completed"
	// StatusFailed means the last run failed
	StatusFailed Status = "failed"
	// StatusWarning means the last run succeeded but the outcome is suspect
	// (e.g. an exported file has since been deleted)
	StatusWarning Status = "warning"
	// StatusLocked is derived only: the stage is gated behind an incomplete
	// gatekeeper. It is never stored in an ExecutionState.
	StatusLocked Status = "locked"
)

// IsTerminal reports whether a stored status represents a settled run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusWarning
}
