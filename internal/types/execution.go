package types

import "time"

// StageResult is the outcome of the most recent run of one stage for one
// content item. A new run replaces the old result wholesale; no history is
// kept beyond the latest.
type StageResult struct {
	Status       Status    `json:"status"`
	Message      string    `json:"message,omitempty"`
	PublishedURL string    `json:"published_url,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ExecutionState records the per-content-item stage results plus the single
// verified-URL slot shared by all stages. It is persisted wholesale after
// every mutation so a crash loses at most the in-flight stage.
type ExecutionState struct {
	ContentItemID string                 `json:"content_item_id"`
	PipelineID    string                 `json:"pipeline_id"`
	VerifiedURL   string                 `json:"verified_url,omitempty"`
	Results       map[string]StageResult `json:"results"`
}

// NewExecutionState creates an empty execution record for a content item.
func NewExecutionState(contentItemID, pipelineID string) *ExecutionState {
	return &ExecutionState{
		ContentItemID: contentItemID,
		PipelineID:    pipelineID,
		Results:       map[string]StageResult{},
	}
}

// Result returns the stored result for a stage, and whether one exists.
func (e *ExecutionState) Result(stageID string) (StageResult, bool) {
	r, ok := e.Results[stageID]
	return r, ok
}

// SetResult overwrites the stored result for a stage.
func (e *ExecutionState) SetResult(stageID string, r StageResult) {
	if e.Results == nil {
		e.Results = map[string]StageResult{}
	}
	e.Results[stageID] = r
}
