package engine

// Phase identifies where in the run protocol a progress event was emitted.
type Phase string

// Progress phases
const (
	PhaseStarted    Phase = "started"
	PhaseGenerating Phase = "generating"
	PhaseGenerated  Phase = "generated"
	PhasePublishing Phase = "publishing"
	PhaseRecorded   Phase = "recorded"
)

// Progress is a status update emitted while a stage runs. It replaces any
// direct UI coupling: the engine only reports phases, the owner of the
// callback decides how to present them.
type Progress struct {
	ItemID  string `json:"item_id"`
	StageID string `json:"stage_id"`
	Kind    string `json:"kind"`
	Phase   Phase  `json:"phase"`
	Detail  string `json:"detail,omitempty"`
}

// ProgressCallback is called when stage run progress occurs
type ProgressCallback func(p Progress)
