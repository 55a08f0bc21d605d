// Package pipeline provides the pipeline model mutations and the on-disk
// store for pipelines, execution states, and transform records.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/publish-agent/internal/stages"
	"github.com/jonathan/publish-agent/internal/types"
)

// ConfigError is a synchronous rejection of a pipeline mutation. The
// pipeline is never partially mutated when one is returned.
type ConfigError struct {
	Op      string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewPipeline creates an empty pipeline for a project.
func NewPipeline(name string) *types.Pipeline {
	return &types.Pipeline{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// AddStage appends a new stage of the given kind. Gatekeeper kinds may
// exist at most once per pipeline. The new stage takes maxOrder+1 so
// existing order values are untouched.
func AddStage(p *types.Pipeline, kind types.StageKind, profileID, platformHint string) (*types.StageConfig, error) {
	if _, err := stages.Lookup(kind); err != nil {
		return nil, &ConfigError{Op: "add stage", Message: err.Error()}
	}
	if stages.IsGatekeeper(kind) && p.FindByKind(kind) != nil {
		return nil, &ConfigError{Op: "add stage", Message: fmt.Sprintf("a %s stage already exists", kind)}
	}

	profileRef := profileID
	if profileRef == "" {
		profileRef = platformHint
	}
	id := types.StageID(kind, profileRef)
	if p.FindStage(id) != nil {
		return nil, &ConfigError{Op: "add stage", Message: fmt.Sprintf("stage %s/%s already configured", kind, profileRef)}
	}

	stage := types.StageConfig{
		ID:           id,
		Kind:         kind,
		Order:        p.MaxOrder() + 1,
		ProfileID:    profileID,
		PlatformHint: platformHint,
		Enabled:      true,
	}
	p.Stages = append(p.Stages, stage)
	return p.FindStage(id), nil
}

// RemoveStage deletes a non-gatekeeper stage. Remaining order values keep
// their gaps; ordering is only ever compared relatively. Results stored for
// the removed stage are left inert in execution states, never purged.
func RemoveStage(p *types.Pipeline, stageID string) error {
	stage := p.FindStage(stageID)
	if stage == nil {
		return &ConfigError{Op: "remove stage", Message: "stage not found"}
	}
	if stages.IsGatekeeper(stage.Kind) {
		return &ConfigError{Op: "remove stage", Message: fmt.Sprintf("%s is a gatekeeper stage and cannot be removed", stage.Kind)}
	}
	for i := range p.Stages {
		if p.Stages[i].ID == stageID {
			p.Stages = append(p.Stages[:i], p.Stages[i+1:]...)
			return nil
		}
	}
	return nil
}

// MoveUp swaps a stage's order value with its upward neighbor. Gatekeeper
// stages are immovable and form a boundary other stages cannot cross.
func MoveUp(p *types.Pipeline, stageID string) error {
	return move(p, stageID, -1)
}

// MoveDown swaps a stage's order value with its downward neighbor.
func MoveDown(p *types.Pipeline, stageID string) error {
	return move(p, stageID, +1)
}

func move(p *types.Pipeline, stageID string, dir int) error {
	op := "move up"
	if dir > 0 {
		op = "move down"
	}

	stage := p.FindStage(stageID)
	if stage == nil {
		return &ConfigError{Op: op, Message: "stage not found"}
	}
	if stages.IsGatekeeper(stage.Kind) {
		return &ConfigError{Op: op, Message: "gatekeeper stages cannot be reordered"}
	}

	ordered := p.StagesInOrder()
	idx := -1
	for i := range ordered {
		if ordered[i].ID == stageID {
			idx = i
			break
		}
	}
	neighborIdx := idx + dir
	if neighborIdx < 0 || neighborIdx >= len(ordered) {
		return &ConfigError{Op: op, Message: "stage is already at the boundary"}
	}
	neighbor := p.FindStage(ordered[neighborIdx].ID)
	if stages.IsGatekeeper(neighbor.Kind) {
		return &ConfigError{Op: op, Message: "cannot move a stage past a gatekeeper"}
	}

	// Swap only the two order values; unrelated stages keep theirs.
	stage.Order, neighbor.Order = neighbor.Order, stage.Order
	return nil
}

// SetEnabled toggles a stage's visibility to the run list. Stored results
// are not altered.
func SetEnabled(p *types.Pipeline, stageID string, enabled bool) error {
	stage := p.FindStage(stageID)
	if stage == nil {
		return &ConfigError{Op: "set enabled", Message: "stage not found"}
	}
	stage.Enabled = enabled
	return nil
}
