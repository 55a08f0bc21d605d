package types

import "sort"

// Pipeline is the ordered, user-edited list of stage configurations for a
// project. One Pipeline per project, shared by all of its content items.
type Pipeline struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Stages []StageConfig `json:"stages"`
}

// StagesInOrder returns a copy of the stages sorted by their order values.
// Order values may have gaps; only relative order is meaningful.
func (p *Pipeline) StagesInOrder() []StageConfig {
	out := make([]StageConfig, len(p.Stages))
	copy(out, p.Stages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// FindStage returns a pointer to the stage with the given ID, or nil.
func (p *Pipeline) FindStage(id string) *StageConfig {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return &p.Stages[i]
		}
	}
	return nil
}

// FindByKind returns a pointer to the first stage of the given kind, or nil.
func (p *Pipeline) FindByKind(kind StageKind) *StageConfig {
	for i := range p.Stages {
		if p.Stages[i].Kind == kind {
			return &p.Stages[i]
		}
	}
	return nil
}

// MaxOrder returns the highest order value among all stages (0 when empty).
func (p *Pipeline) MaxOrder() int {
	max := 0
	for i := range p.Stages {
		if p.Stages[i].Order > max {
			max = p.Stages[i].Order
		}
	}
	return max
}
