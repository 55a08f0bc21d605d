package stages

import "github.com/jonathan/publish-agent/internal/types"

// Checks are the side-effect-free external queries status derivation may
// need. They must be cheap: EffectiveStatus runs on every status refresh.
type Checks struct {
	// FileExists reports whether a previously exported artifact still
	// exists on disk. Nil disables the external-validity check.
	FileExists func(path string) bool
}

// GatekeepersSatisfied reports whether every enabled gatekeeper stage has a
// stored completed result. Disabled gatekeepers do not block.
func GatekeepersSatisfied(p *types.Pipeline, exec *types.ExecutionState) bool {
	for i := range p.Stages {
		s := &p.Stages[i]
		if !s.Enabled || !IsGatekeeper(s.Kind) {
			continue
		}
		r, ok := exec.Result(s.ID)
		if !ok || r.Status != types.StatusCompleted {
			return false
		}
	}
	return true
}

// EffectiveStatus computes the status shown to the user for one stage,
// applying the gatekeeper lock and external-validity rules on top of the
// raw stored result. It never mutates the execution state.
//
// A persisted in_progress status is returned verbatim: no live worker
// survives a restart, and re-running such a stage is always permitted, so
// it is retriable rather than stuck.
func EffectiveStatus(stage types.StageConfig, p *types.Pipeline, exec *types.ExecutionState, checks Checks) types.Status {
	if IsSocial(stage.Kind) && !GatekeepersSatisfied(p, exec) {
		return types.StatusLocked
	}

	r, ok := exec.Result(stage.ID)
	if !ok {
		return types.StatusPending
	}

	// A completed export whose artifact has since been deleted is demoted
	// to a warning. The message of an export result is its output path.
	if r.Status == types.StatusCompleted && exportKind(stage.Kind) &&
		checks.FileExists != nil && r.Message != "" && !checks.FileExists(r.Message) {
		return types.StatusWarning
	}

	return r.Status
}

func exportKind(kind types.StageKind) bool {
	return kind == types.KindWebExport || kind == types.KindStaticExport
}
