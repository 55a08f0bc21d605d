package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/publish-agent/internal/content"
	"github.com/jonathan/publish-agent/internal/engine"
	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/types"
)

// RunStageRequest is the request body for running a stage. Confirmed marks
// a manual copy-paste stage done on the user's behalf.
type RunStageRequest struct {
	Confirmed      bool   `json:"confirmed,omitempty"`
	ConfirmMessage string `json:"confirm_message,omitempty"`
}

// RunStageResponse wraps the stage result. Persisted is false when the
// result was applied in memory but could not be written to disk.
type RunStageResponse struct {
	Result    *types.StageResult `json:"result"`
	Persisted bool               `json:"persisted"`
	Warning   string             `json:"warning,omitempty"`
}

// AddStageRequest is the request body for adding a pipeline stage
type AddStageRequest struct {
	Kind         string `json:"kind" validate:"required"`
	ProfileID    string `json:"profile_id,omitempty"`
	PlatformHint string `json:"platform_hint,omitempty"`
}

// MoveStageRequest is the request body for reordering a pipeline stage
type MoveStageRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// SetEnabledRequest is the request body for toggling a stage
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// PutTransformRequest is the request body for a manual transform edit
type PutTransformRequest struct {
	Text string `json:"text" validate:"required"`
}

// ApproveTransformRequest is the request body for transform approval
type ApproveTransformRequest struct {
	Approved bool `json:"approved"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (s *Server) item(w http.ResponseWriter, r *http.Request) (types.ContentItem, bool) {
	item, err := content.Load(s.contentDir, r.PathValue("slug"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return types.ContentItem{}, false
	}
	return item, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, _ *http.Request) {
	items, err := content.List(s.contentDir)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	item, ok := s.item(w, r)
	if !ok {
		return
	}
	views, err := s.engine.ListStages(item)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"stages": views})
}

func (s *Server) handleRunStage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.item(w, r)
	if !ok {
		return
	}

	var req RunStageRequest
	if r.ContentLength > 0 && !s.decode(w, r, &req) {
		return
	}
	var confirm *engine.ManualConfirmation
	if req.Confirmed {
		confirm = &engine.ManualConfirmation{Message: req.ConfirmMessage}
	}

	result, err := s.engine.Run(r.Context(), item, r.PathValue("stage_id"), confirm)
	if err != nil {
		var persistErr *engine.PersistenceError
		if errors.As(err, &persistErr) && result != nil {
			s.jsonResponse(w, http.StatusOK, RunStageResponse{
				Result:  result,
				Warning: persistErr.Error(),
			})
			return
		}
		s.engineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, RunStageResponse{Result: result, Persisted: true})
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, _ *http.Request) {
	p := s.engine.Pipeline()
	s.jsonResponse(w, http.StatusOK, p)
}

// mutateAndSave applies a pipeline mutation and persists the result. The
// mutation endpoints are the UI's save action.
func (s *Server) mutateAndSave(w http.ResponseWriter, r *http.Request, fn func(*types.Pipeline) error) {
	if err := s.engine.Mutate(fn); err != nil {
		var cfgErr *pipeline.ConfigError
		if errors.As(err, &cfgErr) {
			s.errorResponse(w, http.StatusConflict, cfgErr.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.engine.SavePipeline(r.Context()); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.engine.Pipeline())
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	var req AddStageRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutateAndSave(w, r, func(p *types.Pipeline) error {
		_, err := pipeline.AddStage(p, types.StageKind(req.Kind), req.ProfileID, req.PlatformHint)
		return err
	})
}

func (s *Server) handleRemoveStage(w http.ResponseWriter, r *http.Request) {
	stageID := r.PathValue("stage_id")
	s.mutateAndSave(w, r, func(p *types.Pipeline) error {
		return pipeline.RemoveStage(p, stageID)
	})
}

func (s *Server) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	var req MoveStageRequest
	if !s.decode(w, r, &req) {
		return
	}
	stageID := r.PathValue("stage_id")
	s.mutateAndSave(w, r, func(p *types.Pipeline) error {
		if req.Direction == "up" {
			return pipeline.MoveUp(p, stageID)
		}
		return pipeline.MoveDown(p, stageID)
	})
}

func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req SetEnabledRequest
	if !s.decode(w, r, &req) {
		return
	}
	stageID := r.PathValue("stage_id")
	s.mutateAndSave(w, r, func(p *types.Pipeline) error {
		return pipeline.SetEnabled(p, stageID, req.Enabled)
	})
}

func (s *Server) handleGetTransform(w http.ResponseWriter, r *http.Request) {
	item, ok := s.item(w, r)
	if !ok {
		return
	}
	rec, found, err := s.engine.Transform(item, r.PathValue("platform"))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "no transform stored for platform")
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handlePutTransform(w http.ResponseWriter, r *http.Request) {
	item, ok := s.item(w, r)
	if !ok {
		return
	}
	var req PutTransformRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.EditTransform(item, r.PathValue("platform"), req.Text); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleApproveTransform(w http.ResponseWriter, r *http.Request) {
	item, ok := s.item(w, r)
	if !ok {
		return
	}
	var req ApproveTransformRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.ApproveTransform(item, r.PathValue("platform"), req.Approved); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}
