package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/publish-agent/internal/types"
)

// Store manages pipeline, execution, and transform state on disk.
//
// Layout:
//
//	<base>/pipeline.json
//	<base>/items/<item_id>/execution.json
//	<base>/items/<item_id>/transforms.json
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.publish-agent, creating the directory
// if needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".publish-agent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) pipelinePath() string {
	return filepath.Join(s.baseDir, "pipeline.json")
}

func (s *Store) itemDir(itemID string) string {
	return filepath.Join(s.baseDir, "items", itemID)
}

func (s *Store) executionPath(itemID string) string {
	return filepath.Join(s.itemDir(itemID), "execution.json")
}

func (s *Store) transformsPath(itemID string) string {
	return filepath.Join(s.itemDir(itemID), "transforms.json")
}

// LoadPipeline reads the project pipeline. A missing file yields a fresh
// empty pipeline: it is created on first open of a project.
func (s *Store) LoadPipeline(projectName string) (*types.Pipeline, error) {
	var p types.Pipeline
	if err := readJSON(s.pipelinePath(), &p); err != nil {
		if os.IsNotExist(err) {
			return NewPipeline(projectName), nil
		}
		return nil, fmt.Errorf("load pipeline: %w", err)
	}
	return &p, nil
}

// SavePipeline writes the pipeline wholesale.
func (s *Store) SavePipeline(p *types.Pipeline) error {
	if err := writeJSON(s.pipelinePath(), p); err != nil {
		return fmt.Errorf("save pipeline: %w", err)
	}
	return nil
}

// LoadExecution reads a content item's execution state, creating an empty
// record lazily the first time the item is opened.
func (s *Store) LoadExecution(itemID, pipelineID string) (*types.ExecutionState, error) {
	var e types.ExecutionState
	if err := readJSON(s.executionPath(itemID), &e); err != nil {
		if os.IsNotExist(err) {
			return types.NewExecutionState(itemID, pipelineID), nil
		}
		return nil, fmt.Errorf("load execution state for %s: %w", itemID, err)
	}
	if e.Results == nil {
		e.Results = map[string]types.StageResult{}
	}
	return &e, nil
}

// SaveExecution writes a content item's execution state wholesale.
func (s *Store) SaveExecution(e *types.ExecutionState) error {
	if err := writeJSON(s.executionPath(e.ContentItemID), e); err != nil {
		return fmt.Errorf("save execution state for %s: %w", e.ContentItemID, err)
	}
	return nil
}

// LoadTransforms reads the per-item transform records, keyed by platform.
// A missing file yields an empty map.
func (s *Store) LoadTransforms(itemID string) (map[string]types.TransformRecord, error) {
	records := map[string]types.TransformRecord{}
	if err := readJSON(s.transformsPath(itemID), &records); err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("load transforms for %s: %w", itemID, err)
	}
	return records, nil
}

// SaveTransforms writes the per-item transform records wholesale.
func (s *Store) SaveTransforms(itemID string, records map[string]types.TransformRecord) error {
	if err := writeJSON(s.transformsPath(itemID), records); err != nil {
		return fmt.Errorf("save transforms for %s: %w", itemID, err)
	}
	return nil
}
