// Package engine provides the execution coordinator for the publishing
// pipeline: per-stage run protocol, status listing, pipeline edits, and
// transform management, all serialized through a single owner goroutine.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/publish-agent/internal/fetch"
	"github.com/jonathan/publish-agent/internal/history"
	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/publish"
	"github.com/jonathan/publish-agent/internal/stages"
	"github.com/jonathan/publish-agent/internal/transform"
	"github.com/jonathan/publish-agent/internal/types"
)

// Exporter writes content items as HTML files. Satisfied by
// *export.Exporter; tests substitute fakes.
type Exporter interface {
	Export(item types.ContentItem, source, outPath string) (string, error)
	ExportFile(item types.ContentItem, outPath string) (string, error)
}

// ProbeFunc checks whether a URL is live. Defaults to fetch.Probe.
type ProbeFunc func(ctx context.Context, url string, opts *fetch.Options) (*fetch.ProbeResult, error)

// Deps holds the engine's collaborators. Store, Exporter, and Profiles are
// required; the rest degrade gracefully when nil (stages that need a
// missing collaborator fail with a clear message instead of panicking).
type Deps struct {
	Store     *pipeline.Store
	Exporter  Exporter
	Prober    ProbeFunc
	Generator transform.Generator
	Publisher publish.Publisher
	Profiles  *publish.Registry
	History   *history.Recorder

	// FileExists backs the external-validity check on export results.
	FileExists func(path string) bool

	OnProgress ProgressCallback

	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	PublishTimeout  time.Duration

	// UseBrowser switches URL probing to a headless browser.
	UseBrowser bool
}

// defaults for unset dep fields
const (
	defaultProbeTimeout    = 15 * time.Second
	defaultGenerateTimeout = 90 * time.Second
	defaultPublishTimeout  = 60 * time.Second
)

// Engine coordinates stage execution for one project. All shared state
// (pipeline, execution states, transform caches) is owned by a single
// goroutine; workers post closures to it and never touch state directly.
type Engine struct {
	deps    Deps
	project types.Project
	pipe    *types.Pipeline

	// caches holds one transform cache per opened content item.
	caches map[string]*transform.Cache

	completions chan func()
}

// New creates an engine for a project and starts its owner goroutine.
// Callers must Close the engine when done.
func New(deps Deps, project types.Project, pipe *types.Pipeline) *Engine {
	if deps.Prober == nil {
		deps.Prober = fetch.Probe
	}
	if deps.FileExists == nil {
		deps.FileExists = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	if deps.ProbeTimeout == 0 {
		deps.ProbeTimeout = defaultProbeTimeout
	}
	if deps.GenerateTimeout == 0 {
		deps.GenerateTimeout = defaultGenerateTimeout
	}
	if deps.PublishTimeout == 0 {
		deps.PublishTimeout = defaultPublishTimeout
	}

	e := &Engine{
		deps:        deps,
		project:     project,
		pipe:        pipe,
		caches:      map[string]*transform.Cache{},
		completions: make(chan func(), 16),
	}
	go e.loop()
	return e
}

// Close stops the owner goroutine. No engine method may be called after.
func (e *Engine) Close() {
	close(e.completions)
}

// loop is the owner goroutine: the only writer of shared state.
func (e *Engine) loop() {
	for fn := range e.completions {
		fn()
	}
}

// call runs fn on the owner goroutine and waits for it to finish. Every
// read or write of pipeline, execution, or cache state goes through here.
func (e *Engine) call(fn func()) {
	done := make(chan struct{})
	e.completions <- func() {
		fn()
		close(done)
	}
	<-done
}

func (e *Engine) emit(item types.ContentItem, stage types.StageConfig, phase Phase, detail string) {
	if e.deps.OnProgress != nil {
		e.deps.OnProgress(Progress{
			ItemID:  item.ID,
			StageID: stage.ID,
			Kind:    string(stage.Kind),
			Phase:   phase,
			Detail:  detail,
		})
	}
}

// checks builds the external-check set for status derivation.
func (e *Engine) checks() stages.Checks {
	return stages.Checks{FileExists: e.deps.FileExists}
}

// cache returns the transform cache for an item, creating it on first use.
// Must be called on the owner goroutine.
func (e *Engine) cache(itemID string) *transform.Cache {
	c, ok := e.caches[itemID]
	if !ok {
		c = transform.NewCache(e.deps.Store, itemID)
		e.caches[itemID] = c
	}
	return c
}

// StageView is one row of the stage list shown to the user.
type StageView struct {
	Stage       types.StageConfig `json:"stage"`
	DisplayName string            `json:"display_name"`
	Status      types.Status      `json:"status"`
}

// ListStages returns the pipeline's stages in order with their effective
// statuses for one content item.
func (e *Engine) ListStages(item types.ContentItem) ([]StageView, error) {
	var views []StageView
	var outErr error
	e.call(func() {
		exec, err := e.deps.Store.LoadExecution(item.ID, e.pipe.ID)
		if err != nil {
			outErr = err
			return
		}
		for _, s := range e.pipe.StagesInOrder() {
			def, err := stages.Lookup(s.Kind)
			if err != nil {
				outErr = err
				return
			}
			views = append(views, StageView{
				Stage:       s,
				DisplayName: def.DisplayName,
				Status:      stages.EffectiveStatus(s, e.pipe, exec, e.checks()),
			})
		}
	})
	return views, outErr
}

// Pipeline returns a snapshot copy of the current pipeline.
func (e *Engine) Pipeline() types.Pipeline {
	var snap types.Pipeline
	e.call(func() {
		snap = *e.pipe
		snap.Stages = append([]types.StageConfig(nil), e.pipe.Stages...)
	})
	return snap
}

// Mutate applies a pipeline mutation. On success every in-memory transform
// cache is cleared: stage prompts may have changed, so cached text must not
// silently outlive a pipeline edit. Disk records are untouched.
func (e *Engine) Mutate(fn func(*types.Pipeline) error) error {
	var err error
	e.call(func() {
		err = fn(e.pipe)
		if err != nil {
			return
		}
		for _, c := range e.caches {
			c.Clear()
		}
	})
	return err
}

// SavePipeline persists the pipeline wholesale. The history record is best
// effort: the save succeeds even when the audit sink is unavailable.
func (e *Engine) SavePipeline(ctx context.Context) error {
	var err error
	e.call(func() {
		err = e.deps.Store.SavePipeline(e.pipe)
	})
	if err != nil {
		return err
	}
	if e.deps.History != nil {
		if herr := e.deps.History.RecordPipelineSave(ctx, e.pipe); herr != nil {
			fmt.Printf("Warning: failed to record pipeline save: %v\n", herr)
		}
	}
	return nil
}

// Transform returns the stored transform record for a platform.
func (e *Engine) Transform(item types.ContentItem, platformKey string) (types.TransformRecord, bool, error) {
	var rec types.TransformRecord
	var ok bool
	var err error
	e.call(func() {
		rec, ok, err = e.cache(item.ID).Record(platformKey)
	})
	return rec, ok, err
}

// EditTransform writes a manual transform edit through both cache tiers.
func (e *Engine) EditTransform(item types.ContentItem, platformKey, text string) error {
	var err error
	e.call(func() {
		err = e.cache(item.ID).SaveEdit(platformKey, text)
	})
	return err
}

// ApproveTransform toggles the approval flag on a stored transform.
func (e *Engine) ApproveTransform(item types.ContentItem, platformKey string, approved bool) error {
	var err error
	e.call(func() {
		err = e.cache(item.ID).SetApproved(platformKey, approved)
	})
	return err
}
