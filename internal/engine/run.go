package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/publish-agent/internal/fetch"
	"github.com/jonathan/publish-agent/internal/publish"
	"github.com/jonathan/publish-agent/internal/stages"
	"github.com/jonathan/publish-agent/internal/transform"
	"github.com/jonathan/publish-agent/internal/types"
)

// ManualConfirmation reports the user's decision for a manual copy-paste
// stage: "marked as done" or "copied to clipboard".
type ManualConfirmation struct {
	Message string
}

// actionOutcome carries a settled stage action result back to the owner.
type actionOutcome struct {
	result      types.StageResult
	verifiedURL string
	// awaitingUser means a manual stage prepared its transform but the
	// user has not confirmed posting; the prior stored result is restored.
	awaitingUser bool
}

// Run executes one stage for one content item and blocks until the final
// result has been recorded and persisted. Execution-time failures are
// recovered into a failed result, never returned as errors; the error
// return covers synchronous rejections and persistence failures only.
//
// Running a stage that already has a settled result is always permitted
// and overwrites it. A persisted in_progress result from a previous
// session does not block a re-run.
func (e *Engine) Run(ctx context.Context, item types.ContentItem, stageID string, confirm *ManualConfirmation) (*types.StageResult, error) {
	var (
		stage       types.StageConfig
		exec        *types.ExecutionState
		platformKey string
		prior       types.StageResult
		hadPrior    bool
		rejection   error
	)

	// Validation happens on the owner before any state is touched.
	e.call(func() {
		sp := e.pipe.FindStage(stageID)
		if sp == nil {
			rejection = &RejectedError{Reason: fmt.Sprintf("stage %s is not configured", stageID)}
			return
		}
		stage = *sp
		if !stage.Enabled {
			rejection = &RejectedError{Reason: fmt.Sprintf("stage %s is disabled", stage.Kind)}
			return
		}

		ex, err := e.deps.Store.LoadExecution(item.ID, e.pipe.ID)
		if err != nil {
			rejection = err
			return
		}
		exec = ex
		prior, hadPrior = exec.Result(stage.ID)

		if stages.EffectiveStatus(stage, e.pipe, exec, e.checks()) == types.StatusLocked {
			rejection = &RejectedError{Reason: "stage is locked: complete the export and verify stages first"}
			return
		}

		if stages.RequiresTransform(stage.Kind) {
			platformKey, err = e.deps.Profiles.PlatformKey(stage.ProfileID, stage.PlatformHint)
			if err != nil {
				rejection = &RejectedError{Reason: err.Error()}
			}
		}
	})
	if rejection != nil {
		return nil, rejection
	}

	// In-progress placeholder, persisted before any external call so a
	// concurrent status refresh sees the stage as busy.
	var persistErr error
	e.call(func() {
		exec.SetResult(stage.ID, types.StageResult{
			Status:    types.StatusInProgress,
			Message:   "running",
			Timestamp: time.Now().UTC(),
		})
		persistErr = e.deps.Store.SaveExecution(exec)
	})
	if persistErr != nil {
		return nil, &PersistenceError{Cause: persistErr}
	}
	e.emit(item, stage, PhaseStarted, "")

	// This goroutine is the worker: it performs the blocking external
	// calls and hops back to the owner for every state access.
	outcome := e.execute(ctx, item, stage, platformKey, exec.VerifiedURL, confirm)

	e.call(func() {
		if outcome.awaitingUser {
			// Transform is ready but posting is the user's decision;
			// put the previous result back instead of recording one.
			if hadPrior {
				exec.SetResult(stage.ID, prior)
			} else {
				delete(exec.Results, stage.ID)
			}
		} else {
			if outcome.verifiedURL != "" {
				exec.VerifiedURL = outcome.verifiedURL
			}
			exec.SetResult(stage.ID, outcome.result)
		}
		persistErr = e.deps.Store.SaveExecution(exec)
	})

	if !outcome.awaitingUser && e.deps.History != nil {
		if herr := e.deps.History.RecordStageRun(ctx, item.ID, stage, outcome.result); herr != nil {
			fmt.Printf("Warning: failed to record stage run: %v\n", herr)
		}
	}
	e.emit(item, stage, PhaseRecorded, string(outcome.result.Status))

	if persistErr != nil {
		return &outcome.result, &PersistenceError{Cause: persistErr}
	}
	return &outcome.result, nil
}

// execute dispatches the stage-kind action. Every path returns a settled
// outcome; no failure escapes as a panic or error.
func (e *Engine) execute(ctx context.Context, item types.ContentItem, stage types.StageConfig, platformKey, verifiedURL string, confirm *ManualConfirmation) actionOutcome {
	switch stage.Kind {
	case types.KindWebExport:
		return e.runWebExport(item)
	case types.KindURLVerify:
		return e.runURLVerify(ctx, item, stage, verifiedURL)
	case types.KindSocialPublish, types.KindArticlePublish:
		return e.runPublish(ctx, item, stage, platformKey, verifiedURL)
	case types.KindManualCopyPaste:
		return e.runManual(ctx, item, stage, platformKey, verifiedURL, confirm)
	case types.KindStaticExport:
		return e.runStaticExport(ctx, item, stage, platformKey, verifiedURL)
	default:
		return failed(fmt.Sprintf("unknown stage kind: %s", stage.Kind))
	}
}

func (e *Engine) runWebExport(item types.ContentItem) actionOutcome {
	if e.deps.Exporter == nil {
		return failed("no exporter configured")
	}
	path, err := e.deps.Exporter.ExportFile(item, e.project.ExportPath(item))
	if err != nil {
		return failed(err.Error())
	}
	// The message is the output path; status derivation checks it still
	// exists on later refreshes.
	return completed(path, "")
}

func (e *Engine) runURLVerify(ctx context.Context, item types.ContentItem, stage types.StageConfig, verifiedURL string) actionOutcome {
	url := verifiedURL
	if url == "" {
		url = e.project.ExpectedURL(item)
	}

	opts := fetch.DefaultOptions()
	opts.Timeout = e.deps.ProbeTimeout
	opts.UseBrowser = e.deps.UseBrowser
	if stage.Setting("require_url_match") == "true" {
		opts.MatchText = item.Title
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.deps.ProbeTimeout)
	defer cancel()

	res, err := e.deps.Prober(probeCtx, url, opts)
	if err != nil {
		return failed(err.Error())
	}
	if !res.Live {
		return failed(fmt.Sprintf("verification of %s failed: %s", url, res.Detail))
	}

	out := completed(fmt.Sprintf("verified %s", url), "")
	out.verifiedURL = url
	return out
}

func (e *Engine) runPublish(ctx context.Context, item types.ContentItem, stage types.StageConfig, platformKey, verifiedURL string) actionOutcome {
	text, out, ok := e.obtainTransform(ctx, item, stage, platformKey, verifiedURL)
	if !ok {
		return out
	}

	if e.deps.Publisher == nil {
		return failed("no publisher configured")
	}
	profile, found := e.deps.Profiles.Get(stage.ProfileID)
	if !found {
		profile = publish.Profile{Platform: platformKey}
	}

	e.emit(item, stage, PhasePublishing, platformKey)
	pubCtx, cancel := context.WithTimeout(ctx, e.deps.PublishTimeout)
	defer cancel()

	res, err := e.deps.Publisher.Publish(pubCtx, profile, text)
	if err != nil {
		if pubCtx.Err() == context.DeadlineExceeded {
			return failed(fmt.Sprintf("publish to %s timed out after %s", platformKey, e.deps.PublishTimeout))
		}
		return failed(fmt.Sprintf("publish to %s failed: %v", platformKey, err))
	}
	if !res.Success {
		return failed(fmt.Sprintf("publish to %s failed: %s", platformKey, res.Message))
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("published to %s", platformKey)
	}
	return completed(msg, res.URL)
}

func (e *Engine) runManual(ctx context.Context, item types.ContentItem, stage types.StageConfig, platformKey, verifiedURL string, confirm *ManualConfirmation) actionOutcome {
	if confirm != nil {
		msg := confirm.Message
		if msg == "" {
			msg = "marked as done"
		}
		return completed(msg, "")
	}

	// Unconfirmed: the engine's contract ends at "transform ready".
	_, out, ok := e.obtainTransform(ctx, item, stage, platformKey, verifiedURL)
	if !ok {
		return out
	}
	return actionOutcome{
		awaitingUser: true,
		result: types.StageResult{
			Status:    types.StatusPending,
			Message:   "transform ready for manual posting",
			Timestamp: time.Now().UTC(),
		},
	}
}

func (e *Engine) runStaticExport(ctx context.Context, item types.ContentItem, stage types.StageConfig, platformKey, verifiedURL string) actionOutcome {
	text, out, ok := e.obtainTransform(ctx, item, stage, platformKey, verifiedURL)
	if !ok {
		return out
	}
	if e.deps.Exporter == nil {
		return failed("no exporter configured")
	}
	path, err := e.deps.Exporter.Export(item, text, e.project.StaticExportPath(item))
	if err != nil {
		return failed(err.Error())
	}
	return completed(path, "")
}

// obtainTransform resolves the transform text for a stage: in-memory cache,
// then disk store, then fresh generation written through to both tiers.
// The third return is false when the outcome is a settled failure.
func (e *Engine) obtainTransform(ctx context.Context, item types.ContentItem, stage types.StageConfig, platformKey, verifiedURL string) (string, actionOutcome, bool) {
	var text string
	var cached bool
	e.call(func() {
		text, cached = e.cache(item.ID).Get(platformKey)
	})
	if cached {
		return text, actionOutcome{}, true
	}

	if e.deps.Generator == nil {
		return "", failed("no transform generator configured"), false
	}

	source, err := os.ReadFile(item.MarkdownPath)
	if err != nil {
		return "", failed(fmt.Sprintf("reading content failed: %v", err)), false
	}

	prompt := transform.ComposePrompt(stages.EffectivePrompt(stage, platformKey), verifiedURL)
	e.emit(item, stage, PhaseGenerating, platformKey)

	genCtx, cancel := context.WithTimeout(ctx, e.deps.GenerateTimeout)
	defer cancel()

	text, err = e.deps.Generator.Generate(genCtx, prompt, string(source))
	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded {
			return "", failed(fmt.Sprintf("transform generation for %s timed out after %s", platformKey, e.deps.GenerateTimeout)), false
		}
		return "", failed(err.Error()), false
	}

	var putErr error
	e.call(func() {
		putErr = e.cache(item.ID).Put(platformKey, text)
	})
	if putErr != nil {
		return "", failed(fmt.Sprintf("caching transform for %s failed: %v", platformKey, putErr)), false
	}

	e.emit(item, stage, PhaseGenerated, platformKey)
	return text, actionOutcome{}, true
}

// RunEnabled runs every enabled stage for one item in pipeline order,
// stopping at the first failure. Manual copy-paste stages are skipped:
// they need the user.
func (e *Engine) RunEnabled(ctx context.Context, item types.ContentItem) error {
	snap := e.Pipeline()
	for _, stage := range (&snap).StagesInOrder() {
		if !stage.Enabled || stage.Kind == types.KindManualCopyPaste {
			continue
		}
		res, err := e.Run(ctx, item, stage.ID, nil)
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage.Kind, err)
		}
		if res.Status == types.StatusFailed {
			return fmt.Errorf("stage %s failed: %s", stage.Kind, res.Message)
		}
	}
	return nil
}

// RunItems runs RunEnabled for several content items concurrently. Items
// share no mutable state; the owner goroutine serializes all writes.
func (e *Engine) RunItems(ctx context.Context, items []types.ContentItem) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			if err := e.RunEnabled(gCtx, item); err != nil {
				return fmt.Errorf("item %s: %w", item.Slug, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func failed(msg string) actionOutcome {
	return actionOutcome{result: types.StageResult{
		Status:    types.StatusFailed,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}}
}

func completed(msg, publishedURL string) actionOutcome {
	return actionOutcome{result: types.StageResult{
		Status:       types.StatusCompleted,
		Message:      msg,
		PublishedURL: publishedURL,
		Timestamp:    time.Now().UTC(),
	}}
}
