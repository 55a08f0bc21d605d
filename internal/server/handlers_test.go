package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/publish-agent/internal/engine"
	"github.com/jonathan/publish-agent/internal/fetch"
	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/publish"
	"github.com/jonathan/publish-agent/internal/types"
)

type stubExporter struct{}

func (stubExporter) Export(_ types.ContentItem, _, outPath string) (string, error) {
	return outPath, nil
}

func (stubExporter) ExportFile(_ types.ContentItem, outPath string) (string, error) {
	return outPath, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return "generated transform", nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(_ context.Context, _ publish.Profile, _ string) (*publish.Result, error) {
	return &publish.Result{Success: true, URL: "https://social.example/p/1"}, nil
}

type testServer struct {
	url    string
	pipe   *types.Pipeline
	export types.StageConfig
	verify types.StageConfig
	social types.StageConfig
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	contentDir := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "my-post.md"), []byte("# My Post\n\nbody\n"), 0o644))

	store := pipeline.NewStore(filepath.Join(dir, "state"))
	pipe := pipeline.NewPipeline("test blog")
	exportStage, err := pipeline.AddStage(pipe, types.KindWebExport, "", "")
	require.NoError(t, err)
	verifyStage, err := pipeline.AddStage(pipe, types.KindURLVerify, "", "")
	require.NoError(t, err)
	socialStage, err := pipeline.AddStage(pipe, types.KindSocialPublish, "", "linkedin")
	require.NoError(t, err)

	eng := engine.New(engine.Deps{
		Store:     store,
		Exporter:  stubExporter{},
		Generator: stubGenerator{},
		Publisher: stubPublisher{},
		Profiles:  publish.NewRegistry(nil),
		Prober: func(_ context.Context, url string, _ *fetch.Options) (*fetch.ProbeResult, error) {
			return &fetch.ProbeResult{URL: url, Live: true, StatusCode: 200}, nil
		},
		FileExists: func(string) bool { return true },
	}, types.Project{
		URLBase:   "https://blog.example",
		OutputDir: filepath.Join(dir, "public"),
	}, pipe)
	t.Cleanup(eng.Close)

	s := New(Config{Port: 0, ContentDir: contentDir}, eng)
	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)

	return &testServer{
		url:    srv.URL,
		pipe:   pipe,
		export: *exportStage,
		verify: *verifyStage,
		social: *socialStage,
	}
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.url+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestHandleListItems(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.url+"/items", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestHandleListStages(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.url+"/items/my-post/stages", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stages, ok := body["stages"].([]any)
	require.True(t, ok)
	require.Len(t, stages, 3)

	first := stages[0].(map[string]any)
	assert.Equal(t, string(types.StatusPending), first["status"])
	last := stages[2].(map[string]any)
	assert.Equal(t, string(types.StatusLocked), last["status"])
}

func TestHandleListStages_UnknownItem(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.url+"/items/ghost/stages", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleRunStage_Success(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/items/my-post/stages/%s/run", ts.url, ts.export.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(types.StatusCompleted), result["status"])
	assert.Equal(t, true, body["persisted"])
}

func TestHandleRunStage_LockedConflict(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/items/my-post/stages/%s/run", ts.url, ts.social.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "locked")
}

func TestHandleRunStage_FullFlow(t *testing.T) {
	ts := newTestServer(t)

	for _, stageID := range []string{ts.export.ID, ts.verify.ID, ts.social.ID} {
		resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/items/my-post/stages/%s/run", ts.url, stageID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := body["result"].(map[string]any)
		require.Equal(t, string(types.StatusCompleted), result["status"])
	}

	// The social result carries the published URL.
	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/items/my-post/stages/%s/run", ts.url, ts.social.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, "https://social.example/p/1", result["published_url"])
}

func TestHandleAddStage_AndGetPipeline(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.url+"/pipeline/stages", AddStageRequest{
		Kind:         string(types.KindManualCopyPaste),
		PlatformHint: "mastodon",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stages, ok := body["stages"].([]any)
	require.True(t, ok)
	assert.Len(t, stages, 4)

	resp, body = doJSON(t, http.MethodGet, ts.url+"/pipeline", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stages, ok = body["stages"].([]any)
	require.True(t, ok)
	assert.Len(t, stages, 4)
}

func TestHandleAddStage_DuplicateGatekeeperConflict(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.url+"/pipeline/stages", AddStageRequest{
		Kind: string(types.KindWebExport),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "already exists")
}

func TestHandleAddStage_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.url+"/pipeline/stages", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRemoveStage_GatekeeperConflict(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, ts.url+"/pipeline/stages/"+ts.export.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleMoveStage_BadDirection(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.url+"/pipeline/stages/"+ts.social.ID+"/move", MoveStageRequest{Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSetEnabled(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.url+"/pipeline/stages/"+ts.social.ID+"/enabled", SetEnabledRequest{Enabled: false})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stages := body["stages"].([]any)
	for _, raw := range stages {
		s := raw.(map[string]any)
		if s["id"] == ts.social.ID {
			assert.Equal(t, false, s["enabled"])
		}
	}
}

func TestTransformEndpoints(t *testing.T) {
	ts := newTestServer(t)

	// Nothing stored yet.
	resp, _ := doJSON(t, http.MethodGet, ts.url+"/items/my-post/transforms/linkedin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, ts.url+"/items/my-post/transforms/linkedin", PutTransformRequest{Text: "hand-written post"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.url+"/items/my-post/transforms/linkedin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hand-written post", body["text"])
	assert.Equal(t, false, body["approved"])

	resp, _ = doJSON(t, http.MethodPost, ts.url+"/items/my-post/transforms/linkedin/approve", ApproveTransformRequest{Approved: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.url+"/items/my-post/transforms/linkedin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["approved"])
}
