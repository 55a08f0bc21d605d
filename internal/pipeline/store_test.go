package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/publish-agent/internal/types"
)

func TestLoadPipeline_MissingFileCreatesFresh(t *testing.T) {
	store := NewStore(t.TempDir())

	p, err := store.LoadPipeline("my blog")
	require.NoError(t, err)
	assert.Equal(t, "my blog", p.Name)
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, p.Stages)
}

func TestSavePipeline_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	p := NewPipeline("my blog")
	_, err := AddStage(p, types.KindWebExport, "", "")
	require.NoError(t, err)
	_, err = AddStage(p, types.KindSocialPublish, "", "linkedin")
	require.NoError(t, err)

	require.NoError(t, store.SavePipeline(p))

	loaded, err := store.LoadPipeline("ignored when file exists")
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, "my blog", loaded.Name)
	require.Len(t, loaded.Stages, 2)
	assert.Equal(t, p.Stages[1].ID, loaded.Stages[1].ID)
}

func TestLoadExecution_LazyCreate(t *testing.T) {
	store := NewStore(t.TempDir())

	exec, err := store.LoadExecution("post-1", "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, "post-1", exec.ContentItemID)
	assert.Equal(t, "pipe-1", exec.PipelineID)
	assert.NotNil(t, exec.Results)
	assert.Empty(t, exec.Results)
}

func TestSaveExecution_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	exec := types.NewExecutionState("post-1", "pipe-1")
	exec.VerifiedURL = "https://example.com/post-1.html"
	exec.SetResult("stage-a", types.StageResult{
		Status:    types.StatusCompleted,
		Message:   "done",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
	require.NoError(t, store.SaveExecution(exec))

	loaded, err := store.LoadExecution("post-1", "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post-1.html", loaded.VerifiedURL)
	r, ok := loaded.Result("stage-a")
	require.True(t, ok)
	assert.Equal(t, types.StatusCompleted, r.Status)
	assert.Equal(t, "done", r.Message)
}

func TestTransforms_RoundTripAndMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	records, err := store.LoadTransforms("post-1")
	require.NoError(t, err)
	assert.Empty(t, records)

	records["linkedin"] = types.TransformRecord{Text: "post text", GeneratedAtMillis: 42, Approved: true}
	require.NoError(t, store.SaveTransforms("post-1", records))

	loaded, err := store.LoadTransforms("post-1")
	require.NoError(t, err)
	require.Contains(t, loaded, "linkedin")
	assert.Equal(t, "post text", loaded["linkedin"].Text)
	assert.True(t, loaded["linkedin"].Approved)
}

func TestStore_CorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.json"), []byte("{not json"), 0o644))

	_, err := store.LoadPipeline("blog")
	assert.Error(t, err)
}

func TestWriteAtomic_NoPartialFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	p := NewPipeline("blog")
	require.NoError(t, store.SavePipeline(p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
