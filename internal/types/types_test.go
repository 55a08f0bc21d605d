package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageID_Deterministic(t *testing.T) {
	a := StageID(KindSocialPublish, "linkedin")
	b := StageID(KindSocialPublish, "linkedin")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, StageID(KindSocialPublish, "mastodon"))
	assert.NotEqual(t, a, StageID(KindArticlePublish, "linkedin"))
}

func TestStagesInOrder_SortsWithoutMutating(t *testing.T) {
	p := &Pipeline{Stages: []StageConfig{
		{ID: "c", Order: 7},
		{ID: "a", Order: 1},
		{ID: "b", Order: 3},
	}}

	ordered := p.StagesInOrder()
	require.Len(t, ordered, 3)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", ordered[1].ID)
	assert.Equal(t, "c", ordered[2].ID)

	// The pipeline's own slice keeps insertion order.
	assert.Equal(t, "c", p.Stages[0].ID)
}

func TestMaxOrder(t *testing.T) {
	p := &Pipeline{}
	assert.Equal(t, 0, p.MaxOrder())

	p.Stages = []StageConfig{{Order: 2}, {Order: 9}, {Order: 4}}
	assert.Equal(t, 9, p.MaxOrder())
}

func TestSetting(t *testing.T) {
	s := StageConfig{}
	assert.Empty(t, s.Setting("require_url_match"))

	s.Settings = map[string]string{"require_url_match": "true"}
	assert.Equal(t, "true", s.Setting("require_url_match"))
}

func TestProject_DerivedPaths(t *testing.T) {
	p := Project{URLBase: "https://blog.example/", OutputDir: "/srv/public"}
	item := ContentItem{Slug: "my-post"}

	assert.Equal(t, "https://blog.example/my-post.html", p.ExpectedURL(item))
	assert.Equal(t, "/srv/public/my-post.html", p.ExportPath(item))

	// No static dir configured: fall back next to the web export.
	assert.Equal(t, "/srv/public/my-post.static.html", p.StaticExportPath(item))

	p.StaticOutputDir = "/srv/static"
	assert.Equal(t, "/srv/static/my-post.static.html", p.StaticExportPath(item))
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusLocked.IsTerminal())
}

func TestExecutionState_Results(t *testing.T) {
	e := NewExecutionState("item", "pipe")

	_, ok := e.Result("s1")
	assert.False(t, ok)

	e.SetResult("s1", StageResult{Status: StatusCompleted})
	r, ok := e.Result("s1")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, r.Status)

	// SetResult survives a nil map after JSON decoding.
	var decoded ExecutionState
	decoded.SetResult("s2", StageResult{Status: StatusFailed})
	_, ok = decoded.Result("s2")
	assert.True(t, ok)
}
