package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContent(t *testing.T, dir, slug, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, slug+".md"), []byte(body), 0o644))
}

func TestLoad_TitleFromFirstHeading(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "my-post", "# The Real Title\n\nbody\n\n## Section\n")

	item, err := Load(dir, "my-post")
	require.NoError(t, err)
	assert.Equal(t, "my-post", item.ID)
	assert.Equal(t, "my-post", item.Slug)
	assert.Equal(t, "The Real Title", item.Title)
	assert.Equal(t, filepath.Join(dir, "my-post.md"), item.MarkdownPath)
}

func TestLoad_TitleFallsBackToSlug(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "no-heading-post", "just text, no heading\n")

	item, err := Load(dir, "no-heading-post")
	require.NoError(t, err)
	assert.Equal(t, "No Heading Post", item.Title)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestList_SortedMarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "zebra", "# Z")
	writeContent(t, dir, "alpha", "# A")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.md"), 0o755))

	items, err := List(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Slug)
	assert.Equal(t, "zebra", items[1].Slug)
}

func TestList_MissingDir(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
