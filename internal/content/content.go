// Package content resolves content items from the project's markdown
// directory. Item IDs are their slugs; titles come from the first heading.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/publish-agent/internal/types"
)

// Load resolves one content item by slug.
func Load(dir, slug string) (types.ContentItem, error) {
	path := filepath.Join(dir, slug+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ContentItem{}, fmt.Errorf("content item %q not found: %w", slug, err)
	}
	return types.ContentItem{
		ID:           slug,
		Slug:         slug,
		Title:        titleOf(string(data), slug),
		MarkdownPath: path,
	}, nil
}

// List returns every content item in the directory, sorted by slug.
func List(dir string) ([]types.ContentItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", dir, err)
	}

	var items []types.ContentItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		item, err := Load(dir, slug)
		if err != nil {
			continue // skip unreadable entries
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Slug < items[j].Slug })
	return items, nil
}

// titleOf extracts the first markdown heading, falling back to a
// de-slugged title.
func titleOf(markdown, slug string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
	}
	return strings.Title(strings.ReplaceAll(slug, "-", " ")) //nolint:staticcheck // slugs are ASCII
}
