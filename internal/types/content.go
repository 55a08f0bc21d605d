package types

import (
	"path/filepath"
	"strings"
)

// ContentItem identifies one piece of content a pipeline runs against.
type ContentItem struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	MarkdownPath string `json:"markdown_path"`
}

// Project holds the per-project settings the engine needs to derive export
// paths and the expected public URL for a content item.
type Project struct {
	URLBase         string `json:"url_base"`
	OutputDir       string `json:"output_dir"`
	StaticOutputDir string `json:"static_output_dir,omitempty"`
}

// ExpectedURL derives the public URL a content item should be reachable at
// once exported: url_base + slug + ".html".
func (p *Project) ExpectedURL(item ContentItem) string {
	base := strings.TrimSuffix(p.URLBase, "/")
	return base + "/" + item.Slug + ".html"
}

// ExportPath returns the web export target for a content item.
func (p *Project) ExportPath(item ContentItem) string {
	return filepath.Join(p.OutputDir, item.Slug+".html")
}

// StaticExportPath returns the secondary-audience export target. It falls
// back to the web output directory with a distinct filename when no static
// output directory is configured.
func (p *Project) StaticExportPath(item ContentItem) string {
	dir := p.StaticOutputDir
	if dir == "" {
		dir = p.OutputDir
	}
	return filepath.Join(dir, item.Slug+".static.html")
}
