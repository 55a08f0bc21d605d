package export

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/publish-agent/internal/types"
)

// Renderer converts source text (markdown) into an HTML body fragment.
// Proper markdown rendering is supplied by the caller; the default renderer
// only wraps paragraphs so exports are readable without one.
type Renderer func(source string) (string, error)

// DefaultTemplate is the page shell used when no template file is given.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
{{.Body}}
</main>
<footer><small>generated {{.GeneratedAt}}</small></footer>
</body>
</html>
`

// Exporter writes content items as templated HTML files.
type Exporter struct {
	render Renderer
	tmpl   *template.Template
}

// pageData is the template context for one export.
type pageData struct {
	Title       string
	Body        template.HTML
	GeneratedAt string
}

// New creates an Exporter. A nil renderer uses the paragraph-wrapping
// default; an empty templateText uses DefaultTemplate.
func New(render Renderer, templateText string) (*Exporter, error) {
	if render == nil {
		render = DefaultRenderer
	}
	if templateText == "" {
		templateText = DefaultTemplate
	}
	tmpl, err := template.New("page").Parse(templateText)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse page template", Cause: err}
	}
	return &Exporter{render: render, tmpl: tmpl}, nil
}

// NewFromFile creates an Exporter from a template file on disk.
func NewFromFile(render Renderer, templatePath string) (*Exporter, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &TemplateError{Message: fmt.Sprintf("failed to read template %s", templatePath), Cause: err}
	}
	return New(render, string(data))
}

// Export renders source text for a content item and writes the result to
// outPath, returning the written path.
func (e *Exporter) Export(item types.ContentItem, source, outPath string) (string, error) {
	body, err := e.render(source)
	if err != nil {
		return "", &ExportError{Message: "rendering content failed", Cause: err}
	}

	var sb strings.Builder
	err = e.tmpl.Execute(&sb, pageData{
		Title:       item.Title,
		Body:        template.HTML(body), //nolint:gosec // body comes from the renderer, not user input
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute page template", Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", &ExportError{Message: fmt.Sprintf("failed to create output directory for %s", outPath), Cause: err}
	}
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return "", &ExportError{Message: fmt.Sprintf("failed to write %s", outPath), Cause: err}
	}
	return outPath, nil
}

// ExportFile reads the item's markdown file and exports it to outPath.
func (e *Exporter) ExportFile(item types.ContentItem, outPath string) (string, error) {
	source, err := os.ReadFile(item.MarkdownPath)
	if err != nil {
		return "", &ExportError{Message: fmt.Sprintf("failed to read %s", item.MarkdownPath), Cause: err}
	}
	return e.Export(item, string(source), outPath)
}

// DefaultRenderer wraps blank-line-separated blocks in paragraph tags,
// HTML-escaping their text.
func DefaultRenderer(source string) (string, error) {
	blocks := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n\n")
	var sb strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(template.HTMLEscapeString(block))
		sb.WriteString("</p>\n")
	}
	return sb.String(), nil
}
