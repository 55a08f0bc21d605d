// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/publish-agent/internal/engine"
	"github.com/jonathan/publish-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// previewLen is how much transform text to show before truncating
	previewLen = 400
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStageTable outputs the stage list with effective statuses.
func (p *Printer) PrintStageTable(item types.ContentItem, views []engine.StageView) {
	var sb strings.Builder
	for _, v := range views {
		target := v.Stage.ProfileID
		if target == "" {
			target = v.Stage.PlatformHint
		}
		enabled := ""
		if !v.Stage.Enabled {
			enabled = " (disabled)"
		}
		sb.WriteString(fmt.Sprintf("%-11s %-20s %s%s\n", strings.ToUpper(string(v.Status)), v.DisplayName, target, enabled))
	}
	p.printBox(fmt.Sprintf("Stages for %s", item.Slug), strings.TrimRight(sb.String(), "\n"))
}

// PrintResult outputs a single stage result.
func (p *Printer) PrintResult(kind types.StageKind, res *types.StageResult) {
	content := fmt.Sprintf("Status:  %s\nMessage: %s", res.Status, res.Message)
	if res.PublishedURL != "" {
		content += fmt.Sprintf("\nURL:     %s", res.PublishedURL)
	}
	p.printBox(fmt.Sprintf("Result: %s", kind), content)
}

// PrintTransform outputs a stored transform record with a text preview.
func (p *Printer) PrintTransform(platformKey string, rec types.TransformRecord) {
	text := rec.Text
	if len(text) > previewLen {
		text = text[:previewLen] + "..."
	}
	header := fmt.Sprintf("Generated: %s\nApproved:  %t\n\n",
		time.UnixMilli(rec.GeneratedAtMillis).UTC().Format(time.RFC3339), rec.Approved)
	p.printBox(fmt.Sprintf("Transform: %s", platformKey), header+text)
}
