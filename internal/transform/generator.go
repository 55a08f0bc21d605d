package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/publish-agent/internal/llm"
)

// Generator produces platform-tailored transform text from an instruction
// prompt and the source content. Implemented by the LLM client wrapper;
// tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt, content string) (string, error)
}

// LLMGenerator generates transforms through the configured LLM client.
type LLMGenerator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMGenerator wraps an LLM client as a Generator.
func NewLLMGenerator(client llm.Client, tier llm.ModelTier) *LLMGenerator {
	return &LLMGenerator{client: client, tier: tier}
}

// Generate produces transform text for the given prompt and content.
func (g *LLMGenerator) Generate(ctx context.Context, prompt, content string) (string, error) {
	text, err := g.client.GenerateContent(ctx, prompt+"\n\n---\n\n"+content, g.tier)
	if err != nil {
		return "", fmt.Errorf("transform generation failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transform generation returned empty text")
	}
	return text, nil
}

// ComposePrompt builds the effective generation prompt, embedding the
// verified public URL when one is known so the transform can link back to
// the published article.
func ComposePrompt(instruction, verifiedURL string) string {
	if verifiedURL == "" {
		return instruction
	}
	return instruction + "\n\nThe published article is live at: " + verifiedURL
}
