package stages

import "github.com/jonathan/publish-agent/internal/types"

// Default transform prompts by platform. The fallback prompt is used for
// platforms without a tailored default.
var defaultPlatformPrompts = map[string]string{
	"linkedin": "Rewrite this article as a LinkedIn post: professional tone, a short hook in the first line, no hashtag spam, and end with a link to the full article.",
	"twitter":  "Rewrite this article as a concise thread opener under 280 characters. Punchy, no emoji overload, link at the end.",
	"mastodon": "Rewrite this article as a Mastodon post under 500 characters with a link to the full article.",
	"medium":   "Rewrite this article for a Medium audience: keep the structure, tighten the prose, add a one-paragraph introduction, and link back to the original.",
	"devto":    "Rewrite this article for dev.to: developer-focused, keep code blocks intact, add a canonical link note at the top.",
}

const fallbackPrompt = "Rewrite this article for the target platform. Keep the core message, adapt tone and length to the platform, and include a link to the original article."

const staticExportPrompt = "Rewrite this article for a general, non-technical audience. Plain language, short sentences, keep the key takeaways."

// DefaultPrompt returns the default transform instruction for a stage kind
// and platform. Stage kinds that never generate a transform return "".
func DefaultPrompt(kind types.StageKind, platform string) string {
	if !RequiresTransform(kind) {
		return ""
	}
	if kind == types.KindStaticExport {
		return staticExportPrompt
	}
	if p, ok := defaultPlatformPrompts[platform]; ok {
		return p
	}
	return fallbackPrompt
}

// EffectivePrompt returns the stage's prompt override, or the kind+platform
// default when no override is configured.
func EffectivePrompt(stage types.StageConfig, platform string) string {
	if stage.Prompt != "" {
		return stage.Prompt
	}
	return DefaultPrompt(stage.Kind, platform)
}
