package types

import "github.com/google/uuid"

// StageKind is the closed set of publishing stage kinds.
type StageKind string

// Stage kind constants
const (
	// KindWebExport renders the content item to HTML and writes it to the web output directory
	KindWebExport StageKind = "web_export"
	// KindURLVerify probes the expected public URL and records it once live
	KindURLVerify StageKind = "url_verify"
	// KindSocialPublish posts a platform-tailored transform to a social platform
	KindSocialPublish StageKind = "social_publish"
	// KindArticlePublish posts a transform to an external article site
	KindArticlePublish StageKind = "article_publish"
	// KindManualCopyPaste prepares a transform for the user to post by hand
	KindManualCopyPaste StageKind = "manual_copy_paste"
	// KindStaticExport writes a transformed HTML export for a secondary audience
	KindStaticExport StageKind = "static_export"
)

// stageNamespace is the fixed UUID namespace for deterministic stage IDs.
var stageNamespace = uuid.MustParse("9f2c1e8a-0b47-4b3e-8d15-6a9c83f0d2b1")

// StageConfig is one configured stage instance within a Pipeline.
type StageConfig struct {
	ID           string            `json:"id"`
	Kind         StageKind         `json:"kind"`
	Order        int               `json:"order"`
	ProfileID    string            `json:"profile_id,omitempty"`
	PlatformHint string            `json:"platform_hint,omitempty"`
	Prompt       string            `json:"prompt,omitempty"`
	Enabled      bool              `json:"enabled"`
	Settings     map[string]string `json:"settings,omitempty"`
}

// Setting returns the named stage setting, or "" if unset.
func (s *StageConfig) Setting(key string) string {
	if s.Settings == nil {
		return ""
	}
	return s.Settings[key]
}

// StageID derives the stable identifier for a stage from its kind and
// profile reference. Reloading a saved pipeline reproduces the same ID.
func StageID(kind StageKind, profileRef string) string {
	return uuid.NewSHA1(stageNamespace, []byte(string(kind)+"/"+profileRef)).String()
}
