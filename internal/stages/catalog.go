// Package stages provides stage definitions, gatekeeper gating, and
// effective-status derivation for the publishing pipeline.
package stages

import (
	"fmt"

	"github.com/jonathan/publish-agent/internal/types"
)

// Definition defines the fixed metadata for a stage kind.
type Definition struct {
	Kind        types.StageKind
	DisplayName string
	// IsGatekeeper stages must reach completed before any social stage may run
	IsGatekeeper bool
	// IsSocial stages are subject to the gatekeeper lock
	IsSocial bool
	// RequiresTransform stages need AI-generated content before execution
	RequiresTransform bool
}

// Catalog holds the definition for every stage kind.
var Catalog = map[types.StageKind]Definition{
	types.KindWebExport: {
		Kind:         types.KindWebExport,
		DisplayName:  "Export to Web",
		IsGatekeeper: true,
	},
	types.KindURLVerify: {
		Kind:         types.KindURLVerify,
		DisplayName:  "Verify URL",
		IsGatekeeper: true,
	},
	types.KindSocialPublish: {
		Kind:              types.KindSocialPublish,
		DisplayName:       "Publish to Social",
		IsSocial:          true,
		RequiresTransform: true,
	},
	types.KindArticlePublish: {
		Kind:              types.KindArticlePublish,
		DisplayName:       "Publish Article",
		IsSocial:          true,
		RequiresTransform: true,
	},
	types.KindManualCopyPaste: {
		Kind:              types.KindManualCopyPaste,
		DisplayName:       "Copy & Paste",
		IsSocial:          true,
		RequiresTransform: true,
	},
	types.KindStaticExport: {
		Kind:              types.KindStaticExport,
		DisplayName:       "Static Export",
		IsSocial:          true,
		RequiresTransform: true,
	},
}

// Lookup returns the definition for a stage kind.
func Lookup(kind types.StageKind) (Definition, error) {
	def, ok := Catalog[kind]
	if !ok {
		return Definition{}, fmt.Errorf("unknown stage kind: %s", kind)
	}
	return def, nil
}

// IsGatekeeper reports whether a stage kind is a gatekeeper kind.
func IsGatekeeper(kind types.StageKind) bool {
	return Catalog[kind].IsGatekeeper
}

// IsSocial reports whether a stage kind is subject to the gatekeeper lock.
func IsSocial(kind types.StageKind) bool {
	return Catalog[kind].IsSocial
}

// RequiresTransform reports whether a stage kind needs a generated
// transform before it can execute.
func RequiresTransform(kind types.StageKind) bool {
	return Catalog[kind].RequiresTransform
}
