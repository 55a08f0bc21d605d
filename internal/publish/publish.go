// Package publish defines the publishing-profile registry and the opaque
// publisher interface the engine dispatches social and article posts to.
// The clients that actually talk to platforms live behind Publisher.
package publish

import (
	"context"
	"fmt"
	"strings"
)

// Profile references an external publishing account.
type Profile struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	DisplayName string `json:"display_name,omitempty"`
}

// Result is the outcome of one publish call.
type Result struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// Publisher posts transform text to the platform behind a profile. Calls
// may take a while and must respect the context deadline.
type Publisher interface {
	Publish(ctx context.Context, profile Profile, text string) (*Result, error)
}

// Registry holds the configured publishing profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry from configured profiles.
func NewRegistry(profiles []Profile) *Registry {
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &Registry{profiles: m}
}

// Get returns the profile with the given ID.
func (r *Registry) Get(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// PlatformKeyer resolves the platform identity a stage's transform is
// cached under: the profile's platform when a profile is referenced, else
// the stage's platform hint.
type PlatformKeyer interface {
	PlatformKey(profileID, platformHint string) (string, error)
}

// PlatformKey implements PlatformKeyer on the registry.
func (r *Registry) PlatformKey(profileID, platformHint string) (string, error) {
	if profileID != "" {
		p, ok := r.Get(profileID)
		if !ok {
			return "", fmt.Errorf("unknown publishing profile: %s", profileID)
		}
		return normalizeKey(p.Platform), nil
	}
	if platformHint != "" {
		return normalizeKey(platformHint), nil
	}
	return "", fmt.Errorf("stage has neither a profile nor a platform hint")
}

func normalizeKey(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
