// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/publish-agent/internal/publish"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Project
	ProjectName     string `json:"project_name,omitempty"`                  // Display name for the project pipeline
	URLBase         string `json:"url_base,omitempty" validate:"omitempty,url"` // Public base URL content is served under
	OutputDir       string `json:"output_dir,omitempty"`                    // Web export output directory
	StaticOutputDir string `json:"static_output_dir,omitempty"`             // Secondary-audience export directory
	BaseDir         string `json:"base_dir,omitempty"`                      // State directory (pipeline, execution, transforms)
	ContentDir      string `json:"content_dir,omitempty"`                   // Directory of content item markdown files
	TemplatePath    string `json:"template_path,omitempty"`                 // Optional HTML page template

	// Publishing profiles (managed externally, read here)
	Profiles []publish.Profile `json:"profiles,omitempty" validate:"dive"`

	// WebhookURLs maps platform names to publish webhook endpoints
	WebhookURLs map[string]string `json:"webhook_urls,omitempty" validate:"dive,url"`

	// Behavior
	APIKey              string `json:"api_key,omitempty"`                                    // Gemini API key
	DatabaseURL         string `json:"database_url,omitempty"`                               // Optional PostgreSQL run-history URL
	UseBrowser          bool   `json:"use_browser,omitempty"`                                // Probe URLs with a headless browser
	Verbose             bool   `json:"verbose,omitempty"`                                    // Print detailed debug information
	ProbeTimeoutSecs    int    `json:"probe_timeout_secs,omitempty" validate:"gte=0"`        // URL probe timeout
	GenerateTimeoutSecs int    `json:"generate_timeout_secs,omitempty" validate:"gte=0"`     // Transform generation timeout
	PublishTimeoutSecs  int    `json:"publish_timeout_secs,omitempty" validate:"gte=0"`      // Publish call timeout
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.TemplatePath != "" {
		if _, err := os.Stat(c.TemplatePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.TemplatePath)
		}
	}

	seen := map[string]bool{}
	for _, p := range c.Profiles {
		if p.ID == "" || p.Platform == "" {
			return fmt.Errorf("config error: profiles need both 'id' and 'platform'")
		}
		if seen[p.ID] {
			return fmt.Errorf("config error: duplicate profile id %q", p.ID)
		}
		seen[p.ID] = true
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ProjectName == "" {
		result.ProjectName = defaults.ProjectName
	}
	if result.URLBase == "" {
		result.URLBase = defaults.URLBase
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.StaticOutputDir == "" {
		result.StaticOutputDir = defaults.StaticOutputDir
	}
	if result.BaseDir == "" {
		result.BaseDir = defaults.BaseDir
	}
	if result.ContentDir == "" {
		result.ContentDir = defaults.ContentDir
	}
	if result.TemplatePath == "" {
		result.TemplatePath = defaults.TemplatePath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.ProbeTimeoutSecs == 0 {
		result.ProbeTimeoutSecs = defaults.ProbeTimeoutSecs
	}
	if result.GenerateTimeoutSecs == 0 {
		result.GenerateTimeoutSecs = defaults.GenerateTimeoutSecs
	}
	if result.PublishTimeoutSecs == 0 {
		result.PublishTimeoutSecs = defaults.PublishTimeoutSecs
	}

	if len(result.Profiles) == 0 {
		result.Profiles = defaults.Profiles
	}
	if len(result.WebhookURLs) == 0 {
		result.WebhookURLs = defaults.WebhookURLs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
