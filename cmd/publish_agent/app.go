package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/config"
	"github.com/jonathan/publish-agent/internal/engine"
	"github.com/jonathan/publish-agent/internal/export"
	"github.com/jonathan/publish-agent/internal/history"
	"github.com/jonathan/publish-agent/internal/llm"
	"github.com/jonathan/publish-agent/internal/observability"
	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/publish"
	"github.com/jonathan/publish-agent/internal/transform"
	"github.com/jonathan/publish-agent/internal/types"

	"time"
)

// Flags shared across subcommands; merged over the config file.
var (
	flagConfigPath string
	flagBaseDir    string
	flagContentDir string
	flagURLBase    string
	flagOutputDir  string
	flagAPIKey     string
	flagDBURL      string
	flagUseBrowser bool
	flagVerbose    bool
)

func registerCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&flagBaseDir, "base-dir", "", "State directory (default ~/.publish-agent)")
	cmd.Flags().StringVar(&flagContentDir, "content-dir", "", "Directory of content markdown files")
	cmd.Flags().StringVar(&flagURLBase, "url-base", "", "Public base URL content is served under")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Web export output directory")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&flagDBURL, "db-url", "", "PostgreSQL run-history URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().BoolVar(&flagUseBrowser, "use-browser", false, "Probe URLs with a headless browser (requires Chrome)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information")
}

// app bundles the engine and its collaborators for one CLI invocation.
type app struct {
	cfg       config.Config
	store     *pipeline.Store
	eng       *engine.Engine
	printer   *observability.Printer
	profiles  *publish.Registry
	llmClient llm.Client
	recorder  *history.Recorder
}

// loadConfig merges config file, CLI flags, and defaults: file first,
// explicit flags override, defaults fill the rest.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if flagConfigPath != "" {
		loaded, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if flagVerbose {
			fmt.Printf("Loaded config from: %s\n", flagConfigPath)
		}
	}

	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDir = flagBaseDir
	}
	if cmd.Flags().Changed("content-dir") {
		cfg.ContentDir = flagContentDir
	}
	if cmd.Flags().Changed("url-base") {
		cfg.URLBase = flagURLBase
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = flagDBURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = flagUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		ProjectName: "publishing pipeline",
		ContentDir:  "content",
		OutputDir:   "public",
	})

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// buildApp constructs the engine from configuration. Collaborators that
// are not configured are left nil; stages that need them fail with a
// clear message instead of at startup.
func buildApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var store *pipeline.Store
	if cfg.BaseDir != "" {
		store = pipeline.NewStore(cfg.BaseDir)
	} else {
		store, err = pipeline.DefaultStore()
		if err != nil {
			return nil, err
		}
	}

	pipe, err := store.LoadPipeline(cfg.ProjectName)
	if err != nil {
		return nil, err
	}

	var exporter *export.Exporter
	if cfg.TemplatePath != "" {
		exporter, err = export.NewFromFile(nil, cfg.TemplatePath)
	} else {
		exporter, err = export.New(nil, "")
	}
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		printer:  observability.NewPrinter(os.Stdout),
		profiles: publish.NewRegistry(cfg.Profiles),
	}

	var generator transform.Generator
	if cfg.APIKey != "" {
		a.llmClient, err = llm.NewClient(ctx, nil, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		generator = transform.NewLLMGenerator(a.llmClient, llm.TierStandard)
	}

	var publisher publish.Publisher
	if len(cfg.WebhookURLs) > 0 {
		publisher = publish.NewWebhookPublisher(cfg.WebhookURLs)
	}

	if cfg.DatabaseURL != "" {
		a.recorder, err = history.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without run history...\n")
			a.recorder = nil
		} else if cfg.Verbose {
			fmt.Printf("[VERBOSE] Connected to run-history database\n")
		}
	}

	deps := engine.Deps{
		Store:           store,
		Exporter:        exporter,
		Generator:       generator,
		Publisher:       publisher,
		Profiles:        a.profiles,
		History:         a.recorder,
		UseBrowser:      cfg.UseBrowser,
		ProbeTimeout:    secs(cfg.ProbeTimeoutSecs),
		GenerateTimeout: secs(cfg.GenerateTimeoutSecs),
		PublishTimeout:  secs(cfg.PublishTimeoutSecs),
		OnProgress: func(p engine.Progress) {
			if p.Detail != "" {
				fmt.Printf("  [%s] %s: %s\n", p.Kind, p.Phase, p.Detail)
			} else {
				fmt.Printf("  [%s] %s\n", p.Kind, p.Phase)
			}
		},
	}

	project := types.Project{
		URLBase:         cfg.URLBase,
		OutputDir:       cfg.OutputDir,
		StaticOutputDir: cfg.StaticOutputDir,
	}

	a.eng = engine.New(deps, project, pipe)
	return a, nil
}

func (a *app) Close() {
	if a.eng != nil {
		a.eng.Close()
	}
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.recorder != nil {
		a.recorder.Close()
	}
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// resolveStage finds a stage by ID, or by kind when exactly one stage of
// that kind is configured.
func resolveStage(p types.Pipeline, ref string) (types.StageConfig, error) {
	if s := p.FindStage(ref); s != nil {
		return *s, nil
	}

	var matches []types.StageConfig
	for _, s := range p.Stages {
		if string(s.Kind) == ref {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return types.StageConfig{}, fmt.Errorf("no stage matches %q", ref)
	default:
		return types.StageConfig{}, fmt.Errorf("%d stages of kind %q configured; use the stage id", len(matches), ref)
	}
}
