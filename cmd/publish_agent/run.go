package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/content"
	"github.com/jonathan/publish-agent/internal/engine"
	"github.com/jonathan/publish-agent/internal/types"
)

var (
	runItemSlug string
	runStageRef string
	runAll      bool
	runAllItems bool
	runMarkDone bool
	runCopied   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pipeline stages for content items",
	Long: `Run executes pipeline stages. With --stage it runs a single stage for one
item; with --all it runs every enabled stage in order (skipping manual
copy-paste stages); with --all-items it processes every content item.

Examples:
  publish_agent run --item my-post --stage url_verify
  publish_agent run --item my-post --all
  publish_agent run --all-items`,
	RunE: runRun,
}

func init() {
	registerCommonFlags(runCmd)
	runCmd.Flags().StringVar(&runItemSlug, "item", "", "Content item slug")
	runCmd.Flags().StringVar(&runStageRef, "stage", "", "Stage id or kind to run")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Run all enabled stages in order")
	runCmd.Flags().BoolVar(&runAllItems, "all-items", false, "Run all enabled stages for every content item")
	runCmd.Flags().BoolVar(&runMarkDone, "mark-done", false, "Mark a manual copy-paste stage as done")
	runCmd.Flags().BoolVar(&runCopied, "copied", false, "Record that the transform was copied to the clipboard")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if runAllItems {
		items, err := content.List(a.cfg.ContentDir)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Printf("No content items found in %s\n", a.cfg.ContentDir)
			return nil
		}
		fmt.Printf("Running pipeline for %d content items...\n", len(items))
		if err := a.eng.RunItems(ctx, items); err != nil {
			return err
		}
		fmt.Printf("✓ All items processed\n")
		return nil
	}

	if runItemSlug == "" {
		return fmt.Errorf("--item is required (or use --all-items)")
	}
	item, err := content.Load(a.cfg.ContentDir, runItemSlug)
	if err != nil {
		return err
	}

	if runAll {
		fmt.Printf("Running all enabled stages for %s...\n", item.Slug)
		if err := a.eng.RunEnabled(ctx, item); err != nil {
			return err
		}
		fmt.Printf("✓ Pipeline completed for %s\n", item.Slug)
		return nil
	}

	if runStageRef == "" {
		return fmt.Errorf("--stage is required (or use --all)")
	}
	stage, err := resolveStage(a.eng.Pipeline(), runStageRef)
	if err != nil {
		return err
	}

	var confirm *engine.ManualConfirmation
	switch {
	case runCopied:
		confirm = &engine.ManualConfirmation{Message: "copied to clipboard"}
	case runMarkDone:
		confirm = &engine.ManualConfirmation{Message: "marked as done"}
	}

	fmt.Printf("Running %s for %s...\n", stage.Kind, item.Slug)
	result, err := a.eng.Run(ctx, item, stage.ID, confirm)
	if err != nil {
		var persistErr *engine.PersistenceError
		if result != nil && errors.As(err, &persistErr) {
			a.printer.PrintResult(stage.Kind, result)
			fmt.Printf("Warning: %v\n", persistErr)
			return nil
		}
		return err
	}

	a.printer.PrintResult(stage.Kind, result)

	if stage.Kind == types.KindManualCopyPaste && confirm == nil && result.Status == types.StatusPending {
		printManualTransform(a, item, stage)
	}
	return nil
}

// printManualTransform shows the prepared transform so the user can copy
// it, then confirm with --copied or --mark-done.
func printManualTransform(a *app, item types.ContentItem, stage types.StageConfig) {
	key, err := a.profiles.PlatformKey(stage.ProfileID, stage.PlatformHint)
	if err != nil {
		return
	}
	rec, found, err := a.eng.Transform(item, key)
	if err != nil || !found {
		return
	}
	a.printer.PrintTransform(key, rec)
	fmt.Printf("Re-run with --copied or --mark-done once posted.\n")
}
