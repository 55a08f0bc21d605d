package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/content"
)

var stagesItemSlug string

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Show pipeline stages and their statuses for a content item",
	Long: `Stages lists the configured pipeline in order with each stage's effective
status for the given content item. Social stages show as LOCKED until the
export and verify stages have completed.`,
	RunE: runStages,
}

func init() {
	registerCommonFlags(stagesCmd)
	stagesCmd.Flags().StringVar(&stagesItemSlug, "item", "", "Content item slug (required)")
	_ = stagesCmd.MarkFlagRequired("item")
	rootCmd.AddCommand(stagesCmd)
}

func runStages(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := content.Load(a.cfg.ContentDir, stagesItemSlug)
	if err != nil {
		return err
	}

	views, err := a.eng.ListStages(item)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Printf("Pipeline has no stages. Add some with 'publish_agent pipeline add'.\n")
		return nil
	}

	a.printer.PrintStageTable(item, views)
	return nil
}
