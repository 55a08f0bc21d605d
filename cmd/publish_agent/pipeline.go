package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/pipeline"
	"github.com/jonathan/publish-agent/internal/types"
)

var (
	addStageKind     string
	addStageProfile  string
	addStagePlatform string
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Inspect and edit the project pipeline",
}

var pipelineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured stages in order",
	RunE:  runPipelineShow,
}

var pipelineAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a stage to the pipeline",
	Long: `Add appends a stage at the end of the pipeline. Social and article stages
need either --profile (a configured publishing profile id) or --platform
(a platform name used for the transform prompt).

Kinds: web_export, url_verify, social_publish, article_publish,
manual_copy_paste, static_export.`,
	RunE: runPipelineAdd,
}

var pipelineRemoveCmd = &cobra.Command{
	Use:   "remove <stage-id>",
	Short: "Remove a stage from the pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineRemove,
}

var pipelineMoveUpCmd = &cobra.Command{
	Use:   "move-up <stage-id>",
	Short: "Move a stage one position earlier",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineMove("up"),
}

var pipelineMoveDownCmd = &cobra.Command{
	Use:   "move-down <stage-id>",
	Short: "Move a stage one position later",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineMove("down"),
}

var pipelineEnableCmd = &cobra.Command{
	Use:   "enable <stage-id>",
	Short: "Enable a stage",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineSetEnabled(true),
}

var pipelineDisableCmd = &cobra.Command{
	Use:   "disable <stage-id>",
	Short: "Disable a stage (it is skipped and does not gate others)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineSetEnabled(false),
}

func init() {
	for _, c := range []*cobra.Command{
		pipelineShowCmd, pipelineAddCmd, pipelineRemoveCmd,
		pipelineMoveUpCmd, pipelineMoveDownCmd,
		pipelineEnableCmd, pipelineDisableCmd,
	} {
		registerCommonFlags(c)
		pipelineCmd.AddCommand(c)
	}
	pipelineAddCmd.Flags().StringVar(&addStageKind, "kind", "", "Stage kind (required)")
	pipelineAddCmd.Flags().StringVar(&addStageProfile, "profile", "", "Publishing profile id")
	pipelineAddCmd.Flags().StringVar(&addStagePlatform, "platform", "", "Platform hint when no profile is used")
	_ = pipelineAddCmd.MarkFlagRequired("kind")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipelineShow(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.eng.Pipeline()
	if len(p.Stages) == 0 {
		fmt.Printf("Pipeline %q has no stages.\n", p.Name)
		return nil
	}

	fmt.Printf("Pipeline: %s\n", p.Name)
	for _, s := range (&p).StagesInOrder() {
		target := s.ProfileID
		if target == "" {
			target = s.PlatformHint
		}
		enabled := ""
		if !s.Enabled {
			enabled = " (disabled)"
		}
		fmt.Printf("  %2d. %-18s %-12s %s%s\n", s.Order, s.Kind, target, s.ID, enabled)
	}
	return nil
}

// editPipeline applies a mutation and saves, printing the updated order.
func editPipeline(cmd *cobra.Command, fn func(*types.Pipeline) error) error {
	ctx := context.Background()

	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.eng.Mutate(fn); err != nil {
		return err
	}
	if err := a.eng.SavePipeline(ctx); err != nil {
		return err
	}
	fmt.Printf("✓ Pipeline saved\n")
	return nil
}

func runPipelineAdd(cmd *cobra.Command, _ []string) error {
	return editPipeline(cmd, func(p *types.Pipeline) error {
		stage, err := pipeline.AddStage(p, types.StageKind(addStageKind), addStageProfile, addStagePlatform)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s as stage %s\n", stage.Kind, stage.ID)
		return nil
	})
}

func runPipelineRemove(cmd *cobra.Command, args []string) error {
	return editPipeline(cmd, func(p *types.Pipeline) error {
		return pipeline.RemoveStage(p, args[0])
	})
}

func runPipelineMove(direction string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return editPipeline(cmd, func(p *types.Pipeline) error {
			if direction == "up" {
				return pipeline.MoveUp(p, args[0])
			}
			return pipeline.MoveDown(p, args[0])
		})
	}
}

func runPipelineSetEnabled(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return editPipeline(cmd, func(p *types.Pipeline) error {
			return pipeline.SetEnabled(p, args[0], enabled)
		})
	}
}
