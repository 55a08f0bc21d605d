package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/content"
	"github.com/jonathan/publish-agent/internal/types"
)

var (
	transformItemSlug string
	transformPlatform string
	transformTextFile string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Inspect and edit stored platform transforms",
	Long: `Transforms are the AI-tailored texts posted to each platform. They are
generated on first use and reused until edited or cleared; edits here are
what later publish runs will post.`,
}

var transformShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored transform for a platform",
	RunE:  runTransformShow,
}

var transformEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace the stored transform text",
	Long: `Edit replaces the stored transform with the contents of --file (or stdin
when --file is "-"). Editing resets the approval flag.`,
	RunE: runTransformEdit,
}

var transformApproveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Mark the stored transform as approved",
	RunE:  runTransformSetApproved(true),
}

var transformUnapproveCmd = &cobra.Command{
	Use:   "unapprove",
	Short: "Clear the approval flag on the stored transform",
	RunE:  runTransformSetApproved(false),
}

func init() {
	for _, c := range []*cobra.Command{
		transformShowCmd, transformEditCmd, transformApproveCmd, transformUnapproveCmd,
	} {
		registerCommonFlags(c)
		c.Flags().StringVar(&transformItemSlug, "item", "", "Content item slug (required)")
		c.Flags().StringVar(&transformPlatform, "platform", "", "Platform key, e.g. linkedin (required)")
		_ = c.MarkFlagRequired("item")
		_ = c.MarkFlagRequired("platform")
		transformCmd.AddCommand(c)
	}
	transformEditCmd.Flags().StringVar(&transformTextFile, "file", "", "File with the replacement text, or - for stdin (required)")
	_ = transformEditCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(transformCmd)
}

func transformItem(a *app) (types.ContentItem, error) {
	return content.Load(a.cfg.ContentDir, transformItemSlug)
}

func runTransformShow(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := transformItem(a)
	if err != nil {
		return err
	}
	rec, found, err := a.eng.Transform(item, transformPlatform)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("No transform stored for %s on %s. Run the stage to generate one.\n", transformPlatform, item.Slug)
		return nil
	}
	a.printer.PrintTransform(transformPlatform, rec)
	return nil
}

func runTransformEdit(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := transformItem(a)
	if err != nil {
		return err
	}

	var data []byte
	if transformTextFile == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(transformTextFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read replacement text: %w", err)
	}

	if err := a.eng.EditTransform(item, transformPlatform, string(data)); err != nil {
		return err
	}
	fmt.Printf("✓ Transform for %s saved (approval cleared)\n", transformPlatform)
	return nil
}

func runTransformSetApproved(approved bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(context.Background(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := transformItem(a)
		if err != nil {
			return err
		}
		if err := a.eng.ApproveTransform(item, transformPlatform, approved); err != nil {
			return err
		}
		if approved {
			fmt.Printf("✓ Transform for %s approved\n", transformPlatform)
		} else {
			fmt.Printf("✓ Approval cleared for %s\n", transformPlatform)
		}
		return nil
	}
}
