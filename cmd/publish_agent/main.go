// Package main provides the entry point for the publish-agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "publish_agent",
	Short: "Publishing pipeline runner",
	Long:  "publish_agent runs a configurable publishing pipeline per content item: export to web, verify the public URL, then post AI-tailored transforms to social platforms and article sites.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
