package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/publish-agent/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve exposes the pipeline engine over HTTP: listing content items and
stage statuses, running stages, editing the pipeline, and managing
transforms. Intended as the backend for a local dashboard.`,
	RunE: runServe,
}

func init() {
	registerCommonFlags(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Config{
		Port:       servePort,
		ContentDir: a.cfg.ContentDir,
	}, a.eng)

	return srv.Start()
}
