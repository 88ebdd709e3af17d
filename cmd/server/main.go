// Package main is the tldrd entry point: a local video-summarization
// service with a bounded connection worker pool and pollable background
// jobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tldrd",
		Short:         "tldrd summarizes videos over a small local HTTP API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the summarization server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.run()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (optional, env vars used otherwise)")
	return cmd
}
