package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:          "marketctl",
	Short:        "Operator tasks for the local hire platform",
	SilenceUsage: true,
	Long: `marketctl reads the same environment (or .env file) as the API server.
Run "marketctl migrate up" before starting the server for the first time.`,
}
