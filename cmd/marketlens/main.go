// Package main provides the marketlens command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "Job market intelligence pipeline and chat surface",
	Long: `marketlens extracts job postings from the lakehouse, enriches a sampled
subset with sentiment, key phrases, and entities, loads the results into
the SQL Server mart, and serves a chat agent that answers questions about
the mart in natural language.`,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
