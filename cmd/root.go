package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the ga4mcp application
var rootCmd = &cobra.Command{
	Use:   "ga4mcp",
	Short: "Google Analytics 4 reporting tools for AI agents",
	Long: `ga4mcp is an MCP (Model Context Protocol) server that lets AI agents query
Google Analytics 4 on behalf of users whose GA4 connections are kept in a
credential store.

It exposes four tools:
  - query_ga4_data: run a report with dimensions, metrics and a date range
  - get_available_dimensions: list the dimensions of a user's property
  - get_available_metrics: list the metrics of a user's property
  - get_common_date_ranges: suggest concrete date ranges`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ga4mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newDateRangesCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
