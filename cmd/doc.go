// Package cmd implements the command-line interface for ga4mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the GA4 reporting tools
//   - migrate: Apply or inspect the credential store schema
//   - date-ranges: Print the suggested date ranges as JSON
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
