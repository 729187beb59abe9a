package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/ga4mcp/internal/config"
	"github.com/teemow/ga4mcp/internal/credentials"
	"github.com/teemow/ga4mcp/internal/server"
)

// Tool categories in the order they appear in the reference.
const (
	categoryReporting = "Reporting Tools"
	categoryDiscovery = "Discovery Tools"
	categoryDates     = "Date Helpers"
	categoryOther     = "Other"
)

var categoryOrder = []string{categoryReporting, categoryDiscovery, categoryDates, categoryOther}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate the MCP tool reference",
		Long: `Generate a markdown reference of the GA4 tools from their registered
definitions, so the document always matches what clients see in tools/list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := registeredTools()
			if err != nil {
				return err
			}
			markdown := generateToolsMarkdown(tools)

			if outputFile == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Tool reference written to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// registeredTools builds a throwaway server to introspect the tool
// definitions. No credentials are needed: nothing is called.
func registeredTools() ([]mcp.Tool, error) {
	cfg := config.Config{
		GoogleClientID:     "docs",
		GoogleClientSecret: "docs",
		HTTPTimeout:        config.DefaultHTTPTimeout,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := newService(credentials.NewMemoryStore(), cfg, false, logger, nil)
	if err != nil {
		return nil, err
	}

	sc, err := server.NewServerContext(context.Background(), svc)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return nil, err
	}

	var tools []mcp.Tool
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		byCategory[category] = append(byCategory[category], tool)
	}

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools served by `ga4mcp serve`. Generated by `ga4mcp generate-docs`; do not edit by hand.\n\n")

	sb.WriteString("## Users and Properties\n\n")
	sb.WriteString("Tools that read GA4 data take a `user_id`. The user's refresh token and default\n")
	sb.WriteString("property come from the credential store; `query_ga4_data` accepts `property_id`\n")
	sb.WriteString("to report on another property. Every tool answers with a JSON envelope and\n")
	sb.WriteString("failed calls carry `\"success\": false` with an `error` message.\n\n")

	sb.WriteString("## Contents\n\n")
	for _, category := range categoryOrder {
		for _, tool := range byCategory[category] {
			fmt.Fprintf(&sb, "- [%s](#%s) (%s)\n", tool.Name, tool.Name, category)
		}
	}
	sb.WriteString("\n")

	for _, category := range categoryOrder {
		if len(byCategory[category]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range byCategory[category] {
			writeToolMarkdown(&sb, tool)
		}
	}

	return sb.String()
}

func getCategoryFromToolName(name string) string {
	switch {
	case strings.HasPrefix(name, "query_"):
		return categoryReporting
	case strings.HasPrefix(name, "get_available_"):
		return categoryDiscovery
	case strings.HasSuffix(name, "_date_ranges"):
		return categoryDates
	default:
		return categoryOther
	}
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if tool.Annotations.Title != "" {
		fmt.Fprintf(sb, "_%s_", tool.Annotations.Title)
		if hints := toolHints(tool.Annotations); hints != "" {
			fmt.Fprintf(sb, " (%s)", hints)
		}
		sb.WriteString("\n\n")
	}
	if tool.Description != "" {
		sb.WriteString(strings.TrimSpace(tool.Description))
		sb.WriteString("\n\n")
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		sb.WriteString("This tool takes no arguments.\n\n")
		return
	}

	// Required arguments first, each group alphabetical.
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	required := tool.InputSchema.Required
	sort.Slice(names, func(i, j int) bool {
		ri, rj := slices.Contains(required, names[i]), slices.Contains(required, names[j])
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	sb.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		presence := "optional"
		if slices.Contains(required, name) {
			presence = "required"
		}
		desc, _ := prop["description"].(string)
		fmt.Fprintf(sb, "- `%s` (%s, %s): %s\n", name, propertyType(prop), presence, desc)
	}
	sb.WriteString("\n")
}

// propertyType renders a JSON schema type, including array item types.
func propertyType(prop map[string]any) string {
	t, ok := prop["type"].(string)
	if !ok {
		alternatives, _ := prop["oneOf"].([]any)
		var types []string
		for _, alt := range alternatives {
			if m, ok := alt.(map[string]any); ok {
				if at, ok := m["type"].(string); ok {
					types = append(types, at)
				}
			}
		}
		if len(types) == 0 {
			return "any"
		}
		return strings.Join(types, " or ")
	}
	if t == "array" {
		if items, ok := prop["items"].(map[string]any); ok {
			if it, ok := items["type"].(string); ok {
				return "array of " + it
			}
		}
	}
	return t
}

func toolHints(a mcp.ToolAnnotation) string {
	var hints []string
	if a.ReadOnlyHint != nil && *a.ReadOnlyHint {
		hints = append(hints, "read-only")
	}
	if a.IdempotentHint != nil && *a.IdempotentHint {
		hints = append(hints, "idempotent")
	}
	return strings.Join(hints, ", ")
}
