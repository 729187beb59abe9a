package ga4_tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/tools/common"
)

// Tool names.
const (
	ToolQueryData       = "query_ga4_data"
	ToolListDimensions  = "get_available_dimensions"
	ToolListMetrics     = "get_available_metrics"
	ToolCommonDateRange = "get_common_date_ranges"
)

const queryDescription = `Query Google Analytics 4 data with specific dimensions and metrics.

Retrieves GA4 report rows for a user's connected property and a date range.

Common GA4 dimensions include:
- date: The date of the session
- country: The country of the user
- city: The city of the user
- deviceCategory: The device category (desktop, mobile, tablet)
- pagePath: The page path
- sessionSource: The traffic source
- sessionMedium: The traffic medium
- sessionCampaignName: The campaign name

Common GA4 metrics include:
- sessions: Number of sessions
- totalUsers: Number of users
- screenPageViews: Number of page and screen views
- bounceRate: Bounce rate
- averageSessionDuration: Average session duration in seconds
- conversions: Number of conversions
- totalRevenue: Revenue amount

Example usage:
- For daily sessions: dimensions=["date"], metrics=["sessions"]
- For traffic by country: dimensions=["country"], metrics=["totalUsers", "sessions"]
- For page performance: dimensions=["pagePath"], metrics=["screenPageViews", "totalUsers"]

Use get_common_date_ranges to turn relative expressions like "last week" into dates.`

const userIDDescription = "Identifier of the user whose connected GA4 property is queried"

var stringItems = map[string]any{"type": "string"}

// RegisterGA4Tools registers the GA4 tools with the MCP server.
func RegisterGA4Tools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil || sc.Service() == nil {
		return fmt.Errorf("server context with a query service is required")
	}
	h := &handlers{sc: sc}

	queryTool := mcp.NewTool(ToolQueryData,
		mcp.WithDescription(queryDescription),
		mcp.WithTitleAnnotation("Query GA4 Data"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description(userIDDescription),
		),
		mcp.WithArray("dimensions",
			mcp.Description("Dimension names, e.g. [\"country\", \"deviceCategory\"]. A granularity dimension is added automatically."),
			mcp.Items(stringItems),
		),
		mcp.WithArray("metrics",
			mcp.Required(),
			mcp.Description("Metric names, e.g. [\"sessions\", \"totalUsers\"]"),
			mcp.Items(stringItems),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Start date in YYYY-MM-DD format"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("End date in YYYY-MM-DD format (inclusive)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows, between 1 and 10000 (default: 10000)"),
		),
		mcp.WithString("property_id",
			mcp.Description("GA4 property id to query instead of the user's default property"),
		),
		withObjectOrString("filters",
			`Dimension filter. Either {"field": "value", ...} for exact matches (several entries are ANDed), `+
				`{"filter": {"field_name": "country", "string_filter": {"value": "US"}}}, or `+
				`{"dimension_filter": {"filter": {"field_name": "country", "string_filter": {"value": "US"}}}}. `+
				`An object's entries are ANDed in field name order; pass the same object as a JSON string to AND them in the order written.`,
		),
		mcp.WithArray("order_by",
			mcp.Description(`Ordering, e.g. [{"metric": {"metric_name": "sessions"}, "desc": true}] or [{"dimension": {"dimension_name": "date"}}]`),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithString("currency_code",
			mcp.Description("ISO 4217 currency code for revenue metrics, e.g. USD"),
		),
		mcp.WithString("granularity",
			mcp.Description("Time bucket added as a dimension: daily, weekly or monthly (default: daily)"),
		),
		mcp.WithBoolean("include_empty_rows",
			mcp.Description("Return rows whose metrics are all zero"),
		),
	)
	s.AddTool(queryTool, common.InstrumentedToolHandler(ToolQueryData, sc, h.queryData))

	dimensionsTool := mcp.NewTool(ToolListDimensions,
		mcp.WithDescription(`List all available GA4 dimensions for the user's property.

Dimensions are attributes of your data (like date, country, page path).
Use this when you need to know which dimensions you can use in your queries.`),
		mcp.WithTitleAnnotation("List GA4 Dimensions"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description(userIDDescription),
		),
	)
	s.AddTool(dimensionsTool, common.InstrumentedToolHandler(ToolListDimensions, sc, h.listDimensions))

	metricsTool := mcp.NewTool(ToolListMetrics,
		mcp.WithDescription(`List all available GA4 metrics for the user's property.

Metrics are quantitative measurements (like sessions, users, page views).
Use this when you need to know which metrics you can use in your queries.`),
		mcp.WithTitleAnnotation("List GA4 Metrics"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description(userIDDescription),
		),
	)
	s.AddTool(metricsTool, common.InstrumentedToolHandler(ToolListMetrics, sc, h.listMetrics))

	dateRangesTool := mcp.NewTool(ToolCommonDateRange,
		mcp.WithDescription(`Get common date range suggestions for GA4 queries.

Provides pre-calculated ranges such as today, yesterday, last_7_days, last_30_days,
this_month, last_month and last_year. Use this to convert relative date
expressions into specific dates.`),
		mcp.WithTitleAnnotation("Common Date Ranges"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(dateRangesTool, common.InstrumentedToolHandler(ToolCommonDateRange, sc, h.commonDateRanges))

	return nil
}

// jsonResult renders an envelope as indented JSON text, flagging failures.
func jsonResult(v any, success bool) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = !success
	return result, nil
}

// withObjectOrString declares an argument that takes a JSON object or the
// same object encoded as a JSON string.
func withObjectOrString(name, description string) mcp.ToolOption {
	return func(t *mcp.Tool) {
		if t.InputSchema.Properties == nil {
			t.InputSchema.Properties = map[string]any{}
		}
		t.InputSchema.Properties[name] = map[string]any{
			"description": description,
			"oneOf": []any{
				map[string]any{"type": "object"},
				map[string]any{"type": "string"},
			},
		}
	}
}
