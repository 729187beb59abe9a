package ga4_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/ga4mcp/internal/apperrors"
	"github.com/teemow/ga4mcp/internal/report"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/service"
	"github.com/teemow/ga4mcp/internal/tools/common"
)

const prefixFilters = "Invalid filters format"

type handlers struct {
	sc *server.ServerContext
}

func (h *handlers) queryData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := queryFromArgs(request.GetArguments())
	if err != nil {
		env := service.QueryFailure(err)
		common.SetOutcome(ctx, common.Outcome{Kind: env.Kind, Error: env.Error})
		return jsonResult(env, false)
	}

	env := h.sc.Service().Query(ctx, q)
	outcome := common.Outcome{Kind: env.Kind, Error: env.Error, RowCount: env.RowCount}
	if env.QuerySummary != nil {
		outcome.PropertyID = env.PropertyID
	}
	common.SetOutcome(ctx, outcome)
	return jsonResult(env, env.Success)
}

func (h *handlers) listDimensions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := common.RequiredString(request.GetArguments(), "user_id")
	if err != nil {
		env := service.DimensionsFailure(err)
		common.SetOutcome(ctx, common.Outcome{Kind: env.Kind, Error: env.Error})
		return jsonResult(env, false)
	}

	env := h.sc.Service().Dimensions(ctx, userID)
	common.SetOutcome(ctx, common.Outcome{Kind: env.Kind, Error: env.Error, PropertyID: env.PropertyID, RowCount: env.Count})
	return jsonResult(env, env.Success)
}

func (h *handlers) listMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := common.RequiredString(request.GetArguments(), "user_id")
	if err != nil {
		env := service.MetricsFailure(err)
		common.SetOutcome(ctx, common.Outcome{Kind: env.Kind, Error: env.Error})
		return jsonResult(env, false)
	}

	env := h.sc.Service().Metrics(ctx, userID)
	common.SetOutcome(ctx, common.Outcome{Kind: env.Kind, Error: env.Error, PropertyID: env.PropertyID, RowCount: env.Count})
	return jsonResult(env, env.Success)
}

func (h *handlers) commonDateRanges(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := h.sc.Service().DateRanges()
	common.SetOutcome(ctx, common.Outcome{RowCount: len(env.DateRanges)})
	return jsonResult(env, true)
}

// queryFromArgs validates the query_ga4_data arguments. Nothing here does I/O.
func queryFromArgs(args map[string]any) (report.QueryDescription, error) {
	var q report.QueryDescription
	var err error

	if q.UserID, err = common.RequiredString(args, "user_id"); err != nil {
		return q, err
	}
	if q.Dimensions, err = common.ParseStringOrArray(args["dimensions"], "dimensions"); err != nil {
		return q, err
	}
	if q.Metrics, err = common.ParseStringOrArray(args["metrics"], "metrics"); err != nil {
		return q, err
	}
	if len(q.Metrics) == 0 {
		return q, apperrors.New(apperrors.KindInvalidArgument, "tools.query", "metrics must contain at least one metric").WithField("metrics")
	}

	if q.StartDate, err = common.RequiredString(args, "start_date"); err != nil {
		return q, err
	}
	if q.EndDate, err = common.RequiredString(args, "end_date"); err != nil {
		return q, err
	}
	if err = report.ValidateDateRange(q.StartDate, q.EndDate); err != nil {
		return q, err
	}

	limit, err := common.OptionalInt(args, "limit")
	if err != nil {
		return q, err
	}
	q.Limit = report.ClampLimit(limit)

	if q.PropertyID, err = common.OptionalString(args, "property_id"); err != nil {
		return q, err
	}
	if q.CurrencyCode, err = common.OptionalString(args, "currency_code"); err != nil {
		return q, err
	}

	granularity, err := common.OptionalString(args, "granularity")
	if err != nil {
		return q, err
	}
	if granularity == "" {
		granularity = report.DefaultGranularity
	}
	q.Granularity = granularity

	if q.Filters, err = report.ParseFilterSpec(args["filters"]); err != nil {
		return q, &apperrors.Error{Kind: apperrors.KindOf(err), Message: prefixFilters, Err: err}
	}
	if q.OrderBy, err = report.ParseOrderBy(args["order_by"]); err != nil {
		return q, err
	}
	if q.IncludeEmptyRows, err = common.OptionalBool(args, "include_empty_rows"); err != nil {
		return q, err
	}
	return q, nil
}
