package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/weightstats/internal/telemetry/tracing"
	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type weightService interface {
	DefaultTarget() *float64
	List(ctx context.Context) ([]service.Entry, error)
	Chart(ctx context.Context, params service.ChartParams) (*service.ChartView, error)
	Projection(ctx context.Context, target float64) (*service.Projection, error)
}

// Handler handles MCP tool requests: parses input, calls the weight service, formats the result as text.
type Handler struct {
	service weightService
}

func NewHandler(service weightService) *Handler {
	return &Handler{
		service: service,
	}
}

// ListEntriesTool returns the MCP tool handler for list_weight_entries.
func (h *Handler) ListEntriesTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		ctx, span := tracing.GlobalTracer.Start(ctx, "mcp.weight.list")
		defer span.End()

		entries, err := h.service.List(ctx)
		if err != nil {
			return errorResult("Error listing weight entries: " + err.Error()), nil, nil
		}
		return jsonResult(entries)
	}
}

// TargetInput selects the goal weight: Target wins, NoTarget unsets it,
// otherwise the configured default is used.
type TargetInput struct {
	Target   *float64 `json:"target,omitempty" jsonschema:"Goal weight in kg. Omit to use the configured default"`
	NoTarget bool     `json:"no_target,omitempty" jsonschema:"Set to true to ignore any goal weight"`
}

// ChartInput is the input for get_weight_chart.
type ChartInput struct {
	Granularity string   `json:"granularity,omitempty" jsonschema:"One of all, weekly, monthly. Defaults to all"`
	Target      *float64 `json:"target,omitempty" jsonschema:"Goal weight in kg. Omit to use the configured default"`
	NoTarget    bool     `json:"no_target,omitempty" jsonschema:"Set to true to ignore any goal weight"`
}

// GetChartTool returns the MCP tool handler for get_weight_chart.
func (h *Handler) GetChartTool() func(context.Context, *mcp.CallToolRequest, ChartInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ChartInput) (*mcp.CallToolResult, any, error) {
		ctx, span := tracing.GlobalTracer.Start(ctx, "mcp.weight.chart")
		defer span.End()

		granularity, err := weight.ParseGranularity(in.Granularity)
		if err != nil {
			return errorResult("Invalid granularity: use all, weekly or monthly"), nil, nil
		}
		target, ok := h.resolveTarget(TargetInput{Target: in.Target, NoTarget: in.NoTarget})
		if !ok {
			return errorResult(invalidTargetText), nil, nil
		}

		chart, err := h.service.Chart(ctx, service.ChartParams{
			Granularity: granularity,
			Target:      target,
		})
		if err != nil {
			return errorResult("Error building chart: " + err.Error()), nil, nil
		}
		return jsonResult(chart)
	}
}

// GetProjectionTool returns the MCP tool handler for get_weight_projection.
func (h *Handler) GetProjectionTool() func(context.Context, *mcp.CallToolRequest, TargetInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TargetInput) (*mcp.CallToolResult, any, error) {
		ctx, span := tracing.GlobalTracer.Start(ctx, "mcp.weight.projection")
		defer span.End()

		target, ok := h.resolveTarget(in)
		if !ok {
			return errorResult(invalidTargetText), nil, nil
		}
		if target == nil {
			return errorResult("No target weight: pass target or configure a default"), nil, nil
		}

		projection, err := h.service.Projection(ctx, *target)
		if err != nil {
			return errorResult("Error computing projection: " + err.Error()), nil, nil
		}
		return jsonResult(projection)
	}
}

const invalidTargetText = "Invalid target: must be a positive weight in kg"

func (h *Handler) resolveTarget(in TargetInput) (*float64, bool) {
	if in.NoTarget {
		return nil, true
	}
	if in.Target == nil {
		return h.service.DefaultTarget(), true
	}
	if !weight.ValidWeight(*in.Target) {
		return nil, false
	}
	return in.Target, true
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}
