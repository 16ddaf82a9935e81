package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "weightstats"
	ServerVersion = "1.0.0"
)

// NewServer builds an MCP server with read only weight tools: entries, chart, projection.
// Mounted at /mcp by the main service and served over stdio by cmd/weight_mcp.
func NewServer(service weightService) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_weight_entries",
		Description: "Returns all recorded body weight entries (index, date, weight in kg) in insertion order. The index is what edit and remove calls refer to.",
	}, h.ListEntriesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weight_chart",
		Description: "Returns the weight chart series: historical points (optionally one per week or month), the projected segment towards the goal weight, goal lines, y axis floor and the projected completion date. Args: granularity (all, weekly, monthly); optional target or no_target.",
	}, h.GetChartTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weight_projection",
		Description: "Fits a linear trend over the most recent entries and returns the date the goal weight is expected to be reached, or the reason there is no trend. Optional arg: target (kg), defaults to the configured goal.",
	}, h.GetProjectionTool())

	return s
}
