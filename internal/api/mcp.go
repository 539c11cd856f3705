package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/semplan/internal/dashboard"
	"github.com/kalambet/semplan/internal/export"
	"github.com/kalambet/semplan/internal/plan"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Plans   PlanService
	Version string
}

// NewMCPServer creates an MCP server exposing the plan dashboard as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"semplan",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("semplan builds search campaign plans: keywords, ad groups, PMax themes and budgets."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_plan",
			mcp.WithDescription("Generate a new campaign plan from brand and competitor URLs, seed keywords and budgets."),
			mcp.WithString("brand_url", mcp.Description("Brand website URL"), mcp.Required()),
			mcp.WithString("competitor_url", mcp.Description("Competitor website URL"), mcp.Required()),
			mcp.WithString("seed_keywords", mcp.Description("Comma-separated seed keywords")),
			mcp.WithString("locations", mcp.Description("Comma-separated service locations")),
			mcp.WithNumber("search_budget", mcp.Description("Search campaign budget")),
			mcp.WithNumber("shopping_budget", mcp.Description("Shopping campaign budget")),
			mcp.WithNumber("pmax_budget", mcp.Description("Performance Max budget")),
			mcp.WithNumber("conversion_rate", mcp.Description("Conversion rate in percent (default 2.0)")),
			mcp.WithNumber("min_search_volume", mcp.Description("Minimum monthly search volume (default 500)")),
		),
		mcpGeneratePlan(deps),
	)

	s.AddTool(
		mcp.NewTool("load_plan",
			mcp.WithDescription("Replace the current plan with the last saved plan."),
		),
		mcpLoadPlan(deps),
	)

	s.AddTool(
		mcp.NewTool("save_plan",
			mcp.WithDescription("Save the current finished plan, overwriting any previous save."),
		),
		mcpSavePlan(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_plan",
			mcp.WithDescription("Discard the current plan and cancel any generation in progress."),
		),
		mcpResetPlan(deps),
	)

	s.AddTool(
		mcp.NewTool("export_plan",
			mcp.WithDescription("Export the current plan as keyword CSV or full JSON."),
			mcp.WithString("format", mcp.Description("csv or json (default csv)"), mcp.Enum("csv", "json")),
		),
		mcpExportPlan(deps),
	)

	s.AddTool(
		mcp.NewTool("plan_insights",
			mcp.WithDescription("Most frequent keyword tokens in the current plan, excluding brand and competitor names."),
		),
		mcpPlanInsights(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"plan://current",
			"Current Plan",
			mcp.WithResourceDescription("Current plan session as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCurrent(deps),
	)

	return s
}

func mcpGeneratePlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := plan.DefaultForm()
		form.BrandURL = req.GetString("brand_url", "")
		form.CompetitorURL = req.GetString("competitor_url", "")
		form.SeedKeywords = req.GetString("seed_keywords", "")
		form.ServiceLocations = req.GetString("locations", "")
		form.SearchBudget = formatArg(req.GetFloat("search_budget", 0))
		form.ShoppingBudget = formatArg(req.GetFloat("shopping_budget", 0))
		form.PMaxBudget = formatArg(req.GetFloat("pmax_budget", 0))
		form.ConversionRate = formatArg(req.GetFloat("conversion_rate", 2.0))
		form.MinSearchVolume = formatArg(req.GetFloat("min_search_volume", 500))

		planReq, err := form.Request()
		if err != nil {
			return mcpError(err.Error()), nil
		}

		s, err := deps.Plans.Generate(ctx, planReq)
		if err != nil {
			return mcpError(fmt.Sprintf("plan generation failed: %v", err)), nil
		}
		return mcpJSON(s)
	}
}

func mcpLoadPlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := deps.Plans.Load()
		if errors.Is(err, dashboard.ErrNoSnapshot) {
			return mcpError("no saved plan"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load: %v", err)), nil
		}
		return mcpJSON(s)
	}
}

func mcpSavePlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Plans.Save(); err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}
		return mcpText("Plan saved"), nil
	}
}

func mcpResetPlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deps.Plans.Reset()
		return mcpText("Plan reset"), nil
	}
}

func mcpExportPlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s := deps.Plans.Current()
		switch format := req.GetString("format", "csv"); format {
		case "csv":
			return mcpText(string(export.CSV(s))), nil
		case "json":
			data, err := export.JSON(s)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to encode plan: %v", err)), nil
			}
			return mcpText(string(data)), nil
		default:
			return mcpError(fmt.Sprintf("unknown format %q (want csv or json)", format)), nil
		}
	}
}

func mcpPlanInsights(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpJSON(insightsFor(deps.Plans.Current()))
	}
}

func mcpResourceCurrent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Plans.Current())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plan: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func formatArg(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
