// ABOUTME: MCP server subcommand
// ABOUTME: Starts the report MCP server on stdio for desktop assistants
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/salesreport/handlers"
)

const version = "0.1.0"

// NewMCPServer registers the report tools, vocabulary resource and review prompt.
func NewMCPServer(app *App) *mcp.Server {
	reportHandlers := handlers.NewReportHandlers(app.Service, app.Config.ExportDir, app.Logger)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salesreport",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_sales_report",
		Description: "Generate a sales report (team, sales, user, salesMember, allSalesMembers) and save it as an xlsx workbook",
	}, reportHandlers.ExportSalesReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_performance",
		Description: "Get performance metrics for one user over a timeframe",
	}, reportHandlers.GetUserPerformance)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_visible_users",
		Description: "List the users whose activity a viewer may see in reports",
	}, reportHandlers.ListVisibleUsers)

	server.AddResource(&mcp.Resource{
		URI:         handlers.VocabularyURI,
		Name:        "vocabulary",
		Description: "Accepted report types and timeframes",
		MIMEType:    "application/json",
	}, reportHandlers.ReadVocabulary)

	server.AddPrompt(&mcp.Prompt{
		Name:        "team_review",
		Description: "Review a team's performance from the team report",
		Arguments: []*mcp.PromptArgument{
			{Name: "viewer_id", Description: "Team leader or admin running the review", Required: true},
			{Name: "timeframe", Description: "Named timeframe (default month)"},
		},
	}, reportHandlers.GetTeamReviewPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App) error {
	app.Logger.Info("starting salesreport MCP server")
	return NewMCPServer(app).Run(ctx, &mcp.StdioTransport{})
}
