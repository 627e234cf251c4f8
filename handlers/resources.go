// ABOUTME: MCP resource and prompt handlers
// ABOUTME: Exposes the report vocabulary and a team performance review prompt
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/report"
)

const VocabularyURI = "salesreport://vocabulary"

type vocabulary struct {
	ReportTypes []report.Kind         `json:"report_types"`
	Timeframes  []analytics.Timeframe `json:"timeframes"`
}

// ReadVocabulary lists the accepted report types and timeframes.
func (h *ReportHandlers) ReadVocabulary(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(vocabulary{ReportTypes: report.Kinds, Timeframes: analytics.Timeframes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vocabulary: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      VocabularyURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// GetTeamReviewPrompt builds a review prompt from the viewer's team report.
func (h *ReportHandlers) GetTeamReviewPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	viewerID, ok := args["viewer_id"]
	if !ok || viewerID == "" {
		return nil, fmt.Errorf("viewer_id is required")
	}
	timeframe := args["timeframe"]
	if timeframe == "" {
		timeframe = string(analytics.TimeframeMonth)
	}

	r, err := h.service.Generate(ctx, report.Request{ViewerID: viewerID, Type: report.KindTeam, Timeframe: timeframe})
	if err != nil {
		return nil, err
	}
	team, ok := r.(*report.TeamLeaderReport)
	if !ok {
		return nil, fmt.Errorf("unexpected report shape %T", r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Review the sales team performance for %s (%s).\n\n", team.ContextName(), team.Range().String())
	fmt.Fprintf(&b, "Team: %d members, %d leads, %d closed deals, conversion %.1f%% (mean of member rates), revenue %s.\n\n",
		team.Team.MemberCount, team.Team.TotalLeads, team.Team.ClosedDeals, team.Team.ConversionRate, team.Team.TotalRevenue.StringFixed(2))
	for _, m := range team.Members {
		p := m.Performance
		fmt.Fprintf(&b, "- %s (%s): %d leads, conversion %.1f%%, call completion %.1f%%, meetings %d/%d, revenue %s, last activity %s\n",
			p.UserName, p.Role, p.TotalLeads, p.ConversionRate, p.CallCompletionRate,
			p.CompletedMeetings, p.TotalMeetings, p.TotalRevenue.StringFixed(2), p.LastActivityLabel())
	}
	if team.SyntheticFollowUps {
		b.WriteString("\nFollow-up figures are synthetic demo values; do not draw conclusions from them.\n")
	}
	b.WriteString("\nHighlight who needs coaching and suggest one concrete next step per member.")

	return &mcp.GetPromptResult{
		Description: "Team performance review",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}
