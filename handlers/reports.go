// ABOUTME: Report MCP tool handlers
// ABOUTME: Implements export_sales_report, get_user_performance and list_visible_users
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/export"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
)

type ReportHandlers struct {
	service   *report.Service
	exportDir string
	logger    *logrus.Logger
}

func NewReportHandlers(service *report.Service, exportDir string, logger *logrus.Logger) *ReportHandlers {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReportHandlers{service: service, exportDir: exportDir, logger: logger}
}

type ExportReportInput struct {
	ViewerID   string `json:"viewer_id" jsonschema:"ID of the user requesting the report (required)"`
	ReportType string `json:"report_type" jsonschema:"One of team, sales, user, salesMember, allSalesMembers"`
	Timeframe  string `json:"timeframe" jsonschema:"One of today, week, month, last7days, last30days, last3months, last6months, yearToDate, custom"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"Custom range start (YYYY-MM-DD)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"Custom range end (YYYY-MM-DD)"`
	SubjectID  string `json:"subject_id,omitempty" jsonschema:"User the report is about (user and salesMember reports; defaults to the viewer)"`
}

type ExportReportOutput struct {
	Path     string   `json:"path"`
	Filename string   `json:"filename"`
	Sheets   []string `json:"sheets"`
	Bytes    int      `json:"bytes"`
	Period   string   `json:"period"`
}

func (in ExportReportInput) request() report.Request {
	return report.Request{
		ViewerID:  in.ViewerID,
		Type:      report.Kind(in.ReportType),
		Timeframe: in.Timeframe,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		SubjectID: in.SubjectID,
	}
}

func (h *ReportHandlers) ExportSalesReport(ctx context.Context, request *mcp.CallToolRequest, input ExportReportInput) (*mcp.CallToolResult, ExportReportOutput, error) {
	r, err := h.service.Generate(ctx, input.request())
	if err != nil {
		return nil, ExportReportOutput{}, err
	}

	res, err := export.Export(r)
	if err != nil {
		return nil, ExportReportOutput{}, fmt.Errorf("failed to export report: %w", err)
	}
	path, err := export.Save(h.exportDir, res)
	if err != nil {
		return nil, ExportReportOutput{}, fmt.Errorf("failed to save report: %w", err)
	}

	h.logger.WithFields(logrus.Fields{"path": path, "bytes": len(res.Data)}).Info("report exported")
	return nil, ExportReportOutput{
		Path:     path,
		Filename: res.Filename,
		Sheets:   res.Sheets,
		Bytes:    len(res.Data),
		Period:   r.Range().String(),
	}, nil
}

type UserPerformanceInput struct {
	ViewerID  string `json:"viewer_id" jsonschema:"ID of the user asking (required)"`
	UserID    string `json:"user_id,omitempty" jsonschema:"User to report on (defaults to the viewer)"`
	Timeframe string `json:"timeframe,omitempty" jsonschema:"Named timeframe (default month)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Custom range start (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Custom range end (YYYY-MM-DD)"`
}

type PerformanceOutput struct {
	UserID                 string  `json:"user_id"`
	UserName               string  `json:"user_name"`
	Role                   string  `json:"role"`
	Period                 string  `json:"period"`
	TotalLeads             int     `json:"total_leads"`
	TotalCalls             int     `json:"total_calls"`
	CompletedCalls         int     `json:"completed_calls"`
	TotalVisits            int     `json:"total_visits"`
	CompletedVisits        int     `json:"completed_visits"`
	TotalMeetings          int     `json:"total_meetings"`
	CompletedMeetings      int     `json:"completed_meetings"`
	ClosedDeals            int     `json:"closed_deals"`
	OpenDeals              int     `json:"open_deals"`
	Contracts              int     `json:"contracts"`
	ConversionRate         float64 `json:"conversion_rate"`
	CallCompletionRate     float64 `json:"call_completion_rate"`
	VisitCompletionRate    float64 `json:"visit_completion_rate"`
	MeetingCompletionRate  float64 `json:"meeting_completion_rate"`
	FollowUps              string  `json:"follow_ups"`
	FollowUpCompletionRate string  `json:"follow_up_completion_rate"`
	TotalRevenue           string  `json:"total_revenue"`
	AverageDealSize        string  `json:"average_deal_size"`
	LastActivity           string  `json:"last_activity"`
}

func (h *ReportHandlers) GetUserPerformance(ctx context.Context, request *mcp.CallToolRequest, input UserPerformanceInput) (*mcp.CallToolResult, PerformanceOutput, error) {
	timeframe := input.Timeframe
	if timeframe == "" {
		timeframe = string(analytics.TimeframeMonth)
	}

	r, err := h.service.Generate(ctx, report.Request{
		ViewerID:  input.ViewerID,
		Type:      report.KindUser,
		Timeframe: timeframe,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		SubjectID: input.UserID,
	})
	if err != nil {
		return nil, PerformanceOutput{}, err
	}

	ur, ok := r.(*report.UserReport)
	if !ok {
		return nil, PerformanceOutput{}, fmt.Errorf("unexpected report shape %T", r)
	}
	return nil, performanceToOutput(ur.Performance, r.Range()), nil
}

type VisibleUsersInput struct {
	ViewerID string `json:"viewer_id" jsonschema:"ID of the user whose access scope to list (required)"`
}

type UserOutput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	TeamID       string `json:"team_id,omitempty"`
	TeamLeaderID string `json:"team_leader_id,omitempty"`
}

type VisibleUsersOutput struct {
	Users []UserOutput `json:"users"`
}

func (h *ReportHandlers) ListVisibleUsers(ctx context.Context, request *mcp.CallToolRequest, input VisibleUsersInput) (*mcp.CallToolResult, VisibleUsersOutput, error) {
	if input.ViewerID == "" {
		return nil, VisibleUsersOutput{}, fmt.Errorf("viewer_id is required")
	}

	users, err := h.service.VisibleUsers(ctx, input.ViewerID)
	if err != nil {
		return nil, VisibleUsersOutput{}, err
	}

	out := make([]UserOutput, len(users))
	for i, u := range users {
		out[i] = userToOutput(u)
	}
	return nil, VisibleUsersOutput{Users: out}, nil
}

func userToOutput(u models.User) UserOutput {
	out := UserOutput{ID: u.ID, Name: u.Name, Role: u.Role.String()}
	if u.TeamID != nil {
		out.TeamID = *u.TeamID
	}
	if u.TeamLeaderID != nil {
		out.TeamLeaderID = *u.TeamLeaderID
	}
	return out
}

func performanceToOutput(p analytics.UserPerformance, rng analytics.DateRange) PerformanceOutput {
	out := PerformanceOutput{
		UserID:                 p.UserID,
		UserName:               p.UserName,
		Role:                   p.Role.String(),
		Period:                 rng.String(),
		TotalLeads:             p.TotalLeads,
		TotalCalls:             p.TotalCalls,
		CompletedCalls:         p.CompletedCalls,
		TotalVisits:            p.TotalVisits,
		CompletedVisits:        p.CompletedVisits,
		TotalMeetings:          p.TotalMeetings,
		CompletedMeetings:      p.CompletedMeetings,
		ClosedDeals:            p.ClosedDeals,
		OpenDeals:              p.OpenDeals,
		Contracts:              p.ContractCount,
		ConversionRate:         p.ConversionRate,
		CallCompletionRate:     p.CallCompletionRate,
		VisitCompletionRate:    p.VisitCompletionRate,
		MeetingCompletionRate:  p.MeetingCompletionRate,
		FollowUps:              export.NotApplicable,
		FollowUpCompletionRate: export.NotApplicable,
		TotalRevenue:           p.TotalRevenue.StringFixed(2),
		AverageDealSize:        p.AverageDealSize.StringFixed(2),
		LastActivity:           p.LastActivityLabel(),
	}
	if p.FollowUps.Tracked {
		out.FollowUps = fmt.Sprintf("%d/%d", p.FollowUps.Completed, p.FollowUps.Total)
		out.FollowUpCompletionRate = fmt.Sprintf("%.1f", p.FollowUpCompletionRate)
		if p.FollowUps.Synthetic {
			out.FollowUps += " (synthetic)"
		}
	}
	return out
}
