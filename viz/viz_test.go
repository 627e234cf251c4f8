package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
)

func testUsers() []models.User {
	tl := models.StringPtr("tl")
	return []models.User{
		{ID: "admin", Name: "Ada Admin", Role: models.RoleAdmin},
		{ID: "tl", Name: "Tara Leader", Role: models.RoleTeamLeader},
		{ID: "rep-a", Name: "Rep A", Role: models.RoleSalesRep, TeamLeaderID: tl},
		{ID: "rep-b", Name: "Rep B", Role: models.RoleSalesRep, TeamLeaderID: tl},
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░   0.0%", bar(0))
	assert.Equal(t, "██░░░░░░░░  25.0%", bar(25))
	assert.Equal(t, "██████████ 100.0%", bar(100))
}

func TestRenderTeamSummary(t *testing.T) {
	users := testUsers()
	r := &report.TeamLeaderReport{
		Meta: report.Meta{
			ReportKind:  report.KindTeam,
			Context:     "Tara Leader",
			Viewer:      users[1],
			GeneratedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		Members: []report.MemberDetail{
			{Performance: analytics.UserPerformance{UserID: "rep-a", UserName: "Rep A", Role: models.RoleSalesRep,
				Counts: analytics.Counts{TotalLeads: 4, ClosedDeals: 2, TotalRevenue: decimal.NewFromInt(1200)},
				Rates:  analytics.Rates{ConversionRate: 50}}},
		},
		Team: analytics.GroupPerformance{MemberCount: 1, Counts: analytics.Counts{TotalLeads: 4, ClosedDeals: 2}},
	}

	out := RenderSummary(r)
	assert.Contains(t, out, "TEAM REPORT")
	assert.Contains(t, out, "All time")
	assert.Contains(t, out, "Rep A")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, notApplicable)
	assert.Contains(t, out, "No activity")
	assert.NotContains(t, out, "synthetic")
}

func TestSummaryOfSalesReport(t *testing.T) {
	r := &report.SalesReportData{
		Meta:          report.Meta{ReportKind: report.KindSales, Context: "Organization", SyntheticFollowUps: true},
		LeadsByStatus: []report.Bucket{{Key: "fresh_lead", Count: 4}, {Key: "closed_deal", Count: 2}},
	}
	s := SummaryOf(r)
	assert.Equal(t, "Sales Report", s.Title)
	require.NotNil(t, s.Group)
	assert.Len(t, s.Buckets, 2)

	out := Render(s)
	assert.Contains(t, out, "LEADS BY STATUS")
	assert.Contains(t, out, "synthetic")
}

func TestFollowUpsLabel(t *testing.T) {
	assert.Equal(t, "N/A", followUps(analytics.FollowUpStats{}))
	assert.Equal(t, "2/3", followUps(analytics.FollowUpStats{Tracked: true, Total: 3, Completed: 2}))
	assert.Equal(t, "2/3*", followUps(analytics.FollowUpStats{Tracked: true, Synthetic: true, Total: 3, Completed: 2}))
}

func TestHierarchyGraph(t *testing.T) {
	users := testUsers()

	dot, err := HierarchyGraph(context.Background(), users[1], users)
	require.NoError(t, err)
	assert.Contains(t, dot, "Tara Leader")
	assert.Contains(t, dot, "Rep A")
	assert.NotContains(t, dot, "Ada Admin")
	assert.Equal(t, 2, strings.Count(dot, "->"))
}
