// ABOUTME: Sheet layouts for every report shape
// ABOUTME: Each sheet has a fixed header; rows are flattened from report records
package export

import (
	"fmt"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
)

// NotApplicable marks untracked metrics.
const NotApplicable = "N/A"

// SyntheticMark suffixes generated follow-up figures.
const SyntheticMark = " (synthetic)"

var (
	summaryHeader     = []string{"Metric", "Value"}
	performanceHeader = []string{
		"User", "Role", "Leads", "Calls", "Completed Calls", "Call Completion %",
		"Visits", "Completed Visits", "Visit Completion %", "Meetings", "Completed Meetings",
		"Meeting Completion %", "Follow-ups", "Completed Follow-ups", "Follow-up Completion %",
		"Closed Deals", "Open Deals", "Conversion %", "Contracts", "Revenue", "Average Deal Size",
		"Last Activity",
	}
	leadHeader     = []string{"Lead", "Owner", "Status", "Source", "Budget", "Created", "Last Call", "Last Visit", "Calls", "Visits"}
	meetingHeader  = []string{"Title", "Client", "Assigned To", "Date", "Status"}
	contractHeader = []string{"Client", "Created By", "Deal Value", "Contract Date", "Status"}
	callHeader     = []string{"Lead", "Owner", "Date", "Duration (s)", "Outcome", "Completed", "Notes"}
	visitHeader    = []string{"Lead", "Owner", "Date", "Status", "Completed", "Notes"}
	followUpHeader = []string{"Lead", "Owner", "Sequence", "Completed", "Synthetic"}
	activityHeader = []string{"Date", "Type", "User", "Subject", "Status"}
	bucketHeader   = []string{"Key", "Leads"}
	monthHeader    = []string{"Month", "Contracts", "Revenue"}
	topHeader      = []string{"Rank", "User", "Role", "Contracts", "Revenue", "Average Deal Size", "Conversion %"}
)

// names maps user IDs to display names for detail sheets.
type names map[string]string

func (n names) of(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func namesFrom(members []report.MemberDetail, extra ...models.User) names {
	n := names{}
	for _, m := range members {
		n[m.Performance.UserID] = m.Performance.UserName
	}
	for _, u := range extra {
		n[u.ID] = u.Name
	}
	return n
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func headerRows(m report.Meta) [][]any {
	rows := [][]any{
		{"Report", string(m.ReportKind)},
		{"Context", m.Context},
		{"Viewer", m.Viewer.Name},
		{"Timeframe", string(m.Timeframe)},
		{"Period", m.DateRange.String()},
		{"Generated", m.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if m.SyntheticFollowUps {
		rows = append(rows, []any{"Follow-up data", "Synthetic (demo values, not real activity)"})
	}
	return rows
}

// followUpCells renders follow-up figures, or N/A when not tracked.
// Synthetic figures are written as marked text so no cell reads as real data.
func followUpCells(s analytics.FollowUpStats, rate float64) []any {
	switch {
	case !s.Tracked:
		return []any{NotApplicable, NotApplicable, NotApplicable}
	case s.Synthetic:
		return []any{
			fmt.Sprintf("%d%s", s.Total, SyntheticMark),
			fmt.Sprintf("%d%s", s.Completed, SyntheticMark),
			fmt.Sprintf("%.1f%s", rate, SyntheticMark),
		}
	}
	return []any{s.Total, s.Completed, rate}
}

func groupRows(g analytics.GroupPerformance) [][]any {
	fu := followUpCells(g.FollowUps, g.FollowUpCompletionRate)
	return [][]any{
		{"Members", g.MemberCount},
		{"Leads", g.TotalLeads},
		{"Calls", g.TotalCalls},
		{"Completed Calls", g.CompletedCalls},
		{"Call Completion %", g.CallCompletionRate},
		{"Visits", g.TotalVisits},
		{"Completed Visits", g.CompletedVisits},
		{"Visit Completion %", g.VisitCompletionRate},
		{"Meetings", g.TotalMeetings},
		{"Completed Meetings", g.CompletedMeetings},
		{"Meeting Completion %", g.MeetingCompletionRate},
		{"Follow-ups", fu[0]},
		{"Completed Follow-ups", fu[1]},
		{"Follow-up Completion %", fu[2]},
		{"Closed Deals", g.ClosedDeals},
		{"Open Deals", g.OpenDeals},
		{"Conversion %", g.ConversionRate},
		{"Contracts", g.ContractCount},
		{"Signed Contracts", g.SignedContracts},
		{"Revenue", g.TotalRevenue.InexactFloat64()},
		{"Signed Revenue", g.SignedRevenue.InexactFloat64()},
		{"Pending Revenue", g.PendingRevenue.InexactFloat64()},
		{"Average Deal Size", g.AverageDealSize.InexactFloat64()},
		{"Last Activity", g.LastActivityLabel()},
	}
}

func userSummaryRows(p analytics.UserPerformance) [][]any {
	g := analytics.GroupPerformance{
		MemberCount:     1,
		Counts:          p.Counts,
		Rates:           p.Rates,
		AverageDealSize: p.AverageDealSize,
		LastActivity:    p.LastActivity,
	}
	return groupRows(g)[1:]
}

func performanceRow(p analytics.UserPerformance) []any {
	row := []any{
		p.UserName, p.Role.String(), p.TotalLeads,
		p.TotalCalls, p.CompletedCalls, p.CallCompletionRate,
		p.TotalVisits, p.CompletedVisits, p.VisitCompletionRate,
		p.TotalMeetings, p.CompletedMeetings, p.MeetingCompletionRate,
	}
	row = append(row, followUpCells(p.FollowUps, p.FollowUpCompletionRate)...)
	return append(row,
		p.ClosedDeals, p.OpenDeals, p.ConversionRate, p.ContractCount,
		p.TotalRevenue.InexactFloat64(), p.AverageDealSize.InexactFloat64(), p.LastActivityLabel(),
	)
}

func performanceRows(members []report.MemberDetail) [][]any {
	rows := make([][]any, 0, len(members))
	for _, m := range members {
		rows = append(rows, performanceRow(m.Performance))
	}
	return rows
}

func leadRows(leads []models.Lead, n names) [][]any {
	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		owner := ""
		if l.OwnerID != nil {
			owner = n.of(*l.OwnerID)
		}
		rows = append(rows, []any{
			l.Name, owner, string(l.Status), l.Source, l.Budget,
			l.CreatedAt, l.LastCallDate, l.LastVisitDate, len(l.Calls), len(l.Visits),
		})
	}
	return rows
}

func meetingRows(meetings []models.Meeting, n names) [][]any {
	rows := make([][]any, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, []any{m.Title, m.Client, n.of(m.AssignedToID), m.Date, m.Status})
	}
	return rows
}

func contractRows(contracts []models.Contract, n names) [][]any {
	rows := make([][]any, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, []any{c.ClientName, n.of(c.CreatedByID), c.DealValue, c.ContractDate, c.Status})
	}
	return rows
}

func callRows(calls []analytics.CallRecord, n names) [][]any {
	rows := make([][]any, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, []any{c.LeadName, n.of(c.OwnerID), c.Date, c.Duration, c.Outcome, yesNo(c.Completed), c.Notes})
	}
	return rows
}

func visitRows(visits []analytics.VisitRecord, n names) [][]any {
	rows := make([][]any, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, []any{v.LeadName, n.of(v.OwnerID), v.Date, v.Status, yesNo(v.Completed), v.Notes})
	}
	return rows
}

func followUpRows(followUps []analytics.FollowUp, n names) [][]any {
	rows := make([][]any, 0, len(followUps))
	for _, f := range followUps {
		rows = append(rows, []any{f.LeadName, n.of(f.OwnerID), f.Sequence, yesNo(f.Completed), yesNo(f.Synthetic)})
	}
	return rows
}

func activityRows(items []report.ActivityItem) [][]any {
	rows := make([][]any, 0, len(items))
	for _, a := range items {
		date := a.Date
		if a.At != nil {
			date = a.At.Format("2006-01-02 15:04")
		}
		rows = append(rows, []any{date, a.Type, a.UserName, a.Subject, a.Status})
	}
	return rows
}

func bucketRows(buckets []report.Bucket) [][]any {
	rows := make([][]any, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []any{b.Key, b.Count})
	}
	return rows
}

func teamSheets(wb *workbook, r *report.TeamLeaderReport) {
	n := namesFrom(r.Members, r.Viewer)
	recs := report.Records(r.Members)
	wb.add("Overview", summaryHeader, append(headerRows(r.Meta), groupRows(r.Team)...))
	wb.add("Team Members", performanceHeader, performanceRows(r.Members))
	wb.add("Leads", leadHeader, leadRows(recs.Leads, n))
	wb.add("Meetings", meetingHeader, meetingRows(recs.Meetings, n))
	wb.add("Contracts", contractHeader, contractRows(recs.Contracts, n))
	wb.add("Calls", callHeader, callRows(recs.Calls, n))
	wb.add("Visits", visitHeader, visitRows(recs.Visits, n))
	wb.add("Follow-ups", followUpHeader, followUpRows(recs.FollowUps, n))
}

func salesSheets(wb *workbook, r *report.SalesReportData) {
	n := namesFrom(r.Users, r.Viewer)
	recs := report.Records(r.Users)

	months := make([][]any, 0, len(r.RevenueByMonth))
	for _, m := range r.RevenueByMonth {
		months = append(months, []any{m.Month, m.Contracts, m.Revenue.InexactFloat64()})
	}
	top := make([][]any, 0, len(r.TopPerformers))
	for i, p := range r.TopPerformers {
		top = append(top, []any{i + 1, p.UserName, p.Role.String(), p.ContractCount,
			p.TotalRevenue.InexactFloat64(), p.AverageDealSize.InexactFloat64(), p.ConversionRate})
	}

	wb.add("Summary", summaryHeader, append(headerRows(r.Meta), groupRows(r.Totals)...))
	wb.add("Sales Team", performanceHeader, performanceRows(r.Users))
	wb.add("Lead Status", bucketHeader, bucketRows(r.LeadsByStatus))
	wb.add("Lead Sources", bucketHeader, bucketRows(r.LeadsBySource))
	wb.add("Revenue by Month", monthHeader, months)
	wb.add("Top Performers", topHeader, top)
	wb.add("Leads", leadHeader, leadRows(recs.Leads, n))
	wb.add("Meetings", meetingHeader, meetingRows(recs.Meetings, n))
	wb.add("Contracts", contractHeader, contractRows(recs.Contracts, n))
}

func userSheets(wb *workbook, r *report.UserReport) {
	n := namesFrom(nil, r.Subject, r.Viewer)
	wb.add("Summary", summaryHeader, append(headerRows(r.Meta), userSummaryRows(r.Performance)...))
	wb.add("Leads", leadHeader, leadRows(r.Records.Leads, n))
	wb.add("Calls", callHeader, callRows(r.Records.Calls, n))
	wb.add("Visits", visitHeader, visitRows(r.Records.Visits, n))
	wb.add("Meetings", meetingHeader, meetingRows(r.Records.Meetings, n))
	wb.add("Contracts", contractHeader, contractRows(r.Records.Contracts, n))
	wb.add("Follow-ups", followUpHeader, followUpRows(r.Records.FollowUps, n))
}

func salesMemberSheets(wb *workbook, r *report.SalesMemberReport) {
	n := namesFrom(r.Members, r.Subject, r.Viewer)
	recs := r.Records()
	wb.add("Summary", summaryHeader, append(headerRows(r.Meta), groupRows(r.Totals)...))
	wb.add("Team Members", performanceHeader, performanceRows(r.Members))
	wb.add("Recent Activity", activityHeader, activityRows(r.Activity))
	wb.add("Leads", leadHeader, leadRows(recs.Leads, n))
	wb.add("Meetings", meetingHeader, meetingRows(recs.Meetings, n))
	wb.add("Contracts", contractHeader, contractRows(recs.Contracts, n))
}

func allSalesMembersSheets(wb *workbook, r *report.AllSalesMembersReport) {
	n := names{r.Viewer.ID: r.Viewer.Name}
	members := make([][]any, 0, len(r.Reports))
	for _, sm := range r.Reports {
		n[sm.Subject.ID] = sm.Subject.Name
		for _, m := range sm.Members {
			n[m.Performance.UserID] = m.Performance.UserName
		}
		row := []any{sm.Subject.Name, sm.Subject.Role.String()}
		members = append(members, append(row, groupCells(sm.Totals)...))
	}

	wb.add("Summary", summaryHeader, append(headerRows(r.Meta), groupRows(r.Totals)...))
	wb.add("Members", memberHeader, members)
	wb.add("Recent Activity", activityHeader, activityRows(r.Activity))
	wb.add("Leads", leadHeader, leadRows(r.Leads, n))
}

var memberHeader = []string{
	"Sales Member", "Role", "Population", "Leads", "Calls", "Call Completion %",
	"Visits", "Visit Completion %", "Meetings", "Meeting Completion %",
	"Closed Deals", "Open Deals", "Conversion %", "Contracts", "Revenue", "Last Activity",
}

func groupCells(g analytics.GroupPerformance) []any {
	return []any{
		g.MemberCount, g.TotalLeads, g.TotalCalls, g.CallCompletionRate,
		g.TotalVisits, g.VisitCompletionRate, g.TotalMeetings, g.MeetingCompletionRate,
		g.ClosedDeals, g.OpenDeals, g.ConversionRate, g.ContractCount,
		g.TotalRevenue.InexactFloat64(), g.LastActivityLabel(),
	}
}
