// ABOUTME: Terminal performance summary rendering
// ABOUTME: Styles any report as a header, group totals and a per-member table with conversion bars
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bodyCell   = lipgloss.NewStyle().Padding(0, 1)
)

// notApplicable marks follow-up figures that have no backing data.
const notApplicable = "N/A"

// Summary is the renderable view of a report.
type Summary struct {
	Title   string
	Meta    report.Meta
	Group   *analytics.GroupPerformance
	Members []analytics.UserPerformance
	Buckets []report.Bucket
}

// SummaryOf extracts a Summary from any report shape.
func SummaryOf(r report.Report) Summary {
	s := Summary{Title: strings.ReplaceAll(r.Kind().Title(), "_", " "), Meta: r.Info()}
	switch rep := r.(type) {
	case *report.TeamLeaderReport:
		s.Group = &rep.Team
		s.Members = memberPerformances(rep.Members)
	case *report.SalesReportData:
		s.Group = &rep.Totals
		s.Members = memberPerformances(rep.Users)
		s.Buckets = rep.LeadsByStatus
	case *report.UserReport:
		s.Members = []analytics.UserPerformance{rep.Performance}
	case *report.SalesMemberReport:
		s.Group = &rep.Totals
		s.Members = memberPerformances(rep.Members)
	case *report.AllSalesMembersReport:
		s.Group = &rep.Totals
		for _, sub := range rep.Reports {
			s.Members = append(s.Members, memberPerformances(sub.Members)...)
		}
	}
	return s
}

func memberPerformances(members []report.MemberDetail) []analytics.UserPerformance {
	out := make([]analytics.UserPerformance, len(members))
	for i, m := range members {
		out[i] = m.Performance
	}
	return out
}

// RenderSummary renders r for a terminal.
func RenderSummary(r report.Report) string {
	return Render(SummaryOf(r))
}

func Render(s Summary) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render(strings.ToUpper(s.Title)))
	out.WriteString("\n")
	out.WriteString(field("Context", s.Meta.Context))
	out.WriteString(field("Period", s.Meta.DateRange.String()))
	out.WriteString(field("Viewer", fmt.Sprintf("%s (%s)", s.Meta.Viewer.Name, s.Meta.Viewer.Role)))
	out.WriteString(field("Generated", s.Meta.GeneratedAt.Format("2006-01-02 15:04")))
	if s.Meta.SyntheticFollowUps {
		out.WriteString(warnStyle.Render("Follow-up figures are synthetic demo data"))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	if s.Group != nil {
		out.WriteString(labelStyle.Render("TOTALS"))
		out.WriteString("\n")
		g := s.Group
		out.WriteString(fmt.Sprintf("  %d members  %d leads  %d closed  %d open  %d contracts\n",
			g.MemberCount, g.TotalLeads, g.ClosedDeals, g.OpenDeals, g.ContractCount))
		out.WriteString(fmt.Sprintf("  conversion %s  revenue %s  avg deal %s  last activity %s\n\n",
			bar(g.ConversionRate), g.TotalRevenue.StringFixed(2), g.AverageDealSize.StringFixed(2), g.LastActivityLabel()))
	}

	if len(s.Members) > 0 {
		out.WriteString(labelStyle.Render("MEMBERS"))
		out.WriteString("\n")
		out.WriteString(memberTable(s.Members))
		out.WriteString("\n")
	}

	if len(s.Buckets) > 0 {
		out.WriteString("\n")
		out.WriteString(labelStyle.Render("LEADS BY STATUS"))
		out.WriteString("\n")
		renderBuckets(&out, s.Buckets)
	}

	return out.String()
}

func field(name, value string) string {
	return fmt.Sprintf("%s %s\n", mutedStyle.Render(fmt.Sprintf("%-10s", name)), value)
}

func memberTable(members []analytics.UserPerformance) string {
	rows := make([][]string, 0, len(members))
	for _, p := range members {
		rows = append(rows, []string{
			p.UserName,
			p.Role.String(),
			fmt.Sprintf("%d", p.TotalLeads),
			bar(p.ConversionRate),
			fmt.Sprintf("%d/%d", p.CompletedCalls, p.TotalCalls),
			fmt.Sprintf("%d/%d", p.CompletedMeetings, p.TotalMeetings),
			followUps(p.FollowUps),
			p.TotalRevenue.StringFixed(2),
			p.LastActivityLabel(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Name", "Role", "Leads", "Conversion", "Calls", "Meetings", "Follow-ups", "Revenue", "Last activity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
	return t.Render()
}

func followUps(s analytics.FollowUpStats) string {
	if !s.Tracked {
		return notApplicable
	}
	out := fmt.Sprintf("%d/%d", s.Completed, s.Total)
	if s.Synthetic {
		out += "*"
	}
	return out
}

// bar draws a ten-block gauge for a 0-100 rate.
func bar(rate float64) string {
	filled := int(rate / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %5.1f%%", rate)
}

func renderBuckets(out *strings.Builder, buckets []report.Bucket) {
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, b := range buckets {
		n := (b.Count * 10) / maxCount
		out.WriteString(fmt.Sprintf("  %-18s %s %3d\n", b.Key, strings.Repeat("█", n)+strings.Repeat("░", 10-n), b.Count))
	}
}
