package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/export"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(22)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("MEMBER DETAIL"))
	s.WriteString("\n\n")

	members := m.members()
	if m.selectedRow < len(members) {
		s.WriteString(m.renderPerformance(members[m.selectedRow]))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderPerformance(p analytics.UserPerformance) string {
	var s strings.Builder

	s.WriteString(m.renderField("Name", p.UserName))
	s.WriteString(m.renderField("Role", p.Role.String()))
	s.WriteString(m.renderField("Leads", fmt.Sprintf("%d (%d closed, %d open)", p.TotalLeads, p.ClosedDeals, p.OpenDeals)))
	s.WriteString(m.renderField("Conversion", fmt.Sprintf("%.1f%%", p.ConversionRate)))
	s.WriteString(m.renderField("Calls", fmt.Sprintf("%d/%d (%.1f%%)", p.CompletedCalls, p.TotalCalls, p.CallCompletionRate)))
	s.WriteString(m.renderField("Visits", fmt.Sprintf("%d/%d (%.1f%%)", p.CompletedVisits, p.TotalVisits, p.VisitCompletionRate)))
	s.WriteString(m.renderField("Meetings", fmt.Sprintf("%d/%d (%.1f%%)", p.CompletedMeetings, p.TotalMeetings, p.MeetingCompletionRate)))

	followUps := export.NotApplicable
	if p.FollowUps.Tracked {
		followUps = fmt.Sprintf("%d/%d (%.1f%%)", p.FollowUps.Completed, p.FollowUps.Total, p.FollowUpCompletionRate)
		if p.FollowUps.Synthetic {
			followUps += " synthetic"
		}
	}
	s.WriteString(m.renderField("Follow-ups", followUps))

	s.WriteString(m.renderField("Contracts", fmt.Sprintf("%d (%d signed)", p.ContractCount, p.SignedContracts)))
	s.WriteString(m.renderField("Revenue", p.TotalRevenue.StringFixed(2)))
	s.WriteString(m.renderField("Average deal", p.AverageDealSize.StringFixed(2)))
	s.WriteString(m.renderField("Last activity", p.LastActivityLabel()))

	return s.String()
}

func (m Model) renderField(label, value string) string {
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	return helpStyle.Render("Esc: Back • q: Quit")
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
	}
	return m, nil
}
