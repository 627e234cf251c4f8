package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SALES REPORTS"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("Timeframe: %s", m.timeframe())))
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString("Loading...")
	case m.err != nil:
		s.WriteString(errorStyle.Render(errorText(m.err)))
	default:
		s.WriteString(m.renderHeader())
		s.WriteString("\n\n")
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n\n")

	if m.status != "" {
		s.WriteString(m.status)
		s.WriteString("\n")
	}
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, k := range tabKinds {
		label := strings.ReplaceAll(k.Title(), "_", " ")
		if i == m.kindIndex {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHeader() string {
	s := viz.SummaryOf(m.report)
	line := fmt.Sprintf("%s  •  %s", s.Meta.Context, s.Meta.DateRange.String())
	if s.Group != nil {
		line += fmt.Sprintf("  •  %d leads, %d closed, conversion %.1f%%, revenue %s",
			s.Group.TotalLeads, s.Group.ClosedDeals, s.Group.ConversionRate, s.Group.TotalRevenue.StringFixed(2))
	}
	return line
}

// members returns the rows shown for the current report.
func (m Model) members() []analytics.UserPerformance {
	if m.report == nil {
		return nil
	}
	return viz.SummaryOf(m.report).Members
}

func (m Model) renderTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Role", Width: 12},
		{Title: "Leads", Width: 6},
		{Title: "Closed", Width: 7},
		{Title: "Conv %", Width: 7},
		{Title: "Calls %", Width: 8},
		{Title: "Revenue", Width: 12},
		{Title: "Last activity", Width: 17},
	}

	var rows []table.Row
	for _, p := range m.members() {
		rows = append(rows, table.Row{
			p.UserName,
			p.Role.String(),
			fmt.Sprintf("%d", p.TotalLeads),
			fmt.Sprintf("%d", p.ClosedDeals),
			fmt.Sprintf("%.1f", p.ConversionRate),
			fmt.Sprintf("%.1f", p.CallCompletionRate),
			p.TotalRevenue.StringFixed(2),
			p.LastActivityLabel(),
		})
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch report",
		"t: Timeframe",
		"Enter: Member details",
		"e: Export",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.members())-1 {
			m.selectedRow++
		}
	case "tab":
		m.kindIndex = (m.kindIndex + 1) % len(tabKinds)
		m.loading, m.status = true, ""
		return m, m.load()
	case "t":
		m.tfIndex = (m.tfIndex + 1) % len(browseTimeframes)
		m.loading, m.status = true, ""
		return m, m.load()
	case "enter":
		if len(m.members()) > 0 {
			m.viewMode = ViewDetail
		}
	case "e":
		if m.report != nil && m.err == nil {
			m.status = "exporting..."
			return m, m.exportCurrent()
		}
	}

	return m, nil
}
