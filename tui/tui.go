// ABOUTME: Terminal report browser using bubbletea framework
// ABOUTME: Switches report types and timeframes, drills into members and exports workbooks
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/export"
	"github.com/harperreed/salesreport/report"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// browsable report types, in tab order
var tabKinds = []report.Kind{
	report.KindTeam,
	report.KindSales,
	report.KindSalesMember,
	report.KindAllSalesMembers,
}

var browseTimeframes = []analytics.Timeframe{
	analytics.TimeframeMonth,
	analytics.TimeframeWeek,
	analytics.TimeframeToday,
	analytics.TimeframeLast7Days,
	analytics.TimeframeLast30Days,
	analytics.TimeframeLast3Months,
	analytics.TimeframeLast6Months,
	analytics.TimeframeYearToDate,
}

type reportMsg struct {
	report report.Report
	err    error
}

type exportMsg struct {
	path string
	err  error
}

// Model is the main bubbletea model
type Model struct {
	service   *report.Service
	viewerID  string
	exportDir string

	viewMode  ViewMode
	kindIndex int
	tfIndex   int

	report      report.Report
	loading     bool
	selectedRow int
	status      string

	width  int
	height int
	err    error
}

// NewModel creates a browser for viewerID starting at kind.
func NewModel(service *report.Service, viewerID string, kind report.Kind, exportDir string) Model {
	m := Model{
		service:   service,
		viewerID:  viewerID,
		exportDir: exportDir,
		viewMode:  ViewList,
		width:     100,
		height:    24,
		loading:   true,
	}
	for i, k := range tabKinds {
		if k == kind {
			m.kindIndex = i
		}
	}
	return m
}

func (m Model) kind() report.Kind               { return tabKinds[m.kindIndex] }
func (m Model) timeframe() analytics.Timeframe { return browseTimeframes[m.tfIndex] }

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	svc, req := m.service, report.Request{
		ViewerID:  m.viewerID,
		Type:      m.kind(),
		Timeframe: string(m.timeframe()),
	}
	return func() tea.Msg {
		r, err := svc.Generate(context.Background(), req)
		return reportMsg{report: r, err: err}
	}
}

func (m Model) exportCurrent() tea.Cmd {
	r, dir := m.report, m.exportDir
	return func() tea.Msg {
		res, err := export.Export(r)
		if err != nil {
			return exportMsg{err: err}
		}
		path, err := export.Save(dir, res)
		return exportMsg{path: path, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case reportMsg:
		m.loading = false
		m.report, m.err = msg.report, msg.err
		m.selectedRow = 0
		m.viewMode = ViewList
		return m, nil
	case exportMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}

	return m, nil
}

// errorText keeps denials to the fixed message.
func errorText(err error) string {
	if errors.Is(err, report.ErrAccessDenied) {
		return report.ErrAccessDenied.Error()
	}
	return err.Error()
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)
