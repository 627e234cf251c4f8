// ABOUTME: Report CLI commands
// ABOUTME: Exports workbooks, prints terminal summaries and opens the report browser
package cli

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salesreport/export"
	"github.com/harperreed/salesreport/report"
	"github.com/harperreed/salesreport/tui"
	"github.com/harperreed/salesreport/viz"
)

type reportFlags struct {
	viewer    *string
	kind      *string
	timeframe *string
	start     *string
	end       *string
	subject   *string
}

func bindReportFlags(fs *flag.FlagSet) reportFlags {
	return reportFlags{
		viewer:    fs.String("viewer", "", "ID of the user requesting the report (required)"),
		kind:      fs.String("type", string(report.KindTeam), "Report type: team, sales, user, salesMember, allSalesMembers"),
		timeframe: fs.String("timeframe", "month", "Timeframe: today, week, month, last7days, last30days, last3months, last6months, yearToDate, custom"),
		start:     fs.String("start", "", "Custom range start (YYYY-MM-DD)"),
		end:       fs.String("end", "", "Custom range end (YYYY-MM-DD)"),
		subject:   fs.String("subject", "", "User the report is about (user and salesMember reports)"),
	}
}

func (f reportFlags) request() (report.Request, error) {
	if *f.viewer == "" {
		return report.Request{}, fmt.Errorf("--viewer is required")
	}
	return report.Request{
		ViewerID:  *f.viewer,
		Type:      report.Kind(*f.kind),
		Timeframe: *f.timeframe,
		StartDate: *f.start,
		EndDate:   *f.end,
		SubjectID: *f.subject,
	}, nil
}

// ReportExportCommand generates a report and saves it as an xlsx workbook.
func ReportExportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("report export", flag.ExitOnError)
	rf := bindReportFlags(fs)
	out := fs.String("out", "", "Output directory (default: EXPORT_DIR)")
	_ = fs.Parse(args)

	req, err := rf.request()
	if err != nil {
		return err
	}
	r, err := app.Service.Generate(ctx, req)
	if err != nil {
		return err
	}

	res, err := export.Export(r)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	dir := *out
	if dir == "" {
		dir = app.Config.ExportDir
	}
	path, err := export.Save(dir, res)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ Exported %s (%s)\n", res.Filename, r.Range().String())
	fmt.Fprintf(app.Out, "  Path: %s\n", path)
	fmt.Fprintf(app.Out, "  Sheets: %d\n", len(res.Sheets))
	return nil
}

// ReportShowCommand prints a styled summary of a report.
func ReportShowCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("report show", flag.ExitOnError)
	rf := bindReportFlags(fs)
	_ = fs.Parse(args)

	req, err := rf.request()
	if err != nil {
		return err
	}
	r, err := app.Service.Generate(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprint(app.Out, viz.RenderSummary(r))
	return nil
}

// ReportBrowseCommand opens the interactive report browser.
func ReportBrowseCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("report browse", flag.ExitOnError)
	viewer := fs.String("viewer", "", "ID of the user browsing (required)")
	kind := fs.String("type", string(report.KindTeam), "Initial report type")
	_ = fs.Parse(args)

	if *viewer == "" {
		return fmt.Errorf("--viewer is required")
	}

	// fail fast instead of opening a screen that can only show a denial
	if _, _, err := app.Service.Dataset(ctx, *viewer); err != nil {
		return err
	}

	m := tui.NewModel(app.Service, *viewer, report.Kind(*kind), app.Config.ExportDir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run report browser: %w", err)
	}
	return nil
}
