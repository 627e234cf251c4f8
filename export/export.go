// ABOUTME: Spreadsheet exporter that renders assembled reports as multi-sheet xlsx workbooks
// ABOUTME: Produces deterministic filenames and saves atomically via temp file and rename
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harperreed/salesreport/report"
)

var ErrUnknownReport = errors.New("unknown report shape")

// Result is a rendered workbook.
type Result struct {
	Data     []byte
	Filename string
	Sheets   []string
}

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

type workbook struct {
	sheets []sheet
}

func (w *workbook) add(name string, header []string, rows [][]any) {
	w.sheets = append(w.sheets, sheet{name: name, header: header, rows: rows})
}

// Export renders r. The report is not modified, so a failed export can be
// retried with the same value.
func Export(r report.Report) (*Result, error) {
	var wb workbook
	switch rep := r.(type) {
	case *report.TeamLeaderReport:
		teamSheets(&wb, rep)
	case *report.SalesReportData:
		salesSheets(&wb, rep)
	case *report.UserReport:
		userSheets(&wb, rep)
	case *report.SalesMemberReport:
		salesMemberSheets(&wb, rep)
	case *report.AllSalesMembersReport:
		allSalesMembersSheets(&wb, rep)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownReport, r)
	}

	data, err := wb.render()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(wb.sheets))
	for _, s := range wb.sheets {
		names = append(names, s.name)
	}
	return &Result{Data: data, Filename: Filename(r), Sheets: names}, nil
}

func (w *workbook) render() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range w.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", s.name, err)
		}

		if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return nil, fmt.Errorf("failed to write %s header: %w", s.name, err)
		}
		if err := f.SetRowStyle(s.name, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("failed to style %s header: %w", s.name, err)
		}
		for j, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write %s row %d: %w", s.name, j+1, err)
			}
		}

		last, err := excelize.ColumnNumberToName(len(s.header))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(s.name, "A", last, 18); err != nil {
			return nil, fmt.Errorf("failed to size %s columns: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var unsafeChars = strings.NewReplacer(
	" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeName replaces spaces and characters not allowed in filenames with underscores.
func SanitizeName(s string) string {
	return unsafeChars.Replace(strings.TrimSpace(s))
}

// Filename is <Kind>_<Context>_<start|all>_to_<end|all>.xlsx.
func Filename(r report.Report) string {
	rng := r.Range()
	return fmt.Sprintf("%s_%s_%s_to_%s.xlsx",
		r.Kind().Title(), SanitizeName(r.ContextName()), rng.StartLabel(), rng.EndLabel())
}

// Save writes res into dir and returns the final path. The file appears
// under its final name only once fully written.
func Save(dir string, res *Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.xlsx.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(res.Data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close export: %w", err)
	}

	final := filepath.Join(dir, res.Filename)
	if err := os.Rename(tmpPath, final); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	return final, nil
}
