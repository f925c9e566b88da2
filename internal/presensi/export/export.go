// Package export renders daily reports as spreadsheet downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/presensi-app/presensi/internal/presensi/types"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType  = "text/csv; charset=utf-8"
)

var header = []string{"ID", "User ID", "Name", "Email", "Role", "Check-in", "Check-out", "Latitude", "Longitude", "Photo"}

var colWidths = map[string]float64{"A": 8, "B": 10, "C": 24, "D": 28, "E": 12, "F": 26, "G": 26, "H": 12, "I": 12, "J": 40}

// FileName is the attachment name for a report in the given format.
func FileName(report types.DailyReportResponse, ext string) string {
	return fmt.Sprintf("presensi_%s.%s", report.ReportDate, ext)
}

// WriteXLSX writes report as a single-sheet workbook named after the report
// date: a header row then one row per entry.
func WriteXLSX(w io.Writer, report types.DailyReportResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := report.ReportDate
	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "name sheet")
	}

	for i, row := range rows(report) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i+1)
		}
	}
	for col, width := range colWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return errors.Wrap(err, "set column width")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// WriteCSV writes the same rows as WriteXLSX as CSV.
func WriteCSV(w io.Writer, report types.DailyReportResponse) error {
	cw := csv.NewWriter(w)
	for _, row := range rows(report) {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "write csv")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func rows(report types.DailyReportResponse) [][]any {
	out := make([][]any, 0, len(report.Data)+1)

	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	out = append(out, h)

	for _, e := range report.Data {
		out = append(out, []any{
			e.ID,
			e.UserID,
			e.Name,
			e.Email,
			e.Role,
			e.CheckIn,
			deref(e.CheckOut),
			coord(e.Latitude),
			coord(e.Longitude),
			e.ProofPhoto,
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func coord(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
