package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/presensi-app/presensi/internal/presensi/export"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

// reportQuery reads ?name= (or the older ?nama=) and ?date=.
func (s *Server) reportQuery(r *http.Request) (types.ReportQuery, error) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		name = q.Get("nama")
	}
	rq := types.ReportQuery{Name: strings.TrimSpace(name), Date: strings.TrimSpace(q.Get("date"))}
	if err := s.validator.Struct(rq); err != nil {
		return types.ReportQuery{}, err
	}
	return rq, nil
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	q, err := s.reportQuery(r)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	resp, err := s.reports.DailyReport(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExportDailyReport serves the report as an xlsx (default) or csv
// attachment.
func (s *Server) handleExportDailyReport(w http.ResponseWriter, r *http.Request) {
	q, err := s.reportQuery(r)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		s.writeRequestError(w, r, badField("format", "format must be xlsx or csv"))
		return
	}

	report, err := s.reports.DailyReport(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	contentType := export.XLSXContentType
	if format == "csv" {
		contentType = export.CSVContentType
		err = export.WriteCSV(&buf, report)
	} else {
		err = export.WriteXLSX(&buf, report)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
