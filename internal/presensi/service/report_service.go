package service

import (
	"context"
	"strings"
	"time"

	"github.com/presensi-app/presensi/internal/presensi/store"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

const reportDateLayout = "2006-01-02"

// ReportService answers "who checked in on day D", where a day is a calendar
// day in the reference zone.
type ReportService struct {
	reports store.ReportStore
	loc     *time.Location
	now     func() time.Time
}

func NewReportService(rs store.ReportStore, loc *time.Location, opts ...Option) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	o := buildOptions(opts)
	return &ReportService{reports: rs, loc: loc, now: o.now}
}

func (s *ReportService) DailyReport(ctx context.Context, q types.ReportQuery) (types.DailyReportResponse, error) {
	start, err := s.dayStart(strings.TrimSpace(q.Date))
	if err != nil {
		return types.DailyReportResponse{}, err
	}

	rows, err := s.reports.ListSessions(ctx, store.ReportFilter{
		From: start,
		To:   start.AddDate(0, 0, 1),
		Name: strings.TrimSpace(q.Name),
	})
	if err != nil {
		return types.DailyReportResponse{}, storageFailure("daily report", err)
	}

	entries := make([]types.ReportEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, types.ReportEntry{
			SessionSummary: types.SessionSummary{
				ID:         row.Session.ID,
				UserID:     row.Session.UserID,
				Name:       row.User.DisplayName,
				CheckIn:    formatIn(row.Session.CheckIn, s.loc),
				CheckOut:   formatOptional(row.Session.CheckOut, s.loc),
				Latitude:   row.Session.Latitude,
				Longitude:  row.Session.Longitude,
				ProofPhoto: row.Session.ProofPhotoPath,
			},
			Email: row.User.Email,
			Role:  row.User.Role,
		})
	}

	return types.DailyReportResponse{
		ReportDate: start.Format(reportDateLayout),
		Data:       entries,
	}, nil
}

// dayStart resolves date (or today when empty) to local midnight.
func (s *ReportService) dayStart(date string) (time.Time, error) {
	if date == "" {
		return startOfDay(s.now(), s.loc), nil
	}
	d, err := time.ParseInLocation(reportDateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, invalid("date", "date must be formatted YYYY-MM-DD")
	}
	return d, nil
}
