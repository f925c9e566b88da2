package types

// ReportQuery filters the daily report. Date is a calendar day (YYYY-MM-DD)
// in the reference zone; empty means today.
type ReportQuery struct {
	Name string `json:"name" validate:"max=100"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type ReportEntry struct {
	SessionSummary
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type DailyReportResponse struct {
	ReportDate string        `json:"reportDate"`
	Data       []ReportEntry `json:"data"`
}
