package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/presensi-app/presensi/internal/presensi/store"
)

type reportRow struct {
	sessionRow
	DisplayName string `db:"display_name"`
	Email       string `db:"email"`
	Role        string `db:"role"`
}

type ReportStore struct {
	db *sqlx.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: wrapDB(db)}
}

func (s *ReportStore) ListSessions(ctx context.Context, filter store.ReportFilter) ([]store.ReportRow, error) {
	var q strings.Builder
	q.WriteString(`
SELECT s.session_id, s.user_id, s.check_in_ms, s.check_out_ms,
       s.latitude, s.longitude, s.proof_photo_path,
       COALESCE(u.display_name, '') AS display_name,
       COALESCE(u.email, '')        AS email,
       COALESCE(u.role, '')         AS role
FROM attendance_sessions s
LEFT JOIN users u ON u.user_id = s.user_id
WHERE s.check_in_ms >= ? AND s.check_in_ms < ?`)
	args := []any{toMs(filter.From), toMs(filter.To)}

	if name := strings.TrimSpace(filter.Name); name != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		q.WriteString(` AND u.display_name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(name)+"%")
	}
	q.WriteString(`
ORDER BY s.session_id ASC;`)

	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows, q.String(), args...); err != nil {
		return nil, fmt.Errorf("ListSessions: %w", err)
	}

	out := make([]store.ReportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ReportRow{
			Session: r.record(),
			User: store.UserRecord{
				ID:          r.UserID,
				DisplayName: r.DisplayName,
				Email:       r.Email,
				Role:        r.Role,
			},
		})
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
