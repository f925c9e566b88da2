package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/presensi-app/presensi/internal/presensi/store"
)

// ensureUser refreshes the identity snapshot for u so sessions satisfy their
// foreign key and reports join the latest display name. Blank fields in u do
// not overwrite known values.
//
// Must be called inside an existing transaction.
func ensureUser(ctx context.Context, tx *sql.Tx, u store.UserRecord, nowMs int64) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO users(user_id, display_name, email, role, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  display_name  = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE users.display_name END,
  email         = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END,
  role          = CASE WHEN excluded.role <> '' THEN excluded.role ELSE users.role END,
  updated_at_ms = excluded.updated_at_ms;
`, u.ID, u.DisplayName, u.Email, u.Role, nowMs, nowMs); err != nil {
		return fmt.Errorf("ensureUser %d: %w", u.ID, err)
	}
	return nil
}
