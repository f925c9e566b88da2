package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedUser is a user snapshot inserted by SeedDev.
type SeedUser struct {
	ID          int64
	DisplayName string
	Email       string
	Role        string
}

type SeedDevOptions struct {
	Users []SeedUser
}

// DefaultDevUsers gives a fresh dev database an admin and one regular user so
// reports have names to join before anyone has checked in.
var DefaultDevUsers = []SeedUser{
	{ID: 1, DisplayName: "Admin", Email: "admin@presensi.local", Role: "admin"},
	{ID: 7, DisplayName: "Sari", Email: "sari@presensi.local", Role: "mahasiswa"},
}

// SeedDev upserts the given users. It never touches sessions or readings.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	users := opt.Users
	if len(users) == 0 {
		users = DefaultDevUsers
	}
	now := time.Now().UTC().UnixMilli()

	for _, u := range users {
		if _, err := db.ExecContext(ctx, `
INSERT INTO users(user_id, display_name, email, role, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  display_name = excluded.display_name,
  email = excluded.email,
  role = excluded.role,
  updated_at_ms = excluded.updated_at_ms;
`, u.ID, u.DisplayName, u.Email, u.Role, now, now); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}

	return nil
}
