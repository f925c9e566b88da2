package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	dbpkg "github.com/presensi-app/presensi/internal/db"
	"github.com/presensi-app/presensi/internal/presensi/store"
)

const sessionColumns = `session_id, user_id, check_in_ms, check_out_ms, latitude, longitude, proof_photo_path`

type sessionRow struct {
	ID         int64           `db:"session_id"`
	UserID     int64           `db:"user_id"`
	CheckInMs  int64           `db:"check_in_ms"`
	CheckOutMs sql.NullInt64   `db:"check_out_ms"`
	Latitude   sql.NullFloat64 `db:"latitude"`
	Longitude  sql.NullFloat64 `db:"longitude"`
	PhotoPath  sql.NullString  `db:"proof_photo_path"`
}

func (r sessionRow) record() store.SessionRecord {
	return store.SessionRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		CheckIn:        fromMs(r.CheckInMs),
		CheckOut:       nullMs(r.CheckOutMs),
		Latitude:       nullFloat(r.Latitude),
		Longitude:      nullFloat(r.Longitude),
		ProofPhotoPath: r.PhotoPath.String,
	}
}

type SessionStore struct {
	db     *sqlx.DB
	writer *dbpkg.Worker
}

func NewSessionStore(db *sql.DB, writer *dbpkg.Worker) *SessionStore {
	return &SessionStore{db: wrapDB(db), writer: writer}
}

func (s *SessionStore) OpenSession(ctx context.Context, user store.UserRecord, rec store.SessionRecord) (store.SessionRecord, error) {
	if rec.CheckIn.IsZero() {
		rec.CheckIn = time.Now().UTC()
	}
	rec.UserID = user.ID
	rec.CheckOut = nil
	nowMs := toMs(rec.CheckIn)

	var photo any
	if rec.ProofPhotoPath != "" {
		photo = rec.ProofPhotoPath
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, user, nowMs); err != nil {
			return err
		}

		var open int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM attendance_sessions
WHERE user_id = ? AND check_out_ms IS NULL;
`, user.ID).Scan(&open); err != nil {
			return fmt.Errorf("OpenSession check open: %w", err)
		}
		if open > 0 {
			return store.ErrOpenSessionExists
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO attendance_sessions(
  user_id, check_in_ms, check_out_ms, latitude, longitude, proof_photo_path,
  created_at_ms, updated_at_ms
) VALUES (?, ?, NULL, ?, ?, ?, ?, ?);
`, user.ID, nowMs, optional(rec.Latitude), optional(rec.Longitude), photo, nowMs, nowMs)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrOpenSessionExists
			}
			return fmt.Errorf("OpenSession insert: %w", err)
		}

		rec.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("OpenSession last id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.SessionRecord{}, err
	}

	rec.CheckIn = fromMs(nowMs)
	return rec, nil
}

func (s *SessionStore) CloseSession(ctx context.Context, userID int64, at time.Time) (store.SessionRecord, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	atMs := toMs(at)

	var rec store.SessionRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var row sessionRow
		err := txx(s.db, tx).GetContext(ctx, &row, `
SELECT `+sessionColumns+`
FROM attendance_sessions
WHERE user_id = ? AND check_out_ms IS NULL;
`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNoOpenSession
		}
		if err != nil {
			return fmt.Errorf("CloseSession find open: %w", err)
		}

		// Conditional on still being open: a concurrent close that won
		// leaves nothing for this one to update.
		res, err := tx.ExecContext(ctx, `
UPDATE attendance_sessions
SET check_out_ms = ?,
    updated_at_ms = ?
WHERE session_id = ? AND check_out_ms IS NULL;
`, atMs, atMs, row.ID)
		if err != nil {
			return fmt.Errorf("CloseSession update: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNoOpenSession
		}

		rec = row.record()
		closed := fromMs(atMs)
		rec.CheckOut = &closed
		return nil
	})
	return rec, err
}

func (s *SessionStore) GetSession(ctx context.Context, id int64) (store.SessionRecord, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
SELECT `+sessionColumns+`
FROM attendance_sessions
WHERE session_id = ?;
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.SessionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.SessionRecord{}, fmt.Errorf("GetSession: %w", err)
	}
	return row.record(), nil
}

func (s *SessionStore) GetUser(ctx context.Context, id int64) (store.UserRecord, error) {
	var row struct {
		ID          int64  `db:"user_id"`
		DisplayName string `db:"display_name"`
		Email       string `db:"email"`
		Role        string `db:"role"`
	}
	err := s.db.GetContext(ctx, &row, `
SELECT user_id, display_name, email, role
FROM users
WHERE user_id = ?;
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("GetUser: %w", err)
	}
	return store.UserRecord{ID: row.ID, DisplayName: row.DisplayName, Email: row.Email, Role: row.Role}, nil
}

func (s *SessionStore) DeleteOwnedSession(ctx context.Context, id, requesterID int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRowContext(ctx, `
SELECT user_id FROM attendance_sessions WHERE session_id = ?;
`, id).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("DeleteOwnedSession lookup: %w", err)
		}
		if owner != requesterID {
			return store.ErrNotOwner
		}

		if _, err := tx.ExecContext(ctx, `
DELETE FROM attendance_sessions WHERE session_id = ?;
`, id); err != nil {
			return fmt.Errorf("DeleteOwnedSession delete: %w", err)
		}
		return nil
	})
}

func (s *SessionStore) UpdateSession(
	ctx context.Context,
	id int64,
	patch store.SessionPatch,
	validate func(store.SessionRecord) error,
) (store.SessionRecord, error) {
	var rec store.SessionRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var row sessionRow
		err := txx(s.db, tx).GetContext(ctx, &row, `
SELECT `+sessionColumns+`
FROM attendance_sessions
WHERE session_id = ?;
`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("UpdateSession lookup: %w", err)
		}

		rec = row.record()
		if patch.CheckIn != nil {
			rec.CheckIn = fromMs(toMs(*patch.CheckIn))
		}
		if patch.CheckOut != nil {
			out := fromMs(toMs(*patch.CheckOut))
			rec.CheckOut = &out
		}
		if validate != nil {
			if err := validate(rec); err != nil {
				return err
			}
		}

		var outMs any
		if rec.CheckOut != nil {
			outMs = toMs(*rec.CheckOut)
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE attendance_sessions
SET check_in_ms = ?,
    check_out_ms = ?,
    updated_at_ms = ?
WHERE session_id = ?;
`, toMs(rec.CheckIn), outMs, toMs(time.Now()), id); err != nil {
			if isUniqueViolation(err) {
				return store.ErrOpenSessionExists
			}
			return fmt.Errorf("UpdateSession update: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.SessionRecord{}, err
	}
	return rec, nil
}

func (s *SessionStore) CountOpenSessions(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `
SELECT COUNT(*) FROM attendance_sessions
WHERE user_id = ? AND check_out_ms IS NULL;
`, userID); err != nil {
		return 0, fmt.Errorf("CountOpenSessions: %w", err)
	}
	return n, nil
}
