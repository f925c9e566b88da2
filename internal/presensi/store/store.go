// Package store defines the persistence contract for attendance sessions,
// user snapshots and sensor readings. Implementations live in the sqlite and
// memory subpackages.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrOpenSessionExists = errors.New("user already has an open session")
	ErrNoOpenSession     = errors.New("user has no open session")
	ErrNotOwner          = errors.New("session belongs to another user")
)

// UserRecord is the identity snapshot stored next to sessions.
type UserRecord struct {
	ID          int64
	DisplayName string
	Email       string
	Role        string
}

// SessionRecord is one check-in/check-out pair. CheckOut is nil while the
// session is open.
type SessionRecord struct {
	ID             int64
	UserID         int64
	CheckIn        time.Time
	CheckOut       *time.Time
	Latitude       *float64
	Longitude      *float64
	ProofPhotoPath string
}

// Open reports whether the session has not been checked out yet.
func (r SessionRecord) Open() bool { return r.CheckOut == nil }

// SessionPatch carries the fields an administrative edit may overwrite.
// Nil fields are left untouched.
type SessionPatch struct {
	CheckIn  *time.Time
	CheckOut *time.Time
}

type SessionStore interface {
	// OpenSession upserts the user snapshot and inserts rec as a new open
	// session, unless the user already has one (ErrOpenSessionExists).
	OpenSession(ctx context.Context, user UserRecord, rec SessionRecord) (SessionRecord, error)

	// CloseSession sets CheckOut on the user's open session only if it is
	// still open. Returns ErrNoOpenSession otherwise.
	CloseSession(ctx context.Context, userID int64, at time.Time) (SessionRecord, error)

	// GetSession and CountOpenSessions are read-only inspection hooks. The
	// service never needs them; tests and operators use them to check the
	// one-open-session invariant from outside.
	GetSession(ctx context.Context, id int64) (SessionRecord, error)

	// GetUser returns the stored identity snapshot, or ErrNotFound.
	GetUser(ctx context.Context, id int64) (UserRecord, error)

	// DeleteOwnedSession removes the session if requesterID owns it.
	// Returns ErrNotFound or ErrNotOwner without deleting anything.
	DeleteOwnedSession(ctx context.Context, id, requesterID int64) error

	// UpdateSession applies patch to the session. validate, if non-nil, sees
	// the patched record before it is written and may veto it.
	UpdateSession(ctx context.Context, id int64, patch SessionPatch, validate func(SessionRecord) error) (SessionRecord, error)

	// CountOpenSessions returns how many open sessions userID has. Anything
	// other than 0 or 1 means the invariant is broken.
	CountOpenSessions(ctx context.Context, userID int64) (int, error)
}

// ReportFilter selects sessions whose CheckIn lies in [From, To).
// Name, if set, is a case-insensitive substring of the user's display name.
type ReportFilter struct {
	From time.Time
	To   time.Time
	Name string
}

// ReportRow is a session joined with its user snapshot.
type ReportRow struct {
	Session SessionRecord
	User    UserRecord
}

type ReportStore interface {
	// ListSessions returns matching rows in insertion order.
	ListSessions(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

type SensorRecord struct {
	ID          int64
	CreatedAt   time.Time
	Temperature float64
	Humidity    float64
	Light       int64
	Motion      bool
}

// SensorStore is an append-only log of readings.
type SensorStore interface {
	AppendReading(ctx context.Context, rec SensorRecord) (SensorRecord, error)

	// RecentReadings returns at most limit rows, newest first.
	RecentReadings(ctx context.Context, limit int) ([]SensorRecord, error)
}
