// Package sqlite implements the store interfaces on top of modernc.org/sqlite.
// Writes go through a db.Worker; reads use sqlx against the shared *sql.DB.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// driverName matches the name modernc.org/sqlite registers with database/sql.
const driverName = "sqlite"

func wrapDB(db *sql.DB) *sqlx.DB { return sqlx.NewDb(db, driverName) }

// txx lends sqlx's scanning helpers to a transaction owned by the worker.
func txx(db *sqlx.DB, tx *sql.Tx) *sqlx.Tx {
	return &sqlx.Tx{Tx: tx, Mapper: db.Mapper}
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func toMs(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMs(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMs(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMs(ms.Int64)
	return &t
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// optional turns a nil pointer into a SQL NULL argument.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
