package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	dbpkg "github.com/presensi-app/presensi/internal/db"
	"github.com/presensi-app/presensi/internal/presensi/store"
)

type sensorRow struct {
	ID          int64   `db:"reading_id"`
	CreatedAtMs int64   `db:"created_at_ms"`
	Temperature float64 `db:"temperature"`
	Humidity    float64 `db:"humidity"`
	Light       int64   `db:"light"`
	Motion      int     `db:"motion"`
}

type SensorStore struct {
	db     *sqlx.DB
	writer *dbpkg.Worker
}

func NewSensorStore(db *sql.DB, writer *dbpkg.Worker) *SensorStore {
	return &SensorStore{db: wrapDB(db), writer: writer}
}

// AppendReading inserts one reading. Rows are never updated afterwards.
func (s *SensorStore) AppendReading(ctx context.Context, rec store.SensorRecord) (store.SensorRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	createdMs := toMs(rec.CreatedAt)

	var motion int
	if rec.Motion {
		motion = 1
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO sensor_readings(created_at_ms, temperature, humidity, light, motion)
VALUES (?, ?, ?, ?, ?);
`, createdMs, rec.Temperature, rec.Humidity, rec.Light, motion)
		if err != nil {
			return fmt.Errorf("AppendReading insert: %w", err)
		}
		rec.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("AppendReading last id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.SensorRecord{}, err
	}

	rec.CreatedAt = fromMs(createdMs)
	return rec, nil
}

// RecentReadings returns up to limit rows, newest first. Ties on created_at
// fall back to insertion order.
func (s *SensorStore) RecentReadings(ctx context.Context, limit int) ([]store.SensorRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []sensorRow
	if err := s.db.SelectContext(ctx, &rows, `
SELECT reading_id, created_at_ms, temperature, humidity, light, motion
FROM sensor_readings
ORDER BY created_at_ms DESC, reading_id DESC
LIMIT ?;
`, limit); err != nil {
		return nil, fmt.Errorf("RecentReadings: %w", err)
	}

	out := make([]store.SensorRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.SensorRecord{
			ID:          r.ID,
			CreatedAt:   fromMs(r.CreatedAtMs),
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			Light:       r.Light,
			Motion:      r.Motion != 0,
		})
	}
	return out, nil
}
