package db_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/db"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.Config{Path: db.MemoryPath, Name: t.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen_FileCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "presensi.db")

	conn, err := db.Open(context.Background(), db.Config{Path: path})
	require.NoError(t, err)
	defer conn.Close()

	v, err := db.SchemaVersion(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, conn))
	require.NoError(t, db.Migrate(ctx, conn))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	for _, table := range []string{"users", "attendance_sessions", "sensor_readings"} {
		var name string
		err := conn.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestSchema_RejectsSecondOpenSession(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	require.NoError(t, db.SeedDev(ctx, conn, db.SeedDevOptions{}))

	insert := `INSERT INTO attendance_sessions(user_id, check_in_ms, created_at_ms, updated_at_ms) VALUES (7, 1, 1, 1)`
	_, err := conn.ExecContext(ctx, insert)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, insert)
	assert.Error(t, err, "partial unique index should reject a second open session")
}

func TestSeedDev_UpsertsUsers(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	require.NoError(t, db.SeedDev(ctx, conn, db.SeedDevOptions{}))
	require.NoError(t, db.SeedDev(ctx, conn, db.SeedDevOptions{
		Users: []db.SeedUser{{ID: 7, DisplayName: "Sari W.", Role: "mahasiswa"}},
	}))

	var name string
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT display_name FROM users WHERE user_id = 7`).Scan(&name))
	assert.Equal(t, "Sari W.", name)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, len(db.DefaultDevUsers), n)
}

func TestWorker_RollsBackOnError(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	w := db.NewWorker(conn)
	defer w.Close()

	boom := errors.New("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sensor_readings(created_at_ms, temperature, humidity) VALUES (1, 20, 50)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&n))
	assert.Zero(t, n)
}

func TestWorker_CancelledContext(t *testing.T) {
	conn := openMemory(t)
	w := db.NewWorker(conn)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := w.Do(ctx, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	// Give the loop a chance to pick the job up if it was enqueued.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, called)
}

func TestWorker_DoAfterClose(t *testing.T) {
	conn := openMemory(t)
	w := db.NewWorker(conn)
	w.Close()

	err := w.Do(context.Background(), func(context.Context, *sql.Tx) error { return nil })
	assert.ErrorIs(t, err, db.ErrWorkerClosed)
}
