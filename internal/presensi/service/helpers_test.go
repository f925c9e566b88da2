package service_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/db"
	"github.com/presensi-app/presensi/internal/presensi/store"
	"github.com/presensi-app/presensi/internal/presensi/store/memory"
	sqlitestore "github.com/presensi-app/presensi/internal/presensi/store/sqlite"
)

// backend bundles the stores a test runs against.
type backend struct {
	sessions store.SessionStore
	reports  store.ReportStore
	sensors  store.SensorStore
}

type backendFactory func(t *testing.T) backend

// backends runs every service test against both store implementations.
var backends = map[string]backendFactory{
	"memory": func(t *testing.T) backend {
		ss := memory.NewSessionStore()
		return backend{sessions: ss, reports: ss, sensors: memory.NewSensorStore()}
	},
	"sqlite": func(t *testing.T) backend {
		t.Helper()
		conn, err := db.Open(context.Background(), db.Config{Path: db.MemoryPath, Name: t.Name()})
		require.NoError(t, err)
		w := db.NewWorker(conn)
		t.Cleanup(func() {
			w.Close()
			conn.Close()
		})
		return backend{
			sessions: sqlitestore.NewSessionStore(conn, w),
			reports:  sqlitestore.NewReportStore(conn),
			sensors:  sqlitestore.NewSensorStore(conn, w),
		}
	},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b backend)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func ptr[T any](v T) *T { return &v }
