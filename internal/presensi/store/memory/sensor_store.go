package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/presensi-app/presensi/internal/presensi/store"
)

// SensorStore is an in-memory append-only reading log.
type SensorStore struct {
	mu       sync.Mutex
	nextID   int64
	readings []store.SensorRecord
}

func NewSensorStore() *SensorStore {
	return &SensorStore{}
}

func (s *SensorStore) AppendReading(_ context.Context, rec store.SensorRecord) (store.SensorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.nextID++
	rec.ID = s.nextID
	s.readings = append(s.readings, rec)
	return rec, nil
}

// RecentReadings returns up to limit readings, newest first. Readings are
// ordered by CreatedAt, then insertion order.
func (s *SensorStore) RecentReadings(_ context.Context, limit int) ([]store.SensorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}

	sorted := slices.Clone(s.readings)
	slices.SortFunc(sorted, func(a, b store.SensorRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// Readings returns a copy of all readings in insertion order. Test-only helper.
func (s *SensorStore) Readings() []store.SensorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.SensorRecord, len(s.readings))
	copy(out, s.readings)
	return out
}
