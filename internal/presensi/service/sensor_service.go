package service

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/presensi-app/presensi/internal/presensi/store"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// SensorService appends device readings and serves the recent window for the
// dashboard.
type SensorService struct {
	readings store.SensorStore
	now      func() time.Time
}

func NewSensorService(ss store.SensorStore, opts ...Option) *SensorService {
	o := buildOptions(opts)
	return &SensorService{readings: ss, now: o.now}
}

func (s *SensorService) RecordReading(ctx context.Context, req types.SensorReadingRequest) (types.SensorAck, error) {
	if req.Temperature == nil {
		return types.SensorAck{}, invalid("temperature", "temperature is required")
	}
	if req.Humidity == nil {
		return types.SensorAck{}, invalid("humidity", "humidity is required")
	}
	// Binary codecs can carry NaN or Inf bit patterns that JSON cannot.
	if !finite(*req.Temperature) {
		return types.SensorAck{}, invalid("temperature", "temperature must be a finite number")
	}
	if !finite(*req.Humidity) {
		return types.SensorAck{}, invalid("humidity", "humidity must be a finite number")
	}

	rec := store.SensorRecord{
		CreatedAt:   stamp(s.now),
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
	}
	if req.Light != nil {
		rec.Light = *req.Light
	}
	if req.Motion != nil {
		rec.Motion = *req.Motion
	}

	if _, err := s.readings.AppendReading(ctx, rec); err != nil {
		return types.SensorAck{}, storageFailure("record reading", err)
	}
	return types.SensorAck{Status: "ok"}, nil
}

// RecentReadings returns the newest limit readings in chronological order.
// A zero limit means DefaultHistoryLimit.
func (s *SensorService) RecentReadings(ctx context.Context, limit int) (types.SensorHistoryResponse, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return types.SensorHistoryResponse{}, invalid("limit", "limit must be between 1 and 500")
	}

	recs, err := s.readings.RecentReadings(ctx, limit)
	if err != nil {
		return types.SensorHistoryResponse{}, storageFailure("recent readings", err)
	}
	slices.Reverse(recs)

	out := make([]types.SensorReading, 0, len(recs))
	for _, r := range recs {
		out = append(out, sensorReading(r))
	}
	return types.SensorHistoryResponse{Status: "success", Data: out}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sensorReading(r store.SensorRecord) types.SensorReading {
	motion := 0
	if r.Motion {
		motion = 1
	}
	return types.SensorReading{
		ID:          r.ID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Light:       r.Light,
		Motion:      motion,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
