package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/presensi/service"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

func TestRecordReading_DefaultsOptionalFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		clock := newFakeClock(t0)
		svc := service.NewSensorService(b.sensors, service.WithClock(clock.Now))
		ctx := context.Background()

		ack, err := svc.RecordReading(ctx, types.SensorReadingRequest{Temperature: ptr(28.5), Humidity: ptr(60.0)})
		require.NoError(t, err)
		assert.Equal(t, "ok", ack.Status)

		resp, err := svc.RecentReadings(ctx, 0)
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		got := resp.Data[0]
		assert.Equal(t, 28.5, got.Temperature)
		assert.Equal(t, 60.0, got.Humidity)
		assert.Zero(t, got.Light)
		assert.Zero(t, got.Motion)
		assert.Equal(t, "2024-03-01T01:00:01Z", got.CreatedAt)
	})
}

func TestRecordReading_RequiresTemperatureAndHumidity(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		svc := service.NewSensorService(b.sensors)
		ctx := context.Background()

		_, err := svc.RecordReading(ctx, types.SensorReadingRequest{Humidity: ptr(60.0)})
		require.ErrorIs(t, err, service.ErrInvalidArgument)
		_, err = svc.RecordReading(ctx, types.SensorReadingRequest{Temperature: ptr(28.5)})
		require.ErrorIs(t, err, service.ErrInvalidArgument)

		resp, err := svc.RecentReadings(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
	})
}

func TestRecordReading_RejectsNonFiniteValues(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		svc := service.NewSensorService(b.sensors)
		ctx := context.Background()

		cases := []struct {
			field string
			req   types.SensorReadingRequest
		}{
			{"temperature", types.SensorReadingRequest{Temperature: ptr(math.NaN()), Humidity: ptr(50.0)}},
			{"temperature", types.SensorReadingRequest{Temperature: ptr(math.Inf(1)), Humidity: ptr(50.0)}},
			{"humidity", types.SensorReadingRequest{Temperature: ptr(28.5), Humidity: ptr(math.NaN())}},
			{"humidity", types.SensorReadingRequest{Temperature: ptr(28.5), Humidity: ptr(math.Inf(-1))}},
		}
		for _, tc := range cases {
			_, err := svc.RecordReading(ctx, tc.req)
			require.ErrorIs(t, err, service.ErrInvalidArgument)
			require.NotErrorIs(t, err, service.ErrStorageFailure)

			var argErr *service.ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tc.field, argErr.Field)
		}

		resp, err := svc.RecentReadings(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
	})
}

func TestRecordReading_NoRangeChecks(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		svc := service.NewSensorService(b.sensors)
		ctx := context.Background()

		_, err := svc.RecordReading(ctx, types.SensorReadingRequest{
			Temperature: ptr(-273.0), Humidity: ptr(250.0), Light: ptr(int64(-1)), Motion: ptr(true),
		})
		require.NoError(t, err)

		resp, err := svc.RecentReadings(ctx, 1)
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, int64(-1), resp.Data[0].Light)
		assert.Equal(t, 1, resp.Data[0].Motion)
	})
}

func TestRecentReadings_ReturnsNewestInChronologicalOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		clock := newFakeClock(t0)
		svc := service.NewSensorService(b.sensors, service.WithClock(clock.Now))
		ctx := context.Background()

		for i := 0; i < 25; i++ {
			clock.Advance(time.Second)
			_, err := svc.RecordReading(ctx, types.SensorReadingRequest{Temperature: ptr(float64(i)), Humidity: ptr(50.0)})
			require.NoError(t, err)
		}

		resp, err := svc.RecentReadings(ctx, 20)
		require.NoError(t, err)
		require.Len(t, resp.Data, 20)
		for i, r := range resp.Data {
			assert.Equal(t, float64(i+5), r.Temperature)
			if i > 0 {
				assert.Less(t, resp.Data[i-1].CreatedAt, r.CreatedAt)
			}
		}
	})
}

func TestRecentReadings_LimitBounds(t *testing.T) {
	svc := service.NewSensorService(nil)

	for _, limit := range []int{-1, service.MaxHistoryLimit + 1} {
		_, err := svc.RecentReadings(context.Background(), limit)
		assert.ErrorIs(t, err, service.ErrInvalidArgument, limit)
	}
}
