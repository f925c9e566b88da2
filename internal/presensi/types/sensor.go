package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SensorReadingRequest is what a sensor node posts. Temperature and Humidity
// are mandatory; a nil Light or Motion means the firmware did not send it.
type SensorReadingRequest struct {
	Temperature *float64
	Humidity    *float64
	Light       *int64
	Motion      *bool
}

// UnmarshalJSON accepts numbers or numeric strings, and the field names used
// by older firmware (suhu, kelembaban, cahaya).
func (r *SensorReadingRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Temperature json.RawMessage `json:"temperature"`
		Humidity    json.RawMessage `json:"humidity"`
		Light       json.RawMessage `json:"light"`
		Motion      json.RawMessage `json:"motion"`

		Suhu       json.RawMessage `json:"suhu"`
		Kelembaban json.RawMessage `json:"kelembaban"`
		Cahaya     json.RawMessage `json:"cahaya"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var err error
	if r.Temperature, err = coerceFloat("temperature", firstPresent(raw.Temperature, raw.Suhu)); err != nil {
		return err
	}
	if r.Humidity, err = coerceFloat("humidity", firstPresent(raw.Humidity, raw.Kelembaban)); err != nil {
		return err
	}
	r.Light = coerceInt(firstPresent(raw.Light, raw.Cahaya))
	r.Motion = coerceFlag(raw.Motion)
	return nil
}

// FieldError reports a sensor field that was present but not numeric.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q is not a number", e.Field, e.Value)
}

func firstPresent(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if isPresent(v) {
			return v
		}
	}
	return nil
}

func isPresent(v json.RawMessage) bool {
	s := strings.TrimSpace(string(v))
	return s != "" && s != "null"
}

// scalar returns the JSON value as text, unquoting strings.
func scalar(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			return strings.TrimSpace(str)
		}
	}
	return s
}

func coerceFloat(field string, v json.RawMessage) (*float64, error) {
	if !isPresent(v) {
		return nil, nil
	}
	s := scalar(v)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &FieldError{Field: field, Value: s}
	}
	return &f, nil
}

const minInt64 = float64(math.MinInt64)

// coerceInt truncates numeric input. Anything unparsable or outside the
// int64 range counts as absent.
func coerceInt(v json.RawMessage) *int64 {
	if !isPresent(v) {
		return nil
	}
	f, err := strconv.ParseFloat(scalar(v), 64)
	if err != nil || math.IsNaN(f) || f < minInt64 || f >= -minInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

// coerceFlag treats true, non-zero numbers and "true"/"1"-style strings as set.
func coerceFlag(v json.RawMessage) *bool {
	if !isPresent(v) {
		return nil
	}
	s := scalar(v)
	var set bool
	if b, err := strconv.ParseBool(s); err == nil {
		set = b
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		set = f != 0
	}
	return &set
}

type SensorReading struct {
	ID          int64   `json:"id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Light       int64   `json:"light"`
	Motion      int     `json:"motion"`
	CreatedAt   string  `json:"createdAt"`
}

type SensorAck struct {
	Status string `json:"status"`
}

type SensorHistoryQuery struct {
	Limit int `json:"limit" validate:"min=1,max=500"`
}

type SensorHistoryResponse struct {
	Status string          `json:"status"`
	Data   []SensorReading `json:"data"`
}
