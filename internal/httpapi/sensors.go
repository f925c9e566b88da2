package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/presensi/service"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

func (s *Server) handleSensorData(w http.ResponseWriter, r *http.Request) {
	if isProtobuf(r) {
		s.handleSensorDataProto(w, r)
		return
	}

	var req types.SensorReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		var fieldErr *types.FieldError
		if errors.As(err, &fieldErr) {
			s.writeRequestError(w, r, badField(fieldErr.Field, fieldErr.Field+" must be a number"))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	ack, err := s.sensors.RecordReading(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack)
}

// handleSensorDataProto answers protobuf clients with a SensorAck only; the
// status code carries the failure class.
func (s *Server) handleSensorDataProto(w http.ResponseWriter, r *http.Request) {
	req, err := readSensorProto(r)
	if err != nil {
		writeProto(w, http.StatusBadRequest, encodeSensorAck(false))
		return
	}

	if _, err := s.sensors.RecordReading(r.Context(), req); err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			writeProto(w, http.StatusBadRequest, encodeSensorAck(false))
			return
		}
		s.logger.Printf("sensor data error: %v request_id=%s", err, requestID(r.Context()))
		writeProto(w, http.StatusInternalServerError, encodeSensorAck(false))
		return
	}
	writeProto(w, http.StatusCreated, encodeSensorAck(true))
}

func (s *Server) handleSensorHistory(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeRequestError(w, r, badField("limit", "limit must be an integer"))
			return
		}
		if err := s.validator.Struct(types.SensorHistoryQuery{Limit: n}); err != nil {
			s.writeRequestError(w, r, err)
			return
		}
		limit = n
	}

	resp, err := s.sensors.RecentReadings(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
