package httpapi

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/validate"
)

// requestError is a malformed request caught before any service call.
type requestError struct {
	status int
	code   string
	msg    string
	fields map[string]string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(code, msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, code: code, msg: msg}
}

func badField(field, msg string) *requestError {
	return &requestError{
		status: http.StatusBadRequest,
		code:   "invalid_argument",
		msg:    msg,
		fields: map[string]string{field: msg},
	}
}

// writeRequestError handles errors from the request readers below.
func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	var valErr *validate.Error
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, reqErr.status, errorBody{Error: reqErr.code, Message: reqErr.msg, Fields: reqErr.fields})
	case errors.As(err, &valErr):
		writeValidationError(w, valErr)
	default:
		s.writeServiceError(w, r, err)
	}
}

// decodeJSON reads a single JSON value from a size-capped body. An empty body
// leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badField("id", "id must be a positive integer")
	}
	return id, nil
}

// parseCoordinate reads an optional latitude or longitude form value.
func parseCoordinate(field, v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, badField(field, field+" must be a number")
	}
	return &f, nil
}

func parseOptionalTimestamp(field string, v *string, loc *time.Location) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := validate.ParseTimestamp(*v, loc)
	if err != nil {
		return nil, badField(field, field+" must be an ISO-8601 timestamp")
	}
	return &t, nil
}
