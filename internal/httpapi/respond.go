package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/presensi/service"
	"github.com/presensi-app/presensi/internal/validate"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, err *validate.Error) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "invalid_argument",
		Message: "request validation failed",
		Fields:  err.Fields,
	})
}

// writeServiceError maps a service error to its HTTP status. Anything not
// recognised is logged and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var argErr *service.ArgumentError
	switch {
	case errors.As(err, &argErr):
		body := errorBody{Error: "invalid_argument", Message: argErr.Msg}
		if argErr.Field != "" {
			body.Fields = map[string]string{argErr.Field: argErr.Msg}
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, "already_checked_in", "you have already checked in and not checked out yet")
	case errors.Is(err, service.ErrNoOpenSession):
		writeError(w, http.StatusNotFound, "no_open_session", "no active check-in found for you")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "attendance record not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "you do not own this attendance record")
	default:
		s.logger.Printf("%s %s error: %v request_id=%s", r.Method, r.URL.Path, err, requestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
