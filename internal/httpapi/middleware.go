package httpapi

import (
	"context"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/presensi-app/presensi/internal/auth"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxIdentity
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *log.Logger, enabled bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), ctxRequestID, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if enabled {
			logger.Printf("%s %s status=%d from=%s dur=%s request_id=%s",
				r.Method, r.URL.Path, rec.status, r.RemoteAddr, time.Since(start), id)
		}
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// authenticated rejects requests without a valid bearer token and stores the
// caller's identity on the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			return
		}
		id, err := s.verifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxIdentity, id)))
	}
}

// adminOnly wraps authenticated and additionally requires an admin role.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		role := identity(r.Context()).Role
		if !slices.ContainsFunc(s.adminRoles, func(admin string) bool { return strings.EqualFold(admin, role) }) {
			writeError(w, http.StatusForbidden, "forbidden", "administrator role required")
			return
		}
		next(w, r)
	})
}

func identity(ctx context.Context) types.Identity {
	id, _ := ctx.Value(ctxIdentity).(types.Identity)
	return id
}
