package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/presensi-app/presensi/internal/auth"
	"github.com/presensi-app/presensi/internal/photos"
	"github.com/presensi-app/presensi/internal/presensi/service"
	"github.com/presensi-app/presensi/internal/validate"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Logger *log.Logger
	Addr   string

	AttendanceService *service.AttendanceService
	ReportService     *service.ReportService
	SensorService     *service.SensorService

	Verifier  *auth.Verifier
	Photos    *photos.Store
	Validator *validate.Validator
	DB        Pinger

	// Location reads zoneless timestamps in edit requests.
	Location       *time.Location
	AdminRoles     []string
	MaxUploadBytes int64
	RequestLogs    bool
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux

	attendance *service.AttendanceService
	reports    *service.ReportService
	sensors    *service.SensorService

	verifier   *auth.Verifier
	photos     *photos.Store
	validator  *validate.Validator
	db         Pinger
	loc        *time.Location
	adminRoles []string
	maxUpload  int64
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	v := d.Validator
	if v == nil {
		v = validate.New()
	}

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		attendance: d.AttendanceService,
		reports:    d.ReportService,
		sensors:    d.SensorService,
		verifier:   d.Verifier,
		photos:     d.Photos,
		validator:  v,
		db:         d.DB,
		loc:        loc,
		adminRoles: d.AdminRoles,
		maxUpload:  d.MaxUploadBytes,
	}

	mux.HandleFunc("POST /api/presensi/check-in", s.authenticated(s.handleCheckIn))
	mux.HandleFunc("POST /api/presensi/check-out", s.authenticated(s.handleCheckOut))
	mux.HandleFunc("PUT /api/presensi/{id}", s.adminOnly(s.handleEditSession))
	mux.HandleFunc("DELETE /api/presensi/{id}", s.authenticated(s.handleDeleteSession))

	mux.HandleFunc("GET /api/reports/daily", s.adminOnly(s.handleDailyReport))
	mux.HandleFunc("GET /api/reports/daily/export", s.adminOnly(s.handleExportDailyReport))

	mux.HandleFunc("POST /api/iot/data", s.handleSensorData)
	mux.HandleFunc("GET /api/iot/history", s.handleSensorHistory)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	handler := loggingMiddleware(d.Logger, d.RequestLogs, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Printf("healthz: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
