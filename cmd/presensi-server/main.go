package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/presensi-app/presensi/internal/auth"
	"github.com/presensi-app/presensi/internal/config"
	"github.com/presensi-app/presensi/internal/db"
	"github.com/presensi-app/presensi/internal/healthrpc"
	"github.com/presensi-app/presensi/internal/httpapi"
	"github.com/presensi-app/presensi/internal/photos"
	"github.com/presensi-app/presensi/internal/presensi/service"
	sqlitestore "github.com/presensi-app/presensi/internal/presensi/store/sqlite"
	"github.com/presensi-app/presensi/internal/validate"
)

func main() {
	logger := log.New(os.Stdout, "presensi-server ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{}); err != nil {
			logger.Fatalf("seed: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	sessionStore := sqlitestore.NewSessionStore(conn, writer)
	reportStore := sqlitestore.NewReportStore(conn)
	sensorStore := sqlitestore.NewSensorStore(conn, writer)

	photoStore, err := photos.NewStore(cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		logger.Fatalf("photos: %v", err)
	}

	verifierOpts := []auth.Option{}
	if cfg.JWTIssuer != "" {
		verifierOpts = append(verifierOpts, auth.WithIssuer(cfg.JWTIssuer))
	}

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		AttendanceService: service.NewAttendanceService(sessionStore, cfg.Location),
		ReportService:     service.NewReportService(reportStore, cfg.Location),
		SensorService:     service.NewSensorService(sensorStore),
		Verifier:          auth.NewVerifier(cfg.JWTSecret, verifierOpts...),
		Photos:            photoStore,
		Validator:         validate.New(),
		DB:                conn,
		Location:          cfg.Location,
		AdminRoles:        cfg.AdminRoles,
		MaxUploadBytes:    cfg.MaxUploadBytes(),
		RequestLogs:       cfg.RequestLogs,
	})

	go func() {
		logger.Printf("listening on %s (env=%s db=%s tz=%s)", cfg.HTTPAddr, cfg.Env, cfg.DBPath, cfg.Location)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	// gRPC health
	var health *healthrpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatalf("grpc listen: %v", err)
		}
		health = healthrpc.NewServer(conn, logger)
		go health.Watch(ctx, 15*time.Second)
		go func() {
			logger.Printf("grpc health on %s", cfg.GRPCAddr)
			if err := health.Serve(lis); err != nil {
				logger.Printf("grpc error: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if health != nil {
		health.Shutdown()
	}
}
