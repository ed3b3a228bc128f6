package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/Wakana-github/score-sheet-sub000/internal/auth"
	"github.com/Wakana-github/score-sheet-sub000/internal/config"
	"github.com/Wakana-github/score-sheet-sub000/internal/httpapi"
	"github.com/Wakana-github/score-sheet-sub000/internal/metrics"
	"github.com/Wakana-github/score-sheet-sub000/internal/service"
	"github.com/Wakana-github/score-sheet-sub000/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	var (
		authSvc   *service.AuthService
		recordSvc *service.RecordService
		groupSvc  *service.GroupService
		statsSvc  *service.StatsService
		dbPing    func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), postgres.Options{DSN: cfg.DBDSN, Migrate: cfg.DBMigrate})
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		sessions := postgres.NewSessionsStore(pgPool)
		records := postgres.NewRecordsStore(pgPool)
		groups := postgres.NewGroupsStore(pgPool)
		entitlements := postgres.NewEntitlementsStore(pgPool)

		authSvc = &service.AuthService{
			Users:          users,
			Sessions:       sessions,
			SessionTTL:     cfg.SessionTTL,
			GoogleClientID: cfg.GoogleClientID,
			AppleServiceID: cfg.AppleServiceID,
		}
		recordSvc = &service.RecordService{
			Records:    records,
			Groups:     groups,
			MaxRecords: cfg.MaxRecordsPerUser,
		}
		groupSvc = &service.GroupService{Groups: groups}
		statsSvc = &service.StatsService{
			Records: records,
			Groups:  groups,
			Access:  entitlements,
			Logger:  logger,
		}
		// A nil *Metrics must not become a non-nil interface.
		if m != nil {
			statsSvc.Metrics = m
		}
		dbPing = pgPool.Ping
	} else {
		logger.Warn("APP_DB_DSN not set; /v1 endpoints disabled")
	}

	handler := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		DBPing:       dbPing,
		Auth:         authSvc,
		Records:      recordSvc,
		Groups:       groupSvc,
		Stats:        statsSvc,
		Metrics:      m,
		CookieCodec:  auth.NewCookieCodec([]byte(cfg.CookieSecret)),
		CookieSecure: cfg.CookieSecure(),
		SessionTTL:   cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr, "metrics", m != nil)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
