// Command helpdesk-server starts the helpdesk HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/helpdesk/internal/config"
	"github.com/and161185/helpdesk/internal/migrate"
	"github.com/and161185/helpdesk/internal/notify"
	"github.com/and161185/helpdesk/internal/repository/postgres"
	httpserver "github.com/and161185/helpdesk/internal/server/http"
	"github.com/and161185/helpdesk/internal/service"
	"github.com/and161185/helpdesk/internal/sweeper"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves HTTP until SIGINT/SIGTERM.
func main() {
	envFile := flag.String("env-file", config.DefaultEnvFile, "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	smtp := cfg.SMTP()
	if !smtp.Enabled() {
		logger.Warn("SMTP not configured, notifications will be skipped")
	}
	dispatch := notify.NewDispatcher(logger.Named("notify"), cfg.NotifyTimeout)

	// Services
	sessions := service.NewSessionValidator(db)
	authSvc := service.NewAuthService(db, sessions)
	msgSvc := service.NewMessageService(db, notify.NewSMTP(smtp), dispatch)

	if cfg.SweepEnabled() {
		sw := sweeper.New(db, cfg.SessionSweepSchedule, logger.Named("sweeper"))
		if err := sw.Start(); err != nil {
			logger.Fatal("session sweeper", zap.Error(err))
		}
		defer sw.Stop()
	}

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	app := httpserver.New(authSvc, msgSvc, sessions, httpserver.Options{
		Log:             logger.Named("http"),
		AllowAllOrigins: cfg.AllowAllOrigins(),
		AllowOrigins:    cfg.CORSAllowedOrigins,
		Health:          db,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown", zap.Error(err))
		_ = srv.Close()
	}
	if err := dispatch.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Dev {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	return zc.Build()
}
