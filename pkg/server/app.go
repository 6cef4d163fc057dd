package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RentPredict/internal/domain/repository"
	"RentPredict/internal/usecase"
	"RentPredict/pkg/config"
	xhttp "RentPredict/pkg/http"
	applogger "RentPredict/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	predictor  *usecase.RentPredictor
	audit      repository.AuditSink
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	predictor *usecase.RentPredictor,
	audit repository.AuditSink,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		predictor:  predictor,
		audit:      audit,
	}
}

// Run starts the HTTP server and blocks until ctx is done, an interrupt
// arrives or the listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("rent prediction service started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("space", a.cfg.Model.Space),
		applogger.String("audit", a.cfg.Audit.Backend),
		applogger.Bool("rate_limit", a.cfg.RateLimit.Enabled),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	// Pending audit writes finish before their sink closes.
	if a.predictor != nil {
		a.predictor.Close()
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("audit sink close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
