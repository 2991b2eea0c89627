package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"VolScan/internal/usecase"
	"VolScan/pkg/config"
	xhttp "VolScan/pkg/http"
	applogger "VolScan/pkg/logger"
)

// App encapsulates the scanner process lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	scheduler  *usecase.ScanScheduler
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, scheduler *usecase.ScanScheduler, handler xhttp.Handler) *App {
	return &App{cfg: cfg, logger: logger, scheduler: scheduler, handler: handler}
}

// Run serves the API and runs the scheduler until SIGINT/SIGTERM.
// It returns the scheduler error when no universe could be loaded.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with caller-controlled cancellation.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.Server.Enabled {
		sc := a.cfg.Server
		a.httpServer = xhttp.NewServer(a.handler, xhttp.ServerConfig{
			Host:            sc.Host,
			Port:            sc.Port,
			ReadTimeout:     sc.ReadTimeout,
			WriteTimeout:    sc.WriteTimeout,
			ShutdownTimeout: sc.ShutdownTimeout,
			SlowRequest:     sc.SlowRequest,
			CORS:            sc.CORS,
		}, a.logger)
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	a.logger.Info("scanner starting",
		applogger.Duration("interval_ms", a.cfg.Scanner.Interval),
		applogger.Int("window", a.cfg.WindowBars()),
		applogger.Float64("z_threshold", a.cfg.Scanner.ZThreshold),
		applogger.Duration("cooldown_ms", a.cfg.Scanner.Cooldown),
		applogger.Int("batch_size", a.cfg.Fetcher.BatchSize),
		applogger.Bool("telegram", a.cfg.TelegramConfigured()),
	)

	done := make(chan error, 1)
	go func() { done <- a.scheduler.Run(ctx) }()

	var runErr error
	select {
	case runErr = <-done:
		if runErr != nil {
			a.logger.Error("scheduler stopped", applogger.Error(runErr))
		}
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}
	st := a.scheduler.Stats()
	a.logger.Info("shutdown complete",
		applogger.Int64("scans", st.ScanCount),
		applogger.Int64("alerts", st.AlertsSent),
		applogger.Int64("errors", st.Errors),
	)
}
