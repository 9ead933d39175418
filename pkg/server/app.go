package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NavPulse/internal/handler/api"
	"NavPulse/internal/usecase"
	"NavPulse/pkg/cache"
	pkgch "NavPulse/pkg/clickhouse"
	"NavPulse/pkg/config"
	xhttp "NavPulse/pkg/http"
	pkgkafka "NavPulse/pkg/kafka"
	applogger "NavPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: HTTP server, batch
// scheduling, and shutdown of the infrastructure clients.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	monitor *usecase.Monitor
	handler *api.MonitorHandler
	hub     *api.ProgressHub

	httpServer *xhttp.Server
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	reports    cache.Service
}

// New creates a new App instance with all dependencies. chClient, producer,
// and reports may be nil when the corresponding backend is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	handler *api.MonitorHandler,
	hub *api.ProgressHub,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	reports cache.Service,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		monitor:  monitor,
		handler:  handler,
		hub:      hub,
		chClient: chClient,
		producer: producer,
		reports:  reports,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsLogging(a.log, 500*time.Millisecond),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Warm-up batch so the API has a report to serve immediately.
	go a.runBatch(ctx)

	if a.cfg.Monitor.Interval > 0 {
		go a.loop(ctx)
		a.log.Info("periodic evaluation enabled", applogger.Duration("interval", a.cfg.Monitor.Interval))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) loop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Monitor.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runBatch(ctx)
		}
	}
}

func (a *App) runBatch(ctx context.Context) {
	report, err := a.monitor.Run(ctx)
	if err != nil {
		if err != usecase.ErrRunInProgress {
			a.log.Error("batch run failed", applogger.Error(err))
		}
		return
	}
	a.log.Info("batch complete",
		applogger.Int("results", len(report.Results)),
		applogger.String("trend", report.Trend.String()))
}

// shutdown gracefully stops the HTTP server and closes infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		a.hub.Close()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.reports != nil {
		if err := a.reports.Close(); err != nil {
			a.log.Warn("report cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
