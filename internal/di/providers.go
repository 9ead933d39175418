package di

import (
	"context"
	"fmt"
	"time"

	"NavPulse/internal/allocator"
	"NavPulse/internal/domain/models"
	"NavPulse/internal/domain/repository"
	"NavPulse/internal/handler/api"
	"NavPulse/internal/indicator"
	"NavPulse/internal/navstore"
	internalrepo "NavPulse/internal/repository"
	"NavPulse/internal/service/navapi"
	"NavPulse/internal/usecase"
	"NavPulse/pkg/cache"
	pkgch "NavPulse/pkg/clickhouse"
	"NavPulse/pkg/config"
	xhttp "NavPulse/pkg/http"
	pkgkafka "NavPulse/pkg/kafka"
	applogger "NavPulse/pkg/logger"
	"NavPulse/pkg/metrics"
	"NavPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSeriesStore creates the CSV-backed NAV series store.
func ProvideSeriesStore(cfg *config.Config, log *applogger.Logger) (repository.SeriesStore, error) {
	store, err := navstore.New(cfg.Monitor.CacheDir, log)
	if err != nil {
		return nil, fmt.Errorf("nav store: %w", err)
	}
	return store, nil
}

// ProvideNavSource creates the paginated NAV API client.
func ProvideNavSource(cfg *config.Config, log *applogger.Logger, m repository.Metrics) repository.NavSource {
	return navapi.New(cfg.Fetch.BaseURL,
		navapi.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Fetch.Timeout))),
		navapi.WithPageSize(cfg.Fetch.PageSize),
		navapi.WithRetry(models.RetryPolicy{
			MaxAttempts: cfg.Fetch.Retry.MaxAttempts,
			BaseDelay:   cfg.Fetch.Retry.BaseDelay,
			MaxDelay:    cfg.Fetch.Retry.MaxDelay,
			Jitter:      cfg.Fetch.Retry.Jitter,
		}),
		navapi.WithPageDelay(cfg.Fetch.PageDelayMin, cfg.Fetch.PageDelayMax),
		navapi.WithRateLimit(cfg.Fetch.RateCapacity, cfg.Fetch.RatePerSec),
		navapi.WithLogger(log),
		navapi.WithMetrics(m),
	)
}

// ProvideProgressHub creates the WebSocket progress broadcaster.
func ProvideProgressHub(log *applogger.Logger) *api.ProgressHub {
	return api.NewProgressHub(log)
}

// ProvideScheduler creates the bounded-concurrency evaluation scheduler.
func ProvideScheduler(
	store repository.SeriesStore,
	source repository.NavSource,
	m repository.Metrics,
	hub *api.ProgressHub,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Scheduler {
	return usecase.NewScheduler(store, source, indicator.New(),
		usecase.WithPoolSize(cfg.Monitor.PoolSize),
		usecase.WithGrowthWindow(cfg.Monitor.GrowthWindow),
		usecase.WithSchedulerLogger(log),
		usecase.WithSchedulerMetrics(m),
		usecase.WithProgress(hub.Broadcast),
	)
}

// ProvideAllocator creates the budget allocator.
func ProvideAllocator(cfg *config.Config) *allocator.Allocator {
	return allocator.New(cfg.Allocator.Budget, cfg.Allocator.TopN)
}

// ProvideKafkaProducer creates a Kafka producer, nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher creates the Kafka result publisher, nil when Kafka
// is disabled.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the history
// schema, nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.Schema(historyTable(cfg))...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideHistoryStore creates the ClickHouse history store, nil when
// ClickHouse is disabled.
func ProvideHistoryStore(chClient *pkgch.Client, cfg *config.Config) repository.HistoryStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseHistory(chClient.DB(), historyTable(cfg))
}

// ProvideReportCache creates the latest-report cache: Redis when enabled,
// in-process memory otherwise.
func ProvideReportCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		svc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return svc, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideMonitor creates the batch monitor.
func ProvideMonitor(
	sched *usecase.Scheduler,
	alloc *allocator.Allocator,
	publisher repository.ResultPublisher,
	history repository.HistoryStore,
	reports cache.Service,
	log *applogger.Logger,
	cfg *config.Config,
) (*usecase.Monitor, error) {
	holidays, err := usecase.LoadHolidays(cfg.Monitor.HolidaysFile)
	if err != nil {
		return nil, err
	}

	opts := []usecase.MonitorOption{
		usecase.WithBenchmark(cfg.Monitor.Benchmark),
		usecase.WithHoldings(cfg.Monitor.Holdings),
		usecase.WithHolidays(holidays),
		usecase.WithMonitorLogger(log),
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if history != nil {
		opts = append(opts, usecase.WithHistory(history))
	}
	if reports != nil {
		opts = append(opts, usecase.WithReportCache(reports, cfg.Cache.ResultTTL))
	}
	return usecase.NewMonitor(sched, alloc, cfg.Monitor.Funds, opts...), nil
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *applogger.Logger,
	monitor *usecase.Monitor,
	history repository.HistoryStore,
	hub *api.ProgressHub,
) *api.MonitorHandler {
	return api.NewMonitorHandler(log, monitor, history, hub)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	handler *api.MonitorHandler,
	hub *api.ProgressHub,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	reports cache.Service,
) *server.App {
	return server.New(cfg, log, monitor, handler, hub, chClient, producer, reports)
}

func historyTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + ".nav_signal_history"
}
