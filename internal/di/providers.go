package di

import (
	"context"
	"fmt"
	"time"

	"VolScan/internal/domain/repository"
	"VolScan/internal/domain/service"
	"VolScan/internal/handler/api"
	internalrepo "VolScan/internal/repository"
	icache "VolScan/internal/service/cache"
	"VolScan/internal/service/telegram"
	"VolScan/internal/service/universe"
	"VolScan/internal/service/yahoo"
	"VolScan/internal/usecase"
	pkgcache "VolScan/pkg/cache"
	pkgch "VolScan/pkg/clickhouse"
	"VolScan/pkg/config"
	xhttp "VolScan/pkg/http"
	pkgkafka "VolScan/pkg/kafka"
	applogger "VolScan/pkg/logger"
	"VolScan/pkg/metrics"
	"VolScan/pkg/server"
)

// Sinks groups the optional export targets enabled in config.
type Sinks struct {
	Stores     []repository.ScanStore
	Publishers []repository.AlertPublisher
}

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketData creates the Yahoo chart client.
func ProvideMarketData(cfg *config.Config) repository.MarketDataSource {
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.MarketData.Timeout),
		xhttp.WithUserAgent(cfg.MarketData.UserAgent),
	)
	return yahoo.New(cfg.MarketData.BaseURL, hc)
}

// ProvideUniverse builds the ordered provider chain: file, NASDAQ screener, static list.
func ProvideUniverse(cfg *config.Config, l *applogger.Logger) repository.UniverseProvider {
	var providers []repository.UniverseProvider
	if cfg.Universe.File != "" {
		providers = append(providers, universe.NewFileProvider(cfg.Universe.File))
	}
	if cfg.Universe.RemoteEnabled {
		hc := xhttp.NewClient(xhttp.WithTimeout(cfg.Universe.Timeout))
		providers = append(providers, universe.NewNasdaqProvider(cfg.Universe.RemoteURL, hc))
	}
	if cfg.Universe.StaticEnabled {
		providers = append(providers, universe.StaticProvider{})
	}
	return universe.NewChain(l, providers...)
}

// ProvideNotifier returns the Telegram notifier, or a log notifier when the
// bot is not configured or cannot authenticate.
func ProvideNotifier(cfg *config.Config, l *applogger.Logger) repository.Notifier {
	if !cfg.TelegramConfigured() {
		l.Warn("telegram credentials missing, alerts go to the log only")
		return telegram.NewLogNotifier(l)
	}
	n, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		APIEndpoint: cfg.Telegram.APIEndpoint,
		Rate:        cfg.Telegram.Rate,
		Burst:       cfg.Telegram.Burst,
	}, l)
	if err != nil {
		l.Error("telegram unavailable, alerts go to the log only", applogger.Error(err))
		return telegram.NewLogNotifier(l)
	}
	return n
}

// ProvideSinks connects every enabled sink. The cleanup closes their clients.
func ProvideSinks(cfg *config.Config, l *applogger.Logger) (*Sinks, func(), error) {
	sinks := &Sinks{}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				l.Warn("sink close error", applogger.Error(err))
			}
		}
	}
	fail := func(err error) (*Sinks, func(), error) {
		cleanup()
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.ClickHouse.Enabled {
		client, err := pkgch.NewClient(
			pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		)
		if err != nil {
			return fail(fmt.Errorf("clickhouse client: %w", err))
		}
		closers = append(closers, client.Close)
		table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
		ddl := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}, internalrepo.ClickHouseSchema(table)...)
		if err := client.InitSchema(ctx, ddl); err != nil {
			return fail(fmt.Errorf("clickhouse schema: %w", err))
		}
		sinks.Stores = append(sinks.Stores, internalrepo.NewClickHouseScanStore(client, table))
		l.Info("clickhouse sink ready", applogger.String("table", table))
	}

	if cfg.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(ctx, pkgcache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return fail(fmt.Errorf("redis: %w", err))
		}
		closers = append(closers, rc.Close)
		sinks.Stores = append(sinks.Stores, internalrepo.NewRedisScanStore(rc, cfg.Redis.TTL))
		l.Info("redis sink ready", applogger.String("prefix", cfg.Redis.Prefix))
	}

	if cfg.CSVExport.Enabled {
		sinks.Stores = append(sinks.Stores, internalrepo.NewCSVScanStore(cfg.CSVExport.Dir))
		l.Info("csv sink ready", applogger.String("dir", cfg.CSVExport.Dir))
	}

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
			pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
			pkgkafka.WithHashByKey(true),
			pkgkafka.WithAutoCreateTopic(cfg.Kafka.AutoCreateTopic),
		)
		if err != nil {
			return fail(fmt.Errorf("kafka producer: %w", err))
		}
		closers = append(closers, producer.Close)
		sinks.Publishers = append(sinks.Publishers, internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic))
		l.Info("kafka sink ready", applogger.String("topic", cfg.Kafka.Topic), applogger.Strings("brokers", cfg.Kafka.Brokers))
	}

	if cfg.Postgres.Enabled {
		alertLog, err := internalrepo.OpenPostgresAlertLog(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, alertLog.Close)
		if err := alertLog.InitSchema(ctx); err != nil {
			return fail(err)
		}
		sinks.Publishers = append(sinks.Publishers, alertLog)
		l.Info("postgres alert log ready", applogger.String("table", cfg.Postgres.Table))
	}

	return sinks, cleanup, nil
}

// ProvideBarCache creates the in-process bar cache; a zero TTL disables it.
func ProvideBarCache(cfg *config.Config) *icache.BarCache {
	return icache.NewBarCache(cfg.Fetcher.CacheTTL)
}

// ProvideFetcher creates the batch fetcher.
func ProvideFetcher(
	cfg *config.Config,
	src repository.MarketDataSource,
	cache *icache.BarCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.BatchFetcher {
	return usecase.NewBatchFetcher(src, cache, m, l,
		usecase.WithBatchSize(cfg.Fetcher.BatchSize),
		usecase.WithRetry(cfg.Fetcher.MaxAttempts, cfg.Fetcher.BaseDelay, cfg.Fetcher.MaxDelay),
		usecase.WithBatchDelay(cfg.Fetcher.BatchDelay),
		usecase.WithRequestRate(cfg.Fetcher.RequestsPerSecond),
		usecase.WithBarSpec(cfg.Scanner.BarInterval, cfg.Scanner.Lookback),
	)
}

// ProvideScorer creates the volatility engine.
func ProvideScorer(cfg *config.Config) service.Scorer {
	return usecase.NewVolatilityEngine(cfg.WindowBars(), cfg.Scanner.MinBars)
}

// ProvideLedger creates the cooldown ledger.
func ProvideLedger(cfg *config.Config) *usecase.CooldownLedger {
	return usecase.NewCooldownLedger(cfg.Scanner.Cooldown)
}

// ProvideAlertEngine creates the threshold and cooldown gate.
func ProvideAlertEngine(cfg *config.Config, ledger *usecase.CooldownLedger) *usecase.AlertEngine {
	return usecase.NewAlertEngine(cfg.Scanner.ZThreshold, ledger)
}

// ProvideScanBoard creates the in-memory snapshot served by the API.
func ProvideScanBoard(cfg *config.Config) *usecase.ScanBoard {
	return usecase.NewScanBoard(cfg.Scanner.AlertHistory)
}

// ProvideDispatcher creates the alert dispatcher.
func ProvideDispatcher(
	cfg *config.Config,
	notifier repository.Notifier,
	sinks *Sinks,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AlertDispatcher {
	return usecase.NewAlertDispatcher(notifier, "telegram", cfg.Telegram.ChatID, cfg.Scanner.ZThreshold, sinks.Publishers, m, l)
}

// ProvideScheduler creates the scan scheduler.
func ProvideScheduler(
	cfg *config.Config,
	universeSrc repository.UniverseProvider,
	fetcher *usecase.BatchFetcher,
	scorer service.Scorer,
	engine *usecase.AlertEngine,
	dispatcher *usecase.AlertDispatcher,
	board *usecase.ScanBoard,
	sinks *Sinks,
	cache *icache.BarCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ScanScheduler {
	return usecase.NewScanScheduler(universeSrc, fetcher, scorer, engine, dispatcher, board, m, l,
		usecase.WithInterval(cfg.Scanner.Interval),
		usecase.WithUniverseRefresh(cfg.Scanner.UniverseRefresh),
		usecase.WithScanStores(sinks.Stores...),
		usecase.WithCache(cache),
	)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	l *applogger.Logger,
	scheduler *usecase.ScanScheduler,
	board *usecase.ScanBoard,
	ledger *usecase.CooldownLedger,
) xhttp.Handler {
	return api.NewScanEchoHandler(l, scheduler, board, ledger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	scheduler *usecase.ScanScheduler,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, scheduler, handler)
}
