package di

import (
	"context"
	"fmt"
	"time"

	"PairWatch/internal/domain/repository"
	"PairWatch/internal/handler/api"
	"PairWatch/internal/monitor"
	internalrepo "PairWatch/internal/repository"
	"PairWatch/internal/service/binance"
	icache "PairWatch/internal/service/cache"
	"PairWatch/internal/usecase"
	pkgch "PairWatch/pkg/clickhouse"
	"PairWatch/pkg/config"
	xhttp "PairWatch/pkg/http"
	pkgkafka "PairWatch/pkg/kafka"
	applogger "PairWatch/pkg/logger"
	"PairWatch/pkg/metrics"
	"PairWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  "debug",
		Format: "console",
		Output: "stdout",
	}
	if cfg.Environment == "production" {
		lc.Level = "info"
		lc.Format = "json"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the clickhouse
// alert backend is configured. Other backends get nil so startup does not
// depend on unused infrastructure.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Alerts.Backend != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".residual_alerts (" +
			"ts DateTime64(3), pair String, target_symbol String, reference_symbol String, " +
			"residual_pct Float64, target_dev_pct Float64, reference_dev_pct Float64, " +
			"correlation Float64, threshold_pct Float64, message String" +
			") ENGINE=MergeTree ORDER BY (pair, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the Kafka alert publisher.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertStorage creates the ClickHouse alert storage.
func ProvideAlertStorage(chClient *pkgch.Client, cfg *config.Config) repository.AlertStorage {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseAlertStorage(chClient.DB(), cfg.ClickHouse.Database+".residual_alerts")
}

// ProvideCache creates the cooldown cache: Redis when enabled, otherwise an
// in-process TTL cache.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideAlertDispatcher creates the alert dispatcher.
func ProvideAlertDispatcher(
	pub repository.AlertPublisher,
	store repository.AlertStorage,
	cache icache.BytesCache,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.AlertDispatcher {
	return usecase.NewAlertDispatcher(pub, store, cache, m, log,
		cfg.Alerts.Backend, cfg.Alerts.Cooldown, cfg.Alerts.Recent)
}

// ProvidePipeline creates the monitor pipeline.
func ProvidePipeline(cfg *config.Config, dispatcher *usecase.AlertDispatcher, log *applogger.Logger, m repository.Metrics) *monitor.Pipeline {
	mc := monitor.Config{
		TargetSymbol:    cfg.Monitor.TargetSymbol,
		ReferenceSymbol: cfg.Monitor.ReferenceSymbol,
		MeanWindow:      cfg.Monitor.MeanWindow,
		ThresholdPct:    cfg.Monitor.ThresholdPct,
		PollInterval:    cfg.Monitor.PollInterval,
	}
	if mc.MeanWindow <= 0 {
		mc.MeanWindow = 60
	}
	if mc.PollInterval <= 0 {
		mc.PollInterval = 100 * time.Millisecond
	}
	return monitor.NewPipeline(mc, dispatcher, log, m)
}

// ProvideRouter creates the stream event router.
func ProvideRouter(pipe *monitor.Pipeline, m repository.Metrics, log *applogger.Logger) *usecase.Router {
	return usecase.NewRouter(pipe, m, log)
}

// ProvideCollectors creates one collector per market: the reference symbol
// on the spot stream, the target symbol on the futures stream.
func ProvideCollectors(cfg *config.Config, router *usecase.Router, m repository.Metrics, log *applogger.Logger) map[string]*usecase.MarketCollector {
	interval := cfg.Binance.Interval

	spot := binance.NewStream(
		cfg.Binance.SpotStreamHost,
		binance.StreamNames(cfg.Monitor.ReferenceSymbol, interval),
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
	futures := binance.NewStream(
		cfg.Binance.FuturesStreamHost,
		binance.StreamNames(cfg.Monitor.TargetSymbol, interval),
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)

	return map[string]*usecase.MarketCollector{
		binance.MarketSpot:    usecase.NewMarketCollector(binance.MarketSpot, spot, router, m, log),
		binance.MarketFutures: usecase.NewMarketCollector(binance.MarketFutures, futures, router, m, log),
	}
}

// ProvideHistorySource creates the REST klines history source.
func ProvideHistorySource(cfg *config.Config) repository.HistorySource {
	limit := cfg.Binance.HistoryLimit
	if limit <= 0 {
		limit = 1000
	}
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Binance.RequestTimeout))
	return binance.NewKlinesSource(client,
		cfg.Binance.SpotRestURL, cfg.Binance.FuturesRestURL,
		cfg.Binance.Interval, limit)
}

// ProvideHTTPHandler creates the monitor API handler.
func ProvideHTTPHandler(
	log *applogger.Logger,
	pipe *monitor.Pipeline,
	dispatcher *usecase.AlertDispatcher,
	collectors map[string]*usecase.MarketCollector,
	storage repository.AlertStorage,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewMonitorEchoHandler(log, pipe.Store, dispatcher, collectors, cfg.Alerts.Backend, storage)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	pipe *monitor.Pipeline,
	collectors map[string]*usecase.MarketCollector,
	dispatcher *usecase.AlertDispatcher,
	history repository.HistorySource,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, log, pipe, collectors, dispatcher, history, chClient, producer)
	app.SetHTTPHandler(handler)
	if producer != nil {
		app.SetErrorLogPublisher(internalrepo.NewErrorLogPublisher(producer))
	}
	return app
}
