package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PairWatch/internal/domain/repository"
	"PairWatch/internal/monitor"
	"PairWatch/internal/service/binance"
	"PairWatch/internal/usecase"
	pkgch "PairWatch/pkg/clickhouse"
	"PairWatch/pkg/config"
	xhttp "PairWatch/pkg/http"
	pkgkafka "PairWatch/pkg/kafka"
	applogger "PairWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	pipeline    *monitor.Pipeline
	collectors  map[string]*usecase.MarketCollector
	dispatcher  *usecase.AlertDispatcher
	history     repository.HistorySource
	chClient    *pkgch.Client
	producer    *pkgkafka.Producer
	errLogPub   applogger.Publisher
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *monitor.Pipeline,
	collectors map[string]*usecase.MarketCollector,
	dispatcher *usecase.AlertDispatcher,
	history repository.HistorySource,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		pipeline:   pipeline,
		collectors: collectors,
		dispatcher: dispatcher,
		history:    history,
		chClient:   chClient,
		producer:   producer,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetErrorLogPublisher enables aggregated error-log flushing to Kafka.
func (a *App) SetErrorLogPublisher(p applogger.Publisher) { a.errLogPub = p }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.errLogPub != nil && a.cfg.Kafka.ErrorTopic != "" {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.ErrorTopic,
			Publisher:      a.errLogPub,
		})
	}

	a.bootstrap(ctx)

	a.pipeline.Start(ctx)
	a.log.Info("pipeline started",
		applogger.String("target", a.cfg.Monitor.TargetSymbol),
		applogger.String("reference", a.cfg.Monitor.ReferenceSymbol),
		applogger.Any("threshold_pct", a.cfg.Monitor.ThresholdPct),
	)

	for name, col := range a.collectors {
		if err := col.Start(ctx); err != nil {
			a.log.Error("collector start failed",
				applogger.String("stream", name),
				applogger.Error(err),
			)
			// the collector reconnect loop cannot recover a failed first
			// connect; bail out so the operator notices
			return err
		}
		a.log.Info("collector started", applogger.String("stream", name))
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, time.Second),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// bootstrap seeds both candle histories from the REST klines endpoint before
// live appends begin. A failed fetch is logged and skipped: the history then
// fills from live candles only.
func (a *App) bootstrap(ctx context.Context) {
	seeds := []struct {
		market  string
		history *monitor.MarketHistory
	}{
		{binance.MarketFutures, a.pipeline.TargetHistory},
		{binance.MarketSpot, a.pipeline.ReferenceHistory},
	}
	for _, s := range seeds {
		points, err := a.history.Fetch(ctx, s.market, s.history.Symbol())
		if err != nil {
			a.log.Error("history bootstrap failed",
				applogger.String("market", s.market),
				applogger.String("symbol", s.history.Symbol()),
				applogger.Error(err),
			)
			continue
		}
		accepted := s.history.Bootstrap(points)
		a.log.Info("history bootstrapped",
			applogger.String("market", s.market),
			applogger.String("symbol", s.history.Symbol()),
			applogger.Int("fetched", len(points)),
			applogger.Int("accepted", accepted),
		)
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	for name, col := range a.collectors {
		if err := col.Stop(); err != nil {
			a.log.Warn("collector stop error",
				applogger.String("stream", name),
				applogger.Error(err),
			)
		}
	}

	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.dispatcher != nil {
		a.dispatcher.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()
	a.log.Info("shutdown complete")
	return nil
}
