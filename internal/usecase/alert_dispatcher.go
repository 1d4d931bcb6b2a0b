package usecase

import (
	"context"
	"sync"
	"time"

	"PairWatch/internal/domain/models"
	drepo "PairWatch/internal/domain/repository"
	icache "PairWatch/internal/service/cache"
	"PairWatch/pkg/logger"
)

// AlertDispatcher routes alerts raised by the target watcher to the
// configured backend. Every alert is logged regardless of backend or
// cooldown, so nothing is ever dropped silently. Delivery failures are
// recorded and swallowed; the pipeline never blocks on the sink.
type AlertDispatcher struct {
	pub      drepo.AlertPublisher
	store    drepo.AlertStorage
	cache    icache.BytesCache
	metrics  drepo.Metrics
	log      *logger.Logger
	backend  string
	cooldown time.Duration

	mu     sync.Mutex
	recent []*models.Alert
	max    int
}

func NewAlertDispatcher(
	pub drepo.AlertPublisher,
	store drepo.AlertStorage,
	cache icache.BytesCache,
	metrics drepo.Metrics,
	log *logger.Logger,
	backend string,
	cooldown time.Duration,
	recentSize int,
) *AlertDispatcher {
	if recentSize <= 0 {
		recentSize = 100
	}
	return &AlertDispatcher{
		pub:      pub,
		store:    store,
		cache:    cache,
		metrics:  metrics,
		log:      log,
		backend:  backend,
		cooldown: cooldown,
		max:      recentSize,
	}
}

// Emit handles one alert.
func (d *AlertDispatcher) Emit(ctx context.Context, a *models.Alert) {
	d.log.Warn("residual deviation alert",
		logger.String("pair", a.Pair),
		logger.Any("residual_pct", a.Residual),
		logger.Any("correlation", a.Correlation),
		logger.String("message", a.Message),
	)
	d.remember(a)

	if d.suppressed(a.Pair) {
		d.metrics.RecordError("alert_cooldown")
		d.log.Debug("alert delivery suppressed by cooldown", logger.String("pair", a.Pair))
		return
	}

	start := time.Now()
	var err error
	switch d.backend {
	case "kafka":
		err = d.pub.Publish(ctx, a)
	case "clickhouse":
		err = d.store.Store(ctx, a)
	case "log":
		// already logged above
	}
	if err != nil {
		d.metrics.RecordError("alert_deliver")
		d.log.Error("alert delivery failed",
			logger.String("backend", d.backend),
			logger.String("pair", a.Pair),
			logger.Error(err),
		)
		return
	}

	d.markDelivered(a.Pair)
	d.metrics.RecordAlert(d.backend)
	d.metrics.RecordLatency("alert_deliver", time.Since(start).Seconds())
}

// Recent returns up to n most recent alerts, newest first.
func (d *AlertDispatcher) Recent(n int) []*models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n <= 0 || n > len(d.recent) {
		n = len(d.recent)
	}
	out := make([]*models.Alert, n)
	for i := 0; i < n; i++ {
		out[i] = d.recent[len(d.recent)-1-i]
	}
	return out
}

// Close releases backend resources.
func (d *AlertDispatcher) Close() {
	if d.pub != nil {
		_ = d.pub.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

func (d *AlertDispatcher) remember(a *models.Alert) {
	d.mu.Lock()
	d.recent = append(d.recent, a)
	if len(d.recent) > d.max {
		d.recent = d.recent[len(d.recent)-d.max:]
	}
	d.mu.Unlock()
}

func (d *AlertDispatcher) suppressed(pair string) bool {
	if d.cache == nil || d.cooldown <= 0 {
		return false
	}
	_, ok, err := d.cache.GetBytes(cooldownKey(pair))
	if err != nil {
		d.metrics.RecordError("alert_cache")
		return false
	}
	return ok
}

func (d *AlertDispatcher) markDelivered(pair string) {
	if d.cache == nil || d.cooldown <= 0 {
		return
	}
	if err := d.cache.SetBytes(cooldownKey(pair), []byte("1"), d.cooldown); err != nil {
		d.metrics.RecordError("alert_cache")
	}
}

func cooldownKey(pair string) string { return "alert_cooldown:" + pair }
