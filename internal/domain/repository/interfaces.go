package repository

import (
	"context"
	"time"

	"PairWatch/internal/domain/models"
)

// MarketStream delivers candle-close and trade events for its subscriptions.
// Per-symbol delivery order is non-decreasing in time; the core drops
// out-of-order candles itself.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// HistorySource returns the most recent completed candles for a symbol,
// ordered ascending, with the still-open candle excluded.
type HistorySource interface {
	Fetch(ctx context.Context, market, symbol string) ([]models.PricePoint, error)
}

// AlertPublisher delivers alerts to a message broker.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Alert) error
	Close() error
}

// AlertStorage persists alerts and serves range queries for the API.
type AlertStorage interface {
	Store(ctx context.Context, a *models.Alert) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]*models.Alert, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordAlert(backend string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordDeviation(role string, pct float64)
	RecordResidual(pct float64)
	RecordCorrelation(v float64)
	RecordLatency(op string, seconds float64)
}
