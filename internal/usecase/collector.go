package usecase

import (
	"context"

	"PairWatch/internal/domain/models"
	drepo "PairWatch/internal/domain/repository"
	"PairWatch/internal/monitor"
	"PairWatch/pkg/logger"
)

// Router dispatches validated stream events into the pipeline's shared
// state: closed candles append to the matching history, trades overwrite the
// matching price slot.
type Router struct {
	pipe    *monitor.Pipeline
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewRouter(pipe *monitor.Pipeline, metrics drepo.Metrics, log *logger.Logger) *Router {
	return &Router{pipe: pipe, metrics: metrics, log: log}
}

func (r *Router) Dispatch(ev models.MarketEvent) {
	switch e := ev.(type) {
	case models.CandleClosed:
		var h *monitor.MarketHistory
		switch e.Symbol {
		case r.pipe.TargetHistory.Symbol():
			h = r.pipe.TargetHistory
		case r.pipe.ReferenceHistory.Symbol():
			h = r.pipe.ReferenceHistory
		default:
			return
		}
		if !h.Append(e.Point()) {
			// out-of-order or duplicate candle; dropped per contract
			r.log.Debug("candle dropped",
				logger.String("symbol", e.Symbol),
				logger.Int64("open_time_ms", e.OpenTimeMs),
				logger.Int64("last", h.LastTimestamp()),
			)
		}
	case models.Trade:
		switch e.Symbol {
		case r.pipe.TargetHistory.Symbol():
			r.pipe.TargetPrice.Update(e.Price)
		case r.pipe.ReferenceHistory.Symbol():
			r.pipe.ReferencePrice.Update(e.Price)
		default:
			return
		}
		r.metrics.RecordLastPrice(e.Symbol, e.Price)
	}
}

// MarketCollector consumes one market stream and feeds the router. Transport
// errors trigger a reconnect; they never reach the pipeline workers.
type MarketCollector struct {
	name    string
	stream  drepo.MarketStream
	router  *Router
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewMarketCollector(name string, stream drepo.MarketStream, router *Router, metrics drepo.Metrics, log *logger.Logger) *MarketCollector {
	return &MarketCollector{name: name, stream: stream, router: router, metrics: metrics, log: log}
}

// IsConnected returns true if the market stream is connected.
func (c *MarketCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *MarketCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	evCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

func (c *MarketCollector) consume(ctx context.Context, evCh <-chan models.MarketEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream_" + c.name)
				c.log.Warn("stream error, reconnecting",
					logger.String("stream", c.name),
					logger.Error(err),
				)
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("reconnect failed",
						logger.String("stream", c.name),
						logger.Error(rerr),
					)
					continue
				}
				evCh, errCh = c.stream.Read(ctx)
			}
		case ev := <-evCh:
			if ev == nil {
				continue
			}
			c.router.Dispatch(ev)
		}
	}
}

func (c *MarketCollector) Stop() error { return c.stream.Close() }
