package monitor

import (
	"context"
	"time"

	"PairWatch/internal/domain/repository"
	"PairWatch/pkg/logger"
)

// Aggregator joins the target and reference candle histories, derives the
// Pearson correlation over the whole joined series and the trailing baseline
// means, and publishes them into the coefficient store. It recomputes
// whenever both inputs have delivered a fresh closed candle since the last
// cycle.
type Aggregator struct {
	target    *MarketHistory
	reference *MarketHistory
	store     *CoefficientStore
	window    int
	poll      time.Duration
	log       *logger.Logger
	metrics   repository.Metrics
}

func NewAggregator(target, reference *MarketHistory, store *CoefficientStore, window int, poll time.Duration, log *logger.Logger, metrics repository.Metrics) *Aggregator {
	return &Aggregator{
		target:    target,
		reference: reference,
		store:     store,
		window:    window,
		poll:      poll,
		log:       log,
		metrics:   metrics,
	}
}

// Run polls until both input series are fresh, then executes one cycle.
// A failed cycle is logged and skipped; it never stops the worker and never
// partially publishes. The loop exits only on context cancellation.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.target.Fresh.Fresh() || !a.reference.Fresh.Fresh() {
			continue
		}
		// Consume both inputs up front: a failed cycle is not retried, the
		// next candle arrival re-triggers it.
		a.target.Fresh.Clear()
		a.reference.Fresh.Clear()

		if err := a.cycle(); err != nil {
			a.metrics.RecordError("aggregator")
			a.log.Error("aggregator cycle skipped",
				logger.Error(err),
				logger.String("target", a.target.Symbol()),
				logger.String("reference", a.reference.Symbol()),
				logger.Int("target_len", a.target.Len()),
				logger.Int("reference_len", a.reference.Len()),
			)
		}
	}
}

func (a *Aggregator) cycle() error {
	start := time.Now()

	rows, err := a.target.Join(a.reference)
	if err != nil {
		return err
	}

	targetPrices := make([]float64, len(rows))
	referencePrices := make([]float64, len(rows))
	for i, r := range rows {
		targetPrices[i] = r.SelfPrice
		referencePrices[i] = r.OtherPrice
	}

	correlation, err := PearsonCorrelation(targetPrices, referencePrices)
	if err != nil {
		return err
	}
	meanTarget, err := TrailingMean(targetPrices, a.window)
	if err != nil {
		return err
	}
	meanReference, err := TrailingMean(referencePrices, a.window)
	if err != nil {
		return err
	}

	a.store.PublishStatistics(correlation, meanTarget, meanReference)
	a.store.StatisticsReady.Set()

	a.metrics.RecordCorrelation(correlation)
	a.metrics.RecordLatency("aggregate", time.Since(start).Seconds())
	a.log.Debug("statistics published",
		logger.Int("joined_rows", len(rows)),
		logger.Any("correlation", correlation),
		logger.Any("mean_target", meanTarget),
		logger.Any("mean_reference", meanReference),
	)
	return nil
}
