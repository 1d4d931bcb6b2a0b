package monitor

import (
	"context"
	"time"

	"PairWatch/internal/domain/repository"
	"PairWatch/pkg/logger"
)

// ReferenceWatcher reacts to real-time trades on the reference symbol. Once
// the aggregator has published statistics, each fresh trade yields the
// reference symbol's percent deviation from its baseline mean, published for
// the target watcher.
type ReferenceWatcher struct {
	symbol  string
	price   *PriceSlot
	store   *CoefficientStore
	poll    time.Duration
	log     *logger.Logger
	metrics repository.Metrics
}

func NewReferenceWatcher(symbol string, price *PriceSlot, store *CoefficientStore, poll time.Duration, log *logger.Logger, metrics repository.Metrics) *ReferenceWatcher {
	return &ReferenceWatcher{
		symbol:  symbol,
		price:   price,
		store:   store,
		poll:    poll,
		log:     log,
		metrics: metrics,
	}
}

func (w *ReferenceWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !w.store.StatisticsReady.IsSet() {
			continue
		}
		price, ok := w.price.Consume()
		if !ok {
			continue
		}

		mean := w.store.MeanReference()
		dev, err := DeviationPct(price, mean)
		if err != nil {
			w.metrics.RecordError("reference_watcher")
			w.log.Error("reference cycle skipped",
				logger.Error(err),
				logger.String("symbol", w.symbol),
				logger.Any("price", price),
				logger.Any("mean", mean),
			)
			continue
		}

		w.store.PublishReferenceDeviation(dev)
		w.store.ReferenceReady.Set()
		w.metrics.RecordDeviation("reference", dev)
	}
}
