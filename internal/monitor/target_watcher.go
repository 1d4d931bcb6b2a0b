package monitor

import (
	"context"
	"fmt"
	"time"

	"PairWatch/internal/domain/models"
	"PairWatch/internal/domain/repository"
	"PairWatch/pkg/logger"
)

// Emitter receives alerts raised by the target watcher. Delivery failures are
// the emitter's problem; the watcher never blocks on them.
type Emitter interface {
	Emit(ctx context.Context, a *models.Alert)
}

// TargetWatcher reacts to real-time trades on the target symbol. Once the
// reference deviation is available, each fresh trade yields the residual:
// the target's percent deviation minus the correlation-weighted reference
// deviation. Residuals above the threshold raise an alert.
type TargetWatcher struct {
	symbol          string
	referenceSymbol string
	price           *PriceSlot
	store           *CoefficientStore
	threshold       float64
	poll            time.Duration
	emitter         Emitter
	log             *logger.Logger
	metrics         repository.Metrics
}

func NewTargetWatcher(symbol, referenceSymbol string, price *PriceSlot, store *CoefficientStore, threshold float64, poll time.Duration, emitter Emitter, log *logger.Logger, metrics repository.Metrics) *TargetWatcher {
	return &TargetWatcher{
		symbol:          symbol,
		referenceSymbol: referenceSymbol,
		price:           price,
		store:           store,
		threshold:       threshold,
		poll:            poll,
		emitter:         emitter,
		log:             log,
		metrics:         metrics,
	}
}

func (w *TargetWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !w.store.ReferenceReady.IsSet() {
			continue
		}
		price, ok := w.price.Consume()
		if !ok {
			continue
		}

		snap := w.store.Snapshot()
		targetDev, err := DeviationPct(price, snap.MeanTarget)
		if err != nil {
			w.metrics.RecordError("target_watcher")
			w.log.Error("target cycle skipped",
				logger.Error(err),
				logger.String("symbol", w.symbol),
				logger.Any("price", price),
				logger.Any("mean", snap.MeanTarget),
			)
			continue
		}

		residual := targetDev - snap.ReferenceDeviationPct*snap.Correlation

		w.metrics.RecordDeviation("target", targetDev)
		w.metrics.RecordResidual(residual)
		w.log.Info("residual deviation",
			logger.String("symbol", w.symbol),
			logger.Any("residual_pct", residual),
			logger.Any("target_deviation_pct", targetDev),
			logger.Any("reference_deviation_pct", snap.ReferenceDeviationPct),
			logger.Any("correlation", snap.Correlation),
		)

		if residual > w.threshold {
			w.emitter.Emit(ctx, &models.Alert{
				Pair:            w.symbol + "/" + w.referenceSymbol,
				TargetSymbol:    w.symbol,
				ReferenceSymbol: w.referenceSymbol,
				Residual:        residual,
				TargetDevPct:    targetDev,
				ReferenceDevPct: snap.ReferenceDeviationPct,
				Correlation:     snap.Correlation,
				Threshold:       w.threshold,
				Message: fmt.Sprintf("%s moved %.4f%% beyond what %s explains",
					w.symbol, residual, w.referenceSymbol),
				Timestamp: time.Now().UTC(),
			})
		}
	}
}
