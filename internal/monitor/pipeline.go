package monitor

import (
	"context"
	"sync"
	"time"

	"PairWatch/internal/domain/repository"
	"PairWatch/pkg/logger"
)

// Config holds the monitor pipeline tunables.
type Config struct {
	TargetSymbol    string
	ReferenceSymbol string
	MeanWindow      int
	ThresholdPct    float64
	PollInterval    time.Duration
}

// Pipeline bundles the three workers and the state they share: two candle
// histories, two real-time price slots, and the coefficient store.
type Pipeline struct {
	TargetHistory    *MarketHistory
	ReferenceHistory *MarketHistory
	TargetPrice      *PriceSlot
	ReferencePrice   *PriceSlot
	Store            *CoefficientStore

	aggregator *Aggregator
	reference  *ReferenceWatcher
	target     *TargetWatcher

	wg sync.WaitGroup
}

func NewPipeline(cfg Config, emitter Emitter, log *logger.Logger, metrics repository.Metrics) *Pipeline {
	p := &Pipeline{
		TargetHistory:    NewMarketHistory(cfg.TargetSymbol),
		ReferenceHistory: NewMarketHistory(cfg.ReferenceSymbol),
		TargetPrice:      &PriceSlot{},
		ReferencePrice:   &PriceSlot{},
		Store:            NewCoefficientStore(),
	}
	p.aggregator = NewAggregator(p.TargetHistory, p.ReferenceHistory, p.Store, cfg.MeanWindow, cfg.PollInterval, log, metrics)
	p.reference = NewReferenceWatcher(cfg.ReferenceSymbol, p.ReferencePrice, p.Store, cfg.PollInterval, log, metrics)
	p.target = NewTargetWatcher(cfg.TargetSymbol, cfg.ReferenceSymbol, p.TargetPrice, p.Store, cfg.ThresholdPct, cfg.PollInterval, emitter, log, metrics)
	return p
}

// Start launches the three workers. They run until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	for _, run := range []func(context.Context){
		p.aggregator.Run,
		p.reference.Run,
		p.target.Run,
	} {
		p.wg.Add(1)
		go func(run func(context.Context)) {
			defer p.wg.Done()
			run(ctx)
		}(run)
	}
}

// Wait blocks until all workers have exited.
func (p *Pipeline) Wait() { p.wg.Wait() }
