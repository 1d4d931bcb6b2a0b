package monitor

import (
	"math"
	"sync"
	"sync/atomic"

	"PairWatch/internal/domain/models"
)

// Latch is a one-shot readiness signal. Set is idempotent and the latch never
// resets: it gates only the first cycle of a downstream stage, per-cycle
// gating is the freshness flags' job.
type Latch struct {
	v atomic.Bool
}

func (l *Latch) Set()        { l.v.Store(true) }
func (l *Latch) IsSet() bool { return l.v.Load() }

// Flag is a freshness signal: marked by the data-arrival path, consumed
// (test-and-clear) by the stage that uses the value.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) Mark()       { f.v.Store(true) }
func (f *Flag) Fresh() bool { return f.v.Load() }
func (f *Flag) Clear()      { f.v.Store(false) }

// Consume clears the flag and reports whether it was fresh.
func (f *Flag) Consume() bool { return f.v.CompareAndSwap(true, false) }

// PriceSlot holds the latest real-time price for a symbol. Multiple trade
// arrivals before consumption overwrite each other (last-write-wins, never
// queued).
type PriceSlot struct {
	bits  atomic.Uint64
	fresh Flag
}

// Update stores the price and marks the slot fresh.
func (s *PriceSlot) Update(price float64) {
	s.bits.Store(math.Float64bits(price))
	s.fresh.Mark()
}

// Consume returns the stored price and clears freshness. ok is false when no
// new trade arrived since the last consumption.
func (s *PriceSlot) Consume() (price float64, ok bool) {
	if !s.fresh.Consume() {
		return 0, false
	}
	return math.Float64frombits(s.bits.Load()), true
}

// CoefficientStore is the shared record of derived statistics. Each field has
// exactly one writer stage: the aggregator publishes correlation and the two
// baseline means, the reference watcher publishes the reference deviation.
// Downstream stages only read. The store lives for the whole process.
type CoefficientStore struct {
	mu                    sync.RWMutex
	correlation           float64
	meanTarget            float64
	meanReference         float64
	referenceDeviationPct float64

	// StatisticsReady latches after the aggregator's first successful cycle,
	// ReferenceReady after the reference watcher's.
	StatisticsReady Latch
	ReferenceReady  Latch
}

func NewCoefficientStore() *CoefficientStore {
	return &CoefficientStore{}
}

// PublishStatistics atomically replaces the aggregator-owned fields.
func (s *CoefficientStore) PublishStatistics(correlation, meanTarget, meanReference float64) {
	s.mu.Lock()
	s.correlation = correlation
	s.meanTarget = meanTarget
	s.meanReference = meanReference
	s.mu.Unlock()
}

// PublishReferenceDeviation replaces the reference-watcher-owned field.
func (s *CoefficientStore) PublishReferenceDeviation(pct float64) {
	s.mu.Lock()
	s.referenceDeviationPct = pct
	s.mu.Unlock()
}

func (s *CoefficientStore) Correlation() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.correlation
}

func (s *CoefficientStore) MeanTarget() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meanTarget
}

func (s *CoefficientStore) MeanReference() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meanReference
}

func (s *CoefficientStore) ReferenceDeviationPct() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referenceDeviationPct
}

// Snapshot copies every field under one lock acquisition.
func (s *CoefficientStore) Snapshot() models.MonitorSnapshot {
	s.mu.RLock()
	snap := models.MonitorSnapshot{
		Correlation:           s.correlation,
		MeanTarget:            s.meanTarget,
		MeanReference:         s.meanReference,
		ReferenceDeviationPct: s.referenceDeviationPct,
	}
	s.mu.RUnlock()
	snap.StatisticsReady = s.StatisticsReady.IsSet()
	snap.ReferenceReady = s.ReferenceReady.IsSet()
	return snap
}
