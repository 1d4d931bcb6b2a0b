package monitor

import (
	"fmt"
	"sync"

	"PairWatch/internal/domain/models"
)

// MarketHistory is an append-only, time-ordered series of close prices for
// one symbol. Appends come from the stream consumer goroutine, reads from the
// aggregator, so access is mutex-guarded. Timestamps are unique and strictly
// increasing; anything else is dropped, not merged.
type MarketHistory struct {
	symbol string

	mu     sync.Mutex
	points []models.PricePoint

	// Fresh is marked on every accepted append and consumed by the
	// aggregator once it has used the series.
	Fresh Flag
}

func NewMarketHistory(symbol string) *MarketHistory {
	return &MarketHistory{symbol: symbol}
}

func (h *MarketHistory) Symbol() string { return h.symbol }

// Append adds a point and marks the series fresh. Points at or before the
// last stored timestamp are rejected (no-op, returns false).
func (h *MarketHistory) Append(p models.PricePoint) bool {
	h.mu.Lock()
	if n := len(h.points); n > 0 && p.Timestamp <= h.points[n-1].Timestamp {
		h.mu.Unlock()
		return false
	}
	h.points = append(h.points, p)
	h.mu.Unlock()
	h.Fresh.Mark()
	return true
}

// Bootstrap seeds the series from a historical batch through the same append
// rule and returns how many points were accepted.
func (h *MarketHistory) Bootstrap(points []models.PricePoint) int {
	accepted := 0
	for _, p := range points {
		if h.Append(p) {
			accepted++
		}
	}
	return accepted
}

func (h *MarketHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.points)
}

// LastTimestamp returns the newest stored timestamp, or 0 for an empty series.
func (h *MarketHistory) LastTimestamp() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.points) == 0 {
		return 0
	}
	return h.points[len(h.points)-1].Timestamp
}

// JoinedRow is one row of an inner 1:1 join of two histories.
type JoinedRow struct {
	Timestamp  int64
	SelfPrice  float64
	OtherPrice float64
}

// Join inner-joins two histories on timestamp with 1:1 cardinality and
// returns the ordered matching rows. Append already guarantees strictly
// increasing timestamps; Join re-verifies while merging and fails with
// ErrDataIntegrity instead of silently dropping a colliding row, since a
// violation means the feed broke its contract.
func (h *MarketHistory) Join(other *MarketHistory) ([]JoinedRow, error) {
	a := h.snapshot()
	b := other.snapshot()

	if err := verifyMonotonic(h.symbol, a); err != nil {
		return nil, err
	}
	if err := verifyMonotonic(other.symbol, b); err != nil {
		return nil, err
	}

	rows := make([]JoinedRow, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Timestamp < b[j].Timestamp:
			i++
		case a[i].Timestamp > b[j].Timestamp:
			j++
		default:
			rows = append(rows, JoinedRow{
				Timestamp:  a[i].Timestamp,
				SelfPrice:  a[i].Price,
				OtherPrice: b[j].Price,
			})
			i++
			j++
		}
	}
	return rows, nil
}

func (h *MarketHistory) snapshot() []models.PricePoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.PricePoint, len(h.points))
	copy(out, h.points)
	return out
}

func verifyMonotonic(symbol string, points []models.PricePoint) error {
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp <= points[i-1].Timestamp {
			return fmt.Errorf("%w: %s history has duplicate or unordered timestamp %d", ErrDataIntegrity, symbol, points[i].Timestamp)
		}
	}
	return nil
}
