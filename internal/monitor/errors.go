package monitor

import "errors"

// Per-cycle failure taxonomy. Every error raised inside a worker cycle wraps
// one of these sentinels so the loop boundary can label it; none of them is
// fatal to a worker.
var (
	// ErrDataIntegrity marks a violated join assumption (duplicate or
	// non-monotonic timestamps in a candle history).
	ErrDataIntegrity = errors.New("data integrity")

	// ErrComputation marks a degenerate computation: zero variance,
	// fewer than two samples, or a zero baseline mean.
	ErrComputation = errors.New("computation")
)
