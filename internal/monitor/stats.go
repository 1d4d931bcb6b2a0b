package monitor

import (
	"fmt"
	"math"
)

// PearsonCorrelation computes the correlation coefficient between two series
// of equal length: cov(x, y) / (stddev(x) * stddev(y)). Fewer than two
// samples or a zero-variance series makes the coefficient undefined, which is
// an ErrComputation, never a silent 0 or NaN.
func PearsonCorrelation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: correlation: series length mismatch %d vs %d", ErrComputation, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: correlation: need at least 2 samples, have %d", ErrComputation, len(x))
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	varX := n*sumX2 - sumX*sumX
	varY := n*sumY2 - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0, fmt.Errorf("%w: correlation: zero variance", ErrComputation)
	}

	r := (n*sumXY - sumX*sumY) / math.Sqrt(varX*varY)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: correlation: undefined result", ErrComputation)
	}
	return r, nil
}

// TrailingMean averages the last window values. A window larger than the
// series averages everything available; only an empty series is an error.
func TrailingMean(values []float64, window int) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: trailing mean: empty series", ErrComputation)
	}
	if window <= 0 || window > len(values) {
		window = len(values)
	}
	tail := values[len(values)-window:]
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	return sum / float64(len(tail)), nil
}

// DeviationPct is the percent deviation of a real-time price from its
// baseline mean. A zero mean makes the deviation undefined.
func DeviationPct(price, mean float64) (float64, error) {
	if mean == 0 {
		return 0, fmt.Errorf("%w: deviation: baseline mean is zero", ErrComputation)
	}
	return (price - mean) / mean * 100, nil
}
