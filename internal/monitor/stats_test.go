package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPearsonCorrelationPerfectPositive(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{10, 20, 30, 40, 50}

	r, err := PearsonCorrelation(x, y)
	require.NoError(t, err)
	require.InDelta(t, 1.0, r, 1e-12)
}

func TestPearsonCorrelationPerfectNegative(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{8, 6, 4, 2}

	r, err := PearsonCorrelation(x, y)
	require.NoError(t, err)
	require.InDelta(t, -1.0, r, 1e-12)
}

func TestPearsonCorrelationZeroVariance(t *testing.T) {
	x := []float64{5, 5, 5, 5}
	y := []float64{1, 2, 3, 4}

	_, err := PearsonCorrelation(x, y)
	require.ErrorIs(t, err, ErrComputation)
}

func TestPearsonCorrelationLengthMismatch(t *testing.T) {
	_, err := PearsonCorrelation([]float64{1, 2, 3}, []float64{1, 2})
	require.ErrorIs(t, err, ErrComputation)
}

func TestPearsonCorrelationTooFewSamples(t *testing.T) {
	_, err := PearsonCorrelation([]float64{1}, []float64{2})
	require.ErrorIs(t, err, ErrComputation)
}

func TestTrailingMeanExactWindow(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	m, err := TrailingMean(values, 3)
	require.NoError(t, err)
	require.InDelta(t, 5.0, m, 1e-12)
}

func TestTrailingMeanShortSeries(t *testing.T) {
	// window larger than the series averages everything available
	values := []float64{2, 4}

	m, err := TrailingMean(values, 60)
	require.NoError(t, err)
	require.InDelta(t, 3.0, m, 1e-12)
}

func TestTrailingMeanEmptySeries(t *testing.T) {
	_, err := TrailingMean(nil, 60)
	require.ErrorIs(t, err, ErrComputation)
}

func TestDeviationPct(t *testing.T) {
	dev, err := DeviationPct(102, 100)
	require.NoError(t, err)
	require.InDelta(t, 2.0, dev, 1e-12)

	dev, err = DeviationPct(98, 100)
	require.NoError(t, err)
	require.InDelta(t, -2.0, dev, 1e-12)
}

func TestDeviationPctZeroMean(t *testing.T) {
	_, err := DeviationPct(100, 0)
	require.ErrorIs(t, err, ErrComputation)
}
