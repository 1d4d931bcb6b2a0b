package usecase

import (
	"testing"
	"time"

	"PairWatch/internal/domain/models"
	"PairWatch/internal/monitor"

	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *monitor.Pipeline {
	t.Helper()
	return monitor.NewPipeline(monitor.Config{
		TargetSymbol:    "ethusdt",
		ReferenceSymbol: "btcusdt",
		MeanWindow:      60,
		ThresholdPct:    1.0,
		PollInterval:    time.Millisecond,
	}, nil, testLogger(t), newStubMetrics())
}

func TestRouterRoutesCandlesBySymbol(t *testing.T) {
	pipe := newTestPipeline(t)
	r := NewRouter(pipe, newStubMetrics(), testLogger(t))

	r.Dispatch(models.CandleClosed{Symbol: "ethusdt", OpenTimeMs: 60000, ClosePrice: 2000})
	r.Dispatch(models.CandleClosed{Symbol: "btcusdt", OpenTimeMs: 60000, ClosePrice: 60000})
	r.Dispatch(models.CandleClosed{Symbol: "solusdt", OpenTimeMs: 60000, ClosePrice: 150})

	require.Equal(t, 1, pipe.TargetHistory.Len())
	require.Equal(t, 1, pipe.ReferenceHistory.Len())
	require.Equal(t, int64(60000), pipe.TargetHistory.LastTimestamp())
}

func TestRouterDropsStaleCandle(t *testing.T) {
	pipe := newTestPipeline(t)
	r := NewRouter(pipe, newStubMetrics(), testLogger(t))

	r.Dispatch(models.CandleClosed{Symbol: "ethusdt", OpenTimeMs: 120000, ClosePrice: 2001})
	r.Dispatch(models.CandleClosed{Symbol: "ethusdt", OpenTimeMs: 60000, ClosePrice: 2000})

	require.Equal(t, 1, pipe.TargetHistory.Len())
	require.Equal(t, int64(120000), pipe.TargetHistory.LastTimestamp())
}

func TestRouterRoutesTradesToPriceSlots(t *testing.T) {
	pipe := newTestPipeline(t)
	m := newStubMetrics()
	r := NewRouter(pipe, m, testLogger(t))

	r.Dispatch(models.Trade{Symbol: "ethusdt", Price: 2002.5})
	r.Dispatch(models.Trade{Symbol: "btcusdt", Price: 60100.0})
	r.Dispatch(models.Trade{Symbol: "solusdt", Price: 150})

	price, ok := pipe.TargetPrice.Consume()
	require.True(t, ok)
	require.Equal(t, 2002.5, price)

	price, ok = pipe.ReferencePrice.Consume()
	require.True(t, ok)
	require.Equal(t, 60100.0, price)
}

func TestRouterCoalescesTrades(t *testing.T) {
	pipe := newTestPipeline(t)
	r := NewRouter(pipe, newStubMetrics(), testLogger(t))

	r.Dispatch(models.Trade{Symbol: "ethusdt", Price: 2000})
	r.Dispatch(models.Trade{Symbol: "ethusdt", Price: 2001})
	r.Dispatch(models.Trade{Symbol: "ethusdt", Price: 2002})

	price, ok := pipe.TargetPrice.Consume()
	require.True(t, ok)
	require.Equal(t, 2002.0, price)

	_, ok = pipe.TargetPrice.Consume()
	require.False(t, ok)
}
