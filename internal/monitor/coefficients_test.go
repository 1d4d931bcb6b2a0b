package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLatchIsOneShot(t *testing.T) {
	var l Latch
	require.False(t, l.IsSet())

	l.Set()
	require.True(t, l.IsSet())

	// idempotent, and there is no way back
	l.Set()
	require.True(t, l.IsSet())
}

func TestFlagConsumeIsTestAndClear(t *testing.T) {
	var f Flag
	require.False(t, f.Consume())

	f.Mark()
	require.True(t, f.Consume())
	require.False(t, f.Consume(), "second consume must see a cleared flag")
}

func TestPriceSlotLastWriteWins(t *testing.T) {
	var s PriceSlot

	_, ok := s.Consume()
	require.False(t, ok)

	s.Update(100.5)
	s.Update(101.5)
	s.Update(99.25)

	price, ok := s.Consume()
	require.True(t, ok)
	require.Equal(t, 99.25, price)

	_, ok = s.Consume()
	require.False(t, ok, "slot must be stale until the next update")
}

func TestCoefficientStoreSnapshot(t *testing.T) {
	s := NewCoefficientStore()

	snap := s.Snapshot()
	require.False(t, snap.StatisticsReady)
	require.False(t, snap.ReferenceReady)

	s.PublishStatistics(0.9, 2000, 60000)
	s.StatisticsReady.Set()
	s.PublishReferenceDeviation(1.5)
	s.ReferenceReady.Set()

	snap = s.Snapshot()
	require.Equal(t, 0.9, snap.Correlation)
	require.Equal(t, 2000.0, snap.MeanTarget)
	require.Equal(t, 60000.0, snap.MeanReference)
	require.Equal(t, 1.5, snap.ReferenceDeviationPct)
	require.True(t, snap.StatisticsReady)
	require.True(t, snap.ReferenceReady)
}
