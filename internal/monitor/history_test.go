package monitor

import (
	"testing"

	"PairWatch/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func TestAppendRejectsStaleTimestamps(t *testing.T) {
	h := NewMarketHistory("ethusdt")

	require.True(t, h.Append(models.PricePoint{Timestamp: 1000, Price: 1.0}))
	require.False(t, h.Append(models.PricePoint{Timestamp: 1000, Price: 2.0}), "duplicate timestamp must be dropped")
	require.False(t, h.Append(models.PricePoint{Timestamp: 500, Price: 3.0}), "older timestamp must be dropped")
	require.True(t, h.Append(models.PricePoint{Timestamp: 2000, Price: 4.0}))

	require.Equal(t, 2, h.Len())
	require.Equal(t, int64(2000), h.LastTimestamp())
}

func TestAppendMarksFresh(t *testing.T) {
	h := NewMarketHistory("ethusdt")
	require.False(t, h.Fresh.Fresh())

	h.Append(models.PricePoint{Timestamp: 1, Price: 1})
	require.True(t, h.Fresh.Fresh())

	require.True(t, h.Fresh.Consume())
	require.False(t, h.Fresh.Fresh())

	// a rejected append leaves freshness untouched
	h.Append(models.PricePoint{Timestamp: 1, Price: 1})
	require.False(t, h.Fresh.Fresh())
}

func TestBootstrapCountsAccepted(t *testing.T) {
	h := NewMarketHistory("btcusdt")
	h.Append(models.PricePoint{Timestamp: 100, Price: 1})

	accepted := h.Bootstrap([]models.PricePoint{
		{Timestamp: 50, Price: 1},  // behind the head, dropped
		{Timestamp: 200, Price: 2},
		{Timestamp: 200, Price: 3}, // duplicate, dropped
		{Timestamp: 300, Price: 4},
	})
	require.Equal(t, 2, accepted)
	require.Equal(t, 3, h.Len())
}

func TestJoinExactOverlap(t *testing.T) {
	a := NewMarketHistory("ethusdt")
	b := NewMarketHistory("btcusdt")
	for i := int64(1); i <= 3; i++ {
		a.Append(models.PricePoint{Timestamp: i * 60000, Price: float64(i)})
		b.Append(models.PricePoint{Timestamp: i * 60000, Price: float64(i * 10)})
	}

	rows, err := a.Join(b)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int64(60000), rows[0].Timestamp)
	require.Equal(t, 1.0, rows[0].SelfPrice)
	require.Equal(t, 10.0, rows[0].OtherPrice)
}

func TestJoinPartialOverlap(t *testing.T) {
	a := NewMarketHistory("ethusdt")
	b := NewMarketHistory("btcusdt")

	a.Append(models.PricePoint{Timestamp: 1, Price: 1})
	a.Append(models.PricePoint{Timestamp: 2, Price: 2})
	a.Append(models.PricePoint{Timestamp: 4, Price: 4})

	b.Append(models.PricePoint{Timestamp: 2, Price: 20})
	b.Append(models.PricePoint{Timestamp: 3, Price: 30})
	b.Append(models.PricePoint{Timestamp: 4, Price: 40})

	rows, err := a.Join(b)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].Timestamp)
	require.Equal(t, int64(4), rows[1].Timestamp)
}

// Append already rejects non-increasing timestamps, so a malformed series can
// only come from a broken feed. Join must fail it loudly instead of silently
// dropping the colliding row, whichever side of the join it sits on.
func TestJoinRejectsDuplicateTimestamps(t *testing.T) {
	a := NewMarketHistory("ethusdt")
	b := NewMarketHistory("btcusdt")
	a.points = []models.PricePoint{
		{Timestamp: 60000, Price: 2000},
		{Timestamp: 60000, Price: 2001},
	}
	b.Append(models.PricePoint{Timestamp: 60000, Price: 60000})

	_, err := a.Join(b)
	require.ErrorIs(t, err, ErrDataIntegrity)

	_, err = b.Join(a)
	require.ErrorIs(t, err, ErrDataIntegrity)
}

func TestJoinDisjoint(t *testing.T) {
	a := NewMarketHistory("ethusdt")
	b := NewMarketHistory("btcusdt")
	a.Append(models.PricePoint{Timestamp: 1, Price: 1})
	b.Append(models.PricePoint{Timestamp: 2, Price: 2})

	rows, err := a.Join(b)
	require.NoError(t, err)
	require.Empty(t, rows)
}
