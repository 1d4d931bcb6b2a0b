package models

// PricePoint is a single (close time, close price) observation in a symbol's
// candle history. Timestamp is epoch milliseconds of the candle open.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

// MarketEvent is the tagged union of events a market stream delivers.
type MarketEvent interface {
	EventSymbol() string
}

// CandleClosed is emitted when a kline interval completes. Open candles are
// never delivered.
type CandleClosed struct {
	Symbol     string
	OpenTimeMs int64
	ClosePrice float64
}

func (e CandleClosed) EventSymbol() string { return e.Symbol }

// Trade is emitted per executed trade on the subscribed symbol.
type Trade struct {
	Symbol string
	Price  float64
}

func (e Trade) EventSymbol() string { return e.Symbol }

// Point converts a closed candle to a history price point.
func (e CandleClosed) Point() PricePoint {
	return PricePoint{Timestamp: e.OpenTimeMs, Price: e.ClosePrice}
}
