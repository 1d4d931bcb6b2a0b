package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"PairWatch/internal/domain/models"
	drepo "PairWatch/internal/domain/repository"
	xhttp "PairWatch/pkg/http"
)

// KlinesSource bootstraps a symbol's candle history from the Binance REST
// klines endpoint.
type KlinesSource struct {
	client     *xhttp.Client
	spotURL    string
	futuresURL string
	interval   string
	limit      int
}

func NewKlinesSource(client *xhttp.Client, spotURL, futuresURL, interval string, limit int) drepo.HistorySource {
	return &KlinesSource{
		client:     client,
		spotURL:    spotURL,
		futuresURL: futuresURL,
		interval:   interval,
		limit:      limit,
	}
}

// Fetch returns up to limit most-recent completed candles, ascending. The
// final row of the exchange response is the still-forming candle and is
// dropped.
func (s *KlinesSource) Fetch(ctx context.Context, market, symbol string) ([]models.PricePoint, error) {
	var u string
	switch market {
	case MarketFutures:
		u = s.futuresURL + "/fapi/v1/klines"
	case MarketSpot:
		u = s.spotURL + "/api/v3/klines"
	default:
		return nil, fmt.Errorf("unknown market %q", market)
	}

	var rows [][]interface{}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    u,
		QueryParams: map[string][]string{
			"symbol":   {strings.ToUpper(symbol)},
			"interval": {s.interval},
			"limit":    {strconv.Itoa(s.limit)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w", market, symbol, err)
	}

	if len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}

	points := make([]models.PricePoint, 0, len(rows))
	for i, row := range rows {
		p, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("klines %s %s row %d: %w", market, symbol, i, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// parseKlineRow extracts (open time, close price) from one REST kline row:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseKlineRow(row []interface{}) (models.PricePoint, error) {
	if len(row) < 5 {
		return models.PricePoint{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, ok := row[0].(float64)
	if !ok {
		return models.PricePoint{}, fmt.Errorf("open time is %T, want number", row[0])
	}
	closeStr, ok := row[4].(string)
	if !ok {
		return models.PricePoint{}, fmt.Errorf("close price is %T, want string", row[4])
	}
	price, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return models.PricePoint{}, fmt.Errorf("close price %q: %w", closeStr, err)
	}
	return models.PricePoint{Timestamp: int64(ts), Price: price}, nil
}
