package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"PairWatch/internal/domain/models"
	drepo "PairWatch/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Market types. The target symbol trades on futures, the reference on spot,
// each with its own stream host.
const (
	MarketSpot    = "spot"
	MarketFutures = "futures"
)

// Stream implements a MarketStream backed by a Binance WebSocket connection.
// One connection carries all subscriptions for its market (kline + trade).
type Stream struct {
	host           string
	streams        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// mu guards conn and connected across Connect/Reconnect/Close and the
	// read/keepalive goroutines. writeMu serializes outbound frames; gorilla
	// forbids concurrent writes on one connection.
	mu        sync.Mutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// StreamNames builds the subscription names for a symbol: the closed-candle
// kline stream for the interval plus the raw trade stream.
func StreamNames(symbol, interval string) []string {
	s := strings.ToLower(symbol)
	return []string{s + "@kline_" + interval, s + "@trade"}
}

// NewStream creates a Binance MarketStream for one host.
func NewStream(host string, streams []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Stream{
		host:           host,
		streams:        streams,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("wss://%s/ws", s.host)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect %s: %w", s.host, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Subscribe subscribes to the configured streams.
func (s *Stream) Subscribe(ctx context.Context) error {
	conn := s.currentConn()
	if conn == nil {
		return fmt.Errorf("binance not connected")
	}
	req := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": s.streams,
		"id":     rand.Intn(1000),
	}
	if err := s.writeJSON(conn, req); err != nil {
		return fmt.Errorf("subscribe %v: %w", s.streams, err)
	}
	return nil
}

func (s *Stream) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	return s.conn
}

func (s *Stream) writeMessage(conn *websocket.Conn, messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(messageType, data)
}

func (s *Stream) writeJSON(conn *websocket.Conn, v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(v)
}

type wsKline struct {
	StartTime int64  `json:"t"`
	Close     string `json:"c"`
	Final     bool   `json:"x"`
}

type wsFrame struct {
	Event  string   `json:"e"`
	Symbol string   `json:"s"`
	Price  string   `json:"p"`
	Kline  *wsKline `json:"k"`
	Ping   int64    `json:"ping"`
}

// parseFrame decodes one wire message. It returns a nil event for frames the
// monitor ignores (subscription acks, open candles) and the ping payload when
// the exchange expects a pong reply.
func parseFrame(data []byte) (ev models.MarketEvent, ping int64, err error) {
	var f wsFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("decode frame: %w", err)
	}
	if f.Ping != 0 {
		return nil, f.Ping, nil
	}

	switch f.Event {
	case "kline":
		if f.Kline == nil || !f.Kline.Final {
			return nil, 0, nil
		}
		price, err := strconv.ParseFloat(f.Kline.Close, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("kline close %q: %w", f.Kline.Close, err)
		}
		return models.CandleClosed{
			Symbol:     strings.ToLower(f.Symbol),
			OpenTimeMs: f.Kline.StartTime,
			ClosePrice: price,
		}, 0, nil
	case "trade":
		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("trade price %q: %w", f.Price, err)
		}
		return models.Trade{
			Symbol: strings.ToLower(f.Symbol),
			Price:  price,
		}, 0, nil
	}
	return nil, 0, nil
}

// Read streams market events and errors. The keepalive goroutine is bound to
// the connection captured here: it stops when the read loop exits, so a later
// Reconnect never inherits a stale pinger.
func (s *Stream) Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error) {
	events := make(chan models.MarketEvent, 1024)
	errs := make(chan error, 1)

	conn := s.currentConn()
	done := make(chan struct{})

	// keepalive loop for this connection only
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if conn != nil {
					_ = s.writeMessage(conn, websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		defer close(done)
		if conn == nil {
			errs <- fmt.Errorf("binance conn nil")
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				ev, ping, err := parseFrame(b)
				if err != nil {
					// malformed frame, not fatal to the stream
					continue
				}
				if ping != 0 {
					_ = s.writeJSON(conn, map[string]int64{"pong": ping})
					continue
				}
				if ev == nil {
					continue
				}
				select {
				case events <- ev:
				default:
					// drop on backpressure; trades coalesce downstream
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and reconnects after the configured delay.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
