package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PairWatch/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestStreamNames(t *testing.T) {
	names := StreamNames("ETHUSDT", "1m")
	require.Equal(t, []string{"ethusdt@kline_1m", "ethusdt@trade"}, names)
}

func TestParseFrameClosedKline(t *testing.T) {
	data := []byte(`{"e":"kline","s":"ETHUSDT","k":{"t":1700000060000,"c":"2001.25","x":true}}`)

	ev, ping, err := parseFrame(data)
	require.NoError(t, err)
	require.Zero(t, ping)

	candle, ok := ev.(models.CandleClosed)
	require.True(t, ok)
	require.Equal(t, "ethusdt", candle.Symbol)
	require.Equal(t, int64(1700000060000), candle.OpenTimeMs)
	require.Equal(t, 2001.25, candle.ClosePrice)
}

func TestParseFrameOpenKlineIgnored(t *testing.T) {
	data := []byte(`{"e":"kline","s":"ETHUSDT","k":{"t":1700000060000,"c":"2001.25","x":false}}`)

	ev, ping, err := parseFrame(data)
	require.NoError(t, err)
	require.Zero(t, ping)
	require.Nil(t, ev, "still-forming candles must not become events")
}

func TestParseFrameTrade(t *testing.T) {
	data := []byte(`{"e":"trade","s":"BTCUSDT","p":"60123.40"}`)

	ev, _, err := parseFrame(data)
	require.NoError(t, err)

	trade, ok := ev.(models.Trade)
	require.True(t, ok)
	require.Equal(t, "btcusdt", trade.Symbol)
	require.Equal(t, 60123.40, trade.Price)
}

func TestParseFramePing(t *testing.T) {
	ev, ping, err := parseFrame([]byte(`{"ping":1700000000123}`))
	require.NoError(t, err)
	require.Nil(t, ev)
	require.Equal(t, int64(1700000000123), ping)
}

func TestParseFrameSubscriptionAckIgnored(t *testing.T) {
	ev, ping, err := parseFrame([]byte(`{"result":null,"id":42}`))
	require.NoError(t, err)
	require.Nil(t, ev)
	require.Zero(t, ping)
}

func TestParseFrameBadPayloads(t *testing.T) {
	_, _, err := parseFrame([]byte(`{not json`))
	require.Error(t, err)

	_, _, err = parseFrame([]byte(`{"e":"trade","s":"BTCUSDT","p":"not-a-price"}`))
	require.Error(t, err)

	_, _, err = parseFrame([]byte(`{"e":"kline","s":"ETHUSDT","k":{"t":1,"c":"oops","x":true}}`))
	require.Error(t, err)
}

// Pong replies race the keepalive pinger for the same connection; both must go
// through the write mutex or gorilla panics the process. The server floods
// exchange-level pings while the keepalive fires as fast as the ticker allows,
// and every ping must still get its pong back.
func TestReadRepliesToPingsWhileKeepaliveRuns(t *testing.T) {
	const pingCount = 200

	upgrader := websocket.Upgrader{}
	pongs := make(chan int64, pingCount)
	handlerDone := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				_, b, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var m map[string]int64
				if json.Unmarshal(b, &m) == nil {
					if v, ok := m["pong"]; ok {
						pongs <- v
					}
				}
			}
		}()

		for i := 1; i <= pingCount; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"ping":%d}`, i))); err != nil {
				return
			}
		}
		<-handlerDone
	}))
	t.Cleanup(func() {
		close(handlerDone)
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	s := &Stream{conn: conn, connected: true, pingInterval: time.Microsecond}
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, errsCh := s.Read(ctx)

	received := 0
	deadline := time.After(5 * time.Second)
	for received < pingCount {
		select {
		case <-pongs:
			received++
		case err := <-errsCh:
			t.Fatalf("stream failed after %d pongs: %v", received, err)
		case <-deadline:
			t.Fatalf("timed out with %d/%d pongs", received, pingCount)
		}
	}
}
