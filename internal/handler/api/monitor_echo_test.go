package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PairWatch/internal/domain/models"
	"PairWatch/internal/monitor"
	"PairWatch/internal/usecase"
	"PairWatch/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type noopMetrics struct{}

func (noopMetrics) RecordAlert(string)              {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordDeviation(string, float64) {}
func (noopMetrics) RecordResidual(float64)          {}
func (noopMetrics) RecordCorrelation(float64)       {}
func (noopMetrics) RecordLatency(string, float64)   {}

func newTestHandler(t *testing.T) (*MonitorEchoHandler, *monitor.CoefficientStore, *usecase.AlertDispatcher) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	store := monitor.NewCoefficientStore()
	dispatcher := usecase.NewAlertDispatcher(nil, nil, nil, noopMetrics{}, log, "log", 0, 10)
	h := NewMonitorEchoHandler(log, store, dispatcher, map[string]*usecase.MarketCollector{}, "log", nil)
	return h, store, dispatcher
}

func doRequest(h *MonitorEchoHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSnapshotEndpoint(t *testing.T) {
	h, store, _ := newTestHandler(t)
	store.PublishStatistics(0.87, 2000, 60000)
	store.StatisticsReady.Set()

	rec := doRequest(h, "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"correlation":0.87`)
	require.Contains(t, rec.Body.String(), `"statistics_ready":true`)
}

func TestAlertsEndpointServesRecentRing(t *testing.T) {
	h, _, dispatcher := newTestHandler(t)
	dispatcher.Emit(context.Background(), &models.Alert{
		Pair:      "ethusdt/btcusdt",
		Residual:  3.25,
		Timestamp: time.Now().UTC(),
	})

	rec := doRequest(h, "/api/alerts")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"residual_pct":3.25`)
}

func TestAlertsEndpointRejectsBadLimit(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "/api/alerts?limit=100000")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"backend":"log"`)
}
