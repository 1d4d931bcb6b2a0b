package api

import (
	"time"

	models "PairWatch/internal/domain/models"
	drepo "PairWatch/internal/domain/repository"
	"PairWatch/internal/monitor"
	"PairWatch/internal/usecase"
	xhttp "PairWatch/pkg/http"
	xlogger "PairWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MonitorEchoHandler serves the operational API: the coefficient store
// snapshot, recent alerts, and stream health.
type MonitorEchoHandler struct {
	logger     *xlogger.Logger
	store      *monitor.CoefficientStore
	dispatcher *usecase.AlertDispatcher
	collectors map[string]*usecase.MarketCollector
	backend    string
	storage    drepo.AlertStorage // nil unless the clickhouse backend is configured
}

func NewMonitorEchoHandler(
	logger *xlogger.Logger,
	store *monitor.CoefficientStore,
	dispatcher *usecase.AlertDispatcher,
	collectors map[string]*usecase.MarketCollector,
	backend string,
	storage drepo.AlertStorage,
) *MonitorEchoHandler {
	return &MonitorEchoHandler{
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		collectors: collectors,
		backend:    backend,
		storage:    storage,
	}
}

func (h *MonitorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/alerts", h.Alerts)
	g.GET("/health", h.Health)
}

func (h *MonitorEchoHandler) Snapshot(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.store.Snapshot())
}

func (h *MonitorEchoHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Now().UTC())

	// The clickhouse backend keeps full history; everything else serves the
	// in-memory ring.
	if h.storage != nil {
		alerts, err := h.storage.Query(c.Request().Context(), from, to, req.Limit)
		if err != nil {
			h.logger.Error("alerts query failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.ListResponse(c, alerts, int64(len(alerts)))
	}

	alerts := h.dispatcher.Recent(req.Limit)
	if req.From != "" || req.To != "" {
		filtered := make([]*models.Alert, 0, len(alerts))
		for _, a := range alerts {
			if !a.Timestamp.Before(from) && !a.Timestamp.After(to) {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

func (h *MonitorEchoHandler) Health(c echo.Context) error {
	streams := make(map[string]bool, len(h.collectors))
	connected := true
	for name, col := range h.collectors {
		ok := col.IsConnected()
		streams[name] = ok
		connected = connected && ok
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"connected": connected,
		"streams":   streams,
		"backend":   h.backend,
	})
}
