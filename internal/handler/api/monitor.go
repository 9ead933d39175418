// Package api exposes the monitor over HTTP: latest results, allocations,
// trend, run triggering, evaluation history, and a WebSocket progress feed.
package api

import (
	"errors"
	"sort"

	"NavPulse/internal/allocator"
	"NavPulse/internal/domain/models"
	drepo "NavPulse/internal/domain/repository"
	"NavPulse/internal/usecase"
	xhttp "NavPulse/pkg/http"
	xlogger "NavPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MonitorHandler implements Echo-based HTTP handlers over the Monitor.
type MonitorHandler struct {
	logger   *xlogger.Logger
	monitor  *usecase.Monitor
	history  drepo.HistoryStore
	progress *ProgressHub
}

// NewMonitorHandler creates the handler. history and progress may be nil.
func NewMonitorHandler(logger *xlogger.Logger, monitor *usecase.Monitor, history drepo.HistoryStore, progress *ProgressHub) *MonitorHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &MonitorHandler{logger: logger, monitor: monitor, history: history, progress: progress}
}

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/results", h.Results)
	g.GET("/allocations", h.Allocations)
	g.GET("/trend", h.Trend)
	g.POST("/run", h.Run)
	g.GET("/history", h.History)
	g.GET("/health", h.Health)
	if h.progress != nil {
		g.GET("/progress", h.progress.Serve)
	}
}

// Results returns the latest batch's per-fund results, sortable and
// filterable by signal.
func (h *MonitorHandler) Results(c echo.Context) error {
	req := &models.ResultsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report := h.monitor.Latest()
	if report == nil {
		return xhttp.NotFoundResponse(c, "no batch has run yet")
	}

	results := make([]models.Result, 0, len(report.Results))
	for _, r := range report.Results {
		if req.Signal != "" && r.Signal.Action.String() != req.Signal {
			continue
		}
		results = append(results, r)
	}
	sortResults(results, req.Sort)

	return xhttp.ListResponse(c, results, int64(len(results)))
}

// Allocations returns the latest batch's budget split.
func (h *MonitorHandler) Allocations(c echo.Context) error {
	report := h.monitor.Latest()
	if report == nil {
		return xhttp.NotFoundResponse(c, "no batch has run yet")
	}
	return xhttp.SuccessResponse(c, report.Allocations)
}

// Trend returns the latest market-trend state.
func (h *MonitorHandler) Trend(c echo.Context) error {
	report := h.monitor.Latest()
	if report == nil {
		return xhttp.NotFoundResponse(c, "no batch has run yet")
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"ran_at":       report.RanAt,
		"market_trend": report.Trend,
	})
}

// Run triggers a batch evaluation and returns its report.
func (h *MonitorHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.monitor.RunWith(c.Request().Context(), req.Funds, req.Budget)
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			return xhttp.ConflictResponse(c, "a run is already in progress")
		}
		h.logger.Error("run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// History returns stored evaluation rows for one fund, newest first.
func (h *MonitorHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.NotFoundResponse(c, "history storage is not configured")
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.history.Query(c.Request().Context(), req.Fund, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.String("fund", req.Fund), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health reports liveness plus the history backend when configured.
func (h *MonitorHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.history != nil {
		if err := h.history.Health(c.Request().Context()); err != nil {
			status["history"] = "unreachable"
			return xhttp.SuccessResponse(c, status)
		}
		status["history"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}

// sortResults orders in place. Undefined readings sort last.
func sortResults(results []models.Result, key string) {
	less := func(a, b models.Reading, asc bool) bool {
		switch {
		case a.Defined && !b.Defined:
			return true
		case !a.Defined:
			return false
		case asc:
			return a.Value < b.Value
		default:
			return a.Value > b.Value
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch key {
		case "score":
			return allocator.Score(a) > allocator.Score(b)
		case "growth":
			return less(a.Growth, b.Growth, false)
		case "fund":
			return a.FundID < b.FundID
		default: // rsi, most oversold first
			return less(a.RSI, b.RSI, true)
		}
	})
}
