package api

import (
	"net/http"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/internal/usecase"
	xhttp "VolScan/pkg/http"
	xlogger "VolScan/pkg/logger"
	xutil "VolScan/pkg/util"

	"github.com/labstack/echo/v4"
)

// StatsProvider exposes scheduler counters.
type StatsProvider interface {
	Stats() usecase.Stats
}

// ScanEchoHandler serves the read-only scanner API.
type ScanEchoHandler struct {
	logger    *xlogger.Logger
	scheduler StatsProvider
	board     *usecase.ScanBoard
	ledger    *usecase.CooldownLedger
	now       func() time.Time
}

var _ xhttp.Handler = (*ScanEchoHandler)(nil)

func NewScanEchoHandler(logger *xlogger.Logger, scheduler StatsProvider, board *usecase.ScanBoard, ledger *usecase.CooldownLedger) *ScanEchoHandler {
	return &ScanEchoHandler{logger: logger, scheduler: scheduler, board: board, ledger: ledger, now: time.Now}
}

func (h *ScanEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/scan", h.Scan)
	g.GET("/alerts", h.Alerts)
	g.GET("/cooldowns", h.Cooldowns)
}

type healthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

func (h *ScanEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", State: h.scheduler.Stats().State})
}

type statusResponse struct {
	usecase.Stats
	Universe  int                `json:"universe"`
	LastCycle models.CycleReport `json:"last_cycle"`
}

func (h *ScanEchoHandler) Status(c echo.Context) error {
	return xhttp.OK(c, statusResponse{
		Stats:     h.scheduler.Stats(),
		Universe:  h.board.UniverseSize(),
		LastCycle: h.board.Report(),
	})
}

func (h *ScanEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if errs := xhttp.Bind(c, req); errs != nil {
		return xhttp.Invalid(c, errs)
	}
	rows := h.board.Latest(req.Limit, req.MinAbsZ)
	return xhttp.List(c, rows, len(rows))
}

func (h *ScanEchoHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if errs := xhttp.Bind(c, req); errs != nil {
		return xhttp.Invalid(c, errs)
	}

	var since time.Time
	if req.Since != "" {
		t, ok := xutil.ParseTime(req.Since)
		if !ok {
			h.logger.Debug("alerts bad since", xlogger.String("since", req.Since))
			return xhttp.Invalid(c, xhttp.InvalidField("since", "since must be RFC3339, a date or unix seconds, got %q", req.Since))
		}
		since = t
	}

	rows := h.board.Alerts(req.Limit, since)
	return xhttp.List(c, rows, len(rows))
}

type cooldownRow struct {
	models.CooldownStatus
	RemainingSeconds float64 `json:"remaining_seconds"`
}

func (h *ScanEchoHandler) Cooldowns(c echo.Context) error {
	active := h.ledger.Active(h.now())
	rows := make([]cooldownRow, len(active))
	for i, st := range active {
		rows[i] = cooldownRow{CooldownStatus: st, RemainingSeconds: st.Remaining.Seconds()}
	}
	return xhttp.List(c, rows, len(rows))
}
