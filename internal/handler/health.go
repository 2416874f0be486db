package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"emailmcp-gateway/internal/service"
)

// HealthHandler serves the composite health endpoint.
type HealthHandler struct {
	service *service.GatewayService
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(svc *service.GatewayService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: svc,
		logger:  logger.With("component", "health_handler"),
	}
}

// healthResponse reports the gateway's own state plus the upstream's.
type healthResponse struct {
	Status   string          `json:"status"`
	Backend  string          `json:"backend"`
	EmailMCP json.RawMessage `json:"emailmcp"`
	Error    string          `json:"error,omitempty"`
}

// Health handles GET /api/health. The gateway itself is always "ok" once
// it can answer; the overall status reflects whether the EmailMCP health
// endpoint was reachable and returned 2xx.
func (h *HealthHandler) Health(c echo.Context) error {
	resp, err := h.service.Health(c.Request().Context())
	if err != nil {
		h.logger.Error("upstream health check failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:   "unhealthy",
			Backend:  "ok",
			EmailMCP: json.RawMessage(`"unreachable"`),
			Error:    err.Error(),
		})
	}

	if !resp.Success() {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:   "unhealthy",
			Backend:  "ok",
			EmailMCP: json.RawMessage(`"unreachable"`),
			Error:    service.ExtractDetail(resp.Body, resp.StatusCode),
		})
	}

	upstream := resp.Body
	if !json.Valid(upstream) {
		upstream = []byte(strconv.Quote(string(upstream)))
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Backend:  "ok",
		EmailMCP: upstream,
	})
}
