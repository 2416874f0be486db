package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"emailmcp-gateway/internal/client"
	"emailmcp-gateway/internal/model"
	"emailmcp-gateway/internal/service"
)

// invalidJSONMessage is returned when a request body cannot be parsed at all.
const invalidJSONMessage = "invalid JSON body"

// GatewayHandler exposes the pass-through routes, one per EmailMCP endpoint.
type GatewayHandler struct {
	service *service.GatewayService
	logger  *slog.Logger
}

// NewGatewayHandler creates a GatewayHandler.
func NewGatewayHandler(svc *service.GatewayService, logger *slog.Logger) *GatewayHandler {
	return &GatewayHandler{
		service: svc,
		logger:  logger.With("component", "gateway_handler"),
	}
}

// Authorize handles POST /api/oauth/authorize.
func (h *GatewayHandler) Authorize(c echo.Context) error {
	var req model.AuthorizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Error: invalidJSONMessage})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Error: model.AuthorizeFieldsRequired})
	}

	body, err := h.service.Authorize(c.Request().Context(), req)
	return h.relay(c, body, err)
}

// Callback handles POST /api/oauth/callback. Any inbound body is ignored;
// the upstream call carries only the code and state query parameters. The
// values are taken from the raw query string, not the decoded form, so the
// upstream receives the exact bytes the client sent.
func (h *GatewayHandler) Callback(c echo.Context) error {
	raw := c.Request().URL.RawQuery
	params := model.CallbackParams{
		Code:  rawQueryValue(raw, "code"),
		State: rawQueryValue(raw, "state"),
	}
	if err := params.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Error: model.CallbackFieldsRequired})
	}

	body, err := h.service.CompleteCallback(c.Request().Context(), params.Code, params.State)
	return h.relay(c, body, err)
}

// Profile handles GET /api/users/:userId/profile.
func (h *GatewayHandler) Profile(c echo.Context) error {
	body, err := h.service.UserProfile(c.Request().Context(), c.Param("userId"))
	return h.relay(c, body, err)
}

// DisconnectGmail handles DELETE /api/users/:userId/gmail.
func (h *GatewayHandler) DisconnectGmail(c echo.Context) error {
	body, err := h.service.DisconnectGmail(c.Request().Context(), c.Param("userId"))
	return h.relay(c, body, err)
}

// SendMessage handles POST /api/users/:userId/messages. The payload is
// decoded as a raw map so any fields beyond to/subject/body reach the
// upstream unmodified.
func (h *GatewayHandler) SendMessage(c echo.Context) error {
	var payload model.MessagePayload
	// An absent body (io.EOF) means all required fields are missing;
	// anything else that fails to decode is a syntax error.
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Error: invalidJSONMessage})
	}
	if err := payload.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Error: model.MessageFieldsRequired})
	}

	body, err := h.service.SendMessage(c.Request().Context(), c.Param("userId"), payload)
	return h.relay(c, body, err)
}

// UserReport handles GET /api/reports/users/:userId. The date values are
// taken from the raw query string so they reach the upstream byte-for-byte.
func (h *GatewayHandler) UserReport(c echo.Context) error {
	raw := c.Request().URL.RawQuery
	body, err := h.service.UserReport(
		c.Request().Context(),
		c.Param("userId"),
		rawQueryValue(raw, "start_date"),
		rawQueryValue(raw, "end_date"),
	)
	return h.relay(c, body, err)
}

// SummaryReport handles GET /api/reports/summary.
func (h *GatewayHandler) SummaryReport(c echo.Context) error {
	body, err := h.service.SummaryReport(c.Request().Context())
	return h.relay(c, body, err)
}

// relay is the single normalization point for every pass-through route:
// a successful upstream call is answered 200 with the body byte-for-byte,
// an *UpstreamError keeps the upstream status, and anything else (a
// transport failure) becomes a 500 carrying the error message.
func (h *GatewayHandler) relay(c echo.Context, body []byte, err error) error {
	if err == nil {
		return c.JSONBlob(http.StatusOK, body)
	}

	h.logger.Error("upstream call failed",
		"err", err,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
	)

	var ue *client.UpstreamError
	if errors.As(err, &ue) {
		return c.JSON(ue.StatusCode, model.ErrorEnvelope{Error: ue.Detail})
	}

	return c.JSON(http.StatusInternalServerError, model.ErrorEnvelope{Error: err.Error()})
}

// rawQueryValue returns the value for key from a raw query string without
// percent-decoding it. Forwarded values must keep their inbound encoding;
// decoding and re-concatenating would let encoded "&", "+" and "%" bytes
// change meaning on the upstream's parse.
func rawQueryValue(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v
		}
	}
	return ""
}
