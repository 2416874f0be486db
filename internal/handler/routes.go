package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"emailmcp-gateway/internal/model"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, gw *GatewayHandler, health *HealthHandler) {
	api := e.Group("/api")

	api.GET("/health", health.Health)

	api.POST("/oauth/authorize", gw.Authorize)
	api.POST("/oauth/callback", gw.Callback)

	api.GET("/users/:userId/profile", gw.Profile)
	api.DELETE("/users/:userId/gmail", gw.DisconnectGmail)
	api.POST("/users/:userId/messages", gw.SendMessage)

	api.GET("/reports/users/:userId", gw.UserReport)
	api.GET("/reports/summary", gw.SummaryReport)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, model.ErrorEnvelope{Error: "Endpoint not found"})
	})
}

// ErrorHandler returns the central Echo error handler. Handlers resolve
// upstream and validation failures themselves, so anything arriving here
// is either routing-level (unknown path, wrong method, oversized body) or
// an unexpected internal failure. The latter is answered with a generic
// envelope; the detail is only logged.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			switch {
			case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
				// Method mismatches on known paths count as undefined routes.
				_ = c.JSON(http.StatusNotFound, model.ErrorEnvelope{Error: "Endpoint not found"})
				return
			case he.Code < http.StatusInternalServerError:
				_ = c.JSON(he.Code, model.ErrorEnvelope{Error: httpErrorMessage(he)})
				return
			}
		}

		logger.Error("unhandled internal error",
			"err", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
		)
		_ = c.JSON(http.StatusInternalServerError, model.ErrorEnvelope{Error: "Internal server error"})
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	return fmt.Sprint(he.Message)
}
