package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"emailmcp-gateway/internal/config"
)

// CORS allows the configured frontend origin with credentials. When no
// frontend URL is set, any origin is allowed. That is the historical
// default, preserved for compatibility even though it is risky combined
// with credentials.
func CORS(cfg *config.Config) echo.MiddlewareFunc {
	corsCfg := echomw.CORSConfig{
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}
	if cfg.CORS.AllowAllOrigins() {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.UnsafeWildcardOriginWithAllowCredentials = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORS.FrontendURL}
	}
	return echomw.CORSWithConfig(corsCfg)
}
