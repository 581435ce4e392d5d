package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := e.Group("/v1")
	v1.Use(SetJSONContentType)
	v1.Use(SetNoCacheHeaders)
	v1.GET("/health", h.Health)

	// Everything past health needs the key when one is configured.
	var auth []echo.MiddlewareFunc
	if cfg.APIKey != "" {
		auth = append(auth, middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) == 1, nil
			},
		}))
	}
	v1.GET("/quote", h.Quote, auth...)

	swapLimit := cfg.SwapRate
	if swapLimit <= 0 {
		swapLimit = 1
	}
	swapMW := append(append([]echo.MiddlewareFunc{}, auth...), middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(swapLimit),
		Burst:     2,
		ExpiresIn: 2 * time.Minute,
	})))
	v1.POST("/swap", h.Swap, swapMW...)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
