package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Provider dex.Provider
	DevMode  bool // Enable detailed error responses in development
	Logger   *logrus.Logger

	// SwapTimeout bounds a swap request end to end; it must exceed the confirm timeout.
	SwapTimeout time.Duration
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:       true,
		Provider: h.Provider.Name(),
		Chain:    h.Provider.Chain(),
	})
}
