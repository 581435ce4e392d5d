package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/labstack/echo/v4"
)

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// statusFor maps a provider error to an HTTP status by category.
func statusFor(err error) int {
	de, ok := dex.AsError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}

	switch de.Category() {
	case dex.CategoryValidation:
		return http.StatusBadRequest
	case dex.CategoryUpstream:
		if de.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	case dex.CategoryNetwork:
		return http.StatusServiceUnavailable
	case dex.CategoryUnsupported:
		return http.StatusNotImplemented
	case dex.CategoryOnChain, dex.CategoryPolicy:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// providerError renders a provider error with its stage and retry hint.
func (h *Handlers) providerError(c echo.Context, err error) error {
	code := statusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: code}

	if de, ok := dex.AsError(err); ok {
		resp.Error = de.Kind.Error()
		resp.Stage = string(de.Stage)
		resp.Category = string(de.Category())
		resp.Retryable = de.Retryable()
		resp.Signature = de.Signature
		resp.UpstreamStatus = de.StatusCode
		if h.DevMode && de.Err != nil {
			resp.Details = de.Err.Error()
		}
	} else if !h.DevMode {
		resp.Error = http.StatusText(code)
	}

	return c.JSON(code, resp)
}
