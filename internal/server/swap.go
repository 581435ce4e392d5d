package server

import (
	"net/http"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Swap handles POST /v1/swap. An unconfirmed submission is a 202, not an error.
func (h *Handlers) Swap(c echo.Context) error {
	var body SwapRequestBody
	if err := c.Bind(&body); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	req := dex.SwapRequest{
		QuoteRequest: dex.QuoteRequest{
			Chain:                      body.Chain,
			FromToken:                  body.FromToken,
			ToToken:                    body.ToToken,
			Amount:                     body.Amount,
			Slippage:                   body.Slippage,
			RestrictIntermediateTokens: body.RestrictIntermediateTokens,
		},
		Recipient: body.Recipient,
	}

	timeout := h.SwapTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), timeout)
	defer cancel()

	res, err := h.Provider.Swap(ctx, req)
	if err != nil {
		return h.providerError(c, err)
	}

	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{
			"signature": res.Signature,
			"status":    res.Status,
			"recipient": res.Recipient,
		}).Info("Swap request served")
	}

	code := http.StatusOK
	if !res.Confirmed() {
		code = http.StatusAccepted
	}
	return c.JSON(code, toSwapResponse(res))
}
