package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/labstack/echo/v4"
)

// parseOptionalBool reads a boolean query value; empty means unset.
func parseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Quote handles GET /v1/quote?chain=&from=&to=&amount=&slippage=&restrictIntermediateTokens=
func (h *Handlers) Quote(c echo.Context) error {
	req := dex.QuoteRequest{
		Chain:     c.QueryParam("chain"),
		FromToken: c.QueryParam("from"),
		ToToken:   c.QueryParam("to"),
		Amount:    c.QueryParam("amount"),
		Slippage:  c.QueryParam("slippage"),
	}

	required := []struct{ name, value string }{
		{"from", req.FromToken},
		{"to", req.ToToken},
		{"amount", req.Amount},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return h.err(c, http.StatusBadRequest, "invalid "+f.name, map[string]any{f.name: "required"})
		}
	}

	restrict, err := parseOptionalBool(c.QueryParam("restrictIntermediateTokens"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid restrictIntermediateTokens", map[string]any{"restrictIntermediateTokens": "must be boolean"})
	}
	req.RestrictIntermediateTokens = restrict

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	q, err := h.Provider.GetQuote(ctx, req)
	if err != nil {
		return h.providerError(c, err)
	}
	return c.JSON(http.StatusOK, toQuoteResponse(q))
}
