package server

import (
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error          string `json:"error"`
	Code           int    `json:"code"`
	Stage          string `json:"stage,omitempty"`
	Category       string `json:"category,omitempty"`
	Retryable      bool   `json:"retryable,omitempty"`
	Signature      string `json:"signature,omitempty"` // set when a transaction was submitted
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	Details        any    `json:"details,omitempty"` // dev mode only
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	Chain    string `json:"chain"`
}

// QuoteResponse is the public view of a quote. Route stays opaque.
type QuoteResponse struct {
	Provider       string              `json:"provider"`
	Chain          string              `json:"chain"`
	From           dex.TokenDescriptor `json:"from"`
	To             dex.TokenDescriptor `json:"to"`
	InAmount       string              `json:"in_amount"`
	OutAmount      string              `json:"out_amount"`
	MinOutAmount   string              `json:"min_out_amount"`
	PriceImpactPct string              `json:"price_impact_pct"`
	SlippageBps    uint16              `json:"slippage_bps"`
	Restricted     bool                `json:"restrict_intermediate_tokens"`
	Route          []string            `json:"route,omitempty"`
	QuotedAt       time.Time           `json:"quoted_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
}

// SwapRequestBody is the POST /v1/swap payload.
type SwapRequestBody struct {
	Chain                      string `json:"chain"`
	FromToken                  string `json:"from_token"`
	ToToken                    string `json:"to_token"`
	Amount                     string `json:"amount"`
	Slippage                   string `json:"slippage"`
	RestrictIntermediateTokens *bool  `json:"restrict_intermediate_tokens"`
	Recipient                  string `json:"recipient"`
}

// SwapResponse reports a submitted swap.
type SwapResponse struct {
	Provider   string        `json:"provider"`
	Signature  string        `json:"signature"`
	Status     dex.Status    `json:"status"`
	Confirmed  bool          `json:"confirmed"`
	Recipient  string        `json:"recipient,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Quote      QuoteResponse `json:"quote"`
}

func toQuoteResponse(q *dex.Quote) QuoteResponse {
	return QuoteResponse{
		Provider:       q.Provider,
		Chain:          q.Chain,
		From:           q.From,
		To:             q.To,
		InAmount:       q.InAmount.String(),
		OutAmount:      q.OutAmount.String(),
		MinOutAmount:   dex.ToHuman(q.MinOutAmountRaw, q.To.Decimals).String(),
		PriceImpactPct: q.PriceImpactPct.String(),
		SlippageBps:    q.SlippageBps,
		Restricted:     q.RestrictIntermediateTokens,
		Route:          q.RouteLabels,
		QuotedAt:       q.QuotedAt,
		ExpiresAt:      q.ExpiresAt,
	}
}

func toSwapResponse(r *dex.SwapResult) SwapResponse {
	out := SwapResponse{
		Provider:   r.Provider,
		Signature:  r.Signature,
		Status:     r.Status,
		Confirmed:  r.Confirmed(),
		Recipient:  r.Recipient,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Quote != nil {
		out.Quote = toQuoteResponse(r.Quote)
	}
	return out
}
