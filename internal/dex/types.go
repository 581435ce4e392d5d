package dex

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/shopspring/decimal"
)

// Options holds the caller-facing defaults applied to requests that leave a field empty.
type Options struct {
	Slippage                   string
	RestrictIntermediateTokens bool
}

// DefaultOptions returns the documented defaults: 0.5% slippage, restricted intermediates.
func DefaultOptions() Options {
	return Options{
		Slippage:                   constants.DefaultSlippage,
		RestrictIntermediateTokens: true,
	}
}

// QuoteRequest is the provider-neutral quote input. Amount and Slippage are decimal strings.
type QuoteRequest struct {
	Chain     string `json:"chain"`
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	Amount    string `json:"amount"`
	Slippage  string `json:"slippage,omitempty"` // percent, e.g. "0.5"

	RestrictIntermediateTokens *bool `json:"restrict_intermediate_tokens,omitempty"`
}

// WithDefaults returns a copy with empty optional fields filled from opts.
func (r QuoteRequest) WithDefaults(opts Options) QuoteRequest {
	r.Chain = strings.TrimSpace(r.Chain)
	r.FromToken = strings.TrimSpace(r.FromToken)
	r.ToToken = strings.TrimSpace(r.ToToken)
	r.Amount = strings.TrimSpace(r.Amount)
	r.Slippage = strings.TrimSpace(r.Slippage)
	if r.Slippage == "" {
		r.Slippage = opts.Slippage
	}
	if r.RestrictIntermediateTokens == nil {
		v := opts.RestrictIntermediateTokens
		r.RestrictIntermediateTokens = &v
	}
	return r
}

// SwapRequest is a quote request plus an optional third-party recipient.
type SwapRequest struct {
	QuoteRequest
	Recipient string `json:"recipient,omitempty"`
}

// WithDefaults fills the embedded quote request defaults.
func (r SwapRequest) WithDefaults(opts Options) SwapRequest {
	r.QuoteRequest = r.QuoteRequest.WithDefaults(opts)
	r.Recipient = strings.TrimSpace(r.Recipient)
	return r
}

// TokenDescriptor identifies a token and its precision.
// Address is what the caller supplied; Mint is what the aggregator understands.
type TokenDescriptor struct {
	Address  string `json:"address"`
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int32  `json:"decimals"`
	Native   bool   `json:"native"`
	Program  string `json:"program"`
}

// Quote is an immutable, normalized aggregator quote.
type Quote struct {
	Provider string          `json:"provider"`
	Chain    string          `json:"chain"`
	From     TokenDescriptor `json:"from"`
	To       TokenDescriptor `json:"to"`

	InAmount        decimal.Decimal `json:"in_amount"`
	InAmountRaw     uint64          `json:"in_amount_raw"`
	OutAmount       decimal.Decimal `json:"out_amount"`
	OutAmountRaw    uint64          `json:"out_amount_raw"`
	MinOutAmountRaw uint64          `json:"min_out_amount_raw"`
	PriceImpactPct  decimal.Decimal `json:"price_impact_pct"`
	SlippageBps     uint16          `json:"slippage_bps"`

	RestrictIntermediateTokens bool            `json:"restrict_intermediate_tokens"`
	RouteLabels                []string        `json:"route_labels,omitempty"`
	Route                      json.RawMessage `json:"route"`

	QuotedAt  time.Time `json:"quoted_at"`
	ExpiresAt time.Time `json:"expires_at"`

	claimed *atomic.Bool
}

// NewQuote attaches single-use tracking to q.
func NewQuote(q Quote) *Quote {
	q.claimed = &atomic.Bool{}
	return &q
}

// Expired reports whether the quote is past its validity window at now.
func (q *Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && !now.Before(q.ExpiresAt)
}

// Claim marks the quote as used for a transaction build. Only the first call returns true.
func (q *Quote) Claim() bool {
	if q.claimed == nil {
		return false
	}
	return q.claimed.CompareAndSwap(false, true)
}

// Status is the final state of a submitted swap.
type Status string

const (
	StatusConfirmed   Status = "confirmed"
	StatusUnconfirmed Status = "submitted_unconfirmed"
)

// SwapResult is produced once per submitted swap and never mutated.
type SwapResult struct {
	Provider  string        `json:"provider"`
	Signature string        `json:"signature"`
	Status    Status        `json:"status"`
	Recipient string        `json:"recipient,omitempty"`
	Quote     *Quote        `json:"quote"`
	Duration  time.Duration `json:"duration"`
}

// Confirmed reports whether the transaction reached the requested commitment.
func (r *SwapResult) Confirmed() bool {
	return r != nil && r.Status == StatusConfirmed
}
