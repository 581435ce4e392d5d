package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutionEvent is published once per submitted swap.
type ExecutionEvent struct {
	Signature  string          `json:"signature"`
	Status     string          `json:"status"` // confirmed | submitted_unconfirmed
	Provider   string          `json:"provider"`
	Chain      string          `json:"chain"`
	Pair       string          `json:"pair"` // <inMint>-<outMint>
	TokenIn    string          `json:"token_in"`
	TokenOut   string          `json:"token_out"`
	AmountIn   decimal.Decimal `json:"amount_in"`
	AmountOut  decimal.Decimal `json:"amount_out"` // quoted, not settled
	Recipient  string          `json:"recipient,omitempty"`
	Route      []string        `json:"route,omitempty"`
	DurationMs int64           `json:"duration_ms"`
	Timestamp  time.Time       `json:"timestamp"`
}
