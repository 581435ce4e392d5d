// Package dex defines the provider-neutral contract for quoting and executing swaps.
package dex

import "context"

// Provider is implemented by every swap aggregator integration.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	// Chain is the chain identifier the provider serves.
	Chain() string
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
	// Swap quotes, builds, signs, submits and confirms. It never reuses a quote.
	Swap(ctx context.Context, req SwapRequest) (*SwapResult, error)
	Close() error
}
