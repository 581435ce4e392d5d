package swapengine

import (
	"context"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/flags"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Aggregator is the quote/build backend. *jupiter.Client implements it.
type Aggregator interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error)
	Swap(ctx context.Context, req jupiter.SwapRequest) (*jupiter.SwapResponse, error)
}

// TokenResolver maps a caller address to mint metadata. *tokens.Registry implements it.
type TokenResolver interface {
	Resolve(ctx context.Context, address string) (dex.TokenDescriptor, error)
}

// Signer holds the swapping wallet's key. *wallet.Wallet implements it.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTx(tx *solana.Transaction) error
}

// Network is the Solana node surface the executor needs. *wallet.Wallet implements it.
type Network interface {
	AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error)
	BuildTransaction(ctx context.Context, ixs []solana.Instruction) (*solana.Transaction, uint64, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*wallet.SimulationResult, error)
	SendTx(ctx context.Context, tx *solana.Transaction, opts *wallet.SendOptions) (string, error)
	ConfirmTransaction(ctx context.Context, signature, commitment string, timeout time.Duration, lastValidBlockHeight uint64) error
}

// HaltSwitch reports operator halts. *flags.Store implements it.
type HaltSwitch interface {
	Halted(ctx context.Context, provider string) (*flags.Flag, error)
}

// SwapParams are validated, resolved swap inputs. Built fresh for every call.
type SwapParams struct {
	Chain string
	From  dex.TokenDescriptor
	To    dex.TokenDescriptor

	FromMint solana.PublicKey
	ToMint   solana.PublicKey

	AmountIn    decimal.Decimal
	AmountInRaw uint64

	Slippage                   decimal.Decimal // percent
	SlippageBps                uint16
	RestrictIntermediateTokens bool

	// Recipient is nil when output goes to the wallet.
	Recipient *solana.PublicKey

	ParsedAt time.Time
}

// WrapAndUnwrapSol reports whether either leg is native SOL.
func (p *SwapParams) WrapAndUnwrapSol() bool {
	return p.From.Native || p.To.Native
}

// Pair is the <inMint>-<outMint> key used for events and logs.
func (p *SwapParams) Pair() string {
	return p.From.Mint + "-" + p.To.Mint
}

// RiskCheckResult contains risk validation outcome
type RiskCheckResult struct {
	Allowed bool
	Reason  string

	TokenNotWhitelisted bool
	PriceImpactTooHigh  bool
	SlippageTooHigh     bool

	MaxPriceImpactPct decimal.Decimal
	ActualPriceImpact decimal.Decimal
}
