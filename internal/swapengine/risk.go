package swapengine

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/shopspring/decimal"
)

// RiskConfig defines risk management parameters
type RiskConfig struct {
	// Price impact limit in percent (e.g. 5 = 5%). Zero disables the check.
	MaxPriceImpactPct decimal.Decimal

	// Max allowed slippage in bps (e.g. 1000 = 10%). Zero disables the check.
	MaxSlippageBps uint16

	// Mint whitelist (empty = allow all). The native sentinel matches as wSOL.
	AllowedMints []string

	// Simulate every swap before signing
	RequireSimulation bool
}

// DefaultRiskConfig returns conservative risk settings
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxPriceImpactPct: decimal.NewFromInt(5),
		MaxSlippageBps:    1000,
		RequireSimulation: false,
	}
}

// RiskManager enforces per-swap limits. It holds no state between swaps.
type RiskManager struct {
	config  RiskConfig
	allowed map[string]struct{}
}

// NewRiskManager creates a risk manager with the given config
func NewRiskManager(config RiskConfig) *RiskManager {
	allowed := make(map[string]struct{}, len(config.AllowedMints))
	for _, m := range config.AllowedMints {
		allowed[aggregatorMint(m)] = struct{}{}
	}
	return &RiskManager{config: config, allowed: allowed}
}

func (rm *RiskManager) Config() RiskConfig { return rm.config }

// CheckParams applies the rules that need no quote: whitelist and slippage.
func (rm *RiskManager) CheckParams(params *SwapParams) *RiskCheckResult {
	result := &RiskCheckResult{
		Allowed:           true,
		MaxPriceImpactPct: rm.config.MaxPriceImpactPct,
	}

	if !rm.isMintAllowed(params.From.Mint) || !rm.isMintAllowed(params.To.Mint) {
		result.Allowed = false
		result.TokenNotWhitelisted = true
		result.Reason = fmt.Sprintf("token not whitelisted: %s or %s", params.From.Mint, params.To.Mint)
		return result
	}

	if rm.config.MaxSlippageBps > 0 && params.SlippageBps > rm.config.MaxSlippageBps {
		result.Allowed = false
		result.SlippageTooHigh = true
		result.Reason = fmt.Sprintf("slippage %d bps exceeds max %d bps",
			params.SlippageBps, rm.config.MaxSlippageBps)
		return result
	}

	return result
}

// CheckSwap validates a quoted swap against all risk rules
func (rm *RiskManager) CheckSwap(params *SwapParams, quote *dex.Quote) *RiskCheckResult {
	result := rm.CheckParams(params)
	result.ActualPriceImpact = quote.PriceImpactPct
	if !result.Allowed {
		return result
	}

	if rm.config.MaxPriceImpactPct.IsPositive() && result.ActualPriceImpact.GreaterThan(rm.config.MaxPriceImpactPct) {
		result.Allowed = false
		result.PriceImpactTooHigh = true
		result.Reason = fmt.Sprintf("price impact %s%% exceeds max %s%%",
			result.ActualPriceImpact.StringFixed(4), rm.config.MaxPriceImpactPct.String())
	}
	return result
}

// isMintAllowed checks if a mint is in the whitelist
func (rm *RiskManager) isMintAllowed(mint string) bool {
	if len(rm.allowed) == 0 {
		return true
	}
	_, ok := rm.allowed[mint]
	return ok
}
