package swapengine

import (
	"testing"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func riskParams(from, to string, bps uint16) *SwapParams {
	return &SwapParams{
		From:        dex.TokenDescriptor{Address: from, Mint: aggregatorMint(from)},
		To:          dex.TokenDescriptor{Address: to, Mint: aggregatorMint(to)},
		SlippageBps: bps,
	}
}

func TestRiskManager_CheckSwap(t *testing.T) {
	rm := NewRiskManager(RiskConfig{
		MaxPriceImpactPct: decimal.NewFromInt(3),
		MaxSlippageBps:    300,
		AllowedMints:      []string{constants.NativeSOL, usdcMint},
	})

	tests := []struct {
		name    string
		params  *SwapParams
		impact  string
		allowed bool
		check   func(*testing.T, *RiskCheckResult)
	}{
		{
			name:    "ok",
			params:  riskParams(constants.NativeSOL, usdcMint, 50),
			impact:  "0.5",
			allowed: true,
		},
		{
			name:   "not whitelisted",
			params: riskParams(usdcMint, bonkMint, 50),
			impact: "0",
			check:  func(t *testing.T, r *RiskCheckResult) { assert.True(t, r.TokenNotWhitelisted) },
		},
		{
			name:   "impact",
			params: riskParams(usdcMint, constants.WrappedSOLMint, 50),
			impact: "3.01",
			check:  func(t *testing.T, r *RiskCheckResult) { assert.True(t, r.PriceImpactTooHigh) },
		},
		{
			name:   "slippage",
			params: riskParams(usdcMint, constants.NativeSOL, 301),
			impact: "0",
			check:  func(t *testing.T, r *RiskCheckResult) { assert.True(t, r.SlippageTooHigh) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &dex.Quote{PriceImpactPct: decimal.RequireFromString(tt.impact)}
			res := rm.CheckSwap(tt.params, q)
			assert.Equal(t, tt.allowed, res.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, res.Reason)
			}
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestRiskManager_ZeroConfigAllowsAll(t *testing.T) {
	rm := NewRiskManager(RiskConfig{})
	q := &dex.Quote{PriceImpactPct: decimal.NewFromInt(90)}

	res := rm.CheckSwap(riskParams(usdcMint, bonkMint, 5000), q)
	assert.True(t, res.Allowed)
}

func TestRiskManager_CheckParamsIgnoresImpact(t *testing.T) {
	rm := NewRiskManager(RiskConfig{
		MaxPriceImpactPct: decimal.NewFromInt(1),
		MaxSlippageBps:    100,
		AllowedMints:      []string{usdcMint, bonkMint},
	})

	assert.True(t, rm.CheckParams(riskParams(usdcMint, bonkMint, 100)).Allowed)
	assert.True(t, rm.CheckParams(riskParams(usdcMint, bonkMint, 101)).SlippageTooHigh)
	assert.True(t, rm.CheckParams(riskParams(usdcMint, constants.NativeSOL, 50)).TokenNotWhitelisted)
}
