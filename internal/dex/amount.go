package dex

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	maxUint64  = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)
	hundred    = decimal.NewFromInt(100)
	bpsPerUnit = decimal.NewFromInt(100)
)

// ParseAmount parses a human decimal amount. It must be strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a decimal number", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %q must be greater than zero", s)
	}
	return d, nil
}

// ToRaw scales a human amount to base units, truncating digits below one unit.
func ToRaw(amount decimal.Decimal, decimals int32) (uint64, error) {
	raw := amount.Shift(decimals).Truncate(0)
	if raw.Sign() <= 0 {
		return 0, fmt.Errorf("amount %s is below the smallest unit (10^-%d)", amount, decimals)
	}
	if raw.GreaterThan(maxUint64) {
		return 0, fmt.Errorf("amount %s overflows base units", amount)
	}
	return raw.BigInt().Uint64(), nil
}

// ToHuman converts base units to a human amount: raw / 10^decimals, exactly.
func ToHuman(raw uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -decimals)
}

// ParseSlippage parses a slippage percent in [0, 100].
func ParseSlippage(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("slippage %q is not a decimal number", s)
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("slippage %s%% out of range [0, 100]", d)
	}
	return d, nil
}

// SlippageToBps converts a percent to basis points (0.5 -> 50), truncating fractions of a bp.
func SlippageToBps(percent decimal.Decimal) uint16 {
	return uint16(percent.Mul(bpsPerUnit).Truncate(0).IntPart())
}

// ApplySlippage returns the minimum acceptable output for amountOut under slippageBps.
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10000 {
		return 0
	}

	// minOut = amountOut * (10000 - bps) / 10000
	result := new(big.Int).Mul(
		new(big.Int).SetUint64(amountOut),
		new(big.Int).SetUint64(10000-uint64(slippageBps)),
	)
	result.Div(result, big.NewInt(10000))
	return result.Uint64()
}

// FractionToPercent turns an aggregator price impact fraction ("0.0012") into a
// percent in [0, 100] (0.12). An empty value means no impact was reported.
func FractionToPercent(fraction string) (decimal.Decimal, error) {
	if fraction == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(fraction)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price impact %q: %w", fraction, err)
	}
	pct := d.Abs().Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred, nil
	}
	return pct, nil
}
