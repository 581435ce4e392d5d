package swapengine

import (
	"context"
	"errors"
	"testing"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/tokens"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	err   error
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context, address string) (dex.TokenDescriptor, error) {
	s.calls++
	if s.err != nil {
		return dex.TokenDescriptor{}, s.err
	}
	return tokens.NewRegistry(nil, nil, "", quietLogger()).Resolve(ctx, address)
}

func newTestDecision(r TokenResolver) *DecisionEngine {
	return NewDecisionEngine(constants.SolanaChainID, dex.DefaultOptions(), r)
}

func TestPrepare_AppliesDefaults(t *testing.T) {
	de := newTestDecision(&stubResolver{})

	params, err := de.Prepare(context.Background(), swapReq(constants.NativeSOL, usdcMint, " 0.25 "))
	require.NoError(t, err)

	assert.True(t, params.From.Native)
	assert.Equal(t, constants.WrappedSOLMint, params.From.Mint)
	assert.Equal(t, uint64(250_000_000), params.AmountInRaw)
	assert.True(t, params.Slippage.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, uint16(50), params.SlippageBps)
	assert.True(t, params.RestrictIntermediateTokens)
	assert.True(t, params.WrapAndUnwrapSol())
	assert.Nil(t, params.Recipient)
	assert.Equal(t, constants.WrappedSOLMint+"-"+usdcMint, params.Pair())
}

func TestPrepare_ExplicitOverrides(t *testing.T) {
	de := newTestDecision(&stubResolver{})
	off := false
	req := swapReq(usdcMint, bonkMint, "12.345678")
	req.Slippage = "1.25"
	req.RestrictIntermediateTokens = &off

	params, err := de.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_345_678), params.AmountInRaw)
	assert.Equal(t, uint16(125), params.SlippageBps)
	assert.False(t, params.RestrictIntermediateTokens)
	assert.False(t, params.WrapAndUnwrapSol())
}

func TestPrepare_TruncatesExcessPrecision(t *testing.T) {
	de := newTestDecision(&stubResolver{})

	params, err := de.Prepare(context.Background(), swapReq(usdcMint, bonkMint, "1.0000009"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), params.AmountInRaw)
}

func TestValidate_IsOffline(t *testing.T) {
	r := &stubResolver{}
	de := newTestDecision(r)

	_, err := de.Validate(swapReq(usdcMint, bonkMint, "0").WithDefaults(dex.DefaultOptions()))
	assert.ErrorIs(t, err, dex.ErrInvalidAmount)
	assert.Zero(t, r.calls)
}

func TestPrepare_TokenErrors(t *testing.T) {
	t.Run("invalid token is validation", func(t *testing.T) {
		de := newTestDecision(&stubResolver{err: tokens.ErrNotMint})
		_, err := de.Prepare(context.Background(), swapReq(usdcMint, bonkMint, "1"))
		require.ErrorIs(t, err, dex.ErrInvalidToken)
		de2, _ := dex.AsError(err)
		assert.Equal(t, dex.StageValidate, de2.Stage)
	})

	t.Run("lookup failure is retryable upstream", func(t *testing.T) {
		de := newTestDecision(&stubResolver{err: errors.New("connection refused")})
		_, err := de.Prepare(context.Background(), swapReq(usdcMint, bonkMint, "1"))
		require.ErrorIs(t, err, dex.ErrQuoteFetch)
		e, _ := dex.AsError(err)
		assert.True(t, e.Retryable())
	})
}

func TestValidate_Slippage(t *testing.T) {
	de := newTestDecision(&stubResolver{})

	for _, s := range []string{"-0.1", "100.5", "x"} {
		req := swapReq(usdcMint, bonkMint, "1")
		req.Slippage = s
		_, err := de.Validate(req)
		assert.ErrorIs(t, err, dex.ErrInvalidSlippage, s)
	}

	req := swapReq(usdcMint, bonkMint, "1")
	req.Slippage = "0"
	_, err := de.Validate(req)
	assert.NoError(t, err)
}
