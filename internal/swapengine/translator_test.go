package swapengine

import (
	"context"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(agg Aggregator) *Translator {
	return NewTranslator(constants.ProviderJupiter, agg, newTestDecision(&stubResolver{}), 30*time.Second, quietLogger())
}

func TestGetQuote_TranslatesRequest(t *testing.T) {
	agg := &fakeAggregator{}
	tr := newTestTranslator(agg)

	q, err := tr.GetQuote(context.Background(), swapReq(constants.NativeSOL, usdcMint, "2").QuoteRequest)
	require.NoError(t, err)

	require.Len(t, agg.quoteReqs, 1)
	req := agg.quoteReqs[0]
	assert.Equal(t, constants.WrappedSOLMint, req.InputMint)
	assert.Equal(t, usdcMint, req.OutputMint)
	assert.Equal(t, "2000000000", req.Amount)
	assert.Equal(t, uint16(50), req.SlippageBps)
	assert.True(t, req.RestrictIntermediateTokens)

	assert.Equal(t, constants.ProviderJupiter, q.Provider)
	assert.Equal(t, constants.SolanaChainID, q.Chain)
	assert.True(t, q.From.Native)
	assert.True(t, q.InAmount.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, uint64(1_000_000), q.OutAmountRaw)
	assert.True(t, q.OutAmount.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, uint64(995_000), q.MinOutAmountRaw)
	assert.True(t, q.PriceImpactPct.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, []string{"Whirlpool"}, q.RouteLabels)
	assert.NotEmpty(t, q.Route)
	assert.Equal(t, 30*time.Second, q.ExpiresAt.Sub(q.QuotedAt))
}

func TestGetQuote_ZeroAmountNoNetwork(t *testing.T) {
	agg := &fakeAggregator{}
	tr := newTestTranslator(agg)

	_, err := tr.GetQuote(context.Background(), swapReq(usdcMint, bonkMint, "0").QuoteRequest)
	assert.ErrorIs(t, err, dex.ErrInvalidAmount)
	assert.Zero(t, agg.quoteCalls)
}

func TestGetQuote_RestrictionFlagOff(t *testing.T) {
	agg := &fakeAggregator{}
	tr := newTestTranslator(agg)
	off := false
	req := swapReq(usdcMint, bonkMint, "1").QuoteRequest
	req.RestrictIntermediateTokens = &off

	q, err := tr.GetQuote(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, agg.quoteReqs[0].RestrictIntermediateTokens)
	assert.False(t, q.RestrictIntermediateTokens)
}

func TestGetQuote_RoutingOptions(t *testing.T) {
	agg := &fakeAggregator{}
	tr := newTestTranslator(agg).WithRouting(RoutingConfig{
		OnlyDirectRoutes: true,
		MaxAccounts:      32,
		ExcludeDexes:     []string{"Saber"},
	})

	_, err := tr.GetQuote(context.Background(), swapReq(usdcMint, bonkMint, "1").QuoteRequest)
	require.NoError(t, err)

	require.Len(t, agg.quoteReqs, 1)
	req := agg.quoteReqs[0]
	assert.True(t, req.OnlyDirectRoutes)
	assert.Equal(t, uint64(32), req.MaxAccounts)
	assert.Equal(t, []string{"Saber"}, req.ExcludeDexes)
	assert.True(t, req.RestrictIntermediateTokens)
}

func TestGetQuote_NeverCached(t *testing.T) {
	agg := &fakeAggregator{}
	tr := newTestTranslator(agg)
	req := swapReq(usdcMint, bonkMint, "1").QuoteRequest

	q1, err := tr.GetQuote(context.Background(), req)
	require.NoError(t, err)
	q2, err := tr.GetQuote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, agg.quoteCalls)
	assert.NotEqual(t, string(q1.Route), string(q2.Route))
}

func TestNormalize_Rejects(t *testing.T) {
	tr := newTestTranslator(&fakeAggregator{})
	params, err := tr.decision.Prepare(context.Background(), swapReq(usdcMint, bonkMint, "1"))
	require.NoError(t, err)

	base := func() *jupiter.QuoteResponse {
		return quoteResponse(ToAggregatorRequest(params), "500", "0", 1)
	}

	tests := []struct {
		name   string
		mutate func(*jupiter.QuoteResponse)
	}{
		{"wrong input mint", func(r *jupiter.QuoteResponse) { r.InputMint = bonkMint }},
		{"wrong output mint", func(r *jupiter.QuoteResponse) { r.OutputMint = usdcMint }},
		{"bad out amount", func(r *jupiter.QuoteResponse) { r.OutAmount = "12.5" }},
		{"zero out amount", func(r *jupiter.QuoteResponse) { r.OutAmount = "0" }},
		{"no raw payload", func(r *jupiter.QuoteResponse) { r.Raw = nil }},
		{"unparseable price impact", func(r *jupiter.QuoteResponse) { r.PriceImpactPct = "NaN%" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := base()
			tt.mutate(res)
			_, err := tr.Normalize(params, res)
			assert.ErrorIs(t, err, dex.ErrQuoteFetch)
		})
	}
}

func TestNormalize_UsesThreshold(t *testing.T) {
	tr := newTestTranslator(&fakeAggregator{})
	params, err := tr.decision.Prepare(context.Background(), swapReq(usdcMint, bonkMint, "1"))
	require.NoError(t, err)

	res := quoteResponse(ToAggregatorRequest(params), "1000", "-0.02", 1)
	res.OtherAmountThreshold = "990"

	q, err := tr.Normalize(params, res)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), q.MinOutAmountRaw)
	assert.True(t, q.PriceImpactPct.Equal(decimal.NewFromInt(2)))
	assert.True(t, q.OutAmount.Equal(decimal.RequireFromString("0.01")))
}
