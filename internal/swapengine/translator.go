package swapengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/metrics"
	"github.com/sirupsen/logrus"
)

// RoutingConfig narrows the aggregator's route search. Zero values keep Jupiter's defaults.
type RoutingConfig struct {
	OnlyDirectRoutes bool
	MaxAccounts      uint64
	ExcludeDexes     []string
}

func (r RoutingConfig) apply(req *jupiter.QuoteRequest) {
	req.OnlyDirectRoutes = r.OnlyDirectRoutes
	req.MaxAccounts = r.MaxAccounts
	if len(r.ExcludeDexes) > 0 {
		req.ExcludeDexes = append([]string(nil), r.ExcludeDexes...)
	}
}

// Translator converts between provider-neutral requests and the aggregator wire format.
type Translator struct {
	provider string
	agg      Aggregator
	decision *DecisionEngine
	quoteTTL time.Duration
	routing  RoutingConfig
	now      func() time.Time
	logger   *logrus.Logger
}

func NewTranslator(provider string, agg Aggregator, decision *DecisionEngine, quoteTTL time.Duration, logger *logrus.Logger) *Translator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Translator{
		provider: provider,
		agg:      agg,
		decision: decision,
		quoteTTL: quoteTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func (t *Translator) WithRouting(r RoutingConfig) *Translator {
	t.routing = r
	return t
}

// GetQuote validates req, then fetches and normalizes one fresh quote.
func (t *Translator) GetQuote(ctx context.Context, req dex.QuoteRequest) (*dex.Quote, error) {
	params, err := t.decision.Prepare(ctx, dex.SwapRequest{QuoteRequest: req})
	if err != nil {
		t.record(err)
		return nil, err
	}

	q, err := t.Quote(ctx, params)
	t.record(err)
	return q, err
}

// Quote performs the QUOTE step for already prepared params. It never caches.
func (t *Translator) Quote(ctx context.Context, params *SwapParams) (*dex.Quote, error) {
	req := ToAggregatorRequest(params)
	t.routing.apply(&req)

	res, err := t.agg.Quote(ctx, req)
	if err != nil {
		return nil, quoteFetchError(err)
	}

	q, err := t.Normalize(params, res)
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"pair":         params.Pair(),
		"in_raw":       q.InAmountRaw,
		"out_raw":      q.OutAmountRaw,
		"slippage_bps": q.SlippageBps,
		"route":        q.RouteLabels,
	}).Debug("Quote received")

	return q, nil
}

// ToAggregatorRequest builds the /quote query. The restriction flag is always sent.
func ToAggregatorRequest(params *SwapParams) jupiter.QuoteRequest {
	return jupiter.QuoteRequest{
		InputMint:                  params.From.Mint,
		OutputMint:                 params.To.Mint,
		Amount:                     strconv.FormatUint(params.AmountInRaw, 10),
		SlippageBps:                params.SlippageBps,
		RestrictIntermediateTokens: params.RestrictIntermediateTokens,
	}
}

// Normalize converts an aggregator quote into a dex.Quote. Amounts are exact.
func (t *Translator) Normalize(params *SwapParams, res *jupiter.QuoteResponse) (*dex.Quote, error) {
	if res == nil {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, errors.New("empty quote response"))
	}
	if res.InputMint != "" && res.InputMint != params.From.Mint {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch,
			fmt.Errorf("quote input mint %s does not match request %s", res.InputMint, params.From.Mint))
	}
	if res.OutputMint != "" && res.OutputMint != params.To.Mint {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch,
			fmt.Errorf("quote output mint %s does not match request %s", res.OutputMint, params.To.Mint))
	}

	outRaw, err := strconv.ParseUint(res.OutAmount, 10, 64)
	if err != nil {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, fmt.Errorf("bad outAmount %q: %w", res.OutAmount, err))
	}
	if outRaw == 0 {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, errors.New("quote has zero output"))
	}

	inRaw := params.AmountInRaw
	if res.InAmount != "" {
		if v, err := strconv.ParseUint(res.InAmount, 10, 64); err == nil {
			inRaw = v
		}
	}

	minOut := dex.ApplySlippage(outRaw, params.SlippageBps)
	if res.OtherAmountThreshold != "" {
		if v, err := strconv.ParseUint(res.OtherAmountThreshold, 10, 64); err == nil {
			minOut = v
		}
	}

	impact, err := dex.FractionToPercent(res.PriceImpactPct)
	if err != nil {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, err)
	}

	if len(res.Raw) == 0 {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, errors.New("quote has no route payload"))
	}

	now := t.now()
	q := dex.Quote{
		Provider:                   t.provider,
		Chain:                      params.Chain,
		From:                       params.From,
		To:                         params.To,
		InAmount:                   dex.ToHuman(inRaw, params.From.Decimals),
		InAmountRaw:                inRaw,
		OutAmountRaw:               outRaw,
		OutAmount:                  dex.ToHuman(outRaw, params.To.Decimals),
		MinOutAmountRaw:            minOut,
		PriceImpactPct:             impact,
		SlippageBps:                params.SlippageBps,
		RestrictIntermediateTokens: params.RestrictIntermediateTokens,
		RouteLabels:                res.Labels(),
		Route:                      append([]byte(nil), res.Raw...),
		QuotedAt:                   now,
	}
	if t.quoteTTL > 0 {
		q.ExpiresAt = now.Add(t.quoteTTL)
	}
	return dex.NewQuote(q), nil
}

func (t *Translator) record(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if e, ok := dex.AsError(err); ok {
			outcome = string(e.Category())
			t.logger.WithFields(logrus.Fields{
				"stage": e.Stage,
				"kind":  e.Kind,
			}).WithError(e.Err).Warn("Quote failed")
		}
	}
	metrics.QuotesTotal.WithLabelValues(t.provider, outcome).Inc()
}

func quoteFetchError(err error) *dex.Error {
	e := dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, err)
	var httpErr *jupiter.HTTPError
	if errors.As(err, &httpErr) {
		e.StatusCode = httpErr.StatusCode
	}
	return e
}
