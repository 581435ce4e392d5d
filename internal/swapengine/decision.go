package swapengine

import (
	"context"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/tokens"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// DecisionEngine turns caller requests into SwapParams. Validate is pure;
// Prepare adds token resolution, which may hit the network.
type DecisionEngine struct {
	chain  string
	opts   dex.Options
	tokens TokenResolver
	now    func() time.Time
}

func NewDecisionEngine(chain string, opts dex.Options, resolver TokenResolver) *DecisionEngine {
	if chain == "" {
		chain = constants.SolanaChainID
	}
	return &DecisionEngine{chain: chain, opts: opts, tokens: resolver, now: time.Now}
}

// validated holds the offline-checked fields of a request.
type validated struct {
	req       dex.SwapRequest
	fromKey   solana.PublicKey
	toKey     solana.PublicKey
	amount    decimal.Decimal
	slippage  decimal.Decimal
	recipient *solana.PublicKey
}

// Validate checks everything that does not need the network.
func (de *DecisionEngine) Validate(req dex.SwapRequest) (*validated, error) {
	req = req.WithDefaults(de.opts)

	if req.Chain != de.chain {
		return nil, dex.Validation(dex.ErrUnsupportedChain, "chain %q is not supported, want %q", req.Chain, de.chain)
	}

	fromKey, err := tokens.ParseAddress(req.FromToken)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidToken, "from_token: %v", err)
	}
	toKey, err := tokens.ParseAddress(req.ToToken)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidToken, "to_token: %v", err)
	}
	if aggregatorMint(req.FromToken) == aggregatorMint(req.ToToken) {
		return nil, dex.Validation(dex.ErrInvalidToken, "from_token and to_token resolve to the same mint %s", aggregatorMint(req.FromToken))
	}

	amount, err := dex.ParseAmount(req.Amount)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidAmount, "%v", err)
	}

	slippage, err := dex.ParseSlippage(req.Slippage)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidSlippage, "%v", err)
	}

	v := &validated{
		req:      req,
		fromKey:  fromKey,
		toKey:    toKey,
		amount:   amount,
		slippage: slippage,
	}

	if req.Recipient != "" {
		pk, err := solana.PublicKeyFromBase58(req.Recipient)
		if err != nil {
			return nil, dex.Validation(dex.ErrInvalidRecipient, "recipient %q: %v", req.Recipient, err)
		}
		v.recipient = &pk
	}

	return v, nil
}

// Prepare validates req, resolves both tokens and scales the amount.
func (de *DecisionEngine) Prepare(ctx context.Context, req dex.SwapRequest) (*SwapParams, error) {
	v, err := de.Validate(req)
	if err != nil {
		return nil, err
	}

	from, err := de.resolve(ctx, v.req.FromToken, "from_token")
	if err != nil {
		return nil, err
	}
	to, err := de.resolve(ctx, v.req.ToToken, "to_token")
	if err != nil {
		return nil, err
	}

	raw, err := dex.ToRaw(v.amount, from.Decimals)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidAmount, "%v", err)
	}

	fromMint, err := solana.PublicKeyFromBase58(from.Mint)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidToken, "from mint %q: %v", from.Mint, err)
	}
	toMint, err := solana.PublicKeyFromBase58(to.Mint)
	if err != nil {
		return nil, dex.Validation(dex.ErrInvalidToken, "to mint %q: %v", to.Mint, err)
	}

	return &SwapParams{
		Chain:                      v.req.Chain,
		From:                       from,
		To:                         to,
		FromMint:                   fromMint,
		ToMint:                     toMint,
		AmountIn:                   v.amount,
		AmountInRaw:                raw,
		Slippage:                   v.slippage,
		SlippageBps:                dex.SlippageToBps(v.slippage),
		RestrictIntermediateTokens: *v.req.RestrictIntermediateTokens,
		Recipient:                  v.recipient,
		ParsedAt:                   de.now(),
	}, nil
}

func (de *DecisionEngine) resolve(ctx context.Context, address, field string) (dex.TokenDescriptor, error) {
	desc, err := de.tokens.Resolve(ctx, address)
	if err == nil {
		return desc, nil
	}
	if tokens.IsInvalid(err) {
		return dex.TokenDescriptor{}, dex.Validation(dex.ErrInvalidToken, "%s: %v", field, err)
	}
	return dex.TokenDescriptor{}, dex.StageErr(dex.StageQuote, dex.ErrQuoteFetch, err)
}

// aggregatorMint maps the native sentinel to wSOL; other addresses pass through.
func aggregatorMint(address string) string {
	if address == constants.NativeSOL {
		return constants.WrappedSOLMint
	}
	return address
}
