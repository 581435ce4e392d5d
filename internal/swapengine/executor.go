package swapengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/metrics"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/models"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/storage"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ExecutorConfig holds the per-swap knobs of the pipeline.
type ExecutorConfig struct {
	ConfirmTimeout time.Duration
	Commitment     string

	// FinalCheckTimeout bounds the status check made after the caller cancels post-submit.
	FinalCheckTimeout time.Duration

	DynamicComputeUnitLimit   bool
	PrioritizationFeeLamports *uint64 // static fee; nil lets the aggregator decide

	VerifyWrap bool
}

// DefaultExecutorConfig returns the documented defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		ConfirmTimeout:          constants.DefaultConfirmTimeout,
		Commitment:              constants.DefaultCommitment,
		FinalCheckTimeout:       5 * time.Second,
		DynamicComputeUnitLimit: true,
		VerifyWrap:              true,
	}
}

// Executor runs the swap pipeline. It holds only immutable config and
// thread-safe collaborators; concurrent Swap calls are independent.
type Executor struct {
	provider   string
	decision   *DecisionEngine
	translator *Translator
	agg        Aggregator
	signer     Signer
	network    Network
	risk       *RiskManager
	publisher  storage.ExecutionPublisher // optional
	halt       HaltSwitch                 // optional

	tokenAccounts TokenAccountResolver
	cfg           ExecutorConfig
	now           func() time.Time
	logger        *logrus.Logger
}

func NewExecutor(
	provider string,
	decision *DecisionEngine,
	translator *Translator,
	agg Aggregator,
	signer Signer,
	network Network,
	risk *RiskManager,
	cfg ExecutorConfig,
	logger *logrus.Logger,
) *Executor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Commitment == "" {
		cfg.Commitment = constants.DefaultCommitment
	}
	if cfg.FinalCheckTimeout == 0 {
		cfg.FinalCheckTimeout = 5 * time.Second
	}
	return &Executor{
		provider:      provider,
		decision:      decision,
		translator:    translator,
		agg:           agg,
		signer:        signer,
		network:       network,
		risk:          risk,
		tokenAccounts: NewDefaultTokenAccountResolver(network),
		cfg:           cfg,
		now:           time.Now,
		logger:        logger,
	}
}

func (e *Executor) WithTokenAccountResolver(r TokenAccountResolver) *Executor {
	if r != nil {
		e.tokenAccounts = r
	}
	return e
}

func (e *Executor) WithPublisher(p storage.ExecutionPublisher) *Executor {
	e.publisher = p
	return e
}

func (e *Executor) WithHaltSwitch(h HaltSwitch) *Executor {
	e.halt = h
	return e
}

// Swap runs VALIDATE -> HALT -> RISK -> RECIPIENT -> QUOTE -> RISK -> BUILD ->
// VERIFY -> (SIMULATE) -> SIGN -> SUBMIT -> CONFIRM. Errors before SUBMIT leave no
// trace on-chain apart from an idempotent recipient account creation. The recipient
// setup runs before QUOTE so its confirmation wait does not age the quote.
func (e *Executor) Swap(ctx context.Context, req dex.SwapRequest) (*dex.SwapResult, error) {
	start := e.now()

	res, err := e.swap(ctx, req, start)
	if err != nil {
		if de, ok := dex.AsError(err); ok {
			metrics.StageFailuresTotal.WithLabelValues(e.provider, string(de.Stage), string(de.Category())).Inc()
			e.logger.WithFields(logrus.Fields{
				"stage":     de.Stage,
				"kind":      de.Kind,
				"signature": de.Signature,
			}).WithError(de.Err).Warn("Swap failed")
		}
		return nil, err
	}

	metrics.SwapsTotal.WithLabelValues(e.provider, string(res.Status)).Inc()
	metrics.SwapDuration.WithLabelValues(e.provider, string(res.Status)).Observe(res.Duration.Seconds())
	return res, nil
}

func (e *Executor) swap(ctx context.Context, req dex.SwapRequest, start time.Time) (*dex.SwapResult, error) {
	// VALIDATE
	params, err := e.decision.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	owner := e.signer.PublicKey()
	if params.Recipient != nil && params.Recipient.Equals(owner) {
		params.Recipient = nil
	}
	if params.Recipient != nil && params.To.Native {
		return nil, &dex.Error{
			Stage: dex.StageRecipient,
			Kind:  dex.ErrUnsupportedRecipient,
			Err:   fmt.Errorf("native SOL output cannot be delivered to %s; only wrapped SOL can be redirected", params.Recipient),
		}
	}

	// An unreadable switch blocks the swap.
	if e.halt != nil {
		f, err := e.halt.Halted(ctx, e.provider)
		if err != nil {
			return nil, dex.StageErr(dex.StageRisk, dex.ErrRiskRejected, fmt.Errorf("halt switch unavailable: %w", err))
		}
		if f != nil {
			return nil, dex.StageErr(dex.StageRisk, dex.ErrRiskRejected, fmt.Errorf("swaps halted by %s: %s", f.Key, f.Reason))
		}
	}

	// RISK: rules that need no quote, before anything touches the chain.
	if e.risk != nil {
		if check := e.risk.CheckParams(params); !check.Allowed {
			return nil, dex.StageErr(dex.StageRisk, dex.ErrRiskRejected, errors.New(check.Reason))
		}
	}

	// RECIPIENT
	var destination *solana.PublicKey
	if params.Recipient != nil {
		ata, err := e.prepareRecipient(ctx, owner, *params.Recipient, params)
		if err != nil {
			return nil, err
		}
		destination = &ata
	}

	// QUOTE: always fresh, claimed once.
	quote, err := e.translator.Quote(ctx, params)
	if err != nil {
		return nil, err
	}
	if !quote.Claim() {
		return nil, dex.StageErr(dex.StageQuote, dex.ErrQuoteConsumed, errors.New("quote was already used for a transaction"))
	}

	if e.risk != nil {
		if check := e.risk.CheckSwap(params, quote); !check.Allowed {
			return nil, dex.StageErr(dex.StageRisk, dex.ErrRiskRejected, errors.New(check.Reason))
		}
	}

	if quote.Expired(e.now()) {
		return nil, dex.StageErr(dex.StageBuild, dex.ErrQuoteExpired,
			fmt.Errorf("quote expired at %s", quote.ExpiresAt.Format(time.RFC3339)))
	}

	// BUILD
	built, err := e.build(ctx, owner, params, quote, destination)
	if err != nil {
		return nil, err
	}
	tx := built.tx

	// WRAP-VERIFY / RECIPIENT-VERIFY
	if err := VerifyFeePayer(tx, owner); err != nil {
		return nil, dex.StageErr(dex.StageBuild, dex.ErrTransactionBuild, err)
	}
	if e.cfg.VerifyWrap {
		if err := VerifyWrap(tx, params); err != nil {
			return nil, dex.StageErr(dex.StageBuild, dex.ErrTransactionBuild, err)
		}
	}
	if destination != nil {
		if err := VerifyRecipient(tx, *destination); err != nil {
			return nil, dex.StageErr(dex.StageRecipient, dex.ErrUnsupportedRecipient, err)
		}
	}

	// SIMULATE
	if e.risk != nil && e.risk.Config().RequireSimulation {
		if _, err := e.network.SimulateTransaction(ctx, tx); err != nil {
			return nil, dex.StageErr(dex.StageSimulate, dex.ErrSimulation, err)
		}
	}

	// SIGN
	if err := e.signer.SignTx(tx); err != nil {
		return nil, dex.StageErr(dex.StageSign, dex.ErrSigning, err)
	}

	// SUBMIT: exactly once. The signature is fixed by signing, before the send.
	if err := ctx.Err(); err != nil {
		return nil, dex.StageErr(dex.StageSubmit, dex.ErrSubmission, err)
	}
	sig := tx.Signatures[0].String()

	var status dex.Status
	if sent, sendErr := e.network.SendTx(ctx, tx, nil); sendErr != nil {
		status, err = e.recoverSubmit(ctx, sig, built.lastValidBlockHeight, sendErr)
		if err != nil {
			return nil, err
		}
	} else {
		if sent != "" {
			sig = sent
		}
		e.logger.WithFields(logrus.Fields{
			"signature": sig,
			"pair":      params.Pair(),
			"in_raw":    quote.InAmountRaw,
			"out_raw":   quote.OutAmountRaw,
		}).Info("Swap submitted")

		// CONFIRM
		status, err = e.confirm(ctx, sig, built.lastValidBlockHeight)
		if err != nil {
			return nil, err
		}
	}

	result := &dex.SwapResult{
		Provider:  e.provider,
		Signature: sig,
		Status:    status,
		Quote:     quote,
		Duration:  e.now().Sub(start),
	}
	if params.Recipient != nil {
		result.Recipient = params.Recipient.String()
	}

	e.publish(ctx, params, result)
	return result, nil
}

type builtTx struct {
	tx                   *solana.Transaction
	lastValidBlockHeight uint64
}

func (e *Executor) build(ctx context.Context, owner solana.PublicKey, params *SwapParams, quote *dex.Quote, destination *solana.PublicKey) (*builtTx, error) {
	req := jupiter.SwapRequest{
		QuoteResponse:             quote.Route,
		UserPublicKey:             owner.String(),
		WrapAndUnwrapSol:          params.WrapAndUnwrapSol(),
		DynamicComputeUnitLimit:   e.cfg.DynamicComputeUnitLimit,
		PrioritizationFeeLamports: e.cfg.PrioritizationFeeLamports,
	}
	if destination != nil {
		req.DestinationTokenAccount = destination.String()
	}

	res, err := e.agg.Swap(ctx, req)
	if err != nil {
		de := dex.StageErr(dex.StageBuild, dex.ErrTransactionBuild, err)
		var httpErr *jupiter.HTTPError
		if errors.As(err, &httpErr) {
			de.StatusCode = httpErr.StatusCode
		}
		return nil, de
	}

	if res.SimulationError != nil {
		return nil, dex.StageErr(dex.StageBuild, dex.ErrTransactionBuild,
			fmt.Errorf("aggregator simulation failed: %s", res.SimulationError))
	}

	tx, err := DecodeTransaction(res.SwapTransaction)
	if err != nil {
		return nil, dex.StageErr(dex.StageBuild, dex.ErrTransactionBuild, err)
	}
	return &builtTx{tx: tx, lastValidBlockHeight: res.LastValidBlockHeight}, nil
}

// prepareRecipient makes sure the recipient's token account for the output mint
// exists, creating it in a separate confirmed transaction when needed.
func (e *Executor) prepareRecipient(ctx context.Context, payer, recipient solana.PublicKey, params *SwapParams) (solana.PublicKey, error) {
	program := solana.TokenProgramID
	if params.To.Program != "" {
		pk, err := solana.PublicKeyFromBase58(params.To.Program)
		if err != nil {
			return solana.PublicKey{}, dex.StageErr(dex.StageRecipient, dex.ErrUnsupportedRecipient, fmt.Errorf("token program %q: %w", params.To.Program, err))
		}
		program = pk
	}

	resolved, err := e.tokenAccounts.Resolve(ctx, payer, recipient, params.ToMint, program)
	if err != nil {
		return solana.PublicKey{}, dex.StageErr(dex.StageRecipient, dex.ErrUnsupportedRecipient, err)
	}
	if len(resolved.PreIxs) == 0 {
		return resolved.Account, nil
	}

	tx, lastValid, err := e.network.BuildTransaction(ctx, resolved.PreIxs)
	if err != nil {
		return solana.PublicKey{}, dex.StageErr(dex.StageRecipient, dex.ErrTransactionBuild, err)
	}
	if err := e.signer.SignTx(tx); err != nil {
		return solana.PublicKey{}, dex.StageErr(dex.StageRecipient, dex.ErrSigning, err)
	}
	sig := tx.Signatures[0].String()
	sent, err := e.network.SendTx(ctx, tx, nil)
	if err != nil {
		return solana.PublicKey{}, &dex.Error{Stage: dex.StageRecipient, Kind: dex.ErrSubmission, Signature: sig, Err: err}
	}
	if sent != "" {
		sig = sent
	}

	e.logger.WithFields(logrus.Fields{
		"recipient": recipient,
		"account":   resolved.Account,
		"signature": sig,
	}).Info("Creating recipient token account")

	if err := e.network.ConfirmTransaction(ctx, sig, e.cfg.Commitment, e.cfg.ConfirmTimeout, lastValid); err != nil {
		return solana.PublicKey{}, &dex.Error{
			Stage:     dex.StageRecipient,
			Kind:      dex.ErrUnsupportedRecipient,
			Signature: sig,
			Err:       fmt.Errorf("recipient token account not confirmed: %w", err),
		}
	}
	return resolved.Account, nil
}

// confirm maps confirmation outcomes to a status. Only definite on-chain outcomes
// are errors; anything ambiguous is reported as submitted but unconfirmed.
func (e *Executor) confirm(ctx context.Context, sig string, lastValid uint64) (dex.Status, error) {
	err := e.network.ConfirmTransaction(ctx, sig, e.cfg.Commitment, e.cfg.ConfirmTimeout, lastValid)
	if err != nil && ctx.Err() != nil {
		// Caller gave up after submit. One last look on a detached context.
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.FinalCheckTimeout)
		defer cancel()
		err = e.network.ConfirmTransaction(checkCtx, sig, e.cfg.Commitment, 0, lastValid)
	}

	if err == nil {
		return dex.StatusConfirmed, nil
	}
	if de := onChainError(sig, err); de != nil {
		return "", de
	}
	e.logger.WithFields(logrus.Fields{
		"signature": sig,
		"reason":    err,
	}).Warn("Swap submitted but not confirmed")
	return dex.StatusUnconfirmed, nil
}

// recoverSubmit runs after a failed send. The request may still have reached the
// cluster, so the signature is looked up once on a detached context. Only a node
// that has never seen it leaves the submission error standing, with the signature
// attached so the caller can check before retrying.
func (e *Executor) recoverSubmit(ctx context.Context, sig string, lastValid uint64, sendErr error) (dex.Status, error) {
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.FinalCheckTimeout)
	defer cancel()
	err := e.network.ConfirmTransaction(checkCtx, sig, e.cfg.Commitment, 0, lastValid)

	switch {
	case err == nil:
		e.logger.WithField("signature", sig).WithError(sendErr).Warn("Send errored but transaction confirmed")
		return dex.StatusConfirmed, nil
	case errors.Is(err, wallet.ErrNotYetCommitted):
		e.logger.WithField("signature", sig).WithError(sendErr).Warn("Send errored but transaction landed")
		return dex.StatusUnconfirmed, nil
	}
	if de := onChainError(sig, err); de != nil {
		return "", de
	}
	return "", &dex.Error{Stage: dex.StageSubmit, Kind: dex.ErrSubmission, Signature: sig, Err: sendErr}
}

// onChainError maps definite confirmation outcomes; nil means the outcome is open.
func onChainError(sig string, err error) *dex.Error {
	switch {
	case errors.Is(err, wallet.ErrTransactionFailed):
		return &dex.Error{Stage: dex.StageConfirm, Kind: dex.ErrTransactionFailed, Signature: sig, Err: err}
	case errors.Is(err, wallet.ErrBlockhashExpired):
		return &dex.Error{Stage: dex.StageConfirm, Kind: dex.ErrTransactionExpired, Signature: sig, Err: err}
	}
	return nil
}

func (e *Executor) publish(ctx context.Context, params *SwapParams, res *dex.SwapResult) {
	if e.publisher == nil {
		return
	}

	ev := &models.ExecutionEvent{
		Signature:  res.Signature,
		Status:     string(res.Status),
		Provider:   e.provider,
		Chain:      params.Chain,
		Pair:       params.Pair(),
		TokenIn:    params.From.Address,
		TokenOut:   params.To.Address,
		AmountIn:   res.Quote.InAmount,
		AmountOut:  res.Quote.OutAmount,
		Recipient:  res.Recipient,
		Route:      res.Quote.RouteLabels,
		DurationMs: res.Duration.Milliseconds(),
		Timestamp:  e.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := e.publisher.PublishExecution(pubCtx, ev); err != nil {
		e.logger.WithError(err).WithField("signature", res.Signature).Warn("Failed to publish execution event")
	}
}
