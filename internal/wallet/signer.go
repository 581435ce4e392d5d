package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	projectrpc "github.com/aman-zulfiqar/solana-dex-aggregator/internal/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingSigner     = errors.New("transaction requires a signer the wallet does not hold")
	ErrConfirmTimeout    = errors.New("transaction confirmation timeout")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrBlockhashExpired  = errors.New("blockhash expired before transaction landed")
	ErrNotYetCommitted   = errors.New("transaction landed but has not reached commitment")
)

// SendOptions configures transaction sending behavior
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          *int // node-side rebroadcast attempts
}

// DefaultSendOptions returns the wallet's configured send settings
func (w *Wallet) DefaultSendOptions() SendOptions {
	return SendOptions{
		SkipPreflight:       w.cfg.SkipPreflight,
		PreflightCommitment: w.cfg.PreflightCommitment,
	}
}

// SignTx replaces any existing signatures with the wallet's. Transactions that need
// another signer fail with ErrMissingSigner.
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	if tx == nil {
		return fmt.Errorf("failed to sign transaction: nil transaction")
	}

	signers := tx.Message.Signers()
	found := false
	for _, k := range signers {
		if k.Equals(w.pub) {
			found = true
		} else {
			return fmt.Errorf("%w: %s", ErrMissingSigner, k)
		}
	}
	if !found {
		return fmt.Errorf("%w: wallet %s is not a signer", ErrMissingSigner, w.pub)
	}

	tx.Signatures = nil
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SendTx sends a signed transaction exactly once.
func (w *Wallet) SendTx(ctx context.Context, tx *solana.Transaction, opts *SendOptions) (string, error) {
	if opts == nil {
		defaultOpts := w.DefaultSendOptions()
		opts = &defaultOpts
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	cfg := map[string]any{
		"encoding":            "base64",
		"skipPreflight":       opts.SkipPreflight,
		"preflightCommitment": opts.PreflightCommitment,
	}
	if opts.MaxRetries != nil {
		cfg["maxRetries"] = *opts.MaxRetries
	}
	params := []any{base64.StdEncoding.EncodeToString(txBytes), cfg}

	var resp struct {
		Result string               `json:"result"`
		Error  *projectrpc.RPCError `json:"error"`
	}

	if err := w.rpc.CallOnce(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: %w", resp.Error)
	}
	if resp.Result == "" {
		return "", fmt.Errorf("sendTransaction returned no signature")
	}

	w.logger.WithField("signature", resp.Result).Info("Transaction submitted")
	return resp.Result, nil
}

// GetLatestBlockhash fetches the most recent blockhash and its last valid block height.
func (w *Wallet) GetLatestBlockhash(ctx context.Context, commitment ...string) (solana.Hash, uint64, error) {
	commitmentLevel := "processed"
	if len(commitment) > 0 {
		commitmentLevel = commitment[0]
	}

	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": commitmentLevel},
	}

	if err := w.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}

	if resp.Error != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash error: %w", resp.Error)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("invalid blockhash format: %w", err)
	}

	return hash, resp.Result.Value.LastValidBlockHeight, nil
}

// SimulationResult contains simulation output
type SimulationResult struct {
	Success       bool
	Error         string
	Logs          []string
	UnitsConsumed uint64
}

// SimulateTransaction simulates a transaction without requiring valid signatures.
func (w *Wallet) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	var resp struct {
		Result struct {
			Value struct {
				Err           interface{} `json:"err"`
				Logs          []string    `json:"logs"`
				UnitsConsumed uint64      `json:"unitsConsumed,omitempty"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		map[string]any{
			"encoding":   "base64",
			"commitment": "processed",
			"sigVerify":  false,
		},
	}

	if err := w.rpc.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("simulateTransaction error: %w", resp.Error)
	}

	result := &SimulationResult{
		Logs:          resp.Result.Value.Logs,
		UnitsConsumed: resp.Result.Value.UnitsConsumed,
	}

	if resp.Result.Value.Err != nil {
		result.Error = fmt.Sprintf("%v", resp.Result.Value.Err)
		return result, fmt.Errorf("simulation failed: %v", resp.Result.Value.Err)
	}

	result.Success = true
	return result, nil
}

// ConfirmTransaction polls getSignatureStatuses until commitment is reached.
// It always checks at least once. Returned errors:
//   - ErrTransactionFailed: landed with an error
//   - ErrBlockhashExpired: lastValidBlockHeight passed and the signature was never seen
//   - ErrConfirmTimeout: timeout elapsed (wraps the last RPC error, if any, and
//     ErrNotYetCommitted when the node had seen the signature)
//   - ctx.Err(): caller cancelled
//
// lastValidBlockHeight of 0 disables the expiry check.
func (w *Wallet) ConfirmTransaction(
	ctx context.Context,
	signature string,
	commitment string,
	timeout time.Duration,
	lastValidBlockHeight uint64,
) error {

	deadline := time.Now().Add(timeout)
	backoff := w.cfg.PollInterval
	var lastErr error
	var seen bool

	for {
		st, err := w.checkSignatureStatus(ctx, signature, commitment)
		switch {
		case err != nil && errors.Is(err, ErrTransactionFailed):
			return err
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			w.logger.WithFields(logrus.Fields{
				"signature": signature,
				"error":     err,
			}).Debug("signature status check failed")
		case st.confirmed:
			return nil
		case st.seen:
			seen = true
		case !st.seen && lastValidBlockHeight > 0:
			expired, herr := w.blockhashExpired(ctx, lastValidBlockHeight)
			if herr != nil {
				lastErr = herr
			} else if expired {
				return fmt.Errorf("%w: %s", ErrBlockhashExpired, signature)
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		wait := backoff
		if wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			backoff *= 2
			if backoff > w.cfg.MaxPollInterval {
				backoff = w.cfg.MaxPollInterval
			}
		}
	}

	if seen {
		return fmt.Errorf("%w after %v: %w", ErrConfirmTimeout, timeout, ErrNotYetCommitted)
	}
	if lastErr != nil {
		return fmt.Errorf("%w after %v: %v", ErrConfirmTimeout, timeout, lastErr)
	}
	return fmt.Errorf("%w after %v", ErrConfirmTimeout, timeout)
}

type signatureStatus struct {
	seen      bool
	confirmed bool
}

// checkSignatureStatus reports whether the node knows the signature and whether
// it reached the requested commitment.
func (w *Wallet) checkSignatureStatus(ctx context.Context, signature string, commitment string) (signatureStatus, error) {
	var resp struct {
		Result struct {
			Value []*struct {
				Slot               uint64      `json:"slot"`
				Confirmations      *int        `json:"confirmations"`
				Err                interface{} `json:"err"`
				ConfirmationStatus string      `json:"confirmationStatus"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}

	if err := w.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return signatureStatus{}, err
	}

	if resp.Error != nil {
		return signatureStatus{}, fmt.Errorf("getSignatureStatuses error: %w", resp.Error)
	}

	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil || resp.Result.Value[0].ConfirmationStatus == "" {
		return signatureStatus{}, nil // Not yet processed
	}

	status := resp.Result.Value[0]

	if status.Err != nil {
		return signatureStatus{seen: true}, fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
	}

	var ok bool
	switch commitment {
	case "confirmed":
		ok = status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized"
	case "finalized":
		ok = status.ConfirmationStatus == "finalized"
	default:
		ok = true
	}
	return signatureStatus{seen: true, confirmed: ok}, nil
}

func (w *Wallet) blockhashExpired(ctx context.Context, lastValidBlockHeight uint64) (bool, error) {
	height, err := w.rpc.GetBlockHeight(ctx, w.cfg.DefaultCommitment)
	if err != nil {
		return false, err
	}
	return height > lastValidBlockHeight, nil
}

// BuildTransaction creates a new transaction paid by the wallet with a recent blockhash.
// It returns the blockhash's last valid block height alongside.
func (w *Wallet) BuildTransaction(
	ctx context.Context,
	instructions []solana.Instruction,
) (*solana.Transaction, uint64, error) {

	recentBlockhash, lastValid, err := w.GetLatestBlockhash(ctx, w.cfg.DefaultCommitment)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recentBlockhash,
		solana.TransactionPayer(w.pub),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	return tx, lastValid, nil
}
