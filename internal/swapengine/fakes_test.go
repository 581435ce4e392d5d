package swapengine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/tokens"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

var jupiterProgram = solana.MustPublicKeyFromBase58(constants.ProgramAddresses["Jupiter"])

type fakeAggregator struct {
	mu         sync.Mutex
	quoteCalls int
	swapCalls  int
	quoteReqs  []jupiter.QuoteRequest
	swapReqs   []jupiter.SwapRequest

	quoteFn func(req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error)
	swapFn  func(req jupiter.SwapRequest) (*jupiter.SwapResponse, error)
}

func (f *fakeAggregator) Quote(_ context.Context, req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error) {
	f.mu.Lock()
	f.quoteCalls++
	n := f.quoteCalls
	f.quoteReqs = append(f.quoteReqs, req)
	f.mu.Unlock()

	if f.quoteFn != nil {
		return f.quoteFn(req)
	}
	return quoteResponse(req, "1000000", "0.001", n), nil
}

func (f *fakeAggregator) Swap(_ context.Context, req jupiter.SwapRequest) (*jupiter.SwapResponse, error) {
	f.mu.Lock()
	f.swapCalls++
	f.swapReqs = append(f.swapReqs, req)
	f.mu.Unlock()

	if f.swapFn == nil {
		return nil, fmt.Errorf("no swap handler")
	}
	return f.swapFn(req)
}

// quoteResponse builds a quote echoing req; seq is embedded in the raw payload.
func quoteResponse(req jupiter.QuoteRequest, outAmount, impact string, seq int) *jupiter.QuoteResponse {
	res := &jupiter.QuoteResponse{
		InputMint:      req.InputMint,
		OutputMint:     req.OutputMint,
		InAmount:       req.Amount,
		OutAmount:      outAmount,
		SwapMode:       "ExactIn",
		SlippageBps:    req.SlippageBps,
		PriceImpactPct: impact,
		RoutePlan: []jupiter.RoutePlanStep{
			{SwapInfo: jupiter.SwapInfo{Label: "Whirlpool", InputMint: req.InputMint, OutputMint: req.OutputMint}, Bps: 10000},
		},
	}
	raw, _ := json.Marshal(struct {
		*jupiter.QuoteResponse
		Seq int `json:"seq"`
	}{res, seq})
	res.Raw = raw
	return res
}

type fakeNetwork struct {
	mu sync.Mutex

	existing     map[solana.PublicKey]bool
	sendCalls    int
	confirmCalls int
	simCalls     int
	buildCalls   int
	sent         []*solana.Transaction

	sendFn    func(ctx context.Context, tx *solana.Transaction) (string, error)
	confirmFn func(ctx context.Context, sig string, timeout time.Duration) error
	simErr    error
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{existing: map[solana.PublicKey]bool{}}
}

func (n *fakeNetwork) AccountExists(_ context.Context, pk solana.PublicKey) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.existing[pk], nil
}

func (n *fakeNetwork) BuildTransaction(_ context.Context, ixs []solana.Instruction) (*solana.Transaction, uint64, error) {
	n.mu.Lock()
	n.buildCalls++
	n.mu.Unlock()
	payer := ixs[0].Accounts()[0].PublicKey
	tx, err := solana.NewTransaction(ixs, solana.Hash{3}, solana.TransactionPayer(payer))
	return tx, 1000, err
}

func (n *fakeNetwork) SimulateTransaction(context.Context, *solana.Transaction) (*wallet.SimulationResult, error) {
	n.mu.Lock()
	n.simCalls++
	n.mu.Unlock()
	if n.simErr != nil {
		return &wallet.SimulationResult{Error: n.simErr.Error()}, n.simErr
	}
	return &wallet.SimulationResult{Success: true}, nil
}

func (n *fakeNetwork) SendTx(ctx context.Context, tx *solana.Transaction, _ *wallet.SendOptions) (string, error) {
	n.mu.Lock()
	n.sendCalls++
	n.sent = append(n.sent, tx)
	count := n.sendCalls
	n.mu.Unlock()

	if n.sendFn != nil {
		return n.sendFn(ctx, tx)
	}
	return fmt.Sprintf("sig%d", count), nil
}

func (n *fakeNetwork) ConfirmTransaction(ctx context.Context, sig, _ string, timeout time.Duration, _ uint64) error {
	n.mu.Lock()
	n.confirmCalls++
	n.mu.Unlock()

	if n.confirmFn != nil {
		return n.confirmFn(ctx, sig, timeout)
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testSigner(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPCURL:     "http://127.0.0.1:1",
		PrivateKey: solana.NewWallet().PrivateKey.String(),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	return w
}

func testEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.Execution.ConfirmTimeout = time.Second
	cfg.RiskConfig = RiskConfig{}
	return cfg
}

type harness struct {
	engine  *Engine
	agg     *fakeAggregator
	network *fakeNetwork
	signer  *wallet.Wallet
}

func newHarness(t *testing.T, cfg EngineConfig) *harness {
	t.Helper()
	agg := &fakeAggregator{}
	network := newFakeNetwork()
	signer := testSigner(t)
	registry := tokens.NewRegistry(nil, nil, "", quietLogger())

	return &harness{
		engine:  assemble(constants.ProviderJupiter, agg, registry, signer, network, cfg, quietLogger()),
		agg:     agg,
		network: network,
		signer:  signer,
	}
}

// builtSwapTx returns a base64 unsigned transaction paid by payer that mimics an
// aggregator swap: optional SyncNative, the swap program call touching extra
// accounts, optional CloseAccount.
func builtSwapTx(t *testing.T, payer solana.PublicKey, syncNative, closeAccount bool, extra ...solana.PublicKey) string {
	t.Helper()
	wsolAccount := solana.NewWallet().PublicKey()

	var ixs []solana.Instruction
	if syncNative {
		ixs = append(ixs, NewTokenSyncNativeIx(wsolAccount))
	}

	metas := solana.AccountMetaSlice{solana.Meta(payer).WRITE().SIGNER()}
	for _, pk := range extra {
		metas = append(metas, solana.Meta(pk).WRITE())
	}
	ixs = append(ixs, solana.NewInstruction(jupiterProgram, metas, []byte{0xe5, 0x17}))

	if closeAccount {
		ixs = append(ixs, NewTokenCloseAccountIx(wsolAccount, payer, payer))
	}

	tx, err := solana.NewTransaction(ixs, solana.Hash{9}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func swapReq(from, to, amount string) dex.SwapRequest {
	return dex.SwapRequest{QuoteRequest: dex.QuoteRequest{
		Chain:     constants.SolanaChainID,
		FromToken: from,
		ToToken:   to,
		Amount:    amount,
	}}
}
