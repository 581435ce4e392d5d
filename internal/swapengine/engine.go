package swapengine

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/cache"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/flags"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/jupiter"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/tokens"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/wallet"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Engine is the Jupiter-backed dex.Provider.
type Engine struct {
	name       string
	chain      string
	wallet     *wallet.Wallet
	redis      redis.UniversalClient
	translator *Translator
	executor   *Executor
	logger     *logrus.Logger
}

var _ dex.Provider = (*Engine)(nil)

// EngineConfig holds configuration for the swap engine
type EngineConfig struct {
	// RPC settings
	RPCURL       string
	RPCTimeout   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Commitment   string

	// Wallet
	WalletPrivateKey string
	SkipPreflight    bool

	// Jupiter
	JupiterBaseURL string
	JupiterAPIKey  string

	// Request defaults and pipeline knobs
	Options   dex.Options
	QuoteTTL  time.Duration
	Routing   RoutingConfig
	Execution ExecutorConfig

	// Optional Redis for token metadata and execution events
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TokenCacheTTL time.Duration

	// Risk management
	RiskConfig RiskConfig

	Logger *logrus.Logger
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RPCURL:         "https://api.mainnet-beta.solana.com",
		RPCTimeout:     30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   1 * time.Second,
		Commitment:     constants.DefaultCommitment,
		JupiterBaseURL: constants.JupiterBaseURL,
		Options:        dex.DefaultOptions(),
		QuoteTTL:       constants.DefaultQuoteTTL,
		Execution:      DefaultExecutorConfig(),
		TokenCacheTTL:  24 * time.Hour,
		RiskConfig:     DefaultRiskConfig(),
	}
}

// NewEngine creates a new swap engine with all dependencies
func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Commitment == "" {
		cfg.Commitment = constants.DefaultCommitment
	}
	cfg.Execution.Commitment = cfg.Commitment

	// 1. Wallet (signer + network)
	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPCURL:              cfg.RPCURL,
		PrivateKey:          cfg.WalletPrivateKey,
		Timeout:             cfg.RPCTimeout,
		MaxRetries:          cfg.MaxRetries,
		RetryBackoff:        cfg.RetryBackoff,
		DefaultCommitment:   cfg.Commitment,
		SkipPreflight:       cfg.SkipPreflight,
		PreflightCommitment: "processed",
		Logger:              logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	// 2. Redis (optional): token cache, execution events, halt switches
	var rdb redis.UniversalClient
	var tokenCache *cache.RedisTokenCache
	var publisher *cache.PubSubManager
	var halt *flags.Store
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		tokenCache = cache.NewRedisTokenCache(rdb, cfg.TokenCacheTTL)
		publisher = cache.NewPubSubManager(rdb, logger)
		if halt, err = flags.NewStore(rdb); err != nil {
			_ = rdb.Close()
			return nil, err
		}
	}

	// 3. Token registry shares the wallet's RPC client
	var registry *tokens.Registry
	if tokenCache != nil {
		registry = tokens.NewRegistry(w.RPC(), tokenCache, cfg.Commitment, logger)
	} else {
		registry = tokens.NewRegistry(w.RPC(), nil, cfg.Commitment, logger)
	}

	// 4. Aggregator
	jup := jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey, logger)

	e := assemble(constants.ProviderJupiter, jup, registry, w, w, cfg, logger)
	e.wallet = w
	e.redis = rdb
	if publisher != nil {
		e.executor.WithPublisher(publisher).WithHaltSwitch(halt)
	}

	logger.WithFields(logrus.Fields{
		"provider": e.name,
		"wallet":   w.Address(),
		"jupiter":  jup.BaseURL,
		"redis":    cfg.RedisAddr != "",
	}).Info("Swap engine ready")

	return e, nil
}

// assemble wires the pipeline from its collaborators.
func assemble(name string, agg Aggregator, resolver TokenResolver, signer Signer, network Network, cfg EngineConfig, logger *logrus.Logger) *Engine {
	decision := NewDecisionEngine(constants.SolanaChainID, cfg.Options, resolver)
	translator := NewTranslator(name, agg, decision, cfg.QuoteTTL, logger).WithRouting(cfg.Routing)
	executor := NewExecutor(name, decision, translator, agg, signer, network, NewRiskManager(cfg.RiskConfig), cfg.Execution, logger)

	return &Engine{
		name:       name,
		chain:      constants.SolanaChainID,
		translator: translator,
		executor:   executor,
		logger:     logger,
	}
}

func (e *Engine) Name() string  { return e.name }
func (e *Engine) Chain() string { return e.chain }

// GetQuote returns a fresh quote without executing
func (e *Engine) GetQuote(ctx context.Context, req dex.QuoteRequest) (*dex.Quote, error) {
	return e.translator.GetQuote(ctx, req)
}

// Swap quotes and executes a swap end-to-end
func (e *Engine) Swap(ctx context.Context, req dex.SwapRequest) (*dex.SwapResult, error) {
	return e.executor.Swap(ctx, req)
}

// Close cleans up all resources
func (e *Engine) Close() error {
	var errs []error

	if e.wallet != nil {
		if err := e.wallet.Close(); err != nil {
			errs = append(errs, fmt.Errorf("wallet close: %w", err))
		}
	}

	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}

	return nil
}
