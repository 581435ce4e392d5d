package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/shopspring/decimal"
)

const (
	maxPriorityFeeLamports = 1_000_000_000 // 1 SOL
	maxTransactionAccounts = 64
)

type Config struct {
	// Provider selection
	Provider string

	// RPC settings
	RPCUrl       string
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

	// Request defaults
	DefaultSlippage            string
	RestrictIntermediateTokens bool

	// Routing
	OnlyDirectRoutes bool
	MaxAccounts      int // 0 lets the aggregator decide
	ExcludeDexes     []string

	// Execution
	QuoteTTL            time.Duration
	ConfirmTimeout      time.Duration
	PriorityFeeLamports int // 0 lets the aggregator decide
	SimulateBeforeSend  bool

	// Risk
	MaxPriceImpactPct string
	MaxSlippageBps    int
	AllowedMints      []string

	// Redis settings (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TokenCacheTTL time.Duration

	// API settings
	APIAddr string
	APIKey  string
	DevMode bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		Provider: getEnv("DEX_PROVIDER", constants.ProviderJupiter),

		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCTimeout:   getDurationEnv("RPC_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", time.Second),
		Commitment:   getEnv("COMMITMENT", constants.DefaultCommitment),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		SkipPreflight:    getBoolEnv("SKIP_PREFLIGHT", false),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", constants.JupiterBaseURL),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// Defaults
		DefaultSlippage:            getEnv("DEFAULT_SLIPPAGE", constants.DefaultSlippage),
		RestrictIntermediateTokens: getBoolEnv("RESTRICT_INTERMEDIATE_TOKENS", true),

		// Routing
		OnlyDirectRoutes: getBoolEnv("ONLY_DIRECT_ROUTES", false),
		MaxAccounts:      getIntEnv("MAX_ACCOUNTS", 0),
		ExcludeDexes:     getListEnv("EXCLUDE_DEXES"),

		// Execution
		QuoteTTL:            getDurationEnv("QUOTE_TTL", constants.DefaultQuoteTTL),
		ConfirmTimeout:      getDurationEnv("CONFIRM_TIMEOUT", constants.DefaultConfirmTimeout),
		PriorityFeeLamports: getIntEnv("PRIORITY_FEE_LAMPORTS", 0),
		SimulateBeforeSend:  getBoolEnv("SIMULATE_BEFORE_SEND", false),

		// Risk
		MaxPriceImpactPct: getEnv("MAX_PRICE_IMPACT_PCT", "5"),
		MaxSlippageBps:    getIntEnv("MAX_SLIPPAGE_BPS", 1000),
		AllowedMints:      getListEnv("ALLOWED_MINTS"),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		TokenCacheTTL: getDurationEnv("TOKEN_CACHE_TTL", 24*time.Hour),

		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks required values and ranges. It does not touch the network.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.RPCUrl) == "" {
		errs = append(errs, errors.New("SOLANA_RPC_URL is required"))
	}
	if strings.TrimSpace(c.WalletPrivateKey) == "" {
		errs = append(errs, errors.New("WALLET_PRIVATE_KEY is required"))
	}
	if strings.TrimSpace(c.JupiterBaseURL) == "" {
		errs = append(errs, errors.New("JUPITER_BASE_URL is required"))
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("COMMITMENT %q must be processed, confirmed or finalized", c.Commitment))
	}

	if s, err := decimal.NewFromString(c.DefaultSlippage); err != nil || s.IsNegative() || s.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, fmt.Errorf("DEFAULT_SLIPPAGE %q must be a percent in [0, 100]", c.DefaultSlippage))
	}
	if p, err := decimal.NewFromString(c.MaxPriceImpactPct); err != nil || p.IsNegative() {
		errs = append(errs, fmt.Errorf("MAX_PRICE_IMPACT_PCT %q must be a non-negative percent", c.MaxPriceImpactPct))
	}
	if c.MaxSlippageBps < 0 || c.MaxSlippageBps > 10000 {
		errs = append(errs, fmt.Errorf("MAX_SLIPPAGE_BPS %d out of range [0, 10000]", c.MaxSlippageBps))
	}
	if c.QuoteTTL <= 0 {
		errs = append(errs, errors.New("QUOTE_TTL must be positive"))
	}
	if c.ConfirmTimeout <= 0 {
		errs = append(errs, errors.New("CONFIRM_TIMEOUT must be positive"))
	}
	if c.PriorityFeeLamports < 0 || c.PriorityFeeLamports > maxPriorityFeeLamports {
		errs = append(errs, fmt.Errorf("PRIORITY_FEE_LAMPORTS %d out of range [0, %d]", c.PriorityFeeLamports, maxPriorityFeeLamports))
	}
	if c.MaxAccounts < 0 || c.MaxAccounts > maxTransactionAccounts {
		errs = append(errs, fmt.Errorf("MAX_ACCOUNTS %d out of range [0, %d]", c.MaxAccounts, maxTransactionAccounts))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getListEnv splits a comma separated value, dropping empty items.
func getListEnv(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
