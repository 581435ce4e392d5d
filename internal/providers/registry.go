// Package providers maps provider names to constructors.
package providers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/swapengine"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Factory builds a provider from process configuration.
type Factory func(cfg *config.Config, logger *logrus.Logger) (dex.Provider, error)

var registry = map[string]Factory{
	constants.ProviderJupiter: newJupiter,
}

// New builds the named provider.
func New(name string, cfg *config.Config, logger *logrus.Logger) (dex.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	factory, ok := registry[name]
	if !ok {
		return nil, dex.Validation(dex.ErrUnknownProvider, "provider %q is not registered (have %s)", name, strings.Join(Names(), ", "))
	}
	return factory(cfg, logger)
}

// Names lists registered providers in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func newJupiter(cfg *config.Config, logger *logrus.Logger) (dex.Provider, error) {
	ec, err := EngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	ec.Logger = logger
	return swapengine.NewEngine(ec)
}

// EngineConfig maps process configuration onto the swap engine.
func EngineConfig(cfg *config.Config) (swapengine.EngineConfig, error) {
	ec := swapengine.DefaultEngineConfig()

	ec.RPCURL = cfg.RPCUrl
	ec.RPCTimeout = cfg.RPCTimeout
	ec.MaxRetries = cfg.MaxRetries
	ec.RetryBackoff = cfg.RetryBackoff
	ec.Commitment = cfg.Commitment

	ec.WalletPrivateKey = cfg.WalletPrivateKey
	ec.SkipPreflight = cfg.SkipPreflight

	ec.JupiterBaseURL = cfg.JupiterBaseURL
	ec.JupiterAPIKey = cfg.JupiterAPIKey

	ec.Options = dex.Options{
		Slippage:                   cfg.DefaultSlippage,
		RestrictIntermediateTokens: cfg.RestrictIntermediateTokens,
	}
	ec.QuoteTTL = cfg.QuoteTTL
	ec.Execution.ConfirmTimeout = cfg.ConfirmTimeout
	if cfg.PriorityFeeLamports > 0 {
		fee := uint64(cfg.PriorityFeeLamports)
		ec.Execution.PrioritizationFeeLamports = &fee
	}
	ec.Routing = swapengine.RoutingConfig{
		OnlyDirectRoutes: cfg.OnlyDirectRoutes,
		ExcludeDexes:     cfg.ExcludeDexes,
	}
	if cfg.MaxAccounts > 0 {
		ec.Routing.MaxAccounts = uint64(cfg.MaxAccounts)
	}

	ec.RedisAddr = cfg.RedisAddr
	ec.RedisPassword = cfg.RedisPassword
	ec.RedisDB = cfg.RedisDB
	ec.TokenCacheTTL = cfg.TokenCacheTTL

	impact, err := decimal.NewFromString(cfg.MaxPriceImpactPct)
	if err != nil {
		return ec, fmt.Errorf("max price impact %q: %w", cfg.MaxPriceImpactPct, err)
	}
	ec.RiskConfig = swapengine.RiskConfig{
		MaxPriceImpactPct: impact,
		MaxSlippageBps:    uint16(cfg.MaxSlippageBps),
		AllowedMints:      cfg.AllowedMints,
		RequireSimulation: cfg.SimulateBeforeSend,
	}
	return ec, nil
}
