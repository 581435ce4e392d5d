package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WALLET_PRIVATE_KEY", "")
	t.Setenv("ALLOWED_MINTS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Equal(t, "jupiter", cfg.Provider)
	assert.Equal(t, "0.5", cfg.DefaultSlippage)
	assert.True(t, cfg.RestrictIntermediateTokens)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, 30*time.Second, cfg.QuoteTTL)
	assert.Equal(t, 60*time.Second, cfg.ConfirmTimeout)
	assert.Empty(t, cfg.AllowedMints)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_SLIPPAGE", "1")
	t.Setenv("RESTRICT_INTERMEDIATE_TOKENS", "false")
	t.Setenv("CONFIRM_TIMEOUT", "90s")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("ALLOWED_MINTS", " a, ,b ,")
	t.Setenv("SKIP_PREFLIGHT", "true")
	t.Setenv("PRIORITY_FEE_LAMPORTS", "-5")
	t.Setenv("ONLY_DIRECT_ROUTES", "true")
	t.Setenv("MAX_ACCOUNTS", "40")
	t.Setenv("EXCLUDE_DEXES", "Saber,Obric V2")

	cfg := Load()
	assert.Equal(t, "1", cfg.DefaultSlippage)
	assert.False(t, cfg.RestrictIntermediateTokens)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, []string{"a", "b"}, cfg.AllowedMints)
	assert.True(t, cfg.SkipPreflight)
	assert.True(t, cfg.OnlyDirectRoutes)
	assert.Equal(t, 40, cfg.MaxAccounts)
	assert.Equal(t, []string{"Saber", "Obric V2"}, cfg.ExcludeDexes)

	assert.Equal(t, -5, cfg.PriorityFeeLamports)
	cfg.WalletPrivateKey = "key"
	assert.ErrorContains(t, cfg.Validate(), "PRIORITY_FEE_LAMPORTS")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Load()
		cfg.WalletPrivateKey = "key"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"wallet", func(c *Config) { c.WalletPrivateKey = " " }, "WALLET_PRIVATE_KEY"},
		{"rpc", func(c *Config) { c.RPCUrl = "" }, "SOLANA_RPC_URL"},
		{"commitment", func(c *Config) { c.Commitment = "max" }, "COMMITMENT"},
		{"slippage", func(c *Config) { c.DefaultSlippage = "101" }, "DEFAULT_SLIPPAGE"},
		{"impact", func(c *Config) { c.MaxPriceImpactPct = "x" }, "MAX_PRICE_IMPACT_PCT"},
		{"max slippage", func(c *Config) { c.MaxSlippageBps = 20000 }, "MAX_SLIPPAGE_BPS"},
		{"ttl", func(c *Config) { c.QuoteTTL = 0 }, "QUOTE_TTL"},
		{"negative priority fee", func(c *Config) { c.PriorityFeeLamports = -1 }, "PRIORITY_FEE_LAMPORTS"},
		{"huge priority fee", func(c *Config) { c.PriorityFeeLamports = 2_000_000_000 }, "PRIORITY_FEE_LAMPORTS"},
		{"max accounts", func(c *Config) { c.MaxAccounts = 65 }, "MAX_ACCOUNTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
