package constants

import "time"

// Chains
const (
	// SolanaChainID is the chain identifier callers use for Solana mainnet.
	SolanaChainID = "501"
)

// Native asset handling
const (
	// NativeSOL is the sentinel address callers pass for native SOL.
	NativeSOL = "11111111111111111111111111111111"
	// WrappedSOLMint is the SPL mint the aggregator uses in place of native SOL.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	NativeDecimals = 9
)

// Provider names
const (
	ProviderJupiter = "jupiter"
)

// Jupiter defaults
const (
	JupiterBaseURL = "https://api.jup.ag/swap/v1"
	JupiterTimeout = 12 * time.Second
)

// Swap defaults
const (
	DefaultSlippage       = "0.5"
	DefaultQuoteTTL       = 30 * time.Second
	DefaultConfirmTimeout = 60 * time.Second
	DefaultCommitment     = "confirmed"
)

// Redis keys
const (
	RedisKeyTokenPrefix = "token:meta:"
)

// Redis Pub/Sub channels
const (
	PubSubChannelExecutions = "swaps:executed"
	PubSubPairPrefix        = "swaps:pair:"
)

// DEX program addresses
var ProgramAddresses = map[string]string{
	"Jupiter": "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
}

// KnownToken is static metadata for frequently traded mints.
type KnownToken struct {
	Symbol   string
	Decimals int32
}

// KnownTokens maps mint addresses to their metadata so common pairs skip the RPC lookup.
var KnownTokens = map[string]KnownToken{
	"So11111111111111111111111111111111111111112":  {Symbol: "wSOL", Decimals: 9},
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {Symbol: "USDC", Decimals: 6},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {Symbol: "USDT", Decimals: 6},
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  {Symbol: "mSOL", Decimals: 9},
	"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj": {Symbol: "bSOL", Decimals: 9},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Symbol: "BONK", Decimals: 5},
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  {Symbol: "JUP", Decimals: 6},
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": {Symbol: "RAY", Decimals: 6},
}
