package jupiter

import "encoding/json"

type QuoteRequest struct {
	InputMint  string
	OutputMint string
	Amount     string // raw integer as string (uint64)

	SlippageBps uint16

	// Always sent, as "true" or "false".
	RestrictIntermediateTokens bool

	// Sent only when set.
	OnlyDirectRoutes bool
	MaxAccounts      uint64
	ExcludeDexes     []string
}

type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          uint16          `json:"slippageBps"`
	PlatformFee          *PlatformFee    `json:"platformFee,omitempty"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	ContextSlot uint64  `json:"contextSlot,omitempty"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`

	// Raw is the response body as received. /swap must get it back unmodified.
	Raw json.RawMessage `json:"-"`
}

type PlatformFee struct {
	Amount string `json:"amount,omitempty"`
	FeeBps uint16 `json:"feeBps,omitempty"`
}

type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  *uint8   `json:"percent,omitempty"`
	Bps      uint16   `json:"bps"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`

	FeeAmount *string `json:"feeAmount,omitempty"`
	FeeMint   *string `json:"feeMint,omitempty"`
}

// Labels returns the AMM label of each route step, in order, skipping blanks.
func (q *QuoteResponse) Labels() []string {
	out := make([]string, 0, len(q.RoutePlan))
	for _, step := range q.RoutePlan {
		if step.SwapInfo.Label != "" {
			out = append(out, step.SwapInfo.Label)
		}
	}
	return out
}

type SwapRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DestinationTokenAccount   string          `json:"destinationTokenAccount,omitempty"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports *uint64         `json:"prioritizationFeeLamports,omitempty"`
}

type SwapResponse struct {
	SwapTransaction           string           `json:"swapTransaction"` // base64, unsigned
	LastValidBlockHeight      uint64           `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64           `json:"prioritizationFeeLamports,omitempty"`
	ComputeUnitLimit          uint64           `json:"computeUnitLimit,omitempty"`
	SimulationError           *SimulationError `json:"simulationError,omitempty"`
}

// SimulationError is set when Jupiter's own simulation of the built transaction failed.
type SimulationError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"error"`
}

func (e *SimulationError) String() string {
	if e.ErrorCode == "" {
		return e.Message
	}
	return e.ErrorCode + ": " + e.Message
}
