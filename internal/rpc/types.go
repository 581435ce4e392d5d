package rpc

import (
	"encoding/json"
	"fmt"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ParsedMintInfo is the "info" object of a jsonParsed SPL mint account.
type ParsedMintInfo struct {
	Decimals        int32   `json:"decimals"`
	Supply          string  `json:"supply"`
	IsInitialized   bool    `json:"isInitialized"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
}

// ParsedAccountData holds program-parsed account data.
type ParsedAccountData struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string         `json:"type"`
		Info ParsedMintInfo `json:"info"`
	} `json:"parsed"`
}

// AccountInfo represents an account returned by getAccountInfo
type AccountInfo struct {
	Owner      string          `json:"owner"`
	Lamports   uint64          `json:"lamports"`
	Executable bool            `json:"executable"`
	Data       json.RawMessage `json:"data"`
}

// Mint returns the parsed mint info when the account is an SPL mint. Accounts the
// node cannot parse come back as a [data, encoding] array and yield false.
func (a *AccountInfo) Mint() (ParsedMintInfo, bool) {
	var d ParsedAccountData
	if err := json.Unmarshal(a.Data, &d); err != nil {
		return ParsedMintInfo{}, false
	}
	if d.Parsed.Type != "mint" {
		return ParsedMintInfo{}, false
	}
	return d.Parsed.Info, true
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result struct {
		Value *AccountInfo `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
