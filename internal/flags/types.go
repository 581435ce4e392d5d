package flags

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Halt switch keys. A provider-scoped key halts only that provider.
const (
	KeySwapsHalted = "swaps.halted"
	providerPrefix = "swaps."
	haltedSuffix   = ".halted"
)

// ProviderHaltKey is the halt switch for a single provider.
func ProviderHaltKey(provider string) string {
	return providerPrefix + provider + haltedSuffix
}

// IsHaltKey reports whether key is the global or a provider halt switch.
func IsHaltKey(key string) bool {
	if key == KeySwapsHalted {
		return true
	}
	name, ok := strings.CutPrefix(key, providerPrefix)
	if !ok {
		return false
	}
	name, ok = strings.CutSuffix(name, haltedSuffix)
	return ok && name != ""
}

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
