// Package tokens resolves caller token addresses to mint metadata.
package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/rpc"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidAddress = errors.New("not a valid base58 public key")
	ErrNotFound       = errors.New("mint account not found")
	ErrNotMint        = errors.New("account is not an SPL token mint")
)

// MintFetcher loads a parsed account. *rpc.Client implements it.
type MintFetcher interface {
	GetParsedAccountInfo(ctx context.Context, address string, commitment string) (*rpc.AccountInfoResponse, error)
}

type Registry struct {
	fetcher    MintFetcher
	cache      storage.TokenCache // optional
	commitment string
	logger     *logrus.Logger
}

func NewRegistry(fetcher MintFetcher, cache storage.TokenCache, commitment string, logger *logrus.Logger) *Registry {
	if commitment == "" {
		commitment = constants.DefaultCommitment
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		fetcher:    fetcher,
		cache:      cache,
		commitment: commitment,
		logger:     logger,
	}
}

// ParseAddress validates a base58 32-byte public key.
func ParseAddress(address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return pk, nil
}

// Native returns the descriptor for the native SOL sentinel.
func Native() dex.TokenDescriptor {
	return dex.TokenDescriptor{
		Address:  constants.NativeSOL,
		Mint:     constants.WrappedSOLMint,
		Symbol:   "SOL",
		Decimals: constants.NativeDecimals,
		Native:   true,
		Program:  solana.TokenProgramID.String(),
	}
}

// Resolve returns the descriptor for address. Lookup order: native sentinel,
// static table, cache, on-chain mint account.
func (r *Registry) Resolve(ctx context.Context, address string) (dex.TokenDescriptor, error) {
	if _, err := ParseAddress(address); err != nil {
		return dex.TokenDescriptor{}, err
	}

	if address == constants.NativeSOL {
		return Native(), nil
	}

	if known, ok := constants.KnownTokens[address]; ok {
		return dex.TokenDescriptor{
			Address:  address,
			Mint:     address,
			Symbol:   known.Symbol,
			Decimals: known.Decimals,
			Program:  solana.TokenProgramID.String(),
		}, nil
	}

	if r.cache != nil {
		desc, ok, err := r.cache.GetToken(ctx, address)
		if err != nil {
			r.logger.WithError(err).WithField("token", address).Warn("Token cache read failed")
		} else if ok {
			return desc, nil
		}
	}

	desc, err := r.fetch(ctx, address)
	if err != nil {
		return dex.TokenDescriptor{}, err
	}

	if r.cache != nil {
		if err := r.cache.SetToken(ctx, desc); err != nil {
			r.logger.WithError(err).WithField("token", address).Warn("Token cache write failed")
		}
	}
	return desc, nil
}

func (r *Registry) fetch(ctx context.Context, address string) (dex.TokenDescriptor, error) {
	if r.fetcher == nil {
		return dex.TokenDescriptor{}, fmt.Errorf("no mint fetcher configured for %s", address)
	}

	res, err := r.fetcher.GetParsedAccountInfo(ctx, address, r.commitment)
	if err != nil {
		return dex.TokenDescriptor{}, fmt.Errorf("failed to load mint %s: %w", address, err)
	}
	acct := res.Result.Value
	if acct == nil {
		return dex.TokenDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	owner := acct.Owner
	if owner != solana.TokenProgramID.String() && owner != solana.Token2022ProgramID.String() {
		return dex.TokenDescriptor{}, fmt.Errorf("%w: %s is owned by %s", ErrNotMint, address, owner)
	}

	info, ok := acct.Mint()
	if !ok {
		return dex.TokenDescriptor{}, fmt.Errorf("%w: %s", ErrNotMint, address)
	}

	r.logger.WithFields(logrus.Fields{
		"token":    address,
		"decimals": info.Decimals,
		"program":  owner,
	}).Debug("Resolved mint on-chain")

	return dex.TokenDescriptor{
		Address:  address,
		Mint:     address,
		Decimals: info.Decimals,
		Program:  owner,
	}, nil
}

// IsInvalid reports whether err means the token itself is unusable, as opposed
// to a failed lookup.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidAddress) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotMint)
}
