package swapengine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ResolvedTokenAccount describes a token account to use for a swap plus any
// instructions needed to make it usable (e.g. create ATA).
type ResolvedTokenAccount struct {
	Account solana.PublicKey
	Created bool // true if PreIxs creates the account
	PreIxs  []solana.Instruction
}

type TokenAccountResolver interface {
	Resolve(ctx context.Context, payer, owner, mint, tokenProgram solana.PublicKey) (*ResolvedTokenAccount, error)
}

// DefaultTokenAccountResolver resolves the owner's ATA for a mint, paid for by payer.
type DefaultTokenAccountResolver struct {
	network Network
}

func NewDefaultTokenAccountResolver(n Network) *DefaultTokenAccountResolver {
	return &DefaultTokenAccountResolver{network: n}
}

func (r *DefaultTokenAccountResolver) Resolve(ctx context.Context, payer, owner, mint, tokenProgram solana.PublicKey) (*ResolvedTokenAccount, error) {
	if r == nil || r.network == nil {
		return nil, fmt.Errorf("token account resolver: network is nil")
	}
	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}

	ata, _, err := FindAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account: %w", err)
	}

	exists, err := r.network.AccountExists(ctx, ata)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ResolvedTokenAccount{Account: ata}, nil
	}

	return &ResolvedTokenAccount{
		Account: ata,
		Created: true,
		PreIxs:  []solana.Instruction{NewCreateIdempotentATAIx(payer, ata, owner, mint, tokenProgram)},
	}, nil
}
