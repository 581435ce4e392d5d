package swapengine

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAssociatedTokenAddress_ProgramAware(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58(usdcMint)

	a1, _, err := FindAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	a2, _, err := FindAssociatedTokenAddress(owner, mint, solana.Token2022ProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)

	again, _, err := FindAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, a1, again)
}

func TestDefaultTokenAccountResolver(t *testing.T) {
	network := newFakeNetwork()
	r := NewDefaultTokenAccountResolver(network)
	payer := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58(bonkMint)

	res, err := r.Resolve(context.Background(), payer, owner, mint, solana.PublicKey{})
	require.NoError(t, err)
	assert.True(t, res.Created)
	require.Len(t, res.PreIxs, 1)

	ix := res.PreIxs[0]
	assert.Equal(t, associatedTokenProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{ataIxCreateIdempotent}, data)
	accts := ix.Accounts()
	assert.Equal(t, payer, accts[0].PublicKey)
	assert.True(t, accts[0].IsSigner)
	assert.Equal(t, res.Account, accts[1].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accts[5].PublicKey)

	network.existing[res.Account] = true
	res, err = r.Resolve(context.Background(), payer, owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Empty(t, res.PreIxs)
}

func TestDefaultTokenAccountResolver_NilNetwork(t *testing.T) {
	var r *DefaultTokenAccountResolver
	_, err := r.Resolve(context.Background(), solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{})
	assert.Error(t, err)
}
