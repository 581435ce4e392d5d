package swapengine

import (
	"testing"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransaction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()

	tx, err := DecodeTransaction(builtSwapTx(t, payer, true, true))
	require.NoError(t, err)
	assert.Equal(t, payer, tx.Message.AccountKeys[0])
	assert.Len(t, tx.Message.Instructions, 3)

	_, err = DecodeTransaction("%%%")
	assert.Error(t, err)
	_, err = DecodeTransaction("AAAA")
	assert.Error(t, err)
}

func TestVerifyFeePayer(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	tx, err := DecodeTransaction(builtSwapTx(t, payer, false, false))
	require.NoError(t, err)

	assert.NoError(t, VerifyFeePayer(tx, payer))
	assert.Error(t, VerifyFeePayer(tx, solana.NewWallet().PublicKey()))
}

func TestVerifyWrap(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	native := &SwapParams{From: dex.TokenDescriptor{Native: true}}
	nativeOut := &SwapParams{To: dex.TokenDescriptor{Native: true}}
	spl := &SwapParams{}

	wrapped, err := DecodeTransaction(builtSwapTx(t, payer, true, false))
	require.NoError(t, err)
	unwrapped, err := DecodeTransaction(builtSwapTx(t, payer, false, true))
	require.NoError(t, err)
	plain, err := DecodeTransaction(builtSwapTx(t, payer, false, false))
	require.NoError(t, err)

	assert.NoError(t, VerifyWrap(wrapped, native))
	assert.Error(t, VerifyWrap(plain, native))
	assert.Error(t, VerifyWrap(unwrapped, native))

	assert.NoError(t, VerifyWrap(unwrapped, nativeOut))
	assert.Error(t, VerifyWrap(wrapped, nativeOut))

	assert.NoError(t, VerifyWrap(plain, spl))
}

func TestVerifyRecipient(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()

	tx, err := DecodeTransaction(builtSwapTx(t, payer, false, false, dest))
	require.NoError(t, err)
	assert.NoError(t, VerifyRecipient(tx, dest))
	assert.Error(t, VerifyRecipient(tx, solana.NewWallet().PublicKey()))
}
