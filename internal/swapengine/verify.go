package swapengine

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// DecodeTransaction decodes a base64 wire transaction (legacy or v0).
func DecodeTransaction(b64 string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode tx: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal tx: %w", err)
	}
	if len(tx.Message.AccountKeys) == 0 || len(tx.Message.Instructions) == 0 {
		return nil, fmt.Errorf("transaction has no accounts or instructions")
	}
	return tx, nil
}

// VerifyFeePayer checks the transaction is paid for by wallet.
func VerifyFeePayer(tx *solana.Transaction, wallet solana.PublicKey) error {
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(wallet) {
		return fmt.Errorf("fee payer is not the wallet %s", wallet)
	}
	return nil
}

// VerifyWrap checks that a native leg is actually wrapped or unwrapped:
// native input needs SyncNative, native output needs CloseAccount.
func VerifyWrap(tx *solana.Transaction, params *SwapParams) error {
	if params.From.Native && !hasTokenInstruction(tx, tokenIxSyncNative) {
		return fmt.Errorf("native SOL input but transaction has no SyncNative instruction")
	}
	if params.To.Native && !hasTokenInstruction(tx, tokenIxCloseAccount) {
		return fmt.Errorf("native SOL output but transaction has no CloseAccount instruction")
	}
	return nil
}

// VerifyRecipient checks the recipient token account is referenced by the transaction.
func VerifyRecipient(tx *solana.Transaction, account solana.PublicKey) error {
	for _, k := range tx.Message.AccountKeys {
		if k.Equals(account) {
			return nil
		}
	}
	return fmt.Errorf("recipient token account %s not referenced by transaction", account)
}

func hasTokenInstruction(tx *solana.Transaction, discriminator byte) bool {
	keys := tx.Message.AccountKeys
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			continue
		}
		if !keys[ix.ProgramIDIndex].Equals(solana.TokenProgramID) {
			continue
		}
		if len(ix.Data) > 0 && ix.Data[0] == discriminator {
			return true
		}
	}
	return false
}
