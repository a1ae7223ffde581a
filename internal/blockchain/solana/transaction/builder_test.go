// internal/blockchain/solana/transaction/builder_test.go
package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/computebudget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBlockhash struct {
	hash solana.Hash
	err  error
}

func (s staticBlockhash) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return s.hash, s.err
}

func memo(signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(signer).SIGNER().WRITE()},
		[]byte("build"),
	)
}

func TestBuilder_Build(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	extra := solana.NewWallet().PrivateKey
	source := staticBlockhash{hash: solana.Hash{8}}

	t.Run("budget instructions go first", func(t *testing.T) {
		tx, err := NewBuilder().
			SetComputeBudget(computebudget.Config{Units: 200_000, UnitPrice: 1_000}).
			AddInstructions(memo(payer.PublicKey())).
			AddSigner(payer).
			Build(context.Background(), source)
		require.NoError(t, err)

		require.Len(t, tx.Message.Instructions, 3)
		for i := 0; i < 2; i++ {
			program, err := tx.Message.Program(tx.Message.Instructions[i].ProgramIDIndex)
			require.NoError(t, err)
			assert.Equal(t, computebudget.ProgramID, program)
		}
		assert.Equal(t, solana.Hash{8}, tx.Message.RecentBlockhash)
		assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
		assert.NoError(t, tx.VerifySignatures())
	})

	t.Run("extra signer", func(t *testing.T) {
		tx, err := NewBuilder().
			AddInstructions(memo(payer.PublicKey()), memo(extra.PublicKey())).
			AddSigner(payer).
			AddSigner(extra).
			Build(context.Background(), source)
		require.NoError(t, err)
		assert.Len(t, tx.Signatures, 2)
		assert.NoError(t, tx.VerifySignatures())
	})

	t.Run("missing signer", func(t *testing.T) {
		_, err := NewBuilder().
			AddInstructions(memo(extra.PublicKey())).
			AddSigner(payer).
			Build(context.Background(), source)
		assert.ErrorIs(t, err, ErrMissingSigner)
	})

	t.Run("external fee payer", func(t *testing.T) {
		calls := 0
		tx, err := NewBuilder().
			AddInstructions(memo(payer.PublicKey()), memo(extra.PublicKey())).
			SetFeePayer(payer.PublicKey()).
			AddExternalSigner(func(tx *solana.Transaction) error {
				calls++
				// Подпись extra уже стоит к моменту вызова.
				assert.False(t, tx.Signatures[1].IsZero())
				_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
					if key.Equals(payer.PublicKey()) {
						return &payer
					}
					return nil
				})
				return err
			}).
			AddSigner(extra).
			Build(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
		assert.NoError(t, tx.VerifySignatures())
	})

	t.Run("external signer leaves slot empty", func(t *testing.T) {
		_, err := NewBuilder().
			AddInstructions(memo(payer.PublicKey())).
			SetFeePayer(payer.PublicKey()).
			AddExternalSigner(func(*solana.Transaction) error { return nil }).
			Build(context.Background(), source)
		assert.ErrorIs(t, err, ErrMissingSigner)
	})

	t.Run("external signer error", func(t *testing.T) {
		boom := errors.New("locked")
		_, err := NewBuilder().
			AddInstructions(memo(payer.PublicKey())).
			SetFeePayer(payer.PublicKey()).
			AddExternalSigner(func(*solana.Transaction) error { return boom }).
			Build(context.Background(), source)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no signers", func(t *testing.T) {
		_, err := NewBuilder().AddInstructions(memo(payer.PublicKey())).Build(context.Background(), source)
		assert.ErrorIs(t, err, ErrNoSigners)
	})

	t.Run("no instructions", func(t *testing.T) {
		_, err := NewBuilder().AddSigner(payer).Build(context.Background(), source)
		assert.ErrorIs(t, err, ErrNoInstructions)
	})

	t.Run("blockhash failure", func(t *testing.T) {
		boom := errors.New("rpc down")
		_, err := NewBuilder().
			AddInstructions(memo(payer.PublicKey())).
			AddSigner(payer).
			Build(context.Background(), staticBlockhash{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}
