// internal/blockchain/solana/transaction/builder.go
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/computebudget"
)

var (
	ErrNoSigners      = errors.New("no signers provided")
	ErrNoInstructions = errors.New("no instructions provided")
	ErrMissingSigner  = errors.New("missing required signer")
)

// BlockhashSource определяет интерфейс получения blockhash.
type BlockhashSource interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}

// SignFunc подписывает свою часть транзакции, не трогая чужие подписи.
type SignFunc func(tx *solana.Transaction) error

// Builder помогает конструировать транзакции. Комиссию платит feePayer,
// а если он не задан, первый подписант.
type Builder struct {
	instructions []solana.Instruction
	signers      []solana.PrivateKey
	external     []SignFunc
	feePayer     solana.PublicKey
	budget       computebudget.Config
}

func NewBuilder() *Builder {
	return &Builder{}
}

// SetComputeBudget устанавливает параметры compute budget
func (b *Builder) SetComputeBudget(config computebudget.Config) *Builder {
	b.budget = config
	return b
}

// AddInstructions добавляет инструкции в транзакцию
func (b *Builder) AddInstructions(instructions ...solana.Instruction) *Builder {
	b.instructions = append(b.instructions, instructions...)
	return b
}

// AddSigner добавляет подписанта транзакции
func (b *Builder) AddSigner(signer solana.PrivateKey) *Builder {
	b.signers = append(b.signers, signer)
	return b
}

// SetFeePayer задаёт плательщика, ключ которого хранится вне builder.
// Его подпись ставится через AddExternalSigner.
func (b *Builder) SetFeePayer(payer solana.PublicKey) *Builder {
	b.feePayer = payer
	return b
}

// AddExternalSigner добавляет подписанта, который сам владеет ключом.
func (b *Builder) AddExternalSigner(sign SignFunc) *Builder {
	b.external = append(b.external, sign)
	return b
}

// Build создает и подписывает транзакцию
func (b *Builder) Build(ctx context.Context, source BlockhashSource) (*solana.Transaction, error) {
	payer := b.feePayer
	if payer.IsZero() {
		if len(b.signers) == 0 {
			return nil, ErrNoSigners
		}
		payer = b.signers[0].PublicKey()
	}
	if len(b.instructions) == 0 {
		return nil, ErrNoInstructions
	}

	blockhash, err := source.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	budgetInstructions, err := computebudget.BuildInstructions(b.budget)
	if err != nil {
		return nil, fmt.Errorf("failed to build compute budget instructions: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(budgetInstructions)+len(b.instructions))
	instructions = append(instructions, budgetInstructions...)
	instructions = append(instructions, b.instructions...)

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, signer := range b.signers {
			if signer.PublicKey().Equals(key) {
				privateCopy := signer
				return &privateCopy
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	for _, sign := range b.external {
		if err := sign(tx); err != nil {
			return nil, fmt.Errorf("external signer: %w", err)
		}
	}

	if err := requireSignatures(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// requireSignatures проверяет, что каждая обязательная подпись поставлена.
func requireSignatures(tx *solana.Transaction) error {
	signers := tx.Message.Signers()
	if len(tx.Signatures) != len(signers) {
		return fmt.Errorf("%w: have %d signatures, need %d", ErrMissingSigner, len(tx.Signatures), len(signers))
	}
	for i, key := range signers {
		if tx.Signatures[i].IsZero() {
			return fmt.Errorf("%w: %s", ErrMissingSigner, key)
		}
	}
	return nil
}
