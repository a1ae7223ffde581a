// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrAccountNotFound: аккаунт отсутствует в леджере.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionFailed: транзакция включена в блок, но завершилась ошибкой.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrConfirmationTimeout: подтверждение не получено за отведённое время.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
)

// Client определяет общий интерфейс для взаимодействия с леджером.
type Client interface {
	// Получить баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Получить последний blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Запросить airdrop (только devnet/testnet).
	RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error)
	// Минимальный баланс для освобождения от ренты.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	// Отправить транзакцию и дождаться подтверждения.
	SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Получить данные аккаунта; ErrAccountNotFound, если аккаунта нет.
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
}
