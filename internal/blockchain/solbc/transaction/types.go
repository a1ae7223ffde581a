// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// RPC перечисляет методы RPC-клиента, которые нужны менеджеру транзакций.
// *rpc.Client удовлетворяет этому интерфейсу.
type RPC interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

type Config struct {
	ConfirmationTime time.Duration
	PollInterval     time.Duration
	// RequestTimeout ограничивает отправку транзакции.
	RequestTimeout time.Duration
	SkipPreflight  bool
	Commitment     rpc.CommitmentType
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		ConfirmationTime: 60 * time.Second,
		PollInterval:     500 * time.Millisecond,
		RequestTimeout:   30 * time.Second,
		Commitment:       rpc.CommitmentConfirmed,
	}
}

// Статусы транзакции.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusConfirmed = "confirmed"
	StatusFinalized = "finalized"
	StatusFailed    = "failed"
)

type Status struct {
	Signature     solana.Signature
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
