// internal/blockchain/fakeledger/ledger.go
package fakeledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"go.uber.org/zap"
)

// Параметры ренты и комиссии как в mainnet.
const (
	LamportsPerByteYear    = 3480
	ExemptionThreshold     = 2
	AccountStorageOverhead = 128
	LamportsPerSignature   = 5000
)

// RentExemptMinimum возвращает минимальный баланс для аккаунта размером size.
func RentExemptMinimum(size uint64) uint64 {
	return (size + AccountStorageOverhead) * LamportsPerByteYear * ExemptionThreshold
}

// Account хранит состояние аккаунта в леджере.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

func (a *Account) clone() *Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{Lamports: a.Lamports, Owner: a.Owner, Data: data}
}

// Option настраивает Ledger.
type Option func(*Ledger)

// WithAirdropDelay задаёт число запросов баланса, после которого airdrop зачисляется.
func WithAirdropDelay(polls int) Option {
	return func(l *Ledger) { l.airdropDelay = polls }
}

// WithFaucetLimit ограничивает размер одного airdrop.
func WithFaucetLimit(lamports uint64) Option {
	return func(l *Ledger) { l.faucetLimit = lamports }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger.Named("fake-ledger") }
}

type pendingAirdrop struct {
	account  solana.PublicKey
	lamports uint64
	polls    int
}

// Ledger реализует детерминированный in-memory леджер, исполняющий system, token
// и token-metadata инструкции. Реализует blockchain.Client.
type Ledger struct {
	mu sync.Mutex

	accounts    map[solana.PublicKey]*Account
	processed   map[solana.Signature]struct{}
	blockhashes map[solana.Hash]struct{}
	slot        uint64

	pending      []*pendingAirdrop
	airdropDelay int
	faucetLimit  uint64
	airdrops     int

	methodFaults      map[string]error
	instructionFaults map[string]error

	logger *zap.Logger
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts:          make(map[solana.PublicKey]*Account),
		processed:         make(map[solana.Signature]struct{}),
		blockhashes:       make(map[solana.Hash]struct{}),
		methodFaults:      make(map[string]error),
		instructionFaults: make(map[string]error),
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FailMethod заставляет метод клиента возвращать err до вызова ClearFaults.
func (l *Ledger) FailMethod(method string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.methodFaults[method] = err
}

// FailInstruction отклоняет любую транзакцию с инструкцией name
// (например "CreateAccount", "MintTo", "CreateMasterEditionV3").
func (l *Ledger) FailInstruction(name string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.instructionFaults[name] = err
}

func (l *Ledger) ClearFaults() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.methodFaults = make(map[string]error)
	l.instructionFaults = make(map[string]error)
}

// Airdrops возвращает число принятых запросов airdrop.
func (l *Ledger) Airdrops() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.airdrops
}

// Fund зачисляет лампорты напрямую, минуя faucet.
func (l *Ledger) Fund(pubkey solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(pubkey, lamports)
}

// Account возвращает копию аккаунта.
func (l *Ledger) Account(pubkey solana.PublicKey) (*Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[pubkey]
	if !ok {
		return nil, false
	}
	return acc.clone(), true
}

// SetAccountData перезаписывает данные существующего аккаунта.
func (l *Ledger) SetAccountData(pubkey solana.PublicKey, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[pubkey]
	if !ok {
		return fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	acc.Data = append([]byte(nil), data...)
	return nil
}

func (l *Ledger) credit(pubkey solana.PublicKey, lamports uint64) {
	acc, ok := l.accounts[pubkey]
	if !ok {
		acc = &Account{Owner: solana.SystemProgramID}
		l.accounts[pubkey] = acc
	}
	acc.Lamports += lamports
}

func (l *Ledger) fault(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.methodFaults[method]
}

func (l *Ledger) GetBalance(ctx context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "GetBalance"); err != nil {
		return 0, err
	}

	remaining := l.pending[:0]
	for _, p := range l.pending {
		if p.account == pubkey {
			p.polls++
			if p.polls > l.airdropDelay {
				l.credit(p.account, p.lamports)
				continue
			}
		}
		remaining = append(remaining, p)
	}
	l.pending = remaining

	if acc, ok := l.accounts[pubkey]; ok {
		return acc.Lamports, nil
	}
	return 0, nil
}

// GetRecentBlockhash выдаёт новый blockhash на каждый вызов.
func (l *Ledger) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "GetRecentBlockhash"); err != nil {
		return solana.Hash{}, err
	}

	l.slot++
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], l.slot)
	hash := solana.Hash(sha256.Sum256(append([]byte("blockhash"), seed[:]...)))
	l.blockhashes[hash] = struct{}{}
	return hash, nil
}

func (l *Ledger) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "RequestAirdrop"); err != nil {
		return solana.Signature{}, err
	}
	if l.faucetLimit > 0 && lamports > l.faucetLimit {
		return solana.Signature{}, fmt.Errorf("airdrop request of %d lamports exceeds faucet limit %d", lamports, l.faucetLimit)
	}

	l.airdrops++
	l.pending = append(l.pending, &pendingAirdrop{account: pubkey, lamports: lamports})

	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[:8], uint64(l.airdrops))
	binary.LittleEndian.PutUint64(seed[8:], lamports)
	digest := sha256.Sum256(append(pubkey.Bytes(), seed[:]...))
	var sig solana.Signature
	copy(sig[:], digest[:])
	copy(sig[32:], digest[:])

	l.logger.Debug("Airdrop accepted",
		zap.String("pubkey", pubkey.String()),
		zap.Uint64("lamports", lamports))
	return sig, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "GetMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return RentExemptMinimum(dataSize), nil
}

// SendAndConfirmTransaction исполняет транзакцию атомарно: либо все инструкции
// применяются, либо состояние не меняется.
func (l *Ledger) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "SendAndConfirmTransaction"); err != nil {
		return solana.Signature{}, err
	}

	sig, err := l.execute(tx)
	if err != nil {
		l.logger.Debug("Transaction rejected", zap.Error(err))
		return sig, err
	}
	l.logger.Debug("Transaction executed", zap.String("signature", sig.String()))
	return sig, nil
}

func (l *Ledger) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fault(ctx, "GetAccountData"); err != nil {
		return nil, err
	}
	acc, ok := l.accounts[pubkey]
	if !ok || (acc.Lamports == 0 && len(acc.Data) == 0) {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	return append([]byte(nil), acc.Data...), nil
}

var _ blockchain.Client = (*Ledger)(nil)
