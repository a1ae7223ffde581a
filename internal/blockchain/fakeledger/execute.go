// internal/blockchain/fakeledger/execute.go
package fakeledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
)

// Ошибки отклонения транзакции до исполнения.
var (
	ErrSignatureVerification = errors.New("signature verification failed")
	ErrBlockhashNotFound     = errors.New("blockhash not found")
	ErrAlreadyProcessed      = errors.New("transaction already processed")
)

// Ошибки исполнения инструкций.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountInUse           = errors.New("account already in use")
	ErrNotRentExempt          = errors.New("account is not rent exempt")
	ErrMissingSignature       = errors.New("missing required signature")
	ErrInvalidAccountOwner    = errors.New("invalid account owner")
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrUninitialized          = errors.New("account not initialized")
	ErrAlreadyInitialized     = errors.New("account already initialized")
	ErrFixedSupply            = errors.New("mint has a fixed supply")
	ErrAuthorityMismatch      = errors.New("authority mismatch")
	ErrMintMismatch           = errors.New("mint mismatch")
	ErrInvalidSeeds           = errors.New("derived address does not match seeds")
	ErrEditionSupply          = errors.New("editions must have exactly one token")
	ErrUnsupportedProgram     = errors.New("unsupported program")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
)

// executor применяет инструкции одной транзакции к копии состояния.
type executor struct {
	accounts map[solana.PublicKey]*Account
	faults   map[string]error
}

func (l *Ledger) execute(tx *solana.Transaction) (solana.Signature, error) {
	if tx == nil || len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("%w: unsigned transaction", ErrSignatureVerification)
	}
	sig := tx.Signatures[0]

	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return sig, fmt.Errorf("%w: have %d of %d signatures",
			ErrSignatureVerification, len(tx.Signatures), tx.Message.Header.NumRequiredSignatures)
	}
	if err := tx.VerifySignatures(); err != nil {
		return sig, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}
	if _, ok := l.blockhashes[tx.Message.RecentBlockhash]; !ok {
		return sig, ErrBlockhashNotFound
	}
	if _, dup := l.processed[sig]; dup {
		return sig, ErrAlreadyProcessed
	}

	payer := tx.Message.AccountKeys[0]
	fee := uint64(LamportsPerSignature) * uint64(len(tx.Signatures))
	payerAcc, ok := l.accounts[payer]
	if !ok || payerAcc.Lamports < fee {
		return sig, fmt.Errorf("%w: fee payer %s cannot pay %d lamports", ErrInsufficientFunds, payer, fee)
	}

	x := &executor{
		accounts: make(map[solana.PublicKey]*Account, len(l.accounts)),
		faults:   l.instructionFaults,
	}
	for k, v := range l.accounts {
		x.accounts[k] = v.clone()
	}
	x.accounts[payer].Lamports -= fee

	for i, ci := range tx.Message.Instructions {
		err := x.run(&tx.Message, ci)
		if err != nil {
			// комиссия списывается и с неуспешной транзакции
			payerAcc.Lamports -= fee
			l.processed[sig] = struct{}{}
			return sig, fmt.Errorf("%w: instruction %d: %w", blockchain.ErrTransactionFailed, i, err)
		}
	}

	l.accounts = x.accounts
	l.processed[sig] = struct{}{}
	return sig, nil
}

func (x *executor) run(msg *solana.Message, ci solana.CompiledInstruction) error {
	program, err := msg.Program(ci.ProgramIDIndex)
	if err != nil {
		return err
	}
	accounts, err := ci.ResolveInstructionAccounts(msg)
	if err != nil {
		return err
	}
	data := []byte(ci.Data)

	switch program {
	case solana.SystemProgramID:
		return x.system(accounts, data)
	case solana.TokenProgramID:
		return x.token(accounts, data)
	case tokenmetadata.ProgramID:
		return x.metadata(accounts, data)
	case computebudget.ProgramID, solana.MemoProgramID:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedProgram, program)
	}
}

func (x *executor) fault(name string) error {
	if err, ok := x.faults[name]; ok {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (x *executor) debit(pubkey solana.PublicKey, lamports uint64) error {
	acc, ok := x.accounts[pubkey]
	if !ok || acc.Lamports < lamports {
		return fmt.Errorf("%w: %s needs %d lamports", ErrInsufficientFunds, pubkey, lamports)
	}
	acc.Lamports -= lamports
	return nil
}

func (x *executor) exists(pubkey solana.PublicKey) bool {
	acc, ok := x.accounts[pubkey]
	return ok && (acc.Lamports > 0 || len(acc.Data) > 0)
}

// owned возвращает аккаунт, если он существует и принадлежит owner.
func (x *executor) owned(pubkey, owner solana.PublicKey) (*Account, error) {
	acc, ok := x.accounts[pubkey]
	if !ok || (acc.Lamports == 0 && len(acc.Data) == 0) {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	if !acc.Owner.Equals(owner) {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrInvalidAccountOwner, pubkey, acc.Owner)
	}
	return acc, nil
}

// allocate создаёт аккаунт программы, оплачивая ренту с payer.
func (x *executor) allocate(payer, pubkey, owner solana.PublicKey, data []byte) error {
	if x.exists(pubkey) {
		return fmt.Errorf("%w: %s", ErrAccountInUse, pubkey)
	}
	rent := RentExemptMinimum(uint64(len(data)))
	if err := x.debit(payer, rent); err != nil {
		return err
	}
	x.accounts[pubkey] = &Account{Lamports: rent, Owner: owner, Data: data}
	return nil
}

func requireSigner(meta *solana.AccountMeta) error {
	if !meta.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)
	}
	return nil
}
