// internal/minter/errors.go
package minter

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/solana-nft-mint/internal/wallet"
)

var (
	ErrIdentity               = errors.New("identity unavailable")
	ErrAirdropRejected        = errors.New("airdrop request rejected")
	ErrFundingTimeout         = errors.New("funding not observed in time")
	ErrAccountCreationFailed  = errors.New("account creation failed")
	ErrMintFailed             = errors.New("mint failed")
	ErrMetadataCreationFailed = errors.New("metadata creation failed")
	ErrEditionUpgradeFailed   = errors.New("master edition upgrade failed")
	ErrDecode                 = errors.New("metadata record could not be decoded")
	ErrAddressMismatch        = errors.New("metadata record does not belong to the minted token")
)

// StageError несёт имя стадии, на которой остановился конвейер.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// fail оборачивает причину в класс ошибки стадии.
func fail(stage Stage, class, cause error) error {
	if cause == nil {
		return &StageError{Stage: stage, Err: class}
	}
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", class, cause)}
}

// Коды завершения процесса.
const (
	ExitOK       = 0
	ExitConfig   = 1
	ExitIdentity = 2
	ExitFunding  = 3
	ExitAccounts = 4
	ExitMint     = 5
	ExitMetadata = 6
	ExitEdition  = 7
	ExitDecode   = 8
	ExitCanceled = 130
)

var exitCodes = []struct {
	err  error
	code int
}{
	{context.Canceled, ExitCanceled},
	{ErrDecode, ExitDecode},
	{ErrAddressMismatch, ExitDecode},
	{ErrIdentity, ExitIdentity},
	{wallet.ErrStorage, ExitIdentity},
	{ErrAirdropRejected, ExitFunding},
	{ErrFundingTimeout, ExitFunding},
	{ErrAccountCreationFailed, ExitAccounts},
	{ErrMintFailed, ExitMint},
	{ErrMetadataCreationFailed, ExitMetadata},
	{ErrEditionUpgradeFailed, ExitEdition},
}

var stageExitCodes = map[Stage]int{
	StageIdentity:     ExitIdentity,
	StageFunding:      ExitFunding,
	StageMintAccount:  ExitAccounts,
	StageTokenAccount: ExitAccounts,
	StageMint:         ExitMint,
	StageMetadata:     ExitMetadata,
	StageEdition:      ExitEdition,
}

// ExitCode сопоставляет ошибку конвейера с кодом завершения процесса.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, c := range exitCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		if code, ok := stageExitCodes[stageErr.Stage]; ok {
			return code
		}
	}
	return ExitConfig
}
