// internal/minter/accounts.go
package minter

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// Размеры SPL аккаунтов.
const (
	MintAccountSize  = token.MINT_SIZE
	TokenAccountSize = 165
)

// CreateMintAccount создаёт и инициализирует SPL минт с 0 знаков после
// запятой. Mint authority принадлежит identity, freeze authority отсутствует.
func (m *Minter) CreateMintAccount(ctx context.Context) (solana.PublicKey, error) {
	account, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fail(StageMintAccount, ErrAccountCreationFailed, err)
	}
	mint := account.PublicKey()

	rent, err := m.client.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return solana.PublicKey{}, fail(StageMintAccount, ErrAccountCreationFailed, err)
	}

	create := system.NewCreateAccountInstruction(
		rent, MintAccountSize, solana.TokenProgramID, m.identity.PublicKey, mint,
	).Build()
	initMint, err := token.NewInitializeMintInstructionBuilder().
		SetDecimals(0).
		SetMintAuthority(m.identity.PublicKey).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey).
		ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, fail(StageMintAccount, ErrAccountCreationFailed, err)
	}

	if _, err := m.submit(ctx, StageMintAccount, []solana.Instruction{create, initMint}, account); err != nil {
		return solana.PublicKey{}, fail(StageMintAccount, ErrAccountCreationFailed, err)
	}

	m.logger.Info("Mint account created", zap.String("mint", mint.String()), zap.Uint64("rent", rent))
	return mint, nil
}

// CreateTokenAccount создаёт аккаунт-хранилище токенов mint, принадлежащий identity.
func (m *Minter) CreateTokenAccount(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	account, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fail(StageTokenAccount, ErrAccountCreationFailed, err)
	}
	holding := account.PublicKey()

	rent, err := m.client.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize)
	if err != nil {
		return solana.PublicKey{}, fail(StageTokenAccount, ErrAccountCreationFailed, err)
	}

	create := system.NewCreateAccountInstruction(
		rent, TokenAccountSize, solana.TokenProgramID, m.identity.PublicKey, holding,
	).Build()
	initAccount, err := token.NewInitializeAccount2Instruction(
		m.identity.PublicKey, holding, mint, solana.SysVarRentPubkey,
	).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, fail(StageTokenAccount, ErrAccountCreationFailed, err)
	}

	if _, err := m.submit(ctx, StageTokenAccount, []solana.Instruction{create, initAccount}, account); err != nil {
		return solana.PublicKey{}, fail(StageTokenAccount, ErrAccountCreationFailed, err)
	}

	m.logger.Info("Token account created",
		zap.String("account", holding.String()),
		zap.String("mint", mint.String()))
	return holding, nil
}
