// internal/blockchain/fakeledger/ledger_test.go
package fakeledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
	txbuilder "github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sol = 1_000_000_000

func submit(t *testing.T, l *Ledger, signers []solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	t.Helper()
	b := txbuilder.NewBuilder().AddInstructions(instructions...)
	for _, s := range signers {
		b.AddSigner(s)
	}
	tx, err := b.Build(context.Background(), l)
	require.NoError(t, err)
	return l.SendAndConfirmTransaction(context.Background(), tx)
}

func createMintIxs(t *testing.T, payer, mint solana.PublicKey) []solana.Instruction {
	t.Helper()
	create := system.NewCreateAccountInstruction(RentExemptMinimum(MintSize), MintSize, solana.TokenProgramID, payer, mint).Build()
	initMint, err := token.NewInitializeMintInstructionBuilder().
		SetDecimals(0).
		SetMintAuthority(payer).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey).
		ValidateAndBuild()
	require.NoError(t, err)
	return []solana.Instruction{create, initMint}
}

func createHoldingIxs(payer, holding, mint solana.PublicKey) []solana.Instruction {
	return []solana.Instruction{
		system.NewCreateAccountInstruction(RentExemptMinimum(TokenAccountSize), TokenAccountSize, solana.TokenProgramID, payer, holding).Build(),
		token.NewInitializeAccount2Instruction(payer, holding, mint, solana.SysVarRentPubkey).Build(),
	}
}

type minted struct {
	owner   solana.PrivateKey
	mint    solana.PrivateKey
	holding solana.PrivateKey
}

func setupMinted(t *testing.T, l *Ledger) minted {
	t.Helper()
	m := minted{
		owner:   solana.NewWallet().PrivateKey,
		mint:    solana.NewWallet().PrivateKey,
		holding: solana.NewWallet().PrivateKey,
	}
	owner := m.owner.PublicKey()
	l.Fund(owner, 2*sol)

	_, err := submit(t, l, []solana.PrivateKey{m.owner, m.mint}, createMintIxs(t, owner, m.mint.PublicKey())...)
	require.NoError(t, err)
	_, err = submit(t, l, []solana.PrivateKey{m.owner, m.holding}, createHoldingIxs(owner, m.holding.PublicKey(), m.mint.PublicKey())...)
	require.NoError(t, err)
	_, err = submit(t, l, []solana.PrivateKey{m.owner},
		token.NewMintToInstruction(1, m.mint.PublicKey(), m.holding.PublicKey(), owner, nil).Build())
	require.NoError(t, err)
	return m
}

func metadataIx(t *testing.T, owner, mint solana.PublicKey) solana.Instruction {
	t.Helper()
	addr, err := tokenmetadata.MetadataAddress(mint)
	require.NoError(t, err)
	ix, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
		tokenmetadata.CreateMetadataAccountV3Accounts{
			Metadata: addr, Mint: mint, MintAuthority: owner, Payer: owner, UpdateAuthority: owner,
		},
		tokenmetadata.CreateMetadataAccountV3Args{
			Data: tokenmetadata.DataV2{Name: "Will Coin", Symbol: "W", URI: "https://solana.com"},
		},
	)
	require.NoError(t, err)
	return ix
}

func editionIx(t *testing.T, owner, mint solana.PublicKey) solana.Instruction {
	t.Helper()
	metadata, err := tokenmetadata.MetadataAddress(mint)
	require.NoError(t, err)
	edition, err := tokenmetadata.MasterEditionAddress(mint)
	require.NoError(t, err)
	maxSupply := uint64(1)
	ix, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
		tokenmetadata.CreateMasterEditionV3Accounts{
			Edition: edition, Mint: mint, UpdateAuthority: owner, MintAuthority: owner, Payer: owner, Metadata: metadata,
		},
		tokenmetadata.CreateMasterEditionV3Args{MaxSupply: &maxSupply},
	)
	require.NoError(t, err)
	return ix
}

func TestRentExemptMinimum(t *testing.T) {
	assert.Equal(t, uint64(1461600), RentExemptMinimum(MintSize))
	assert.Equal(t, uint64(2039280), RentExemptMinimum(TokenAccountSize))
	assert.Equal(t, uint64(890880), RentExemptMinimum(0))
}

func TestLedger_Airdrop(t *testing.T) {
	ctx := context.Background()
	l := New(WithAirdropDelay(2))
	owner := solana.NewWallet().PublicKey()

	_, err := l.RequestAirdrop(ctx, owner, sol)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Airdrops())

	for i := 0; i < 2; i++ {
		balance, err := l.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		require.NoError(t, err)
		assert.Zero(t, balance, "poll %d", i)
	}
	balance, err := l.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(sol), balance)

	t.Run("faucet limit", func(t *testing.T) {
		limited := New(WithFaucetLimit(sol))
		_, err := limited.RequestAirdrop(ctx, owner, 2*sol)
		assert.Error(t, err)
		assert.Zero(t, limited.Airdrops())
	})
}

func TestLedger_MintLifecycle(t *testing.T) {
	l := New()
	m := setupMinted(t, l)
	owner, mint := m.owner.PublicKey(), m.mint.PublicKey()

	acc, ok := l.Account(m.holding.PublicKey())
	require.True(t, ok)
	var holding token.Account
	require.NoError(t, decode(acc.Data, &holding))
	assert.Equal(t, uint64(1), holding.Amount)
	assert.Equal(t, owner, holding.Owner)

	_, err := submit(t, l, []solana.PrivateKey{m.owner}, metadataIx(t, owner, mint))
	require.NoError(t, err)

	metadataAddr, _ := tokenmetadata.MetadataAddress(mint)
	data, err := l.GetAccountData(context.Background(), metadataAddr)
	require.NoError(t, err)
	assert.Len(t, data, tokenmetadata.MaxMetadataLen)
	record, err := tokenmetadata.DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, mint, record.Mint)
	assert.Equal(t, "Will Coin", record.Name())
	assert.False(t, record.IsMutable)

	_, err = submit(t, l, []solana.PrivateKey{m.owner}, editionIx(t, owner, mint))
	require.NoError(t, err)

	editionAddr, _ := tokenmetadata.MasterEditionAddress(mint)
	editionData, err := l.GetAccountData(context.Background(), editionAddr)
	require.NoError(t, err)
	edition, err := tokenmetadata.DecodeMasterEdition(editionData)
	require.NoError(t, err)
	require.NotNil(t, edition.MaxSupply)
	assert.Equal(t, uint64(1), *edition.MaxSupply)

	mintAcc, _ := l.Account(mint)
	var state token.Mint
	require.NoError(t, decode(mintAcc.Data, &state))
	require.NotNil(t, state.MintAuthority)
	assert.Equal(t, editionAddr, *state.MintAuthority)

	// После master edition минтить больше нельзя.
	_, err = submit(t, l, []solana.PrivateKey{m.owner},
		token.NewMintToInstruction(1, mint, m.holding.PublicKey(), owner, nil).Build())
	assert.ErrorIs(t, err, blockchain.ErrTransactionFailed)
	assert.ErrorContains(t, err, ErrAuthorityMismatch.Error())

	_, err = submit(t, l, []solana.PrivateKey{m.owner}, editionIx(t, owner, mint))
	assert.ErrorIs(t, err, blockchain.ErrTransactionFailed)
}

func TestLedger_Rejections(t *testing.T) {
	t.Run("metadata before mint supply", func(t *testing.T) {
		l := New()
		owner := solana.NewWallet().PrivateKey
		mint := solana.NewWallet().PrivateKey
		l.Fund(owner.PublicKey(), sol)
		_, err := submit(t, l, []solana.PrivateKey{owner, mint}, createMintIxs(t, owner.PublicKey(), mint.PublicKey())...)
		require.NoError(t, err)

		_, err = submit(t, l, []solana.PrivateKey{owner}, metadataIx(t, owner.PublicKey(), mint.PublicKey()))
		require.NoError(t, err)

		_, err = submit(t, l, []solana.PrivateKey{owner}, editionIx(t, owner.PublicKey(), mint.PublicKey()))
		assert.ErrorContains(t, err, ErrEditionSupply.Error())
	})

	t.Run("foreign mint authority", func(t *testing.T) {
		l := New()
		m := setupMinted(t, l)
		stranger := solana.NewWallet().PrivateKey
		l.Fund(stranger.PublicKey(), sol)

		_, err := submit(t, l, []solana.PrivateKey{stranger}, metadataIx(t, stranger.PublicKey(), m.mint.PublicKey()))
		assert.ErrorContains(t, err, ErrAuthorityMismatch.Error())
	})

	t.Run("insufficient funds leaves state untouched", func(t *testing.T) {
		l := New()
		owner := solana.NewWallet().PrivateKey
		mint := solana.NewWallet().PrivateKey
		l.Fund(owner.PublicKey(), 100_000)

		_, err := submit(t, l, []solana.PrivateKey{owner, mint}, createMintIxs(t, owner.PublicKey(), mint.PublicKey())...)
		assert.ErrorContains(t, err, ErrInsufficientFunds.Error())

		_, ok := l.Account(mint.PublicKey())
		assert.False(t, ok)
		acc, _ := l.Account(owner.PublicKey())
		assert.Equal(t, uint64(100_000-2*LamportsPerSignature), acc.Lamports)
	})

	t.Run("tampered signature", func(t *testing.T) {
		l := New()
		owner := solana.NewWallet().PrivateKey
		l.Fund(owner.PublicKey(), sol)
		mint := solana.NewWallet().PrivateKey

		b := txbuilder.NewBuilder().AddInstructions(createMintIxs(t, owner.PublicKey(), mint.PublicKey())...)
		tx, err := b.AddSigner(owner).AddSigner(mint).Build(context.Background(), l)
		require.NoError(t, err)
		tx.Signatures[1][3] ^= 0x01

		_, err = l.SendAndConfirmTransaction(context.Background(), tx)
		assert.ErrorIs(t, err, ErrSignatureVerification)
	})

	t.Run("unknown blockhash", func(t *testing.T) {
		l := New()
		other := New()
		owner := solana.NewWallet().PrivateKey
		l.Fund(owner.PublicKey(), sol)

		tx, err := txbuilder.NewBuilder().
			AddInstructions(createHoldingIxs(owner.PublicKey(), owner.PublicKey(), owner.PublicKey())[0]).
			AddSigner(owner).
			Build(context.Background(), other)
		require.NoError(t, err)

		_, err = l.SendAndConfirmTransaction(context.Background(), tx)
		assert.ErrorIs(t, err, ErrBlockhashNotFound)
	})

	t.Run("replay", func(t *testing.T) {
		l := New()
		owner := solana.NewWallet().PrivateKey
		mint := solana.NewWallet().PrivateKey
		l.Fund(owner.PublicKey(), sol)

		tx, err := txbuilder.NewBuilder().
			AddInstructions(createMintIxs(t, owner.PublicKey(), mint.PublicKey())...).
			AddSigner(owner).AddSigner(mint).
			Build(context.Background(), l)
		require.NoError(t, err)

		_, err = l.SendAndConfirmTransaction(context.Background(), tx)
		require.NoError(t, err)
		_, err = l.SendAndConfirmTransaction(context.Background(), tx)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})
}

func TestLedger_Faults(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("injected")

	l := New()
	l.FailMethod("GetMinimumBalanceForRentExemption", boom)
	_, err := l.GetMinimumBalanceForRentExemption(ctx, MintSize)
	assert.ErrorIs(t, err, boom)

	l.ClearFaults()
	_, err = l.GetMinimumBalanceForRentExemption(ctx, MintSize)
	assert.NoError(t, err)

	m := setupMinted(t, l)
	l.FailInstruction("CreateMetadataAccountV3", boom)
	_, err = submit(t, l, []solana.PrivateKey{m.owner}, metadataIx(t, m.owner.PublicKey(), m.mint.PublicKey()))
	assert.ErrorIs(t, err, blockchain.ErrTransactionFailed)
	assert.ErrorContains(t, err, "injected")

	metadataAddr, _ := tokenmetadata.MetadataAddress(m.mint.PublicKey())
	_, err = l.GetAccountData(ctx, metadataAddr)
	assert.ErrorIs(t, err, blockchain.ErrAccountNotFound)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.GetBalance(canceled, m.owner.PublicKey(), rpc.CommitmentConfirmed)
	assert.ErrorIs(t, err, context.Canceled)
}
