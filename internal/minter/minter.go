// internal/minter/minter.go
package minter

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/computebudget"
	txbuilder "github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/transaction"
	"github.com/rovshanmuradov/solana-nft-mint/internal/config"
	"github.com/rovshanmuradov/solana-nft-mint/internal/wallet"
	"go.uber.org/zap"
)

// Stage обозначает шаг конвейера.
type Stage string

const (
	StageIdentity     Stage = "identity"
	StageFunding      Stage = "funding"
	StageMintAccount  Stage = "mint_account"
	StageTokenAccount Stage = "token_account"
	StageMint         Stage = "mint"
	StageMetadata     Stage = "metadata"
	StageEdition      Stage = "edition"
)

// Stages перечисляет шаги в порядке исполнения.
var Stages = []Stage{
	StageIdentity,
	StageFunding,
	StageMintAccount,
	StageTokenAccount,
	StageMint,
	StageMetadata,
	StageEdition,
}

// TokenSpec описывает содержимое записи метаданных.
type TokenSpec struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}

// Settings содержит параметры стадий.
type Settings struct {
	Commitment          rpc.CommitmentType
	AirdropLamports     uint64
	FundingPollInterval time.Duration
	FundingMaxPolls     int
	ComputeBudget       computebudget.Config
	Token               TokenSpec
	SnapshotSource      string
}

// SettingsFromConfig переносит значения конфигурации в Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Commitment:          rpc.CommitmentType(cfg.Commitment),
		AirdropLamports:     cfg.AirdropLamports,
		FundingPollInterval: cfg.FundingPollInterval(),
		FundingMaxPolls:     cfg.FundingMaxPolls,
		ComputeBudget: computebudget.Config{
			Units:     cfg.ComputeUnitLimit,
			UnitPrice: cfg.ComputeUnitPrice,
		},
		Token: TokenSpec{
			Name:                 cfg.Token.Name,
			Symbol:               cfg.Token.Symbol,
			URI:                  cfg.Token.URI,
			SellerFeeBasisPoints: cfg.Token.SellerFeeBasisPoints,
		},
		SnapshotSource: cfg.SnapshotSource,
	}
}

// Option настраивает Minter.
type Option func(*Minter)

// WithEvents отправляет события стадий в канал (для TUI).
func WithEvents(events chan<- Event) Option {
	return func(m *Minter) { m.events = events }
}

// Minter исполняет стадии минта одного NFT от имени identity.
type Minter struct {
	client   blockchain.Client
	identity *wallet.Wallet
	settings Settings
	logger   *zap.Logger
	events   chan<- Event
}

func New(client blockchain.Client, identity *wallet.Wallet, settings Settings, logger *zap.Logger, opts ...Option) (*Minter, error) {
	if identity == nil {
		return nil, fail(StageIdentity, ErrIdentity, errors.New("no identity provided"))
	}
	if settings.Commitment == "" {
		settings.Commitment = rpc.CommitmentConfirmed
	}
	if settings.FundingMaxPolls <= 0 {
		settings.FundingMaxPolls = config.DefaultFundingMaxPolls
	}
	if settings.FundingPollInterval <= 0 {
		settings.FundingPollInterval = config.DefaultFundingPollMs * time.Millisecond
	}
	if settings.SnapshotSource == "" {
		settings.SnapshotSource = config.SnapshotFresh
	}

	m := &Minter{
		client:   client,
		identity: identity,
		settings: settings,
		logger:   logger.Named("minter"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Identity возвращает публичный ключ плательщика и владельца.
func (m *Minter) Identity() solana.PublicKey {
	return m.identity.PublicKey
}

// LoadIdentity загружает ключ из base58 строки или keygen файла.
func LoadIdentity(path, privateKey string) (*wallet.Wallet, bool, error) {
	if privateKey != "" {
		w, err := wallet.NewWallet(privateKey)
		if err != nil {
			return nil, false, fail(StageIdentity, ErrIdentity, err)
		}
		return w, false, nil
	}
	w, created, err := wallet.LoadOrCreate(path)
	if err != nil {
		return nil, false, fail(StageIdentity, ErrIdentity, err)
	}
	return w, created, nil
}

// submit собирает, подписывает и отправляет транзакцию стадии.
// Identity платит комиссию и подписывает свою часть сама.
// Успехом считается только подтверждение.
func (m *Minter) submit(ctx context.Context, stage Stage, instructions []solana.Instruction, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	builder := txbuilder.NewBuilder().
		SetComputeBudget(m.settings.ComputeBudget).
		AddInstructions(instructions...).
		SetFeePayer(m.identity.PublicKey).
		AddExternalSigner(m.identity.SignTransaction)
	for _, signer := range extraSigners {
		builder.AddSigner(signer)
	}

	tx, err := builder.Build(ctx, m.client)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := m.client.SendAndConfirmTransaction(ctx, tx)
	if err != nil {
		m.logger.Debug("Stage transaction failed",
			zap.String("stage", string(stage)),
			zap.String("signature", sig.String()),
			zap.Error(err))
		return sig, err
	}

	m.logger.Info("Transaction confirmed",
		zap.String("stage", string(stage)),
		zap.String("signature", sig.String()))
	return sig, nil
}
