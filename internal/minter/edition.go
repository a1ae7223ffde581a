// internal/minter/edition.go
package minter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
	"github.com/rovshanmuradov/solana-nft-mint/internal/config"
	"go.uber.org/zap"
)

// MaxEditionSupply запрещает печать копий master edition.
const MaxEditionSupply uint64 = 1

var errNotAttached = errors.New("metadata was not attached by this minter")

// UpgradeToMasterEdition превращает токен в master edition с max supply 1.
// Принимает только результат успешного AttachMetadata этого же Minter.
func (m *Minter) UpgradeToMasterEdition(ctx context.Context, attached *AttachedMetadata) (*Snapshot, error) {
	if attached == nil || attached.issuer != m {
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, errNotAttached)
	}

	record, err := m.readMetadata(ctx, attached.address)
	if err != nil {
		return nil, err
	}
	if !record.Mint.Equals(attached.mint) {
		return nil, fail(StageEdition, ErrAddressMismatch,
			fmt.Errorf("record mint %s, expected %s", record.Mint, attached.mint))
	}

	// Адреса выводятся заново из mint, прочитанного из записи.
	metadataAddr, err := tokenmetadata.MetadataAddress(record.Mint)
	if err != nil {
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, err)
	}
	if !metadataAddr.Equals(attached.address) {
		return nil, fail(StageEdition, ErrAddressMismatch,
			fmt.Errorf("metadata address %s, expected %s", attached.address, metadataAddr))
	}
	editionAddr, err := tokenmetadata.MasterEditionAddress(record.Mint)
	if err != nil {
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, err)
	}

	owner := m.identity.PublicKey
	maxSupply := MaxEditionSupply
	ix, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
		tokenmetadata.CreateMasterEditionV3Accounts{
			Edition:         editionAddr,
			Mint:            record.Mint,
			UpdateAuthority: owner,
			MintAuthority:   owner,
			Payer:           owner,
			Metadata:        metadataAddr,
		},
		tokenmetadata.CreateMasterEditionV3Args{MaxSupply: &maxSupply},
	)
	if err != nil {
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, err)
	}

	sig, err := m.submit(ctx, StageEdition, []solana.Instruction{ix})
	if err != nil {
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, err)
	}
	m.logger.Info("Master edition created",
		zap.String("edition", editionAddr.String()),
		zap.Uint64("max_supply", maxSupply))

	// Edition уже подтверждён: сбой повторного чтения не отменяет стадию.
	source, sourceName := record, m.settings.SnapshotSource
	if sourceName != config.SnapshotPreUpgrade {
		fresh, err := m.readMetadata(ctx, metadataAddr)
		if err != nil {
			m.logger.Warn("Fresh metadata read failed, using pre-upgrade record",
				zap.String("metadata", metadataAddr.String()),
				zap.Error(err))
			sourceName = config.SnapshotPreUpgrade
		} else {
			source = fresh
		}
	}

	snapshot := newSnapshot(source, attached, editionAddr)
	snapshot.MaxSupply = &maxSupply
	snapshot.EditionSignature = sig
	snapshot.Source = sourceName
	return snapshot, nil
}

// readMetadata читает и разбирает запись метаданных.
func (m *Minter) readMetadata(ctx context.Context, address solana.PublicKey) (*tokenmetadata.Metadata, error) {
	data, err := m.client.GetAccountData(ctx, address)
	switch {
	case errors.Is(err, blockchain.ErrAccountNotFound):
		return nil, fail(StageEdition, ErrDecode, err)
	case err != nil:
		return nil, fail(StageEdition, ErrEditionUpgradeFailed, err)
	}

	record, err := tokenmetadata.DecodeMetadata(data)
	if err != nil {
		return nil, fail(StageEdition, ErrDecode, err)
	}
	return record, nil
}
