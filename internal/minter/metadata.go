// internal/minter/metadata.go
package minter

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
	"go.uber.org/zap"
)

// AttachedMetadata подтверждает, что запись метаданных создана для mint.
// Получить значение можно только из AttachMetadata.
type AttachedMetadata struct {
	issuer    *Minter
	address   solana.PublicKey
	mint      solana.PublicKey
	signature solana.Signature
}

func (a *AttachedMetadata) Address() solana.PublicKey   { return a.address }
func (a *AttachedMetadata) Mint() solana.PublicKey      { return a.mint }
func (a *AttachedMetadata) Signature() solana.Signature { return a.signature }

// AttachMetadata создаёт неизменяемую запись метаданных по адресу, производному от mint.
func (m *Minter) AttachMetadata(ctx context.Context, mint solana.PublicKey) (*AttachedMetadata, error) {
	address, err := tokenmetadata.MetadataAddress(mint)
	if err != nil {
		return nil, fail(StageMetadata, ErrMetadataCreationFailed, err)
	}

	owner := m.identity.PublicKey
	ix, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
		tokenmetadata.CreateMetadataAccountV3Accounts{
			Metadata:        address,
			Mint:            mint,
			MintAuthority:   owner,
			Payer:           owner,
			UpdateAuthority: owner,
		},
		tokenmetadata.CreateMetadataAccountV3Args{
			Data: tokenmetadata.DataV2{
				Name:                 m.settings.Token.Name,
				Symbol:               m.settings.Token.Symbol,
				URI:                  m.settings.Token.URI,
				SellerFeeBasisPoints: m.settings.Token.SellerFeeBasisPoints,
			},
			IsMutable: false,
		},
	)
	if err != nil {
		return nil, fail(StageMetadata, ErrMetadataCreationFailed, err)
	}

	sig, err := m.submit(ctx, StageMetadata, []solana.Instruction{ix})
	if err != nil {
		return nil, fail(StageMetadata, ErrMetadataCreationFailed, err)
	}

	m.logger.Info("Metadata attached",
		zap.String("metadata", address.String()),
		zap.String("mint", mint.String()))
	return &AttachedMetadata{
		issuer:    m,
		address:   address,
		mint:      mint,
		signature: sig,
	}, nil
}
