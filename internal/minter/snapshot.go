// internal/minter/snapshot.go
package minter

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solana/programs/tokenmetadata"
)

// Snapshot хранит итоговое состояние записи метаданных после апгрейда.
type Snapshot struct {
	Key                  tokenmetadata.Key
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        *tokenmetadata.TokenStandard

	MetadataAddress   solana.PublicKey
	EditionAddress    solana.PublicKey
	MaxSupply         *uint64
	MetadataSignature solana.Signature
	EditionSignature  solana.Signature
	// Source: "fresh" или "pre_upgrade".
	Source string
}

func newSnapshot(record *tokenmetadata.Metadata, attached *AttachedMetadata, edition solana.PublicKey) *Snapshot {
	return &Snapshot{
		Key:                  record.Key,
		UpdateAuthority:      record.UpdateAuthority,
		Mint:                 record.Mint,
		Name:                 record.Name(),
		Symbol:               record.Symbol(),
		URI:                  record.URI(),
		SellerFeeBasisPoints: record.Data.SellerFeeBasisPoints,
		PrimarySaleHappened:  record.PrimarySaleHappened,
		IsMutable:            record.IsMutable,
		TokenStandard:        record.TokenStandard,
		MetadataAddress:      attached.address,
		EditionAddress:       edition,
		MetadataSignature:    attached.signature,
	}
}
