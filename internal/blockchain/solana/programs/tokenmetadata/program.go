// internal/blockchain/solana/programs/tokenmetadata/program.go
package tokenmetadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID программы Metaplex Token Metadata.
var ProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// Сиды PDA, общие для создания и чтения.
const (
	SeedPrefix  = "metadata"
	SeedEdition = "edition"
)

// Ограничения полей DataV2 на стороне программы.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

// MetadataSeeds возвращает сиды PDA записи метаданных для mint.
func MetadataSeeds(programID, mint solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedPrefix), programID.Bytes(), mint.Bytes()}
}

// MasterEditionSeeds возвращает сиды PDA master edition для mint.
func MasterEditionSeeds(programID, mint solana.PublicKey) [][]byte {
	return append(MetadataSeeds(programID, mint), []byte(SeedEdition))
}

// MetadataAddress вычисляет адрес записи метаданных токена.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(MetadataSeeds(ProgramID, mint), ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return addr, nil
}

// MasterEditionAddress вычисляет адрес master edition токена.
func MasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(MasterEditionSeeds(ProgramID, mint), ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive master edition address: %w", err)
	}
	return addr, nil
}
