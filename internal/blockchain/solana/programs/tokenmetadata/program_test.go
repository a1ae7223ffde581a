package tokenmetadata

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataAddressIsDeterministic(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	first, err := MetadataAddress(mint)
	require.NoError(t, err)
	second, err := MetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	edition1, err := MasterEditionAddress(mint)
	require.NoError(t, err)
	edition2, err := MasterEditionAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, edition1, edition2)
	assert.NotEqual(t, first, edition1)
}

func TestDerivationChangesWithEverySeed(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	otherMint := solana.NewWallet().PublicKey()
	otherProgram := solana.NewWallet().PublicKey()

	find := func(seeds [][]byte, program solana.PublicKey) solana.PublicKey {
		addr, _, err := solana.FindProgramAddress(seeds, program)
		require.NoError(t, err)
		return addr
	}

	base := find(MetadataSeeds(ProgramID, mint), ProgramID)
	edition := find(MasterEditionSeeds(ProgramID, mint), ProgramID)

	variants := map[string]solana.PublicKey{
		"mint":           find(MetadataSeeds(ProgramID, otherMint), ProgramID),
		"program seed":   find(MetadataSeeds(otherProgram, mint), ProgramID),
		"program owner":  find(MetadataSeeds(ProgramID, mint), otherProgram),
		"prefix":         find([][]byte{[]byte("metadatA"), ProgramID.Bytes(), mint.Bytes()}, ProgramID),
		"edition suffix": find([][]byte{[]byte(SeedPrefix), ProgramID.Bytes(), mint.Bytes(), []byte("editions")}, ProgramID),
	}
	for name, addr := range variants {
		assert.NotEqual(t, base, addr, name)
		assert.NotEqual(t, edition, addr, name)
	}

	mdAddr, err := MetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, base, mdAddr)
}

func TestDerivationMatchesIndependentImplementation(t *testing.T) {
	for i := 0; i < 5; i++ {
		mint := solana.NewWallet().PublicKey()
		bloctoMint := common.PublicKeyFromString(mint.String())

		wantMetadata, err := token_metadata.GetTokenMetaPubkey(bloctoMint)
		require.NoError(t, err)
		wantEdition, err := token_metadata.GetMasterEdition(bloctoMint)
		require.NoError(t, err)

		gotMetadata, err := MetadataAddress(mint)
		require.NoError(t, err)
		gotEdition, err := MasterEditionAddress(mint)
		require.NoError(t, err)

		assert.Equal(t, wantMetadata.ToBase58(), gotMetadata.String())
		assert.Equal(t, wantEdition.ToBase58(), gotEdition.String())
	}
}
