package tokenmetadata

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borshString(s string) []byte {
	out := make([]byte, 4, 4+len(s))
	binary.LittleEndian.PutUint32(out, uint32(len(s)))
	return append(out, s...)
}

func TestCreateMetadataAccountV3Encoding(t *testing.T) {
	accounts := CreateMetadataAccountV3Accounts{
		Metadata:        solana.NewWallet().PublicKey(),
		Mint:            solana.NewWallet().PublicKey(),
		MintAuthority:   solana.NewWallet().PublicKey(),
		Payer:           solana.NewWallet().PublicKey(),
		UpdateAuthority: solana.NewWallet().PublicKey(),
	}
	inst, err := NewCreateMetadataAccountV3Instruction(accounts, CreateMetadataAccountV3Args{
		Data: DataV2{Name: "Will Coin", Symbol: "W", URI: "https://solana.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, ProgramID, inst.ProgramID())

	want := []byte{InstructionCreateMetadataAccountV3}
	want = append(want, borshString("Will Coin")...)
	want = append(want, borshString("W")...)
	want = append(want, borshString("https://solana.com")...)
	want = append(want,
		0, 0, // seller fee
		0, // creators: None
		0, // collection: None
		0, // uses: None
		0, // is_mutable
		0, // collection_details: None
	)
	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, want, data)

	metas := inst.Accounts()
	require.Len(t, metas, 6)
	assert.Equal(t, accounts.Metadata, metas[0].PublicKey)
	assert.True(t, metas[0].IsWritable)
	assert.Equal(t, accounts.Mint, metas[1].PublicKey)
	assert.True(t, metas[2].IsSigner)
	assert.True(t, metas[3].IsSigner)
	assert.True(t, metas[3].IsWritable)
	assert.Equal(t, solana.SystemProgramID, metas[5].PublicKey)
}

func TestCreateMetadataAccountV3Validation(t *testing.T) {
	tests := []struct {
		name string
		data DataV2
	}{
		{name: "long name", data: DataV2{Name: "0123456789012345678901234567890123"}},
		{name: "long symbol", data: DataV2{Name: "n", Symbol: "SYMBOLSYMBOL"}},
		{name: "fee", data: DataV2{Name: "n", SellerFeeBasisPoints: 10001}},
		{name: "shares", data: DataV2{Name: "n", Creators: []Creator{{Share: 40}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCreateMetadataAccountV3Instruction(CreateMetadataAccountV3Accounts{}, CreateMetadataAccountV3Args{Data: tt.data})
			assert.Error(t, err)
		})
	}
}

func TestCreateMasterEditionV3Encoding(t *testing.T) {
	maxSupply := uint64(1)
	accounts := CreateMasterEditionV3Accounts{
		Edition:         solana.NewWallet().PublicKey(),
		Mint:            solana.NewWallet().PublicKey(),
		UpdateAuthority: solana.NewWallet().PublicKey(),
		MintAuthority:   solana.NewWallet().PublicKey(),
		Payer:           solana.NewWallet().PublicKey(),
		Metadata:        solana.NewWallet().PublicKey(),
	}
	inst, err := NewCreateMasterEditionV3Instruction(accounts, CreateMasterEditionV3Args{MaxSupply: &maxSupply})
	require.NoError(t, err)

	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{InstructionCreateMasterEditionV3, 1, 1, 0, 0, 0, 0, 0, 0, 0}, data)

	metas := inst.Accounts()
	require.Len(t, metas, 8)
	assert.Equal(t, accounts.Edition, metas[0].PublicKey)
	assert.Equal(t, accounts.Metadata, metas[5].PublicKey)
	assert.Equal(t, solana.TokenProgramID, metas[6].PublicKey)
}

func TestDecodeInstruction(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	size := uint64(10)
	args := CreateMetadataAccountV3Args{
		Data: DataV2{
			Name:                 "Will Coin",
			Symbol:               "W",
			URI:                  "https://solana.com",
			SellerFeeBasisPoints: 250,
			Creators:             []Creator{{Address: creator, Verified: true, Share: 100}},
			Collection:           &Collection{Key: solana.NewWallet().PublicKey()},
			Uses:                 &Uses{UseMethod: 1, Remaining: 3, Total: 5},
		},
		IsMutable:      true,
		CollectionSize: &size,
	}
	inst, err := NewCreateMetadataAccountV3Instruction(CreateMetadataAccountV3Accounts{}, args)
	require.NoError(t, err)
	data, err := inst.Data()
	require.NoError(t, err)

	decoded, err := DecodeInstruction(inst.Accounts(), data)
	require.NoError(t, err)
	require.NotNil(t, decoded.CreateMetadataAccountV3)
	assert.Equal(t, args, *decoded.CreateMetadataAccountV3)

	t.Run("unknown discriminator", func(t *testing.T) {
		_, err := DecodeInstruction(nil, []byte{1})
		assert.ErrorIs(t, err, ErrUnknownInstruction)
	})
	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeInstruction(inst.Accounts(), append(data, 0))
		assert.Error(t, err)
	})
	t.Run("too few accounts", func(t *testing.T) {
		_, err := DecodeInstruction(inst.Accounts()[:2], data)
		assert.Error(t, err)
	})
}
