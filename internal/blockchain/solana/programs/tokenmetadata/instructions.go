// internal/blockchain/solana/programs/tokenmetadata/instructions.go
package tokenmetadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Дискриминаторы инструкций (первый байт данных).
const (
	InstructionCreateMasterEditionV3   uint8 = 17
	InstructionCreateMetadataAccountV3 uint8 = 33
)

var ErrUnknownInstruction = errors.New("unknown token metadata instruction")

// Creator описывает автора в DataV2.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection ссылается на коллекцию, к которой принадлежит токен.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Uses ограничивает число использований токена.
type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// DataV2 передаётся в CreateMetadataAccountV3.
// Nil-срезы и указатели кодируются как None.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	Collection           *Collection
	Uses                 *Uses
}

// CreateMetadataAccountV3Args аргументы инструкции CreateMetadataAccountV3.
type CreateMetadataAccountV3Args struct {
	Data      DataV2
	IsMutable bool
	// CollectionSize задаёт CollectionDetails::V1 для коллекционных NFT.
	CollectionSize *uint64
}

// CreateMetadataAccountV3Accounts аккаунты инструкции в порядке программы.
type CreateMetadataAccountV3Accounts struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

// CreateMasterEditionV3Args аргументы инструкции CreateMasterEditionV3.
type CreateMasterEditionV3Args struct {
	MaxSupply *uint64
}

// CreateMasterEditionV3Accounts аккаунты инструкции в порядке программы.
type CreateMasterEditionV3Accounts struct {
	Edition         solana.PublicKey
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	Metadata        solana.PublicKey
}

// Validate проверяет ограничения длины полей.
func (d DataV2) Validate() error {
	if len(d.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d bytes", MaxNameLength)
	}
	if len(d.Symbol) > MaxSymbolLength {
		return fmt.Errorf("symbol exceeds %d bytes", MaxSymbolLength)
	}
	if len(d.URI) > MaxURILength {
		return fmt.Errorf("uri exceeds %d bytes", MaxURILength)
	}
	if d.SellerFeeBasisPoints > 10000 {
		return errors.New("seller fee basis points exceed 10000")
	}
	if len(d.Creators) > 0 {
		var total int
		for _, c := range d.Creators {
			total += int(c.Share)
		}
		if total != 100 {
			return fmt.Errorf("creator shares must add up to 100, got %d", total)
		}
	}
	return nil
}

// NewCreateMetadataAccountV3Instruction собирает инструкцию создания записи метаданных.
func NewCreateMetadataAccountV3Instruction(
	accounts CreateMetadataAccountV3Accounts,
	args CreateMetadataAccountV3Args,
) (solana.Instruction, error) {
	if err := args.Data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(InstructionCreateMetadataAccountV3); err != nil {
		return nil, err
	}
	if err := args.MarshalWithEncoder(enc); err != nil {
		return nil, fmt.Errorf("failed to encode metadata args: %w", err)
	}

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.MintAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.UpdateAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, buf.Bytes()), nil
}

// NewCreateMasterEditionV3Instruction собирает инструкцию создания master edition.
func NewCreateMasterEditionV3Instruction(
	accounts CreateMasterEditionV3Accounts,
	args CreateMasterEditionV3Args,
) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(InstructionCreateMasterEditionV3); err != nil {
		return nil, err
	}
	if err := args.MarshalWithEncoder(enc); err != nil {
		return nil, fmt.Errorf("failed to encode master edition args: %w", err)
	}

	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Edition, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.UpdateAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.MintAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, buf.Bytes()), nil
}

func (c Creator) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(c.Address.Bytes(), false); err != nil {
		return err
	}
	if err := enc.WriteBool(c.Verified); err != nil {
		return err
	}
	return enc.WriteUint8(c.Share)
}

func (c *Creator) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Address, err = readPublicKey(dec); err != nil {
		return err
	}
	if c.Verified, err = dec.ReadBool(); err != nil {
		return err
	}
	c.Share, err = dec.ReadUint8()
	return err
}

func (c Collection) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBool(c.Verified); err != nil {
		return err
	}
	return enc.WriteBytes(c.Key.Bytes(), false)
}

func (c *Collection) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Verified, err = dec.ReadBool(); err != nil {
		return err
	}
	c.Key, err = readPublicKey(dec)
	return err
}

func (u Uses) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(u.UseMethod); err != nil {
		return err
	}
	if err := enc.WriteUint64(u.Remaining, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint64(u.Total, binary.LittleEndian)
}

func (u *Uses) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if u.UseMethod, err = dec.ReadUint8(); err != nil {
		return err
	}
	if u.Remaining, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	u.Total, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

func (d DataV2) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := encodeStrings(enc, d.Name, d.Symbol, d.URI); err != nil {
		return err
	}
	if err := enc.WriteUint16(d.SellerFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}
	if err := encodeCreators(enc, d.Creators); err != nil {
		return err
	}
	if err := encodeOptional(enc, d.Collection); err != nil {
		return err
	}
	return encodeOptional(enc, d.Uses)
}

func (d *DataV2) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if d.Name, err = dec.ReadString(); err != nil {
		return err
	}
	if d.Symbol, err = dec.ReadString(); err != nil {
		return err
	}
	if d.URI, err = dec.ReadString(); err != nil {
		return err
	}
	if d.SellerFeeBasisPoints, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if d.Creators, err = decodeCreators(dec); err != nil {
		return err
	}
	if d.Collection, err = decodeOptional[Collection](dec); err != nil {
		return err
	}
	d.Uses, err = decodeOptional[Uses](dec)
	return err
}

func (a CreateMetadataAccountV3Args) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := a.Data.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteBool(a.IsMutable); err != nil {
		return err
	}
	return encodeCollectionDetails(enc, a.CollectionSize)
}

func (a *CreateMetadataAccountV3Args) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = a.Data.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	if a.IsMutable, err = dec.ReadBool(); err != nil {
		return err
	}
	a.CollectionSize, err = decodeCollectionDetails(dec)
	return err
}

func (a CreateMasterEditionV3Args) MarshalWithEncoder(enc *bin.Encoder) error {
	return encodeOptionalUint64(enc, a.MaxSupply)
}

func (a *CreateMasterEditionV3Args) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	a.MaxSupply, err = decodeOptionalUint64(dec)
	return err
}

// Instruction содержит декодированную инструкцию программы метаданных.
type Instruction struct {
	Discriminator uint8
	Accounts      []*solana.AccountMeta

	CreateMetadataAccountV3 *CreateMetadataAccountV3Args
	CreateMasterEditionV3   *CreateMasterEditionV3Args
}

// DecodeInstruction разбирает данные инструкции по дискриминатору.
func DecodeInstruction(accounts []*solana.AccountMeta, data []byte) (*Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrUnknownInstruction)
	}
	dec := bin.NewBorshDecoder(data[1:])
	inst := &Instruction{Discriminator: data[0], Accounts: accounts}

	switch data[0] {
	case InstructionCreateMetadataAccountV3:
		if len(accounts) < 6 {
			return nil, fmt.Errorf("CreateMetadataAccountV3: expected 6 accounts, got %d", len(accounts))
		}
		args := new(CreateMetadataAccountV3Args)
		if err := args.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("CreateMetadataAccountV3: %w", err)
		}
		inst.CreateMetadataAccountV3 = args
	case InstructionCreateMasterEditionV3:
		if len(accounts) < 8 {
			return nil, fmt.Errorf("CreateMasterEditionV3: expected 8 accounts, got %d", len(accounts))
		}
		args := new(CreateMasterEditionV3Args)
		if err := args.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("CreateMasterEditionV3: %w", err)
		}
		inst.CreateMasterEditionV3 = args
	default:
		return nil, fmt.Errorf("%w: discriminator %d", ErrUnknownInstruction, data[0])
	}

	if dec.HasRemaining() {
		return nil, fmt.Errorf("instruction %d: %d trailing bytes", data[0], dec.Remaining())
	}
	return inst, nil
}
