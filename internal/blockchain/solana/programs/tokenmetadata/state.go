// internal/blockchain/solana/programs/tokenmetadata/state.go
package tokenmetadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidData возвращается, когда данные аккаунта не разбираются как ожидаемая запись.
var ErrInvalidData = errors.New("invalid token metadata account data")

// Key различает типы аккаунтов программы.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
	KeyUseAuthorityRecord
	KeyCollectionAuthorityRecord
	KeyTokenOwnedEscrow
	KeyTokenRecord
	KeyMetadataDelegate
	KeyEditionMarkerV2
	KeyHolderDelegate
)

var keyNames = map[Key]string{
	KeyUninitialized:             "Uninitialized",
	KeyEditionV1:                 "EditionV1",
	KeyMasterEditionV1:           "MasterEditionV1",
	KeyReservationListV1:         "ReservationListV1",
	KeyMetadataV1:                "MetadataV1",
	KeyReservationListV2:         "ReservationListV2",
	KeyMasterEditionV2:           "MasterEditionV2",
	KeyEditionMarker:             "EditionMarker",
	KeyUseAuthorityRecord:        "UseAuthorityRecord",
	KeyCollectionAuthorityRecord: "CollectionAuthorityRecord",
	KeyTokenOwnedEscrow:          "TokenOwnedEscrow",
	KeyTokenRecord:               "TokenRecord",
	KeyMetadataDelegate:          "MetadataDelegate",
	KeyEditionMarkerV2:           "EditionMarkerV2",
	KeyHolderDelegate:            "HolderDelegate",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// Размеры аккаунтов, которые выделяет программа.
const (
	MaxMetadataLen      = 679
	MaxMasterEditionLen = 282
)

// TokenStandard из хвостовой части записи.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
)

var tokenStandardNames = [...]string{
	"NonFungible",
	"FungibleAsset",
	"Fungible",
	"NonFungibleEdition",
	"ProgrammableNonFungible",
}

func (t TokenStandard) String() string {
	if int(t) < len(tokenStandardNames) {
		return tokenStandardNames[t]
	}
	return fmt.Sprintf("TokenStandard(%d)", uint8(t))
}

// Data содержит основную часть записи. Строки хранятся дополненными нулями.
type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Metadata описывает аккаунт записи метаданных токена.
type Metadata struct {
	Key                 Key
	UpdateAuthority     solana.PublicKey
	Mint                solana.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool

	// Поля, добавленные в поздних версиях программы; nil, если отсутствуют.
	EditionNonce   *uint8
	TokenStandard  *TokenStandard
	Collection     *Collection
	Uses           *Uses
	CollectionSize *uint64
}

// Name возвращает имя без завершающих нулей.
func (m *Metadata) Name() string { return TrimNull(m.Data.Name) }

// Symbol возвращает символ без завершающих нулей.
func (m *Metadata) Symbol() string { return TrimNull(m.Data.Symbol) }

// URI возвращает uri без завершающих нулей.
func (m *Metadata) URI() string { return TrimNull(m.Data.URI) }

// DecodeMetadata разбирает данные аккаунта записи метаданных.
func DecodeMetadata(data []byte) (*Metadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty account", ErrInvalidData)
	}
	m := new(Metadata)
	if err := m.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return m, nil
}

func (m *Metadata) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	key, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	m.Key = Key(key)
	if m.Key != KeyMetadataV1 {
		return fmt.Errorf("unexpected account key %s", m.Key)
	}
	if m.UpdateAuthority, err = readPublicKey(dec); err != nil {
		return fmt.Errorf("update authority: %w", err)
	}
	if m.Mint, err = readPublicKey(dec); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if m.Data.Name, err = dec.ReadString(); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if m.Data.Symbol, err = dec.ReadString(); err != nil {
		return fmt.Errorf("symbol: %w", err)
	}
	if m.Data.URI, err = dec.ReadString(); err != nil {
		return fmt.Errorf("uri: %w", err)
	}
	if m.Data.SellerFeeBasisPoints, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return fmt.Errorf("seller fee: %w", err)
	}
	if m.Data.Creators, err = decodeCreators(dec); err != nil {
		return fmt.Errorf("creators: %w", err)
	}
	if m.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("primary sale: %w", err)
	}
	if m.IsMutable, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("is mutable: %w", err)
	}

	// Хвост читается по возможности: старые записи его не содержат.
	m.decodeTail(dec)
	return nil
}

func (m *Metadata) decodeTail(dec *bin.Decoder) {
	var err error
	if !dec.HasRemaining() {
		return
	}
	if m.EditionNonce, err = decodeOptionalUint8(dec); err != nil {
		m.EditionNonce = nil
		return
	}
	standard, err := decodeOptionalUint8(dec)
	if err != nil {
		return
	}
	if standard != nil {
		ts := TokenStandard(*standard)
		m.TokenStandard = &ts
	}
	if m.Collection, err = decodeOptional[Collection](dec); err != nil {
		m.Collection = nil
		return
	}
	if m.Uses, err = decodeOptional[Uses](dec); err != nil {
		m.Uses = nil
		return
	}
	if m.CollectionSize, err = decodeCollectionDetails(dec); err != nil {
		m.CollectionSize = nil
	}
}

// MarshalWithEncoder кодирует запись как её хранит программа: строки
// дополнены до максимальной длины.
func (m Metadata) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(m.Key)); err != nil {
		return err
	}
	if err := enc.WriteBytes(m.UpdateAuthority.Bytes(), false); err != nil {
		return err
	}
	if err := enc.WriteBytes(m.Mint.Bytes(), false); err != nil {
		return err
	}
	if err := encodeStrings(enc,
		padString(m.Data.Name, MaxNameLength),
		padString(m.Data.Symbol, MaxSymbolLength),
		padString(m.Data.URI, MaxURILength),
	); err != nil {
		return err
	}
	if err := enc.WriteUint16(m.Data.SellerFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}
	if err := encodeCreators(enc, m.Data.Creators); err != nil {
		return err
	}
	if err := enc.WriteBool(m.PrimarySaleHappened); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsMutable); err != nil {
		return err
	}
	if err := encodeOptionalUint8(enc, m.EditionNonce); err != nil {
		return err
	}
	var standard *uint8
	if m.TokenStandard != nil {
		v := uint8(*m.TokenStandard)
		standard = &v
	}
	if err := encodeOptionalUint8(enc, standard); err != nil {
		return err
	}
	if err := encodeOptional(enc, m.Collection); err != nil {
		return err
	}
	if err := encodeOptional(enc, m.Uses); err != nil {
		return err
	}
	return encodeCollectionDetails(enc, m.CollectionSize)
}

// EncodeMetadata возвращает данные аккаунта размером MaxMetadataLen.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	return encodeAccount(m, MaxMetadataLen)
}

// MasterEdition описывает аккаунт master edition (MasterEditionV2).
type MasterEdition struct {
	Key       Key
	Supply    uint64
	MaxSupply *uint64
}

func (e MasterEdition) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(e.Key)); err != nil {
		return err
	}
	if err := enc.WriteUint64(e.Supply, binary.LittleEndian); err != nil {
		return err
	}
	return encodeOptionalUint64(enc, e.MaxSupply)
}

func (e *MasterEdition) UnmarshalWithDecoder(dec *bin.Decoder) error {
	key, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	e.Key = Key(key)
	if e.Key != KeyMasterEditionV2 && e.Key != KeyMasterEditionV1 {
		return fmt.Errorf("unexpected account key %s", e.Key)
	}
	if e.Supply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	e.MaxSupply, err = decodeOptionalUint64(dec)
	return err
}

// DecodeMasterEdition разбирает данные аккаунта master edition.
func DecodeMasterEdition(data []byte) (*MasterEdition, error) {
	e := new(MasterEdition)
	if err := e.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return e, nil
}

// EncodeMasterEdition возвращает данные аккаунта размером MaxMasterEditionLen.
func EncodeMasterEdition(e *MasterEdition) ([]byte, error) {
	return encodeAccount(e, MaxMasterEditionLen)
}

func encodeAccount(v marshaler, size int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := v.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	if buf.Len() > size {
		return nil, fmt.Errorf("encoded account is %d bytes, limit %d", buf.Len(), size)
	}
	out := make([]byte, size)
	copy(out, buf.Bytes())
	return out, nil
}
