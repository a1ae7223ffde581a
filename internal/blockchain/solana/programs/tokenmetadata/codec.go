package tokenmetadata

import (
	"encoding/binary"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type marshaler interface {
	MarshalWithEncoder(enc *bin.Encoder) error
}

// readOption читает тег Option и отклоняет значения кроме 0 и 1.
func readOption(dec *bin.Decoder) (bool, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid option tag %d", tag)
	}
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func encodeStrings(enc *bin.Encoder, values ...string) error {
	for _, v := range values {
		if err := enc.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

// padString дополняет строку нулевыми байтами до size, как делает программа
// при сохранении записи.
func padString(s string, size int) string {
	if len(s) >= size {
		return s
	}
	return s + strings.Repeat("\x00", size-len(s))
}

// TrimNull удаляет завершающие нулевые байты.
func TrimNull(s string) string {
	return strings.TrimRight(s, "\x00")
}

func encodeOptional[T marshaler](enc *bin.Encoder, v *T) error {
	if v == nil {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	return (*v).MarshalWithEncoder(enc)
}

func decodeOptional[T any, PT interface {
	*T
	UnmarshalWithDecoder(dec *bin.Decoder) error
}](dec *bin.Decoder) (*T, error) {
	some, err := readOption(dec)
	if err != nil || !some {
		return nil, err
	}
	v := PT(new(T))
	if err := v.UnmarshalWithDecoder(dec); err != nil {
		return nil, err
	}
	return (*T)(v), nil
}

func encodeCreators(enc *bin.Encoder, creators []Creator) error {
	if creators == nil {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(creators)), binary.LittleEndian); err != nil {
		return err
	}
	for _, c := range creators {
		if err := c.MarshalWithEncoder(enc); err != nil {
			return err
		}
	}
	return nil
}

// maxCreators ограничивает число авторов, как это делает программа.
const maxCreators = 5

func decodeCreators(dec *bin.Decoder) ([]Creator, error) {
	some, err := readOption(dec)
	if err != nil || !some {
		return nil, err
	}
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if n > maxCreators {
		return nil, fmt.Errorf("too many creators: %d", n)
	}
	creators := make([]Creator, n)
	for i := range creators {
		if err := creators[i].UnmarshalWithDecoder(dec); err != nil {
			return nil, err
		}
	}
	return creators, nil
}

func encodeOptionalUint64(enc *bin.Encoder, v *uint64) error {
	if v == nil {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	return enc.WriteUint64(*v, binary.LittleEndian)
}

func decodeOptionalUint64(dec *bin.Decoder) (*uint64, error) {
	some, err := readOption(dec)
	if err != nil || !some {
		return nil, err
	}
	v, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeOptionalUint8(dec *bin.Decoder) (*uint8, error) {
	some, err := readOption(dec)
	if err != nil || !some {
		return nil, err
	}
	v, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func encodeOptionalUint8(enc *bin.Encoder, v *uint8) error {
	if v == nil {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	return enc.WriteUint8(*v)
}

// CollectionDetails: V1 { size: u64 } либо V2 { padding: [u8; 8] }.
func encodeCollectionDetails(enc *bin.Encoder, size *uint64) error {
	if size == nil {
		return enc.WriteOption(false)
	}
	if err := enc.WriteOption(true); err != nil {
		return err
	}
	if err := enc.WriteUint8(0); err != nil {
		return err
	}
	return enc.WriteUint64(*size, binary.LittleEndian)
}

func decodeCollectionDetails(dec *bin.Decoder) (*uint64, error) {
	some, err := readOption(dec)
	if err != nil || !some {
		return nil, err
	}
	variant, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	switch variant {
	case 0:
		size, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		return &size, nil
	case 1:
		if _, err := dec.ReadNBytes(8); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid collection details variant %d", variant)
	}
}
