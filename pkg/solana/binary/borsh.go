package binary

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// MarshalBorsh encodes v with its own codec when it implements
// bin.BinaryMarshaler, and by reflection otherwise.
//
// Layouts with Option fields must implement the codec: the reflection decoder
// reads None back as Some(zero).
func MarshalBorsh(v interface{}) ([]byte, error) {
	m, ok := v.(bin.BinaryMarshaler)
	if !ok {
		return borsh.Serialize(v)
	}

	var buf bytes.Buffer
	if err := m.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBorsh is the inverse of MarshalBorsh. Trailing bytes, such as
// account padding, are ignored.
func UnmarshalBorsh(v interface{}, data []byte) error {
	if u, ok := v.(bin.BinaryUnmarshaler); ok {
		return u.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
	}
	return borsh.Deserialize(v, data)
}

// WriteString writes a borsh string: a u32 length then the raw bytes.
func WriteString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

func ReadString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", err
	}
	if int(n) > dec.Remaining() {
		return "", errors.Errorf("string length %d exceeds remaining %d bytes", n, dec.Remaining())
	}
	b, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func WriteKey(enc *bin.Encoder, key [ed25519.PublicKeySize]byte) error {
	return enc.WriteBytes(key[:], false)
}

func ReadKey(dec *bin.Decoder) (key [ed25519.PublicKeySize]byte, err error) {
	b, err := dec.ReadNBytes(ed25519.PublicKeySize)
	if err != nil {
		return key, err
	}
	copy(key[:], b)
	return key, nil
}

// WriteOption writes the one byte borsh Option tag and, when present, the
// value through write.
func WriteOption(enc *bin.Encoder, present bool, write func() error) error {
	if err := enc.WriteOption(present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return write()
}

// ReadOption reads a borsh Option tag and, when present, the value through
// read. It reports whether the value was present. Tags other than 0 and 1 are
// rejected.
func ReadOption(dec *bin.Decoder, read func() error) (bool, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, read()
	default:
		return false, errors.Errorf("invalid option tag %d", tag)
	}
}

func WriteOptionalUint64(enc *bin.Encoder, v *uint64) error {
	return WriteOption(enc, v != nil, func() error {
		return enc.WriteUint64(*v, bin.LE)
	})
}

// ReadOptionalUint64 returns nil for None.
func ReadOptionalUint64(dec *bin.Decoder) (*uint64, error) {
	var v uint64
	present, err := ReadOption(dec, func() (err error) {
		v, err = dec.ReadUint64(bin.LE)
		return err
	})
	if err != nil || !present {
		return nil, err
	}
	return &v, nil
}

func WriteOptionalUint8(enc *bin.Encoder, v *uint8) error {
	return WriteOption(enc, v != nil, func() error {
		return enc.WriteUint8(*v)
	})
}

// ReadOptionalUint8 returns nil for None.
func ReadOptionalUint8(dec *bin.Decoder) (*uint8, error) {
	var v uint8
	present, err := ReadOption(dec, func() (err error) {
		v, err = dec.ReadUint8()
		return err
	})
	if err != nil || !present {
		return nil, err
	}
	return &v, nil
}
