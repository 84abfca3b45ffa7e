package shortvec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLen_KnownValues(t *testing.T) {
	for _, tc := range []struct {
		length  int
		encoded []byte
	}{
		{0, []byte{0x00}},
		{5, []byte{0x05}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{248, []byte{0xf8, 0x01}},
		{1232, []byte{0xd0, 0x09}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint16, []byte{0xff, 0xff, 0x03}},
	} {
		var buf bytes.Buffer
		n, err := EncodeLen(&buf, tc.length)
		require.NoError(t, err)
		assert.Equal(t, len(tc.encoded), n)
		assert.Equal(t, tc.encoded, buf.Bytes())

		decoded, err := DecodeLen(&buf)
		require.NoError(t, err)
		assert.Equal(t, tc.length, decoded)
	}
}

func TestEncodeLen_RoundTripAll(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i <= math.MaxUint16; i++ {
		buf.Reset()
		_, err := EncodeLen(&buf, i)
		require.NoError(t, err)

		decoded, err := DecodeLen(&buf)
		require.NoError(t, err)
		require.Equal(t, i, decoded)
	}
}

func TestEncodeLen_OutOfRange(t *testing.T) {
	_, err := EncodeLen(&bytes.Buffer{}, math.MaxUint16+1)
	assert.Equal(t, ErrLengthTooLarge, err)

	_, err = EncodeLen(&bytes.Buffer{}, -1)
	assert.Equal(t, ErrLengthTooLarge, err)
}

func TestDecodeLen_Invalid(t *testing.T) {
	_, err := DecodeLen(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x01}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader(nil))
	assert.Error(t, err)
}
