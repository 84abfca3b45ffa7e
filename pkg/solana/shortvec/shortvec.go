// Package shortvec implements the compact length prefix used in transaction
// wire encoding: 7 bits per byte, low bits first, high bit set on every byte
// but the last. Lengths are limited to 16 bits, so at most 3 bytes.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedBytes = 3

var ErrLengthTooLarge = errors.Errorf("length exceeds %d", math.MaxUint16)

// EncodeLen writes the encoding of length to w, returning the bytes written.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, ErrLengthTooLarge
	}

	var buf [maxEncodedBytes]byte
	n := 0
	for {
		buf[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen reads an encoded length from r.
func DecodeLen(r io.Reader) (int, error) {
	var (
		b      [1]byte
		length int
	)
	for i := 0; ; i++ {
		if i == maxEncodedBytes {
			return 0, errors.Errorf("encoded length longer than %d bytes", maxEncodedBytes)
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		length |= int(b[0]&0x7f) << (7 * i)
		if b[0]&0x80 == 0 {
			return length, nil
		}
	}
}
