// Package binary reads and writes the fixed size account layouts used by the
// SPL programs: little endian integers and COption values with a 4 byte tag.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

// COptionTagSize is the width of the tag preceding a COption value.
const COptionTagSize = 4

// Writer fills a fixed size buffer front to back. Optional values that are
// absent still occupy their full width, zeroed.
type Writer struct {
	buf    []byte
	offset int
}

func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, size)}
}

func (w *Writer) Key(key ed25519.PublicKey) {
	copy(w.buf[w.offset:], key)
	w.offset += ed25519.PublicKeySize
}

func (w *Writer) OptionalKey(key ed25519.PublicKey) {
	w.tag(len(key) > 0)
	w.Key(key)
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.offset:], v)
	w.offset += 8
}

func (w *Writer) OptionalUint64(v *uint64) {
	w.tag(v != nil)
	if v != nil {
		w.Uint64(*v)
	} else {
		w.offset += 8
	}
}

func (w *Writer) Uint8(v uint8) {
	w.buf[w.offset] = v
	w.offset++
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) tag(present bool) {
	if present {
		binary.LittleEndian.PutUint32(w.buf[w.offset:], 1)
	}
	w.offset += COptionTagSize
}

// Reader consumes a buffer front to back. Callers check the buffer length
// against the layout size before reading.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Key() ed25519.PublicKey {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, r.buf[r.offset:])
	r.offset += ed25519.PublicKeySize
	return key
}

// OptionalKey returns nil when the key is absent.
func (r *Reader) OptionalKey() ed25519.PublicKey {
	if !r.tag() {
		r.offset += ed25519.PublicKeySize
		return nil
	}
	return r.Key()
}

func (r *Reader) Uint64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.offset:])
	r.offset += 8
	return v
}

// OptionalUint64 returns nil when the value is absent.
func (r *Reader) OptionalUint64() *uint64 {
	if !r.tag() {
		r.offset += 8
		return nil
	}
	v := r.Uint64()
	return &v
}

func (r *Reader) Uint8() uint8 {
	v := r.buf[r.offset]
	r.offset++
	return v
}

func (r *Reader) Bool() bool {
	return r.Uint8() == 1
}

func (r *Reader) tag() bool {
	present := r.buf[r.offset] == 1
	r.offset += COptionTagSize
	return present
}
