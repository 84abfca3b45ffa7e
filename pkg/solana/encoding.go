package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana/shortvec"
)

// ToBase58 returns the base58 encoding of the signature, as used by RPC
// methods and explorers.
func (s Signature) ToBase58() string {
	return base58.Encode(s[:])
}

// Marshal returns the wire encoding of the transaction: the signatures
// followed by the message.
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	writeLen(&b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := &wireReader{buf: bytes.NewReader(b)}

	t.Signatures = make([]Signature, r.len("signatures"))
	for i := range t.Signatures {
		r.read(t.Signatures[i][:], "signature")
	}
	if r.err != nil {
		return r.err
	}

	rest := make([]byte, r.buf.Len())
	_, _ = r.buf.Read(rest)
	return t.Message.Unmarshal(rest)
}

// Marshal returns the legacy wire encoding of the message. This is what
// signers sign.
func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	writeLen(&b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	writeLen(&b, len(m.Instructions))
	for _, ix := range m.Instructions {
		b.WriteByte(ix.ProgramIndex)
		writeLen(&b, len(ix.Accounts))
		b.Write(ix.Accounts)
		writeLen(&b, len(ix.Data))
		b.Write(ix.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	r := &wireReader{buf: bytes.NewReader(b)}

	var header [3]byte
	r.read(header[:], "header")
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	m.Accounts = make([]ed25519.PublicKey, r.len("accounts"))
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		r.read(m.Accounts[i], "account")
	}

	r.read(m.RecentBlockhash[:], "recent blockhash")

	m.Instructions = make([]CompiledInstruction, r.len("instructions"))
	for i := range m.Instructions {
		var programIndex [1]byte
		r.read(programIndex[:], "program index")

		ix := CompiledInstruction{ProgramIndex: programIndex[0]}
		ix.Accounts = make([]byte, r.len("instruction accounts"))
		r.read(ix.Accounts, "instruction accounts")
		ix.Data = make([]byte, r.len("instruction data"))
		r.read(ix.Data, "instruction data")

		if r.err != nil {
			return errors.Wrapf(r.err, "instruction %d", i)
		}

		if int(ix.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("instruction %d: program index out of range: %d", i, ix.ProgramIndex)
		}
		for _, index := range ix.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("instruction %d: account index out of range: %d", i, index)
			}
		}

		m.Instructions[i] = ix
	}

	return r.err
}

func writeLen(b *bytes.Buffer, n int) {
	// Lengths are bounded well below the shortvec limit by MaxTransactionSize.
	_, _ = shortvec.EncodeLen(b, n)
}

// wireReader keeps the first error encountered, so decoding can proceed
// without checking every read.
type wireReader struct {
	buf *bytes.Reader
	err error
}

func (r *wireReader) read(dst []byte, what string) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.buf, dst); err != nil {
		r.err = errors.Wrapf(err, "failed to read %s", what)
	}
}

func (r *wireReader) len(what string) int {
	if r.err != nil {
		return 0
	}
	n, err := shortvec.DecodeLen(r.buf)
	if err != nil {
		r.err = errors.Wrapf(err, "failed to read %s length", what)
		return 0
	}
	if n > r.buf.Len() {
		r.err = errors.Errorf("%s length %d exceeds remaining %d bytes", what, n, r.buf.Len())
		return 0
	}
	return n
}
