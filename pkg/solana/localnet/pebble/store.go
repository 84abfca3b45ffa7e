package pebble

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet"
)

var accountPrefix = []byte("account/")

const accountHeaderSize = 8 + ed25519.PublicKeySize + 1

type store struct {
	db *pebble.DB
}

// New returns a localnet.Store backed by a pebble database at dir.
func New(dir string, opts *pebble.Options) (localnet.Store, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error opening pebble database")
	}

	return &store{
		db: db,
	}, nil
}

// Get implements localnet.Store.Get
func (s *store) Get(_ context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	value, closer, err := s.db.Get(accountKey(base58.Encode(address)))
	if err == pebble.ErrNotFound {
		return nil, localnet.ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "error getting account")
	}
	defer closer.Close()

	return unmarshalAccount(value)
}

// Commit implements localnet.Store.Commit
func (s *store) Commit(_ context.Context, updates map[string]*solana.AccountInfo) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for address, account := range updates {
		key := accountKey(address)

		if localnet.IsClosed(account) {
			if err := batch.Delete(key, nil); err != nil {
				return errors.Wrap(err, "error deleting account")
			}
			continue
		}

		if err := batch.Set(key, marshalAccount(account), nil); err != nil {
			return errors.Wrap(err, "error setting account")
		}
	}

	return batch.Commit(pebble.Sync)
}

// Close implements localnet.Store.Close
func (s *store) Close() error {
	return s.db.Close()
}

func accountKey(address string) []byte {
	return append(append([]byte{}, accountPrefix...), address...)
}

func marshalAccount(account *solana.AccountInfo) []byte {
	b := make([]byte, accountHeaderSize+len(account.Data))

	binary.LittleEndian.PutUint64(b, account.Lamports)
	copy(b[8:], account.Owner)
	if account.Executable {
		b[8+ed25519.PublicKeySize] = 1
	}
	copy(b[accountHeaderSize:], account.Data)

	return b
}

func unmarshalAccount(b []byte) (*solana.AccountInfo, error) {
	if len(b) < accountHeaderSize {
		return nil, errors.Errorf("invalid account record size: %d", len(b))
	}

	account := &solana.AccountInfo{
		Lamports:   binary.LittleEndian.Uint64(b),
		Owner:      append(ed25519.PublicKey{}, b[8:8+ed25519.PublicKeySize]...),
		Executable: b[8+ed25519.PublicKeySize] == 1,
		Data:       append([]byte{}, b[accountHeaderSize:]...),
	}
	return account, nil
}

func (s *store) reset() error {
	end := append([]byte{}, accountPrefix...)
	end[len(end)-1]++
	return s.db.DeleteRange(accountPrefix, end, pebble.Sync)
}
