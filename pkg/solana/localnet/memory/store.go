package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/mr-tron/base58"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet"
)

type store struct {
	mu       sync.RWMutex
	accounts *treemap.Map
}

// New returns a new in memory localnet.Store. Accounts are kept ordered by
// address.
func New() localnet.Store {
	return &store{
		accounts: treemap.NewWithStringComparator(),
	}
}

// Get implements localnet.Store.Get
func (s *store) Get(_ context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.accounts.Get(base58.Encode(address))
	if !ok {
		return nil, localnet.ErrAccountNotFound
	}
	return localnet.CloneAccount(value.(*solana.AccountInfo)), nil
}

// Commit implements localnet.Store.Commit
func (s *store) Commit(_ context.Context, updates map[string]*solana.AccountInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for address, account := range updates {
		if localnet.IsClosed(account) {
			s.accounts.Remove(address)
			continue
		}
		s.accounts.Put(address, localnet.CloneAccount(account))
	}
	return nil
}

// Close implements localnet.Store.Close
func (s *store) Close() error {
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts.Clear()
}

func (s *store) addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var addresses []string
	for _, key := range s.accounts.Keys() {
		addresses = append(addresses, key.(string))
	}
	return addresses
}
