package localnet

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// Store persists committed account state.
type Store interface {
	// Get returns the account at the address, or ErrAccountNotFound.
	Get(ctx context.Context, address ed25519.PublicKey) (*solana.AccountInfo, error)

	// Commit atomically applies a set of account updates keyed by base58
	// address. Accounts with zero lamports are deleted.
	Commit(ctx context.Context, updates map[string]*solana.AccountInfo) error

	// Close releases any resources held by the store.
	Close() error
}

// CloneAccount returns a deep copy of the account.
func CloneAccount(account *solana.AccountInfo) *solana.AccountInfo {
	if account == nil {
		return nil
	}

	cloned := &solana.AccountInfo{
		Lamports:   account.Lamports,
		Executable: account.Executable,
	}
	if account.Owner != nil {
		cloned.Owner = append(ed25519.PublicKey{}, account.Owner...)
	}
	if account.Data != nil {
		cloned.Data = append([]byte{}, account.Data...)
	}
	return cloned
}

// IsClosed reports whether the account should be removed from the ledger.
func IsClosed(account *solana.AccountInfo) bool {
	return account == nil || account.Lamports == 0
}

func addressKey(address ed25519.PublicKey) string {
	return base58.Encode(address)
}
