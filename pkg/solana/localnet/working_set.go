package localnet

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
)

// workingSet buffers the account changes of a single transaction. Nothing is
// visible to the Store until the transaction commits.
type workingSet struct {
	ctx   context.Context
	store Store

	// A nil entry means the account is known not to exist.
	accounts map[string]*solana.AccountInfo
	dirty    map[string]struct{}

	// The first failed cross program invocation fails the whole transaction,
	// even if the caller ignores the error.
	failed error
}

func newWorkingSet(ctx context.Context, store Store) *workingSet {
	return &workingSet{
		ctx:      ctx,
		store:    store,
		accounts: make(map[string]*solana.AccountInfo),
		dirty:    make(map[string]struct{}),
	}
}

func (w *workingSet) get(address ed25519.PublicKey) (*solana.AccountInfo, error) {
	key := addressKey(address)
	if account, ok := w.accounts[key]; ok {
		return CloneAccount(account), nil
	}

	account, err := w.store.Get(w.ctx, address)
	if err == ErrAccountNotFound {
		w.accounts[key] = nil
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "error loading account")
	}

	if IsClosed(account) {
		account = nil
	}
	w.accounts[key] = account
	return CloneAccount(account), nil
}

func (w *workingSet) put(address ed25519.PublicKey, account *solana.AccountInfo) {
	key := addressKey(address)
	if IsClosed(account) {
		w.accounts[key] = nil
	} else {
		w.accounts[key] = CloneAccount(account)
	}
	w.dirty[key] = struct{}{}
}

func (w *workingSet) fail(err error) {
	if w.failed == nil {
		w.failed = err
	}
}

func (w *workingSet) updates() map[string]*solana.AccountInfo {
	updates := make(map[string]*solana.AccountInfo, len(w.dirty))
	for key := range w.dirty {
		updates[key] = w.accounts[key]
	}
	return updates
}
