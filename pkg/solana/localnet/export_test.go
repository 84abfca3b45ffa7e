package localnet

import (
	"crypto/ed25519"
)

// HoldWriteLocks takes write locks on the addresses as if a transaction were
// in flight. The returned function releases them.
func HoldWriteLocks(b *Bank, addresses ...ed25519.PublicKey) func() {
	var keys []string
	for _, address := range addresses {
		keys = append(keys, addressKey(address))
	}

	if !b.locks.tryLock(keys, nil) {
		panic("accounts are already locked")
	}
	return func() {
		b.locks.unlock(keys, nil)
	}
}
