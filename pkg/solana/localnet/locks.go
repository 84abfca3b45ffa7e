package localnet

import (
	"sync"
)

// accountLocks tracks the accounts held by in flight transactions. Locks are
// never waited on: a conflicting transaction is rejected with AccountInUse.
type accountLocks struct {
	mu       sync.Mutex
	writable map[string]struct{}
	readonly map[string]int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		writable: make(map[string]struct{}),
		readonly: make(map[string]int),
	}
}

// tryLock takes all of the requested locks, or none of them.
func (l *accountLocks) tryLock(writable, readonly []string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, address := range writable {
		if _, ok := l.writable[address]; ok {
			return false
		}
		if l.readonly[address] > 0 {
			return false
		}
	}
	for _, address := range readonly {
		if _, ok := l.writable[address]; ok {
			return false
		}
	}

	for _, address := range writable {
		l.writable[address] = struct{}{}
	}
	for _, address := range readonly {
		l.readonly[address]++
	}
	return true
}

func (l *accountLocks) unlock(writable, readonly []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, address := range writable {
		delete(l.writable, address)
	}
	for _, address := range readonly {
		l.readonly[address]--
		if l.readonly[address] <= 0 {
			delete(l.readonly, address)
		}
	}
}
