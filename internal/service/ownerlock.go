package service

import (
	"sync"

	"github.com/google/uuid"
)

// ownerLocks serializes operations per owner key. Operations for
// different owners never block each other; operations for the same
// owner hold the key's mutex for the whole clear-then-set sequence.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[uuid.UUID]*ownerLock)}
}

// lock acquires the mutex for the given owner key and returns the
// matching unlock function. Lock entries are reference-counted and
// removed once the last holder releases, so the map does not grow with
// the number of owners ever seen.
func (l *ownerLocks) lock(owner uuid.UUID) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[owner]
	if !ok {
		entry = &ownerLock{}
		l.locks[owner] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, owner)
		}
		l.mu.Unlock()
	}
}
