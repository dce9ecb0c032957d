package clientstore

import (
	"sync"

	"github.com/autoparts/storefront/internal/domain/profile"
)

// profileLocks hands out one mutex per profile. Entries are dropped when
// their last holder releases them.
type profileLocks struct {
	mu    sync.Mutex
	locks map[profile.ID]*profileLock
}

type profileLock struct {
	mu   sync.Mutex
	refs int
}

func newProfileLocks() *profileLocks {
	return &profileLocks{locks: make(map[profile.ID]*profileLock)}
}

// Lock blocks until id is free and returns its unlock function
func (l *profileLocks) Lock(id profile.ID) func() {
	l.mu.Lock()
	pl, ok := l.locks[id]
	if !ok {
		pl = &profileLock{}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *profileLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
