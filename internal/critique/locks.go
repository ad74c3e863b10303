package critique

import (
	"sync"

	"geoverify/domain/core"
)

// sessionLocks hands out one mutex per session ID. Entries are reference
// counted and dropped when the last holder releases.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[core.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[core.SessionID]*sessionLock)}
}

// acquire locks id and returns the release func
func (l *sessionLocks) acquire(id core.SessionID) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sessionLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
