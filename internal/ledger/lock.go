package ledger

import "sync"

// Locks serializes seat-state mutations per show.  Two mutations on the
// same show must never interleave between the availability check and the
// persist; two mutations on different shows proceed in parallel.  The DB
// transaction additionally locks the show row, so this map is the
// in-process first line of the same guarantee rather than a replacement
// for it.
type Locks struct {
	mu sync.Mutex
	m  map[uint64]*sync.Mutex
}

// NewLocks returns an empty per-show lock map.
func NewLocks() *Locks {
	return &Locks{m: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for showID, creating it on first use, and
// returns the unlock function.  Callers must release on every exit path:
//
//	unlock := locks.Lock(showID)
//	defer unlock()
func (l *Locks) Lock(showID uint64) func() {
	l.mu.Lock()
	mu, ok := l.m[showID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[showID] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}
