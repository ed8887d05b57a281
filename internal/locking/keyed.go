package locking

import "sync"

// KeyedMutex provides mutual exclusion per int64 key. Operations on the same
// key serialize; operations on distinct keys proceed in parallel. Entries are
// reference counted and removed once the last holder unlocks, so the table
// does not grow with the id space.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*entry)}
}

// Lock acquires the mutex for key, blocking while another holder owns it.
func (k *KeyedMutex) Lock(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key.
func (k *KeyedMutex) Unlock(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
