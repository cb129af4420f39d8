package store

import "sync"

// KeyLocker serializes read-modify-write cycles on a logical key so that
// two concurrent mutations of the same record cannot interleave and lose
// a write. Locking is per key; operations on different keys proceed
// independently. The guarantee is in-process only; a multi-process
// deployment sharing one backing store keeps the documented
// last-committed-wins behavior.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyLocker creates an empty KeyLocker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (l *KeyLocker) Lock(key string) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that was never
// locked panics, matching sync.Mutex semantics.
func (l *KeyLocker) Unlock(key string) {
	l.mu.Lock()
	m := l.locks[key]
	l.mu.Unlock()
	m.Unlock()
}
