package inmemory

import "sync"

// keyedMutex is a set of mutexes identified by keys.
//
// Mutexes are created on demand and removed when nobody holds or waits them.
type keyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex[K comparable]() *keyedMutex[K] {
	return &keyedMutex[K]{locks: map[K]*refMutex{}}
}

// Lock locks the mutex for key, and returns the function to unlock it.
func (km *keyedMutex[K]) Lock(key K) func() {
	km.mu.Lock()
	m, ok := km.locks[key]
	if !ok {
		m = &refMutex{}
		km.locks[key] = m
	}
	m.refs += 1
	km.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		km.mu.Lock()
		defer km.mu.Unlock()
		m.refs -= 1
		if m.refs == 0 {
			delete(km.locks, key)
		}
	}
}
