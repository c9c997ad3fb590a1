package service

import "sync"

// LotLocks hands out one mutex per parking lot. Every load-mutate-save of a lot's sessions
// document runs while holding it, so concurrent starts and stops cannot lose updates.
type LotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLotLocks returns empty lock set.
func NewLotLocks() *LotLocks {
	return &LotLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex of lotID and returns its release func.
func (l *LotLocks) Lock(lotID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[lotID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lotID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
