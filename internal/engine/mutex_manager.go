package engine

import (
	"sync"
)

// fingerprintMutexManager hands out one mutex per fingerprint key so
// concurrent analyses of identical content serialize on the same lock. The
// second arrival then finds the first one's verdict in the cache instead of
// repeating the work.
type fingerprintMutexManager struct {
	mutexes map[string]*fingerprintMutex
	mapLock sync.Mutex
}

type fingerprintMutex struct {
	sync.Mutex
	key  string
	refs int
}

func newFingerprintMutexManager() *fingerprintMutexManager {
	return &fingerprintMutexManager{
		mutexes: make(map[string]*fingerprintMutex),
	}
}

// acquire returns the mutex for a key, creating it on first use. Each
// acquire must be paired with a release so idle entries get removed.
func (m *fingerprintMutexManager) acquire(key string) *fingerprintMutex {
	m.mapLock.Lock()
	defer m.mapLock.Unlock()

	mu, exists := m.mutexes[key]
	if !exists {
		mu = &fingerprintMutex{key: key}
		m.mutexes[key] = mu
	}
	mu.refs++
	return mu
}

func (m *fingerprintMutexManager) release(mu *fingerprintMutex) {
	m.mapLock.Lock()
	defer m.mapLock.Unlock()

	mu.refs--
	if mu.refs <= 0 {
		delete(m.mutexes, mu.key)
	}
}
