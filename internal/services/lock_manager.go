// internal/services/lock_manager.go
package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// LockManager hands out one mutex per user identifier so conversation
// updates for the same user are serialized while unrelated users run
// concurrently
type LockManager struct {
	userLocks  map[string]*lockInfo
	globalLock sync.RWMutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// lastUsed holds unix nanos and is touched on every getUserLock call,
// often under the table's read lock, so it must be atomic.
type lockInfo struct {
	mutex    *sync.RWMutex
	lastUsed atomic.Int64
}

func (li *lockInfo) touch() {
	li.lastUsed.Store(time.Now().UnixNano())
}

// Cleanup thresholds: locks are only discarded once the table grows
// past maxLocks and a lock has been idle past lockTimeout.
const (
	maxLocks    = 1000
	lockTimeout = 30 * time.Minute
)

// NewLockManager creates a lock manager with background cleanup
func NewLockManager() *LockManager {
	lm := &LockManager{
		userLocks:   make(map[string]*lockInfo),
		stopCleanup: make(chan struct{}),
	}
	lm.startCleanup()
	return lm
}

// getUserLock returns the lock for userID, creating it if needed
func (lm *LockManager) getUserLock(userID string) *sync.RWMutex {
	lm.globalLock.RLock()
	if info, exists := lm.userLocks[userID]; exists {
		lm.globalLock.RUnlock()
		info.touch()
		return info.mutex
	}
	lm.globalLock.RUnlock()

	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	if info, exists := lm.userLocks[userID]; exists {
		info.touch()
		return info.mutex
	}

	info := &lockInfo{mutex: &sync.RWMutex{}}
	info.touch()
	lm.userLocks[userID] = info
	return info.mutex
}

// WithUserLock runs fn while holding the write lock for userID
func (lm *LockManager) WithUserLock(userID string, fn func() error) error {
	lock := lm.getUserLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// WithUserReadLock runs fn while holding the read lock for userID
func (lm *LockManager) WithUserReadLock(userID string, fn func() error) error {
	lock := lm.getUserLock(userID)
	lock.RLock()
	defer lock.RUnlock()
	return fn()
}

func (lm *LockManager) startCleanup() {
	lm.cleanupTicker = time.NewTicker(5 * time.Minute)
	go func() {
		for {
			select {
			case <-lm.cleanupTicker.C:
				lm.cleanupIdleLocks()
			case <-lm.stopCleanup:
				return
			}
		}
	}()
}

// Stop ends the background cleanup goroutine
func (lm *LockManager) Stop() {
	lm.cleanupTicker.Stop()
	close(lm.stopCleanup)
}

func (lm *LockManager) cleanupIdleLocks() {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	if len(lm.userLocks) <= maxLocks {
		return
	}

	cutoff := time.Now().Add(-lockTimeout).UnixNano()
	for userID, info := range lm.userLocks {
		if info.lastUsed.Load() < cutoff {
			delete(lm.userLocks, userID)
		}
	}
}
