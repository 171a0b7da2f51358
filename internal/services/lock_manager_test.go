// internal/services/lock_manager_test.go
package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithUserLockSerializesMutations(t *testing.T) {
	lm := NewLockManager()
	defer lm.Stop()

	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lm.WithUserLock("same-user", func() error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestWithUserLockPropagatesError(t *testing.T) {
	lm := NewLockManager()
	defer lm.Stop()

	wantErr := fmt.Errorf("boom")
	err := lm.WithUserLock("u", func() error { return wantErr })
	require.Equal(t, wantErr, err)
}

func TestLocksAreIndependentPerUser(t *testing.T) {
	lm := NewLockManager()
	defer lm.Stop()

	release := make(chan struct{})
	holding := make(chan struct{})

	go lm.WithUserLock("user-a", func() error {
		close(holding)
		<-release
		return nil
	})
	<-holding

	// a different user's lock is not blocked by user-a's
	done := make(chan struct{})
	go func() {
		lm.WithUserLock("user-b", func() error { return nil })
		close(done)
	}()
	<-done
	close(release)
}

func TestWithUserReadLockAllowsConcurrentReaders(t *testing.T) {
	lm := NewLockManager()
	defer lm.Stop()

	firstIn := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		lm.WithUserReadLock("reader", func() error {
			close(firstIn)
			<-release
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		<-firstIn
		// second reader enters while the first still holds the read lock
		lm.WithUserReadLock("reader", func() error {
			close(release)
			return nil
		})
	}()
	wg.Wait()
}

func TestGetUserLockConcurrentSameUser(t *testing.T) {
	lm := NewLockManager()
	defer lm.Stop()

	const workers = 8
	locks := make([]*sync.RWMutex, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			locks[i] = lm.getUserLock("same-user")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, locks[0], locks[i])
	}

	first := lm.userLocks["same-user"].lastUsed.Load()
	lm.getUserLock("same-user")
	assert.GreaterOrEqual(t, lm.userLocks["same-user"].lastUsed.Load(), first)
}
