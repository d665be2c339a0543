package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// userLocks serializes plan mutations per user. Entries are dropped once no
// caller holds or waits for them.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*userLock)}
}

// acquire blocks until userID's lock is free or ctx is done.
func (l *userLocks) acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{sem: semaphore.NewWeighted(1)}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.unref(userID, lock)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.sem.Release(1)
			l.unref(userID, lock)
		})
	}, nil
}

func (l *userLocks) unref(userID uuid.UUID, lock *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, userID)
	}
}

// size reports how many users currently have a lock entry.
func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
