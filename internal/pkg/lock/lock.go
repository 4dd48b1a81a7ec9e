// Package lock provides per-table locking so that word submissions for
// one game instance are processed one at a time, from the optimistic
// local commit through the oracle round trip to the final commit or
// rollback.
package lock

import (
	"sync"
)

// Key identifies one lockable game table.
type Key struct {
	ChatID int64
	Mode   string
}

// tableMutex wraps a mutex with reference counting for pooling.
type tableMutex struct {
	mu       sync.Mutex
	refCount int
}

// TableLock provides per-table mutual exclusion. The rollback protocol
// assumes at most one accepted word is outstanding per table, so the
// whole submit-judge-settle sequence must run under this lock.
type TableLock struct {
	locks sync.Map // map[Key]*tableMutex
	pool  sync.Pool
}

// NewTableLock creates a new TableLock instance.
func NewTableLock() *TableLock {
	return &TableLock{
		pool: sync.Pool{
			New: func() any {
				return &tableMutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for a table.
func (tl *TableLock) getLock(key Key) *tableMutex {
	if v, ok := tl.locks.Load(key); ok {
		return v.(*tableMutex)
	}

	newLock := tl.pool.Get().(*tableMutex)
	newLock.refCount = 0

	actual, loaded := tl.locks.LoadOrStore(key, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		tl.pool.Put(newLock)
	}
	return actual.(*tableMutex)
}

// Lock acquires the lock for a table.
func (tl *TableLock) Lock(key Key) {
	lock := tl.getLock(key)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a table.
func (tl *TableLock) Unlock(key Key) {
	if v, ok := tl.locks.Load(key); ok {
		lock := v.(*tableMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (tl *TableLock) TryLock(key Key) bool {
	lock := tl.getLock(key)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes a function while holding the table's lock.
func (tl *TableLock) WithLock(key Key, fn func() error) error {
	tl.Lock(key)
	defer tl.Unlock(key)
	return fn()
}

// IsLocked checks if a table currently has an active lock.
// Note: This is a point-in-time check and may change immediately after.
func (tl *TableLock) IsLocked(key Key) bool {
	if v, ok := tl.locks.Load(key); ok {
		lock := v.(*tableMutex)
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
