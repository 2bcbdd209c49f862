package indexer

import "sync/atomic"

// SyncLock provides non-blocking lock semantics so a second sync of
// the same index is rejected instead of queued behind the first.
type SyncLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *SyncLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *SyncLock) Release() {
	l.state.Store(0)
}
