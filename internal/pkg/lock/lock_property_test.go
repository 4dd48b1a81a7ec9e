// Property-based tests for per-table submission serialization.
package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestSerializedSubmissionProperty checks that concurrent submission
// sequences for the same table interleave as if executed sequentially:
// a shared counter mutated under the lock never loses an update.
func TestSerializedSubmissionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatID := rapid.Int64Range(1, 1_000_000).Draw(t, "chatID")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		key := Key{ChatID: chatID, Mode: "chained"}
		tl := NewTableLock()

		// Simulates the accepted-word count: a read-modify-write that
		// is only safe when submissions are serialized.
		accepted := 0

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				tl.Lock(key)
				defer tl.Unlock(key)
				accepted++
			}()
		}
		wg.Wait()

		if accepted != numOps {
			t.Fatalf("lost updates: expected %d, got %d", numOps, accepted)
		}
	})
}

// TestWithLockProperty checks that WithLock serializes the same way.
func TestWithLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(5, 30).Draw(t, "numOps")

		key := Key{ChatID: 1, Mode: "associative"}
		tl := NewTableLock()

		counter := 0
		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				_ = tl.WithLock(key, func() error {
					counter++
					return nil
				})
			}()
		}
		wg.Wait()

		if counter != numOps {
			t.Fatalf("expected %d, got %d", numOps, counter)
		}
	})
}

// TestIndependentTablesProperty checks that different tables, including
// the two modes of one chat, do not block each other's sequences.
func TestIndependentTablesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(2, 8).Draw(t, "numChats")
		opsPerTable := rapid.IntRange(5, 20).Draw(t, "opsPerTable")

		tl := NewTableLock()

		counters := make(map[Key]*int64)
		var keys []Key
		for i := 0; i < numChats; i++ {
			for _, mode := range []string{"chained", "associative"} {
				key := Key{ChatID: int64(i + 1), Mode: mode}
				var c int64
				counters[key] = &c
				keys = append(keys, key)
			}
		}

		var wg sync.WaitGroup
		wg.Add(len(keys) * opsPerTable)
		for _, key := range keys {
			for j := 0; j < opsPerTable; j++ {
				go func(k Key) {
					defer wg.Done()
					tl.Lock(k)
					defer tl.Unlock(k)
					*counters[k]++
				}(key)
			}
		}
		wg.Wait()

		for _, key := range keys {
			if *counters[key] != int64(opsPerTable) {
				t.Fatalf("table %+v: expected %d, got %d", key, opsPerTable, *counters[key])
			}
		}
	})
}

// TestTryLockProperty checks that TryLock refuses a held lock and that
// the lock is free again once every holder releases.
func TestTryLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		key := Key{ChatID: 42, Mode: "chained"}
		tl := NewTableLock()

		var successCount atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)

		startCh := make(chan struct{})
		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-startCh
				if tl.TryLock(key) {
					successCount.Add(1)
					tl.Unlock(key)
				}
			}()
		}
		close(startCh)
		wg.Wait()

		if successCount.Load() < 1 {
			t.Fatalf("at least one TryLock should succeed, got %d", successCount.Load())
		}
		if !tl.TryLock(key) {
			t.Fatal("lock should be free after all holders release")
		}
		tl.Unlock(key)
	})
}

// TestLockUnlockSymmetryProperty checks that repeated lock/unlock
// cycles always leave the lock available.
func TestLockUnlockSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")

		key := Key{ChatID: 7, Mode: "chained"}
		tl := NewTableLock()

		for i := 0; i < numCycles; i++ {
			tl.Lock(key)
			tl.Unlock(key)
		}

		if !tl.TryLock(key) {
			t.Fatal("lock should be available after symmetric cycles")
		}
		tl.Unlock(key)
	})
}
