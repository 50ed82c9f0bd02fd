package vellum

import "sync"

// undoEntry is one pre-image in a key's undo timeline: the value that
// was visible before it was overwritten or deleted at supersededAtVersion.
type undoEntry[V any] struct {
	value               V
	supersededAtVersion uint64
}

// undoCache is the Root's per-key sequence of superseded pre-images,
// adapted from VersionMap's relocation tracking: that structure
// relocates evicted page bytes so old readers can still find them by
// (pageID, txnID); this one retains evicted logical values so old
// snapshots can still read them by (key, supersededAtVersion). Rotation
// happens during commit (§4.5); pruning happens during GC (§4.6).
type undoCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K][]undoEntry[V]
}

func newUndoCache[K comparable, V any]() *undoCache[K, V] {
	return &undoCache[K, V]{entries: make(map[K][]undoEntry[V])}
}

// push rotates a superseded value into k's undo timeline.
func (u *undoCache[K, V]) push(k K, value V, supersededAtVersion uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.entries[k] = append(u.entries[k], undoEntry[V]{value: value, supersededAtVersion: supersededAtVersion})
}

// get returns the pre-image superseded exactly at version, as required
// by the Version Index resolution algorithm's step 5 (the Undo Cache
// entry is guaranteed to exist when the protocols in §4.5 are followed).
func (u *undoCache[K, V]) get(k K, supersededAtVersion uint64) (V, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	for _, e := range u.entries[k] {
		if e.supersededAtVersion == supersededAtVersion {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// prune discards every entry whose supersededAtVersion <= minLive,
// since no live snapshot can require a value that stopped being
// visible at or before the oldest live snapshot. Keys left with no
// entries are dropped entirely.
func (u *undoCache[K, V]) prune(minLive uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for k, entries := range u.entries {
		kept := entries[:0:0]
		for _, e := range entries {
			if e.supersededAtVersion > minLive {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(u.entries, k)
			continue
		}
		u.entries[k] = kept
	}
}

// size returns the total number of retained undo entries across all
// keys, used for diagnostics and tests.
func (u *undoCache[K, V]) size() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	total := 0
	for _, entries := range u.entries {
		total += len(entries)
	}
	return total
}
