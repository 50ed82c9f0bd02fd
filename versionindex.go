package vellum

import "sync"

// versionRecord is one entry in a key's commit timeline: the key either
// took on a new value (exists=true) or was deleted (exists=false) at
// version.
type versionRecord struct {
	version uint64
	exists  bool
}

// versionIndex is the Root's per-key history of commit versions,
// adapted from VersionMap's relocation table: where that structure
// maps (pageID, txnID) -> relocatedPageID, this one maps a user key
// directly to its ordered (version, exists) timeline, since the
// backend here is an opaque K/V store rather than a paged file.
//
// Entries for a given key are always appended in increasing version
// order (callers only ever append the next global version), so lookups
// can walk the slice front-to-back without sorting.
type versionIndex[K comparable] struct {
	mu      sync.RWMutex
	records map[K][]versionRecord
}

func newVersionIndex[K comparable]() *versionIndex[K] {
	return &versionIndex[K]{records: make(map[K][]versionRecord)}
}

// append adds the next (version, exists) record for k.
func (vi *versionIndex[K]) append(k K, version uint64, exists bool) {
	vi.mu.Lock()
	defer vi.mu.Unlock()

	vi.records[k] = append(vi.records[k], versionRecord{version: version, exists: exists})
}

// lastVersion returns the most recent recorded version for k, and
// whether any record exists at all. Used by commit's global conflict
// check (§4.5).
func (vi *versionIndex[K]) lastVersion(k K) (uint64, bool) {
	vi.mu.RLock()
	defer vi.mu.RUnlock()

	recs := vi.records[k]
	if len(recs) == 0 {
		return 0, false
	}
	return recs[len(recs)-1].version, true
}

// resolve walks k's timeline and returns the most recent record with
// version <= snapshotV ("target") and the first record with version >
// snapshotV ("next"), per §4.3's resolution algorithm. hasTarget/hasNext
// report whether each was found.
func (vi *versionIndex[K]) resolve(k K, snapshotV uint64) (target versionRecord, hasTarget bool, next versionRecord, hasNext bool) {
	vi.mu.RLock()
	defer vi.mu.RUnlock()

	recs := vi.records[k]
	for _, r := range recs {
		if r.version <= snapshotV {
			target, hasTarget = r, true
			continue
		}
		next, hasNext = r, true
		break
	}
	return
}

// managed reports whether the Version Index has ever seen k.
func (vi *versionIndex[K]) managed(k K) bool {
	vi.mu.RLock()
	defer vi.mu.RUnlock()

	return len(vi.records[k]) > 0
}

// prune retains, per key, only the single record immediately at or
// below minLive plus every record above it, per §4.6's Version Index
// pruning rule. Keys with no surviving records are dropped entirely.
func (vi *versionIndex[K]) prune(minLive uint64) {
	vi.mu.Lock()
	defer vi.mu.Unlock()

	for k, recs := range vi.records {
		keepFrom := 0
		for i, r := range recs {
			if r.version <= minLive {
				keepFrom = i
			} else {
				break
			}
		}
		pruned := recs[keepFrom:]
		if len(pruned) == 0 {
			delete(vi.records, k)
			continue
		}
		vi.records[k] = pruned
	}
}
