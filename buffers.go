package vellum

// buffers holds the mutable state every transaction scope accumulates
// between creation and Commit/Rollback: the Write Buffer, Delete
// Buffer, Created Set, Deleted-Value Map, Originally-Existed Set, and
// the per-key local-version map used for sibling conflict detection
// (§4.4, §4.5).
type buffers[K comparable, V any] struct {
	writes         map[K]V
	deletes        map[K]struct{}
	created        map[K]struct{}
	deletedValue   map[K]V
	originallyHad  map[K]struct{}
	localVersion   map[K]uint64
	localVersionTk uint64
}

func newBuffers[K comparable, V any]() buffers[K, V] {
	return buffers[K, V]{
		writes:        make(map[K]V),
		deletes:       make(map[K]struct{}),
		created:       make(map[K]struct{}),
		deletedValue:  make(map[K]V),
		originallyHad: make(map[K]struct{}),
		localVersion:  make(map[K]uint64),
	}
}

func (b *buffers[K, V]) reset() {
	*b = newBuffers[K, V]()
}

// tick advances the scope's local version counter and returns the new
// value without attributing it to any key yet.
func (b *buffers[K, V]) tick() uint64 {
	b.localVersionTk++
	return b.localVersionTk
}

// bumpLocalVersion advances the scope's local version counter and
// records the new tick against k.
func (b *buffers[K, V]) bumpLocalVersion(k K) uint64 {
	v := b.tick()
	b.localVersion[k] = v
	return v
}

// readLocal checks the Write Buffer then the Delete Buffer, reporting
// whether either had an opinion about k. found=false means the caller
// must fall through to the snapshot reader.
func (b *buffers[K, V]) readLocal(k K) (value V, deleted bool, found bool) {
	if v, ok := b.writes[k]; ok {
		return v, false, true
	}
	if _, ok := b.deletes[k]; ok {
		var zero V
		return zero, true, true
	}
	var zero V
	return zero, false, false
}

// create implements §4.2's Create gating against an already-resolved
// "does k currently read as present" fact (existsNow), supplied by the
// caller after consulting buffers + the snapshot reader.
func (b *buffers[K, V]) create(k K, v V, existsNow bool) error {
	if _, ok := b.writes[k]; ok {
		return ErrAlreadyExists
	}
	_, inDeletes := b.deletes[k]
	if !inDeletes && existsNow {
		return ErrAlreadyExists
	}

	b.writes[k] = v
	b.created[k] = struct{}{}
	delete(b.deletes, k)
	delete(b.originallyHad, k)
	b.bumpLocalVersion(k)
	return nil
}

// write implements §4.2's Write gating against the same existsNow fact.
func (b *buffers[K, V]) write(k K, v V, existsNow bool) error {
	_, inWrites := b.writes[k]
	_, inDeletes := b.deletes[k]
	if !inWrites && (inDeletes || !existsNow) {
		return ErrNotFound
	}

	b.writes[k] = v
	delete(b.deletes, k)
	b.bumpLocalVersion(k)
	return nil
}

// delete implements §4.2's Delete gating. preimage/hasPreimage must
// already reflect the Write-Buffer-first resolution priority; the
// caller (Transaction.Delete) computes this by checking its own
// writes map before falling through to a read.
func (b *buffers[K, V]) delete(k K, preimage V, hasPreimage bool) error {
	if !hasPreimage {
		return ErrNotFound
	}

	b.deletedValue[k] = preimage
	if _, ownCreate := b.created[k]; !ownCreate {
		b.originallyHad[k] = struct{}{}
	}
	b.deletes[k] = struct{}{}
	delete(b.writes, k)
	delete(b.created, k)
	b.bumpLocalVersion(k)
	return nil
}

// classify builds the Created/Updated/Deleted lists per §4.5's
// classification rule.
func (b *buffers[K, V]) classify() (created, updated, deleted []Entry[K, V]) {
	for k, v := range b.writes {
		if _, ok := b.created[k]; ok {
			created = append(created, Entry[K, V]{Key: k, Value: v})
		} else {
			updated = append(updated, Entry[K, V]{Key: k, Value: v})
		}
	}
	for k := range b.deletes {
		if _, ok := b.originallyHad[k]; ok {
			deleted = append(deleted, Entry[K, V]{Key: k, Value: b.deletedValue[k]})
		}
	}
	return
}
