package vellum

import "sync"

// criticalSection is the pluggable write-serialization strategy behind
// the two flavours described in §5: noopSection for single-goroutine
// use, rwSection (a real sync.RWMutex) when WithConcurrencySafety is
// set.
type criticalSection interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noopSection struct{}

func (noopSection) Lock()    {}
func (noopSection) Unlock()  {}
func (noopSection) RLock()   {}
func (noopSection) RUnlock() {}

type rwSection struct {
	mu sync.RWMutex
}

func (s *rwSection) Lock()    { s.mu.Lock() }
func (s *rwSection) Unlock()  { s.mu.Unlock() }
func (s *rwSection) RLock()   { s.mu.RLock() }
func (s *rwSection) RUnlock() { s.mu.RUnlock() }

// Root is the long-lived transaction owning the persistent Backend, the
// global version counter, the Version Index, the Undo Cache, and the
// set of active Nested transactions. It never closes: Commit and
// Rollback reset its own buffers but leave it open for reuse.
type Root[K comparable, V any] struct {
	backend Backend[K, V]
	logger  Logger

	critical criticalSection
	active   activeSet

	version uint64

	versions *versionIndex[K]
	undo     *undoCache[K, V]

	buf buffers[K, V]
}

// NewRoot constructs a Root over backend. The Root implicitly registers
// itself as its own root; it is never a member of its own ActiveSet.
func NewRoot[K comparable, V any](backend Backend[K, V], opts ...RootOption[K, V]) *Root[K, V] {
	o := defaultRootOptions[K, V]()
	for _, opt := range opts {
		opt(&o)
	}

	if o.cacheCapacity > 0 {
		if cached, err := NewCachingBackend[K, V](backend, o.cacheCapacity); err == nil {
			backend = cached
		}
	}

	var critical criticalSection = noopSection{}
	var active activeSet = newMapActiveSet()
	if o.concurrencySafe {
		critical = &rwSection{}
		active = newSlotActiveSet(o.maxActiveTransactions)
	}

	return &Root[K, V]{
		backend:  backend,
		logger:   o.logger,
		critical: critical,
		active:   active,
		versions: newVersionIndex[K](),
		undo:     newUndoCache[K, V](),
		buf:      newBuffers[K, V](),
	}
}

func (r *Root[K, V]) Read(k K) (V, bool, error) {
	r.critical.RLock()
	defer r.critical.RUnlock()

	if v, deleted, found := r.buf.readLocal(k); found {
		var zero V
		if deleted {
			return zero, false, nil
		}
		return v, true, nil
	}
	return r.snapshotRead(k, r.version)
}

func (r *Root[K, V]) Exists(k K) (bool, error) {
	r.critical.RLock()
	defer r.critical.RUnlock()

	if _, deleted, found := r.buf.readLocal(k); found {
		return !deleted, nil
	}
	return r.snapshotExists(k, r.version)
}

func (r *Root[K, V]) Create(k K, v V) error {
	r.critical.Lock()
	defer r.critical.Unlock()

	existsNow, err := r.readLockedExists(k)
	if err != nil {
		return err
	}
	return r.buf.create(k, v, existsNow)
}

func (r *Root[K, V]) Write(k K, v V) error {
	r.critical.Lock()
	defer r.critical.Unlock()

	existsNow, err := r.readLockedExists(k)
	if err != nil {
		return err
	}
	return r.buf.write(k, v, existsNow)
}

func (r *Root[K, V]) Delete(k K) error {
	r.critical.Lock()
	defer r.critical.Unlock()

	preimage, hasPreimage, err := r.readLockedValue(k)
	if err != nil {
		return err
	}
	return r.buf.delete(k, preimage, hasPreimage)
}

// readLockedExists/readLockedValue evaluate this scope's own Read
// semantics while the critical section is already held for writing,
// matching §4.2's "Read(k) would yield a value" gating condition.
func (r *Root[K, V]) readLockedExists(k K) (bool, error) {
	if _, deleted, found := r.buf.readLocal(k); found {
		return !deleted, nil
	}
	return r.snapshotExists(k, r.version)
}

func (r *Root[K, V]) readLockedValue(k K) (V, bool, error) {
	if v, deleted, found := r.buf.readLocal(k); found {
		var zero V
		if deleted {
			return zero, false, nil
		}
		return v, true, nil
	}
	return r.snapshotRead(k, r.version)
}

// CreateNested yields a child whose snapshot version is the Root's
// current global version, per §4.4.
func (r *Root[K, V]) CreateNested() (Transaction[K, V], error) {
	r.critical.RLock()
	snapshotV := r.version
	localAt := make(map[K]uint64, len(r.buf.localVersion))
	for k, v := range r.buf.localVersion {
		localAt[k] = v
	}
	tok, err := r.active.register(snapshotV)
	r.critical.RUnlock()
	if err != nil {
		return nil, err
	}

	return &Nested[K, V]{
		root:          r,
		parent:        r,
		snapshotV:     snapshotV,
		activeToken:   tok,
		parentLocalAt: localAt,
		buf:           newBuffers[K, V](),
	}, nil
}

// Commit applies the Root's own buffers to the backend: the Root
// merge / persistence path of §4.5.
func (r *Root[K, V]) Commit(label ...string) Result[K, V] {
	r.critical.Lock()
	defer r.critical.Unlock()

	lbl := labelOf(label)

	for k, v := range r.buf.writes {
		if last, ok := r.versions.lastVersion(k); ok && last > r.version {
			parentValue, _, _ := r.backend.Read(k)
			res := conflictResult[K, V](lbl, Conflict[K, V]{Key: k, ParentValue: parentValue, ChildValue: v})
			r.logger.Warn("commit conflict", "key", k)
			r.buf.reset()
			return res
		}
	}
	for k := range r.buf.deletes {
		if last, ok := r.versions.lastVersion(k); ok && last > r.version {
			parentValue, _, _ := r.backend.Read(k)
			res := conflictResult[K, V](lbl, Conflict[K, V]{Key: k, ParentValue: parentValue, ChildValue: r.buf.deletedValue[k]})
			r.logger.Warn("commit conflict", "key", k)
			r.buf.reset()
			return res
		}
	}

	created, updated, deleted := r.buf.classify()

	nextVersion := r.version + 1

	for k := range r.buf.deletes {
		if cur, ok, err := r.backend.Read(k); err != nil {
			r.logger.Error("backend delete failed", "key", k, "err", err)
			r.buf.reset()
			return failedResult[K, V](lbl, KindBackendError, err.Error())
		} else if ok {
			r.undo.push(k, cur, nextVersion)
		}
		if err := r.backend.Delete(k); err != nil {
			r.logger.Error("backend delete failed", "key", k, "err", err)
			r.buf.reset()
			return failedResult[K, V](lbl, KindBackendError, err.Error())
		}
		r.versions.append(k, nextVersion, false)
	}

	for k, v := range r.buf.writes {
		if cur, ok, err := r.backend.Read(k); err != nil {
			r.logger.Error("backend write failed", "key", k, "err", err)
			r.buf.reset()
			return failedResult[K, V](lbl, KindBackendError, err.Error())
		} else if ok {
			r.undo.push(k, cur, nextVersion)
		}
		if err := r.backend.Write(k, v); err != nil {
			r.logger.Error("backend write failed", "key", k, "err", err)
			r.buf.reset()
			return failedResult[K, V](lbl, KindBackendError, err.Error())
		}
		r.versions.append(k, nextVersion, true)
	}

	r.version = nextVersion
	r.buf.reset()

	r.runGC()

	return Result[K, V]{Label: lbl, Success: true, Created: created, Updated: updated, Deleted: deleted}
}

// Rollback discards the Root's own buffers without touching the
// backend.
func (r *Root[K, V]) Rollback() Result[K, V] {
	r.critical.Lock()
	defer r.critical.Unlock()

	r.buf.reset()
	return Result[K, V]{Success: true}
}
