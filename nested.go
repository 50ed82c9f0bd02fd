package vellum

// mergeable is implemented by both *Root and *Nested so that merge.go's
// upward-merge primitive can treat either as a parent, per §4.5's note
// that the same merge primitive handles "child is nested with Root
// parent" and "both parent and child are nested" identically.
type mergeable[K comparable, V any] interface {
	mergeBuf() *buffers[K, V]
	ancestorClosed() bool
}

func (r *Root[K, V]) mergeBuf() *buffers[K, V] { return &r.buf }
func (r *Root[K, V]) ancestorClosed() bool     { return false }

func (n *Nested[K, V]) mergeBuf() *buffers[K, V] { return &n.buf }
func (n *Nested[K, V]) ancestorClosed() bool     { return n.closed || n.parent.ancestorClosed() }

// Nested is a child transaction scope. Its reads are pinned to the
// snapshot version frozen at creation and never observe its parent's
// uncommitted buffers (§4.3); its Commit merges into its immediate
// parent under the Root's write critical section (§4.5).
type Nested[K comparable, V any] struct {
	root   *Root[K, V]
	parent mergeable[K, V]

	snapshotV   uint64
	activeToken int

	// parentLocalAt is a copy of the parent's per-key local-version
	// map taken at creation time, used for sibling conflict detection
	// in merge.go.
	parentLocalAt map[K]uint64

	buf    buffers[K, V]
	closed bool
}

func (n *Nested[K, V]) Read(k K) (V, bool, error) {
	if n.closed {
		var zero V
		return zero, false, ErrAlreadyCommitted
	}
	if v, deleted, found := n.buf.readLocal(k); found {
		var zero V
		if deleted {
			return zero, false, nil
		}
		return v, true, nil
	}

	n.root.critical.RLock()
	defer n.root.critical.RUnlock()
	return n.root.snapshotRead(k, n.snapshotV)
}

func (n *Nested[K, V]) Exists(k K) (bool, error) {
	if n.closed {
		return false, ErrAlreadyCommitted
	}
	if _, deleted, found := n.buf.readLocal(k); found {
		return !deleted, nil
	}

	n.root.critical.RLock()
	defer n.root.critical.RUnlock()
	return n.root.snapshotExists(k, n.snapshotV)
}

func (n *Nested[K, V]) existsNow(k K) (bool, error) {
	if _, deleted, found := n.buf.readLocal(k); found {
		return !deleted, nil
	}
	n.root.critical.RLock()
	defer n.root.critical.RUnlock()
	return n.root.snapshotExists(k, n.snapshotV)
}

func (n *Nested[K, V]) Create(k K, v V) error {
	if n.closed {
		return ErrAlreadyCommitted
	}
	existsNow, err := n.existsNow(k)
	if err != nil {
		return err
	}
	return n.buf.create(k, v, existsNow)
}

func (n *Nested[K, V]) Write(k K, v V) error {
	if n.closed {
		return ErrAlreadyCommitted
	}
	existsNow, err := n.existsNow(k)
	if err != nil {
		return err
	}
	return n.buf.write(k, v, existsNow)
}

func (n *Nested[K, V]) Delete(k K) error {
	if n.closed {
		return ErrAlreadyCommitted
	}
	preimage, hasPreimage, err := n.Read(k)
	if err != nil {
		return err
	}
	return n.buf.delete(k, preimage, hasPreimage)
}

// CreateNested forks a grandchild whose snapshot version is inherited
// from this transaction (§4.4): a sibling or ancestor committing does
// not widen a previously-created child's view.
func (n *Nested[K, V]) CreateNested() (Transaction[K, V], error) {
	if n.closed {
		return nil, ErrAlreadyCommitted
	}

	tok, err := n.root.active.register(n.snapshotV)
	if err != nil {
		return nil, err
	}

	localAt := make(map[K]uint64, len(n.buf.localVersion))
	for k, v := range n.buf.localVersion {
		localAt[k] = v
	}

	return &Nested[K, V]{
		root:          n.root,
		parent:        n,
		snapshotV:     n.snapshotV,
		activeToken:   tok,
		parentLocalAt: localAt,
		buf:           newBuffers[K, V](),
	}, nil
}

// Commit merges this scope's buffers into its parent's, per §4.5's
// nested-merge protocol, under the Root's write critical section.
func (n *Nested[K, V]) Commit(label ...string) Result[K, V] {
	lbl := labelOf(label)

	if n.closed {
		return failedResult[K, V](lbl, KindAlreadyCommitted, "transaction already committed or rolled back")
	}

	n.root.critical.Lock()
	defer n.root.critical.Unlock()

	if n.parent.ancestorClosed() {
		created, updated, deleted := n.buf.classify()
		n.close()
		n.root.logger.Warn("commit after ancestor closed")
		return Result[K, V]{
			Label:   lbl,
			Success: false,
			Err:     &Error{Kind: KindAncestorCommitted, Message: "an ancestor transaction has already committed or rolled back"},
			Created: created,
			Updated: updated,
			Deleted: deleted,
		}
	}

	res, err := mergeIntoParent[K, V](n, n.parent, lbl)
	if err != nil {
		n.root.logger.Warn("commit conflict", "err", err)
	}
	n.close()
	return res
}

// Rollback discards this scope's buffers and marks it closed. It never
// performs backend I/O and never reports Conflict.
func (n *Nested[K, V]) Rollback() Result[K, V] {
	if n.closed {
		return failedResult[K, V]("", KindAlreadyCommitted, "transaction already committed or rolled back")
	}
	n.close()
	return Result[K, V]{Success: true}
}

func (n *Nested[K, V]) close() {
	if n.closed {
		return
	}
	n.closed = true
	n.root.active.unregister(n.activeToken)
}
