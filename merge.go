package vellum

// mergeIntoParent implements §4.5's nested-merge protocol: sibling
// conflict detection against the parent's per-key local-version map,
// followed by buffer integration under a single freshly allocated
// parent local-version tick. Called with the Root's write critical
// section already held.
func mergeIntoParent[K comparable, V any](child *Nested[K, V], parent mergeable[K, V], label string) (Result[K, V], error) {
	parentBuf := parent.mergeBuf()

	for k := range child.buf.writes {
		if v, ok := parentBuf.localVersion[k]; ok && v > child.parentLocalAt[k] {
			return siblingConflict(parentBuf, child, label, k, child.buf.writes[k]), errConflict
		}
	}
	for k := range child.buf.deletes {
		if v, ok := parentBuf.localVersion[k]; ok && v > child.parentLocalAt[k] {
			return siblingConflict(parentBuf, child, label, k, child.buf.deletedValue[k]), errConflict
		}
	}

	vStar := parentBuf.tick()

	for k, v := range child.buf.writes {
		parentBuf.writes[k] = v
		delete(parentBuf.deletes, k)
		parentBuf.localVersion[k] = vStar
		if _, ok := child.buf.created[k]; ok {
			parentBuf.created[k] = struct{}{}
		}
	}

	for k := range child.buf.deletes {
		parentBuf.deletes[k] = struct{}{}
		delete(parentBuf.writes, k)
		delete(parentBuf.created, k)
		parentBuf.localVersion[k] = vStar
		parentBuf.deletedValue[k] = child.buf.deletedValue[k]
		if _, ok := child.buf.originallyHad[k]; ok {
			parentBuf.originallyHad[k] = struct{}{}
		}
	}

	created, updated, deleted := child.buf.classify()
	return Result[K, V]{Label: label, Success: true, Created: created, Updated: updated, Deleted: deleted}, nil
}

// errConflict is a sentinel used only to signal the caller (Nested.Commit)
// that the returned Result already carries a Conflict; it is never
// exposed to library callers.
var errConflict = &Error{Kind: KindConflict, Message: "write-write conflict"}

// siblingConflict builds the failed Result for a sibling write-write
// clash. Per §4.5, the classified lists on a nested-level conflict are
// identical to the child's would-be contribution, not empty (that rule
// applies only to the Root path).
func siblingConflict[K comparable, V any](parentBuf *buffers[K, V], child *Nested[K, V], label string, k K, childValue V) Result[K, V] {
	var parentValue V
	if _, deleted := parentBuf.deletes[k]; deleted {
		parentValue = parentBuf.deletedValue[k]
	} else {
		parentValue = parentBuf.writes[k]
	}

	res := conflictResult[K, V](label, Conflict[K, V]{Key: k, ParentValue: parentValue, ChildValue: childValue})
	res.Created, res.Updated, res.Deleted = child.buf.classify()
	return res
}
