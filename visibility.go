package vellum

// snapshotRead implements the Root's snapshot reader for (k,
// snapshotVersion) per §4.3's five-step resolution algorithm.
func (r *Root[K, V]) snapshotRead(k K, snapshotVersion uint64) (V, bool, error) {
	target, hasTarget, next, hasNext := r.versions.resolve(k, snapshotVersion)

	// Every Undo Cache entry is pushed alongside a Version Index
	// append (§4.5), so an unmanaged key never has undo history either.
	if !hasTarget && !hasNext && !r.versions.managed(k) {
		return r.backend.Read(k)
	}

	if !hasTarget || !target.exists {
		var zero V
		return zero, false, nil
	}

	if !hasNext {
		return r.backend.Read(k)
	}

	v, ok := r.undo.get(k, next.version)
	if !ok {
		var zero V
		return zero, false, nil
	}
	return v, true, nil
}

// snapshotExists follows the same resolution but never needs the Undo
// Cache: only target's presence/exists flag matters.
func (r *Root[K, V]) snapshotExists(k K, snapshotVersion uint64) (bool, error) {
	target, hasTarget, _, _ := r.versions.resolve(k, snapshotVersion)

	if !hasTarget {
		if r.versions.managed(k) {
			return false, nil
		}
		return r.backend.Exists(k)
	}

	return target.exists, nil
}
