package vellum

// runGC implements §4.6's Undo Cache GC. It must be called with the
// Root's write critical section already held: minLive is computed
// from the currently-registered active transactions, and a racing
// CreateNested between the computation and the prune would be unsafe.
func (r *Root[K, V]) runGC() {
	minLive := r.active.minLive(r.version)

	r.undo.prune(minLive)
	r.versions.prune(minLive)

	r.logger.Info("gc sweep", "minLive", minLive, "undoEntries", r.undo.size())
}
