package vellum

// rootOptions configures Root behavior.
type rootOptions[K comparable, V any] struct {
	logger                Logger
	concurrencySafe       bool
	maxActiveTransactions int
	cacheCapacity         uint32
}

// defaultRootOptions returns safe default configuration: a discarding
// logger, the unsynchronized flavour, and an unbounded active-transaction
// registry.
func defaultRootOptions[K comparable, V any]() rootOptions[K, V] {
	return rootOptions[K, V]{
		logger:                DiscardLogger{},
		concurrencySafe:       false,
		maxActiveTransactions: 4096,
	}
}

// RootOption configures a Root at construction time. Instantiate the
// generic helpers below with the same K, V as the Root they configure,
// e.g. vellum.WithLogger[string, string](myLogger).
type RootOption[K comparable, V any] func(*rootOptions[K, V])

// WithLogger installs a Logger. The default is DiscardLogger.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger[K comparable, V any](logger Logger) RootOption[K, V] {
	return func(opts *rootOptions[K, V]) {
		opts.logger = logger
	}
}

// WithConcurrencySafety switches the Root to the concurrency-safe
// flavour described in SPEC_FULL.md §5: commits take an exclusive write
// critical section, reads take only the shared side, and CreateNested
// registers into a fixed-capacity atomic slot array instead of an
// unsynchronized map.
//
//goland:noinspection GoUnusedExportedFunction
func WithConcurrencySafety[K comparable, V any]() RootOption[K, V] {
	return func(opts *rootOptions[K, V]) {
		opts.concurrencySafe = true
	}
}

// WithMaxActiveTransactions bounds the number of concurrently open
// Nested transactions when combined with WithConcurrencySafety. Ignored
// by the unsynchronized flavour, whose registry is an unbounded map.
//
//goland:noinspection GoUnusedExportedFunction
func WithMaxActiveTransactions[K comparable, V any](n int) RootOption[K, V] {
	return func(opts *rootOptions[K, V]) {
		opts.maxActiveTransactions = n
	}
}

// WithCache wraps the backend passed to NewRoot in a CachingBackend with
// the given capacity before the Root stores it.
//
//goland:noinspection GoUnusedExportedFunction
func WithCache[K comparable, V any](capacity uint32) RootOption[K, V] {
	return func(opts *rootOptions[K, V]) {
		opts.cacheCapacity = capacity
	}
}
