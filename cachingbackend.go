package vellum

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
)

// CachingBackend decorates any Backend[K, V] with a bounded LRU
// read-through cache. Reads consult the cache first; writes and
// deletes invalidate the cached entry before delegating, so the
// decorator never serves state the underlying backend has moved past.
type CachingBackend[K comparable, V any] struct {
	inner Backend[K, V]
	cache *freelru.LRU[K, V]
}

// NewCachingBackend wraps inner with an LRU of the given capacity.
// Keys are hashed with xxhash over their fmt.Sprint form, since the
// engine keeps K fully opaque and cannot assume a byte representation.
// capacity must be a power of two per go-freelru's sharding
// requirement; callers using WithCache should pick one.
func NewCachingBackend[K comparable, V any](inner Backend[K, V], capacity uint32) (*CachingBackend[K, V], error) {
	hash := func(k K) uint32 {
		return uint32(xxhash.Sum64String(fmt.Sprint(k)))
	}

	cache, err := freelru.New[K, V](capacity, hash)
	if err != nil {
		return nil, err
	}

	return &CachingBackend[K, V]{inner: inner, cache: cache}, nil
}

func (c *CachingBackend[K, V]) Read(k K) (V, bool, error) {
	if v, ok := c.cache.Get(k); ok {
		return v, true, nil
	}

	v, ok, err := c.inner.Read(k)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if ok {
		c.cache.Add(k, v)
	}
	return v, ok, nil
}

func (c *CachingBackend[K, V]) Write(k K, v V) error {
	c.cache.Remove(k)
	if err := c.inner.Write(k, v); err != nil {
		return err
	}
	c.cache.Add(k, v)
	return nil
}

func (c *CachingBackend[K, V]) Delete(k K) error {
	c.cache.Remove(k)
	return c.inner.Delete(k)
}

func (c *CachingBackend[K, V]) Exists(k K) (bool, error) {
	if _, ok := c.cache.Get(k); ok {
		return true, nil
	}
	return c.inner.Exists(k)
}
