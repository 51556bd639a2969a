// Package session provides the bounded in-memory registries that back the
// confirmation workflow and the result cache.
package session

import "sync"

// Registry is a bounded, thread-safe map with FIFO eviction: once the
// configured capacity is exceeded, the oldest inserted entry is removed
// first. It replaces process-wide mutable maps with an explicit store
// object passed to request handlers.
type Registry[V any] struct {
	items    map[string]V
	order    []string
	capacity int
	mu       sync.Mutex
}

// NewRegistry creates a registry bounded to the given capacity.
// A non-positive capacity falls back to 1000 entries.
func NewRegistry[V any](capacity int) *Registry[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Registry[V]{
		items:    make(map[string]V),
		capacity: capacity,
	}
}

// Put stores a value under the given key, evicting the oldest entry when
// the registry is full. Re-putting an existing key updates the value
// without changing its insertion position.
func (r *Registry[V]) Put(key string, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		r.items[key] = value
		return
	}

	if len(r.order) >= r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.items, oldest)
	}

	r.items[key] = value
	r.order = append(r.order, key)
}

// Get returns the value stored under key, if present.
func (r *Registry[V]) Get(key string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[key]
	return v, ok
}

// Delete removes the entry stored under key. It is a no-op for absent keys.
func (r *Registry[V]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; !exists {
		return
	}
	delete(r.items, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored entries.
func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
