// Package dedupe tracks keys that must not be processed twice: in-flight
// pipeline runs and natural keys seen during an import.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records keys so that each is claimed at most once until released.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases key so a later SeenAndRecord succeeds again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// keySet is a Deduper backed by a map and an insertion-ordered list.
// When bounded, the oldest key is evicted to admit a new one.
type keySet struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper returns an in-memory Deduper. The default holds up to
// 1024 keys; WithMaxSize(0) makes it unbounded.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &keySet{maxSize: 1024}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *keySet) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.keys, oldest.Value.(string))
	}
	d.keys[key] = d.order.PushBack(key)
	return false
}

func (d *keySet) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

func (d *keySet) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
