// Package pool implements the generational slotmap used throughout the
// manager: every long-lived GPU resource occupies a small, stable integer
// slot that a Handle can reference safely across create/destroy cycles.
package pool

import "errors"

// ErrFull is returned by Alloc when the pool has a bounded capacity and
// every slot is currently in use.
var ErrFull = errors.New("pool: capacity exhausted")

// Handle identifies a slot in a Pool. The zero Handle (Generation == 0)
// is the null handle and never refers to a live slot.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h.Generation == 0
}

type entry[T any] struct {
	generation uint32
	active     bool
	item       T
}

// Pool is a generational slotmap over T. The zero value is not usable;
// construct one with New.
type Pool[T any] struct {
	entries  []entry[T]
	free     []uint32 // LIFO of free indices
	capacity int       // 0 means unbounded
	active   int
}

// New creates a Pool with no capacity bound.
func New[T any]() *Pool[T] {
	return &Pool[T]{}
}

// NewWithCapacity creates a Pool that fails Alloc once capacity slots are
// simultaneously active.
func NewWithCapacity[T any](capacity int) *Pool[T] {
	return &Pool[T]{capacity: capacity}
}

// Len returns the number of currently active slots.
func (p *Pool[T]) Len() int {
	return p.active
}

// Alloc reserves a slot, reusing the most recently freed one (P3), and
// returns a Handle plus a pointer to the zero-valued item for in-place
// initialization. It fails with ErrFull only when the pool has a bounded
// capacity and it has been reached.
func (p *Pool[T]) Alloc() (Handle, *T, error) {
	if len(p.free) > 0 {
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		e := &p.entries[idx]
		e.active = true
		var zero T
		e.item = zero
		p.active++
		return Handle{Index: idx, Generation: e.generation}, &e.item, nil
	}

	if p.capacity > 0 && len(p.entries) >= p.capacity {
		return Handle{}, nil, ErrFull
	}

	p.entries = append(p.entries, entry[T]{generation: 1, active: true})
	idx := uint32(len(p.entries) - 1)
	p.active++
	return Handle{Index: idx, Generation: 1}, &p.entries[idx].item, nil
}

// Free releases h's slot, bumping its generation (P2) so any outstanding
// Handle for this slot — including h itself — compares as invalid on the
// very next Get. It returns a pointer to the item as it stood at the
// moment of release (so the caller can perform GPU-side teardown using
// its contents) and whether the slot was actually live. The slot is
// considered released upon return regardless of what the caller does
// with that pointer.
func (p *Pool[T]) Free(h Handle) (*T, bool) {
	if int(h.Index) >= len(p.entries) {
		return nil, false
	}
	e := &p.entries[h.Index]
	if !e.active || e.generation != h.Generation {
		return nil, false
	}
	e.active = false
	e.generation++
	if e.generation == 0 {
		e.generation = 1 // wrap 0 -> 1, generation 0 is reserved for the null handle
	}
	p.free = append(p.free, h.Index)
	p.active--
	return &e.item, true
}

// Get returns the item for h, or ok == false if h is stale or out of range.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if h.IsNull() || int(h.Index) >= len(p.entries) {
		return nil, false
	}
	e := &p.entries[h.Index]
	if !e.active || e.generation != h.Generation {
		return nil, false
	}
	return &e.item, true
}

// Valid reports whether h refers to a currently active slot.
func (p *Pool[T]) Valid(h Handle) bool {
	_, ok := p.Get(h)
	return ok
}

// Each calls fn for every active slot, passing its Handle and item.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	for i := range p.entries {
		e := &p.entries[i]
		if e.active {
			fn(Handle{Index: uint32(i), Generation: e.generation}, &e.item)
		}
	}
}
