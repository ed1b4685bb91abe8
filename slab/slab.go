// Package slab implements a fixed-size-class sub-allocator over a single
// linear region of a backing device buffer. It is the allocation strategy
// behind the manager's vertex, index, skinning, and bone-matrix buffers:
// one buffer, many callers, no general-purpose allocator in the hot path.
package slab

import "errors"

// ErrNoFit is returned when no configured class is large enough to
// satisfy a request.
var ErrNoFit = errors.New("slab: no class fits requested size")

// Class describes one size class: BlockSize elements per block,
// BlockCount blocks.
type Class struct {
	BlockSize  uint32
	BlockCount uint32
}

type classState struct {
	Class
	base uint32 // start offset of this class's range
	free []uint32
	tail uint32 // number of blocks bumped so far
}

// Allocator is a configuration of up to K size classes over a single
// logical buffer. Classes occupy contiguous, non-overlapping half-open
// offset ranges in ascending BlockSize order, computed once at Init.
type Allocator struct {
	classes []classState
	total   uint32
}

// Init builds the class ranges. Classes are stored and probed in the
// order given; callers conventionally pass them sorted by ascending
// BlockSize so "smallest class that fits" and "contiguous by size" agree,
// but Init does not require it — it lays ranges out in the given order
// and Alloc still picks the smallest BlockSize >= n among all classes.
func Init(classes []Class) *Allocator {
	a := &Allocator{classes: make([]classState, len(classes))}
	var offset uint32
	for i, c := range classes {
		a.classes[i] = classState{Class: c, base: offset}
		offset += c.BlockSize * c.BlockCount
	}
	a.total = offset
	return a
}

// TotalElements returns the sum of BlockSize*BlockCount across all
// classes — the minimum backing-buffer element capacity this
// configuration requires (invariant S3).
func (a *Allocator) TotalElements() uint32 {
	return a.total
}

// Alloc reserves space for n elements, returning the element offset of
// the allocation. It selects the smallest class whose BlockSize >= n;
// within that class it reuses a freed block if one exists, otherwise it
// bumps the class's tail. It never promotes to a larger class when the
// chosen class's free list and headroom are both exhausted — it fails
// instead (spec §4.2 edge case). Alloc(0) always succeeds, reserves
// nothing, and returns offset 0.
func (a *Allocator) Alloc(n uint32) (uint32, bool) {
	if n == 0 {
		return 0, true
	}

	best := -1
	for i := range a.classes {
		c := &a.classes[i]
		if c.BlockSize >= n {
			if best == -1 || c.BlockSize < a.classes[best].BlockSize {
				best = i
			}
		}
	}
	if best == -1 {
		return 0, false
	}

	c := &a.classes[best]
	if len(c.free) > 0 {
		off := c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
		return off, true
	}
	if c.tail >= c.BlockCount {
		return 0, false
	}
	off := c.base + c.tail*c.BlockSize
	c.tail++
	return off, true
}

// Free returns the block at offset to its class's free list. The class
// is identified by comparing offset against each class's range
// (invariant: classes are contiguous and non-overlapping, so exactly one
// class's range contains a valid offset). Freeing an offset of 0 with no
// outstanding zero-count allocation, or double-freeing, is undefined
// behavior per invariant S2 — callers own at most one outstanding alloc
// per offset.
func (a *Allocator) Free(offset uint32) {
	for i := range a.classes {
		c := &a.classes[i]
		end := c.base + c.BlockSize*c.BlockCount
		if offset >= c.base && offset < end {
			c.free = append(c.free, offset)
			return
		}
	}
}
