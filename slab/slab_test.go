package slab_test

import (
	"testing"

	"github.com/mjolnir-engine/mjolnir/slab"
	"github.com/stretchr/testify/assert"
)

func TestClassBoundaryAllocation(t *testing.T) {
	// S2 — Slab class boundary.
	a := slab.Init([]slab.Class{
		{BlockSize: 256, BlockCount: 2},
		{BlockSize: 1024, BlockCount: 2},
	})

	off, ok := a.Alloc(200)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off)

	off, ok = a.Alloc(256)
	assert.True(t, ok)
	assert.Equal(t, uint32(256), off)

	// Class 0 (256-byte blocks) is now exhausted; 257 doesn't fit class 0
	// anyway, so it lands in class 1, whose range starts at 512.
	off, ok = a.Alloc(257)
	assert.True(t, ok)
	assert.Equal(t, uint32(512), off)

	a.Free(0)
	off, ok = a.Alloc(1)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off, "freed block is reused before bumping further")
}

func TestNoClassPromotion(t *testing.T) {
	a := slab.Init([]slab.Class{
		{BlockSize: 64, BlockCount: 1},
		{BlockSize: 128, BlockCount: 1},
	})
	_, ok := a.Alloc(64)
	assert.True(t, ok)
	// Class 0 is full; class 1 has room, but a request that fits class 0's
	// size must not be promoted to class 1.
	_, ok = a.Alloc(64)
	assert.False(t, ok)
}

func TestNoFitReturnsFalse(t *testing.T) {
	a := slab.Init([]slab.Class{{BlockSize: 16, BlockCount: 4}})
	_, ok := a.Alloc(17)
	assert.False(t, ok)
}

func TestAllocZeroReservesNothing(t *testing.T) {
	a := slab.Init([]slab.Class{{BlockSize: 8, BlockCount: 1}})
	off, ok := a.Alloc(0)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off)

	// The zero-count alloc must not have consumed the sole block.
	off, ok = a.Alloc(8)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off)
}

func TestOffsetsWithinClassAreDisjoint(t *testing.T) {
	a := slab.Init([]slab.Class{{BlockSize: 32, BlockCount: 8}})
	seen := map[uint32]bool{}
	for i := 0; i < 8; i++ {
		off, ok := a.Alloc(32)
		if !ok {
			t.Fatalf("alloc %d failed", i)
		}
		assert.False(t, seen[off], "offset %d allocated twice", off)
		seen[off] = true
		assert.Zero(t, off%32, "offsets must be divisible by block size")
	}
	_, ok := a.Alloc(32)
	assert.False(t, ok)
}

func TestTotalElementsMatchesClassSum(t *testing.T) {
	a := slab.Init([]slab.Class{
		{BlockSize: 8, BlockCount: 4},
		{BlockSize: 64, BlockCount: 2},
	})
	assert.Equal(t, uint32(8*4+64*2), a.TotalElements())
}
