package pool_test

import (
	"testing"

	"github.com/mjolnir-engine/mjolnir/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocFreeReuse(t *testing.T) {
	// S1 — Pool reuse.
	p := pool.NewWithCapacity[uint32](4)

	h0, v0, err := p.Alloc()
	require.NoError(t, err)
	*v0 = 10
	assert.Equal(t, pool.Handle{Index: 0, Generation: 1}, h0)

	h1, v1, err := p.Alloc()
	require.NoError(t, err)
	*v1 = 20
	assert.Equal(t, pool.Handle{Index: 1, Generation: 1}, h1)

	_, freed := p.Free(h0)
	assert.True(t, freed)

	h2, v2, err := p.Alloc()
	require.NoError(t, err)
	*v2 = 30
	assert.Equal(t, pool.Handle{Index: 0, Generation: 2}, h2)

	_, ok := p.Get(h0)
	assert.False(t, ok, "stale handle must not resolve after its slot is reused")

	got, ok := p.Get(h2)
	require.True(t, ok)
	assert.Equal(t, uint32(30), *got)
}

func TestCapacityExhausted(t *testing.T) {
	p := pool.NewWithCapacity[int](2)
	_, _, err := p.Alloc()
	require.NoError(t, err)
	_, _, err = p.Alloc()
	require.NoError(t, err)
	_, _, err = p.Alloc()
	assert.ErrorIs(t, err, pool.ErrFull)
}

func TestFreeReturnsItemBeforeRelease(t *testing.T) {
	p := pool.New[string]()
	h, v, err := p.Alloc()
	require.NoError(t, err)
	*v = "teardown-me"

	item, freed := p.Free(h)
	require.True(t, freed)
	assert.Equal(t, "teardown-me", *item)

	_, ok := p.Get(h)
	assert.False(t, ok)
}

func TestDoubleFreeIsNotOk(t *testing.T) {
	p := pool.New[int]()
	h, _, _ := p.Alloc()
	_, ok := p.Free(h)
	require.True(t, ok)
	_, ok = p.Free(h)
	assert.False(t, ok, "freeing an already-free slot reports failure, not a crash")
}

func TestNullHandleNeverValid(t *testing.T) {
	p := pool.New[int]()
	assert.False(t, p.Valid(pool.Handle{}))
}

func TestGenerationStrictlyIncreasesAcrossCycles(t *testing.T) {
	p := pool.New[int]()
	h1, _, _ := p.Alloc()
	p.Free(h1)
	h2, _, _ := p.Alloc()
	assert.Equal(t, h1.Index, h2.Index, "freed slot is reused")
	assert.Greater(t, h2.Generation, h1.Generation)
}

func TestActiveCountTracksLiveHandles(t *testing.T) {
	p := pool.New[int]()
	assert.Equal(t, 0, p.Len())
	h1, _, _ := p.Alloc()
	h2, _, _ := p.Alloc()
	assert.Equal(t, 2, p.Len())
	p.Free(h1)
	assert.Equal(t, 1, p.Len())
	p.Free(h2)
	assert.Equal(t, 0, p.Len())
}

func TestEachVisitsOnlyActiveSlots(t *testing.T) {
	p := pool.New[int]()
	h1, v1, _ := p.Alloc()
	*v1 = 1
	h2, v2, _ := p.Alloc()
	*v2 = 2
	p.Free(h1)

	seen := map[uint32]int{}
	p.Each(func(h pool.Handle, v *int) {
		seen[h.Index] = *v
	})
	assert.Equal(t, map[uint32]int{h2.Index: 2}, seen)
}
