package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefCountsSaturateAtZero(t *testing.T) {
	r := newRefCounts()
	h := Handle{Index: 1, Generation: 1}
	r.Unref(h) // never ref'd
	assert.Equal(t, uint32(0), r.Count(h))

	r.Ref(h, true)
	r.Unref(h)
	r.Unref(h) // double unref past zero
	assert.Equal(t, uint32(0), r.Count(h))
}

func TestRefCountsPurgeableRequiresAutoPurgeAndZero(t *testing.T) {
	r := newRefCounts()
	h1 := Handle{Index: 1, Generation: 1}
	h2 := Handle{Index: 2, Generation: 1}

	r.Ref(h1, true)
	r.Ref(h2, false)
	r.Unref(h1)
	r.Unref(h2)

	assert.True(t, r.Purgeable(h1))
	assert.False(t, r.Purgeable(h2))
}

func TestRefCountsForgetRemovesBookkeeping(t *testing.T) {
	r := newRefCounts()
	h := Handle{Index: 1, Generation: 1}
	r.Ref(h, true)
	r.Forget(h)
	assert.Equal(t, uint32(0), r.Count(h))
	assert.False(t, r.Purgeable(h)) // autoPurge entry gone too
}

func TestRefCountsKeyedByFullHandleNotJustIndex(t *testing.T) {
	r := newRefCounts()
	gen1 := Handle{Index: 1, Generation: 1}
	gen2 := Handle{Index: 1, Generation: 2}

	r.Ref(gen1, true)
	r.Forget(gen1) // slot freed, generation bumped

	r.Ref(gen2, false)
	assert.Equal(t, uint32(1), r.Count(gen2))
	assert.Equal(t, uint32(0), r.Count(gen1))
}
