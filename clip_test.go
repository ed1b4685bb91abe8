package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolnir-engine/mjolnir/slab"
)

func testBoneSlab() *slab.Allocator {
	return slab.Init([]slab.Class{{BlockSize: 256, BlockCount: 1}})
}

func TestCreateClipReservesBoneMatrices(t *testing.T) {
	s := testBoneSlab()
	c, err := CreateClip(s, 64, 1800, 30)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), c.BoneMatrixCount)
	assert.Equal(t, uint32(1800), c.DurationTicks)
	assert.Equal(t, float32(30), c.TicksPerSecond)
}

func TestCreateClipErrorsWhenSlabExhausted(t *testing.T) {
	s := testBoneSlab()
	_, err := CreateClip(s, 1000, 0, 30)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}

func TestClipDestroyFreesBoneMatrices(t *testing.T) {
	s := testBoneSlab()
	c, err := CreateClip(s, 64, 0, 30)
	require.NoError(t, err)
	c.Destroy(s)

	c2, err := CreateClip(s, 256, 0, 30)
	require.NoError(t, err, "freed region should be reusable")
	assert.Equal(t, uint32(0), c2.BoneMatrixOffset)
}

func TestBuildClipDataPacksFields(t *testing.T) {
	s := testBoneSlab()
	c, err := CreateClip(s, 32, 900, 24)
	require.NoError(t, err)
	data := c.BuildClipData()
	assert.Equal(t, uint32(32), data.BoneMatrixCount)
	assert.Equal(t, uint32(900), data.DurationTicks)
	assert.Equal(t, float32(24), data.TicksPerSecond)
}
