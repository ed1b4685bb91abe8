package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolnir-engine/mjolnir/pool"
)

// newBookkeepingOnlyManager constructs a Manager with just the pools
// BeginFrame touches, for testing frame bookkeeping without a real GPU
// device.
func newBookkeepingOnlyManager() *Manager {
	return &Manager{
		lights:  pool.NewWithCapacity[Light](8),
		sprites: pool.NewWithCapacity[Sprite](8),
	}
}

func TestBeginFrameWrapsFrameIndex(t *testing.T) {
	m := newBookkeepingOnlyManager()
	m.BeginFrame(5)
	assert.Equal(t, 5%FramesInFlight, m.CurrentFrameIndex())
}

func TestBeginFrameCollectsActiveLights(t *testing.T) {
	m := newBookkeepingOnlyManager()
	h1, _, err := m.lights.Alloc()
	require.NoError(t, err)
	h2, _, err := m.lights.Alloc()
	require.NoError(t, err)

	m.BeginFrame(0)
	assert.ElementsMatch(t, []Handle{h1, h2}, m.ActiveLights())
}

func TestBeginFrameAdvancesOnlyAnimatableSprites(t *testing.T) {
	m := newBookkeepingOnlyManager()
	_, staticSlot, err := m.sprites.Alloc()
	require.NoError(t, err)
	*staticSlot = Sprite{FrameCount: 1, FrameIndex: 0}

	animH, animSlot, err := m.sprites.Alloc()
	require.NoError(t, err)
	*animSlot = Sprite{FrameCount: 4, FrameIndex: 0, Animatable: true}

	m.BeginFrame(0)

	animated, ok := m.sprites.Get(animH)
	require.True(t, ok)
	assert.Equal(t, uint32(1), animated.FrameIndex)
	assert.Equal(t, []Handle{animH}, m.animatableSprites, "the static sprite is not advanced")
}
