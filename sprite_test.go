package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpriteAdvanceWraps(t *testing.T) {
	s := &Sprite{FrameIndex: 0, FrameCount: 3}
	s.Advance()
	assert.Equal(t, uint32(1), s.FrameIndex)
	s.Advance()
	s.Advance()
	assert.Equal(t, uint32(0), s.FrameIndex)
}

func TestSpriteAdvanceNoopForStatic(t *testing.T) {
	s := &Sprite{FrameIndex: 0, FrameCount: 1}
	s.Advance()
	assert.Equal(t, uint32(0), s.FrameIndex)

	s2 := &Sprite{FrameIndex: 5, FrameCount: 0}
	s2.Advance()
	assert.Equal(t, uint32(5), s2.FrameIndex)
}

func TestBuildSpriteDataPacksTextureIndex(t *testing.T) {
	s := &Sprite{Texture: Handle{Index: 7, Generation: 1}}
	data := s.BuildSpriteData()
	assert.Equal(t, uint32(7), data.TextureIdx)

	s2 := &Sprite{}
	data2 := s2.BuildSpriteData()
	assert.Equal(t, uint32(descriptorIndexOverflow), data2.TextureIdx)
}
