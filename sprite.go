package mjolnir

import "github.com/go-gl/mathgl/mgl32"

// Sprite is a 2D billboard driven entirely by its GPU record; unlike
// Mesh/Material/Texture2D it owns no slab region or image and is not
// reference-counted — its lifetime is exactly its owning scene node's
// (spec §4.10).
type Sprite struct {
	NodeIndex  uint32
	Texture    Handle
	FrameIndex uint32
	FrameCount uint32
	Size       mgl32.Vec2
	UVOffset   mgl32.Vec2
	UVScale    mgl32.Vec2

	// Animatable marks this sprite as belonging to the manager's
	// per-frame animatable-sprite list (spec §4.13 frame bookkeeping):
	// only sprites with FrameCount > 1 need their FrameIndex advanced
	// each tick.
	Animatable bool
}

// BuildSpriteData packs this sprite into its fixed GPU record.
func (s *Sprite) BuildSpriteData() SpriteData {
	return SpriteData{
		NodeIndex:  s.NodeIndex,
		TextureIdx: descriptorIndexOf(s.Texture),
		FrameIndex: s.FrameIndex,
		FrameCount: s.FrameCount,
		Size:       s.Size,
		UVOffset:   s.UVOffset,
		UVScale:    s.UVScale,
	}
}

// Advance moves FrameIndex forward by one, wrapping at FrameCount. It is
// a no-op for non-animatable (FrameCount <= 1) sprites.
func (s *Sprite) Advance() {
	if s.FrameCount <= 1 {
		return
	}
	s.FrameIndex = (s.FrameIndex + 1) % s.FrameCount
}
