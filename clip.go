package mjolnir

import (
	"fmt"

	"github.com/mjolnir-engine/mjolnir/slab"
)

// Clip is the supplemented animation-clip resource (spec §4.10
// supplement, §1 "animation clips" was present in the source renderer
// but dropped in distillation). This package tracks only a clip's
// bone-matrix slab allocation; sampling/evaluating the clip into those
// matrices each tick is out of scope.
type Clip struct {
	BoneMatrixOffset uint32
	BoneMatrixCount  uint32
	DurationTicks    uint32
	TicksPerSecond   float32
}

// CreateClip reserves boneMatrixCount elements in the shared bone-matrix
// slab buffer and returns the resulting Clip.
func CreateClip(boneSlab *slab.Allocator, boneMatrixCount uint32, durationTicks uint32, ticksPerSecond float32) (*Clip, error) {
	off, ok := boneSlab.Alloc(boneMatrixCount)
	if !ok {
		return nil, fmt.Errorf("mjolnir: reserve %d bone matrices: %w", boneMatrixCount, ErrCapacityExhausted)
	}
	return &Clip{
		BoneMatrixOffset: off,
		BoneMatrixCount:  boneMatrixCount,
		DurationTicks:    durationTicks,
		TicksPerSecond:   ticksPerSecond,
	}, nil
}

// Destroy releases the clip's bone-matrix slab region.
func (c *Clip) Destroy(boneSlab *slab.Allocator) {
	if c == nil {
		return
	}
	boneSlab.Free(c.BoneMatrixOffset)
}

// BuildClipData packs this clip into its fixed GPU record.
func (c *Clip) BuildClipData() ClipData {
	return ClipData{
		BoneMatrixOffset: c.BoneMatrixOffset,
		BoneMatrixCount:  c.BoneMatrixCount,
		DurationTicks:    c.DurationTicks,
		TicksPerSecond:   c.TicksPerSecond,
	}
}
