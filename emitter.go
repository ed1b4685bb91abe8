package mjolnir

import "github.com/go-gl/mathgl/mgl32"

// Emitter is a GPU particle source, a scalar record in the manager's
// bindless emitter buffer (spec §4.10). It owns no slab region; particle
// instance storage is a separate, fixed-capacity buffer sized by
// MaxParticles and populated by the simulation compute pass, out of
// scope for this package.
type Emitter struct {
	NodeIndex    uint32
	Texture      Handle
	MaxParticles uint32
	SpawnRate    float32
	Lifetime     float32
	StartSize    float32
	EndSize      float32
	StartColor   mgl32.Vec4
	EndColor     mgl32.Vec4
}

// BuildEmitterData packs this emitter into its fixed GPU record.
func (e *Emitter) BuildEmitterData() EmitterData {
	return EmitterData{
		NodeIndex:    e.NodeIndex,
		TextureIdx:   descriptorIndexOf(e.Texture),
		MaxParticles: e.MaxParticles,
		SpawnRate:    e.SpawnRate,
		Lifetime:     e.Lifetime,
		StartSize:    e.StartSize,
		EndSize:      e.EndSize,
		StartColor:   e.StartColor,
		EndColor:     e.EndColor,
	}
}
