package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmitterDataPacksTextureIndex(t *testing.T) {
	e := &Emitter{Texture: Handle{Index: 3, Generation: 1}, MaxParticles: 100, SpawnRate: 2}
	data := e.BuildEmitterData()
	assert.Equal(t, uint32(3), data.TextureIdx)
	assert.Equal(t, uint32(100), data.MaxParticles)

	e2 := &Emitter{}
	data2 := e2.BuildEmitterData()
	assert.Equal(t, uint32(descriptorIndexOverflow), data2.TextureIdx)
}
