package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(true)
	assert.True(t, m.Albedo.IsNull())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.BaseColorFactor)
	assert.True(t, m.AutoPurge)
}

func TestBuildMaterialDataFeatureBits(t *testing.T) {
	m := NewMaterial(false)
	m.Albedo = Handle{Index: 3, Generation: 1}
	m.Transparent = true
	m.DoubleSided = true

	data := m.BuildMaterialData()
	assert.NotEqual(t, uint32(0), data.Features&MaterialFeatureAlbedoTexture)
	assert.Equal(t, uint32(0), data.Features&MaterialFeatureMRTexture)
	assert.NotEqual(t, uint32(0), data.Features&MaterialFeatureTransparent)
	assert.NotEqual(t, uint32(0), data.Features&MaterialFeatureDoubleSided)
	assert.Equal(t, uint32(3), data.AlbedoTexture)
	assert.Equal(t, uint32(descriptorIndexOverflow), data.MRTexture)
}

func TestTextureHandlesOnlyReturnsNonNull(t *testing.T) {
	m := NewMaterial(false)
	m.Albedo = Handle{Index: 1, Generation: 1}
	m.Emissive = Handle{Index: 2, Generation: 1}
	hs := m.textureHandles()
	assert.Len(t, hs, 2)
}
