package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolnir-engine/mjolnir/pool"
)

// TestPurgeUnusedResourcesMaterialTextureCascade exercises spec scenario
// S5: a material referencing a texture is purged; the texture reference
// it held is only released as a side effect, so the texture is NOT
// purged in the same cascade, but IS purged on the following call.
func TestPurgeUnusedResourcesMaterialTextureCascade(t *testing.T) {
	meshes := pool.New[Mesh]()
	materials := pool.New[Material]()
	images := pool.New[Image]()
	cubeImages := pool.New[CubeImage]()

	meshRefs := newRefCounts()
	materialRefs := newRefCounts()
	tex2DRefs := newRefCounts()
	cubeRefs := newRefCounts()

	texHandle, _, err := images.Alloc()
	require.NoError(t, err)
	tex2DRefs.Ref(texHandle, true)

	mat := NewMaterial(true)
	mat.Albedo = texHandle
	matHandle, slot, err := materials.Alloc()
	require.NoError(t, err)
	*slot = *mat
	materialRefs.Ref(matHandle, true)

	// Drop the only reference to the material; the texture is still
	// referenced by the (about-to-be-purged) material.
	materialRefs.Unref(matHandle)

	var destroyedMesh []Handle
	destroyMesh := func(h Handle, m *Mesh) { destroyedMesh = append(destroyedMesh, h) }

	firstPass := PurgeUnusedResources(meshRefs, meshes, destroyMesh, materialRefs, materials, tex2DRefs, images, cubeRefs, cubeImages)
	assert.Equal(t, uint32(1), firstPass.Materials)
	assert.Equal(t, uint32(0), firstPass.Textures2D, "texture must survive the same cascade its owning material was purged in")

	_, stillThere := materials.Get(matHandle)
	assert.False(t, stillThere)
	_, texStillThere := images.Get(texHandle)
	assert.True(t, texStillThere, "texture slot itself is untouched by the first cascade")
	assert.Equal(t, uint32(0), tex2DRefs.Count(texHandle), "material purge unreffed the texture")

	secondPass := PurgeUnusedResources(meshRefs, meshes, destroyMesh, materialRefs, materials, tex2DRefs, images, cubeRefs, cubeImages)
	assert.Equal(t, uint32(1), secondPass.Textures2D, "texture purges on the next cascade now that its ref count is zero")
	_, texGone := images.Get(texHandle)
	assert.False(t, texGone)
}

func TestPurgeUnusedResourcesSkipsNonAutoPurge(t *testing.T) {
	meshes := pool.New[Mesh]()
	materials := pool.New[Material]()
	images := pool.New[Image]()
	cubeImages := pool.New[CubeImage]()

	meshRefs := newRefCounts()
	materialRefs := newRefCounts()
	tex2DRefs := newRefCounts()
	cubeRefs := newRefCounts()

	h, _, err := meshes.Alloc()
	require.NoError(t, err)
	meshRefs.Ref(h, false) // auto_purge disabled
	meshRefs.Unref(h)

	result := PurgeUnusedResources(meshRefs, meshes, func(Handle, *Mesh) {}, materialRefs, materials, tex2DRefs, images, cubeRefs, cubeImages)
	assert.Equal(t, uint32(0), result.Meshes)
	_, ok := meshes.Get(h)
	assert.True(t, ok)
}
