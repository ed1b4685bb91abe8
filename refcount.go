package mjolnir

import "github.com/mjolnir-engine/mjolnir/pool"

// purgeMaterialTextures unrefs every texture a material referenced,
// called exactly once, when that material itself is purged — this is
// what lets a texture's ref count reach zero on the *next* purge cycle
// even though the material and its textures are logically freed
// "together" from the caller's point of view (spec §4.9, the
// materials-before-textures ordering rationale).
func purgeMaterialTextures(m *Material, tex2D *refCounts) {
	for _, h := range m.textureHandles() {
		tex2D.Unref(h)
	}
}

// PurgeResult reports how many resources of each kind a purge pass freed.
type PurgeResult struct {
	Meshes, Materials, Textures2D, CubeTextures uint32
}

// PurgeUnusedResources runs one cascade of the reference-counted purge:
// meshes, then materials, then 2D textures, then cube textures. Purging
// materials before textures means a texture a material stopped
// referencing is only unreffed as a side effect of that material being
// purged — so that unref is not visible to the texture purge pass run
// within the *same* cascade, and survives to be caught on the next call
// (spec §4.9 "cascading purge order", an explicit invariant rather than
// an oversight).
func PurgeUnusedResources(
	meshRefs *refCounts, meshes *pool.Pool[Mesh], destroyMesh func(Handle, *Mesh),
	materialRefs *refCounts, materials *pool.Pool[Material], tex2DRefs *refCounts,
	tex2D *pool.Pool[Image],
	cubeRefs *refCounts, cube *pool.Pool[CubeImage],
) PurgeResult {
	var result PurgeResult

	var meshPurge []Handle
	meshRefs.Each(func(h Handle) {
		if meshRefs.Purgeable(h) {
			meshPurge = append(meshPurge, h)
		}
	})
	for _, h := range meshPurge {
		if mesh, ok := meshes.Free(h); ok {
			destroyMesh(h, mesh)
			result.Meshes++
		}
		meshRefs.Forget(h)
	}

	var materialPurge []Handle
	materialRefs.Each(func(h Handle) {
		if materialRefs.Purgeable(h) {
			materialPurge = append(materialPurge, h)
		}
	})
	for _, h := range materialPurge {
		if mat, ok := materials.Free(h); ok {
			purgeMaterialTextures(mat, tex2DRefs)
			result.Materials++
		}
		materialRefs.Forget(h)
	}

	var tex2DPurge []Handle
	tex2DRefs.Each(func(h Handle) {
		if tex2DRefs.Purgeable(h) {
			tex2DPurge = append(tex2DPurge, h)
		}
	})
	for _, h := range tex2DPurge {
		if img, ok := tex2D.Free(h); ok {
			img.Destroy()
			result.Textures2D++
		}
		tex2DRefs.Forget(h)
	}

	var cubePurge []Handle
	cubeRefs.Each(func(h Handle) {
		if cubeRefs.Purgeable(h) {
			cubePurge = append(cubePurge, h)
		}
	})
	for _, h := range cubePurge {
		if img, ok := cube.Free(h); ok {
			img.Destroy()
			result.CubeTextures++
		}
		cubeRefs.Forget(h)
	}

	return result
}
