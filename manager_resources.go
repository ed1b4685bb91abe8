package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// CreateCamera allocates a camera with the given projection, pass set,
// and extent, wires up its depth-pyramid descriptor sets, writes its
// initial CameraData record for every frame, and registers it in the
// manager's camera pool.
func (m *Manager) CreateCamera(proj Projection, passes Passes, width, height, maxDraws uint32) (Handle, error) {
	cam, err := NewCamera(m.device, m.images, proj, passes, width, height, maxDraws)
	if err != nil {
		return Handle{}, err
	}
	if err := cam.BuildHiZDescriptors(m.images); err != nil {
		cam.Destroy()
		return Handle{}, err
	}
	h, slot, err := m.cameras.Alloc()
	if err != nil {
		cam.Destroy()
		return Handle{}, fmt.Errorf("mjolnir: allocate camera slot: %w", ErrCapacityExhausted)
	}
	*slot = *cam
	for f := 0; f < FramesInFlight; f++ {
		m.cameraData.WriteFrame(f, h.Index, CameraData{})
	}
	return h, nil
}

// DestroyCamera releases a camera's GPU resources and its pool slot.
func (m *Manager) DestroyCamera(h Handle) {
	if cam, ok := m.cameras.Free(h); ok {
		cam.Destroy()
	}
}

// UploadCamera recomputes and writes h's CameraData record for frame f.
func (m *Manager) UploadCamera(h Handle, f int, view mgl32.Mat4, position mgl32.Vec3) bool {
	cam, ok := m.cameras.Get(h)
	if !ok {
		return false
	}
	m.cameraData.WriteFrame(f, h.Index, cam.BuildCameraData(view, position))
	return true
}

// CreateSphericalCamera allocates a spherical (point-light) shadow camera.
func (m *Manager) CreateSphericalCamera(near, far float32, size, maxDraws uint32) (Handle, error) {
	sc, err := NewSphericalCamera(m.device, m.cubeImages, near, far, size, maxDraws)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := m.sphericalCameras.Alloc()
	if err != nil {
		sc.Destroy()
		return Handle{}, fmt.Errorf("mjolnir: allocate spherical-camera slot: %w", ErrCapacityExhausted)
	}
	*slot = *sc
	return h, nil
}

// DestroySphericalCamera releases a spherical camera's GPU resources and
// pool slot.
func (m *Manager) DestroySphericalCamera(h Handle) {
	if sc, ok := m.sphericalCameras.Free(h); ok {
		sc.Destroy()
	}
}

// CreateLight registers a light and, if CastShadow is set, provisions
// its shadow camera.
func (m *Manager) CreateLight(l Light, maxDraws uint32) (Handle, error) {
	if err := ProvisionShadowCamera(&l, m.sphericalCameras, m.cameras, cameraDeps{
		device: m.device, images: m.images, cubeImages: m.cubeImages, maxDraws: maxDraws,
	}); err != nil {
		return Handle{}, err
	}
	h, slot, err := m.lights.Alloc()
	if err != nil {
		ReleaseShadowCamera(&l, m.sphericalCameras, m.cameras)
		return Handle{}, fmt.Errorf("mjolnir: allocate light slot: %w", ErrCapacityExhausted)
	}
	*slot = l
	for f := 0; f < FramesInFlight; f++ {
		m.lightData.WriteFrame(f, h.Index, l.BuildLightData())
	}
	return h, nil
}

// DestroyLight releases a light's shadow camera (if any) and pool slot.
func (m *Manager) DestroyLight(h Handle) {
	if l, ok := m.lights.Free(h); ok {
		ReleaseShadowCamera(l, m.sphericalCameras, m.cameras)
	}
}

// UploadLight rewrites h's LightData record for frame f from its current
// in-pool state.
func (m *Manager) UploadLight(h Handle, f int) bool {
	l, ok := m.lights.Get(h)
	if !ok {
		return false
	}
	m.lightData.WriteFrame(f, h.Index, l.BuildLightData())
	return true
}

// CreateMesh reserves slab space for geom, registers the resulting mesh,
// writes its MeshData record, and streams geom's vertices, indices, and
// (if present) skinning data into the manager's shared device buffers at
// the offsets CreateMesh reserved (spec §3 invariant 3, §4.7 "streams
// data into them").
func (m *Manager) CreateMesh(geom Geometry, autoPurge bool) (Handle, error) {
	mesh, err := CreateMesh(m.vertexSlab, m.indexSlab, m.skinSlab, geom, autoPurge)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := m.meshes.Alloc()
	if err != nil {
		mesh.Destroy(m.vertexSlab, m.indexSlab, m.skinSlab, func(Handle) {})
		return Handle{}, fmt.Errorf("mjolnir: allocate mesh slot: %w", ErrCapacityExhausted)
	}
	*slot = *mesh
	m.meshData.Write(h.Index, mesh.Data)
	m.meshRefs.Ref(h, autoPurge)

	vtxOff, _ := mesh.VertexRange()
	m.vertexBuffer.WriteRange(vtxOff, geom.Vertices)
	idxOff, _ := mesh.IndexRange()
	m.indexBuffer.WriteRange(idxOff, geom.Indices)
	if mesh.Skinned() {
		skinOff, _ := mesh.SkinRange()
		m.skinBuffer.Write(skinOff, geom.Skinnings)
	}
	return h, nil
}

// RefMesh increments h's reference count.
func (m *Manager) RefMesh(h Handle) { m.meshRefs.Ref(h, false) }

// UnrefMesh decrements h's reference count, saturating at zero.
func (m *Manager) UnrefMesh(h Handle) { m.meshRefs.Unref(h) }

// CreateMaterial registers mat, writing its MaterialData record and
// taking a reference on every texture it references.
func (m *Manager) CreateMaterial(mat *Material) (Handle, error) {
	h, slot, err := m.materials.Alloc()
	if err != nil {
		return Handle{}, fmt.Errorf("mjolnir: allocate material slot: %w", ErrCapacityExhausted)
	}
	*slot = *mat
	m.materialData.Write(h.Index, mat.BuildMaterialData())
	m.materialRefs.Ref(h, mat.AutoPurge)
	for _, th := range mat.textureHandles() {
		m.imageRefs.Ref(th, true)
	}
	return h, nil
}

// RefMaterial increments h's reference count.
func (m *Manager) RefMaterial(h Handle) { m.materialRefs.Ref(h, false) }

// UnrefMaterial decrements h's reference count, saturating at zero.
func (m *Manager) UnrefMaterial(h Handle) { m.materialRefs.Unref(h) }

// CreateTexture2D allocates and registers a 2D texture with RefCount 0.
func (m *Manager) CreateTexture2D(label string, format wgpu.TextureFormat, width, height uint32, autoPurge bool) (Handle, error) {
	h, err := CreateTexture2D(m.device, m.images, label, format, width, height, autoPurge)
	if err != nil {
		return Handle{}, err
	}
	// Ref then Unref records autoPurge for h and leaves its count at 0.
	m.imageRefs.Ref(h, autoPurge)
	m.imageRefs.Unref(h)
	return h, nil
}

// RefTexture2D increments h's reference count.
func (m *Manager) RefTexture2D(h Handle, autoPurge bool) { m.imageRefs.Ref(h, autoPurge) }

// UnrefTexture2D decrements h's reference count, saturating at zero.
func (m *Manager) UnrefTexture2D(h Handle) { m.imageRefs.Unref(h) }

// BuiltinTexture returns the Handle for a named builtin color texture
// (see BuiltinColors), or the zero Handle if name is unknown.
func (m *Manager) BuiltinTexture(name string) Handle { return m.builtinTextures[name] }

// BuiltinMeshHandles returns the handles of the manager's primitive meshes.
func (m *Manager) BuiltinMeshHandles() BuiltinMeshes { return m.builtinMeshes }

// CreateSprite registers s and writes its initial SpriteData record for
// every frame.
func (m *Manager) CreateSprite(s Sprite) (Handle, error) {
	h, slot, err := m.sprites.Alloc()
	if err != nil {
		return Handle{}, fmt.Errorf("mjolnir: allocate sprite slot: %w", ErrCapacityExhausted)
	}
	*slot = s
	for f := 0; f < FramesInFlight; f++ {
		m.spriteData.WriteFrame(f, h.Index, s.BuildSpriteData())
	}
	return h, nil
}

// DestroySprite releases a sprite's pool slot.
func (m *Manager) DestroySprite(h Handle) { m.sprites.Free(h) }

// CreateEmitter registers e and writes its EmitterData record.
func (m *Manager) CreateEmitter(e Emitter) (Handle, error) {
	h, slot, err := m.emitters.Alloc()
	if err != nil {
		return Handle{}, fmt.Errorf("mjolnir: allocate emitter slot: %w", ErrCapacityExhausted)
	}
	*slot = e
	m.emitterData.Write(h.Index, e.BuildEmitterData())
	return h, nil
}

// DestroyEmitter releases an emitter's pool slot.
func (m *Manager) DestroyEmitter(h Handle) { m.emitters.Free(h) }

// CreateForceField registers f and writes its ForceFieldData record.
func (m *Manager) CreateForceField(f ForceField) (Handle, error) {
	h, slot, err := m.forceFields.Alloc()
	if err != nil {
		return Handle{}, fmt.Errorf("mjolnir: allocate force-field slot: %w", ErrCapacityExhausted)
	}
	*slot = f
	m.forceFieldData.Write(h.Index, f.BuildForceFieldData())
	return h, nil
}

// DestroyForceField releases a force field's pool slot.
func (m *Manager) DestroyForceField(h Handle) { m.forceFields.Free(h) }

// CreateClip reserves bone-matrix slab space for a clip and registers it.
func (m *Manager) CreateClip(boneMatrixCount, durationTicks uint32, ticksPerSecond float32) (Handle, error) {
	clip, err := CreateClip(m.boneSlab, boneMatrixCount, durationTicks, ticksPerSecond)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := m.clips.Alloc()
	if err != nil {
		clip.Destroy(m.boneSlab)
		return Handle{}, fmt.Errorf("mjolnir: allocate clip slot: %w", ErrCapacityExhausted)
	}
	*slot = *clip
	m.clipData.Write(h.Index, clip.BuildClipData())
	return h, nil
}

// DestroyClip releases a clip's bone-matrix slab region and pool slot.
func (m *Manager) DestroyClip(h Handle) {
	if clip, ok := m.clips.Free(h); ok {
		clip.Destroy(m.boneSlab)
	}
}
