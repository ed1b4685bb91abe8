package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/pool"
	"github.com/mjolnir-engine/mjolnir/slab"
)

// Bindless slot indices for the manager's fixed storage buffers: an
// iota sequence, one distinct small integer per buffer, each used as
// that buffer's binding index within its own descriptor set (spec §4.11).
const (
	bindingMaterialData = iota
	bindingMeshData
	bindingLightData
	bindingSpriteData
	bindingEmitterData
	bindingForceFieldData
	bindingClipData
	bindingCameraData
	bindingWorldMatrix
	bindingNodeData
)

// Raw geometry buffers are bound as ordinary vertex/index buffers and a
// read-only storage buffer, not as slots in the shared "data" descriptor
// sets above, so they get their own, disjoint binding-index space.
const (
	bindingVertexData = iota
	bindingIndexData
	bindingSkinData
	bindingBoneData
)

// The sampler* constants index the four general-purpose samplers within
// the textures descriptor set (spec §4.11's "textures descriptor-set
// layout"). This set binds only samplers, not a bindless array of sampled
// images/cube images: individual texture/cube-texture selection already
// flows through descriptor indices embedded in MaterialData/MeshData/
// LightData, and nothing in this stack's wgpu binding exposes a
// texture-array binding (spec §9 "composition over aggregation of GPU
// objects" — samplers are the one piece of the textures set that is
// genuinely shared state, not a per-resource index).
const (
	samplerLinearClamp = iota
	samplerLinearRepeat
	samplerNearestClamp
	samplerNearestRepeat
)

// generalPushConstantSize is the 4-byte push-constant range every
// general-pipeline draw carries (spec §4.11 "4-byte push constant") — a
// single uint32 draw/material index too hot-path to route through a
// descriptor set.
const generalPushConstantSize = 4

// Manager composes every pool, slab allocator, and bindless buffer
// behind the bindless-resource API: the single entry point an
// application holds to create, update, and destroy every GPU resource
// kind the spec names (spec §4.11 "Manager composition").
type Manager struct {
	device *wgpu.Device
	logger Logger
	config ManagerConfig

	vertexSlab *slab.Allocator
	indexSlab  *slab.Allocator
	skinSlab   *slab.Allocator
	boneSlab   *slab.Allocator

	images     *pool.Pool[Image]
	imageRefs  *refCounts
	cubeImages *pool.Pool[CubeImage]
	cubeRefs   *refCounts

	meshes    *pool.Pool[Mesh]
	meshRefs  *refCounts
	meshData  *Bindless[MeshData]

	materials     *pool.Pool[Material]
	materialRefs  *refCounts
	materialData  *Bindless[MaterialData]

	cameras          *pool.Pool[Camera]
	sphericalCameras *pool.Pool[SphericalCamera]
	cameraData       *PerFrameBindless[CameraData]

	lights    *pool.Pool[Light]
	lightData *PerFrameBindless[LightData]

	sprites    *pool.Pool[Sprite]
	spriteData *PerFrameBindless[SpriteData]

	emitters    *pool.Pool[Emitter]
	emitterData *Bindless[EmitterData]

	forceFields    *pool.Pool[ForceField]
	forceFieldData *Bindless[ForceFieldData]

	clips    *pool.Pool[Clip]
	clipData *Bindless[ClipData]

	worldMatrices     *PerFrameBindless[mgl32.Mat4]
	worldMatricesHost [FramesInFlight][]mgl32.Mat4
	nodeData          *Bindless[NodeData]

	vertexBuffer *Bindless[Vertex]
	indexBuffer  *Bindless[uint32]
	skinBuffer   *Immutable[Skinning]
	boneBuffer   *Bindless[mgl32.Mat4]

	samplers       [4]*wgpu.Sampler
	texturesLayout *wgpu.BindGroupLayout
	texturesGroup  *wgpu.BindGroup

	generalPipelineLayouts   [FramesInFlight]*wgpu.PipelineLayout
	sphericalPipelineLayouts [FramesInFlight]*wgpu.PipelineLayout

	builtinTextures map[string]Handle
	builtinMeshes   BuiltinMeshes

	currentFrameIndex int
	activeLights      []Handle
	animatableSprites []Handle
}

// generalSamplerSpec names one of the four fixed general-purpose sampler
// variants the manager provisions at Init (spec §4.11 "samplers
// ({linear, nearest} x {clamp, repeat})").
type generalSamplerSpec struct {
	label  string
	filter wgpu.FilterMode
	mode   wgpu.AddressMode
}

var generalSamplerSpecs = [4]generalSamplerSpec{
	samplerLinearClamp:   {"sampler/linear-clamp", wgpu.FilterModeLinear, wgpu.AddressModeClampToEdge},
	samplerLinearRepeat:  {"sampler/linear-repeat", wgpu.FilterModeLinear, wgpu.AddressModeRepeat},
	samplerNearestClamp:  {"sampler/nearest-clamp", wgpu.FilterModeNearest, wgpu.AddressModeClampToEdge},
	samplerNearestRepeat: {"sampler/nearest-repeat", wgpu.FilterModeNearest, wgpu.AddressModeRepeat},
}

// NewManager constructs every pool, slab allocator, bindless buffer,
// sampler, descriptor-set layout, and pipeline layout the spec names, in
// the order: slab allocators, image pools, samplers, bone buffer, camera
// pools/buffer, spherical-camera pool, material pool/buffer, world-matrix
// buffer, node-data buffer, mesh pool/buffer, vertex skinning (immutable
// bindless), the remaining scalar-record pools/buffers, vertex and index
// buffers, the textures descriptor-set layout, the general and spherical
// pipeline layouts, the textures descriptor set, then builtins (spec
// §4.11). On any failure Shutdown tears down everything already
// constructed before the error propagates.
func NewManager(device *wgpu.Device, cfg ManagerConfig) (mgr *Manager, err error) {
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}

	m := &Manager{device: device, logger: cfg.Logger, config: cfg}
	defer func() {
		if err != nil {
			m.Shutdown()
		}
	}()

	m.vertexSlab = slab.Init(toSlabClasses(cfg.VertexSlabClasses, DefaultMeshSlabClasses))
	m.indexSlab = slab.Init(toSlabClasses(cfg.IndexSlabClasses, DefaultIndexSlabClasses))
	m.skinSlab = slab.Init(toSlabClasses(cfg.SkinSlabClasses, DefaultSkinSlabClasses))
	m.boneSlab = slab.Init(toSlabClasses(cfg.BoneSlabClasses, DefaultBoneSlabClasses))

	m.images = pool.NewWithCapacity[Image](int(cfg.MaxTextures))
	m.imageRefs = newRefCounts()
	m.cubeImages = pool.NewWithCapacity[CubeImage](int(cfg.MaxCubeTextures))
	m.cubeRefs = newRefCounts()

	for i, spec := range generalSamplerSpecs {
		m.samplers[i], err = device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:        spec.label,
			AddressModeU: spec.mode,
			AddressModeV: spec.mode,
			AddressModeW: spec.mode,
			MagFilter:    spec.filter,
			MinFilter:    spec.filter,
			MipmapFilter: wgpu.MipmapFilterModeLinear,
		})
		if err != nil {
			return nil, fmt.Errorf("mjolnir: create sampler %q: %w: %w", spec.label, err, ErrDeviceAllocationFailed)
		}
	}

	if m.boneBuffer, err = NewBindless[mgl32.Mat4](device, "bone-data", m.boneSlab.TotalElements(), bindingBoneData); err != nil {
		return nil, err
	}
	m.clips = pool.New[Clip]()
	if m.clipData, err = NewBindless[ClipData](device, "clip-data", cfg.MaxMeshes, bindingClipData); err != nil {
		return nil, err
	}

	m.cameras = pool.NewWithCapacity[Camera](int(cfg.MaxActiveCameras))
	if m.cameraData, err = NewPerFrameBindless[CameraData](device, "camera-data", cfg.MaxActiveCameras, bindingCameraData); err != nil {
		return nil, err
	}
	m.sphericalCameras = pool.NewWithCapacity[SphericalCamera](int(cfg.MaxActiveCameras))

	m.materials = pool.NewWithCapacity[Material](int(cfg.MaxMaterials))
	m.materialRefs = newRefCounts()
	if m.materialData, err = NewBindless[MaterialData](device, "material-data", cfg.MaxMaterials, bindingMaterialData); err != nil {
		return nil, err
	}

	if m.worldMatrices, err = NewPerFrameBindless[mgl32.Mat4](device, "world-matrix", cfg.MaxNodesInScene, bindingWorldMatrix); err != nil {
		return nil, err
	}
	for f := 0; f < FramesInFlight; f++ {
		m.worldMatricesHost[f] = make([]mgl32.Mat4, cfg.MaxNodesInScene)
	}
	if m.nodeData, err = NewBindless[NodeData](device, "node-data", cfg.MaxNodesInScene, bindingNodeData); err != nil {
		return nil, err
	}

	m.meshes = pool.NewWithCapacity[Mesh](int(cfg.MaxMeshes))
	m.meshRefs = newRefCounts()
	if m.meshData, err = NewBindless[MeshData](device, "mesh-data", cfg.MaxMeshes, bindingMeshData); err != nil {
		return nil, err
	}
	if m.skinBuffer, err = NewImmutable[Skinning](device, "skin-data", make([]Skinning, m.skinSlab.TotalElements()), bindingSkinData); err != nil {
		return nil, err
	}

	m.lights = pool.NewWithCapacity[Light](int(cfg.MaxLights))
	if m.lightData, err = NewPerFrameBindless[LightData](device, "light-data", cfg.MaxLights, bindingLightData); err != nil {
		return nil, err
	}

	m.sprites = pool.NewWithCapacity[Sprite](int(cfg.MaxSprites))
	if m.spriteData, err = NewPerFrameBindless[SpriteData](device, "sprite-data", cfg.MaxSprites, bindingSpriteData); err != nil {
		return nil, err
	}

	m.emitters = pool.NewWithCapacity[Emitter](int(cfg.MaxEmitters))
	if m.emitterData, err = NewBindless[EmitterData](device, "emitter-data", cfg.MaxEmitters, bindingEmitterData); err != nil {
		return nil, err
	}

	m.forceFields = pool.NewWithCapacity[ForceField](int(cfg.MaxForceFields))
	if m.forceFieldData, err = NewBindless[ForceFieldData](device, "force-field-data", cfg.MaxForceFields, bindingForceFieldData); err != nil {
		return nil, err
	}

	if m.vertexBuffer, err = NewBindless[Vertex](device, "vertex-data", m.vertexSlab.TotalElements(), bindingVertexData); err != nil {
		return nil, err
	}
	if m.indexBuffer, err = NewBindless[uint32](device, "index-data", m.indexSlab.TotalElements(), bindingIndexData); err != nil {
		return nil, err
	}

	if err = m.buildTexturesLayout(); err != nil {
		return nil, err
	}
	if err = m.buildPipelineLayouts(); err != nil {
		return nil, err
	}
	if err = m.buildTexturesGroup(); err != nil {
		return nil, err
	}

	if m.builtinTextures, err = CreateAllBuiltinColorTextures(device, m.images); err != nil {
		return nil, err
	}
	if m.builtinMeshes, err = CreateBuiltinMeshes(m.meshes, m.vertexSlab, m.indexSlab, m.skinSlab, m.vertexBuffer, m.indexBuffer); err != nil {
		return nil, err
	}

	return m, nil
}

// buildTexturesLayout constructs the textures descriptor-set layout: the
// four general-purpose samplers, at fixed bindings (spec §4.11). See the
// package-level comment on samplerLinearClamp for why sampled/cube images
// are not bound here.
func (m *Manager) buildTexturesLayout() error {
	entries := make([]wgpu.BindGroupLayoutEntry, len(generalSamplerSpecs))
	for i := range generalSamplerSpecs {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageFragment | wgpu.ShaderStageCompute,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		}
	}
	layout, err := m.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "textures/layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("mjolnir: create textures descriptor-set layout: %w: %w", err, ErrDeviceAllocationFailed)
	}
	m.texturesLayout = layout
	return nil
}

// buildTexturesGroup populates the textures descriptor set with the four
// samplers, once texturesLayout exists.
func (m *Manager) buildTexturesGroup() error {
	entries := make([]wgpu.BindGroupEntry, len(m.samplers))
	for i, s := range m.samplers {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Sampler: s}
	}
	group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "textures/group",
		Layout:  m.texturesLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("mjolnir: create textures descriptor set: %w: %w", err, ErrDeviceAllocationFailed)
	}
	m.texturesGroup = group
	return nil
}

// buildPipelineLayouts constructs, per frame, the general pipeline layout
// (the 10 per-resource descriptor sets plus the 4-byte push constant) and
// the narrower spherical pipeline layout used for point-light shadow
// passes, which only need geometry, node, world-matrix, and per-face
// camera data (spec §4.11).
func (m *Manager) buildPipelineLayouts() error {
	pushConstants := []wgpu.PushConstantRange{{
		Stages: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute,
		Range:  wgpu.Range{Start: 0, End: generalPushConstantSize},
	}}
	for f := 0; f < FramesInFlight; f++ {
		general, err := m.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label: fmt.Sprintf("pipeline-layout/general/frame%d", f),
			BindGroupLayouts: []*wgpu.BindGroupLayout{
				m.materialData.Layout(),
				m.meshData.Layout(),
				m.lightData.Layout(f),
				m.spriteData.Layout(f),
				m.emitterData.Layout(),
				m.forceFieldData.Layout(),
				m.clipData.Layout(),
				m.cameraData.Layout(f),
				m.worldMatrices.Layout(f),
				m.nodeData.Layout(),
			},
			PushConstantRanges: pushConstants,
		})
		if err != nil {
			return fmt.Errorf("mjolnir: create general pipeline layout frame %d: %w: %w", f, err, ErrDeviceAllocationFailed)
		}
		m.generalPipelineLayouts[f] = general

		spherical, err := m.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label: fmt.Sprintf("pipeline-layout/spherical/frame%d", f),
			BindGroupLayouts: []*wgpu.BindGroupLayout{
				m.meshData.Layout(),
				m.nodeData.Layout(),
				m.worldMatrices.Layout(f),
				m.cameraData.Layout(f),
			},
			PushConstantRanges: pushConstants,
		})
		if err != nil {
			return fmt.Errorf("mjolnir: create spherical pipeline layout frame %d: %w: %w", f, err, ErrDeviceAllocationFailed)
		}
		m.sphericalPipelineLayouts[f] = spherical
	}
	return nil
}

// GeneralPipelineLayout returns frame f's general pipeline layout.
func (m *Manager) GeneralPipelineLayout(f int) *wgpu.PipelineLayout {
	return m.generalPipelineLayouts[f]
}

// SphericalPipelineLayout returns frame f's spherical pipeline layout.
func (m *Manager) SphericalPipelineLayout(f int) *wgpu.PipelineLayout {
	return m.sphericalPipelineLayouts[f]
}

// TexturesGroup returns the descriptor set binding the four
// general-purpose samplers.
func (m *Manager) TexturesGroup() *wgpu.BindGroup { return m.texturesGroup }

// VertexBuffer returns the shared vertex-data bindless buffer.
func (m *Manager) VertexBuffer() *Bindless[Vertex] { return m.vertexBuffer }

// IndexBuffer returns the shared index-data bindless buffer.
func (m *Manager) IndexBuffer() *Bindless[uint32] { return m.indexBuffer }

// SkinBuffer returns the shared, per-region-immutable vertex-skinning
// buffer.
func (m *Manager) SkinBuffer() *Immutable[Skinning] { return m.skinBuffer }

// BoneBuffer returns the shared bone-matrix bindless buffer.
func (m *Manager) BoneBuffer() *Bindless[mgl32.Mat4] { return m.boneBuffer }

// Shutdown releases every resource Manager owns. The order is not the
// exact reverse of NewManager's acquisition order, but the light pool
// drains before the camera pools, which drain before the image pools, so
// a shadow camera referencing an image handle is always gone before the
// image itself is destroyed (spec §4.11).
func (m *Manager) Shutdown() {
	if m == nil {
		return
	}

	if m.builtinMeshes != (BuiltinMeshes{}) {
		for _, h := range [...]Handle{m.builtinMeshes.Cube, m.builtinMeshes.Sphere, m.builtinMeshes.Quad, m.builtinMeshes.Cone} {
			if mesh, ok := m.meshes.Free(h); ok {
				mesh.Destroy(m.vertexSlab, m.indexSlab, m.skinSlab, func(Handle) {})
			}
		}
		m.builtinMeshes = BuiltinMeshes{}
	}
	for _, h := range m.builtinTextures {
		if img, ok := m.images.Free(h); ok {
			img.Destroy()
		}
	}
	m.builtinTextures = nil

	if m.texturesGroup != nil {
		m.texturesGroup.Release()
		m.texturesGroup = nil
	}
	for f := range m.sphericalPipelineLayouts {
		if m.sphericalPipelineLayouts[f] != nil {
			m.sphericalPipelineLayouts[f].Release()
			m.sphericalPipelineLayouts[f] = nil
		}
	}
	for f := range m.generalPipelineLayouts {
		if m.generalPipelineLayouts[f] != nil {
			m.generalPipelineLayouts[f].Release()
			m.generalPipelineLayouts[f] = nil
		}
	}
	if m.texturesLayout != nil {
		m.texturesLayout.Release()
		m.texturesLayout = nil
	}

	if m.forceFieldData != nil {
		m.forceFieldData.Destroy()
		m.forceFieldData = nil
	}
	if m.emitterData != nil {
		m.emitterData.Destroy()
		m.emitterData = nil
	}
	if m.spriteData != nil {
		m.spriteData.Destroy()
		m.spriteData = nil
	}

	if m.skinBuffer != nil {
		m.skinBuffer.Destroy()
		m.skinBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy()
		m.vertexBuffer = nil
	}

	if m.nodeData != nil {
		m.nodeData.Destroy()
		m.nodeData = nil
	}
	if m.worldMatrices != nil {
		m.worldMatrices.Destroy()
		m.worldMatrices = nil
	}
	for f := range m.worldMatricesHost {
		m.worldMatricesHost[f] = nil
	}

	if m.lights != nil {
		m.lights.Each(func(h Handle, l *Light) {
			ReleaseShadowCamera(l, m.sphericalCameras, m.cameras)
		})
	}
	if m.lightData != nil {
		m.lightData.Destroy()
	}

	if m.sphericalCameras != nil {
		m.sphericalCameras.Each(func(h Handle, c *SphericalCamera) { c.Destroy() })
	}
	if m.cameras != nil {
		m.cameras.Each(func(h Handle, c *Camera) { c.Destroy() })
	}
	if m.cameraData != nil {
		m.cameraData.Destroy()
	}

	if m.images != nil {
		m.images.Each(func(h Handle, img *Image) { img.Destroy() })
	}
	if m.cubeImages != nil {
		m.cubeImages.Each(func(h Handle, img *CubeImage) { img.Destroy() })
	}

	if m.meshes != nil {
		m.meshes.Each(func(h Handle, mesh *Mesh) {
			mesh.Destroy(m.vertexSlab, m.indexSlab, m.skinSlab, func(Handle) {})
		})
	}
	if m.meshData != nil {
		m.meshData.Destroy()
	}
	if m.materialData != nil {
		m.materialData.Destroy()
	}

	if m.clips != nil {
		m.clips.Each(func(h Handle, c *Clip) { c.Destroy(m.boneSlab) })
	}
	if m.clipData != nil {
		m.clipData.Destroy()
	}
	if m.boneBuffer != nil {
		m.boneBuffer.Destroy()
		m.boneBuffer = nil
	}

	for i, s := range m.samplers {
		if s != nil {
			s.Release()
			m.samplers[i] = nil
		}
	}
}

// BeginFrame advances frame bookkeeping to frameIndex % FramesInFlight,
// recomputes the active-light list, and advances every animatable
// sprite by one frame (spec §4.13).
func (m *Manager) BeginFrame(frameIndex int) {
	m.currentFrameIndex = frameIndex % FramesInFlight

	m.activeLights = m.activeLights[:0]
	m.lights.Each(func(h Handle, l *Light) {
		m.activeLights = append(m.activeLights, h)
	})

	m.animatableSprites = m.animatableSprites[:0]
	m.sprites.Each(func(h Handle, s *Sprite) {
		if s.Animatable {
			s.Advance()
			m.animatableSprites = append(m.animatableSprites, h)
		}
	})
}

// CurrentFrameIndex returns the frame index BeginFrame was last called
// with, modulo FramesInFlight.
func (m *Manager) CurrentFrameIndex() int { return m.currentFrameIndex }

// ActiveLights returns every currently active light handle, recomputed
// on the most recent BeginFrame call.
func (m *Manager) ActiveLights() []Handle { return m.activeLights }

// UpdateWorldMatrix writes node nodeIndex's world transform into frame
// f's world-matrix buffer — the device buffer and its host mirror both,
// since nothing in this stack reads a bindless buffer back from the GPU
// (spec §3 "world matrices: one 4x4 per scene node at node_index", §6 "a
// world-matrix writer updating the world-matrix bindless buffer per
// frame"). Scene-graph transform propagation itself is the caller's
// concern; this just publishes the result.
func (m *Manager) UpdateWorldMatrix(f int, nodeIndex uint32, transform mgl32.Mat4) {
	m.worldMatrices.WriteFrame(f, nodeIndex, transform)
	m.worldMatricesHost[f][nodeIndex] = transform
}

// WorldMatrix returns node nodeIndex's most recently published transform
// for frame f.
func (m *Manager) WorldMatrix(f int, nodeIndex uint32) mgl32.Mat4 {
	return m.worldMatricesHost[f][nodeIndex]
}

// worldMatrixPositionForward extracts a node's world-space position
// (the translation column) and forward direction (the negated Z column,
// the usual camera-forward convention) from its world matrix.
func worldMatrixPositionForward(m mgl32.Mat4) (pos, forward mgl32.Vec3) {
	pos = mgl32.Vec3{m[12], m[13], m[14]}
	forward = mgl32.Vec3{-m[8], -m[9], -m[10]}.Normalize()
	return pos, forward
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// UpdateLightShadowCameraTransforms rewrites frame f's CameraData record
// for every active, shadow-casting light's shadow camera (spherical or
// perspective), reading each light's world position/forward direction
// from frame f's world-matrix buffer at its node_index, and rewrites the
// light's own LightData record for frame f so its shadow-map/
// shadow-camera indices stay current in that frame's descriptor set.
// Lights that do not cast shadows are skipped (spec §4.6, §4.13).
func (m *Manager) UpdateLightShadowCameraTransforms(f int) {
	for _, lh := range m.activeLights {
		l, ok := m.lights.Get(lh)
		if !ok || !l.CastShadow {
			continue
		}
		if int(l.NodeIndex) >= len(m.worldMatricesHost[f]) {
			continue
		}
		pos, forward := worldMatrixPositionForward(m.worldMatricesHost[f][l.NodeIndex])

		switch l.Type {
		case LightPoint:
			sc, ok := m.sphericalCameras.Get(l.sphericalCamera)
			if !ok {
				continue
			}
			for face := 0; face < 6; face++ {
				data := sc.BuildCameraData(pos, l.Radius, face)
				m.cameraData.WriteFrame(f, l.sphericalCamera.Index, data)
			}
		case LightDirectional, LightSpot:
			cam, ok := m.cameras.Get(l.shadowCamera)
			if !ok {
				continue
			}
			_, _, _, _, _, _, depth, _ := cam.Attachments(f)
			l.shadowImage = depth.Index
			up := mgl32.Vec3{0, 1, 0}
			if abs32(forward.Dot(up)) > 0.999 {
				up = mgl32.Vec3{0, 0, 1}
			}
			view := mgl32.LookAtV(pos, pos.Add(forward), up)
			data := cam.BuildCameraData(view, pos)
			m.cameraData.WriteFrame(f, l.shadowCamera.Index, data)
		}
		m.lightData.WriteFrame(f, lh.Index, l.BuildLightData())
	}
}

// PurgeUnusedResources runs one cascade of the reference-counted purge
// across every resource pool (spec §4.9).
func (m *Manager) PurgeUnusedResources() PurgeResult {
	return PurgeUnusedResources(
		m.meshRefs, m.meshes, func(h Handle, mesh *Mesh) {
			mesh.Destroy(m.vertexSlab, m.indexSlab, m.skinSlab, func(Handle) {})
		},
		m.materialRefs, m.materials, m.imageRefs,
		m.images,
		m.cubeRefs, m.cubeImages,
	)
}

// Device returns the underlying GPU device, for callers that need to
// record draw/compute passes against manager-owned resources directly.
func (m *Manager) Device() *wgpu.Device { return m.device }

// Logger returns the manager's configured logger.
func (m *Manager) Logger() Logger { return m.logger }
