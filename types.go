package mjolnir

import "github.com/go-gl/mathgl/mgl32"

// CameraData is the fixed, shader-visible layout for a camera's GPU
// record: 208 bytes, 16-byte aligned. Reordering fields is an ABI break
// (spec §6) — never insert or reorder fields here without updating the
// matching shader layout.
type CameraData struct {
	View           mgl32.Mat4    // offset 0,   64 bytes
	Projection     mgl32.Mat4    // offset 64,  64 bytes
	ViewportParams mgl32.Vec4    // offset 128, 16 bytes (width, height, near, far)
	Position       mgl32.Vec4    // offset 144, 16 bytes (xyz + pad)
	FrustumPlanes  [6]mgl32.Vec4 // offset 160, 96 bytes
}

// MaterialData is the fixed GPU record for a Material.
type MaterialData struct {
	AlbedoTexture   uint32
	MRTexture       uint32
	NormalTexture   uint32
	EmissiveTexture uint32
	Roughness       float32
	Metalness       float32
	EmissiveFactor  float32
	Features        uint32 // bitset, see MaterialFeature*
	BaseColorFactor mgl32.Vec4
}

// Material feature bits (MaterialData.Features).
const (
	MaterialFeatureAlbedoTexture uint32 = 1 << iota
	MaterialFeatureMRTexture
	MaterialFeatureNormalTexture
	MaterialFeatureEmissiveTexture
	MaterialFeatureTransparent
	MaterialFeatureDoubleSided
)

// MeshData is the fixed GPU record for a Mesh.
type MeshData struct {
	AABBMin       mgl32.Vec3
	AABBMax       mgl32.Vec3
	IndexOffset   uint32
	IndexCount    uint32
	VertexOffset  uint32
	SkinOffset    uint32
	Flags         uint32 // MeshFlagSkinned
}

// MeshFlagSkinned marks a mesh as having an associated skinning
// allocation (MeshData.SkinOffset is meaningful).
const MeshFlagSkinned uint32 = 1 << 0

// LightType tags a Light's variant (spec §4.6, §9 "tagged variants over
// inheritance").
type LightType uint32

const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

// LightData is the fixed GPU record for a Light.
type LightData struct {
	Color           mgl32.Vec3
	Intensity       float32
	Radius          float32
	InnerCone       float32
	OuterCone       float32
	Type            LightType
	NodeIndex       uint32
	ShadowMap       uint32 // texture/cube-image index, or descriptorIndexOverflow
	ShadowCameraIdx uint32
	CastShadow      uint32 // bool as uint32 for 16-byte-friendly layout
}

// SpriteData is the fixed GPU record for a Sprite.
type SpriteData struct {
	NodeIndex   uint32
	TextureIdx  uint32
	FrameIndex  uint32
	FrameCount  uint32
	Size        mgl32.Vec2
	UVOffset    mgl32.Vec2
	UVScale     mgl32.Vec2
}

// EmitterData is the fixed GPU record for a particle Emitter.
type EmitterData struct {
	NodeIndex     uint32
	TextureIdx    uint32
	MaxParticles  uint32
	SpawnRate     float32
	Lifetime      float32
	StartSize     float32
	EndSize       float32
	StartColor    mgl32.Vec4
	EndColor      mgl32.Vec4
}

// ForceFieldData is the fixed GPU record for a ForceField.
type ForceFieldData struct {
	NodeIndex uint32
	Kind      uint32 // 0 = point, 1 = directional, 2 = vortex
	Strength  float32
	Radius    float32
	Direction mgl32.Vec3
}

// ClipData is the supplemented record for an animation clip's bone-matrix
// allocation (spec §4.10 supplement, §1 "animation clips"). Sampling the
// clip is out of scope; this tracks only its bone-matrix slab region.
type ClipData struct {
	BoneMatrixOffset uint32
	BoneMatrixCount  uint32
	DurationTicks    uint32
	TicksPerSecond   float32
}

// NodeData is the fixed GPU record pairing a scene node's mesh and
// material so culling/draw passes can resolve both from node_index alone,
// without a second indirection through a scene-graph structure this
// package doesn't own (spec §3 "world matrices... one 4x4 per scene node
// at node_index", §4.11).
type NodeData struct {
	MeshIndex     uint32
	MaterialIndex uint32
}

// DrawCommand mirrors a GPU indirect draw command consumed by the
// culling compute passes and issued by indirect draws.
type DrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}
