package mjolnir

// Fixed capacities (spec §6). These are the defaults baked into
// DefaultManagerConfig; a caller may override any of them when the
// renderer's scene budget differs from the reference numbers.
const (
	MaxMeshes        = 65536
	MaxMaterials     = 4096
	MaxTextures      = 1000
	MaxCubeTextures  = 200
	MaxNodesInScene  = 65536
	MaxActiveCameras = 128
	MaxLights        = 256
	MaxEmitters      = 64
	MaxForceFields   = 32
	MaxSprites       = 4096
	ShadowMapSize    = 512

	// FramesInFlight is the spec's F: the number of concurrently
	// in-flight frames. Per-frame resources are replicated exactly this
	// many times.
	FramesInFlight = 2
)

// descriptorIndexOverflow is the sentinel descriptor index for "no
// resource": LightData.ShadowMap when a light does not cast a shadow, and
// the texture index descriptorIndexOf returns for a null Handle. No code
// in this package clamps an out-of-range descriptor index to it or to
// any other value.
const descriptorIndexOverflow = 0xFFFFFFFF

// ManagerConfig bundles every capacity and policy knob the Manager's
// Init needs. DefaultManagerConfig returns the spec's fixed values;
// override fields on the returned struct for a non-default scene budget.
type ManagerConfig struct {
	MaxMeshes        uint32
	MaxMaterials     uint32
	MaxTextures      uint32
	MaxCubeTextures  uint32
	MaxNodesInScene  uint32
	MaxActiveCameras uint32
	MaxLights        uint32
	MaxEmitters      uint32
	MaxForceFields   uint32
	MaxSprites       uint32
	// ShadowMapSize is not read by shadow-camera provisioning, which
	// always uses the ShadowMapSize constant.
	ShadowMapSize uint32

	// VertexSlabClasses/IndexSlabClasses/SkinSlabClasses/BoneSlabClasses
	// configure the four slab allocators backing the manager's shared
	// vertex, index, skinning, and bone-matrix buffers. Nil selects the
	// fixed DefaultMeshSlabClasses, DefaultIndexSlabClasses,
	// DefaultSkinSlabClasses, and DefaultBoneSlabClasses tables
	// respectively; they are not scaled by MaxMeshes.
	VertexSlabClasses []SlabClassConfig
	IndexSlabClasses  []SlabClassConfig
	SkinSlabClasses   []SlabClassConfig
	BoneSlabClasses   []SlabClassConfig

	// AutoPurge is stored with the configuration but not read by the
	// Manager's create calls: CreateMesh and CreateTexture2D take
	// auto_purge as an argument and CreateMaterial uses
	// Material.AutoPurge (§4.9).
	AutoPurge bool

	Logger Logger
}

// SlabClassConfig mirrors slab.Class without importing the slab package
// into the config surface, so callers configuring a Manager don't need
// to know about the internal allocator package.
type SlabClassConfig struct {
	BlockSize  uint32
	BlockCount uint32
}

// DefaultManagerConfig returns the spec's fixed capacities (§6) with
// auto-purge enabled and the default ("DefaultMeshSlabClasses") slab
// layout — see the Open Question resolution in DESIGN.md for why this
// table, rather than the alternate split, was wired into NewManager.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxMeshes:        MaxMeshes,
		MaxMaterials:     MaxMaterials,
		MaxTextures:      MaxTextures,
		MaxCubeTextures:  MaxCubeTextures,
		MaxNodesInScene:  MaxNodesInScene,
		MaxActiveCameras: MaxActiveCameras,
		MaxLights:        MaxLights,
		MaxEmitters:      MaxEmitters,
		MaxForceFields:   MaxForceFields,
		MaxSprites:       MaxSprites,
		ShadowMapSize:    ShadowMapSize,
		AutoPurge:        true,
	}
}
