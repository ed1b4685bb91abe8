package mjolnir

import "github.com/go-gl/mathgl/mgl32"

// Material references up to four textures by handle — albedo,
// metallic-roughness, normal, and emissive — without owning any of them,
// plus Transparent/DoubleSided flags that BuildMaterialData packs into
// Features. Its lifetime is independent of its textures'; purging
// unreferenced textures is the job of the reference-counting pass in
// refcount.go, which unrefs the non-null texture handles a purged
// Material carries (spec §4.9).
type Material struct {
	Albedo, MetallicRoughness, Normal, Emissive Handle

	Roughness       float32
	Metalness       float32
	EmissiveFactor  float32
	BaseColorFactor mgl32.Vec4
	Transparent     bool
	DoubleSided     bool

	RefCount  uint32
	AutoPurge bool
}

// textureHandles returns every non-null texture Handle this material
// references, used both by Manager.CreateMaterial (to ref each texture)
// and by the purge pass (to know which textures to unref on destruction).
func (m *Material) textureHandles() []Handle {
	var hs []Handle
	for _, h := range [...]Handle{m.Albedo, m.MetallicRoughness, m.Normal, m.Emissive} {
		if !h.IsNull() {
			hs = append(hs, h)
		}
	}
	return hs
}

// descriptorIndexOf resolves a texture Handle to its bindless descriptor
// index via the pool slot index, or descriptorIndexOverflow if absent.
func descriptorIndexOf(h Handle) uint32 {
	if h.IsNull() {
		return descriptorIndexOverflow
	}
	return h.Index
}

// BuildMaterialData packs this material's current state into its fixed
// GPU record, computing Features from which texture handles are present
// plus the Transparent/DoubleSided flags.
func (m *Material) BuildMaterialData() MaterialData {
	var features uint32
	if !m.Albedo.IsNull() {
		features |= MaterialFeatureAlbedoTexture
	}
	if !m.MetallicRoughness.IsNull() {
		features |= MaterialFeatureMRTexture
	}
	if !m.Normal.IsNull() {
		features |= MaterialFeatureNormalTexture
	}
	if !m.Emissive.IsNull() {
		features |= MaterialFeatureEmissiveTexture
	}
	if m.Transparent {
		features |= MaterialFeatureTransparent
	}
	if m.DoubleSided {
		features |= MaterialFeatureDoubleSided
	}

	return MaterialData{
		AlbedoTexture:   descriptorIndexOf(m.Albedo),
		MRTexture:       descriptorIndexOf(m.MetallicRoughness),
		NormalTexture:   descriptorIndexOf(m.Normal),
		EmissiveTexture: descriptorIndexOf(m.Emissive),
		Roughness:       m.Roughness,
		Metalness:       m.Metalness,
		EmissiveFactor:  m.EmissiveFactor,
		Features:        features,
		BaseColorFactor: m.BaseColorFactor,
	}
}

// NewMaterial constructs a Material with RefCount 0 and no textures.
// NewMaterial itself refs nothing; Manager.CreateMaterial refs every
// texture the material holds when it registers it, so a material can be
// built incrementally (set Albedo, then MetallicRoughness, ...) before
// any texture is pinned.
func NewMaterial(autoPurge bool) *Material {
	return &Material{
		Albedo:            Handle{},
		MetallicRoughness: Handle{},
		Normal:            Handle{},
		Emissive:          Handle{},
		BaseColorFactor:   mgl32.Vec4{1, 1, 1, 1},
		Roughness:         1,
		Metalness:         0,
		EmissiveFactor:    0,
		AutoPurge:         autoPurge,
	}
}
