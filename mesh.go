package mjolnir

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/slab"
)

// Vertex is the fixed per-vertex layout written into the manager's
// shared vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec4
}

// Skinning is the fixed per-vertex skinning layout written into the
// manager's shared skinning buffer, present only for meshes with
// MeshFlagSkinned set.
type Skinning struct {
	BoneIndices [4]uint32
	BoneWeights mgl32.Vec4
}

// Geometry is caller-supplied, CPU-side mesh data: vertices, indices,
// and an optional parallel Skinnings slice (len(Skinnings) must be 0 or
// len(Vertices)). AABBMin/AABBMax are the caller's precomputed bounds —
// this package never recomputes them from Vertices.
type Geometry struct {
	Vertices  []Vertex
	Indices   []uint32
	Skinnings []Skinning
	AABBMin   mgl32.Vec3
	AABBMax   mgl32.Vec3
}

// meshRegions binds a Mesh's three independent slab allocations
// together so Destroy can free exactly what Create reserved, in reverse
// order (spec §4.8).
type meshRegions struct {
	vertexOffset, vertexCount uint32
	indexOffset, indexCount   uint32
	skinOffset                uint32 // meaningful only when skinned
	skinned                   bool
}

// Mesh is a GPU-resident geometry: three slab-allocated regions (vertex,
// index, optional skinning) in the manager's shared buffers, plus the
// fixed GPU record describing them. A Mesh may own child bone meshes
// (ChildBones) representing attached sub-geometry in a skeleton
// hierarchy; destroying a mesh destroys its children first.
type Mesh struct {
	regions    meshRegions
	Data       MeshData
	RefCount   uint32
	AutoPurge  bool
	ChildBones []Handle
}

// CreateMesh reserves vertex, index, and (if geom.Skinnings is
// non-empty) skinning slab space for geom, and returns the resulting
// Mesh, whose Data field holds its MeshData record. On any reservation
// failure, every region already
// reserved for this call is released before the error propagates (spec
// §4.8 Failure, §9 "scoped resource acquisition").
func CreateMesh(vertexSlab, indexSlab, skinSlab *slab.Allocator, geom Geometry, autoPurge bool) (m *Mesh, err error) {
	if len(geom.Skinnings) != 0 && len(geom.Skinnings) != len(geom.Vertices) {
		return nil, fmt.Errorf("mjolnir: mesh skinnings length %d does not match vertex count %d", len(geom.Skinnings), len(geom.Vertices))
	}

	vtxOff, ok := vertexSlab.Alloc(uint32(len(geom.Vertices)))
	if !ok {
		return nil, fmt.Errorf("mjolnir: reserve %d vertices: %w", len(geom.Vertices), ErrCapacityExhausted)
	}
	idxOff, ok := indexSlab.Alloc(uint32(len(geom.Indices)))
	if !ok {
		vertexSlab.Free(vtxOff)
		return nil, fmt.Errorf("mjolnir: reserve %d indices: %w", len(geom.Indices), ErrCapacityExhausted)
	}

	regions := meshRegions{
		vertexOffset: vtxOff, vertexCount: uint32(len(geom.Vertices)),
		indexOffset: idxOff, indexCount: uint32(len(geom.Indices)),
	}
	flags := uint32(0)
	if len(geom.Skinnings) != 0 {
		skinOff, ok := skinSlab.Alloc(uint32(len(geom.Skinnings)))
		if !ok {
			indexSlab.Free(idxOff)
			vertexSlab.Free(vtxOff)
			return nil, fmt.Errorf("mjolnir: reserve %d skinning entries: %w", len(geom.Skinnings), ErrCapacityExhausted)
		}
		regions.skinOffset = skinOff
		regions.skinned = true
		flags |= MeshFlagSkinned
	}

	data := MeshData{
		AABBMin:      geom.AABBMin,
		AABBMax:      geom.AABBMax,
		IndexOffset:  regions.indexOffset,
		IndexCount:   regions.indexCount,
		VertexOffset: regions.vertexOffset,
		SkinOffset:   regions.skinOffset,
		Flags:        flags,
	}

	return &Mesh{regions: regions, Data: data, AutoPurge: autoPurge}, nil
}

// Destroy destroys every child bone mesh first, then releases this
// mesh's vertex, index, and (if present) skinning slab regions, in
// reverse order of acquisition.
func (m *Mesh) Destroy(vertexSlab, indexSlab, skinSlab *slab.Allocator, freeChild func(Handle)) {
	if m == nil {
		return
	}
	for _, child := range m.ChildBones {
		freeChild(child)
	}
	m.ChildBones = nil

	if m.regions.skinned {
		skinSlab.Free(m.regions.skinOffset)
	}
	indexSlab.Free(m.regions.indexOffset)
	vertexSlab.Free(m.regions.vertexOffset)
}

// VertexRange returns the [offset, offset+count) element range this
// mesh occupies in the shared vertex buffer.
func (m *Mesh) VertexRange() (offset, count uint32) {
	return m.regions.vertexOffset, m.regions.vertexCount
}

// IndexRange returns the [offset, offset+count) element range this mesh
// occupies in the shared index buffer.
func (m *Mesh) IndexRange() (offset, count uint32) {
	return m.regions.indexOffset, m.regions.indexCount
}

// Skinned reports whether this mesh has an associated skinning region.
func (m *Mesh) Skinned() bool { return m.regions.skinned }

// SkinRange returns the [offset, offset+count) element range this mesh
// occupies in the shared skinning buffer. count is always 0 when Skinned
// reports false; otherwise it equals the mesh's vertex count, since
// CreateMesh only accepts a Skinnings slice with one entry per vertex.
func (m *Mesh) SkinRange() (offset, count uint32) {
	if !m.regions.skinned {
		return 0, 0
	}
	return m.regions.skinOffset, m.regions.vertexCount
}
