package mjolnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolnir-engine/mjolnir/slab"
)

func testMeshSlabs() (vertex, index, skin *slab.Allocator) {
	vertex = slab.Init([]slab.Class{{BlockSize: 8, BlockCount: 4}, {BlockSize: 64, BlockCount: 2}})
	index = slab.Init([]slab.Class{{BlockSize: 16, BlockCount: 4}, {BlockSize: 128, BlockCount: 2}})
	skin = slab.Init([]slab.Class{{BlockSize: 8, BlockCount: 4}})
	return
}

func TestCreateMeshReservesRegionsAndFlags(t *testing.T) {
	vertex, index, skin := testMeshSlabs()
	geom := Geometry{
		Vertices: make([]Vertex, 6),
		Indices:  make([]uint32, 12),
	}
	m, err := CreateMesh(vertex, index, skin, geom, true)
	require.NoError(t, err)
	assert.False(t, m.Skinned())
	assert.Equal(t, uint32(0), m.Data.Flags&MeshFlagSkinned)

	voff, vcount := m.VertexRange()
	assert.Equal(t, uint32(6), vcount)
	ioff, icount := m.IndexRange()
	assert.Equal(t, uint32(12), icount)
	_ = voff
	_ = ioff
}

func TestCreateSkinnedMeshSetsFlag(t *testing.T) {
	vertex, index, skin := testMeshSlabs()
	geom := Geometry{
		Vertices:  make([]Vertex, 4),
		Indices:   make([]uint32, 6),
		Skinnings: make([]Skinning, 4),
	}
	m, err := CreateMesh(vertex, index, skin, geom, false)
	require.NoError(t, err)
	assert.True(t, m.Skinned())
	assert.NotEqual(t, uint32(0), m.Data.Flags&MeshFlagSkinned)
}

func TestCreateMeshMismatchedSkinningsErrors(t *testing.T) {
	vertex, index, skin := testMeshSlabs()
	geom := Geometry{
		Vertices:  make([]Vertex, 4),
		Indices:   make([]uint32, 6),
		Skinnings: make([]Skinning, 3),
	}
	_, err := CreateMesh(vertex, index, skin, geom, false)
	assert.Error(t, err)
}

func TestCreateMeshRollsBackOnIndexFailure(t *testing.T) {
	vertex := slab.Init([]slab.Class{{BlockSize: 8, BlockCount: 4}})
	index := slab.Init([]slab.Class{{BlockSize: 4, BlockCount: 1}}) // too small for 12 indices
	skin := slab.Init(nil)

	_, err := CreateMesh(vertex, index, skin, Geometry{Vertices: make([]Vertex, 4), Indices: make([]uint32, 12)}, false)
	require.Error(t, err)

	// the vertex reservation from the failed attempt must have been freed
	off, ok := vertex.Alloc(4)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off)
}

func TestMeshDestroyFreesAllRegionsAndChildren(t *testing.T) {
	vertex, index, skin := testMeshSlabs()
	geom := Geometry{Vertices: make([]Vertex, 4), Indices: make([]uint32, 6), Skinnings: make([]Skinning, 4)}
	m, err := CreateMesh(vertex, index, skin, geom, false)
	require.NoError(t, err)

	var freed []Handle
	m.ChildBones = []Handle{{Index: 1, Generation: 1}, {Index: 2, Generation: 1}}
	m.Destroy(vertex, index, skin, func(h Handle) { freed = append(freed, h) })

	assert.Len(t, freed, 2)

	// regions should be reusable now
	voff, ok := vertex.Alloc(4)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), voff)
}
