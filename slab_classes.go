package mjolnir

import "github.com/mjolnir-engine/mjolnir/slab"

// DefaultMeshSlabClasses is the size-class table wired into
// NewManager by default: a geometric progression of block sizes
// biased toward small/medium meshes, which is the common case for a
// scene built from many modest props rather than a few enormous ones.
// See DESIGN.md for why this table, rather than AltMeshSlabClasses, was
// chosen to resolve the spec's "two near-duplicate capacity tables"
// Open Question.
var DefaultMeshSlabClasses = []slab.Class{
	{BlockSize: 64, BlockCount: 8192},
	{BlockSize: 256, BlockCount: 4096},
	{BlockSize: 1024, BlockCount: 2048},
	{BlockSize: 4096, BlockCount: 512},
	{BlockSize: 16384, BlockCount: 128},
	{BlockSize: 65536, BlockCount: 32},
}

// AltMeshSlabClasses is the alternate table from the same Open Question:
// fewer, larger classes, biased toward a small number of very large
// meshes (e.g. terrain chunks) rather than many small props. It sums to
// the same total element capacity as DefaultMeshSlabClasses (spec
// invariant S3) and is provided as a named preset for callers whose
// scene budget looks like that instead.
var AltMeshSlabClasses = []slab.Class{
	{BlockSize: 512, BlockCount: 2048},
	{BlockSize: 8192, BlockCount: 512},
	{BlockSize: 131072, BlockCount: 20},
	{BlockSize: 524288, BlockCount: 4},
}

func toSlabClasses(cfg []SlabClassConfig, fallback []slab.Class) []slab.Class {
	if cfg == nil {
		return fallback
	}
	out := make([]slab.Class, len(cfg))
	for i, c := range cfg {
		out[i] = slab.Class{BlockSize: c.BlockSize, BlockCount: c.BlockCount}
	}
	return out
}

// DefaultIndexSlabClasses mirrors DefaultMeshSlabClasses at triple the
// element count per mesh (a rough vertex:index ratio for triangle
// meshes).
var DefaultIndexSlabClasses = []slab.Class{
	{BlockSize: 192, BlockCount: 8192},
	{BlockSize: 768, BlockCount: 4096},
	{BlockSize: 3072, BlockCount: 2048},
	{BlockSize: 12288, BlockCount: 512},
	{BlockSize: 49152, BlockCount: 128},
	{BlockSize: 196608, BlockCount: 32},
}

// DefaultSkinSlabClasses keeps DefaultMeshSlabClasses' four smallest
// block sizes at a quarter of their block counts and drops the two
// largest classes, since not every mesh is skinned.
var DefaultSkinSlabClasses = []slab.Class{
	{BlockSize: 64, BlockCount: 2048},
	{BlockSize: 256, BlockCount: 1024},
	{BlockSize: 1024, BlockCount: 512},
	{BlockSize: 4096, BlockCount: 128},
}

// DefaultBoneSlabClasses sizes the bone-matrix buffer for a modest
// number of animation clips, each with up to a few hundred bones.
var DefaultBoneSlabClasses = []slab.Class{
	{BlockSize: 32, BlockCount: 512},
	{BlockSize: 128, BlockCount: 256},
	{BlockSize: 512, BlockCount: 64},
}
