package mjolnir

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/pool"
	"github.com/mjolnir-engine/mjolnir/slab"
	"golang.org/x/image/draw"
)

// BuiltinColors names the fixed set of 1x1 placeholder textures every
// manager provisions at Init (spec §4.12 supplement: named builtin
// resources, analogous to the teacher's procedurally-generated debug
// assets).
var BuiltinColors = map[string]color.NRGBA{
	"white": {R: 255, G: 255, B: 255, A: 255},
	"black": {R: 0, G: 0, B: 0, A: 255},
	"red":   {R: 255, G: 0, B: 0, A: 255},
	"green": {R: 0, G: 255, B: 0, A: 255},
	"blue":  {R: 0, G: 0, B: 255, A: 255},
	"gray":  {R: 128, G: 128, B: 128, A: 255},
}

// CreateBuiltinColorTexture synthesizes a 1x1 RGBA8 texture filled with
// c using draw.Draw over a uniform source image, then uploads it. The
// fill happens on the CPU, in-memory, rather than being authored as an
// asset on disk — these are debug/fallback placeholders, not loaded
// content.
func CreateBuiltinColorTexture(device *wgpu.Device, images *pool.Pool[Image], name string, c color.NRGBA) (Handle, error) {
	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	h, err := CreateTexture2D(device, images, "builtin/"+name, wgpu.TextureFormatRGBA8Unorm, 1, 1, false)
	if err != nil {
		return Handle{}, fmt.Errorf("mjolnir: create builtin color texture %q: %w", name, err)
	}
	img, ok := images.Get(h)
	if !ok {
		return Handle{}, fmt.Errorf("mjolnir: builtin color texture %q vanished immediately after creation", name)
	}
	device.GetQueue().WriteTexture(
		&wgpu.ImageCopyTexture{Texture: img.Texture},
		dst.Pix,
		&wgpu.TextureDataLayout{BytesPerRow: 4, RowsPerImage: 1},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	return h, nil
}

// CreateAllBuiltinColorTextures provisions every entry in BuiltinColors,
// releasing any textures already created for this call if a later one
// fails.
func CreateAllBuiltinColorTextures(device *wgpu.Device, images *pool.Pool[Image]) (map[string]Handle, error) {
	out := make(map[string]Handle, len(BuiltinColors))
	for name, c := range BuiltinColors {
		h, err := CreateBuiltinColorTexture(device, images, name, c)
		if err != nil {
			for _, created := range out {
				if img, ok := images.Free(created); ok {
					img.Destroy()
				}
			}
			return nil, err
		}
		out[name] = h
	}
	return out, nil
}

// builtinQuadGeometry returns a unit quad in the XY plane, centered at
// the origin, facing +Z.
func builtinQuadGeometry() Geometry {
	n := mgl32.Vec3{0, 0, 1}
	verts := []Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
	}
	idx := []uint32{0, 1, 2, 2, 3, 0}
	return Geometry{
		Vertices: verts, Indices: idx,
		AABBMin: mgl32.Vec3{-0.5, -0.5, 0}, AABBMax: mgl32.Vec3{0.5, 0.5, 0},
	}
}

// builtinCubeGeometry returns a unit cube centered at the origin, with
// per-face normals and UVs (24 vertices, 36 indices).
func builtinCubeGeometry() Geometry {
	type face struct {
		normal             mgl32.Vec3
		a, b, c, d         mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, {-.5, -.5, .5}, {.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}},
		{mgl32.Vec3{0, 0, -1}, {.5, -.5, -.5}, {-.5, -.5, -.5}, {-.5, .5, -.5}, {.5, .5, -.5}},
		{mgl32.Vec3{0, 1, 0}, {-.5, .5, .5}, {.5, .5, .5}, {.5, .5, -.5}, {-.5, .5, -.5}},
		{mgl32.Vec3{0, -1, 0}, {-.5, -.5, -.5}, {.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}},
		{mgl32.Vec3{1, 0, 0}, {.5, -.5, .5}, {.5, -.5, -.5}, {.5, .5, -.5}, {.5, .5, .5}},
		{mgl32.Vec3{-1, 0, 0}, {-.5, -.5, -.5}, {-.5, -.5, .5}, {-.5, .5, .5}, {-.5, .5, -.5}},
	}
	var verts []Vertex
	var idx []uint32
	uvs := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for _, f := range faces {
		base := uint32(len(verts))
		for i, p := range [...]mgl32.Vec3{f.a, f.b, f.c, f.d} {
			verts = append(verts, Vertex{Position: p, Normal: f.normal, UV: uvs[i]})
		}
		idx = append(idx, base, base+1, base+2, base+2, base+3, base)
	}
	return Geometry{
		Vertices: verts, Indices: idx,
		AABBMin: mgl32.Vec3{-0.5, -0.5, -0.5}, AABBMax: mgl32.Vec3{0.5, 0.5, 0.5},
	}
}

// builtinSphereGeometry returns a UV sphere of the given radius with
// latBands latitude bands and lonBands longitude bands.
func builtinSphereGeometry(radius float32, latBands, lonBands int) Geometry {
	var verts []Vertex
	for lat := 0; lat <= latBands; lat++ {
		theta := float64(lat) * math.Pi / float64(latBands)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= lonBands; lon++ {
			phi := float64(lon) * 2 * math.Pi / float64(lonBands)
			sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
			x, y, z := cosPhi*sinTheta, cosTheta, sinPhi*sinTheta
			n := mgl32.Vec3{float32(x), float32(y), float32(z)}
			verts = append(verts, Vertex{
				Position: n.Mul(radius), Normal: n,
				UV: mgl32.Vec2{float32(lon) / float32(lonBands), float32(lat) / float32(latBands)},
			})
		}
	}
	var idx []uint32
	stride := uint32(lonBands + 1)
	for lat := 0; lat < latBands; lat++ {
		for lon := 0; lon < lonBands; lon++ {
			first := uint32(lat)*stride + uint32(lon)
			second := first + stride
			idx = append(idx, first, second, first+1, second, second+1, first+1)
		}
	}
	return Geometry{
		Vertices: verts, Indices: idx,
		AABBMin: mgl32.Vec3{-radius, -radius, -radius}, AABBMax: mgl32.Vec3{radius, radius, radius},
	}
}

// builtinConeGeometry returns a cone of the given radius/height with
// segments radial subdivisions, apex at +Y, base centered at the origin.
func builtinConeGeometry(radius, height float32, segments int) Geometry {
	var verts []Vertex
	apex := Vertex{Position: mgl32.Vec3{0, height, 0}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0.5, 0}}
	base := Vertex{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, -1, 0}, UV: mgl32.Vec2{0.5, 1}}
	verts = append(verts, apex, base)
	ringStart := uint32(len(verts))
	for i := 0; i <= segments; i++ {
		a := float64(i) / float64(segments) * 2 * math.Pi
		x, z := math.Cos(a), math.Sin(a)
		n := mgl32.Vec3{float32(x), 0, float32(z)}
		verts = append(verts, Vertex{
			Position: mgl32.Vec3{float32(x) * radius, 0, float32(z) * radius}, Normal: n,
			UV: mgl32.Vec2{float32(i) / float32(segments), 1},
		})
	}
	var idx []uint32
	for i := uint32(0); i < uint32(segments); i++ {
		idx = append(idx, 0, ringStart+i, ringStart+i+1)
		idx = append(idx, 1, ringStart+i+1, ringStart+i)
	}
	return Geometry{
		Vertices: verts, Indices: idx,
		AABBMin: mgl32.Vec3{-radius, 0, -radius}, AABBMax: mgl32.Vec3{radius, height, radius},
	}
}

// BuiltinMeshes names the fixed set of primitive meshes every manager
// provisions at Init.
type BuiltinMeshes struct {
	Cube, Sphere, Quad, Cone Handle
}

// CreateBuiltinMeshes reserves slab space for and registers the cube,
// sphere, quad, and cone primitives, streaming each one's vertex/index
// data into the shared device buffers at the offsets reserved for it. On
// partial failure every mesh already created for this call is released
// before the error propagates.
func CreateBuiltinMeshes(meshes *pool.Pool[Mesh], vertexSlab, indexSlab, skinSlab *slab.Allocator, vertexBuffer *Bindless[Vertex], indexBuffer *Bindless[uint32]) (out BuiltinMeshes, err error) {
	create := func(geom Geometry) (Handle, error) {
		m, err := CreateMesh(vertexSlab, indexSlab, skinSlab, geom, false)
		if err != nil {
			return Handle{}, err
		}
		h, slot, err := meshes.Alloc()
		if err != nil {
			m.Destroy(vertexSlab, indexSlab, skinSlab, func(Handle) {})
			return Handle{}, fmt.Errorf("mjolnir: allocate builtin mesh slot: %w", ErrCapacityExhausted)
		}
		*slot = *m

		vtxOff, _ := m.VertexRange()
		vertexBuffer.WriteRange(vtxOff, geom.Vertices)
		idxOff, _ := m.IndexRange()
		indexBuffer.WriteRange(idxOff, geom.Indices)
		return h, nil
	}

	var created []Handle
	rollback := func() {
		for _, h := range created {
			if m, ok := meshes.Free(h); ok {
				m.Destroy(vertexSlab, indexSlab, skinSlab, func(Handle) {})
			}
		}
	}

	if out.Cube, err = create(builtinCubeGeometry()); err != nil {
		rollback()
		return BuiltinMeshes{}, err
	}
	created = append(created, out.Cube)

	if out.Sphere, err = create(builtinSphereGeometry(0.5, 16, 24)); err != nil {
		rollback()
		return BuiltinMeshes{}, err
	}
	created = append(created, out.Sphere)

	if out.Quad, err = create(builtinQuadGeometry()); err != nil {
		rollback()
		return BuiltinMeshes{}, err
	}
	created = append(created, out.Quad)

	if out.Cone, err = create(builtinConeGeometry(0.5, 1, 24)); err != nil {
		rollback()
		return BuiltinMeshes{}, err
	}
	created = append(created, out.Cone)

	return out, nil
}
