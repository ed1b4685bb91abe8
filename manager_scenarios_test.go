package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolnir-engine/mjolnir/pool"
	"github.com/mjolnir-engine/mjolnir/slab"
)

// Scenarios S4 (depth-pyramid mip count) and S5 (material/texture purge
// cascade) are exercised in camera_test.go's TestMipLevelsForFullHDPyramid
// and refcount_test.go's TestPurgeUnusedResourcesMaterialTextureCascade
// respectively; they aren't duplicated here.

// TestScenarioS1PoolReuseBumpsGeneration exercises spec scenario S1: a
// pool of capacity 4 allocates two slots, frees the first, and confirms
// reallocation reuses that slot's index under a bumped generation while
// the original Handle reads back as gone.
func TestScenarioS1PoolReuseBumpsGeneration(t *testing.T) {
	p := pool.NewWithCapacity[uint32](4)

	h0, _, err := p.Alloc()
	require.NoError(t, err)
	assert.Equal(t, pool.Handle{Index: 0, Generation: 1}, h0)

	h1, _, err := p.Alloc()
	require.NoError(t, err)
	assert.Equal(t, pool.Handle{Index: 1, Generation: 1}, h1)

	_, ok := p.Free(h0)
	require.True(t, ok)

	h2, _, err := p.Alloc()
	require.NoError(t, err)
	assert.Equal(t, pool.Handle{Index: 0, Generation: 2}, h2)

	_, ok = p.Get(h0)
	assert.False(t, ok, "stale handle from before the free must not resolve")
}

// TestScenarioS2SlabClassBoundary exercises spec scenario S2: a
// two-class allocator packs requests into the smallest fitting class,
// bumping each class's own tail independently, and reuses a freed block
// ahead of bumping further.
func TestScenarioS2SlabClassBoundary(t *testing.T) {
	a := slab.Init([]slab.Class{
		{BlockSize: 256, BlockCount: 2},
		{BlockSize: 1024, BlockCount: 2},
	})

	off, ok := a.Alloc(200)
	require.True(t, ok)
	assert.Equal(t, uint32(0), off)

	off, ok = a.Alloc(256)
	require.True(t, ok)
	assert.Equal(t, uint32(256), off)

	off, ok = a.Alloc(257)
	require.True(t, ok, "257 doesn't fit the 256 class, must fall through to the 1024 class")
	assert.Equal(t, uint32(512), off, "1024-class range starts right after the 256-class's full 512-element span")

	a.Free(0)
	off, ok = a.Alloc(1)
	require.True(t, ok)
	assert.Equal(t, uint32(0), off, "a 256-class-sized request reuses the freed 256-class block")
}

// TestScenarioS3PointLightShadowLifecycle exercises spec scenario S3: a
// point light's shadow-map descriptor index tracks its spherical
// camera's cube-depth image, and destroying the light frees both pool
// slots. ProvisionShadowCamera/NewSphericalCamera themselves require a
// real *wgpu.Device to construct their draw-list buffers, so this drives
// the same pool/handle bookkeeping those functions perform, standing in
// a SphericalCamera holding only its cube pool and cube handle
// (device-free, since Destroy skips nil buffers and the cube image has
// no texture/view to release) for what NewSphericalCamera would have
// returned —
// mirroring how light_test.go's existing tests hand-build Light literals
// rather than route through a device (spec §4.6, §4.7, §8 S3).
func TestScenarioS3PointLightShadowLifecycle(t *testing.T) {
	cubeImages := pool.New[CubeImage]()
	sphericalCameras := pool.New[SphericalCamera]()
	cameras := pool.New[Camera]()

	cubeHandle, cubeSlot, err := cubeImages.Alloc()
	require.NoError(t, err)
	*cubeSlot = CubeImage{Size: ShadowMapSize}

	scHandle, scSlot, err := sphericalCameras.Alloc()
	require.NoError(t, err)
	*scSlot = SphericalCamera{images: cubeImages, cube: cubeHandle}

	l := Light{Type: LightPoint, Radius: 5, CastShadow: true}
	l.sphericalCamera = scHandle
	l.shadowImage = cubeHandle.Index

	data := l.BuildLightData()
	assert.Equal(t, uint32(1), data.CastShadow)
	assert.Equal(t, cubeHandle.Index, data.ShadowMap, "shadow_map must equal the spherical camera's cube-depth index")
	assert.Equal(t, scHandle.Index, data.ShadowCameraIdx)

	ReleaseShadowCamera(&l, sphericalCameras, cameras)

	assert.True(t, l.sphericalCamera.IsNull())
	assert.Equal(t, uint32(descriptorIndexOverflow), l.shadowImage)

	_, ok := sphericalCameras.Get(scHandle)
	assert.False(t, ok, "spherical-camera slot must be freed")
	_, ok = cubeImages.Get(cubeHandle)
	assert.False(t, ok, "cube-depth image slot must be freed")

	found := false
	sphericalCameras.Each(func(pool.Handle, *SphericalCamera) { found = true })
	assert.False(t, found, "a pool scan must find no surviving spherical-camera entry")
}

// TestScenarioS6PerFrameIsolation exercises spec scenario S6: with
// F==FramesInFlight and a given node slot, a world matrix written to
// frame 0 is isolated from one written to frame 1 at the same slot —
// reading each frame back returns exactly what was last published to
// it. This drives the host mirror directly (Manager.WorldMatrix),
// bypassing UpdateWorldMatrix's device-touching buffer write, the way
// newBookkeepingOnlyManager in manager_test.go exercises frame
// bookkeeping without a real GPU device (spec §3, §6, §8 S6).
func TestScenarioS6PerFrameIsolation(t *testing.T) {
	const nodeIndex = 3
	m := &Manager{}
	for f := range m.worldMatricesHost {
		m.worldMatricesHost[f] = make([]mgl32.Mat4, nodeIndex+1)
	}

	a := mgl32.Translate3D(1, 2, 3)
	b := mgl32.Translate3D(4, 5, 6)
	m.worldMatricesHost[0][nodeIndex] = a
	m.worldMatricesHost[1][nodeIndex] = b

	assert.Equal(t, a, m.WorldMatrix(0, nodeIndex))
	assert.Equal(t, b, m.WorldMatrix(1, nodeIndex))
	assert.NotEqual(t, m.WorldMatrix(0, nodeIndex), m.WorldMatrix(1, nodeIndex))
}
