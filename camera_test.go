package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMipLevelsForFullHDPyramid(t *testing.T) {
	// 1920x1080 halved to 960x540 for the pyramid base (spec §4.4/§8 item 4
	// scenario S4): floor(log2(960)) + 1 = 10.
	assert.Equal(t, uint32(10), mipLevelsFor(960, 540))
}

func TestMipLevelsForSquarePowerOfTwo(t *testing.T) {
	assert.Equal(t, uint32(9), mipLevelsFor(256, 256))
}

func TestMipLevelsForOnePixel(t *testing.T) {
	assert.Equal(t, uint32(1), mipLevelsFor(1, 1))
}

func TestProjectionMatrixPerspectiveUsesAspect(t *testing.T) {
	p := Projection{Kind: ProjectionPerspective, FOVRadians: mgl32.DegToRad(60), Near: 0.1, Far: 100}
	m1 := p.Matrix(1.0)
	m2 := p.Matrix(2.0)
	assert.NotEqual(t, m1, m2)
}

func TestProjectionMatrixOrthographicIgnoresAspectParam(t *testing.T) {
	p := Projection{Kind: ProjectionOrthographic, Left: -1, Right: 1, Bottom: -1, Top: 1, Near: 0.1, Far: 100}
	m1 := p.Matrix(1.0)
	m2 := p.Matrix(5.0)
	assert.Equal(t, m1, m2)
}

func TestPyramidFrameForLateCullIsOneFrameLag(t *testing.T) {
	assert.Equal(t, FramesInFlight-1, PyramidFrameForLateCull(0))
	assert.Equal(t, 0, PyramidFrameForLateCull(1))
}

func TestBuildCameraDataFrustumPlanesNormalized(t *testing.T) {
	c := &Camera{
		Projection: Projection{Kind: ProjectionPerspective, FOVRadians: mgl32.DegToRad(90), Near: 0.1, Far: 100},
		Width:      800,
		Height:     600,
	}
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	data := c.BuildCameraData(view, mgl32.Vec3{0, 0, 5})

	for i, plane := range data.FrustumPlanes {
		n := mgl32.Vec3{plane[0], plane[1], plane[2]}
		length := n.Len()
		assert.InDelta(t, 1.0, length, 1e-3, "plane %d should be unit-length normalized", i)
	}
	assert.Equal(t, float32(800), data.ViewportParams[0])
	assert.Equal(t, float32(600), data.ViewportParams[1])
}

func TestViewportToWorldRayCenterMatchesForward(t *testing.T) {
	eye := mgl32.Vec3{0, 0, 5}
	view := mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.0, 0.1, 100)

	origin, dir := ViewportToWorldRay(view, proj, 800, 800, 400, 400)
	assert.InDelta(t, eye.X(), origin.X(), 1e-3)
	assert.InDelta(t, eye.Y(), origin.Y(), 1e-3)
	assert.InDelta(t, eye.Z(), origin.Z(), 1e-3)
	assert.Less(t, dir.Z(), float32(0)) // looking toward -Z
}
