package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSphericalCameraProjectionIsNinetyDegreesUnitAspect(t *testing.T) {
	sc := &SphericalCamera{Near: 0.1, Far: 50}
	expected := mgl32.Perspective(sphericalFOVRadians, 1.0, 0.1, 50)
	assert.Equal(t, expected, sc.Projection())
}

func TestSphericalCameraFaceViewsCoverAllSixAxes(t *testing.T) {
	sc := &SphericalCamera{Near: 0.1, Far: 50}
	center := mgl32.Vec3{1, 2, 3}
	seen := map[[3]float32]bool{}
	for f := 0; f < 6; f++ {
		v := sc.FaceView(center, f)
		assert.False(t, v == mgl32.Mat4{})
		fwd := faceViews[f].forward
		seen[[3]float32{fwd.X(), fwd.Y(), fwd.Z()}] = true
	}
	assert.Len(t, seen, 6)
}

func TestSphericalCameraBuildCameraDataPacksCenterAndRadius(t *testing.T) {
	sc := &SphericalCamera{Near: 0.1, Far: 10, Size: 512}
	center := mgl32.Vec3{1, 2, 3}
	data := sc.BuildCameraData(center, 7.5, 0)

	assert.Equal(t, float32(1), data.Position.X())
	assert.Equal(t, float32(2), data.Position.Y())
	assert.Equal(t, float32(3), data.Position.Z())
	assert.Equal(t, float32(7.5), data.Position.W())
	assert.Equal(t, float32(512), data.ViewportParams.X())
}
