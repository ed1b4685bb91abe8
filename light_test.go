package mjolnir

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestShadowCameraFOVSpotUsesDoubleOuterCone(t *testing.T) {
	l := &Light{Type: LightSpot, OuterCone: mgl32.DegToRad(20)}
	assert.InDelta(t, mgl32.DegToRad(40), shadowCameraFOV(l), 1e-6)
}

func TestShadowCameraFOVDirectionalIsNinetyDegrees(t *testing.T) {
	l := &Light{Type: LightDirectional}
	assert.Equal(t, sphericalFOVRadians, shadowCameraFOV(l))
}

func TestBuildLightDataShadowMapOverflowWhenNotCasting(t *testing.T) {
	l := &Light{Type: LightPoint, CastShadow: false}
	data := l.BuildLightData()
	assert.Equal(t, uint32(descriptorIndexOverflow), data.ShadowMap)
	assert.Equal(t, uint32(0), data.CastShadow)
}

func TestBuildLightDataCastingPointLightReferencesSphericalCameraSlot(t *testing.T) {
	l := &Light{
		Type:            LightPoint,
		CastShadow:      true,
		sphericalCamera: Handle{Index: 4, Generation: 1},
		shadowImage:     2,
	}
	data := l.BuildLightData()
	assert.Equal(t, uint32(1), data.CastShadow)
	assert.Equal(t, uint32(4), data.ShadowCameraIdx)
	assert.Equal(t, uint32(2), data.ShadowMap)
}

func TestBuildLightDataCastingSpotLightReferencesShadowCameraSlot(t *testing.T) {
	l := &Light{
		Type:         LightSpot,
		CastShadow:   true,
		shadowCamera: Handle{Index: 9, Generation: 1},
		shadowImage:  5,
	}
	data := l.BuildLightData()
	assert.Equal(t, uint32(9), data.ShadowCameraIdx)
	assert.Equal(t, uint32(5), data.ShadowMap)
}
