package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/pool"
)

// lightShadowNearFraction is the fixed near-plane fraction applied to a casting
// light's radius (spec §4.7): near = radius * lightShadowNearFraction.
const lightShadowNearFraction = 0.01

// Light owns, by composition, whichever shadow camera its Type and
// CastShadow setting require: a point light owns a SphericalCamera, a
// directional or spot light that casts shadows owns a Camera restricted
// to the shadow pass. A light that doesn't cast shadows owns neither
// (spec §4.7 "shadow-camera ownership").
type Light struct {
	Type       LightType
	Color      [3]float32
	Intensity  float32
	Radius     float32
	InnerCone  float32 // radians, spot lights only
	OuterCone  float32 // radians, spot lights only
	CastShadow bool

	// NodeIndex identifies the scene-graph node whose world transform
	// drives this light's position/direction; ownership of that
	// transform is external to this package.
	NodeIndex uint32

	sphericalCamera Handle // into Manager's sphericalCameras pool, POINT only
	shadowCamera    Handle // into Manager's cameras pool, DIRECTIONAL/SPOT only
	shadowImage     uint32 // descriptor index of the shadow map, or descriptorIndexOverflow
}

// shadowCameraFOV returns the fixed field of view a directional/spot
// light's shadow camera is provisioned with: twice the spot's outer cone
// angle, or 90 degrees for a directional light (spec §4.7).
func shadowCameraFOV(l *Light) float32 {
	if l.Type == LightSpot {
		return l.OuterCone * 2
	}
	return sphericalFOVRadians
}

// ProvisionShadowCamera allocates whichever shadow camera this light's
// Type requires, given its current Radius. It is a no-op if the light
// does not cast shadows. On partial failure, any camera already
// allocated for this call is released before the error propagates.
func ProvisionShadowCamera(
	l *Light,
	sphericalCameras *pool.Pool[SphericalCamera],
	cameras *pool.Pool[Camera],
	cameraDeps cameraDeps,
) error {
	if !l.CastShadow {
		return nil
	}
	near := l.Radius * lightShadowNearFraction
	far := l.Radius
	if far <= near {
		far = near + 1
	}

	switch l.Type {
	case LightPoint:
		sc, err := NewSphericalCamera(cameraDeps.device, cameraDeps.cubeImages, near, far, ShadowMapSize, cameraDeps.maxDraws)
		if err != nil {
			return fmt.Errorf("mjolnir: provision point-light shadow camera: %w", err)
		}
		h, slot, err := sphericalCameras.Alloc()
		if err != nil {
			sc.Destroy()
			return fmt.Errorf("mjolnir: allocate spherical-camera slot: %w", ErrCapacityExhausted)
		}
		*slot = *sc
		l.sphericalCamera = h
		l.shadowImage = sc.CubeImage().Index
	case LightDirectional, LightSpot:
		proj := Projection{Kind: ProjectionPerspective, FOVRadians: shadowCameraFOV(l), Near: near, Far: far}
		cam, err := NewCamera(cameraDeps.device, cameraDeps.images, proj, PassShadow, ShadowMapSize, ShadowMapSize, cameraDeps.maxDraws)
		if err != nil {
			return fmt.Errorf("mjolnir: provision %v shadow camera: %w", l.Type, err)
		}
		h, slot, err := cameras.Alloc()
		if err != nil {
			cam.Destroy()
			return fmt.Errorf("mjolnir: allocate shadow-camera slot: %w", ErrCapacityExhausted)
		}
		*slot = *cam
		l.shadowCamera = h
		_, _, _, _, _, _, depth, _ := cam.Attachments(0)
		l.shadowImage = depth.Index
	}
	return nil
}

// cameraDeps bundles what Light's shadow-camera provisioning needs from
// the owning Manager, so this file stays free of a direct Manager
// dependency and is easy to unit-test in isolation.
type cameraDeps struct {
	device     *wgpu.Device
	images     *pool.Pool[Image]
	cubeImages *pool.Pool[CubeImage]
	maxDraws   uint32
}

// ReleaseShadowCamera frees whichever shadow camera this light owns, if
// any, clears the light's shadow-camera handles, and resets its shadow
// map index to descriptorIndexOverflow; CastShadow itself is left
// unchanged. Safe to call on a light that owns no shadow camera.
func ReleaseShadowCamera(l *Light, sphericalCameras *pool.Pool[SphericalCamera], cameras *pool.Pool[Camera]) {
	if !l.sphericalCamera.IsNull() {
		if sc, ok := sphericalCameras.Free(l.sphericalCamera); ok && sc != nil {
			sc.Destroy()
		}
		l.sphericalCamera = Handle{}
	}
	if !l.shadowCamera.IsNull() {
		if cam, ok := cameras.Free(l.shadowCamera); ok && cam != nil {
			cam.Destroy()
		}
		l.shadowCamera = Handle{}
	}
	l.shadowImage = descriptorIndexOverflow
}

// BuildLightData packs this light's current state into its GPU record.
// ShadowMap is descriptorIndexOverflow whenever the light does not cast
// a shadow (spec §4.7).
func (l *Light) BuildLightData() LightData {
	shadowMap := uint32(descriptorIndexOverflow)
	var shadowCameraIdx uint32
	castShadow := uint32(0)
	if l.CastShadow {
		castShadow = 1
		shadowMap = l.shadowImage
		if l.Type == LightPoint {
			shadowCameraIdx = l.sphericalCamera.Index
		} else {
			shadowCameraIdx = l.shadowCamera.Index
		}
	}
	return LightData{
		Color:           mgl32.Vec3{l.Color[0], l.Color[1], l.Color[2]},
		Intensity:       l.Intensity,
		Radius:          l.Radius,
		InnerCone:       l.InnerCone,
		OuterCone:       l.OuterCone,
		Type:            l.Type,
		NodeIndex:       l.NodeIndex,
		ShadowMap:       shadowMap,
		ShadowCameraIdx: shadowCameraIdx,
		CastShadow:      castShadow,
	}
}
