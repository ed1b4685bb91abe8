package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/pool"
)

// SphericalCamera is a fixed 90-degree-FOV, unit-aspect camera used
// exclusively to render the six faces of a point light's omnidirectional
// shadow map (spec §4.6). Unlike Camera it owns no G-buffer, no depth
// pyramid, and no per-face draw-list buffer: all six faces share one
// draw-count/draw-command pair, since every face culls against the same
// light-radius sphere. One depth cube image is shared by every frame in
// flight, and no per-frame descriptor sets are built (FrameSet returns
// nil).
type SphericalCamera struct {
	device *wgpu.Device
	images *pool.Pool[CubeImage]

	Near, Far float32
	Size      uint32

	cube Handle

	drawCount    *Bindless[uint32]
	drawCommands *Bindless[DrawCommand]

	frameSets [FramesInFlight]*wgpu.BindGroup
}

// sphericalFOVRadians is the fixed 90-degree field of view every cube
// face is rendered with (spec §4.6).
const sphericalFOVRadians = float32(1.5707963267948966)

// NewSphericalCamera allocates the depth cube image and the shared
// draw-list buffers. On partial failure every prior acquisition is
// released before the error propagates.
func NewSphericalCamera(device *wgpu.Device, images *pool.Pool[CubeImage], near, far float32, size, maxDraws uint32) (sc *SphericalCamera, err error) {
	c := &SphericalCamera{device: device, images: images, Near: near, Far: far, Size: size}
	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	cubeImg, err := CreateCubeImage(device, "spherical-depth", wgpu.TextureFormatDepth32Float,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageRenderAttachment, size)
	if err != nil {
		return nil, err
	}
	h, slot, err := images.Alloc()
	if err != nil {
		cubeImg.Destroy()
		return nil, fmt.Errorf("mjolnir: allocate spherical-camera cube slot: %w", ErrCapacityExhausted)
	}
	*slot = *cubeImg
	c.cube = h

	if c.drawCount, err = NewBindless[uint32](device, "spherical-draw-count", 1, 0, wgpu.BufferUsageIndirect); err != nil {
		return nil, err
	}
	if c.drawCommands, err = NewBindless[DrawCommand](device, "spherical-draw-commands", maxDraws, 0, wgpu.BufferUsageIndirect); err != nil {
		return nil, err
	}

	return c, nil
}

// Projection returns the fixed 90-degree perspective projection shared
// by all six cube faces.
func (c *SphericalCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(sphericalFOVRadians, 1.0, c.Near, c.Far)
}

// faceViews are the six fixed view directions/up-vectors for a cube map,
// ordered +X, -X, +Y, -Y, +Z, -Z.
var faceViews = [6]struct{ forward, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// FaceView returns the view matrix for cube face index f (0..5), looking
// outward from center along that face's fixed axis.
func (c *SphericalCamera) FaceView(center mgl32.Vec3, f int) mgl32.Mat4 {
	fv := faceViews[f]
	return mgl32.LookAtV(center, center.Add(fv.forward), fv.up)
}

// BuildCameraData packs this face's view/projection plus the light's
// center and radius into a CameraData record: Position carries
// (center.xyz, radius) rather than (position.xyz, pad) since a spherical
// camera has no independent world position outside the owning light.
func (c *SphericalCamera) BuildCameraData(center mgl32.Vec3, radius float32, face int) CameraData {
	view := c.FaceView(center, face)
	proj := c.Projection()
	return CameraData{
		View:           view,
		Projection:     proj,
		ViewportParams: mgl32.Vec4{float32(c.Size), float32(c.Size), c.Near, c.Far},
		Position:       mgl32.Vec4{center.X(), center.Y(), center.Z(), radius},
	}
}

// DrawCount returns the shared draw-count buffer (one pair for all six
// faces, per spec §4.6).
func (c *SphericalCamera) DrawCount() *Bindless[uint32] { return c.drawCount }

// DrawCommands returns the shared indirect draw-command buffer.
func (c *SphericalCamera) DrawCommands() *Bindless[DrawCommand] { return c.drawCommands }

// FrameSet returns frame f's descriptor set slot. Nothing in this
// package builds these sets, so it returns nil.
func (c *SphericalCamera) FrameSet(f int) *wgpu.BindGroup { return c.frameSets[f] }

// CubeImage returns the Handle for the depth cube image.
func (c *SphericalCamera) CubeImage() Handle { return c.cube }

// Destroy releases the draw-list buffers, descriptor sets, and depth
// cube image, in reverse order of acquisition.
func (c *SphericalCamera) Destroy() {
	if c == nil {
		return
	}
	for f := 0; f < FramesInFlight; f++ {
		if c.frameSets[f] != nil {
			c.frameSets[f].Release()
			c.frameSets[f] = nil
		}
	}
	if c.drawCommands != nil {
		c.drawCommands.Destroy()
		c.drawCommands = nil
	}
	if c.drawCount != nil {
		c.drawCount.Destroy()
		c.drawCount = nil
	}
	if !c.cube.IsNull() && c.images != nil {
		img, ok := c.images.Free(c.cube)
		if ok && img != nil {
			img.Destroy()
		}
		c.cube = Handle{}
	}
}
