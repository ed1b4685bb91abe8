package mjolnir

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mjolnir-engine/mjolnir/pool"
)

// Passes is a bitset of render passes a Camera participates in; it
// determines which attachments Camera.Init allocates (spec §4.4).
type Passes uint32

const (
	PassGeometry Passes = 1 << iota
	PassLighting
	PassTransparency
	PassParticles
	PassPostProcess
	PassShadow
)

// ProjectionKind tags Camera's projection sum type (spec §9 "tagged
// variants over inheritance" — never an open class hierarchy).
type ProjectionKind uint32

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

// Projection holds the parameters for either variant; which fields are
// meaningful is determined solely by Kind.
type Projection struct {
	Kind ProjectionKind

	// Perspective
	FOVRadians float32
	Near, Far  float32

	// Orthographic
	Left, Right, Bottom, Top float32
}

// Matrix computes the 4x4 projection matrix for the given aspect ratio
// (width/height). Orthographic projections ignore aspect.
func (p Projection) Matrix(aspect float32) mgl32.Mat4 {
	switch p.Kind {
	case ProjectionOrthographic:
		return mgl32.Ortho(p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far)
	default:
		return mgl32.Perspective(p.FOVRadians, aspect, p.Near, p.Far)
	}
}

// Attachment formats fixed by spec §4.4.
const (
	formatPosition          = wgpu.TextureFormatRGBA16Float
	formatNormal            = wgpu.TextureFormatRGBA16Float
	formatAlbedo            = wgpu.TextureFormatRGBA16Float
	formatMetallicRoughness = wgpu.TextureFormatRG8Unorm
	formatEmissive          = wgpu.TextureFormatRGBA16Float
	formatFinal             = wgpu.TextureFormatRGBA16Float
	formatDepth             = wgpu.TextureFormatDepth32Float
	formatPyramid           = wgpu.TextureFormatR32Float
)

const attachmentUsage = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageStorageBinding

// cameraFrame bundles the per-frame resources a Camera owns (spec §3
// "Aggregates with ownership").
type cameraFrame struct {
	Position, Normal, Albedo, MetallicRoughness, Emissive, Final, Depth Handle
	Pyramid                                                             Handle
	PyramidMipLevels                                                    uint32

	DrawCount    *Bindless[uint32]
	DrawCommands *Bindless[DrawCommand]

	LateCullSet     *wgpu.BindGroup
	DepthReduceSets []*wgpu.BindGroup // one per pyramid mip level
}

// Camera is a perspective/orthographic view with per-frame render
// attachments, a depth pyramid for occlusion culling, draw-list buffers,
// and the descriptor sets the culling and draw passes bind against.
type Camera struct {
	device *wgpu.Device
	images *pool.Pool[Image]

	Passes     Passes
	Projection Projection
	Width      uint32
	Height     uint32
	MaxDraws   uint32

	pyramidSampler *wgpu.Sampler
	culledLayout   *wgpu.BindGroupLayout
	reduceLayout   *wgpu.BindGroupLayout

	frames [FramesInFlight]cameraFrame
}

// NewCamera allocates every per-frame attachment implied by passes, the
// depth pyramid, and the draw-list buffers. The late-cull and
// depth-reduce descriptor sets are built separately, by
// BuildHiZDescriptors. On any device-allocation failure every
// partial acquisition is released, in reverse order, before the error
// propagates (spec §4.4 Failure, §9 "scoped resource acquisition").
func NewCamera(device *wgpu.Device, images *pool.Pool[Image], proj Projection, passes Passes, width, height, maxDraws uint32) (cam *Camera, err error) {
	c := &Camera{
		device:     device,
		images:     images,
		Passes:     passes,
		Projection: proj,
		Width:      width,
		Height:     height,
		MaxDraws:   maxDraws,
	}

	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	c.pyramidSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		// ReductionMode selects MAX so the 2x2 pyramid downsample keeps the
		// farthest depth in each texel — required for conservative
		// forward-Z occlusion rejection (spec §4.10).
		ReductionMode: wgpu.SamplerReductionModeMax,
		LodMinClamp:   0,
		LodMaxClamp:   32,
	})
	if err != nil {
		return nil, fmt.Errorf("mjolnir: create depth-pyramid sampler: %w: %w", err, ErrDeviceAllocationFailed)
	}

	for f := 0; f < FramesInFlight; f++ {
		if err = c.initFrame(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Camera) allocAttachment(label string, format wgpu.TextureFormat) (Handle, error) {
	img, err := CreateImage(c.device, label, format, attachmentUsage, c.Width, c.Height)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := c.images.Alloc()
	if err != nil {
		img.Destroy()
		return Handle{}, fmt.Errorf("mjolnir: allocate image slot for %q: %w", label, ErrCapacityExhausted)
	}
	*slot = *img
	return h, nil
}

func (c *Camera) needsGBuffer() bool {
	return c.Passes&(PassGeometry|PassLighting) != 0
}

func (c *Camera) needsFinal() bool {
	return c.Passes&(PassLighting|PassTransparency|PassParticles|PassPostProcess) != 0
}

func mipLevelsFor(w, h uint32) uint32 {
	dim := w
	if h > dim {
		dim = h
	}
	if dim == 0 {
		dim = 1
	}
	return uint32(math.Floor(math.Log2(float64(dim)))) + 1
}

func (c *Camera) initFrame(f int) error {
	fr := &c.frames[f]

	if c.needsGBuffer() {
		var err error
		if fr.Position, err = c.allocAttachment("position", formatPosition); err != nil {
			return err
		}
		if fr.Normal, err = c.allocAttachment("normal", formatNormal); err != nil {
			return err
		}
		if fr.Albedo, err = c.allocAttachment("albedo", formatAlbedo); err != nil {
			return err
		}
		if fr.MetallicRoughness, err = c.allocAttachment("metallic-roughness", formatMetallicRoughness); err != nil {
			return err
		}
		if fr.Emissive, err = c.allocAttachment("emissive", formatEmissive); err != nil {
			return err
		}
	}
	if c.needsFinal() {
		var err error
		if fr.Final, err = c.allocAttachment("final", formatFinal); err != nil {
			return err
		}
	}
	{
		var err error
		if fr.Depth, err = c.allocAttachment("depth", formatDepth); err != nil {
			return err
		}
	}

	// Depth pyramid: half resolution, fully mipped.
	pw, ph := maxu32(1, c.Width/2), maxu32(1, c.Height/2)
	mips := mipLevelsFor(pw, ph)
	pyImg, err := CreateMippedImage(c.device, "depth-pyramid", formatPyramid, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageStorageBinding, pw, ph, mips)
	if err != nil {
		return err
	}
	h, slot, err := c.images.Alloc()
	if err != nil {
		pyImg.Destroy()
		return fmt.Errorf("mjolnir: allocate depth-pyramid image slot: %w", ErrCapacityExhausted)
	}
	*slot = *pyImg
	fr.Pyramid = h
	fr.PyramidMipLevels = mips

	fr.DrawCount, err = NewBindless[uint32](c.device, "draw-count", 1, 0, wgpu.BufferUsageIndirect)
	if err != nil {
		return err
	}
	fr.DrawCommands, err = NewBindless[DrawCommand](c.device, "draw-commands", c.MaxDraws, 0, wgpu.BufferUsageIndirect)
	if err != nil {
		return err
	}

	fr.DepthReduceSets = make([]*wgpu.BindGroup, mips)
	return nil
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// destroyFrame releases a single frame's resources in reverse order.
func (c *Camera) destroyFrame(f int) {
	fr := &c.frames[f]
	for _, bg := range fr.DepthReduceSets {
		if bg != nil {
			bg.Release()
		}
	}
	fr.DepthReduceSets = nil
	if fr.LateCullSet != nil {
		fr.LateCullSet.Release()
		fr.LateCullSet = nil
	}
	if fr.DrawCommands != nil {
		fr.DrawCommands.Destroy()
		fr.DrawCommands = nil
	}
	if fr.DrawCount != nil {
		fr.DrawCount.Destroy()
		fr.DrawCount = nil
	}

	freeImg := func(h Handle) {
		if h.IsNull() {
			return
		}
		img, ok := c.images.Free(h)
		if ok && img != nil {
			img.Destroy()
		}
	}
	freeImg(fr.Pyramid)
	freeImg(fr.Depth)
	freeImg(fr.Final)
	freeImg(fr.Emissive)
	freeImg(fr.MetallicRoughness)
	freeImg(fr.Albedo)
	freeImg(fr.Normal)
	freeImg(fr.Position)
	*fr = cameraFrame{}
}

// Destroy releases every per-frame resource and the shared sampler.
func (c *Camera) Destroy() {
	if c == nil {
		return
	}
	for f := 0; f < FramesInFlight; f++ {
		c.destroyFrame(f)
	}
	if c.culledLayout != nil {
		c.culledLayout.Release()
		c.culledLayout = nil
	}
	if c.reduceLayout != nil {
		c.reduceLayout.Release()
		c.reduceLayout = nil
	}
	if c.pyramidSampler != nil {
		c.pyramidSampler.Release()
		c.pyramidSampler = nil
	}
}

// Resize waits for the device to go idle, releases every attachment,
// depth pyramid, and descriptor set, and recreates them at the new
// extent. Resizing to the current (width, height) is a no-op. Aspect
// ratio of a perspective projection is implicitly updated on the next
// BuildCameraData call (Matrix takes aspect as a parameter).
func (c *Camera) Resize(width, height uint32) error {
	if width == c.Width && height == c.Height {
		return nil
	}
	c.device.Poll(true, nil) // wait for device idle (spec §5)

	for f := 0; f < FramesInFlight; f++ {
		c.destroyFrame(f)
	}
	c.Width, c.Height = width, height
	for f := 0; f < FramesInFlight; f++ {
		if err := c.initFrame(f); err != nil {
			return err
		}
	}
	if c.culledLayout != nil {
		return c.BuildHiZDescriptors(c.images)
	}
	return nil
}

// BuildCameraData derives the shader-visible CameraData record for this
// camera from its current projection, an externally supplied view
// matrix, and world-space position. Frustum planes are derived from the
// transpose of view*projection as {m3+m0, m3-m0, m3+m1, m3-m1, m3+m2,
// m3-m2}, then each normalized by its xyz length unless that length is
// below 1e-6 (spec §6).
func (c *Camera) BuildCameraData(view mgl32.Mat4, position mgl32.Vec3) CameraData {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	proj := c.Projection.Matrix(aspect)
	vp := proj.Mul4(view).Transpose()

	m := func(row int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(row, 0), vp.At(row, 1), vp.At(row, 2), vp.At(row, 3)}
	}
	m0, m1, m2, m3 := m(0), m(1), m(2), m(3)

	raw := [6]mgl32.Vec4{
		m3.Add(m0), m3.Sub(m0),
		m3.Add(m1), m3.Sub(m1),
		m3.Add(m2), m3.Sub(m2),
	}
	var planes [6]mgl32.Vec4
	for i, p := range raw {
		length := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if length >= 1e-6 {
			planes[i] = p.Mul(1 / length)
		} else {
			planes[i] = p
		}
	}

	return CameraData{
		View:           view,
		Projection:     proj,
		ViewportParams: mgl32.Vec4{float32(c.Width), float32(c.Height), c.Projection.Near, c.Projection.Far},
		Position:       mgl32.Vec4{position.X(), position.Y(), position.Z(), 0},
		FrustumPlanes:  planes,
	}
}

// ViewportToWorldRay converts (mx, my) in top-left pixel coordinates
// into a ray from the camera's position through that pixel, by
// unprojecting an NDC point through inverse(projection) and
// inverse(view) (spec §4.4).
func ViewportToWorldRay(view, proj mgl32.Mat4, width, height uint32, mx, my float32) (origin, dir mgl32.Vec3) {
	ndcX := (2*mx)/float32(width) - 1
	ndcY := 1 - (2*my)/float32(height)

	invProj := proj.Inv()
	invView := view.Inv()

	unproject := func(ndcZ float32) mgl32.Vec3 {
		clip := mgl32.Vec4{ndcX, ndcY, ndcZ, 1}
		eye := invProj.Mul4x1(clip)
		eye = mgl32.Vec4{eye.X(), eye.Y(), -1, 0}
		world := invView.Mul4x1(eye)
		return mgl32.Vec3{world.X(), world.Y(), world.Z()}
	}

	near := unproject(-1)
	invViewCol := invView.Col(3)
	origin = mgl32.Vec3{invViewCol.X(), invViewCol.Y(), invViewCol.Z()}
	dir = near.Normalize()
	return origin, dir
}

// LateCullSet returns frame N's late-cull descriptor set. Per spec §4.4
// and the testable property in §8 item 5, this deliberately binds frame
// (N + FramesInFlight - 1) % FramesInFlight's depth pyramid — a
// one-frame lag that is a design invariant, not a bug.
func (c *Camera) LateCullSet(frame int) *wgpu.BindGroup {
	return c.frames[frame].LateCullSet
}

// PyramidFrameForLateCull returns which frame's pyramid the late-cull
// descriptor for frame N must bind.
func PyramidFrameForLateCull(n int) int {
	return (n + FramesInFlight - 1) % FramesInFlight
}

// DepthReduceSet returns frame f's descriptor set for reducing pyramid
// mip level m.
func (c *Camera) DepthReduceSet(f int, mip uint32) *wgpu.BindGroup {
	sets := c.frames[f].DepthReduceSets
	if int(mip) >= len(sets) {
		return nil
	}
	return sets[mip]
}

// DrawCount returns frame f's draw-count buffer. The buffer is not
// host-visible: a CPU read of the visible count needs a separate async
// readback, which lags the GPU write by up to FramesInFlight frames and
// is not provided by Camera.
func (c *Camera) DrawCount(f int) *Bindless[uint32] { return c.frames[f].DrawCount }

// DrawCommands returns frame f's indirect draw-command buffer.
func (c *Camera) DrawCommands(f int) *Bindless[DrawCommand] { return c.frames[f].DrawCommands }

// Attachments returns the image Handle for each per-frame attachment;
// zero-value Handles are null when the pass set didn't request it.
func (c *Camera) Attachments(f int) (position, normal, albedo, metallicRoughness, emissive, final, depth, pyramid Handle) {
	fr := &c.frames[f]
	return fr.Position, fr.Normal, fr.Albedo, fr.MetallicRoughness, fr.Emissive, fr.Final, fr.Depth, fr.Pyramid
}
