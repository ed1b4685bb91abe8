package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mjolnir-engine/mjolnir/pool"
)

// BuildHiZDescriptors constructs the shared layouts (once) and every
// per-frame late-cull and per-mip depth-reduce descriptor set for this
// camera's depth pyramid (spec §4.10 "depth pyramid construction and
// reduction"). It must be called once after the camera's frames are
// initialized (i.e. right after NewCamera or Resize succeeds), and
// images must be the same pool the camera was constructed against.
func (c *Camera) BuildHiZDescriptors(images *pool.Pool[Image]) (err error) {
	defer func() {
		if err != nil {
			c.destroyHiZDescriptors()
		}
	}()

	if c.culledLayout == nil {
		c.culledLayout, err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: "hiz/culled-layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{Binding: 0, Visibility: wgpu.ShaderStageCompute, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
				{Binding: 1, Visibility: wgpu.ShaderStageCompute, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D}},
			},
		})
		if err != nil {
			return fmt.Errorf("mjolnir: create hiz culled-set layout: %w: %w", err, ErrDeviceAllocationFailed)
		}
	}
	if c.reduceLayout == nil {
		c.reduceLayout, err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: "hiz/reduce-layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{Binding: 0, Visibility: wgpu.ShaderStageCompute, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeUnfilterable, ViewDimension: wgpu.TextureViewDimension2D}},
				{Binding: 1, Visibility: wgpu.ShaderStageCompute, StorageTexture: wgpu.StorageTextureBindingLayout{Access: wgpu.StorageTextureAccessWriteOnly, Format: formatPyramid, ViewDimension: wgpu.TextureViewDimension2D}},
			},
		})
		if err != nil {
			return fmt.Errorf("mjolnir: create hiz reduce-set layout: %w: %w", err, ErrDeviceAllocationFailed)
		}
	}

	for f := 0; f < FramesInFlight; f++ {
		if err = c.buildDepthReduceSets(images, f); err != nil {
			return err
		}
	}
	for f := 0; f < FramesInFlight; f++ {
		if err = c.buildLateCullSet(images, f); err != nil {
			return err
		}
	}
	return nil
}

// buildDepthReduceSets builds frame f's per-mip descriptor sets: mip m's
// set reads mip m-1 (the full-resolution depth image for m == 0) and
// writes mip m.
func (c *Camera) buildDepthReduceSets(images *pool.Pool[Image], f int) error {
	fr := &c.frames[f]
	pyramid, ok := images.Get(fr.Pyramid)
	if !ok {
		return fmt.Errorf("mjolnir: frame %d pyramid image handle invalid", f)
	}
	depth, ok := images.Get(fr.Depth)
	if !ok {
		return fmt.Errorf("mjolnir: frame %d depth image handle invalid", f)
	}

	for m := uint32(0); m < fr.PyramidMipLevels; m++ {
		var srcView *wgpu.TextureView
		if m == 0 {
			srcView = depth.View
		} else {
			srcView = pyramid.MipViews[m-1]
		}
		dstView := pyramid.MipViews[m]

		label := fmt.Sprintf("hiz/reduce/frame%d/mip%d", f, m)
		bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  label,
			Layout: c.reduceLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: srcView},
				{Binding: 1, TextureView: dstView},
			},
		})
		if err != nil {
			return fmt.Errorf("mjolnir: create %s: %w: %w", label, err, ErrDeviceAllocationFailed)
		}
		fr.DepthReduceSets[m] = bg
	}
	return nil
}

// buildLateCullSet builds frame f's late-cull descriptor set, binding
// frame PyramidFrameForLateCull(f)'s depth pyramid — by
// construction this is always a fully-reduced pyramid from a completed
// frame, never the one currently being written (spec §4.10, §8 item 5).
// This set binds only the pyramid sampler/view; the node, mesh,
// world-matrix, camera, and draw-command buffers the spec's late-cull
// pass also reads are each bound from their own Bindless/PerFrameBindless
// descriptor set rather than folded into this one, since every such
// buffer already owns a set of its own (spec §9 "composition over
// aggregation of GPU objects").
func (c *Camera) buildLateCullSet(images *pool.Pool[Image], f int) error {
	sourceFrame := PyramidFrameForLateCull(f)
	pyramid, ok := images.Get(c.frames[sourceFrame].Pyramid)
	if !ok {
		return fmt.Errorf("mjolnir: late-cull source frame %d pyramid handle invalid", sourceFrame)
	}

	label := fmt.Sprintf("hiz/late-cull/frame%d", f)
	bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: c.culledLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: c.pyramidSampler},
			{Binding: 1, TextureView: pyramid.View},
		},
	})
	if err != nil {
		return fmt.Errorf("mjolnir: create %s: %w: %w", label, err, ErrDeviceAllocationFailed)
	}
	c.frames[f].LateCullSet = bg
	return nil
}

func (c *Camera) destroyHiZDescriptors() {
	for f := range c.frames {
		for i, bg := range c.frames[f].DepthReduceSets {
			if bg != nil {
				bg.Release()
				c.frames[f].DepthReduceSets[i] = nil
			}
		}
		if c.frames[f].LateCullSet != nil {
			c.frames[f].LateCullSet.Release()
			c.frames[f].LateCullSet = nil
		}
	}
}
