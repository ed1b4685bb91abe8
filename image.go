package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Image is a device 2D texture plus its view(s), pool-managed so the
// image pool remains the single source of truth for GPU image lifetime
// (spec §9 "composition over aggregation of GPU objects") — Camera and
// Light reference images only by Handle, never by holding the
// *wgpu.Texture directly.
type Image struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	// MipViews holds one single-mip view per level when MipLevels > 1
	// (used by the depth pyramid); nil for single-mip images.
	MipViews []*wgpu.TextureView
	Format   wgpu.TextureFormat
	Width    uint32
	Height   uint32
	MipLevels uint32
}

// CreateImage allocates a single-mip 2D image of the given format and
// extent.
func CreateImage(device *wgpu.Device, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage, width, height uint32) (*Image, error) {
	return createImageMipped(device, label, format, usage, width, height, 1)
}

// CreateMippedImage allocates a 2D image with mipLevels levels, plus one
// single-mip TextureView per level (used by the depth pyramid, spec §4.4).
func CreateMippedImage(device *wgpu.Device, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage, width, height, mipLevels uint32) (*Image, error) {
	return createImageMipped(device, label, format, usage, width, height, mipLevels)
}

func createImageMipped(device *wgpu.Device, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage, width, height, mipLevels uint32) (*Image, error) {
	fullLabel := fmt.Sprintf("%s/%s", label, uuid.NewString())
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fullLabel,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: mipLevels,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("mjolnir: create image %q: %w: %w", label, err, ErrDeviceAllocationFailed)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("mjolnir: create image view %q: %w: %w", label, err, ErrDeviceAllocationFailed)
	}

	img := &Image{Texture: tex, View: view, Format: format, Width: width, Height: height, MipLevels: mipLevels}

	if mipLevels > 1 {
		img.MipViews = make([]*wgpu.TextureView, mipLevels)
		for m := uint32(0); m < mipLevels; m++ {
			mv, err := tex.CreateView(&wgpu.TextureViewDescriptor{
				Label:           fmt.Sprintf("%s/mip%d", fullLabel, m),
				Format:          format,
				Dimension:       wgpu.TextureViewDimension2D,
				BaseMipLevel:    m,
				MipLevelCount:   1,
				BaseArrayLayer:  0,
				ArrayLayerCount: 1,
			})
			if err != nil {
				img.Destroy()
				return nil, fmt.Errorf("mjolnir: create image mip view %q level %d: %w: %w", label, m, err, ErrDeviceAllocationFailed)
			}
			img.MipViews[m] = mv
		}
	}

	return img, nil
}

// Destroy releases the view(s) then the texture, in reverse-acquisition
// order.
func (img *Image) Destroy() {
	if img == nil {
		return
	}
	for _, v := range img.MipViews {
		if v != nil {
			v.Release()
		}
	}
	if img.View != nil {
		img.View.Release()
	}
	if img.Texture != nil {
		img.Texture.Release()
	}
}

// CubeImage is a device cube texture plus its cube view, used for
// omnidirectional (point-light) shadow maps.
type CubeImage struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Format  wgpu.TextureFormat
	Size    uint32
}

// CreateCubeImage allocates a size x size x 6-layer cube texture with a
// single cube-dimension view over all six faces.
func CreateCubeImage(device *wgpu.Device, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage, size uint32) (*CubeImage, error) {
	fullLabel := fmt.Sprintf("%s/%s", label, uuid.NewString())
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fullLabel,
		Size:          wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 6},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("mjolnir: create cube image %q: %w: %w", label, err, ErrDeviceAllocationFailed)
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fullLabel + "/view",
		Format:          format,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("mjolnir: create cube image view %q: %w: %w", label, err, ErrDeviceAllocationFailed)
	}

	return &CubeImage{Texture: tex, View: view, Format: format, Size: size}, nil
}

func (img *CubeImage) Destroy() {
	if img == nil {
		return
	}
	if img.View != nil {
		img.View.Release()
	}
	if img.Texture != nil {
		img.Texture.Release()
	}
}
