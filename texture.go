package mjolnir

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mjolnir-engine/mjolnir/pool"
)

// Texture2D wraps a pool-managed 2D Image with the reference-counting
// and auto-purge bookkeeping materials reference it by (spec §4.9).
type Texture2D struct {
	Image     Handle
	RefCount  uint32
	AutoPurge bool
}

// CreateTexture2D allocates a 2D image in images and returns its Handle.
// It keeps no reference-count bookkeeping and does not record autoPurge;
// Manager.CreateTexture2D registers the returned Handle with RefCount 0
// and the given autoPurge flag.
func CreateTexture2D(device *wgpu.Device, images *pool.Pool[Image], label string, format wgpu.TextureFormat, width, height uint32, autoPurge bool) (Handle, error) {
	img, err := CreateImage(device, label, format, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, width, height)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := images.Alloc()
	if err != nil {
		img.Destroy()
		return Handle{}, fmt.Errorf("mjolnir: allocate texture slot %q: %w", label, ErrCapacityExhausted)
	}
	*slot = *img
	return h, nil
}

// CreateCubeTexture allocates a cube image analogously to CreateTexture2D.
func CreateCubeTexture(device *wgpu.Device, images *pool.Pool[CubeImage], label string, format wgpu.TextureFormat, size uint32, autoPurge bool) (Handle, error) {
	img, err := CreateCubeImage(device, label, format, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, size)
	if err != nil {
		return Handle{}, err
	}
	h, slot, err := images.Alloc()
	if err != nil {
		img.Destroy()
		return Handle{}, fmt.Errorf("mjolnir: allocate cube texture slot %q: %w", label, ErrCapacityExhausted)
	}
	*slot = *img
	return h, nil
}

// refCounts tracks ref_count/auto_purge bookkeeping for one resource
// pool's worth of handles, keyed by the full generational Handle so a
// reused slot index never inherits a stale handle's bookkeeping. It is
// shared by Texture2D, CubeImage, Mesh, and Material reference tracking
// (spec §4.9).
type refCounts struct {
	counts    map[Handle]uint32
	autoPurge map[Handle]bool
}

func newRefCounts() *refCounts {
	return &refCounts{counts: make(map[Handle]uint32), autoPurge: make(map[Handle]bool)}
}

// Ref increments h's reference count, registering it at 0 first if unseen.
func (r *refCounts) Ref(h Handle, autoPurge bool) {
	if _, ok := r.counts[h]; !ok {
		r.autoPurge[h] = autoPurge
	}
	r.counts[h]++
}

// Unref decrements h's reference count, saturating at zero (spec §4.9
// "ref-count saturates at zero rather than underflowing").
func (r *refCounts) Unref(h Handle) {
	c := r.counts[h]
	if c > 0 {
		r.counts[h] = c - 1
	}
}

// Count returns h's current reference count.
func (r *refCounts) Count(h Handle) uint32 { return r.counts[h] }

// Purgeable reports whether h has a zero reference count and auto-purge
// enabled.
func (r *refCounts) Purgeable(h Handle) bool {
	return r.counts[h] == 0 && r.autoPurge[h]
}

// Forget removes h's bookkeeping entirely, called once h's underlying
// slot has actually been freed.
func (r *refCounts) Forget(h Handle) {
	delete(r.counts, h)
	delete(r.autoPurge, h)
}

// Each visits every handle currently tracked, purgeable or not.
func (r *refCounts) Each(fn func(h Handle)) {
	for h := range r.counts {
		fn(h)
	}
}
