package mjolnir

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// bufferUsage is the storage-buffer usage mask every bindless buffer in
// this manager carries: shaders read it as a storage buffer, and the
// Manager writes it directly from the CPU.
const bufferUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

// sliceBytes reinterprets a slice of plain-old-data structs as a byte
// slice for a WriteBuffer call, the same unsafe-cast idiom the teacher
// uses for particle instance uploads (manager.go's UpdateParticles).
func sliceBytes[T any](items []T) []byte {
	if len(items) == 0 {
		return nil
	}
	size := len(items) * int(unsafe.Sizeof(items[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&items[0])), size)
}

func structBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// Bindless is a single device buffer bound to one descriptor set at a
// fixed set index. Writes are visible to every in-flight frame the
// instant they land; per spec §5 it is the caller's responsibility to
// ensure no frame reads a slot that a write is still racing with — the
// manager does not serialize that for them.
type Bindless[T any] struct {
	device     *wgpu.Device
	label      string
	count      uint32
	stride     uint32
	buffer     *wgpu.Buffer
	layout     *wgpu.BindGroupLayout
	group      *wgpu.BindGroup
	bindingIdx uint32
}

// NewBindless allocates a zero-initialized Bindless buffer sized for
// count elements of T, plus its descriptor-set layout and descriptor
// set at binding index bindingIdx. extraUsage ORs additional buffer
// usage flags onto the default storage/copy mask — used by the
// draw-count and draw-command buffers, which also need
// wgpu.BufferUsageIndirect (spec §4.4).
func NewBindless[T any](device *wgpu.Device, name string, count uint32, bindingIdx uint32, extraUsage ...wgpu.BufferUsage) (*Bindless[T], error) {
	var zero T
	stride := uint32(unsafe.Sizeof(zero))
	size := uint64(stride) * uint64(count)
	if size == 0 {
		size = uint64(stride) // never request a zero-size buffer
	}

	usage := bufferUsage
	for _, u := range extraUsage {
		usage |= u
	}

	label := fmt.Sprintf("%s/%s", name, uuid.NewString())
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("mjolnir: create bindless buffer %q: %w: %w", name, err, ErrDeviceAllocationFailed)
	}

	b := &Bindless[T]{
		device:     device,
		label:      label,
		count:      count,
		stride:     stride,
		buffer:     buf,
		bindingIdx: bindingIdx,
	}
	if err := b.createDescriptors(); err != nil {
		buf.Release()
		return nil, err
	}
	return b, nil
}

func (b *Bindless[T]) createDescriptors() error {
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: b.label + "/layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    b.bindingIdx,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
		}},
	})
	if err != nil {
		return fmt.Errorf("mjolnir: create bind group layout %q: %w: %w", b.label, err, ErrDeviceAllocationFailed)
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  b.label + "/group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: b.bindingIdx,
			Buffer:  b.buffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		layout.Release()
		return fmt.Errorf("mjolnir: create bind group %q: %w: %w", b.label, err, ErrDeviceAllocationFailed)
	}
	b.layout = layout
	b.group = group
	return nil
}

// Write updates the backing buffer at slot. It is visible to every
// in-flight frame as soon as the write lands.
func (b *Bindless[T]) Write(slot uint32, value T) {
	b.device.GetQueue().WriteBuffer(b.buffer, uint64(slot)*uint64(b.stride), structBytes(&value))
}

// WriteRange uploads values as a contiguous run starting at offset, in a
// single queue write — the bulk-upload path for streamed geometry (the
// vertex and index buffers), as opposed to Write's single-slot update.
func (b *Bindless[T]) WriteRange(offset uint32, values []T) {
	if len(values) == 0 {
		return
	}
	b.device.GetQueue().WriteBuffer(b.buffer, uint64(offset)*uint64(b.stride), sliceBytes(values))
}

// Layout returns the descriptor-set layout bound at manager init.
func (b *Bindless[T]) Layout() *wgpu.BindGroupLayout { return b.layout }

// Group returns the descriptor set shaders index into.
func (b *Bindless[T]) Group() *wgpu.BindGroup { return b.group }

// Buffer returns the underlying device buffer.
func (b *Bindless[T]) Buffer() *wgpu.Buffer { return b.buffer }

// Destroy releases the buffer, layout, and descriptor set, in reverse
// order of acquisition.
func (b *Bindless[T]) Destroy() {
	if b.group != nil {
		b.group.Release()
	}
	if b.layout != nil {
		b.layout.Release()
	}
	if b.buffer != nil {
		b.buffer.Release()
	}
}

// PerFrameBindless replicates a Bindless buffer FramesInFlight times.
// Writes to frame f are safe while any other frame g != f is still
// rendering — the replication itself is what encodes the "no write-read
// overlap" discipline, rather than pushing it onto the caller.
type PerFrameBindless[T any] struct {
	device     *wgpu.Device
	label      string
	count      uint32
	stride     uint32
	bindingIdx uint32
	buffers    [FramesInFlight]*wgpu.Buffer
	layouts    [FramesInFlight]*wgpu.BindGroupLayout
	groups     [FramesInFlight]*wgpu.BindGroup
}

// NewPerFrameBindless allocates FramesInFlight independent buffers, each
// sized for count elements of T.
func NewPerFrameBindless[T any](device *wgpu.Device, name string, count uint32, bindingIdx uint32) (*PerFrameBindless[T], error) {
	var zero T
	stride := uint32(unsafe.Sizeof(zero))
	size := uint64(stride) * uint64(count)
	if size == 0 {
		size = uint64(stride)
	}

	p := &PerFrameBindless[T]{
		device:     device,
		label:      fmt.Sprintf("%s/%s", name, uuid.NewString()),
		count:      count,
		stride:     stride,
		bindingIdx: bindingIdx,
	}

	for f := 0; f < FramesInFlight; f++ {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s/frame%d", p.label, f),
			Size:  size,
			Usage: bufferUsage,
		})
		if err != nil {
			p.releaseUpTo(f)
			return nil, fmt.Errorf("mjolnir: create per-frame buffer %q frame %d: %w: %w", name, f, err, ErrDeviceAllocationFailed)
		}
		p.buffers[f] = buf

		layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: fmt.Sprintf("%s/frame%d/layout", p.label, f),
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    bindingIdx,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
			}},
		})
		if err != nil {
			p.releaseUpTo(f + 1)
			return nil, fmt.Errorf("mjolnir: create per-frame layout %q frame %d: %w: %w", name, f, err, ErrDeviceAllocationFailed)
		}
		p.layouts[f] = layout

		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("%s/frame%d/group", p.label, f),
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: bindingIdx,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			}},
		})
		if err != nil {
			p.releaseUpTo(f + 1)
			return nil, fmt.Errorf("mjolnir: create per-frame group %q frame %d: %w: %w", name, f, err, ErrDeviceAllocationFailed)
		}
		p.groups[f] = group
	}
	return p, nil
}

func (p *PerFrameBindless[T]) releaseUpTo(n int) {
	for f := n - 1; f >= 0; f-- {
		if p.groups[f] != nil {
			p.groups[f].Release()
		}
		if p.layouts[f] != nil {
			p.layouts[f].Release()
		}
		if p.buffers[f] != nil {
			p.buffers[f].Release()
		}
	}
}

// WriteFrame writes value to slot within frame f's buffer only.
func (p *PerFrameBindless[T]) WriteFrame(f int, slot uint32, value T) {
	p.device.GetQueue().WriteBuffer(p.buffers[f], uint64(slot)*uint64(p.stride), structBytes(&value))
}

// Layout returns frame f's descriptor-set layout.
func (p *PerFrameBindless[T]) Layout(f int) *wgpu.BindGroupLayout { return p.layouts[f] }

// Group returns frame f's descriptor set.
func (p *PerFrameBindless[T]) Group(f int) *wgpu.BindGroup { return p.groups[f] }

// Buffer returns frame f's underlying device buffer.
func (p *PerFrameBindless[T]) Buffer(f int) *wgpu.Buffer { return p.buffers[f] }

// Destroy releases every frame's buffer, layout, and descriptor set.
func (p *PerFrameBindless[T]) Destroy() {
	p.releaseUpTo(FramesInFlight)
}

// Immutable is a device-local buffer whose regions are each written
// exactly once, as the owning resource (e.g. a mesh's skinning data) is
// created, rather than rewritten every frame the way Bindless/
// PerFrameBindless are. It still supports Write after construction — the
// "immutable" contract is per-region, not "the whole buffer is read-only
// after NewImmutable returns" (spec §4.3, §4.11 "vertex skinning
// (immutable bindless)").
type Immutable[T any] struct {
	device *wgpu.Device
	stride uint32
	buffer *wgpu.Buffer
	layout *wgpu.BindGroupLayout
	group  *wgpu.BindGroup
}

// NewImmutable uploads data once and returns the resulting buffer plus
// its descriptor set.
func NewImmutable[T any](device *wgpu.Device, name string, data []T, bindingIdx uint32) (*Immutable[T], error) {
	bytes := sliceBytes(data)
	size := uint64(len(bytes))
	if size == 0 {
		var zero T
		size = uint64(unsafe.Sizeof(zero))
	}
	label := fmt.Sprintf("%s/%s", name, uuid.NewString())
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: bufferUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("mjolnir: create immutable buffer %q: %w: %w", name, err, ErrDeviceAllocationFailed)
	}
	if len(bytes) > 0 {
		device.GetQueue().WriteBuffer(buf, 0, bytes)
	}

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label + "/layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    bindingIdx,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		}},
	})
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("mjolnir: create immutable layout %q: %w: %w", name, err, ErrDeviceAllocationFailed)
	}
	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + "/group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: bindingIdx,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		layout.Release()
		buf.Release()
		return nil, fmt.Errorf("mjolnir: create immutable group %q: %w: %w", name, err, ErrDeviceAllocationFailed)
	}

	return &Immutable[T]{device: device, stride: uint32(unsafe.Sizeof(*new(T))), buffer: buf, layout: layout, group: group}, nil
}

func (i *Immutable[T]) Buffer() *wgpu.Buffer          { return i.buffer }
func (i *Immutable[T]) Layout() *wgpu.BindGroupLayout { return i.layout }
func (i *Immutable[T]) Group() *wgpu.BindGroup        { return i.group }

// Write uploads values as a contiguous run starting at offset — the
// per-region upload a skinning buffer needs each time a new skinned mesh
// is created, since the buffer as a whole is written well after
// NewImmutable's initial (empty) allocation.
func (i *Immutable[T]) Write(offset uint32, values []T) {
	if len(values) == 0 {
		return
	}
	i.device.GetQueue().WriteBuffer(i.buffer, uint64(offset)*uint64(i.stride), sliceBytes(values))
}

func (i *Immutable[T]) Destroy() {
	if i.group != nil {
		i.group.Release()
	}
	if i.layout != nil {
		i.layout.Release()
	}
	if i.buffer != nil {
		i.buffer.Release()
	}
}
