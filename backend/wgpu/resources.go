//go:build !nogpu

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/geom"
	"github.com/gogpu/webgl/render"
)

// zeroBufferSize covers the largest vertex format read with stride 0.
const zeroBufferSize = 16

type expandKey struct {
	topology gpucore.Topology
	count    int
}

type expandedIndex struct {
	buf   hal.Buffer
	count int
}

type gpuBuffer struct {
	target gpucore.BufferTarget
	buf    hal.Buffer
	size   uint64

	// indices is the CPU copy of an index buffer, kept for expansion.
	indices  []uint16
	expanded map[expandKey]expandedIndex
}

func (b *gpuBuffer) destroy(dev hal.Device) {
	dev.DestroyBuffer(b.buf)
	for _, e := range b.expanded {
		dev.DestroyBuffer(e.buf)
	}
}

type gpuTexture struct {
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	width   int
	height  int
}

func (t *gpuTexture) destroy(dev hal.Device) {
	dev.DestroySampler(t.sampler)
	dev.DestroyTextureView(t.view)
	dev.DestroyTexture(t.tex)
}

// renderTarget is the offscreen color and depth/stencil attachment pair.
type renderTarget struct {
	width, height uint32
	color         hal.Texture
	colorView     hal.TextureView
	depth         hal.Texture
	depthView     hal.TextureView
}

// uploadBuffer creates a buffer with usage plus CopyDst and writes data.
// Sizes are rounded up to four bytes for the copy.
func (c *Context) uploadBuffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, uint64, error) {
	size := uint64(max(len(data), 4)+3) &^ 3 //nolint:gosec // len is non-negative
	buf, err := c.gpu.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create buffer %s: %w", label, err)
	}
	if len(data) > 0 {
		if len(data)%4 != 0 {
			padded := make([]byte, size)
			copy(padded, data)
			data = padded
		}
		if err := c.gpu.queue.WriteBuffer(buf, 0, data); err != nil {
			c.gpu.device.DestroyBuffer(buf)
			return nil, 0, fmt.Errorf("wgpu: write buffer %s: %w", label, err)
		}
	}
	return buf, size, nil
}

// CreateBuffer uploads data into a new vertex or index buffer.
func (c *Context) CreateBuffer(target gpucore.BufferTarget, data []byte) (gpucore.BufferID, error) {
	if c.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	id := gpucore.BufferID(c.id())
	usage := gputypes.BufferUsageVertex
	label := fmt.Sprintf("webgl_vertex_%d", id)
	if target == gpucore.BufferIndex {
		usage = gputypes.BufferUsageIndex
		label = fmt.Sprintf("webgl_index_%d", id)
	}
	buf, size, err := c.uploadBuffer(label, usage, data)
	if err != nil {
		return gpucore.InvalidID, err
	}
	b := &gpuBuffer{target: target, buf: buf, size: size}
	if target == gpucore.BufferIndex {
		b.indices = geom.Uint16s(data, len(data)/2)
	}
	c.buffers[id] = b
	c.stats.Buffers++
	return id, nil
}

// indexBuffer returns the buffer and index count to draw count indices of
// b with topology, expanding fans and loops on first use.
func (c *Context) indexBuffer(b *gpuBuffer, topology gpucore.Topology, count int) (hal.Buffer, int, error) {
	if topology != gpucore.TopologyTriangleFan && topology != gpucore.TopologyLineLoop {
		return b.buf, count, nil
	}
	key := expandKey{topology: topology, count: count}
	if e, ok := b.expanded[key]; ok {
		return e.buf, e.count, nil
	}
	indices, _ := geom.ExpandIndices(b.indices[:count], topology)
	buf, _, err := c.uploadBuffer(fmt.Sprintf("webgl_index_%s", topology), gputypes.BufferUsageIndex, geom.Uint16Bytes(indices))
	if err != nil {
		return nil, 0, err
	}
	if b.expanded == nil {
		b.expanded = make(map[expandKey]expandedIndex)
	}
	b.expanded[key] = expandedIndex{buf: buf, count: len(indices)}
	return buf, len(indices), nil
}

// CreateTexture uploads an RGBA8 texture. Linear textures keep every
// supplied mip level; nearest textures use the base level only.
func (c *Context) CreateTexture(levels []*image.NRGBA, filter gpucore.Filter) (gpucore.TextureID, error) {
	if c.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	if len(levels) == 0 || levels[0] == nil || levels[0].Rect.Empty() {
		return gpucore.InvalidID, fmt.Errorf("wgpu: texture without pixels: %w", gpucore.ErrInvalidSize)
	}
	if r := levels[0].Rect; max(r.Dx(), r.Dy()) > c.maxTexture {
		return gpucore.InvalidID, fmt.Errorf("wgpu: texture %dx%d exceeds %d: %w",
			r.Dx(), r.Dy(), c.maxTexture, gpucore.ErrInvalidSize)
	}
	if filter == gpucore.FilterNearest {
		levels = levels[:1]
	}
	id := gpucore.TextureID(c.id())
	t, err := c.createTexture(fmt.Sprintf("webgl_texture_%d", id), levels, filter)
	if err != nil {
		return gpucore.InvalidID, err
	}
	c.textures[id] = t
	c.stats.Textures++
	return id, nil
}

func (c *Context) createTexture(label string, levels []*image.NRGBA, filter gpucore.Filter) (*gpuTexture, error) {
	dev := c.gpu.device
	base := levels[0].Rect
	desc := render.DefaultTextureDescriptor(uint32(base.Dx()), uint32(base.Dy()), colorFormat) //nolint:gosec // image sizes are positive
	desc.Label = label
	desc.MipLevelCount = uint32(len(levels))
	desc.Usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst

	tex, err := dev.CreateTexture(desc.HAL())
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	for i, level := range levels {
		if err := c.writeLevel(tex, uint32(i), level); err != nil { //nolint:gosec // small mip index
			dev.DestroyTexture(tex)
			return nil, err
		}
	}

	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        colorFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: desc.MipLevelCount,
	})
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	sampler, err := dev.CreateSampler(samplerDescriptor(label+"_sampler", filter, len(levels)))
	if err != nil {
		dev.DestroyTextureView(view)
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	return &gpuTexture{tex: tex, view: view, sampler: sampler, width: base.Dx(), height: base.Dy()}, nil
}

// writeLevel uploads one mip level. Rows are repacked when the image
// stride carries padding.
func (c *Context) writeLevel(tex hal.Texture, mip uint32, img *image.NRGBA) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowBytes := w * 4
	pix := img.Pix
	if img.Stride != rowBytes || len(pix) != rowBytes*h {
		pix = make([]byte, rowBytes*h)
		for y := range h {
			src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
			copy(pix[y*rowBytes:(y+1)*rowBytes], src[:rowBytes])
		}
	}
	err := c.gpu.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: mip, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(rowBytes), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture level %d: %w", mip, err)
	}
	return nil
}

// samplerDescriptor clamps to the edge on both axes. Linear filtering
// interpolates between mip levels; nearest filtering samples level 0.
func samplerDescriptor(label string, filter gpucore.Filter, levels int) *hal.SamplerDescriptor {
	desc := &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		LodMaxClamp:  float32(levels),
		Anisotropy:   1,
	}
	if filter == gpucore.FilterNearest {
		desc.MagFilter = gputypes.FilterModeNearest
		desc.MinFilter = gputypes.FilterModeNearest
		desc.MipmapFilter = gputypes.FilterModeNearest
		desc.LodMaxClamp = 0
	}
	return desc
}

// whiteTexture returns the 1x1 texture sampled by unbound samplers.
func (c *Context) whiteTexture() (*gpuTexture, error) {
	if c.white != nil {
		return c.white, nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	t, err := c.createTexture("webgl_white", []*image.NRGBA{img}, gpucore.FilterNearest)
	if err != nil {
		return nil, err
	}
	c.white = t
	return t, nil
}

// zeroBuffer returns the buffer bound to declared but inactive inputs.
func (c *Context) zeroBuffer() (hal.Buffer, error) {
	if c.zero != nil {
		return c.zero, nil
	}
	buf, _, err := c.uploadBuffer("webgl_zero_vertex", gputypes.BufferUsageVertex, make([]byte, zeroBufferSize))
	if err != nil {
		return nil, err
	}
	c.zero = buf
	return buf, nil
}

// createTarget allocates the color and depth/stencil attachments.
func (c *Context) createTarget(width, height int) error {
	dev := c.gpu.device
	t := &renderTarget{width: uint32(width), height: uint32(height)} //nolint:gosec // validated positive

	colorDesc := render.DefaultTextureDescriptor(t.width, t.height, colorFormat)
	colorDesc.Label = "webgl_color"
	colorDesc.Usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	color, err := dev.CreateTexture(colorDesc.HAL())
	if err != nil {
		return fmt.Errorf("wgpu: create color target: %w", err)
	}
	t.color = color
	t.colorView, err = dev.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label:         "webgl_color_view",
		Format:        colorFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		dev.DestroyTexture(color)
		return fmt.Errorf("wgpu: create color view: %w", err)
	}

	depthDesc := render.DefaultTextureDescriptor(t.width, t.height, depthStencilFormat)
	depthDesc.Label = "webgl_depth_stencil"
	depthDesc.Usage = gputypes.TextureUsageRenderAttachment
	depth, err := dev.CreateTexture(depthDesc.HAL())
	if err != nil {
		dev.DestroyTextureView(t.colorView)
		dev.DestroyTexture(color)
		return fmt.Errorf("wgpu: create depth target: %w", err)
	}
	t.depth = depth
	t.depthView, err = dev.CreateTextureView(depth, &hal.TextureViewDescriptor{
		Label:         "webgl_depth_stencil_view",
		Format:        depthStencilFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		dev.DestroyTexture(depth)
		dev.DestroyTextureView(t.colorView)
		dev.DestroyTexture(color)
		return fmt.Errorf("wgpu: create depth view: %w", err)
	}
	c.target = t
	return nil
}

func (c *Context) destroyTarget() {
	t := c.target
	if t == nil {
		return
	}
	dev := c.gpu.device
	dev.DestroyTextureView(t.depthView)
	dev.DestroyTexture(t.depth)
	dev.DestroyTextureView(t.colorView)
	dev.DestroyTexture(t.color)
	c.target = nil
}
