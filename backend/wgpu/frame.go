//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/geom"
	"github.com/gogpu/webgl/internal/shader"
)

// copyPitchAlignment is the WebGPU row alignment for texture-to-buffer copies.
const copyPitchAlignment = 256

// ErrFrameInProgress is returned by BeginFrame and ReadPixels while a frame
// is being recorded.
var ErrFrameInProgress = errors.New("wgpu: frame in progress")

// frameState holds the command encoder of the frame being recorded and
// the per-draw objects released once the frame completes.
type frameState struct {
	info    gpucore.Frame
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	buffers []hal.Buffer
	groups  []hal.BindGroup
}

// BeginFrame begins a render pass that clears color, depth and stencil.
func (c *Context) BeginFrame(f gpucore.Frame) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	if c.frame != nil {
		return ErrFrameInProgress
	}

	encoder, err := c.gpu.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "webgl_frame"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("webgl_frame"); err != nil {
		encoder.Destroy()
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	t := c.target
	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "webgl_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.colorView,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(f.ClearColor[0]),
				G: float64(f.ClearColor[1]),
				B: float64(f.ClearColor[2]),
				A: float64(f.ClearColor[3]),
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   f.ClearDepth,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})

	w := min(uint32(max(f.Width, 1)), t.width)  //nolint:gosec // clamped positive
	h := min(uint32(max(f.Height, 1)), t.height) //nolint:gosec // clamped positive
	pass.SetViewport(0, 0, float32(w), float32(h), 0, 1)

	c.frame = &frameState{info: f, encoder: encoder, pass: pass}
	return nil
}

// expandedTopology is the topology actually drawn for t.
func expandedTopology(t gpucore.Topology) gpucore.Topology {
	switch t {
	case gpucore.TopologyTriangleFan:
		return gpucore.TopologyTriangles
	case gpucore.TopologyLineLoop:
		return gpucore.TopologyLineStrip
	default:
		return t
	}
}

// DrawElements records an indexed draw with the current program, bindings
// and state.
func (c *Context) DrawElements(topology gpucore.Topology, count int) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	switch {
	case c.frame == nil:
		return gpucore.ErrNoFrame
	case c.programs[c.current] == nil:
		return gpucore.ErrNoProgram
	case c.index == gpucore.InvalidID:
		return gpucore.ErrNoIndexBuffer
	}
	ib := c.buffers[c.index]
	if count > len(ib.indices) {
		return fmt.Errorf("%w: %d > %d", gpucore.ErrIndexRange, count, len(ib.indices))
	}
	if count <= 0 {
		return nil
	}

	indexBuf, indexCount, err := c.indexBuffer(ib, topology, count)
	if err != nil {
		return err
	}
	if indexCount == 0 {
		return nil
	}

	p := c.programs[c.current]
	key := pipelineKey{
		program:  c.current,
		topology: primitiveTopology(expandedTopology(topology)),
		state:    c.state.PipelineKey(),
	}
	layouts, vertexBufs, err := c.vertexBuffers(p, &key)
	if err != nil {
		return err
	}
	pl, err := c.pipeline(p, key, layouts)
	if err != nil {
		return err
	}
	groups, err := c.bindGroups(p)
	if err != nil {
		return err
	}

	pass := c.frame.pass
	pass.SetPipeline(pl)
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g, nil) //nolint:gosec // bounded by the group count
	}
	for slot, buf := range vertexBufs {
		pass.SetVertexBuffer(uint32(slot), buf, 0) //nolint:gosec // bounded by maxVertexBuffers
	}
	pass.SetIndexBuffer(indexBuf, gputypes.IndexFormatUint16, 0)
	c.setDynamicState(pass)
	pass.DrawIndexed(uint32(indexCount), 1, 0, 0, 0) //nolint:gosec // bounded by the index buffer
	c.stats.Draws++
	return nil
}

// vertexBuffers lays out one buffer per vertex input in location order and
// records the formats in key. Inputs without a bound buffer read zeros.
func (c *Context) vertexBuffers(p *gpuProgram, key *pipelineKey) ([]gputypes.VertexBufferLayout, []hal.Buffer, error) {
	inputs := p.prog.Vertex.Inputs()
	layouts := make([]gputypes.VertexBufferLayout, len(inputs))
	bufs := make([]hal.Buffer, len(inputs))
	for slot, in := range inputs {
		kind := in.Kind
		var stride uint64
		var buf hal.Buffer
		if a, ok := c.attributes[in.Location]; ok && in.Active {
			kind = a.kind
			stride = uint64(kind.Size()) //nolint:gosec // at most 16
			buf = c.buffers[a.buffer].buf
		} else {
			zero, err := c.zeroBuffer()
			if err != nil {
				return nil, nil, err
			}
			buf = zero
		}
		format, ok := vertexFormat(kind)
		if !ok {
			return nil, nil, fmt.Errorf("wgpu: vertex input %q: %w", in.Name,
				&gpucore.UnsupportedTypeError{Name: in.Name, Type: in.Type})
		}
		key.formats[slot] = format
		layouts[slot] = gputypes.VertexBufferLayout{
			ArrayStride: stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: format, Offset: 0, ShaderLocation: in.Location},
			},
		}
		bufs[slot] = buf
	}
	return layouts, bufs, nil
}

// bindGroups creates this draw's bind groups. Uniform values are copied
// into fresh buffers so that every draw of a frame sees its own values.
func (c *Context) bindGroups(p *gpuProgram) ([]hal.BindGroup, error) {
	entries := make([][]gputypes.BindGroupEntry, len(p.groups))
	for _, b := range p.prog.Bindings() {
		var res gputypes.BindingResource
		switch b.Class {
		case shader.ClassUniform:
			data := uniformBytes(p.uniforms[b.Location], b.Size)
			buf, size, err := c.uploadBuffer("webgl_uniform_"+b.Name, gputypes.BufferUsageUniform, data)
			if err != nil {
				return nil, err
			}
			c.frame.buffers = append(c.frame.buffers, buf)
			res = gputypes.BufferBinding{Buffer: buf.NativeHandle(), Size: size}
		case shader.ClassTexture:
			t, err := c.boundTexture(p, b.Location)
			if err != nil {
				return nil, err
			}
			res = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
		case shader.ClassSampler:
			loc := b.Location
			if tb, ok := p.prog.SamplerTexture(loc); ok {
				loc = tb.Location
			}
			t, err := c.boundTexture(p, loc)
			if err != nil {
				return nil, err
			}
			res = gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()}
		default:
			continue
		}
		g := b.Location.Group
		entries[g] = append(entries[g], gputypes.BindGroupEntry{Binding: b.Location.Binding, Resource: res})
	}

	groups := make([]hal.BindGroup, len(p.groups))
	for g, layout := range p.groups {
		group, err := c.gpu.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("webgl_group_%d", g),
			Layout:  layout,
			Entries: entries[g],
		})
		if err != nil {
			return nil, fmt.Errorf("wgpu: create bind group %d: %w", g, err)
		}
		c.frame.groups = append(c.frame.groups, group)
		groups[g] = group
	}
	return groups, nil
}

// boundTexture resolves the texture a sampler2D uniform samples through
// its texture unit. Unassigned samplers and empty units sample white.
func (c *Context) boundTexture(p *gpuProgram, loc gpucore.Location) (*gpuTexture, error) {
	if unit, ok := p.samplers[loc]; ok {
		if t, ok := c.textures[c.units[unit]]; ok {
			return t, nil
		}
	}
	return c.whiteTexture()
}

// uniformBytes encodes v into a zeroed block of at least size bytes,
// rounded up to 16 for uniform buffer alignment.
func uniformBytes(v gpucore.Value, size uint32) []byte {
	n := max(int(size), 16)
	if v != nil {
		n = max(n, v.Kind().Size())
	}
	data := make([]byte, (n+15)&^15)
	if f, ok := gpucore.AppendFloats(nil, v); ok {
		copy(data, geom.Float32Bytes(f))
	} else if ints, ok := gpucore.AppendInts(nil, v); ok {
		copy(data, geom.Int32Bytes(ints))
	}
	return data
}

// setDynamicState applies the scissor rectangle, blend constant and
// stencil reference of the current state.
func (c *Context) setDynamicState(pass hal.RenderPassEncoder) {
	t := c.target
	if c.state.Enabled(gpucore.CapScissorTest) {
		x, y, w, h := clampRect(c.state.Scissor, int(t.width), int(t.height))
		pass.SetScissorRect(x, y, w, h)
	} else {
		pass.SetScissorRect(0, 0, t.width, t.height)
	}
	k := c.state.Blend.Constant
	pass.SetBlendConstant(&gputypes.Color{R: float64(k[0]), G: float64(k[1]), B: float64(k[2]), A: float64(k[3])})
	pass.SetStencilReference(c.state.StencilFront.Ref)
}

// clampRect intersects an x, y, width, height rectangle with the target.
func clampRect(r [4]int, width, height int) (x, y, w, h uint32) {
	rect := image.Rect(r[0], r[1], r[0]+max(r[2], 0), r[1]+max(r[3], 0)).
		Intersect(image.Rect(0, 0, width, height))
	return uint32(rect.Min.X), uint32(rect.Min.Y), uint32(rect.Dx()), uint32(rect.Dy()) //nolint:gosec // intersected with the target
}

// EndFrame submits the frame and waits for the GPU to finish it.
func (c *Context) EndFrame() error {
	f := c.frame
	if f == nil {
		return gpucore.ErrNoFrame
	}
	c.frame = nil
	defer c.releaseFrame(f)

	f.pass.End()
	cmd, err := f.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer c.gpu.device.FreeCommandBuffer(cmd)

	if _, err := c.gpu.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := c.gpu.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	c.stats.Frames++
	return nil
}

// abortFrame discards a frame that will never be submitted.
func (c *Context) abortFrame() {
	f := c.frame
	c.frame = nil
	f.pass.End()
	f.encoder.DiscardEncoding()
	c.releaseFrame(f)
}

func (c *Context) releaseFrame(f *frameState) {
	dev := c.gpu.device
	for _, g := range f.groups {
		dev.DestroyBindGroup(g)
	}
	for _, b := range f.buffers {
		dev.DestroyBuffer(b)
	}
	f.encoder.Destroy()
}

// ReadPixels copies the color target of the last frame into an image.
// Rows are in framebuffer order: the first row is y = 0.
func (c *Context) ReadPixels() (*image.NRGBA, error) {
	if c.closed {
		return nil, gpucore.ErrClosed
	}
	if c.frame != nil {
		return nil, ErrFrameInProgress
	}
	dev := c.gpu.device
	t := c.target
	bytesPerRow := t.width * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(t.height)

	staging, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "webgl_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(staging)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "webgl_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("webgl_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: alignedBytesPerRow, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.color, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmd)
	if _, err := c.gpu.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := dev.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	mapping, err := dev.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	readback := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewNRGBA(image.Rect(0, 0, int(t.width), int(t.height)))
	for row := 0; row < int(t.height); row++ {
		src := readback[row*int(alignedBytesPerRow):]
		copy(img.Pix[row*img.Stride:(row+1)*img.Stride], src[:bytesPerRow])
	}
	if err := dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return img, nil
}
