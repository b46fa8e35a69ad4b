//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/webgl/backend"
	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/shader"
)

// init registers the GPU backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func(cfg backend.Config) (gpucore.Context, error) {
		return New(cfg)
	})
}

type gpuShader struct {
	mod    *shader.Module
	module hal.ShaderModule
}

type gpuProgram struct {
	prog     *shader.Program
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	// groups holds one layout per bind group index, empty groups included.
	groups []hal.BindGroupLayout
	layout hal.PipelineLayout

	uniforms map[gpucore.Location]gpucore.Value
	samplers map[gpucore.Location]int
}

type attributeBinding struct {
	buffer gpucore.BufferID
	kind   gpucore.Kind
}

// Stats reports the GPU objects a Context has created.
type Stats struct {
	Pipelines int
	Buffers   int
	Textures  int
	Draws     int
	Frames    int
}

// Context is a gpucore.Context rendering with the gogpu/wgpu HAL into an
// offscreen RGBA8 color target with a depth/stencil attachment.
//
// Context is not safe for concurrent use.
type Context struct {
	gpu           *gpuDevice
	width, height int
	maxTexture    int
	state         gpucore.State

	nextID    uint64
	shaders   map[gpucore.ShaderID]*gpuShader
	programs  map[gpucore.ProgramID]*gpuProgram
	buffers   map[gpucore.BufferID]*gpuBuffer
	textures  map[gpucore.TextureID]*gpuTexture
	pipelines map[pipelineKey]hal.RenderPipeline

	current    gpucore.ProgramID
	units      map[int]gpucore.TextureID
	attributes map[uint32]attributeBinding
	index      gpucore.BufferID

	target *renderTarget
	// white is sampled by texture bindings with nothing bound.
	white *gpuTexture
	// zero feeds vertex inputs the shader declares but never reads.
	zero hal.Buffer

	frame  *frameState
	stats  Stats
	closed bool
}

var _ gpucore.Context = (*Context)(nil)

// New creates a GPU context of the configured size. It renders on
// cfg.Device when that exposes a HAL device and opens a standalone device
// otherwise.
func New(cfg backend.Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gpu, err := openDevice(cfg.Device)
	if err != nil {
		return nil, err
	}
	c := &Context{
		gpu:        gpu,
		width:      cfg.Width,
		height:     cfg.Height,
		maxTexture: cfg.TextureLimit(),
		state:      gpucore.DefaultState(),
		shaders:    make(map[gpucore.ShaderID]*gpuShader),
		programs:   make(map[gpucore.ProgramID]*gpuProgram),
		buffers:    make(map[gpucore.BufferID]*gpuBuffer),
		textures:   make(map[gpucore.TextureID]*gpuTexture),
		pipelines:  make(map[pipelineKey]hal.RenderPipeline),
		units:      make(map[int]gpucore.TextureID),
		attributes: make(map[uint32]attributeBinding),
	}
	if err := c.createTarget(cfg.Width, cfg.Height); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Name returns the backend identifier.
func (c *Context) Name() string { return backend.BackendWGPU }

// MaxTextureSize returns the largest accepted texture side length. Devices
// are opened with the default limits.
func (c *Context) MaxTextureSize() int { return c.maxTexture }

// Adapter returns the name of the GPU adapter in use.
func (c *Context) Adapter() string { return c.gpu.name }

// Size returns the drawing buffer size.
func (c *Context) Size() (width, height int) { return c.width, c.height }

// Stats returns the creation counters.
func (c *Context) Stats() Stats { return c.stats }

func (c *Context) id() uint64 {
	c.nextID++
	return c.nextID
}

// CompileShader compiles a WGSL stage and creates its shader module.
func (c *Context) CompileShader(stage gpucore.Stage, source string) (gpucore.ShaderID, error) {
	if c.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	m, err := shader.Compile(stage, source)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.ShaderID(c.id())
	module, err := c.gpu.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  fmt.Sprintf("webgl_%s_%d", stage, id),
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return gpucore.InvalidID, &gpucore.CompileError{Stage: stage, Log: err.Error()}
	}
	c.shaders[id] = &gpuShader{mod: m, module: module}
	return id, nil
}

// LinkProgram links two stages and creates their bind group and pipeline
// layouts.
func (c *Context) LinkProgram(vertex, fragment gpucore.ShaderID) (gpucore.ProgramID, error) {
	if c.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	vs, ok := c.shaders[vertex]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %d", gpucore.ErrUnknownShader, vertex)
	}
	fs, ok := c.shaders[fragment]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %d", gpucore.ErrUnknownShader, fragment)
	}
	prog, err := shader.Link(vs.mod, fs.mod)
	if err != nil {
		return gpucore.InvalidID, err
	}
	if n := len(prog.Vertex.Inputs()); n > maxVertexBuffers {
		return gpucore.InvalidID, &gpucore.LinkError{
			Log: fmt.Sprintf("%d vertex inputs exceed the limit of %d", n, maxVertexBuffers),
		}
	}
	for _, b := range prog.Bindings() {
		if b.Class == shader.ClassOther {
			return gpucore.InvalidID, &gpucore.LinkError{
				Log: fmt.Sprintf("binding %s (%s %s) is not a uniform, texture or sampler", b.Location, b.Name, b.Type),
			}
		}
	}

	p := &gpuProgram{
		prog:     prog,
		vertex:   vs.module,
		fragment: fs.module,
		uniforms: make(map[gpucore.Location]gpucore.Value),
		samplers: make(map[gpucore.Location]int),
	}
	id := gpucore.ProgramID(c.id())
	if err := c.createLayouts(id, p); err != nil {
		c.destroyProgram(p)
		return gpucore.InvalidID, err
	}
	c.programs[id] = p
	return id, nil
}

// createLayouts builds one bind group layout per group index up to the
// highest group the program uses.
func (c *Context) createLayouts(id gpucore.ProgramID, p *gpuProgram) error {
	bindings := p.prog.Bindings()
	groups := 0
	for _, b := range bindings {
		groups = max(groups, int(b.Location.Group)+1)
	}

	entries := make([][]gputypes.BindGroupLayoutEntry, groups)
	for _, b := range bindings {
		entry := gputypes.BindGroupLayoutEntry{
			Binding:    b.Location.Binding,
			Visibility: b.Visibility,
		}
		switch b.Class {
		case shader.ClassUniform:
			entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case shader.ClassTexture:
			entry.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case shader.ClassSampler:
			entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		g := b.Location.Group
		entries[g] = append(entries[g], entry)
	}

	for g, e := range entries {
		layout, err := c.gpu.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("webgl_program_%d_group_%d", id, g),
			Entries: e,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group layout: %w", err)
		}
		p.groups = append(p.groups, layout)
	}

	layout, err := c.gpu.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("webgl_program_%d", id),
		BindGroupLayouts: p.groups,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	p.layout = layout
	return nil
}

func (c *Context) destroyProgram(p *gpuProgram) {
	if p.layout != nil {
		c.gpu.device.DestroyPipelineLayout(p.layout)
	}
	for _, g := range p.groups {
		c.gpu.device.DestroyBindGroupLayout(g)
	}
}

// ActiveAttributes returns the active vertex inputs of p.
func (c *Context) ActiveAttributes(p gpucore.ProgramID) []gpucore.Slot {
	if gp, ok := c.programs[p]; ok {
		return gp.prog.Attributes()
	}
	return nil
}

// ActiveUniforms returns the active uniforms of p.
func (c *Context) ActiveUniforms(p gpucore.ProgramID) []gpucore.Slot {
	if gp, ok := c.programs[p]; ok {
		return gp.prog.Uniforms()
	}
	return nil
}

// UseProgram selects the current program.
func (c *Context) UseProgram(p gpucore.ProgramID) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	if _, ok := c.programs[p]; !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownProgram, p)
	}
	c.current = p
	return nil
}

func (c *Context) uniformSlot(loc gpucore.Location) (*gpuProgram, gpucore.Slot, error) {
	p, ok := c.programs[c.current]
	if !ok {
		return nil, gpucore.Slot{}, gpucore.ErrNoProgram
	}
	for _, u := range p.prog.Uniforms() {
		if u.Location == loc {
			return p, u, nil
		}
	}
	return nil, gpucore.Slot{}, fmt.Errorf("%w: %s", gpucore.ErrUnknownLocation, loc)
}

// Uniform sets a non-sampler uniform of the current program. The value is
// written into a uniform buffer when the next draw is issued.
func (c *Context) Uniform(loc gpucore.Location, v gpucore.Value) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	p, slot, err := c.uniformSlot(loc)
	if err != nil {
		return err
	}
	if v == nil || slot.Kind != v.Kind() || slot.Kind == gpucore.KindSampler2D {
		return fmt.Errorf("%w: %q is %s", gpucore.ErrKindMismatch, slot.Name, slot.Kind)
	}
	p.uniforms[loc] = v
	return nil
}

// BindTexture binds tex to a texture unit.
func (c *Context) BindTexture(unit int, tex gpucore.TextureID) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	if _, ok := c.textures[tex]; !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownTexture, tex)
	}
	c.units[unit] = tex
	return nil
}

// UniformSampler points a sampler2D uniform at a texture unit.
func (c *Context) UniformSampler(loc gpucore.Location, unit int) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	p, slot, err := c.uniformSlot(loc)
	if err != nil {
		return err
	}
	if slot.Kind != gpucore.KindSampler2D {
		return fmt.Errorf("%w: %q is %s", gpucore.ErrKindMismatch, slot.Name, slot.Kind)
	}
	p.samplers[loc] = unit
	return nil
}

// BindAttribute binds a vertex buffer to an attribute location.
func (c *Context) BindAttribute(location uint32, buf gpucore.BufferID, kind gpucore.Kind) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	b, ok := c.buffers[buf]
	if !ok || b.target != gpucore.BufferVertex {
		return fmt.Errorf("%w: vertex buffer %d", gpucore.ErrUnknownBuffer, buf)
	}
	if _, ok := vertexFormat(kind); !ok {
		return fmt.Errorf("%w: %s is not a vertex format", gpucore.ErrKindMismatch, kind)
	}
	c.attributes[location] = attributeBinding{buffer: buf, kind: kind}
	return nil
}

// BindIndexBuffer binds the index buffer.
func (c *Context) BindIndexBuffer(buf gpucore.BufferID) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	b, ok := c.buffers[buf]
	if !ok || b.target != gpucore.BufferIndex {
		return fmt.Errorf("%w: index buffer %d", gpucore.ErrUnknownBuffer, buf)
	}
	c.index = buf
	return nil
}

// State returns the mutable fixed-function state.
func (c *Context) State() *gpucore.State { return &c.state }

// Resize recreates the render targets. Programs, buffers, textures and
// pipelines are kept.
func (c *Context) Resize(width, height int) error {
	if c.closed {
		return gpucore.ErrClosed
	}
	if width <= 0 || height <= 0 {
		return gpucore.ErrInvalidSize
	}
	if c.frame != nil {
		return fmt.Errorf("wgpu: resize during a frame")
	}
	if width == c.width && height == c.height {
		return nil
	}
	c.destroyTarget()
	if err := c.createTarget(width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

// Close releases every GPU object, then the device if the context opened
// it. Close is idempotent.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.gpu.device == nil {
		return
	}
	if c.frame != nil {
		c.abortFrame()
	}
	if err := c.gpu.device.WaitIdle(); err != nil {
		slogger().Warn("wgpu: wait idle on close", "error", err)
	}

	dev := c.gpu.device
	for _, pl := range c.pipelines {
		dev.DestroyRenderPipeline(pl)
	}
	for _, p := range c.programs {
		c.destroyProgram(p)
	}
	for _, s := range c.shaders {
		dev.DestroyShaderModule(s.module)
	}
	for _, b := range c.buffers {
		b.destroy(dev)
	}
	for _, t := range c.textures {
		t.destroy(dev)
	}
	if c.white != nil {
		c.white.destroy(dev)
	}
	if c.zero != nil {
		dev.DestroyBuffer(c.zero)
	}
	c.destroyTarget()
	clear(c.pipelines)
	clear(c.programs)
	clear(c.shaders)
	clear(c.buffers)
	clear(c.textures)

	c.gpu.destroy()
}
