package backend

import (
	"fmt"
	"image"
	"maps"

	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/shader"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the in-memory recording backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the GPU backend (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func(cfg Config) (gpucore.Context, error) {
		return NewSoftware(cfg)
	})
}

// Counters reports how many objects a Software context has created.
type Counters struct {
	Shaders  int
	Programs int
	Buffers  int
	Textures int
	Draws    int
	Frames   int
}

// AttributeBinding is a vertex buffer bound to an attribute location.
type AttributeBinding struct {
	Buffer gpucore.BufferID
	Kind   gpucore.Kind
}

// DrawRecord is one recorded DrawElements call with the bindings that
// were in effect.
type DrawRecord struct {
	Program  gpucore.ProgramID
	Topology gpucore.Topology
	Count    int
	Index    gpucore.BufferID
	// Uniforms holds the non-sampler uniform values of the program.
	Uniforms map[gpucore.Location]gpucore.Value
	// Textures maps each sampler2D uniform to the texture it samples.
	Textures   map[gpucore.Location]gpucore.TextureID
	Attributes map[uint32]AttributeBinding
	State      gpucore.State
}

type softBuffer struct {
	target gpucore.BufferTarget
	data   []byte
}

type softTexture struct {
	levels []*image.NRGBA
	filter gpucore.Filter
}

type softProgram struct {
	prog     *shader.Program
	uniforms map[gpucore.Location]gpucore.Value
	samplers map[gpucore.Location]int
}

// Software is an in-memory gpucore.Context.
//
// Shaders are compiled and reflected with the same front end as the GPU
// backend, resources are kept in memory and every draw is recorded instead
// of rasterized. It needs no GPU, so it serves headless hosts and tests.
//
// Software is not safe for concurrent use.
type Software struct {
	width, height int
	maxTexture    int
	state         gpucore.State

	nextID   uint64
	shaders  map[gpucore.ShaderID]*shader.Module
	programs map[gpucore.ProgramID]*softProgram
	buffers  map[gpucore.BufferID]*softBuffer
	textures map[gpucore.TextureID]*softTexture

	current    gpucore.ProgramID
	units      map[int]gpucore.TextureID
	attributes map[uint32]AttributeBinding
	index      gpucore.BufferID

	inFrame  bool
	frame    gpucore.Frame
	draws    []DrawRecord
	counters Counters
	closed   bool
}

var _ gpucore.Context = (*Software)(nil)

// NewSoftware creates a software context of the configured size.
func NewSoftware(cfg Config) (*Software, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Software{
		width:      cfg.Width,
		height:     cfg.Height,
		maxTexture: cfg.TextureLimit(),
		state:      gpucore.DefaultState(),
		shaders:    make(map[gpucore.ShaderID]*shader.Module),
		programs:   make(map[gpucore.ProgramID]*softProgram),
		buffers:    make(map[gpucore.BufferID]*softBuffer),
		textures:   make(map[gpucore.TextureID]*softTexture),
		units:      make(map[int]gpucore.TextureID),
		attributes: make(map[uint32]AttributeBinding),
	}, nil
}

// Name returns the backend identifier.
func (s *Software) Name() string { return BackendSoftware }

// MaxTextureSize returns the largest accepted texture side length.
func (s *Software) MaxTextureSize() int { return s.maxTexture }

func (s *Software) id() uint64 {
	s.nextID++
	return s.nextID
}

// CompileShader compiles one WGSL stage.
func (s *Software) CompileShader(stage gpucore.Stage, source string) (gpucore.ShaderID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	m, err := shader.Compile(stage, source)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.ShaderID(s.id())
	s.shaders[id] = m
	s.counters.Shaders++
	return id, nil
}

// LinkProgram links two compiled stages.
func (s *Software) LinkProgram(vertex, fragment gpucore.ShaderID) (gpucore.ProgramID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	vs, ok := s.shaders[vertex]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %d", gpucore.ErrUnknownShader, vertex)
	}
	fs, ok := s.shaders[fragment]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %d", gpucore.ErrUnknownShader, fragment)
	}
	p, err := shader.Link(vs, fs)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.ProgramID(s.id())
	s.programs[id] = &softProgram{
		prog:     p,
		uniforms: make(map[gpucore.Location]gpucore.Value),
		samplers: make(map[gpucore.Location]int),
	}
	s.counters.Programs++
	return id, nil
}

// ActiveAttributes returns the active vertex inputs of p.
func (s *Software) ActiveAttributes(p gpucore.ProgramID) []gpucore.Slot {
	if sp, ok := s.programs[p]; ok {
		return sp.prog.Attributes()
	}
	return nil
}

// ActiveUniforms returns the active uniforms of p.
func (s *Software) ActiveUniforms(p gpucore.ProgramID) []gpucore.Slot {
	if sp, ok := s.programs[p]; ok {
		return sp.prog.Uniforms()
	}
	return nil
}

// UseProgram selects the current program.
func (s *Software) UseProgram(p gpucore.ProgramID) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if _, ok := s.programs[p]; !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownProgram, p)
	}
	s.current = p
	return nil
}

// CreateBuffer stores a copy of data.
func (s *Software) CreateBuffer(target gpucore.BufferTarget, data []byte) (gpucore.BufferID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	id := gpucore.BufferID(s.id())
	s.buffers[id] = &softBuffer{target: target, data: append([]byte(nil), data...)}
	s.counters.Buffers++
	return id, nil
}

// CreateTexture stores the mip levels.
func (s *Software) CreateTexture(levels []*image.NRGBA, filter gpucore.Filter) (gpucore.TextureID, error) {
	if s.closed {
		return gpucore.InvalidID, gpucore.ErrClosed
	}
	if len(levels) == 0 || levels[0] == nil || levels[0].Rect.Empty() {
		return gpucore.InvalidID, fmt.Errorf("backend: texture without pixels: %w", gpucore.ErrInvalidSize)
	}
	if r := levels[0].Rect; max(r.Dx(), r.Dy()) > s.maxTexture {
		return gpucore.InvalidID, fmt.Errorf("backend: texture %dx%d exceeds %d: %w",
			r.Dx(), r.Dy(), s.maxTexture, gpucore.ErrInvalidSize)
	}
	id := gpucore.TextureID(s.id())
	s.textures[id] = &softTexture{levels: levels, filter: filter}
	s.counters.Textures++
	return id, nil
}

func (s *Software) uniformSlot(loc gpucore.Location) (*softProgram, gpucore.Slot, error) {
	sp, ok := s.programs[s.current]
	if !ok {
		return nil, gpucore.Slot{}, gpucore.ErrNoProgram
	}
	for _, u := range sp.prog.Uniforms() {
		if u.Location == loc {
			return sp, u, nil
		}
	}
	return nil, gpucore.Slot{}, fmt.Errorf("%w: %s", gpucore.ErrUnknownLocation, loc)
}

// Uniform sets a non-sampler uniform of the current program.
func (s *Software) Uniform(loc gpucore.Location, v gpucore.Value) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	sp, slot, err := s.uniformSlot(loc)
	if err != nil {
		return err
	}
	if v == nil || slot.Kind != v.Kind() || slot.Kind == gpucore.KindSampler2D {
		return fmt.Errorf("%w: %q is %s", gpucore.ErrKindMismatch, slot.Name, slot.Kind)
	}
	sp.uniforms[loc] = v
	return nil
}

// BindTexture binds tex to a texture unit.
func (s *Software) BindTexture(unit int, tex gpucore.TextureID) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if _, ok := s.textures[tex]; !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownTexture, tex)
	}
	s.units[unit] = tex
	return nil
}

// UniformSampler points a sampler2D uniform at a texture unit.
func (s *Software) UniformSampler(loc gpucore.Location, unit int) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	sp, slot, err := s.uniformSlot(loc)
	if err != nil {
		return err
	}
	if slot.Kind != gpucore.KindSampler2D {
		return fmt.Errorf("%w: %q is %s", gpucore.ErrKindMismatch, slot.Name, slot.Kind)
	}
	sp.samplers[loc] = unit
	return nil
}

// BindAttribute binds a vertex buffer to an attribute location.
func (s *Software) BindAttribute(location uint32, buf gpucore.BufferID, kind gpucore.Kind) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	b, ok := s.buffers[buf]
	if !ok || b.target != gpucore.BufferVertex {
		return fmt.Errorf("%w: vertex buffer %d", gpucore.ErrUnknownBuffer, buf)
	}
	s.attributes[location] = AttributeBinding{Buffer: buf, Kind: kind}
	return nil
}

// BindIndexBuffer binds the index buffer.
func (s *Software) BindIndexBuffer(buf gpucore.BufferID) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	b, ok := s.buffers[buf]
	if !ok || b.target != gpucore.BufferIndex {
		return fmt.Errorf("%w: index buffer %d", gpucore.ErrUnknownBuffer, buf)
	}
	s.index = buf
	return nil
}

// State returns the mutable fixed-function state.
func (s *Software) State() *gpucore.State { return &s.state }

// BeginFrame starts recording a frame. Draws of the previous frame are
// discarded.
func (s *Software) BeginFrame(f gpucore.Frame) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	s.frame = f
	s.inFrame = true
	s.draws = s.draws[:0]
	return nil
}

// DrawElements records a draw.
func (s *Software) DrawElements(topology gpucore.Topology, count int) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	switch {
	case !s.inFrame:
		return gpucore.ErrNoFrame
	case s.programs[s.current] == nil:
		return gpucore.ErrNoProgram
	case s.index == gpucore.InvalidID:
		return gpucore.ErrNoIndexBuffer
	}
	if n := len(s.buffers[s.index].data) / 2; count > n {
		return fmt.Errorf("%w: %d > %d", gpucore.ErrIndexRange, count, n)
	}

	sp := s.programs[s.current]
	rec := DrawRecord{
		Program:    s.current,
		Topology:   topology,
		Count:      count,
		Index:      s.index,
		Uniforms:   maps.Clone(sp.uniforms),
		Textures:   make(map[gpucore.Location]gpucore.TextureID, len(sp.samplers)),
		Attributes: make(map[uint32]AttributeBinding, len(sp.prog.Attributes())),
		State:      s.state,
	}
	for loc, unit := range sp.samplers {
		if tex, ok := s.units[unit]; ok {
			rec.Textures[loc] = tex
		}
	}
	for _, a := range sp.prog.Attributes() {
		if b, ok := s.attributes[a.Location.Binding]; ok {
			rec.Attributes[a.Location.Binding] = b
		}
	}
	s.draws = append(s.draws, rec)
	s.counters.Draws++
	return nil
}

// EndFrame finishes the frame.
func (s *Software) EndFrame() error {
	if !s.inFrame {
		return gpucore.ErrNoFrame
	}
	s.inFrame = false
	s.counters.Frames++
	return nil
}

// Resize changes the drawing buffer size.
func (s *Software) Resize(width, height int) error {
	if s.closed {
		return gpucore.ErrClosed
	}
	if width <= 0 || height <= 0 {
		return gpucore.ErrInvalidSize
	}
	s.width, s.height = width, height
	return nil
}

// Close drops every resource.
func (s *Software) Close() {
	s.closed = true
	clear(s.shaders)
	clear(s.programs)
	clear(s.buffers)
	clear(s.textures)
}

// Size returns the drawing buffer size.
func (s *Software) Size() (width, height int) { return s.width, s.height }

// Frame returns the parameters of the last BeginFrame.
func (s *Software) Frame() gpucore.Frame { return s.frame }

// Draws returns the draws recorded since the last BeginFrame.
func (s *Software) Draws() []DrawRecord { return s.draws }

// Counters returns the creation counters.
func (s *Software) Counters() Counters { return s.counters }

// Buffer returns the contents of a buffer.
func (s *Software) Buffer(id gpucore.BufferID) ([]byte, bool) {
	b, ok := s.buffers[id]
	if !ok {
		return nil, false
	}
	return b.data, true
}

// Texture returns the mip levels and filter of a texture.
func (s *Software) Texture(id gpucore.TextureID) ([]*image.NRGBA, gpucore.Filter, bool) {
	t, ok := s.textures[id]
	if !ok {
		return nil, 0, false
	}
	return t.levels, t.filter, true
}
