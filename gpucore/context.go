package gpucore

import "image"

// Context is a retained graphics context in the style of a WebGL context.
//
// It is a single-threaded state machine: the caller compiles, links and
// uploads resources, selects a program, sets uniforms and attribute
// bindings, mutates [State], and issues draws between BeginFrame and
// EndFrame. Bindings set for one draw stay in effect until overwritten.
//
// Implementations need not be safe for concurrent use.
type Context interface {
	// CompileShader compiles one shader stage.
	// Fails with *CompileError carrying the compiler log.
	CompileShader(stage Stage, source string) (ShaderID, error)

	// LinkProgram links a vertex and a fragment shader.
	// Fails with *LinkError carrying the linker log.
	LinkProgram(vertex, fragment ShaderID) (ProgramID, error)

	// ActiveAttributes returns the active vertex inputs of a program,
	// ordered by location.
	ActiveAttributes(p ProgramID) []Slot

	// ActiveUniforms returns the active uniforms of a program, ordered by
	// group and binding.
	ActiveUniforms(p ProgramID) []Slot

	// UseProgram selects the program for subsequent uniform, attribute
	// and draw calls.
	UseProgram(p ProgramID) error

	// CreateBuffer uploads data into a new buffer.
	CreateBuffer(target BufferTarget, data []byte) (BufferID, error)

	// CreateTexture uploads an RGBA8 texture. levels[0] is the base level;
	// further entries are successive mip levels.
	CreateTexture(levels []*image.NRGBA, filter Filter) (TextureID, error)

	// Uniform sets a non-sampler uniform of the current program.
	Uniform(loc Location, v Value) error

	// BindTexture binds a texture to a texture unit.
	BindTexture(unit int, tex TextureID) error

	// UniformSampler points a sampler2D uniform of the current program at
	// a texture unit.
	UniformSampler(loc Location, unit int) error

	// BindAttribute binds a vertex buffer to an attribute location.
	BindAttribute(location uint32, buf BufferID, kind Kind) error

	// BindIndexBuffer binds the uint16 index buffer for DrawElements.
	BindIndexBuffer(buf BufferID) error

	// State returns the mutable fixed-function state.
	State() *State

	// BeginFrame starts a frame: sets the viewport and clears color,
	// depth and stencil.
	BeginFrame(f Frame) error

	// DrawElements draws count indices from the bound index buffer.
	DrawElements(topology Topology, count int) error

	// EndFrame submits the frame.
	EndFrame() error

	// Resize changes the drawing buffer size. Resources are kept.
	Resize(width, height int) error

	// Close releases every resource owned by the context.
	Close()
}
