package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent context resources. Each backend maintains a
// mapping between IDs and its own objects. IDs are allocated from 1 so the
// zero value always means "no resource".

// ShaderID is an opaque handle to a compiled shader stage.
type ShaderID uint64

// ProgramID is an opaque handle to a linked vertex/fragment program.
type ProgramID uint64

// BufferID is an opaque handle to a vertex or index buffer.
type BufferID uint64

// TextureID is an opaque handle to an uploaded texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Stage identifies a shader stage.
type Stage uint8

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota
	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// Kind tags the type of a reflected slot or a uniform value.
type Kind uint8

// Supported kinds. KindInvalid marks an active slot whose type is not
// supported; such slots are skipped by the renderer.
const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindIVec2
	KindIVec3
	KindIVec4
	KindMat4
	KindSampler2D
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindInt:       "int",
	KindFloat:     "float",
	KindVec2:      "vec2",
	KindVec3:      "vec3",
	KindVec4:      "vec4",
	KindIVec2:     "ivec2",
	KindIVec3:     "ivec3",
	KindIVec4:     "ivec4",
	KindMat4:      "mat4",
	KindSampler2D: "sampler2D",
}

// String returns the GLSL-style type name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Components returns the number of scalar components of the kind.
// Samplers and invalid kinds report 0.
func (k Kind) Components() int {
	switch k {
	case KindInt, KindFloat:
		return 1
	case KindVec2, KindIVec2:
		return 2
	case KindVec3, KindIVec3:
		return 3
	case KindVec4, KindIVec4:
		return 4
	case KindMat4:
		return 16
	default:
		return 0
	}
}

// IsInt reports whether the kind has signed integer components.
func (k Kind) IsInt() bool {
	switch k {
	case KindInt, KindIVec2, KindIVec3, KindIVec4:
		return true
	}
	return false
}

// Size returns the tightly packed byte size of one value of the kind.
func (k Kind) Size() int {
	return k.Components() * 4
}

// Slot describes one active attribute or uniform of a linked program.
type Slot struct {
	// Name is the shader-side identifier.
	Name string
	// Kind is the reflected type, or KindInvalid when unsupported.
	Kind Kind
	// Type is the shader-language spelling of the type.
	Type string
	// Location is the attribute location, or the uniform binding index.
	Location Location
	// Count is the array length (1 for non-arrays).
	Count int
}

// Location addresses an attribute (@location) or a uniform
// (@group/@binding) inside a program.
type Location struct {
	Group   uint32
	Binding uint32
}

// String formats the location as group:binding.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Group, l.Binding)
}

// Topology is the primitive assembly mode of a draw call.
type Topology uint8

const (
	// TopologyTriangles draws independent triangles.
	TopologyTriangles Topology = iota
	// TopologyTriangleStrip draws a connected strip of triangles.
	TopologyTriangleStrip
	// TopologyTriangleFan draws triangles sharing the first vertex.
	TopologyTriangleFan
	// TopologyLines draws independent line segments.
	TopologyLines
	// TopologyLineStrip draws a connected polyline.
	TopologyLineStrip
	// TopologyLineLoop draws a closed polyline.
	TopologyLineLoop
	// TopologyPoints draws single points.
	TopologyPoints
)

var topologyNames = [...]string{
	TopologyTriangles:     "triangles",
	TopologyTriangleStrip: "triangle-strip",
	TopologyTriangleFan:   "triangle-fan",
	TopologyLines:         "lines",
	TopologyLineStrip:     "line-strip",
	TopologyLineLoop:      "line-loop",
	TopologyPoints:        "points",
}

// String returns the topology name.
func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return fmt.Sprintf("Topology(%d)", t)
}

// GroupSize returns the number of vertices per primitive group:
// 3 for triangles, 2 for lines, 1 for every strip, fan, loop and points.
func (t Topology) GroupSize() int {
	switch t {
	case TopologyTriangles:
		return 3
	case TopologyLines:
		return 2
	default:
		return 1
	}
}

// BufferTarget selects how a buffer will be bound.
type BufferTarget uint8

const (
	// BufferVertex holds packed attribute data.
	BufferVertex BufferTarget = iota
	// BufferIndex holds uint16 indices.
	BufferIndex
)

// Filter is the texture sampling filter.
type Filter uint8

const (
	// FilterLinear samples with linear filtering and mipmaps.
	FilterLinear Filter = iota
	// FilterNearest samples the nearest texel of the base level.
	FilterNearest
)

// String returns the filter name.
func (f Filter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}

// Frame carries the per-frame parameters passed to [Context.BeginFrame].
type Frame struct {
	// Width and Height are the viewport size in pixels.
	Width, Height int
	// ClearColor is the RGBA clear color.
	ClearColor [4]float32
	// ClearDepth is the depth clear value.
	ClearDepth float32
}
