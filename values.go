package webgl

import "github.com/gogpu/webgl/gpucore"

// Uniform and attribute values. A *Texture is also a Value and binds to
// sampler2D uniforms.
type (
	// Value is a uniform or attribute value.
	Value = gpucore.Value
	// Vertex is one vertex record: attribute name to value.
	Vertex = gpucore.Vertex
	// Filter is the texture sampling filter.
	Filter = gpucore.Filter

	Int   = gpucore.Int
	Float = gpucore.Float
	Vec2  = gpucore.Vec2
	Vec3  = gpucore.Vec3
	Vec4  = gpucore.Vec4
	IVec2 = gpucore.IVec2
	IVec3 = gpucore.IVec3
	IVec4 = gpucore.IVec4
	Mat4  = gpucore.Mat4
)

// Uniforms maps uniform names to values. Names the program does not use
// are ignored.
type Uniforms map[string]Value

// Capability toggles for Enable and Disable.
const (
	Blend                 = gpucore.CapBlend
	DepthTest             = gpucore.CapDepthTest
	StencilTest           = gpucore.CapStencilTest
	CullFaceCap           = gpucore.CapCullFace
	ScissorTest           = gpucore.CapScissorTest
	SampleAlphaToCoverage = gpucore.CapSampleAlphaToCoverage
)

// Faces for the separate stencil settings.
const (
	FrontAndBack = gpucore.FaceFrontAndBack
	Front        = gpucore.FaceFront
	Back         = gpucore.FaceBack
)
