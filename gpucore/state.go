package gpucore

import "github.com/gogpu/gputypes"

// Capability is a toggleable piece of fixed-function state.
type Capability uint8

const (
	// CapBlend enables color blending.
	CapBlend Capability = iota
	// CapDepthTest enables depth testing and depth writes.
	CapDepthTest
	// CapStencilTest enables the stencil test.
	CapStencilTest
	// CapCullFace enables face culling.
	CapCullFace
	// CapScissorTest enables the scissor rectangle.
	CapScissorTest
	// CapSampleAlphaToCoverage enables alpha-to-coverage.
	CapSampleAlphaToCoverage
)

// Face selects the polygon faces a stencil setting applies to.
type Face uint8

const (
	FaceFrontAndBack Face = iota
	FaceFront
	FaceBack
)

// BlendState is the blend configuration used while CapBlend is enabled.
type BlendState struct {
	SrcRGB, DstRGB     gputypes.BlendFactor
	SrcAlpha, DstAlpha gputypes.BlendFactor
	OpRGB, OpAlpha     gputypes.BlendOperation
	// Constant is the blend constant color (RGBA).
	Constant [4]float32
}

// StencilFace is the stencil configuration of one polygon face.
type StencilFace struct {
	Compare   gputypes.CompareFunction
	Ref       uint32
	ReadMask  uint32
	WriteMask uint32
	Fail      gputypes.StencilOperation
	DepthFail gputypes.StencilOperation
	Pass      gputypes.StencilOperation
}

// State is the fixed-function state machine of a context.
//
// Settings mutate it in order and it persists across draw calls and frames;
// backends read it when a draw is issued. State is comparable.
type State struct {
	Caps         uint32
	Blend        BlendState
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool
	StencilFront StencilFace
	StencilBack  StencilFace
	ColorMask    gputypes.ColorWriteMask
	CullMode     gputypes.CullMode
	FrontFace    gputypes.FrontFace
	// Scissor is x, y, width, height in pixels.
	Scissor [4]int
}

// DefaultState returns the state of a freshly created context: every
// capability disabled, additive one/zero blending, LESS depth test with
// writes on, ALWAYS stencil with KEEP ops, full color mask, back-face
// culling selected and counter-clockwise front faces.
func DefaultState() State {
	stencil := StencilFace{
		Compare:   gputypes.CompareFunctionAlways,
		ReadMask:  0xFF,
		WriteMask: 0xFF,
		Fail:      gputypes.StencilOperationKeep,
		DepthFail: gputypes.StencilOperationKeep,
		Pass:      gputypes.StencilOperationKeep,
	}
	return State{
		Blend: BlendState{
			SrcRGB:   gputypes.BlendFactorOne,
			DstRGB:   gputypes.BlendFactorZero,
			SrcAlpha: gputypes.BlendFactorOne,
			DstAlpha: gputypes.BlendFactorZero,
			OpRGB:    gputypes.BlendOperationAdd,
			OpAlpha:  gputypes.BlendOperationAdd,
		},
		DepthCompare: gputypes.CompareFunctionLess,
		DepthWrite:   true,
		StencilFront: stencil,
		StencilBack:  stencil,
		ColorMask:    gputypes.ColorWriteMaskAll,
		CullMode:     gputypes.CullModeBack,
		FrontFace:    gputypes.FrontFaceCCW,
	}
}

// Enable turns a capability on.
func (s *State) Enable(c Capability) { s.Caps |= 1 << c }

// Disable turns a capability off.
func (s *State) Disable(c Capability) { s.Caps &^= 1 << c }

// Enabled reports whether a capability is on.
func (s *State) Enabled(c Capability) bool { return s.Caps&(1<<c) != 0 }

// Stencil calls fn for each face selected by f.
func (s *State) Stencil(f Face, fn func(*StencilFace)) {
	if f != FaceBack {
		fn(&s.StencilFront)
	}
	if f != FaceFront {
		fn(&s.StencilBack)
	}
}

// PipelineKey returns the state with dynamic fields cleared. Two states
// with equal keys can share a render pipeline; blend constant, stencil
// reference and scissor are set on the pass per draw.
func (s State) PipelineKey() State {
	s.Blend.Constant = [4]float32{}
	s.StencilFront.Ref = 0
	s.StencilBack.Ref = 0
	s.Scissor = [4]int{}
	s.Caps &^= 1 << CapScissorTest
	return s
}

// EffectiveCullMode returns CullModeNone unless CapCullFace is enabled.
func (s *State) EffectiveCullMode() gputypes.CullMode {
	if !s.Enabled(CapCullFace) {
		return gputypes.CullModeNone
	}
	return s.CullMode
}
