//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/webgl/gpucore"
)

// maxVertexBuffers is the WebGPU limit on vertex buffers per pipeline.
const maxVertexBuffers = 8

const (
	colorFormat        = gputypes.TextureFormatRGBA8Unorm
	depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8
)

// pipelineKey identifies a render pipeline. Everything a pipeline bakes in
// is part of the key; dynamic state is cleared by State.PipelineKey.
type pipelineKey struct {
	program  gpucore.ProgramID
	topology gputypes.PrimitiveTopology
	state    gpucore.State
	formats  [maxVertexBuffers]gputypes.VertexFormat
}

// vertexFormat maps an attribute kind to its vertex format.
func vertexFormat(k gpucore.Kind) (gputypes.VertexFormat, bool) {
	switch k {
	case gpucore.KindFloat:
		return gputypes.VertexFormatFloat32, true
	case gpucore.KindVec2:
		return gputypes.VertexFormatFloat32x2, true
	case gpucore.KindVec3:
		return gputypes.VertexFormatFloat32x3, true
	case gpucore.KindVec4:
		return gputypes.VertexFormatFloat32x4, true
	case gpucore.KindInt:
		return gputypes.VertexFormatSint32, true
	case gpucore.KindIVec2:
		return gputypes.VertexFormatSint32x2, true
	case gpucore.KindIVec3:
		return gputypes.VertexFormatSint32x3, true
	case gpucore.KindIVec4:
		return gputypes.VertexFormatSint32x4, true
	default:
		return gputypes.VertexFormatUndefined, false
	}
}

// primitiveTopology maps a topology that WebGPU supports natively.
// Fans and loops must be expanded with geom.ExpandIndices first.
func primitiveTopology(t gpucore.Topology) gputypes.PrimitiveTopology {
	switch t {
	case gpucore.TopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case gpucore.TopologyLines:
		return gputypes.PrimitiveTopologyLineList
	case gpucore.TopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gpucore.TopologyPoints:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func isStrip(t gputypes.PrimitiveTopology) bool {
	return t == gputypes.PrimitiveTopologyTriangleStrip || t == gputypes.PrimitiveTopologyLineStrip
}

// blendState returns nil while blending is disabled.
func blendState(s *gpucore.State) *gputypes.BlendState {
	if !s.Enabled(gpucore.CapBlend) {
		return nil
	}
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: s.Blend.SrcRGB,
			DstFactor: s.Blend.DstRGB,
			Operation: s.Blend.OpRGB,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: s.Blend.SrcAlpha,
			DstFactor: s.Blend.DstAlpha,
			Operation: s.Blend.OpAlpha,
		},
	}
}

// depthStencilState maps the depth and stencil settings. A disabled test
// passes every fragment and writes nothing.
func depthStencilState(s *gpucore.State) *hal.DepthStencilState {
	ds := &hal.DepthStencilState{
		Format:       depthStencilFormat,
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: stencilFace(gpucore.StencilFace{Compare: gputypes.CompareFunctionAlways}),
		StencilBack:  stencilFace(gpucore.StencilFace{Compare: gputypes.CompareFunctionAlways}),
	}
	if s.Enabled(gpucore.CapDepthTest) {
		ds.DepthCompare = s.DepthCompare
		ds.DepthWriteEnabled = s.DepthWrite
	}
	if s.Enabled(gpucore.CapStencilTest) {
		ds.StencilFront = stencilFace(s.StencilFront)
		ds.StencilBack = stencilFace(s.StencilBack)
		// WebGPU has one pair of masks for both faces.
		ds.StencilReadMask = s.StencilFront.ReadMask
		ds.StencilWriteMask = s.StencilFront.WriteMask
	}
	return ds
}

func stencilFace(f gpucore.StencilFace) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     f.Compare,
		FailOp:      stencilOp(f.Fail),
		DepthFailOp: stencilOp(f.DepthFail),
		PassOp:      stencilOp(f.Pass),
	}
}

// stencilOp converts between the two enumerations: gputypes reserves 0 for
// Undefined, hal starts at Keep.
func stencilOp(op gputypes.StencilOperation) hal.StencilOperation {
	if op == gputypes.StencilOperationUndefined || op > gputypes.StencilOperationDecrementWrap {
		return hal.StencilOperationKeep
	}
	return hal.StencilOperation(op - 1) //nolint:gosec // bounded above
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (c *Context) pipeline(p *gpuProgram, key pipelineKey, buffers []gputypes.VertexBufferLayout) (hal.RenderPipeline, error) {
	if pl, ok := c.pipelines[key]; ok {
		return pl, nil
	}

	state := key.state
	primitive := gputypes.PrimitiveState{
		Topology:  key.topology,
		FrontFace: state.FrontFace,
		CullMode:  state.EffectiveCullMode(),
	}
	if isStrip(key.topology) {
		format := gputypes.IndexFormatUint16
		primitive.StripIndexFormat = &format
	}

	pl, err := c.gpu.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("webgl_program_%d", key.program),
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: p.prog.Vertex.Entry,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: p.prog.Fragment.Entry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    colorFormat,
					Blend:     blendState(&state),
					WriteMask: state.ColorMask,
				},
			},
		},
		DepthStencil: depthStencilState(&state),
		Primitive:    primitive,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	c.pipelines[key] = pl
	c.stats.Pipelines++
	slogger().Debug("wgpu: pipeline created",
		"program", key.program, "topology", key.topology, "pipelines", len(c.pipelines))
	return pl, nil
}
