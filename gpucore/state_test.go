package gpucore

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestKindComponents(t *testing.T) {
	tests := []struct {
		kind  Kind
		comps int
		isInt bool
	}{
		{KindInt, 1, true},
		{KindFloat, 1, false},
		{KindVec2, 2, false},
		{KindVec3, 3, false},
		{KindVec4, 4, false},
		{KindIVec2, 2, true},
		{KindIVec3, 3, true},
		{KindIVec4, 4, true},
		{KindMat4, 16, false},
		{KindSampler2D, 0, false},
		{KindInvalid, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Components(); got != tt.comps {
				t.Errorf("Components() = %d, want %d", got, tt.comps)
			}
			if got := tt.kind.IsInt(); got != tt.isInt {
				t.Errorf("IsInt() = %v, want %v", got, tt.isInt)
			}
		})
	}
}

func TestValueKinds(t *testing.T) {
	values := map[Value]Kind{
		Int(1):     KindInt,
		Float(1):   KindFloat,
		Vec2{}:     KindVec2,
		Vec3{}:     KindVec3,
		Vec4{}:     KindVec4,
		IVec2{}:    KindIVec2,
		IVec3{}:    KindIVec3,
		IVec4{}:    KindIVec4,
		Identity(): KindMat4,
	}
	for v, want := range values {
		if got := v.Kind(); got != want {
			t.Errorf("%T.Kind() = %v, want %v", v, got, want)
		}
	}
}

func TestAppendComponents(t *testing.T) {
	f, ok := AppendFloats(nil, Vec3{1, 2, 3})
	if !ok || len(f) != 3 || f[2] != 3 {
		t.Errorf("AppendFloats(Vec3) = %v, %v", f, ok)
	}
	if _, ok := AppendFloats(nil, Int(1)); ok {
		t.Error("AppendFloats(Int) should report false")
	}
	i, ok := AppendInts(nil, IVec2{7, 8})
	if !ok || len(i) != 2 || i[1] != 8 {
		t.Errorf("AppendInts(IVec2) = %v, %v", i, ok)
	}
	if _, ok := AppendInts(nil, Float(1)); ok {
		t.Error("AppendInts(Float) should report false")
	}
}

func TestTopologyGroupSize(t *testing.T) {
	tests := map[Topology]int{
		TopologyTriangles:     3,
		TopologyLines:         2,
		TopologyPoints:        1,
		TopologyLineStrip:     1,
		TopologyLineLoop:      1,
		TopologyTriangleStrip: 1,
		TopologyTriangleFan:   1,
	}
	for topo, want := range tests {
		if got := topo.GroupSize(); got != want {
			t.Errorf("%v.GroupSize() = %d, want %d", topo, got, want)
		}
	}
}

func TestStateCapabilities(t *testing.T) {
	s := DefaultState()
	if s.Enabled(CapDepthTest) {
		t.Fatal("depth test should start disabled")
	}
	s.Enable(CapDepthTest)
	s.Enable(CapBlend)
	if !s.Enabled(CapDepthTest) || !s.Enabled(CapBlend) {
		t.Fatal("Enable did not take effect")
	}
	s.Disable(CapDepthTest)
	if s.Enabled(CapDepthTest) {
		t.Error("Disable did not take effect")
	}
	if !s.Enabled(CapBlend) {
		t.Error("Disable(CapDepthTest) cleared CapBlend")
	}
}

func TestStateStencilFaces(t *testing.T) {
	s := DefaultState()
	s.Stencil(FaceFront, func(f *StencilFace) { f.Ref = 3 })
	if s.StencilFront.Ref != 3 || s.StencilBack.Ref != 0 {
		t.Errorf("FaceFront: front=%d back=%d", s.StencilFront.Ref, s.StencilBack.Ref)
	}
	s.Stencil(FaceFrontAndBack, func(f *StencilFace) { f.Pass = gputypes.StencilOperationReplace })
	if s.StencilFront.Pass != gputypes.StencilOperationReplace || s.StencilBack.Pass != gputypes.StencilOperationReplace {
		t.Error("FaceFrontAndBack did not update both faces")
	}
}

func TestStatePipelineKey(t *testing.T) {
	a := DefaultState()
	b := DefaultState()
	b.Blend.Constant = [4]float32{1, 0, 0, 1}
	b.StencilFront.Ref = 9
	b.Scissor = [4]int{1, 2, 3, 4}
	b.Enable(CapScissorTest)
	if a.PipelineKey() != b.PipelineKey() {
		t.Error("dynamic state should not change the pipeline key")
	}
	b.Enable(CapBlend)
	if a.PipelineKey() == b.PipelineKey() {
		t.Error("enabling blend should change the pipeline key")
	}
}

func TestEffectiveCullMode(t *testing.T) {
	s := DefaultState()
	if got := s.EffectiveCullMode(); got != gputypes.CullModeNone {
		t.Errorf("EffectiveCullMode() = %v, want none", got)
	}
	s.Enable(CapCullFace)
	if got := s.EffectiveCullMode(); got != gputypes.CullModeBack {
		t.Errorf("EffectiveCullMode() = %v, want back", got)
	}
}
