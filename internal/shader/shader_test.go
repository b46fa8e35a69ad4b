package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webgl/gpucore"
)

const testVertex = `
@group(0) @binding(0) var<uniform> perspective: mat4x4<f32>;
@group(0) @binding(1) var<uniform> shade: f32;
@group(0) @binding(2) var<uniform> unused: vec4<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn main(@location(0) position: vec3<f32>, @location(1) color: vec3<f32>, @location(2) extra: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = perspective * vec4<f32>(position, 1.0);
    out.color = color * shade;
    return out;
}
`

const testFragment = `
@group(0) @binding(3) var texture0: texture_2d<f32>;
@group(0) @binding(4) var sampler0: sampler;

@fragment
fn main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    let t = textureSample(texture0, sampler0, vec2<f32>(0.5, 0.5));
    return vec4<f32>(color, 1.0) * t;
}
`

func mustCompile(t *testing.T, stage gpucore.Stage, src string) *Module {
	t.Helper()
	m, err := Compile(stage, src)
	if err != nil {
		t.Fatalf("Compile(%v) error = %v", stage, err)
	}
	return m
}

func TestCompileVertexInputs(t *testing.T) {
	m := mustCompile(t, gpucore.StageVertex, testVertex)

	if m.Entry != "main" {
		t.Errorf("Entry = %q, want main", m.Entry)
	}
	in := m.Inputs()
	if len(in) != 3 {
		t.Fatalf("len(Inputs()) = %d, want 3", len(in))
	}
	want := []struct {
		name   string
		kind   gpucore.Kind
		active bool
	}{
		{"position", gpucore.KindVec3, true},
		{"color", gpucore.KindVec3, true},
		{"extra", gpucore.KindVec2, false},
	}
	for i, w := range want {
		if in[i].Name != w.name || in[i].Kind != w.kind || in[i].Active != w.active {
			t.Errorf("Inputs()[%d] = %+v, want %s %v active=%v", i, in[i], w.name, w.kind, w.active)
		}
		if in[i].Location != uint32(i) {
			t.Errorf("Inputs()[%d].Location = %d, want %d", i, in[i].Location, i)
		}
	}

	out := m.Outputs()
	if len(out) != 1 || out[0].Location != 0 || out[0].Type != "vec3<f32>" {
		t.Errorf("Outputs() = %+v", out)
	}
}

func TestCompileDropsUnusedGlobals(t *testing.T) {
	m := mustCompile(t, gpucore.StageVertex, testVertex)

	b := m.Bindings()
	if len(b) != 2 {
		t.Fatalf("Bindings() = %+v, want perspective and shade", b)
	}
	if b[0].Name != "perspective" || b[0].Kind != gpucore.KindMat4 || b[0].Size != 64 {
		t.Errorf("Bindings()[0] = %+v", b[0])
	}
	if b[1].Name != "shade" || b[1].Kind != gpucore.KindFloat || b[1].Class != ClassUniform {
		t.Errorf("Bindings()[1] = %+v", b[1])
	}
	if b[0].Visibility != gputypes.ShaderStageVertex {
		t.Errorf("Visibility = %v, want vertex", b[0].Visibility)
	}
}

func TestCompileStructInput(t *testing.T) {
	src := `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 0.0, 1.0);
}
`
	m := mustCompile(t, gpucore.StageVertex, src)
	in := m.Inputs()
	if len(in) != 2 || in[0].Name != "position" || in[1].Name != "uv" {
		t.Fatalf("Inputs() = %+v", in)
	}
	if !in[0].Active {
		t.Error("Inputs()[0] should be active: in.position is read")
	}
	if in[1].Active {
		t.Error("Inputs()[1] should be inactive: in.uv is never read")
	}
}

func TestCompileStructInputWholeArgument(t *testing.T) {
	src := `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
};

fn place(v: VertexInput) -> vec4<f32> {
    return vec4<f32>(v.position + v.uv, 0.0, 1.0);
}

@vertex
fn main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return place(in);
}
`
	m := mustCompile(t, gpucore.StageVertex, src)
	for _, v := range m.Inputs() {
		if !v.Active {
			t.Errorf("input %q should be active when the whole argument is passed on", v.Name)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		stage gpucore.Stage
		src   string
	}{
		{"syntax", gpucore.StageVertex, "@vertex fn main( -> {"},
		{"wrong stage", gpucore.StageFragment, testVertex},
		{"no entry point", gpucore.StageVertex, "fn helper() -> f32 { return 1.0; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.stage, tt.src)
			var ce *gpucore.CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() error = %v, want *CompileError", err)
			}
			if ce.Stage != tt.stage {
				t.Errorf("CompileError.Stage = %v, want %v", ce.Stage, tt.stage)
			}
			if ce.Log == "" {
				t.Error("CompileError.Log is empty")
			}
		})
	}
}

func TestLinkReflection(t *testing.T) {
	vs := mustCompile(t, gpucore.StageVertex, testVertex)
	fs := mustCompile(t, gpucore.StageFragment, testFragment)

	p, err := Link(vs, fs)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	attrs := p.Attributes()
	if len(attrs) != 2 || attrs[0].Name != "position" || attrs[1].Name != "color" {
		t.Fatalf("Attributes() = %+v", attrs)
	}
	if attrs[1].Location.Binding != 1 {
		t.Errorf("color location = %d, want 1", attrs[1].Location.Binding)
	}

	uniforms := p.Uniforms()
	names := make([]string, len(uniforms))
	for i, u := range uniforms {
		names[i] = u.Name + ":" + u.Kind.String()
	}
	if got, want := strings.Join(names, ","), "perspective:mat4,shade:float,texture0:sampler2D"; got != want {
		t.Errorf("Uniforms() = %s, want %s", got, want)
	}

	tex, ok := p.SamplerTexture(gpucore.Location{Group: 0, Binding: 4})
	if !ok || tex.Name != "texture0" {
		t.Errorf("SamplerTexture(0:4) = %+v, %v", tex, ok)
	}
	if len(p.Bindings()) != 4 {
		t.Errorf("len(Bindings()) = %d, want 4", len(p.Bindings()))
	}
}

func TestLinkErrors(t *testing.T) {
	vs := mustCompile(t, gpucore.StageVertex, testVertex)

	missing := mustCompile(t, gpucore.StageFragment, `
@fragment
fn main(@location(3) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(uv, 0.0, 1.0);
}
`)
	conflict := mustCompile(t, gpucore.StageFragment, `
@group(0) @binding(0) var<uniform> tint: vec4<f32>;

@fragment
fn main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color, 1.0) * tint;
}
`)
	mismatch := mustCompile(t, gpucore.StageFragment, `
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`)

	tests := []struct {
		name string
		vs   *Module
		fs   *Module
		want string
	}{
		{"unwritten input", vs, missing, "not written"},
		{"binding conflict", vs, conflict, "binding 0:0"},
		{"varying type", vs, mismatch, "location 0"},
		{"swapped stages", missing, vs, "not a vertex shader"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Link(tt.vs, tt.fs)
			var le *gpucore.LinkError
			if !errors.As(err, &le) {
				t.Fatalf("Link() error = %v, want *LinkError", err)
			}
			if !strings.Contains(le.Log, tt.want) {
				t.Errorf("LinkError.Log = %q, want it to contain %q", le.Log, tt.want)
			}
		})
	}
}

func TestUnsupportedUniformType(t *testing.T) {
	vs := mustCompile(t, gpucore.StageVertex, `
@group(0) @binding(0) var<uniform> count: i32;
@group(0) @binding(1) var<uniform> flags: vec4<u32>;
@group(0) @binding(2) var<uniform> cell: vec2<i32>;

@vertex
fn main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    let x = f32(count) + f32(flags.x) + f32(cell.y);
    return vec4<f32>(position, x, 1.0);
}
`)
	fs := mustCompile(t, gpucore.StageFragment, `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`)
	p, err := Link(vs, fs)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	u := p.Uniforms()
	if len(u) != 3 {
		t.Fatalf("Uniforms() = %+v", u)
	}
	if u[0].Kind != gpucore.KindInt {
		t.Errorf("count kind = %v, want int", u[0].Kind)
	}
	if u[1].Kind != gpucore.KindInvalid || u[1].Type != "vec4<u32>" {
		t.Errorf("flags = %+v, want invalid vec4<u32>", u[1])
	}
	if u[2].Kind != gpucore.KindIVec2 {
		t.Errorf("cell kind = %v, want ivec2", u[2].Kind)
	}
}
