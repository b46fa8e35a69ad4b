package webgl

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webgl/backend"
	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/geom"
)

const testVertex = `
@group(0) @binding(0) var<uniform> mvp: mat4x4<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn main(@location(0) position: vec3<f32>, @location(1) color: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = mvp * vec4<f32>(position, 1.0);
    out.color = color;
    return out;
}
`

const testFragment = `
@group(0) @binding(1) var tex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

@fragment
fn main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, color.xy) * vec4<f32>(color, 1.0);
}
`

// testVertexRGBA reads color as vec4, conflicting with testVertex.
const testVertexRGBA = `
@group(0) @binding(0) var<uniform> mvp: mat4x4<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn main(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = mvp * vec4<f32>(position, 1.0);
    out.color = color.rgb;
    return out;
}
`

var (
	mvpLoc = gpucore.Location{Group: 0, Binding: 0}
	texLoc = gpucore.Location{Group: 0, Binding: 1}
)

// countingContext counts the context calls made by a surface.
type countingContext struct {
	gpucore.Context
	calls map[string]int
	units []int
}

func (c *countingContext) CompileShader(stage gpucore.Stage, src string) (gpucore.ShaderID, error) {
	c.calls["CompileShader"]++
	return c.Context.CompileShader(stage, src)
}

func (c *countingContext) LinkProgram(vs, fs gpucore.ShaderID) (gpucore.ProgramID, error) {
	c.calls["LinkProgram"]++
	return c.Context.LinkProgram(vs, fs)
}

func (c *countingContext) UseProgram(p gpucore.ProgramID) error {
	c.calls["UseProgram"]++
	return c.Context.UseProgram(p)
}

func (c *countingContext) CreateBuffer(target gpucore.BufferTarget, data []byte) (gpucore.BufferID, error) {
	c.calls["CreateBuffer"]++
	return c.Context.CreateBuffer(target, data)
}

func (c *countingContext) CreateTexture(levels []*image.NRGBA, filter gpucore.Filter) (gpucore.TextureID, error) {
	c.calls["CreateTexture"]++
	return c.Context.CreateTexture(levels, filter)
}

func (c *countingContext) Uniform(loc gpucore.Location, v gpucore.Value) error {
	c.calls["Uniform"]++
	return c.Context.Uniform(loc, v)
}

func (c *countingContext) BindTexture(unit int, tex gpucore.TextureID) error {
	c.calls["BindTexture"]++
	c.units = append(c.units, unit)
	return c.Context.BindTexture(unit, tex)
}

func (c *countingContext) BindAttribute(location uint32, buf gpucore.BufferID, kind gpucore.Kind) error {
	c.calls["BindAttribute"]++
	return c.Context.BindAttribute(location, buf, kind)
}

func (c *countingContext) BindIndexBuffer(buf gpucore.BufferID) error {
	c.calls["BindIndexBuffer"]++
	return c.Context.BindIndexBuffer(buf)
}

func (c *countingContext) DrawElements(topology gpucore.Topology, count int) error {
	c.calls["DrawElements"]++
	return c.Context.DrawElements(topology, count)
}

// total returns the number of resource and draw calls.
func (c *countingContext) total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func newTestSurface(t *testing.T, opts ...SurfaceOption) (*Surface, *backend.Software, *countingContext) {
	t.Helper()
	sw, err := backend.NewSoftware(backend.Config{Width: 64, Height: 48})
	if err != nil {
		t.Fatalf("NewSoftware() error = %v", err)
	}
	cc := &countingContext{Context: sw, calls: make(map[string]int)}
	s := NewSurface(64, 48, append([]SurfaceOption{WithContext(cc)}, opts...)...)
	if err := s.Err(); err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s, sw, cc
}

func vertex(x, y, z float32) Vertex {
	return Vertex{
		"position": Vec3{x, y, z},
		"color":    Vec3{x + 1, y + 1, z + 1},
	}
}

func testMesh() *Mesh {
	return Triangles([][3]Vertex{
		{vertex(0, 0, 0), vertex(1, 0, 0), vertex(0, 1, 0)},
		{vertex(1, 1, 0), vertex(2, 1, 0), vertex(1, 2, 0)},
	})
}

func testTexture(filter Filter) *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	return NewTexture(img, filter)
}

func mustRender(t *testing.T, s *Surface, entities []Entity, settings []Setting) {
	t.Helper()
	if err := s.RenderFrame(entities, settings); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
}

func float32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestSurfaceProgramBuiltOnce(t *testing.T) {
	s, _, cc := newTestSurface(t)
	vs, fs := VertexShader(testVertex), FragmentShader(testFragment)
	entities := []Entity{
		NewEntity(vs, fs, testMesh(), Uniforms{"mvp": gpucore.Identity()}),
		NewEntity(vs, fs, testMesh(), Uniforms{"mvp": gpucore.Identity()}),
	}

	for range 5 {
		mustRender(t, s, entities, nil)
	}

	if cc.calls["CompileShader"] != 2 || cc.calls["LinkProgram"] != 1 {
		t.Errorf("compiles = %d, links = %d; want 2 and 1", cc.calls["CompileShader"], cc.calls["LinkProgram"])
	}
	st := s.Stats()
	if st.Shaders != 2 || st.Programs != 1 || st.Geometries != 2 {
		t.Errorf("Stats() = %+v", st)
	}
	if st.Draws != 10 || st.Frames != 5 {
		t.Errorf("Stats() draws = %d, frames = %d; want 10 and 5", st.Draws, st.Frames)
	}
	// 10 program and 10 geometry lookups; misses build 2 shaders, 1
	// program and 2 geometries.
	if st.Hits != 17 || st.Misses != 5 {
		t.Errorf("Stats() hits = %d, misses = %d; want 17 and 5", st.Hits, st.Misses)
	}
}

func TestSurfaceUploadsOncePerAttribute(t *testing.T) {
	s, sw, cc := newTestSurface(t)
	mesh := testMesh()
	e := NewEntity(VertexShader(testVertex), FragmentShader(testFragment), mesh, nil)

	const frames = 7
	for range frames {
		mustRender(t, s, []Entity{e}, nil)
	}

	// One index buffer plus position and color.
	if got := cc.calls["CreateBuffer"]; got != 3 {
		t.Errorf("CreateBuffer calls = %d, want 3", got)
	}
	if got := s.Stats().Uploads; got != 3 {
		t.Errorf("Stats().Uploads = %d, want 3", got)
	}
	if got := cc.calls["DrawElements"]; got != frames {
		t.Errorf("DrawElements calls = %d, want %d", got, frames)
	}

	draws := sw.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Count != 6 || d.Topology != gpucore.TopologyTriangles {
		t.Errorf("draw = %d %s, want 6 triangles", d.Count, d.Topology)
	}

	index, _ := sw.Buffer(d.Index)
	got := geom.Uint16s(index, d.Count)
	for i, v := range got {
		if int(v) != i {
			t.Fatalf("index buffer = %v, want identity", got)
		}
	}

	pos, ok := sw.Buffer(d.Attributes[0].Buffer)
	if !ok {
		t.Fatal("position buffer not bound")
	}
	want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 2, 1, 0, 1, 2, 0}
	if p := float32s(pos); len(p) != len(want) {
		t.Fatalf("position buffer has %d floats, want %d", len(p), len(want))
	} else {
		for i := range want {
			if p[i] != want[i] {
				t.Fatalf("position buffer = %v, want %v", p, want)
			}
		}
	}
	if d.Attributes[1].Kind != gpucore.KindVec3 {
		t.Errorf("color binding kind = %s, want vec3", d.Attributes[1].Kind)
	}
}

func TestSurfaceDegenerateMesh(t *testing.T) {
	s, sw, cc := newTestSurface(t)
	e := NewEntity(VertexShader("not even wgsl"), FragmentShader(testFragment), Triangles(nil), nil)

	mustRender(t, s, []Entity{e, {Mesh: nil}}, nil)

	if n := cc.total(); n != 0 {
		t.Errorf("context calls = %v, want none", cc.calls)
	}
	st := s.Stats()
	if st.Shaders != 0 || st.Programs != 0 || st.Geometries != 0 || st.Textures != 0 {
		t.Errorf("Stats() = %+v, want empty caches", st)
	}
	if st.Skipped != 2 || st.Draws != 0 {
		t.Errorf("Stats() skipped = %d, draws = %d; want 2 and 0", st.Skipped, st.Draws)
	}
	if c := sw.Counters(); c.Frames != 1 {
		t.Errorf("Counters().Frames = %d, want 1", c.Frames)
	}
}

func TestSurfaceUnknownUniform(t *testing.T) {
	s, sw, _ := newTestSurface(t)
	e := NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(), Uniforms{
		"mvp":     gpucore.Identity(),
		"missing": Float(3),
		"tex2":    testTexture(Nearest),
	})

	mustRender(t, s, []Entity{e}, nil)

	d := sw.Draws()
	if len(d) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(d))
	}
	if _, ok := d[0].Uniforms[mvpLoc].(gpucore.Mat4); !ok {
		t.Errorf("mvp = %v, want a mat4", d[0].Uniforms[mvpLoc])
	}
	if s.Stats().Textures != 0 {
		t.Error("a texture for an unknown uniform should not be uploaded")
	}
}

func TestSurfaceTextureUnits(t *testing.T) {
	s, sw, cc := newTestSurface(t)
	vs, fs := VertexShader(testVertex), FragmentShader(testFragment)
	linear, nearest := testTexture(Linear), testTexture(Nearest)
	entities := []Entity{
		NewEntity(vs, fs, testMesh(), Uniforms{"tex": linear}),
		NewEntity(vs, fs, testMesh(), Uniforms{"tex": nearest}),
		NewEntity(vs, fs, testMesh(), Uniforms{"tex": linear}),
	}

	mustRender(t, s, entities, nil)
	mustRender(t, s, entities, nil)

	// Units restart at 0 for every draw.
	for i, u := range cc.units {
		if u != 0 {
			t.Errorf("BindTexture call %d used unit %d, want 0", i, u)
		}
	}
	if got := cc.calls["CreateTexture"]; got != 2 {
		t.Errorf("CreateTexture calls = %d, want 2", got)
	}

	draws := sw.Draws()
	if len(draws) != 3 {
		t.Fatalf("len(Draws()) = %d, want 3", len(draws))
	}
	if draws[0].Textures[texLoc] != draws[2].Textures[texLoc] || draws[0].Textures[texLoc] == draws[1].Textures[texLoc] {
		t.Errorf("sampled textures = %d %d %d", draws[0].Textures[texLoc], draws[1].Textures[texLoc], draws[2].Textures[texLoc])
	}

	levels, filter, _ := sw.Texture(draws[0].Textures[texLoc])
	if filter != Linear || len(levels) != 3 {
		t.Errorf("linear texture: filter %s, %d levels; want linear with 3", filter, len(levels))
	}
	levels, filter, _ = sw.Texture(draws[1].Textures[texLoc])
	if filter != Nearest || len(levels) != 1 {
		t.Errorf("nearest texture: filter %s, %d levels; want nearest with 1", filter, len(levels))
	}
	// Uploaded bottom row first.
	if c := levels[0].NRGBAAt(0, 1); c.R != 255 {
		t.Errorf("base level (0, 1) = %v, want the flipped red texel", c)
	}
}

func TestSurfaceTextureErrors(t *testing.T) {
	s, _, _ := newTestSurface(t)
	vs, fs := VertexShader(testVertex), FragmentShader(testFragment)

	err := s.RenderFrame([]Entity{
		NewEntity(vs, fs, testMesh(), Uniforms{"tex": Float(1)}),
		NewEntity(vs, fs, testMesh(), Uniforms{"tex": NewTexture(nil, Linear)}),
	}, nil)
	if !errors.Is(err, gpucore.ErrKindMismatch) || !errors.Is(err, ErrNoImage) {
		t.Errorf("RenderFrame() error = %v, want ErrKindMismatch and ErrNoImage", err)
	}
	if s.Stats().Draws != 0 {
		t.Errorf("Stats().Draws = %d, want 0", s.Stats().Draws)
	}
}

func TestSurfaceCompileErrorNotCached(t *testing.T) {
	s, sw, cc := newTestSurface(t)
	bad := NewEntity(VertexShader("fn broken("), FragmentShader(testFragment), testMesh(), nil)
	good := NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(), nil)

	err := s.RenderFrame([]Entity{bad, good}, nil)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("RenderFrame() error = %v, want *CompileError", err)
	}
	if ce.Stage != gpucore.StageVertex || ce.Log == "" {
		t.Errorf("CompileError = %+v", ce)
	}
	if len(sw.Draws()) != 1 {
		t.Errorf("len(Draws()) = %d, want the second entity drawn", len(sw.Draws()))
	}

	before := cc.calls["CompileShader"]
	_ = s.RenderFrame([]Entity{bad}, nil)
	if cc.calls["CompileShader"] != before+1 {
		t.Errorf("a failed compile should be retried on the next frame")
	}
	if st := s.Stats(); st.Programs != 1 {
		t.Errorf("Stats().Programs = %d, want 1", st.Programs)
	}
}

func TestSurfaceLinkError(t *testing.T) {
	s, _, _ := newTestSurface(t)
	// The fragment input at location 0 is vec4; the vertex output is vec3.
	fs := FragmentShader(`
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`)
	err := s.RenderFrame([]Entity{NewEntity(VertexShader(testVertex), fs, testMesh(), nil)}, nil)
	var le *LinkError
	if !errors.As(err, &le) {
		t.Fatalf("RenderFrame() error = %v, want *LinkError", err)
	}
	if st := s.Stats(); st.Programs != 0 || st.Shaders != 2 {
		t.Errorf("Stats() = %+v, want 2 shaders and no program", st)
	}
}

func TestSurfaceAttributeErrors(t *testing.T) {
	s, _, _ := newTestSurface(t)
	fs := FragmentShader(testFragment)
	mesh := testMesh()

	mustRender(t, s, []Entity{NewEntity(VertexShader(testVertex), fs, mesh, nil)}, nil)

	err := s.RenderFrame([]Entity{NewEntity(VertexShader(testVertexRGBA), fs, mesh, nil)}, nil)
	if !errors.Is(err, ErrAttributeConflict) {
		t.Errorf("RenderFrame() error = %v, want ErrAttributeConflict", err)
	}

	partial := Points([]Vertex{{"position": Vec3{}}})
	err = s.RenderFrame([]Entity{NewEntity(VertexShader(testVertex), fs, partial, nil)}, nil)
	if !errors.Is(err, geom.ErrMissingAttribute) {
		t.Errorf("RenderFrame() error = %v, want ErrMissingAttribute", err)
	}

	err = s.RenderFrame([]Entity{{Fragment: fs, Mesh: mesh}}, nil)
	if !errors.Is(err, ErrMissingShader) {
		t.Errorf("RenderFrame() error = %v, want ErrMissingShader", err)
	}
}

func TestSurfaceTopology(t *testing.T) {
	s, sw, _ := newTestSurface(t)
	vs, fs := VertexShader(testVertex), FragmentShader(testFragment)
	verts := []Vertex{vertex(0, 0, 0), vertex(1, 0, 0), vertex(1, 1, 0), vertex(0, 1, 0)}

	tests := []struct {
		mesh  *Mesh
		count int
	}{
		{Points(verts), 4},
		{LineStrip(verts), 4},
		{LineLoop(verts), 4},
		{TriangleStrip(verts), 4},
		{TriangleFan(verts), 4},
		{Lines([][2]Vertex{{verts[0], verts[1]}, {verts[2], verts[3]}}), 4},
	}
	for _, tt := range tests {
		t.Run(tt.mesh.Mode().String(), func(t *testing.T) {
			mustRender(t, s, []Entity{NewEntity(vs, fs, tt.mesh, nil)}, nil)
			d := sw.Draws()
			if len(d) != 1 || d[0].Topology != tt.mesh.Mode() || d[0].Count != tt.count {
				t.Errorf("Draws() = %+v, want one %s draw of %d", d, tt.mesh.Mode(), tt.count)
			}
		})
	}
}

func TestSurfaceSettings(t *testing.T) {
	s, sw, _ := newTestSurface(t)
	vs, fs := VertexShader(testVertex), FragmentShader(testFragment)

	applied := 0
	surface := []Setting{
		SettingFunc(func(gpucore.Context) { applied++ }),
		DepthFunc(gputypes.CompareFunctionLessEqual),
	}
	entities := []Entity{
		NewEntity(vs, fs, testMesh(), nil, Enable(Blend), BlendFunc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)),
		NewEntity(vs, fs, testMesh(), nil),
		NewEntity(vs, fs, testMesh(), nil, Disable(Blend)),
	}

	for range 3 {
		mustRender(t, s, entities, surface)
	}
	if applied != 1 {
		t.Errorf("surface settings applied %d times, want 1", applied)
	}

	d := sw.Draws()
	if len(d) != 3 {
		t.Fatalf("len(Draws()) = %d, want 3", len(d))
	}
	if !d[0].State.Enabled(gpucore.CapDepthTest) {
		t.Error("depth test should be enabled at creation")
	}
	if d[0].State.DepthCompare != gputypes.CompareFunctionLessEqual {
		t.Errorf("DepthCompare = %v, want the surface setting", d[0].State.DepthCompare)
	}
	if !d[0].State.Enabled(gpucore.CapBlend) || d[0].State.Blend.SrcRGB != gputypes.BlendFactorSrcAlpha {
		t.Errorf("draw 0 state = %+v, want alpha blending", d[0].State.Blend)
	}
	if !d[1].State.Enabled(gpucore.CapBlend) {
		t.Error("entity settings should persist into later draws")
	}
	if d[2].State.Enabled(gpucore.CapBlend) {
		t.Error("Disable(Blend) should turn blending off")
	}
}

func TestSurfaceWithoutDepthTest(t *testing.T) {
	s, sw, _ := newTestSurface(t, WithDepthTest(false), WithClearColor(0.1, 0.2, 0.3, 1))
	mustRender(t, s, []Entity{
		NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(), nil),
	}, nil)

	if sw.Draws()[0].State.Enabled(gpucore.CapDepthTest) {
		t.Error("WithDepthTest(false) should leave depth testing off")
	}
	f := sw.Frame()
	if f.ClearColor != [4]float32{0.1, 0.2, 0.3, 1} || f.ClearDepth != 1 {
		t.Errorf("Frame() = %+v", f)
	}
}

func TestSurfaceIsolation(t *testing.T) {
	s1, sw1, cc1 := newTestSurface(t)
	s2, sw2, cc2 := newTestSurface(t)
	entities := []Entity{
		NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(),
			Uniforms{"tex": testTexture(Linear)}),
	}

	for range 2 {
		mustRender(t, s1, entities, nil)
		mustRender(t, s2, entities, nil)
	}

	for i, cc := range []*countingContext{cc1, cc2} {
		if cc.calls["LinkProgram"] != 1 || cc.calls["CreateTexture"] != 1 || cc.calls["CreateBuffer"] != 3 {
			t.Errorf("surface %d calls = %v, want its own program, texture and buffers", i+1, cc.calls)
		}
	}
	if sw1.Counters() != sw2.Counters() {
		t.Errorf("Counters() = %+v and %+v, want equal", sw1.Counters(), sw2.Counters())
	}
	if s1.Stats() != s2.Stats() {
		t.Errorf("Stats() = %+v and %+v, want equal", s1.Stats(), s2.Stats())
	}
}

func TestSurfaceResizeKeepsCaches(t *testing.T) {
	s, sw, _ := newTestSurface(t)
	mustRender(t, s, []Entity{
		NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(),
			Uniforms{"tex": testTexture(Nearest)}),
	}, nil)
	before := s.Stats()

	if err := s.Resize(320, 200); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if s.Width() != 320 || s.Height() != 200 {
		t.Errorf("size = %dx%d, want 320x200", s.Width(), s.Height())
	}
	if w, h := sw.Size(); w != 320 || h != 200 {
		t.Errorf("context size = %dx%d, want 320x200", w, h)
	}
	if after := s.Stats(); after != before {
		t.Errorf("Stats() after Resize = %+v, want %+v", after, before)
	}

	mustRender(t, s, nil, nil)
	if f := sw.Frame(); f.Width != 320 || f.Height != 200 {
		t.Errorf("viewport = %dx%d, want 320x200", f.Width, f.Height)
	}

	if err := s.Resize(0, 10); !errors.Is(err, gpucore.ErrInvalidSize) {
		t.Errorf("Resize(0, 10) error = %v, want ErrInvalidSize", err)
	}
}

func TestSurfaceDegraded(t *testing.T) {
	s := NewSurface(64, 48, WithBackend("missing"))
	defer s.Close()

	if err := s.Err(); !errors.Is(err, ErrContextUnavailable) || !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Fatalf("Err() = %v, want ErrContextUnavailable wrapping ErrBackendNotAvailable", err)
	}
	if s.Fallback() != FallbackMessage {
		t.Errorf("Fallback() = %q", s.Fallback())
	}
	e := NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(), nil)
	if err := s.RenderFrame([]Entity{e}, nil); !errors.Is(err, ErrContextUnavailable) {
		t.Errorf("RenderFrame() error = %v, want ErrContextUnavailable", err)
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrContextUnavailable) {
		t.Errorf("Snapshot() error = %v, want ErrContextUnavailable", err)
	}
	if st := s.Stats(); st != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", st)
	}

	if NewSurface(0, 48, WithBackend(backend.BackendSoftware)).Err() == nil {
		t.Error("NewSurface(0, 48) should be degraded")
	}
}

func TestSurfaceSoftwareBackend(t *testing.T) {
	s := NewSurface(32, 32, WithBackend(backend.BackendSoftware))
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if s.Backend() != backend.BackendSoftware || s.Fallback() != "" {
		t.Errorf("Backend() = %q, Fallback() = %q", s.Backend(), s.Fallback())
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrSnapshotUnsupported) {
		t.Errorf("Snapshot() error = %v, want ErrSnapshotUnsupported", err)
	}

	s.Close()
	s.Close()
	if err := s.RenderFrame(nil, nil); !errors.Is(err, gpucore.ErrClosed) {
		t.Errorf("RenderFrame() after Close error = %v, want ErrClosed", err)
	}
}

const structVertex = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`

const solidFragment = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestSurfaceUnreadStructMember(t *testing.T) {
	s, sw, cc := newTestSurface(t)

	mesh := Triangles([][3]Vertex{{
		{"position": Vec3{0, 0, 0}},
		{"position": Vec3{1, 0, 0}},
		{"position": Vec3{0, 1, 0}},
	}})
	e := NewEntity(VertexShader(structVertex), FragmentShader(solidFragment), mesh, nil)
	mustRender(t, s, []Entity{e}, nil)

	if n := len(sw.Draws()); n != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", n)
	}
	if cc.calls["CreateBuffer"] != 2 {
		t.Errorf("CreateBuffer calls = %d, want 2 (index and position)", cc.calls["CreateBuffer"])
	}
	if _, ok := sw.Draws()[0].Attributes[1]; ok {
		t.Error("unread uv should not be bound")
	}
}

func TestSurfaceTextureScaledToLimit(t *testing.T) {
	sw, err := backend.NewSoftware(backend.Config{Width: 64, Height: 48, MaxTextureSize: 2})
	if err != nil {
		t.Fatalf("NewSoftware() error = %v", err)
	}
	s := NewSurface(64, 48, WithContext(sw))
	defer s.Close()

	e := NewEntity(VertexShader(testVertex), FragmentShader(testFragment), testMesh(),
		Uniforms{"tex": testTexture(Nearest)})
	mustRender(t, s, []Entity{e}, nil)

	draws := sw.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	levels, _, ok := sw.Texture(draws[0].Textures[texLoc])
	if !ok {
		t.Fatal("texture was not uploaded")
	}
	if b := levels[0].Rect; b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("uploaded size = %dx%d, want 2x1", b.Dx(), b.Dy())
	}
}

func TestFitTexture(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"within limit", 4, 2, 4, 4, 2},
		{"wide", 8, 2, 4, 4, 1},
		{"tall", 2, 16, 4, 1, 4},
		{"thin side clamps to 1", 64, 1, 8, 8, 1},
		{"no limit", 8, 8, 0, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := fitTexture(image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.limit)
			if img.Rect.Dx() != tt.wantW || img.Rect.Dy() != tt.wantH {
				t.Errorf("fitTexture(%dx%d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.limit, img.Rect.Dx(), img.Rect.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
