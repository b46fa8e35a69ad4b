package main

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/webgl"
)

const cubeVertex = `
@group(0) @binding(0) var<uniform> mvp: mat4x4<f32>;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn main(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = mvp * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}
`

const cubeFragment = `
@group(0) @binding(1) var tex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv);
}
`

const lineVertex = `
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

const lineFragment = `
@group(0) @binding(1) var<uniform> alpha: f32;

@fragment
fn main(@location(0) color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(color, alpha);
}
`

// scene holds the shaders, meshes and textures reused by every frame.
type scene struct {
	cubeVS, cubeFS *webgl.Shader
	lineVS, lineFS *webgl.Shader
	cube, ring     *webgl.Mesh
	tex            *webgl.Texture
	settings       []webgl.Setting
}

func newScene(tex *webgl.Texture) *scene {
	return &scene{
		cubeVS: webgl.VertexShader(cubeVertex),
		cubeFS: webgl.FragmentShader(cubeFragment),
		lineVS: webgl.VertexShader(lineVertex),
		lineFS: webgl.FragmentShader(lineFragment),
		cube:   cubeMesh(),
		ring:   ringMesh(48, 1.6),
		tex:    tex,
		settings: []webgl.Setting{
			webgl.Enable(webgl.CullFaceCap),
			webgl.CullFace(gputypes.CullModeBack),
		},
	}
}

func (s *scene) entities(angle, aspect float32) []webgl.Entity {
	proj := perspective(math32.Pi/4, aspect, 0.1, 100)
	view := translate(0, 0, -5)
	model := mul(rotateY(angle), rotateX(angle*0.7))
	mvp := mul(proj, mul(view, model))

	return []webgl.Entity{
		webgl.NewEntity(s.cubeVS, s.cubeFS, s.cube, webgl.Uniforms{
			"mvp": mvp,
			"tex": s.tex,
		}),
		webgl.NewEntity(s.lineVS, s.lineFS, s.ring, webgl.Uniforms{
			"mvp":   mul(proj, mul(view, rotateX(math32.Pi/2.5))),
			"alpha": webgl.Float(0.8),
		},
			webgl.Enable(webgl.Blend),
			webgl.BlendFunc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
		),
	}
}

func cubeMesh() *webgl.Mesh {
	// Each face: normal axis, sign and the two in-plane axes.
	faces := []struct {
		n, u, v [3]float32
	}{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
	}

	corner := func(n, u, v [3]float32, su, sv float32) webgl.Vertex {
		var p webgl.Vec3
		for i := range p {
			p[i] = n[i] + su*u[i] + sv*v[i]
		}
		return webgl.Vertex{
			"position": p,
			"uv":       webgl.Vec2{(su + 1) / 2, (sv + 1) / 2},
		}
	}

	tris := make([][3]webgl.Vertex, 0, len(faces)*2)
	for _, f := range faces {
		a := corner(f.n, f.u, f.v, -1, -1)
		b := corner(f.n, f.u, f.v, 1, -1)
		c := corner(f.n, f.u, f.v, 1, 1)
		d := corner(f.n, f.u, f.v, -1, 1)
		tris = append(tris, [3]webgl.Vertex{a, b, c}, [3]webgl.Vertex{a, c, d})
	}
	return webgl.Triangles(tris)
}

func ringMesh(segments int, radius float32) *webgl.Mesh {
	verts := make([]webgl.Vertex, segments)
	for i := range verts {
		t := float32(i) / float32(segments)
		a := t * 2 * math32.Pi
		verts[i] = webgl.Vertex{
			"position": webgl.Vec3{radius * math32.Cos(a), radius * math32.Sin(a), 0},
			"color":    webgl.Vec3{t, 1 - t, 0.5},
		}
	}
	return webgl.LineLoop(verts)
}

func checkerboard(size, cells int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: 230, G: 120, B: 40, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.NRGBA{R: 250, G: 245, B: 230, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
