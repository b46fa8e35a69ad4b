// Package webgl is a retained-mode renderer for WGSL shaders on a GPU.
//
// # Overview
//
// A scene is a list of entities, each pairing a vertex and a fragment
// shader with a mesh, uniform values and optional state settings. Every
// frame, a Surface draws the list in order. Expensive GPU objects are
// built on first use and reused on later frames:
//
//   - compiled shaders, keyed by shader identity
//   - linked programs, keyed by the shader pair
//   - vertex and index buffers, keyed by mesh identity
//   - textures, keyed by texture identity
//
// Identity, not content, drives reuse. Build shaders, meshes and textures
// once and keep passing the same values.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/webgl"
//	    _ "github.com/gogpu/webgl/backend/wgpu" // GPU backend
//	)
//
//	s := webgl.NewSurface(400, 400)
//	defer s.Close()
//	if err := s.Err(); err != nil {
//	    fmt.Println(s.Fallback())
//	}
//
//	vs := webgl.VertexShader(vertexSrc)
//	fs := webgl.FragmentShader(fragmentSrc)
//	mesh := webgl.Triangles([][3]webgl.Vertex{{
//	    {"position": webgl.Vec3{0, 1, 0}},
//	    {"position": webgl.Vec3{-1, -1, 0}},
//	    {"position": webgl.Vec3{1, -1, 0}},
//	}})
//
//	for {
//	    err := s.RenderFrame([]webgl.Entity{
//	        webgl.NewEntity(vs, fs, mesh, webgl.Uniforms{"mvp": camera}),
//	    }, nil)
//	    ...
//	}
//
// # Shaders and Reflection
//
// Shaders are WGSL. A program's attributes are the @location inputs its
// vertex entry point reads; its uniforms are the var<uniform> and
// texture_2d<f32> globals its entry points use. A sampler binds the
// texture declared at the binding just before it. Only active slots are
// bound, so uniform names the program does not use are ignored.
//
// # Settings
//
// Settings mutate the fixed-function state of the surface's context the
// way WebGL state calls do: the surface settings run once, on the first
// frame; entity settings run right before the entity is drawn and stay in
// effect for later entities until changed.
//
// # Backends
//
// Surfaces render through a gpucore.Context created by the backend
// package. Import backend/wgpu for GPU rendering; the software backend is
// always available and records draws without producing pixels.
package webgl
