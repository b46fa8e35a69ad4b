// Package backend provides pluggable graphics context factories.
//
// A webgl.Surface renders through a gpucore.Context. The backend package
// holds a registry of factories that create those contexts, so a surface
// can run on a GPU or headless without changing the caller.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/webgl/backend"
//
// The GPU backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/webgl/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get a context on the best available backend, or Get()
// to request a specific backend by name:
//
//	// Get the default (best available) backend
//	ctx, err := backend.Default(backend.Config{Width: 800, Height: 600})
//
//	// Or request a specific backend
//	ctx, err := backend.Get("software", backend.Config{Width: 800, Height: 600})
//
// # Available Backends
//
//   - "wgpu": GPU rendering via gogpu/wgpu HAL (preferred when it opens a device)
//   - "software": in-memory recording context (always available)
package backend
