package webgl

import (
	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/render"
)

// SurfaceOption configures a Surface during creation.
// Use functional options to customize Surface behavior.
//
// Example:
//
//	// Best available backend
//	s := webgl.NewSurface(800, 600)
//
//	// Headless, for tests and servers
//	s := webgl.NewSurface(800, 600, webgl.WithBackend("software"))
//
//	// Host-provided GPU device (dependency injection)
//	s := webgl.NewSurface(800, 600, webgl.WithDevice(provider))
type SurfaceOption func(*surfaceOptions)

// surfaceOptions holds optional configuration for Surface creation.
type surfaceOptions struct {
	backend    string
	ctx        gpucore.Context
	device     render.DeviceHandle
	clearColor [4]float32
	depthTest  bool
}

// defaultOptions returns the default surface options: best available
// backend, transparent black clear color, depth test on.
func defaultOptions() surfaceOptions {
	return surfaceOptions{
		depthTest: true,
	}
}

// WithBackend selects a registered backend by name, such as "wgpu" or
// "software". Without it the best available backend is used.
func WithBackend(name string) SurfaceOption {
	return func(o *surfaceOptions) {
		o.backend = name
	}
}

// WithContext renders through ctx instead of creating a context.
// The surface takes ownership and closes ctx on Close.
func WithContext(ctx gpucore.Context) SurfaceOption {
	return func(o *surfaceOptions) {
		o.ctx = ctx
	}
}

// WithDevice renders on a host-provided GPU device. The host keeps
// ownership of the device.
//
// Example:
//
//	import _ "github.com/gogpu/webgl/backend/wgpu"
//
//	s := webgl.NewSurface(800, 600, webgl.WithDevice(app.DeviceProvider()))
func WithDevice(h render.DeviceHandle) SurfaceOption {
	return func(o *surfaceOptions) {
		o.device = h
	}
}

// WithClearColor sets the color every frame is cleared to.
func WithClearColor(r, g, b, a float32) SurfaceOption {
	return func(o *surfaceOptions) {
		o.clearColor = [4]float32{r, g, b, a}
	}
}

// WithDepthTest controls whether depth testing is enabled when the
// context is created. It is enabled by default.
func WithDepthTest(enabled bool) SurfaceOption {
	return func(o *surfaceOptions) {
		o.depthTest = enabled
	}
}
