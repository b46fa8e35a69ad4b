// Package wgpu provides the GPU backend for webgl surfaces using gogpu/wgpu.
//
// The backend implements gpucore.Context on the gogpu/wgpu HAL. Shaders are
// WGSL; each compiled stage becomes a hal.ShaderModule and each linked
// program gets one bind group layout per @group plus a pipeline layout.
//
// # Pipelines
//
// A WebGL-style context mutates blend, depth, stencil and cull state freely
// between draws, while WebGPU bakes that state into render pipelines.
// Pipelines are therefore created lazily per (program, topology, fixed
// state, attribute formats) and cached for the lifetime of the context.
// Blend constant, stencil reference and scissor are dynamic and set on the
// render pass for every draw.
//
// Triangle fans and line loops have no WebGPU equivalent. Their index
// buffers are expanded on the CPU into triangle lists and line strips and
// the expansion is cached per index buffer.
//
// # Device
//
// When backend.Config.Device exposes a HAL device (see render.HalDevice)
// the context renders on it and never destroys it. Otherwise a standalone
// Vulkan device is opened and owned by the context.
//
// # Registration
//
// Importing the package registers the "wgpu" backend:
//
//	import _ "github.com/gogpu/webgl/backend/wgpu"
package wgpu
