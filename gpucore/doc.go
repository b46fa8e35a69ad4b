// Package gpucore defines the graphics context contract shared by the
// webgl frame renderer and its backends.
//
// The frame renderer never talks to a GPU API directly. It drives a
// [Context], a small state machine modeled on the WebGL context:
//
//	+-------------------+
//	|   webgl.Surface   |  caches, frame loop, uniform dispatch
//	+---------+---------+
//	          | gpucore.Context
//	+---------+---------+-------------------+
//	|                   |                   |
//	| backend.software  |  backend/wgpu     |
//	| (in memory)       |  (hal.Device)     |
//	+-------------------+-------------------+
//
// Resources are referenced through opaque IDs ([ShaderID], [ProgramID],
// [BufferID], [TextureID]). Each backend maps IDs to its own objects.
//
// Reflected attributes and uniforms are described by [Slot] values whose
// [Kind] is the tag the renderer dispatches on. Uniform values implement
// [Value]; the concrete types ([Float], [Vec3], [Mat4], ...) carry their
// own kind.
package gpucore
