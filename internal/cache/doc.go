// Package cache provides the identity-keyed memo tables behind a surface's
// resource caches.
//
// A [Cache] maps a comparable key (a shader, program, geometry or texture
// identity) to a built value. Entries are created at most once through
// [Cache.GetOrCreate] and are never evicted: the cache lives exactly as long
// as the surface that owns it.
//
//	programs := cache.New[programKey, gpucore.ProgramID]()
//	id, err := programs.GetOrCreate(key, func() (gpucore.ProgramID, error) {
//		return ctx.LinkProgram(vs, fs)
//	})
//
// A failed build stores nothing, so the next lookup retries it.
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
