package webgl

import "sync/atomic"

// ID is a stable token that keys the per-surface resource caches.
// Equality of IDs, not equality of contents, drives cache hits.
type ID uint64

// nextID is the process-wide identity counter. Zero is never issued.
var nextID atomic.Uint64

// Identity is an identity slot embedded in shaders, meshes and textures.
// The zero value holds no identity; EnsureIdentity assigns one.
type Identity struct {
	id atomic.Uint64
}

// ID returns the assigned identity, or 0 if none has been assigned yet.
func (i *Identity) ID() ID { return ID(i.id.Load()) }

func (i *Identity) ensure() ID {
	if id := i.id.Load(); id != 0 {
		return ID(id)
	}
	// Losing a race leaves the counter with a gap, which is harmless.
	i.id.CompareAndSwap(0, nextID.Add(1))
	return ID(i.id.Load())
}

// Identifiable is implemented by values that carry an Identity.
type Identifiable interface {
	ID() ID
	ensure() ID
}

var (
	_ Identifiable = (*Shader)(nil)
	_ Identifiable = (*Mesh)(nil)
	_ Identifiable = (*Texture)(nil)
)

// EnsureIdentity assigns obj an identity if it has none and returns it.
// It is idempotent. The constructors in this package call it, so values
// built with them are ready for caching on creation; values assembled by
// hand get their identity here, once, before they are first rendered.
func EnsureIdentity(obj Identifiable) ID {
	return obj.ensure()
}
