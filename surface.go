package webgl

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/webgl/backend"
	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/cache"
)

// ErrSnapshotUnsupported is returned by Snapshot when the backend keeps no
// pixels, as the software backend does.
var ErrSnapshotUnsupported = errors.New("webgl: backend does not support snapshots")

// Stats reports the resource caches and draw counters of a surface.
type Stats struct {
	// Shaders, Programs, Geometries and Textures are cache entry counts.
	Shaders    int
	Programs   int
	Geometries int
	Textures   int
	// Hits and Misses count resource cache lookups that found an entry
	// and that had to build one.
	Hits   int
	Misses int
	// Uploads counts vertex and index buffer uploads.
	Uploads int
	// Draws counts issued draw calls.
	Draws int
	// Skipped counts entities skipped for having an empty mesh.
	Skipped int
	// Frames counts rendered frames.
	Frames int
}

// Surface is one drawing target: a graphics context and the caches of the
// shaders, programs, geometry and textures drawn on it.
//
// Cache entries are created on first use and live until Close. Surfaces
// never share entries. Surface methods may be called from multiple
// goroutines; frames are rendered one at a time.
type Surface struct {
	mu sync.Mutex

	ctx     gpucore.Context
	name    string
	err     error
	opts    surfaceOptions
	width   int
	height  int
	started bool
	closed  bool

	shaders    *cache.Cache[ID, gpucore.ShaderID]
	programs   *cache.Cache[programKey, *program]
	geometries *cache.Cache[ID, *geometry]
	textures   *cache.Cache[ID, gpucore.TextureID]

	uploads int
	draws   int
	skipped int
	frames  int
}

// NewSurface creates a width x height surface with empty caches.
//
// The graphics context comes from WithContext, or from the backend named
// by WithBackend, or from the best available backend. NewSurface never
// fails: if no context can be created the surface is degraded. Err then
// reports the cause, RenderFrame draws nothing and Fallback returns the
// message to show instead.
func NewSurface(width, height int, opts ...SurfaceOption) *Surface {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Surface{
		opts:       o,
		width:      width,
		height:     height,
		shaders:    cache.New[ID, gpucore.ShaderID](),
		programs:   cache.New[programKey, *program](),
		geometries: cache.New[ID, *geometry](),
		textures:   cache.New[ID, gpucore.TextureID](),
	}

	ctx, err := openContext(width, height, o)
	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrContextUnavailable, err)
		slogger().Warn("webgl: surface degraded", "width", width, "height", height, "error", err)
		return s
	}
	s.ctx = ctx
	if n, ok := ctx.(backend.Named); ok {
		s.name = n.Name()
	}
	if o.depthTest {
		ctx.State().Enable(gpucore.CapDepthTest)
	}
	slogger().Info("webgl: surface created", "backend", s.name, "width", width, "height", height)
	return s
}

func openContext(width, height int, o surfaceOptions) (gpucore.Context, error) {
	if o.ctx != nil {
		if err := o.ctx.Resize(width, height); err != nil {
			return nil, err
		}
		return o.ctx, nil
	}
	cfg := backend.Config{Width: width, Height: height, Device: o.device}
	if o.backend != "" {
		return backend.Get(o.backend, cfg)
	}
	return backend.Default(cfg)
}

// Err returns the reason the surface is degraded, wrapping
// ErrContextUnavailable, or nil for a working surface.
func (s *Surface) Err() error { return s.err }

// Fallback returns the message to display in place of a degraded surface,
// or "" for a working surface.
func (s *Surface) Fallback() string {
	if s.err == nil {
		return ""
	}
	return FallbackMessage
}

// Backend returns the name of the backend the surface renders on.
func (s *Surface) Backend() string { return s.name }

// Width returns the drawing buffer width.
func (s *Surface) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the drawing buffer height.
func (s *Surface) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Resize changes the drawing buffer size. Cached resources are kept.
func (s *Surface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("webgl: resize %dx%d: %w", width, height, gpucore.ErrInvalidSize)
	}
	if s.ctx != nil && !s.closed {
		if err := s.ctx.Resize(width, height); err != nil {
			return fmt.Errorf("webgl: resize: %w", err)
		}
	}
	s.width, s.height = width, height
	return nil
}

// Stats returns the cache sizes and counters of the surface.
func (s *Surface) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hits, misses uint64
	for _, cs := range []cache.Stats{
		s.shaders.Stats(), s.programs.Stats(), s.geometries.Stats(), s.textures.Stats(),
	} {
		hits += cs.Hits
		misses += cs.Misses
	}
	return Stats{
		Shaders:    s.shaders.Len(),
		Programs:   s.programs.Len(),
		Geometries: s.geometries.Len(),
		Textures:   s.textures.Len(),
		Hits:       int(hits),   //nolint:gosec // lookup counts fit int
		Misses:     int(misses), //nolint:gosec // lookup counts fit int
		Uploads:    s.uploads,
		Draws:      s.draws,
		Skipped:    s.skipped,
		Frames:     s.frames,
	}
}

// Snapshot returns the pixels of the last rendered frame, top row first.
// It returns ErrSnapshotUnsupported when the backend keeps no pixels.
func (s *Surface) Snapshot() (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, gpucore.ErrClosed
	}
	r, ok := s.ctx.(interface {
		ReadPixels() (*image.NRGBA, error)
	})
	if !ok {
		return nil, ErrSnapshotUnsupported
	}
	return r.ReadPixels()
}

// Close releases the context and every cached resource. Close is
// idempotent.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.ctx != nil {
		s.ctx.Close()
	}
	s.shaders.Clear()
	s.programs.Clear()
	s.geometries.Clear()
	s.textures.Clear()
}
