package backend

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Config carries the parameters a factory needs to create a context.
type Config struct {
	// Width and Height are the drawing buffer size in pixels.
	Width, Height int

	// Device is an optional host-provided GPU device. Backends that do
	// not render on a GPU ignore it.
	Device render.DeviceHandle

	// MaxTextureSize caps the side length of textures. Zero, or a value
	// above the device limit, uses the default device limit.
	MaxTextureSize int
}

// Validate reports whether the configuration can create a context.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.MaxTextureSize < 0 {
		return gpucore.ErrInvalidSize
	}
	return nil
}

// TextureLimit returns the largest texture side length a context created
// from c accepts.
func (c Config) TextureLimit() int {
	limit := int(gputypes.DefaultLimits().MaxTextureDimension2D)
	if c.MaxTextureSize > 0 && c.MaxTextureSize < limit {
		return c.MaxTextureSize
	}
	return limit
}

// Factory creates a graphics context for one surface.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Factory func(cfg Config) (gpucore.Context, error)

// Named is implemented by contexts that report their backend name.
type Named interface {
	Name() string
}
