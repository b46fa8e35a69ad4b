package webgl

import (
	"errors"
	"fmt"

	"github.com/gogpu/webgl/gpucore"
)

// ErrContextUnavailable is reported by a degraded surface whose graphics
// context could not be created. Such a surface renders nothing.
var ErrContextUnavailable = errors.New("webgl: graphics context unavailable")

// FallbackMessage is shown in place of the canvas by a degraded surface.
const FallbackMessage = "Enable WebGL to see this content!"

// Errors raised while building a draw call. They are the gpucore types so
// callers can match them with errors.As regardless of the backend.
type (
	// CompileError reports a failed shader compilation.
	CompileError = gpucore.CompileError
	// LinkError reports a failed program link.
	LinkError = gpucore.LinkError
	// UnsupportedTypeError reports an active slot whose type cannot be bound.
	UnsupportedTypeError = gpucore.UnsupportedTypeError
)

// TextureLoadError reports a texture source that could not be fetched or
// decoded. It is delivered through the LoadTexture result, never raised
// inside a frame.
type TextureLoadError struct {
	Locator string
	Err     error
}

func (e *TextureLoadError) Error() string {
	return fmt.Sprintf("webgl: load texture %q: %v", e.Locator, e.Err)
}

func (e *TextureLoadError) Unwrap() error { return e.Err }
