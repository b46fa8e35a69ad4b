package gpucore

import (
	"errors"
	"fmt"
)

// Context errors for unknown or missing resources.
var (
	// ErrUnknownShader is returned when a ShaderID was not issued by the context.
	ErrUnknownShader = errors.New("gpucore: unknown shader")

	// ErrUnknownProgram is returned when a ProgramID was not issued by the context.
	ErrUnknownProgram = errors.New("gpucore: unknown program")

	// ErrUnknownBuffer is returned when a BufferID was not issued by the context.
	ErrUnknownBuffer = errors.New("gpucore: unknown buffer")

	// ErrUnknownTexture is returned when a TextureID was not issued by the context.
	ErrUnknownTexture = errors.New("gpucore: unknown texture")

	// ErrNoProgram is returned when drawing without a program in use.
	ErrNoProgram = errors.New("gpucore: no program in use")

	// ErrNoFrame is returned when drawing outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("gpucore: draw outside of a frame")

	// ErrNoIndexBuffer is returned when drawing without an index buffer.
	ErrNoIndexBuffer = errors.New("gpucore: no index buffer bound")

	// ErrUnknownLocation is returned when a uniform location is not an
	// active uniform of the current program.
	ErrUnknownLocation = errors.New("gpucore: unknown uniform location")

	// ErrKindMismatch is returned when a value does not match the kind of
	// the slot it is bound to.
	ErrKindMismatch = errors.New("gpucore: value kind does not match slot")

	// ErrIndexRange is returned when a draw reads past the index buffer.
	ErrIndexRange = errors.New("gpucore: draw exceeds index buffer")

	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("gpucore: invalid size")

	// ErrClosed is returned by a context after Close.
	ErrClosed = errors.New("gpucore: context closed")
)

// CompileError reports a failed shader compilation. Log is the compiler
// diagnostic, verbatim.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("gpucore: %s shader compile failed: %s", e.Stage, e.Log)
}

// LinkError reports a failed program link. Log is the linker diagnostic.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "gpucore: program link failed: " + e.Log
}

// UnsupportedTypeError reports an active attribute or uniform whose type
// has no binding. It is logged and the slot is skipped.
type UnsupportedTypeError struct {
	Name string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("gpucore: %q has unsupported type %s", e.Name, e.Type)
}
