package webgl

import "github.com/gogpu/webgl/gpucore"

// Shader is one stage of WGSL source. A surface compiles each distinct
// shader once; reuse the same *Shader across frames to hit the cache.
type Shader struct {
	Identity

	stage  gpucore.Stage
	source string
}

// VertexShader returns a vertex shader. src must declare one @vertex entry point.
func VertexShader(src string) *Shader {
	return newShader(gpucore.StageVertex, src)
}

// FragmentShader returns a fragment shader. src must declare one @fragment entry point.
func FragmentShader(src string) *Shader {
	return newShader(gpucore.StageFragment, src)
}

func newShader(stage gpucore.Stage, src string) *Shader {
	s := &Shader{stage: stage, source: src}
	EnsureIdentity(s)
	return s
}

// Stage returns the shader stage.
func (s *Shader) Stage() gpucore.Stage { return s.stage }

// Source returns the shader source.
func (s *Shader) Source() string { return s.source }
