package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/webgl/gpucore"
)

// Program is a linked vertex/fragment pair with its reflected interface.
type Program struct {
	Vertex   *Module
	Fragment *Module

	attributes []gpucore.Slot
	uniforms   []gpucore.Slot
	bindings   []Binding
}

// Attributes returns the active vertex inputs, ordered by location.
func (p *Program) Attributes() []gpucore.Slot { return p.attributes }

// Uniforms returns the active uniforms (buffers and sampled textures),
// ordered by group and binding. Samplers are not uniforms; see Bindings.
func (p *Program) Uniforms() []gpucore.Slot { return p.uniforms }

// Bindings returns every active resource binding of both stages, merged
// by location and ordered by group and binding.
func (p *Program) Bindings() []Binding { return p.bindings }

// Binding returns the binding at loc.
func (p *Program) Binding(loc gpucore.Location) (Binding, bool) {
	for _, b := range p.bindings {
		if b.Location == loc {
			return b, true
		}
	}
	return Binding{}, false
}

// SamplerTexture returns the texture binding a sampler at loc samples:
// the binding immediately before it in the same group.
func (p *Program) SamplerTexture(loc gpucore.Location) (Binding, bool) {
	if loc.Binding == 0 {
		return Binding{}, false
	}
	b, ok := p.Binding(gpucore.Location{Group: loc.Group, Binding: loc.Binding - 1})
	if !ok || b.Class != ClassTexture {
		return Binding{}, false
	}
	return b, true
}

// Link checks that a vertex and a fragment stage agree on their interface
// and returns the linked program. Failures are *gpucore.LinkError.
func Link(vs, fs *Module) (*Program, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if vs == nil || vs.Stage != gpucore.StageVertex {
		addf("first shader is not a vertex shader")
	}
	if fs == nil || fs.Stage != gpucore.StageFragment {
		addf("second shader is not a fragment shader")
	}
	if len(problems) > 0 {
		return nil, &gpucore.LinkError{Log: strings.Join(problems, "\n")}
	}

	outputs := make(map[uint32]Varying, len(vs.outputs))
	for _, o := range vs.outputs {
		outputs[o.Location] = o
	}
	for _, in := range fs.inputs {
		out, ok := outputs[in.Location]
		switch {
		case !ok:
			addf("fragment input %q at location %d is not written by the vertex shader", in.Name, in.Location)
		case out.Type != in.Type:
			addf("location %d: vertex output is %s, fragment input %q is %s", in.Location, out.Type, in.Name, in.Type)
		}
	}

	merged := make([]Binding, 0, len(vs.bindings)+len(fs.bindings))
	merged = append(merged, vs.bindings...)
	for _, fb := range fs.bindings {
		i := indexOfBinding(merged, fb.Location)
		if i < 0 {
			merged = append(merged, fb)
			continue
		}
		vb := merged[i]
		if vb.Name != fb.Name || vb.Type != fb.Type {
			addf("binding %s is %s: %s in the vertex shader and %s: %s in the fragment shader",
				fb.Location, vb.Name, vb.Type, fb.Name, fb.Type)
			continue
		}
		merged[i].Visibility |= fb.Visibility
	}

	seen := make(map[string]gpucore.Location, len(merged))
	for _, b := range merged {
		if prev, dup := seen[b.Name]; dup && b.Class != ClassSampler {
			addf("uniform %q is declared at both %s and %s", b.Name, prev, b.Location)
		}
		seen[b.Name] = b.Location
	}

	if len(problems) > 0 {
		return nil, &gpucore.LinkError{Log: strings.Join(problems, "\n")}
	}
	sortBindings(merged)

	p := &Program{Vertex: vs, Fragment: fs, bindings: merged}
	for _, in := range vs.inputs {
		if !in.Active {
			continue
		}
		p.attributes = append(p.attributes, gpucore.Slot{
			Name:     in.Name,
			Kind:     in.Kind,
			Type:     in.Type,
			Location: gpucore.Location{Binding: in.Location},
			Count:    1,
		})
	}
	for _, b := range merged {
		if b.Class == ClassSampler {
			continue
		}
		p.uniforms = append(p.uniforms, gpucore.Slot{
			Name:     b.Name,
			Kind:     b.Kind,
			Type:     b.Type,
			Location: b.Location,
			Count:    1,
		})
	}

	slogger().Debug("shader: linked",
		"attributes", len(p.attributes),
		"uniforms", len(p.uniforms))
	return p, nil
}

func indexOfBinding(b []Binding, loc gpucore.Location) int {
	for i := range b {
		if b[i].Location == loc {
			return i
		}
	}
	return -1
}
