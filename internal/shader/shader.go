// Package shader compiles WGSL shader stages, links them into programs and
// reflects their active vertex inputs and uniforms.
//
// Compilation runs the naga front end (parse, lower, validate). Globals that
// no entry point reaches are removed with ir.CompactUnused, so only active
// resources are reported. A vertex input is active when the entry point
// body reads it.
package shader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/webgl/gpucore"
)

// Varying is a location-bound stage input or output.
type Varying struct {
	Name     string
	Location uint32
	Kind     gpucore.Kind
	Type     string
	// Active is false for inputs the entry point never reads.
	Active bool
}

// Class classifies a resource binding.
type Class uint8

const (
	// ClassUniform is a var<uniform> buffer binding.
	ClassUniform Class = iota
	// ClassTexture is a sampled texture binding.
	ClassTexture
	// ClassSampler is a sampler binding.
	ClassSampler
	// ClassOther is any other resource (storage buffers, storage textures).
	ClassOther
)

// Binding is an active @group/@binding resource of a stage or program.
type Binding struct {
	Name     string
	Location gpucore.Location
	Class    Class
	Kind     gpucore.Kind
	Type     string
	// Size is the byte size of a uniform buffer binding.
	Size uint32
	// Visibility is the set of stages that use the binding.
	Visibility gputypes.ShaderStages
}

// Module is one compiled shader stage.
type Module struct {
	Stage  gpucore.Stage
	Source string
	Entry  string

	inputs   []Varying
	outputs  []Varying
	bindings []Binding
}

// Inputs returns the location inputs of the entry point, ordered by location.
func (m *Module) Inputs() []Varying { return m.inputs }

// Outputs returns the location outputs of the entry point, ordered by location.
func (m *Module) Outputs() []Varying { return m.outputs }

// Bindings returns the active resource bindings, ordered by group and binding.
func (m *Module) Bindings() []Binding { return m.bindings }

// Compile compiles WGSL source for one stage. The source must declare
// exactly one entry point and it must match stage. Failures are returned as
// *gpucore.CompileError with the compiler diagnostic as log.
func Compile(stage gpucore.Stage, source string) (*Module, error) {
	fail := func(format string, args ...any) error {
		return &gpucore.CompileError{Stage: stage, Log: fmt.Sprintf(format, args...)}
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fail("%v", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fail("%v", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fail("%v", err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fail("%s", strings.Join(msgs, "\n"))
	}

	if n := len(module.EntryPoints); n != 1 {
		return nil, fail("expected one @%s entry point, found %d entry points", stage, n)
	}
	ep := &module.EntryPoints[0]
	want := ir.StageVertex
	if stage == gpucore.StageFragment {
		want = ir.StageFragment
	}
	if ep.Stage != want {
		return nil, fail("entry point %q is not a @%s entry point", ep.Name, stage)
	}

	ir.CompactUnused(module)
	ep = &module.EntryPoints[0]

	m := &Module{
		Stage:  stage,
		Source: source,
		Entry:  ep.Name,
	}
	m.inputs = entryInputs(module, &ep.Function)
	m.outputs = entryOutputs(module, &ep.Function)
	m.bindings = globalBindings(module, stage)

	slogger().Debug("shader: compiled",
		"stage", stage.String(),
		"entry", m.Entry,
		"inputs", len(m.inputs),
		"bindings", len(m.bindings))
	return m, nil
}

// entryInputs collects @location arguments, flattening struct arguments.
// A struct member is active when the body reads it or the whole argument.
func entryInputs(module *ir.Module, fn *ir.Function) []Varying {
	var out []Varying
	for i, arg := range fn.Arguments {
		all, members := argumentReads(fn, uint32(i)) //nolint:gosec // argument count fits uint32
		if loc, ok := locationOf(arg.Binding); ok {
			out = append(out, varying(module, arg.Name, loc, arg.Type, all || len(members) > 0))
			continue
		}
		if arg.Binding != nil {
			continue // builtin
		}
		if st, ok := module.Types[arg.Type].Inner.(ir.StructType); ok {
			for j, member := range st.Members {
				if loc, ok := locationOf(member.Binding); ok {
					active := all || members[uint32(j)] //nolint:gosec // member count fits uint32
					out = append(out, varying(module, member.Name, loc, member.Type, active))
				}
			}
		}
	}
	sortVaryings(out)
	return out
}

// entryOutputs collects the @location results of the entry point.
func entryOutputs(module *ir.Module, fn *ir.Function) []Varying {
	if fn.Result == nil {
		return nil
	}
	var out []Varying
	if loc, ok := locationOf(fn.Result.Binding); ok {
		out = append(out, varying(module, "", loc, fn.Result.Type, true))
		return out
	}
	if st, ok := module.Types[fn.Result.Type].Inner.(ir.StructType); ok {
		for _, member := range st.Members {
			if loc, ok := locationOf(member.Binding); ok {
				out = append(out, varying(module, member.Name, loc, member.Type, true))
			}
		}
	}
	sortVaryings(out)
	return out
}

func varying(module *ir.Module, name string, loc uint32, th ir.TypeHandle, active bool) Varying {
	return Varying{
		Name:     name,
		Location: loc,
		Kind:     kindOf(module, th),
		Type:     typeName(module, th),
		Active:   active,
	}
}

func locationOf(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	if lb, ok := (*b).(ir.LocationBinding); ok {
		return lb.Location, true
	}
	return 0, false
}

func sortVaryings(v []Varying) {
	sort.SliceStable(v, func(i, j int) bool { return v[i].Location < v[j].Location })
}

// globalBindings collects the resource globals left after compaction.
func globalBindings(module *ir.Module, stage gpucore.Stage) []Binding {
	visibility := gputypes.ShaderStageVertex
	if stage == gpucore.StageFragment {
		visibility = gputypes.ShaderStageFragment
	}

	var out []Binding
	for _, g := range module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		b := Binding{
			Name:       g.Name,
			Location:   gpucore.Location{Group: g.Binding.Group, Binding: g.Binding.Binding},
			Kind:       kindOf(module, g.Type),
			Type:       typeName(module, g.Type),
			Visibility: visibility,
		}
		switch inner := module.Types[g.Type].Inner.(type) {
		case ir.SamplerType:
			b.Class = ClassSampler
			b.Kind = gpucore.KindInvalid
		case ir.ImageType:
			b.Class = ClassTexture
			if inner.Class == ir.ImageClassStorage {
				b.Class = ClassOther
			}
		default:
			if g.Space == ir.SpaceUniform {
				b.Class = ClassUniform
				b.Size = ir.TypeSize(module, g.Type)
				if b.Kind == gpucore.KindSampler2D {
					b.Kind = gpucore.KindInvalid
				}
			} else {
				b.Class = ClassOther
				b.Kind = gpucore.KindInvalid
			}
		}
		if b.Class == ClassTexture && b.Kind != gpucore.KindSampler2D {
			b.Kind = gpucore.KindInvalid
		}
		out = append(out, b)
	}
	sortBindings(out)
	return out
}

func sortBindings(b []Binding) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Location.Group != b[j].Location.Group {
			return b[i].Location.Group < b[j].Location.Group
		}
		return b[i].Location.Binding < b[j].Location.Binding
	})
}
