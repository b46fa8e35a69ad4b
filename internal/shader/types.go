package shader

import (
	"fmt"
	"reflect"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/webgl/gpucore"
)

// kindOf maps an IR type to the kind the renderer can bind.
func kindOf(module *ir.Module, th ir.TypeHandle) gpucore.Kind {
	if int(th) >= len(module.Types) {
		return gpucore.KindInvalid
	}
	switch t := module.Types[th].Inner.(type) {
	case ir.ScalarType:
		switch {
		case t.Width != 4:
			return gpucore.KindInvalid
		case t.Kind == ir.ScalarSint:
			return gpucore.KindInt
		case t.Kind == ir.ScalarFloat:
			return gpucore.KindFloat
		}
	case ir.VectorType:
		if t.Scalar.Width != 4 {
			return gpucore.KindInvalid
		}
		switch t.Scalar.Kind {
		case ir.ScalarFloat:
			return [...]gpucore.Kind{gpucore.KindVec2, gpucore.KindVec3, gpucore.KindVec4}[t.Size-ir.Vec2]
		case ir.ScalarSint:
			return [...]gpucore.Kind{gpucore.KindIVec2, gpucore.KindIVec3, gpucore.KindIVec4}[t.Size-ir.Vec2]
		}
	case ir.MatrixType:
		if t.Columns == ir.Vec4 && t.Rows == ir.Vec4 && t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return gpucore.KindMat4
		}
	case ir.ImageType:
		if t.Dim == ir.Dim2D && !t.Arrayed && !t.Multisampled &&
			t.Class == ir.ImageClassSampled && t.SampledKind == ir.ScalarFloat {
			return gpucore.KindSampler2D
		}
	}
	return gpucore.KindInvalid
}

// typeName spells an IR type in WGSL syntax for diagnostics.
func typeName(module *ir.Module, th ir.TypeHandle) string {
	if int(th) >= len(module.Types) {
		return fmt.Sprintf("type#%d", th)
	}
	t := module.Types[th]
	switch in := t.Inner.(type) {
	case ir.ScalarType:
		return scalarName(in)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", in.Size, scalarName(in.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", in.Columns, in.Rows, scalarName(in.Scalar))
	case ir.ArrayType:
		if in.Size.Constant != nil {
			return fmt.Sprintf("array<%s, %d>", typeName(module, in.Base), *in.Size.Constant)
		}
		return fmt.Sprintf("array<%s>", typeName(module, in.Base))
	case ir.SamplerType:
		if in.Comparison {
			return "sampler_comparison"
		}
		return "sampler"
	case ir.ImageType:
		return imageName(in)
	}
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("%T", t.Inner)
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarSint:
		return fmt.Sprintf("i%d", s.Width*8)
	case ir.ScalarUint:
		return fmt.Sprintf("u%d", s.Width*8)
	case ir.ScalarFloat:
		return fmt.Sprintf("f%d", s.Width*8)
	case ir.ScalarBool:
		return "bool"
	default:
		return "abstract"
	}
}

func imageName(t ir.ImageType) string {
	dim := [...]string{ir.Dim1D: "1d", ir.Dim2D: "2d", ir.Dim3D: "3d", ir.DimCube: "cube"}
	name := "texture_"
	switch t.Class {
	case ir.ImageClassDepth:
		name += "depth_"
	case ir.ImageClassStorage:
		name += "storage_"
	case ir.ImageClassExternal:
		return "texture_external"
	}
	if t.Multisampled {
		name += "multisampled_"
	}
	if int(t.Dim) < len(dim) {
		name += dim[t.Dim]
	}
	if t.Arrayed {
		name += "_array"
	}
	if t.Class == ir.ImageClassSampled {
		name += "<" + scalarName(ir.ScalarType{Kind: t.SampledKind, Width: 4}) + ">"
	}
	return name
}

var (
	exprHandleType = reflect.TypeOf(ir.ExpressionHandle(0))
	emitRangeType  = reflect.TypeOf(ir.Range{})
)

// argumentReads reports how the body of fn reads argument index. all is
// set when the argument is used as a whole; members holds the struct
// members reached through a constant-index access.
//
// The front end materializes FunctionArgument expressions whether or not
// the argument is used, so an argument is read when some other
// expression, local initializer or statement refers to one of them.
func argumentReads(fn *ir.Function, index uint32) (all bool, members map[uint32]bool) {
	args := make(map[ir.ExpressionHandle]bool)
	for h, e := range fn.Expressions {
		if fa, ok := e.Kind.(ir.ExprFunctionArgument); ok && fa.Index == index {
			args[ir.ExpressionHandle(h)] = true //nolint:gosec // handle fits uint32
		}
	}
	if len(args) == 0 {
		return false, nil
	}
	members = make(map[uint32]bool)
	for h, e := range fn.Expressions {
		if args[ir.ExpressionHandle(h)] { //nolint:gosec // handle fits uint32
			continue
		}
		if ai, ok := e.Kind.(ir.ExprAccessIndex); ok && args[ai.Base] {
			members[ai.Index] = true
			continue
		}
		if mentions(reflect.ValueOf(e.Kind), args) {
			all = true
		}
	}
	if mentions(reflect.ValueOf(fn.LocalVars), args) || mentions(reflect.ValueOf(fn.Body), args) {
		all = true
	}
	return all, members
}

// mentions walks an IR value and reports whether any ExpressionHandle field
// is in hs. Emit ranges are skipped: they cover expressions, they do not
// use them.
func mentions(v reflect.Value, hs map[ir.ExpressionHandle]bool) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return false
		}
		return mentions(v.Elem(), hs)
	case reflect.Struct:
		if v.Type() == emitRangeType {
			return false
		}
		for i := 0; i < v.NumField(); i++ {
			if mentions(v.Field(i), hs) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if mentions(v.Index(i), hs) {
				return true
			}
		}
	case reflect.Uint32:
		return v.Type() == exprHandleType && hs[ir.ExpressionHandle(v.Uint())] //nolint:gosec // handle fits uint32
	}
	return false
}
