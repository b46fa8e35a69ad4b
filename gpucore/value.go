package gpucore

// Value is a uniform or attribute value. The dynamic type carries the kind
// the renderer dispatches on.
type Value interface {
	Kind() Kind
}

// Scalar, vector and matrix values.
type (
	// Int is a signed 32-bit integer.
	Int int32
	// Float is a 32-bit float.
	Float float32
	// Vec2 is a 2-component float vector.
	Vec2 [2]float32
	// Vec3 is a 3-component float vector.
	Vec3 [3]float32
	// Vec4 is a 4-component float vector.
	Vec4 [4]float32
	// IVec2 is a 2-component integer vector.
	IVec2 [2]int32
	// IVec3 is a 3-component integer vector.
	IVec3 [3]int32
	// IVec4 is a 4-component integer vector.
	IVec4 [4]int32
	// Mat4 is a 4x4 float matrix in column-major order.
	Mat4 [16]float32
)

func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Vec2) Kind() Kind  { return KindVec2 }
func (Vec3) Kind() Kind  { return KindVec3 }
func (Vec4) Kind() Kind  { return KindVec4 }
func (IVec2) Kind() Kind { return KindIVec2 }
func (IVec3) Kind() Kind { return KindIVec3 }
func (IVec4) Kind() Kind { return KindIVec4 }
func (Mat4) Kind() Kind  { return KindMat4 }

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Vertex is one vertex record: attribute name to value.
type Vertex map[string]Value

// AppendFloats appends the float components of v to dst.
// It reports false for integer and non-numeric values.
func AppendFloats(dst []float32, v Value) ([]float32, bool) {
	switch x := v.(type) {
	case Float:
		return append(dst, float32(x)), true
	case Vec2:
		return append(dst, x[:]...), true
	case Vec3:
		return append(dst, x[:]...), true
	case Vec4:
		return append(dst, x[:]...), true
	case Mat4:
		return append(dst, x[:]...), true
	}
	return dst, false
}

// AppendInts appends the integer components of v to dst.
// It reports false for float and non-numeric values.
func AppendInts(dst []int32, v Value) ([]int32, bool) {
	switch x := v.(type) {
	case Int:
		return append(dst, int32(x)), true
	case IVec2:
		return append(dst, x[:]...), true
	case IVec3:
		return append(dst, x[:]...), true
	case IVec4:
		return append(dst, x[:]...), true
	}
	return dst, false
}
