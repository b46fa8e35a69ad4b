// Package geom converts primitive groups of vertex records into the flat
// attribute and index arrays uploaded to the GPU.
//
// Every array produced here uses the same ordering: group-major, then
// member within the group, then component. The index buffer is the identity
// sequence over that ordering, so attribute i of vertex j of group g lives
// at element (g*groupSize+j)*components+i.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/webgl/gpucore"
)

// MaxIndexedVertices is the number of vertices addressable by uint16 indices.
const MaxIndexedVertices = math.MaxUint16 + 1

// Packing errors.
var (
	// ErrMissingAttribute is returned when a vertex lacks the requested field.
	ErrMissingAttribute = errors.New("geom: vertex is missing attribute")

	// ErrAttributeKind is returned when a field's value does not match the
	// requested numeric kind or component count.
	ErrAttributeKind = errors.New("geom: attribute kind mismatch")

	// ErrGroupSize is returned when a group has the wrong number of members.
	ErrGroupSize = errors.New("geom: wrong group size")
)

// PackAttribute flattens the float attribute name of every member of every
// group. The result has len(groups)*groupSize*components elements.
func PackAttribute(groups [][]gpucore.Vertex, name string, components, groupSize int) ([]float32, error) {
	out := make([]float32, 0, len(groups)*groupSize*components)
	for g, group := range groups {
		if len(group) != groupSize {
			return nil, fmt.Errorf("%w: group %d has %d members, want %d", ErrGroupSize, g, len(group), groupSize)
		}
		for m, vertex := range group {
			v, ok := vertex[name]
			if !ok || v == nil {
				return nil, fmt.Errorf("%w %q (group %d, member %d)", ErrMissingAttribute, name, g, m)
			}
			n := len(out)
			out, ok = gpucore.AppendFloats(out, v)
			if !ok || len(out)-n != components {
				return nil, fmt.Errorf("%w: %q is %v, want %d float components", ErrAttributeKind, name, v.Kind(), components)
			}
		}
	}
	return out, nil
}

// PackIntAttribute is PackAttribute for signed integer attributes.
func PackIntAttribute(groups [][]gpucore.Vertex, name string, components, groupSize int) ([]int32, error) {
	out := make([]int32, 0, len(groups)*groupSize*components)
	for g, group := range groups {
		if len(group) != groupSize {
			return nil, fmt.Errorf("%w: group %d has %d members, want %d", ErrGroupSize, g, len(group), groupSize)
		}
		for m, vertex := range group {
			v, ok := vertex[name]
			if !ok || v == nil {
				return nil, fmt.Errorf("%w %q (group %d, member %d)", ErrMissingAttribute, name, g, m)
			}
			n := len(out)
			out, ok = gpucore.AppendInts(out, v)
			if !ok || len(out)-n != components {
				return nil, fmt.Errorf("%w: %q is %v, want %d int components", ErrAttributeKind, name, v.Kind(), components)
			}
		}
	}
	return out, nil
}

// BuildIndexBuffer returns the identity index sequence 0..n*groupSize-1.
//
// Indices are uint16. Geometry with more than MaxIndexedVertices vertices
// wraps around; callers can detect this with Overflows.
func BuildIndexBuffer(n, groupSize int) []uint16 {
	count := n * groupSize
	if count <= 0 {
		return nil
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = uint16(i) //nolint:gosec // wrap-around is the documented limit
	}
	return out
}

// Overflows reports whether n groups of groupSize vertices exceed the
// uint16 index range.
func Overflows(n, groupSize int) bool {
	return n*groupSize > MaxIndexedVertices
}

// ExpandIndices rewrites topologies that WebGPU-style pipelines lack.
// A triangle fan becomes a triangle list (0, i, i+1) and a line loop
// becomes a line strip closed by repeating the first index. Other
// topologies are returned unchanged.
func ExpandIndices(indices []uint16, topology gpucore.Topology) ([]uint16, gpucore.Topology) {
	switch topology {
	case gpucore.TopologyTriangleFan:
		if len(indices) < 3 {
			return nil, gpucore.TopologyTriangles
		}
		out := make([]uint16, 0, (len(indices)-2)*3)
		for i := 1; i+1 < len(indices); i++ {
			out = append(out, indices[0], indices[i], indices[i+1])
		}
		return out, gpucore.TopologyTriangles
	case gpucore.TopologyLineLoop:
		if len(indices) < 2 {
			return nil, gpucore.TopologyLineStrip
		}
		out := make([]uint16, len(indices)+1)
		copy(out, indices)
		out[len(indices)] = indices[0]
		return out, gpucore.TopologyLineStrip
	default:
		return indices, topology
	}
}
