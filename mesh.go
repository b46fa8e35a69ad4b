package webgl

import "github.com/gogpu/webgl/gpucore"

// Mesh is geometry for one draw call: primitive groups of vertex records
// and the topology that assembles them.
//
// Triangles hold groups of three vertices, Lines groups of two, and every
// other mode one vertex per group. A surface uploads each attribute of a
// mesh once, the first time a program reads it.
type Mesh struct {
	Identity

	mode   gpucore.Topology
	groups [][]Vertex
}

// Triangles returns a mesh of independent triangles.
func Triangles(tris [][3]Vertex) *Mesh {
	groups := make([][]Vertex, len(tris))
	for i := range tris {
		groups[i] = tris[i][:]
	}
	return newMesh(gpucore.TopologyTriangles, groups)
}

// Lines returns a mesh of independent line segments.
func Lines(lines [][2]Vertex) *Mesh {
	groups := make([][]Vertex, len(lines))
	for i := range lines {
		groups[i] = lines[i][:]
	}
	return newMesh(gpucore.TopologyLines, groups)
}

// Points returns a mesh of single points.
func Points(vertices []Vertex) *Mesh { return single(gpucore.TopologyPoints, vertices) }

// LineStrip returns a connected polyline.
func LineStrip(vertices []Vertex) *Mesh { return single(gpucore.TopologyLineStrip, vertices) }

// LineLoop returns a closed polyline.
func LineLoop(vertices []Vertex) *Mesh { return single(gpucore.TopologyLineLoop, vertices) }

// TriangleStrip returns a connected strip of triangles.
func TriangleStrip(vertices []Vertex) *Mesh {
	return single(gpucore.TopologyTriangleStrip, vertices)
}

// TriangleFan returns triangles that share the first vertex.
func TriangleFan(vertices []Vertex) *Mesh { return single(gpucore.TopologyTriangleFan, vertices) }

func single(mode gpucore.Topology, vertices []Vertex) *Mesh {
	groups := make([][]Vertex, len(vertices))
	for i := range vertices {
		groups[i] = vertices[i : i+1 : i+1]
	}
	return newMesh(mode, groups)
}

func newMesh(mode gpucore.Topology, groups [][]Vertex) *Mesh {
	m := &Mesh{mode: mode, groups: groups}
	EnsureIdentity(m)
	return m
}

// Mode returns the primitive topology.
func (m *Mesh) Mode() gpucore.Topology { return m.mode }

// Len returns the number of primitive groups.
func (m *Mesh) Len() int { return len(m.groups) }

// Groups returns the primitive groups. The slice must not be modified.
func (m *Mesh) Groups() [][]Vertex { return m.groups }

// vertexCount returns the number of vertices the mesh emits.
func (m *Mesh) vertexCount() int { return len(m.groups) * m.mode.GroupSize() }
