package webgl

// Entity is one draw call: a shader pair, a mesh, uniform values and the
// settings applied right before it is drawn. The mesh decides the
// primitive topology.
type Entity struct {
	Vertex   *Shader
	Fragment *Shader
	Mesh     *Mesh
	Uniforms Uniforms
	Settings []Setting
}

// NewEntity returns an entity. It has no side effects: identities are
// assigned by the Shader and Mesh constructors or by EnsureIdentity.
func NewEntity(vertex, fragment *Shader, mesh *Mesh, uniforms Uniforms, settings ...Setting) Entity {
	return Entity{
		Vertex:   vertex,
		Fragment: fragment,
		Mesh:     mesh,
		Uniforms: uniforms,
		Settings: settings,
	}
}
