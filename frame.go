package webgl

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/webgl/gpucore"
	"github.com/gogpu/webgl/internal/geom"
	imgutil "github.com/gogpu/webgl/internal/image"
)

// Draw call errors.
var (
	// ErrMissingShader is returned for an entity without a vertex or
	// fragment shader.
	ErrMissingShader = errors.New("webgl: entity is missing a shader")

	// ErrAttributeConflict is returned when a program reads a mesh
	// attribute with a different type than the program that uploaded it.
	ErrAttributeConflict = errors.New("webgl: attribute uploaded with a different type")

	// ErrNoImage is returned for a texture without an image.
	ErrNoImage = errors.New("webgl: texture has no image")
)

// programKey identifies a program by its shader pair.
type programKey struct {
	vertex, fragment ID
}

// program is a linked program with its reflected slots.
type program struct {
	id         gpucore.ProgramID
	attributes []gpucore.Slot
	uniforms   []gpucore.Slot
}

// attribute is an uploaded vertex buffer of one mesh attribute.
type attribute struct {
	buf  gpucore.BufferID
	kind gpucore.Kind
}

// geometry holds the uploaded buffers of one mesh. Attribute buffers are
// added as programs request them.
type geometry struct {
	index      gpucore.BufferID
	count      int
	attributes map[string]attribute
}

// binder binds one reflected uniform. unit is the next free texture unit
// of the current draw.
type binder func(s *Surface, slot gpucore.Slot, v Value, unit *int) error

var binders = map[gpucore.Kind]binder{
	gpucore.KindInt:       bindValue,
	gpucore.KindFloat:     bindValue,
	gpucore.KindVec2:      bindValue,
	gpucore.KindVec3:      bindValue,
	gpucore.KindVec4:      bindValue,
	gpucore.KindIVec2:     bindValue,
	gpucore.KindIVec3:     bindValue,
	gpucore.KindIVec4:     bindValue,
	gpucore.KindMat4:      bindValue,
	gpucore.KindSampler2D: bindSampler,
}

// RenderFrame draws entities in order, painter's style.
//
// settings are applied once, on the first frame rendered on the surface.
// Each frame sets the viewport, clears color and depth, then for every
// entity resolves its program, binds its uniforms, uploads and binds its
// geometry, applies its settings and issues the draw. An entity whose
// mesh is empty is skipped without touching the context.
//
// An entity that fails to build or bind is not drawn; the error is kept
// and the frame continues with the next entity. RenderFrame returns the
// joined errors of the frame. A degraded surface returns its Err.
func (s *Surface) RenderFrame(entities []Entity, settings []Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if s.closed {
		return gpucore.ErrClosed
	}

	if !s.started {
		applySettings(s.ctx, settings)
		s.started = true
	}

	err := s.ctx.BeginFrame(gpucore.Frame{
		Width:      s.width,
		Height:     s.height,
		ClearColor: s.opts.clearColor,
		ClearDepth: 1,
	})
	if err != nil {
		return fmt.Errorf("webgl: begin frame: %w", err)
	}

	var errs []error
	for i := range entities {
		if err := s.draw(&entities[i]); err != nil {
			slogger().Warn("webgl: entity not drawn", "index", i, "error", err)
			errs = append(errs, fmt.Errorf("webgl: entity %d: %w", i, err))
		}
	}
	if err := s.ctx.EndFrame(); err != nil {
		errs = append(errs, fmt.Errorf("webgl: end frame: %w", err))
	}
	s.frames++
	return errors.Join(errs...)
}

func (s *Surface) draw(e *Entity) error {
	if e.Mesh == nil || e.Mesh.Len() == 0 {
		s.skipped++
		return nil
	}
	if e.Vertex == nil || e.Fragment == nil {
		return ErrMissingShader
	}

	p, err := s.program(e.Vertex, e.Fragment)
	if err != nil {
		return err
	}
	if err := s.ctx.UseProgram(p.id); err != nil {
		return err
	}
	if err := s.bindUniforms(p, e.Uniforms); err != nil {
		return err
	}

	g, err := s.geometry(e.Mesh)
	if err != nil {
		return err
	}
	if err := s.upload(g, p, e.Mesh); err != nil {
		return err
	}

	applySettings(s.ctx, e.Settings)

	if err := s.bindAttributes(g, p); err != nil {
		return err
	}
	if err := s.ctx.BindIndexBuffer(g.index); err != nil {
		return err
	}
	if err := s.ctx.DrawElements(e.Mesh.Mode(), g.count); err != nil {
		return err
	}
	s.draws++
	return nil
}

// program resolves the program of a shader pair, compiling and linking on
// a miss. A failed build caches nothing.
func (s *Surface) program(vs, fs *Shader) (*program, error) {
	key := programKey{vertex: EnsureIdentity(vs), fragment: EnsureIdentity(fs)}
	return s.programs.GetOrCreate(key, func() (*program, error) {
		v, err := s.shader(vs)
		if err != nil {
			return nil, err
		}
		f, err := s.shader(fs)
		if err != nil {
			return nil, err
		}
		id, err := s.ctx.LinkProgram(v, f)
		if err != nil {
			return nil, err
		}
		p := &program{
			id:         id,
			attributes: s.ctx.ActiveAttributes(id),
			uniforms:   s.ctx.ActiveUniforms(id),
		}
		slogger().Debug("webgl: program linked",
			"vertex", key.vertex, "fragment", key.fragment,
			"attributes", len(p.attributes), "uniforms", len(p.uniforms))
		return p, nil
	})
}

func (s *Surface) shader(sh *Shader) (gpucore.ShaderID, error) {
	return s.shaders.GetOrCreate(EnsureIdentity(sh), func() (gpucore.ShaderID, error) {
		return s.ctx.CompileShader(sh.Stage(), sh.Source())
	})
}

// bindUniforms sets every active uniform present in u. Texture units are
// counted from 0 for each draw.
func (s *Surface) bindUniforms(p *program, u Uniforms) error {
	unit := 0
	var errs []error
	for _, slot := range p.uniforms {
		v, ok := u[slot.Name]
		if !ok || v == nil {
			continue
		}
		bind, ok := binders[slot.Kind]
		if !ok {
			slogger().Warn("webgl: uniform skipped",
				"error", &UnsupportedTypeError{Name: slot.Name, Type: slot.Type})
			continue
		}
		if err := bind(s, slot, v, &unit); err != nil {
			errs = append(errs, fmt.Errorf("uniform %q: %w", slot.Name, err))
		}
	}
	return errors.Join(errs...)
}

func bindValue(s *Surface, slot gpucore.Slot, v Value, _ *int) error {
	return s.ctx.Uniform(slot.Location, v)
}

func bindSampler(s *Surface, slot gpucore.Slot, v Value, unit *int) error {
	t, ok := v.(*Texture)
	if !ok || t == nil {
		return fmt.Errorf("%w: %s for sampler2D", gpucore.ErrKindMismatch, v.Kind())
	}
	tex, err := s.texture(t)
	if err != nil {
		return err
	}
	u := *unit
	if err := s.ctx.BindTexture(u, tex); err != nil {
		return err
	}
	if err := s.ctx.UniformSampler(slot.Location, u); err != nil {
		return err
	}
	*unit = u + 1
	return nil
}

// texture resolves the uploaded texture of t. The image is flipped so row
// 0 is the bottom row; linear textures get a full mipmap chain.
func (s *Surface) texture(t *Texture) (gpucore.TextureID, error) {
	return s.textures.GetOrCreate(EnsureIdentity(t), func() (gpucore.TextureID, error) {
		if t.img == nil || t.img.Bounds().Empty() {
			return gpucore.InvalidID, ErrNoImage
		}
		base := imgutil.ToNRGBA(t.img, true)
		if l, ok := s.ctx.(textureLimiter); ok {
			base = fitTexture(base, l.MaxTextureSize())
		}
		levels := []*image.NRGBA{base}
		if t.filter == Linear {
			levels = imgutil.Mipmaps(base)
		}
		w, h := t.Size()
		slogger().Debug("webgl: texture upload", "id", t.ID(), "width", w, "height", h,
			"levels", len(levels), "filter", t.filter)
		return s.ctx.CreateTexture(levels, t.filter)
	})
}

// textureLimiter is implemented by contexts with a texture size limit.
type textureLimiter interface {
	MaxTextureSize() int
}

// fitTexture scales img down, keeping its aspect ratio, so neither side
// exceeds limit.
func fitTexture(img *image.NRGBA, limit int) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	longest := max(w, h)
	if limit <= 0 || longest <= limit {
		return img
	}
	nw := max(1, w*limit/longest)
	nh := max(1, h*limit/longest)
	slogger().Info("webgl: texture scaled to device limit",
		"width", w, "height", h, "scaled_width", nw, "scaled_height", nh)
	return imgutil.Scale(img, nw, nh)
}

// geometry resolves the index buffer of m.
func (s *Surface) geometry(m *Mesh) (*geometry, error) {
	return s.geometries.GetOrCreate(EnsureIdentity(m), func() (*geometry, error) {
		size := m.Mode().GroupSize()
		if geom.Overflows(m.Len(), size) {
			slogger().Warn("webgl: mesh exceeds the 16-bit index range, indices wrap",
				"mesh", m.ID(), "vertices", m.vertexCount())
		}
		indices := geom.BuildIndexBuffer(m.Len(), size)
		buf, err := s.ctx.CreateBuffer(gpucore.BufferIndex, geom.Uint16Bytes(indices))
		if err != nil {
			return nil, err
		}
		s.uploads++
		return &geometry{
			index:      buf,
			count:      len(indices),
			attributes: make(map[string]attribute),
		}, nil
	})
}

// upload builds the attribute buffers p reads that g does not hold yet.
func (s *Surface) upload(g *geometry, p *program, m *Mesh) error {
	for _, slot := range p.attributes {
		if !vertexKind(slot.Kind) {
			slogger().Warn("webgl: attribute skipped",
				"error", &UnsupportedTypeError{Name: slot.Name, Type: slot.Type})
			continue
		}
		if a, ok := g.attributes[slot.Name]; ok {
			if a.kind != slot.Kind {
				return fmt.Errorf("%w: %q is %s, program reads %s", ErrAttributeConflict, slot.Name, a.kind, slot.Kind)
			}
			continue
		}

		data, err := packAttribute(m, slot)
		if err != nil {
			return err
		}
		buf, err := s.ctx.CreateBuffer(gpucore.BufferVertex, data)
		if err != nil {
			return err
		}
		s.uploads++
		g.attributes[slot.Name] = attribute{buf: buf, kind: slot.Kind}
		slogger().Debug("webgl: attribute upload", "mesh", m.ID(), "name", slot.Name,
			"kind", slot.Kind, "bytes", len(data))
	}
	return nil
}

func packAttribute(m *Mesh, slot gpucore.Slot) ([]byte, error) {
	size, n := m.Mode().GroupSize(), slot.Kind.Components()
	if slot.Kind.IsInt() {
		v, err := geom.PackIntAttribute(m.Groups(), slot.Name, n, size)
		return geom.Int32Bytes(v), err
	}
	v, err := geom.PackAttribute(m.Groups(), slot.Name, n, size)
	return geom.Float32Bytes(v), err
}

func (s *Surface) bindAttributes(g *geometry, p *program) error {
	for _, slot := range p.attributes {
		a, ok := g.attributes[slot.Name]
		if !ok {
			continue
		}
		if err := s.ctx.BindAttribute(slot.Location.Binding, a.buf, a.kind); err != nil {
			return fmt.Errorf("attribute %q: %w", slot.Name, err)
		}
	}
	return nil
}

// vertexKind reports whether k can be read as a vertex attribute.
func vertexKind(k gpucore.Kind) bool {
	switch k {
	case gpucore.KindInvalid, gpucore.KindMat4, gpucore.KindSampler2D:
		return false
	}
	return true
}
