package webgl

import (
	"image"

	"github.com/gogpu/webgl/gpucore"
)

// Texture filters.
const (
	// Linear samples with trilinear filtering over a mipmap chain.
	Linear = gpucore.FilterLinear
	// Nearest samples the nearest texel of the base level.
	Nearest = gpucore.FilterNearest
)

// Texture is a decoded image bound to sampler2D uniforms. A surface
// uploads each distinct texture once and never re-uploads it.
type Texture struct {
	Identity

	img    image.Image
	filter Filter
}

var _ Value = (*Texture)(nil)

// NewTexture wraps a decoded image.
func NewTexture(img image.Image, filter Filter) *Texture {
	t := &Texture{img: img, filter: filter}
	EnsureIdentity(t)
	return t
}

// Kind reports KindSampler2D.
func (*Texture) Kind() gpucore.Kind { return gpucore.KindSampler2D }

// Image returns the source image.
func (t *Texture) Image() image.Image { return t.img }

// Filter returns the sampling filter.
func (t *Texture) Filter() Filter { return t.filter }

// Size returns the image dimensions.
func (t *Texture) Size() (width, height int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}
