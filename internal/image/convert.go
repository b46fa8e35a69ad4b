// Package image prepares decoded images for texture upload.
//
// Textures are uploaded as tightly packed, non-premultiplied RGBA8 with the
// bottom row first, the layout a WebGL page gets with UNPACK_FLIP_Y set.
package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA converts img to a tightly packed NRGBA image anchored at (0, 0).
// With flipY the rows are reversed so that row 0 is the bottom of img.
//
// An *image.NRGBA that is already packed and anchored is returned as is
// when flipY is false. Otherwise a new image is allocated.
func ToNRGBA(img image.Image, flipY bool) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if n, ok := img.(*image.NRGBA); ok && !flipY && b.Min == (image.Point{}) && n.Stride == w*4 {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	if flipY {
		flipRows(dst)
	}
	return dst
}

// flipRows reverses the row order of img in place.
func flipRows(img *image.NRGBA) {
	h := img.Rect.Dy()
	rowLen := img.Rect.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*img.Stride : top*img.Stride+rowLen]
		b := img.Pix[bottom*img.Stride : bottom*img.Stride+rowLen]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Scale resamples img to w x h with a Catmull-Rom kernel.
// Surfaces use it to fit oversized images into the device texture limit.
func Scale(img *image.NRGBA, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
