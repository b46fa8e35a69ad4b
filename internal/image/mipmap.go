package image

import (
	"image"
	"math"
)

// LevelCount returns the number of mip levels of a full chain for a
// w x h base image: 1 + floor(log2(max(w, h))).
func LevelCount(w, h int) int {
	maxDim := max(w, h)
	if maxDim <= 0 {
		return 0
	}
	return 1 + int(math.Floor(math.Log2(float64(maxDim))))
}

// Mipmaps creates a mipmap chain from base.
//
// Uses a box filter (2x2 average) to downsample each level. The process
// continues until both dimensions reach 1 pixel. base becomes level 0 and
// is not copied.
//
// Returns nil if base is nil or empty.
func Mipmaps(base *image.NRGBA) []*image.NRGBA {
	if base == nil || base.Rect.Empty() {
		return nil
	}

	n := LevelCount(base.Rect.Dx(), base.Rect.Dy())
	levels := make([]*image.NRGBA, n)
	levels[0] = base
	for i := 1; i < n; i++ {
		levels[i] = downsample(levels[i-1])
	}
	return levels
}

// downsample creates a half-size version of src using a box filter.
func downsample(src *image.NRGBA) *image.NRGBA {
	srcW, srcH := src.Rect.Dx(), src.Rect.Dy()
	dstW := max(1, srcW/2)
	dstH := max(1, srcH/2)
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))

	at := func(x, y int) []uint8 {
		i := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
		return src.Pix[i : i+4 : i+4]
	}

	// Box filter: average 2x2 pixels into 1
	for dy := 0; dy < dstH; dy++ {
		for dx := 0; dx < dstW; dx++ {
			sx := dx * 2
			sy := dy * 2

			// Sample 2x2 region (handle odd dimensions)
			p0 := at(sx, sy)
			p1 := at(min(sx+1, srcW-1), sy)
			p2 := at(sx, min(sy+1, srcH-1))
			p3 := at(min(sx+1, srcW-1), min(sy+1, srcH-1))

			o := dst.PixOffset(dx, dy)
			for c := 0; c < 4; c++ {
				sum := uint16(p0[c]) + uint16(p1[c]) + uint16(p2[c]) + uint16(p3[c])
				dst.Pix[o+c] = uint8(sum / 4) //nolint:gosec // average of four bytes fits uint8
			}
		}
	}
	return dst
}
