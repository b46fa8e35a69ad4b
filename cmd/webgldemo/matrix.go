package main

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/webgl"
)

// Column-major 4x4 matrices for the camera. Clip space depth is [0, 1].

func perspective(fovy, aspect, near, far float32) webgl.Mat4 {
	f := 1 / math32.Tan(fovy/2)
	nf := 1 / (near - far)
	return webgl.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, -1,
		0, 0, far * near * nf, 0,
	}
}

func translate(x, y, z float32) webgl.Mat4 {
	return webgl.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func rotateX(a float32) webgl.Mat4 {
	s, c := math32.Sincos(a)
	return webgl.Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

func rotateY(a float32) webgl.Mat4 {
	s, c := math32.Sincos(a)
	return webgl.Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// mul returns a*b.
func mul(a, b webgl.Mat4) webgl.Mat4 {
	var m webgl.Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			m[col*4+row] = sum
		}
	}
	return m
}
