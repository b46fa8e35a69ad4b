package webgl

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/webgl/gpucore"
)

// Setting is a deferred change to a context's fixed-function state.
//
// Surface settings are applied once, on the first frame. Entity settings
// are applied right before the entity is drawn. Settings run in list order
// and later ones override earlier ones. Their effect persists in the
// context until another setting changes it.
type Setting interface {
	Apply(ctx gpucore.Context)
}

// SettingFunc adapts a function to a Setting.
type SettingFunc func(ctx gpucore.Context)

// Apply calls f(ctx).
func (f SettingFunc) Apply(ctx gpucore.Context) { f(ctx) }

func state(fn func(s *gpucore.State)) Setting {
	return SettingFunc(func(ctx gpucore.Context) { fn(ctx.State()) })
}

// Enable turns a capability on.
func Enable(c gpucore.Capability) Setting {
	return state(func(s *gpucore.State) { s.Enable(c) })
}

// Disable turns a capability off.
func Disable(c gpucore.Capability) Setting {
	return state(func(s *gpucore.State) { s.Disable(c) })
}

// BlendFunc sets the source and destination factors for color and alpha.
func BlendFunc(src, dst gputypes.BlendFactor) Setting {
	return BlendFuncSeparate(src, dst, src, dst)
}

// BlendFuncSeparate sets the color and alpha factors independently.
func BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gputypes.BlendFactor) Setting {
	return state(func(s *gpucore.State) {
		s.Blend.SrcRGB, s.Blend.DstRGB = srcRGB, dstRGB
		s.Blend.SrcAlpha, s.Blend.DstAlpha = srcAlpha, dstAlpha
	})
}

// BlendEquation sets the blend operation for color and alpha.
func BlendEquation(op gputypes.BlendOperation) Setting {
	return BlendEquationSeparate(op, op)
}

// BlendEquationSeparate sets the color and alpha blend operations.
func BlendEquationSeparate(rgb, alpha gputypes.BlendOperation) Setting {
	return state(func(s *gpucore.State) {
		s.Blend.OpRGB, s.Blend.OpAlpha = rgb, alpha
	})
}

// BlendColor sets the constant blend color.
func BlendColor(r, g, b, a float32) Setting {
	return state(func(s *gpucore.State) {
		s.Blend.Constant = [4]float32{r, g, b, a}
	})
}

// DepthFunc sets the depth comparison.
func DepthFunc(cmp gputypes.CompareFunction) Setting {
	return state(func(s *gpucore.State) { s.DepthCompare = cmp })
}

// DepthMask enables or disables depth writes.
func DepthMask(write bool) Setting {
	return state(func(s *gpucore.State) { s.DepthWrite = write })
}

// StencilFunc sets the stencil comparison, reference and read mask of
// both faces.
func StencilFunc(cmp gputypes.CompareFunction, ref, mask uint32) Setting {
	return StencilFuncSeparate(gpucore.FaceFrontAndBack, cmp, ref, mask)
}

// StencilFuncSeparate sets the stencil comparison of the selected faces.
func StencilFuncSeparate(face gpucore.Face, cmp gputypes.CompareFunction, ref, mask uint32) Setting {
	return state(func(s *gpucore.State) {
		s.Stencil(face, func(f *gpucore.StencilFace) {
			f.Compare, f.Ref, f.ReadMask = cmp, ref, mask
		})
	})
}

// StencilOp sets the stencil operations of both faces.
func StencilOp(fail, zfail, zpass gputypes.StencilOperation) Setting {
	return StencilOpSeparate(gpucore.FaceFrontAndBack, fail, zfail, zpass)
}

// StencilOpSeparate sets the stencil operations of the selected faces.
func StencilOpSeparate(face gpucore.Face, fail, zfail, zpass gputypes.StencilOperation) Setting {
	return state(func(s *gpucore.State) {
		s.Stencil(face, func(f *gpucore.StencilFace) {
			f.Fail, f.DepthFail, f.Pass = fail, zfail, zpass
		})
	})
}

// StencilMask sets the stencil write mask of both faces.
func StencilMask(mask uint32) Setting {
	return StencilMaskSeparate(gpucore.FaceFrontAndBack, mask)
}

// StencilMaskSeparate sets the stencil write mask of the selected faces.
func StencilMaskSeparate(face gpucore.Face, mask uint32) Setting {
	return state(func(s *gpucore.State) {
		s.Stencil(face, func(f *gpucore.StencilFace) { f.WriteMask = mask })
	})
}

// ColorMask selects which color channels are written.
func ColorMask(r, g, b, a bool) Setting {
	var m gputypes.ColorWriteMask
	if r {
		m |= gputypes.ColorWriteMaskRed
	}
	if g {
		m |= gputypes.ColorWriteMaskGreen
	}
	if b {
		m |= gputypes.ColorWriteMaskBlue
	}
	if a {
		m |= gputypes.ColorWriteMaskAlpha
	}
	return state(func(s *gpucore.State) { s.ColorMask = m })
}

// CullFace selects the faces culled while the CullFaceCap capability is on.
func CullFace(mode gputypes.CullMode) Setting {
	return state(func(s *gpucore.State) { s.CullMode = mode })
}

// FrontFace sets the winding of front-facing polygons.
func FrontFace(ff gputypes.FrontFace) Setting {
	return state(func(s *gpucore.State) { s.FrontFace = ff })
}

// Scissor sets the scissor rectangle used while ScissorTest is on.
func Scissor(x, y, width, height int) Setting {
	return state(func(s *gpucore.State) {
		s.Scissor = [4]int{x, y, width, height}
	})
}

// applySettings runs settings in order. Nil entries are skipped.
func applySettings(ctx gpucore.Context, settings []Setting) {
	for _, s := range settings {
		if s != nil {
			s.Apply(ctx)
		}
	}
}
