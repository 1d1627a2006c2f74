// SPDX-License-Identifier: Unlicense OR MIT

package egl

// Attribute names and values used in config, context and surface
// attribute lists.
const (
	AttrAlphaSize            = 0x3021
	AttrBlueSize             = 0x3022
	AttrGreenSize            = 0x3023
	AttrRedSize              = 0x3024
	AttrDepthSize            = 0x3025
	AttrStencilSize          = 0x3026
	AttrConfigCaveat         = 0x3027
	AttrSamples              = 0x3031
	AttrSampleBuffers        = 0x3032
	AttrSurfaceType          = 0x3033
	AttrNone                 = 0x3038
	AttrRenderableType       = 0x3040
	AttrContextClientVersion = 0x3098
	AttrGLColorspace         = 0x309d
	AttrGLColorspaceSRGB     = 0x3089

	WindowBit       = 0x4
	OpenGLES2Bit    = 0x4
	OpenGLES3BitKHR = 0x40
)

const defaultColorBits = 8

// ConfigAttribs returns the EGL_NONE terminated attribute list passed
// to eglChooseConfig.
func (f Format) ConfigAttribs() []int32 {
	bits := func(n int) int32 {
		if n <= 0 {
			return defaultColorBits
		}
		return int32(n)
	}
	attribs := []int32{
		AttrSurfaceType, WindowBit,
		AttrRedSize, bits(f.RedBits),
		AttrGreenSize, bits(f.GreenBits),
		AttrBlueSize, bits(f.BlueBits),
		AttrConfigCaveat, AttrNone,
	}
	if f.AlphaBits > 0 {
		attribs = append(attribs, AttrAlphaSize, int32(f.AlphaBits))
	}
	if f.DepthBits > 0 {
		attribs = append(attribs, AttrDepthSize, int32(f.DepthBits))
	}
	if f.StencilBits > 0 {
		attribs = append(attribs, AttrStencilSize, int32(f.StencilBits))
	}
	if f.Samples > 1 {
		attribs = append(attribs, AttrSampleBuffers, 1, AttrSamples, int32(f.Samples))
	}
	// ES3 contexts are created from ES2 configs unless ES3 is required.
	renderable := int32(OpenGLES2Bit)
	if f.ClientVersion >= 3 {
		renderable = OpenGLES3BitKHR
	}
	attribs = append(attribs, AttrRenderableType, renderable)
	return append(attribs, AttrNone)
}

// ClientVersions returns the ES versions to try, in order.
func (f Format) ClientVersions() []int {
	if f.ClientVersion <= 0 {
		return []int{3, 2}
	}
	return []int{f.ClientVersion}
}

// ContextAttribs returns the attribute list for eglCreateContext.
func ContextAttribs(version int) []int32 {
	return []int32{AttrContextClientVersion, int32(version), AttrNone}
}

// SurfaceAttribs returns the attribute list for eglCreateWindowSurface.
func SurfaceAttribs(srgb bool) []int32 {
	if srgb {
		return []int32{AttrGLColorspace, AttrGLColorspaceSRGB, AttrNone}
	}
	return []int32{AttrNone}
}
