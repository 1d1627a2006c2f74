// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd
// +build linux freebsd

package native

/*
#cgo linux,!android pkg-config: egl glesv2
#cgo freebsd android LDFLAGS: -lEGL -lGLESv2
#cgo freebsd CFLAGS: -I/usr/local/include
#cgo freebsd LDFLAGS: -L/usr/local/lib
#cgo CFLAGS: -DEGL_NO_X11

#include <EGL/egl.h>
#include <EGL/eglext.h>
#include <GLES2/gl2.h>
*/
import "C"

import "unsafe"

type (
	_EGLint     = C.EGLint
	_EGLDisplay = C.EGLDisplay
	_EGLConfig  = C.EGLConfig
	_EGLContext = C.EGLContext
	_EGLSurface = C.EGLSurface
)

var (
	nilEGLDisplay _EGLDisplay
	nilEGLSurface _EGLSurface
	nilEGLContext _EGLContext
	nilEGLConfig  _EGLConfig
)

func eglAttribs(attribs []int32) []_EGLint {
	l := make([]_EGLint, len(attribs))
	for i, a := range attribs {
		l[i] = _EGLint(a)
	}
	return l
}

func eglChooseConfig(disp _EGLDisplay, attribs []int32) (_EGLConfig, bool) {
	var cfg C.EGLConfig
	var ncfg C.EGLint
	l := eglAttribs(attribs)
	if C.eglChooseConfig(disp, &l[0], &cfg, 1, &ncfg) != C.EGL_TRUE || ncfg == 0 {
		return nilEGLConfig, false
	}
	return _EGLConfig(cfg), true
}

func eglCreateContext(disp _EGLDisplay, cfg _EGLConfig, shareCtx _EGLContext, attribs []int32) _EGLContext {
	l := eglAttribs(attribs)
	return C.eglCreateContext(disp, cfg, shareCtx, &l[0])
}

func eglDestroySurface(disp _EGLDisplay, surf _EGLSurface) bool {
	return C.eglDestroySurface(disp, surf) == C.EGL_TRUE
}

func eglDestroyContext(disp _EGLDisplay, ctx _EGLContext) bool {
	return C.eglDestroyContext(disp, ctx) == C.EGL_TRUE
}

func eglGetError() int {
	return int(C.eglGetError())
}

func eglInitialize(disp _EGLDisplay) (int, int, bool) {
	var maj, min _EGLint
	ret := C.eglInitialize(disp, &maj, &min)
	return int(maj), int(min), ret == C.EGL_TRUE
}

func eglMakeCurrent(disp _EGLDisplay, draw, read _EGLSurface, ctx _EGLContext) bool {
	return C.eglMakeCurrent(disp, draw, read, ctx) == C.EGL_TRUE
}

func eglReleaseThread() bool {
	return C.eglReleaseThread() == C.EGL_TRUE
}

func eglSwapBuffers(disp _EGLDisplay, surf _EGLSurface) bool {
	return C.eglSwapBuffers(disp, surf) == C.EGL_TRUE
}

func eglTerminate(disp _EGLDisplay) bool {
	return C.eglTerminate(disp) == C.EGL_TRUE
}

func eglQueryString(disp _EGLDisplay, name int) string {
	return C.GoString(C.eglQueryString(disp, C.EGLint(name)))
}

func eglGetDefaultDisplay() _EGLDisplay {
	var disp C.EGLNativeDisplayType
	return C.eglGetDisplay(disp)
}

func eglCreateWindowSurface(disp _EGLDisplay, conf _EGLConfig, win uintptr, attribs []int32) _EGLSurface {
	l := eglAttribs(attribs)
	return C.eglCreateWindowSurface(disp, conf, nativeWindow(win), &l[0])
}

func glRendererString() string {
	s := C.glGetString(C.GL_RENDERER)
	if s == nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(s)))
}
