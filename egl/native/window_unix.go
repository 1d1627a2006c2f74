// SPDX-License-Identifier: Unlicense OR MIT

//go:build (linux && !android) || freebsd
// +build linux,!android freebsd

package native

/*
#cgo CFLAGS: -DEGL_NO_X11

#include <EGL/egl.h>
*/
import "C"

func nativeWindow(win uintptr) C.EGLNativeWindowType {
	return C.EGLNativeWindowType(win)
}
