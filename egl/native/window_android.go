// SPDX-License-Identifier: Unlicense OR MIT

package native

/*
#include <EGL/egl.h>
*/
import "C"

import "unsafe"

// nativeWindow converts an ANativeWindow pointer.
func nativeWindow(win uintptr) C.EGLNativeWindowType {
	return (C.EGLNativeWindowType)(unsafe.Pointer(win))
}
