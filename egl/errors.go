// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"errors"
	"fmt"
)

// EGL error codes as returned by eglGetError.
const (
	Success           = 0x3000
	NotInitialized    = 0x3001
	BadAccess         = 0x3002
	BadAlloc          = 0x3003
	BadAttribute      = 0x3004
	BadConfig         = 0x3005
	BadContext        = 0x3006
	BadCurrentSurface = 0x3007
	BadDisplay        = 0x3008
	BadMatch          = 0x3009
	BadNativePixmap   = 0x300a
	BadNativeWindow   = 0x300b
	BadParameter      = 0x300c
	BadSurface        = 0x300d
	ContextLost       = 0x300e
)

var codeNames = map[int]string{
	Success:           "EGL_SUCCESS",
	NotInitialized:    "EGL_NOT_INITIALIZED",
	BadAccess:         "EGL_BAD_ACCESS",
	BadAlloc:          "EGL_BAD_ALLOC",
	BadAttribute:      "EGL_BAD_ATTRIBUTE",
	BadConfig:         "EGL_BAD_CONFIG",
	BadContext:        "EGL_BAD_CONTEXT",
	BadCurrentSurface: "EGL_BAD_CURRENT_SURFACE",
	BadDisplay:        "EGL_BAD_DISPLAY",
	BadMatch:          "EGL_BAD_MATCH",
	BadNativePixmap:   "EGL_BAD_NATIVE_PIXMAP",
	BadNativeWindow:   "EGL_BAD_NATIVE_WINDOW",
	BadParameter:      "EGL_BAD_PARAMETER",
	BadSurface:        "EGL_BAD_SURFACE",
	ContextLost:       "EGL_CONTEXT_LOST",
}

// ErrContextLost is returned by Swap when the context was lost, for
// example after a power management event. The context and every
// object created with it must be recreated.
var ErrContextLost = errors.New("egl: context lost")

// ErrUnsupported is returned by bindings that are not available on the
// current platform.
var ErrUnsupported = errors.New("egl: not supported on this platform")

// Error is a failed EGL call.
type Error struct {
	Op   string
	Code int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, CodeString(e.Code))
}

// Is reports ErrContextLost for EGL_CONTEXT_LOST errors.
func (e *Error) Is(target error) bool {
	return target == ErrContextLost && e.Code == ContextLost
}

// CodeString returns the symbolic name of an EGL error code.
func CodeString(code int) string {
	if n, ok := codeNames[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", code)
}

// SwapError converts the error code of a failed eglSwapBuffers into the
// error returned by Binding.Swap.
func SwapError(code int) error {
	switch code {
	case Success:
		return nil
	case ContextLost:
		return ErrContextLost
	default:
		return &Error{Op: "eglSwapBuffers", Code: code}
	}
}
