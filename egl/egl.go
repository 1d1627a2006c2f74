// SPDX-License-Identifier: Unlicense OR MIT

/*
Package egl defines the contract between a render thread and the
platform graphics binding it draws through.

A Binding owns one display connection, at most one graphics context
and at most one window surface. Its methods are never called
concurrently; the render thread that owns a Binding is the only caller.

Errors are split in two classes. Failures to reach the display or to
create a context are returned as errors and are fatal to the caller that
needs them. Surface and swap failures are recoverable: CreateSurface
returns an error and Swap reports ErrContextLost or an *Error, and the
render thread degrades instead of stopping. Calling a method without
its preconditions, such as CreateSurface without a context, panics.
*/
package egl

// Window is an opaque native window handle, such as an X11 Window or
// an Android ANativeWindow pointer.
type Window uintptr

// Format describes the framebuffer configuration requested when the
// context is created. The zero value requests an RGB888 ES2 surface
// without depth or stencil buffers.
type Format struct {
	RedBits     int `toml:"red_bits"`
	GreenBits   int `toml:"green_bits"`
	BlueBits    int `toml:"blue_bits"`
	AlphaBits   int `toml:"alpha_bits"`
	DepthBits   int `toml:"depth_bits"`
	StencilBits int `toml:"stencil_bits"`
	// Samples is the number of multisample samples; 0 or 1 disables
	// multisampling.
	Samples int `toml:"samples"`
	// ClientVersion is the OpenGL ES major version to request.
	// Zero means 3, falling back to 2.
	ClientVersion int `toml:"client_version"`
	// SRGB requests an sRGB color space for window surfaces when the
	// display supports it.
	SRGB bool `toml:"srgb"`
}

// Info describes a created context.
type Info struct {
	Vendor  string
	Version string
	// Renderer is the driver identity string, such as the GL_RENDERER
	// string of the current context. Bindings that only know it once
	// the context is current leave it empty; the view fills it from
	// DriverIdentity before Renderer.OnSurfaceCreated.
	Renderer string
	// ClientVersion is the ES major version actually created.
	ClientVersion int
	Format        Format
}

// Binding creates and destroys the native display, context and surface
// of one render thread.
type Binding interface {
	// OpenDisplay connects to the display and chooses a config. It is a
	// no-op if the display is already open.
	OpenDisplay() error
	// TerminateDisplay releases the context, the surface and the display
	// connection. It is idempotent.
	TerminateDisplay()
	// CreateContext creates the graphics context, opening the display
	// first if needed.
	CreateContext() (Info, error)
	// DestroyContext destroys the surface and the context. It is
	// idempotent.
	DestroyContext()
	// CreateSurface destroys any previous surface and binds a new one to
	// win. The returned error is recoverable.
	CreateSurface(win Window, width, height int) error
	// DestroySurface releases the current surface. It is idempotent.
	DestroySurface()
	// MakeCurrent binds the context and surface to the calling thread.
	MakeCurrent() error
	// ReleaseCurrent unbinds the context from the calling thread.
	ReleaseCurrent()
	// Swap presents the back buffer. It returns ErrContextLost if the
	// context must be recreated, or an *Error for other failures.
	Swap() error
	// DriverIdentity returns the renderer identity of the current
	// context, or the empty string if unknown.
	DriverIdentity() string
}

// Configurable is implemented by bindings that accept the requested
// Format. Configure is called before OpenDisplay.
type Configurable interface {
	Configure(f Format)
}
