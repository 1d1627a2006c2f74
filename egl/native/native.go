// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd
// +build linux freebsd

// Package native implements egl.Binding on the platform EGL library.
package native

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"gearvrf.org/surface/egl"
	"gearvrf.org/surface/internal/log"
)

const eglExtensions = 0x3055

// Binding is an EGL display connection with at most one context and
// one window surface.
type Binding struct {
	share  *Binding
	format egl.Format
	log    *zap.Logger

	disp    _EGLDisplay
	config  _EGLConfig
	ctx     _EGLContext
	surf    _EGLSurface
	srgb    bool
	version int

	// mu guards shared, the context published to bindings created with
	// ShareWith. It is held while that context is destroyed.
	mu     sync.Mutex
	shared _EGLContext
}

var (
	_ egl.Binding      = (*Binding)(nil)
	_ egl.Configurable = (*Binding)(nil)
)

// Option configures a Binding.
type Option func(b *Binding)

// ShareWith creates contexts sharing objects with the context of other.
// Both bindings must use the default display. CreateContext fails with
// EGL_BAD_CONTEXT while other has no context.
func ShareWith(other *Binding) Option {
	return func(b *Binding) {
		b.share = other
	}
}

// New returns a binding on the default EGL display.
func New(opts ...Option) (*Binding, error) {
	b := &Binding{log: log.Named("egl")}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

func (b *Binding) Configure(f egl.Format) {
	b.format = f
}

func (b *Binding) OpenDisplay() error {
	if b.disp != nilEGLDisplay {
		return nil
	}
	disp := eglGetDefaultDisplay()
	if disp == nilEGLDisplay {
		return &egl.Error{Op: "eglGetDisplay", Code: eglGetError()}
	}
	major, minor, ok := eglInitialize(disp)
	if !ok {
		return &egl.Error{Op: "eglInitialize", Code: eglGetError()}
	}
	exts := strings.Split(eglQueryString(disp, eglExtensions), " ")
	srgb := b.format.SRGB && (major > 1 || minor >= 5 || slices.Contains(exts, "EGL_KHR_gl_colorspace"))
	attribs := b.format.ConfigAttribs()
	if srgb && runtime.GOOS == "linux" && b.format.AlphaBits == 0 {
		// Some Mesa drivers crash if an sRGB framebuffer is requested without alpha.
		// https://bugs.freedesktop.org/show_bug.cgi?id=107782.
		attribs = append(attribs[:len(attribs)-1], egl.AttrAlphaSize, 1, egl.AttrNone)
	}
	cfg, ok := eglChooseConfig(disp, attribs)
	if !ok {
		err := &egl.Error{Op: "eglChooseConfig", Code: eglGetError()}
		eglTerminate(disp)
		return err
	}
	b.disp, b.config, b.srgb = disp, cfg, srgb
	b.log.Debug("display open", zap.Int("major", major), zap.Int("minor", minor), zap.Bool("srgb", srgb))
	return nil
}

func (b *Binding) TerminateDisplay() {
	b.DestroyContext()
	if b.disp == nilEGLDisplay {
		return
	}
	eglTerminate(b.disp)
	eglReleaseThread()
	b.disp = nilEGLDisplay
	b.config = nilEGLConfig
}

// CreateContext creates a context. Info.Renderer is left empty: the
// renderer string is only available once the context is current, see
// DriverIdentity.
func (b *Binding) CreateContext() (egl.Info, error) {
	if b.ctx != nilEGLContext {
		panic("egl: context already created")
	}
	if err := b.createContext(); err != nil {
		return egl.Info{}, err
	}
	b.mu.Lock()
	b.shared = b.ctx
	b.mu.Unlock()
	return egl.Info{
		Vendor:        eglQueryString(b.disp, 0x3053),
		Version:       eglQueryString(b.disp, 0x3054),
		ClientVersion: b.version,
		Format:        b.format,
	}, nil
}

// createContext holds the lock of the shared binding, if any, so its
// context cannot be destroyed while a context sharing it is created.
func (b *Binding) createContext() error {
	share := nilEGLContext
	if b.share != nil {
		b.share.mu.Lock()
		defer b.share.mu.Unlock()
		if share = b.share.shared; share == nilEGLContext {
			return &egl.Error{Op: "eglCreateContext (shared)", Code: egl.BadContext}
		}
	}
	if err := b.OpenDisplay(); err != nil {
		return err
	}
	var errs []error
	for _, v := range b.format.ClientVersions() {
		ctx := eglCreateContext(b.disp, b.config, share, egl.ContextAttribs(v))
		if ctx != nilEGLContext {
			b.ctx, b.version = ctx, v
			return nil
		}
		errs = append(errs, &egl.Error{Op: fmt.Sprintf("eglCreateContext (ES %d)", v), Code: eglGetError()})
	}
	return multierr.Combine(errs...)
}

func (b *Binding) DestroyContext() {
	b.DestroySurface()
	if b.ctx == nilEGLContext {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shared = nilEGLContext
	eglMakeCurrent(b.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
	eglDestroyContext(b.disp, b.ctx)
	b.ctx = nilEGLContext
}

func (b *Binding) CreateSurface(win egl.Window, width, height int) error {
	if b.disp == nilEGLDisplay || b.ctx == nilEGLContext {
		panic("egl: CreateSurface without a context")
	}
	b.DestroySurface()
	surf := eglCreateWindowSurface(b.disp, b.config, uintptr(win), egl.SurfaceAttribs(b.srgb))
	if surf == nilEGLSurface && b.srgb {
		// Try again without sRGB.
		b.srgb = false
		surf = eglCreateWindowSurface(b.disp, b.config, uintptr(win), egl.SurfaceAttribs(false))
	}
	if surf == nilEGLSurface {
		return &egl.Error{Op: "eglCreateWindowSurface", Code: eglGetError()}
	}
	b.surf = surf
	return nil
}

func (b *Binding) DestroySurface() {
	if b.surf == nilEGLSurface {
		return
	}
	eglMakeCurrent(b.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
	eglDestroySurface(b.disp, b.surf)
	b.surf = nilEGLSurface
}

func (b *Binding) MakeCurrent() error {
	if !eglMakeCurrent(b.disp, b.surf, b.surf, b.ctx) {
		return &egl.Error{Op: "eglMakeCurrent", Code: eglGetError()}
	}
	return nil
}

func (b *Binding) ReleaseCurrent() {
	if b.disp != nilEGLDisplay {
		eglMakeCurrent(b.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
	}
}

func (b *Binding) Swap() error {
	if b.surf == nilEGLSurface {
		panic("egl: Swap without a surface")
	}
	if !eglSwapBuffers(b.disp, b.surf) {
		return egl.SwapError(eglGetError())
	}
	return nil
}

// DriverIdentity returns the GL_RENDERER string. The context must be
// current.
func (b *Binding) DriverIdentity() string {
	if b.ctx == nilEGLContext {
		return ""
	}
	return glRendererString()
}
