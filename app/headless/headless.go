// SPDX-License-Identifier: Unlicense OR MIT

// Package headless implements a software egl.Binding that renders to
// in-memory images.
package headless

import (
	"image"
	"sync"

	"golang.org/x/image/draw"

	"gearvrf.org/surface/egl"
)

// Identity is the driver identity reported by headless contexts.
const Identity = "gearvrf headless"

// Binding is a software binding. A renderer draws into the back buffer
// returned by Framebuffer; Swap copies it to the front buffer, which
// Screenshot reads.
type Binding struct {
	mu      sync.Mutex
	format  egl.Format
	display bool
	context bool
	current bool
	win     egl.Window
	back    *image.RGBA
	front   *image.RGBA
	swaps   int
}

var (
	_ egl.Binding      = (*Binding)(nil)
	_ egl.Configurable = (*Binding)(nil)
)

// New returns a binding without a display connection.
func New() *Binding {
	return new(Binding)
}

func (b *Binding) Configure(f egl.Format) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.format = f
}

func (b *Binding) OpenDisplay() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.display = true
	return nil
}

func (b *Binding) TerminateDisplay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyContext()
	b.display = false
}

func (b *Binding) CreateContext() (egl.Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context {
		panic("headless: context already created")
	}
	b.display = true
	b.context = true
	version := b.format.ClientVersions()[0]
	return egl.Info{
		Vendor:        "gearvrf",
		Version:       "1.5 headless",
		Renderer:      Identity,
		ClientVersion: version,
		Format:        b.format,
	}, nil
}

func (b *Binding) DestroyContext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyContext()
}

func (b *Binding) destroyContext() {
	b.destroySurface()
	b.context = false
}

// CreateSurface allocates the buffers of a width x height surface. The
// content of a previous surface is scaled into the new one.
func (b *Binding) CreateSurface(win egl.Window, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.display || !b.context {
		panic("headless: CreateSurface without a context")
	}
	if width <= 0 || height <= 0 {
		return &egl.Error{Op: "eglCreateWindowSurface", Code: egl.BadNativeWindow}
	}
	r := image.Rect(0, 0, width, height)
	back, front := image.NewRGBA(r), image.NewRGBA(r)
	if old := b.front; old != nil {
		draw.ApproxBiLinear.Scale(front, r, old, old.Bounds(), draw.Src, nil)
		draw.Draw(back, r, front, image.Point{}, draw.Src)
	}
	b.destroySurface()
	b.win = win
	b.back, b.front = back, front
	return nil
}

func (b *Binding) DestroySurface() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroySurface()
}

// destroySurface releases the back buffer. The front buffer is kept as
// the last presented frame.
func (b *Binding) destroySurface() {
	b.back = nil
	b.win = 0
	b.current = false
}

func (b *Binding) MakeCurrent() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case !b.context:
		return &egl.Error{Op: "eglMakeCurrent", Code: egl.BadContext}
	case b.back == nil:
		return &egl.Error{Op: "eglMakeCurrent", Code: egl.BadSurface}
	}
	b.current = true
	return nil
}

func (b *Binding) ReleaseCurrent() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = false
}

func (b *Binding) Swap() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.back == nil {
		panic("headless: Swap without a surface")
	}
	if !b.current {
		return &egl.Error{Op: "eglSwapBuffers", Code: egl.BadSurface}
	}
	draw.Draw(b.front, b.front.Bounds(), b.back, image.Point{}, draw.Src)
	b.swaps++
	return nil
}

func (b *Binding) DriverIdentity() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.context {
		return ""
	}
	return Identity
}

// Framebuffer returns the back buffer of the current surface, or nil.
// It must only be used on the render thread, typically from
// Renderer.OnDrawFrame.
func (b *Binding) Framebuffer() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.back
}

// Screenshot returns a copy of the last presented frame, or nil if no
// frame was presented.
func (b *Binding) Screenshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.front == nil {
		return nil
	}
	img := image.NewRGBA(b.front.Bounds())
	copy(img.Pix, b.front.Pix)
	return img
}

// Swaps returns the number of presented frames.
func (b *Binding) Swaps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.swaps
}
