// SPDX-License-Identifier: Unlicense OR MIT

// Package egltest provides a scriptable egl.Binding for tests.
//
// Bindings created from the same Driver share one simulated GPU, so
// the driver can report how many contexts were alive at the same time.
package egltest

import (
	"fmt"
	"sync"

	"gearvrf.org/surface/egl"
)

// Driver is a simulated graphics driver.
type Driver struct {
	mu       sync.Mutex
	identity string
	live     int
	maxLive  int
	nextID   int
}

// NewDriver returns a driver reporting identity as its renderer.
func NewDriver(identity string) *Driver {
	return &Driver{identity: identity}
}

// LiveContexts returns the number of contexts currently alive.
func (d *Driver) LiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// MaxLiveContexts returns the highest number of contexts that were
// alive at the same time.
func (d *Driver) MaxLiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxLive
}

func (d *Driver) contextCreated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live++
	if d.live > d.maxLive {
		d.maxLive = d.live
	}
	d.nextID++
	return d.nextID
}

func (d *Driver) contextDestroyed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live--
}

// Binding is a fake egl.Binding. Its fault fields are set through
// Inject; each failure is consumed by the call it affects.
type Binding struct {
	driver *Driver

	mu sync.Mutex
	// OpenErr is returned by every OpenDisplay call.
	OpenErr error
	// ContextErrs are returned by the next CreateContext calls.
	ContextErrs []error
	// SurfaceErrs are returned by the next CreateSurface calls.
	SurfaceErrs []error
	// SwapErrs are returned by the next Swap calls.
	SwapErrs []error

	display    bool
	context    int
	surface    egl.Window
	hasSurface bool
	current    bool
	width      int
	height     int
	swaps      int
	surfaces   int
	contexts   int
	terminates int
	format     egl.Format
	ops        []string
}

var (
	_ egl.Binding      = (*Binding)(nil)
	_ egl.Configurable = (*Binding)(nil)
)

// NewBinding returns a binding on d.
func (d *Driver) NewBinding() *Binding {
	return &Binding{driver: d}
}

func (b *Binding) record(format string, args ...interface{}) {
	b.ops = append(b.ops, fmt.Sprintf(format, args...))
}

func (b *Binding) OpenDisplay() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openDisplay()
}

func (b *Binding) openDisplay() error {
	if b.OpenErr != nil {
		return b.OpenErr
	}
	if !b.display {
		b.display = true
		b.record("open")
	}
	return nil
}

func (b *Binding) TerminateDisplay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyContext()
	if b.display {
		b.display = false
		b.terminates++
		b.record("terminate")
	}
}

func (b *Binding) CreateContext() (egl.Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context != 0 {
		panic("egltest: context already created")
	}
	if err := b.openDisplay(); err != nil {
		return egl.Info{}, err
	}
	if len(b.ContextErrs) > 0 {
		err := b.ContextErrs[0]
		b.ContextErrs = b.ContextErrs[1:]
		if err != nil {
			return egl.Info{}, err
		}
	}
	b.context = b.driver.contextCreated()
	b.contexts++
	b.record("context")
	return egl.Info{
		Vendor:        "egltest",
		Version:       "1.5",
		Renderer:      b.driver.identity,
		ClientVersion: 3,
		Format:        b.format,
	}, nil
}

func (b *Binding) Configure(f egl.Format) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.format = f
}

func (b *Binding) DestroyContext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyContext()
}

func (b *Binding) destroyContext() {
	b.destroySurface()
	if b.context == 0 {
		return
	}
	b.current = false
	b.context = 0
	b.driver.contextDestroyed()
	b.record("destroy-context")
}

func (b *Binding) CreateSurface(win egl.Window, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.display || b.context == 0 {
		panic("egltest: CreateSurface without a context")
	}
	b.destroySurface()
	if len(b.SurfaceErrs) > 0 {
		err := b.SurfaceErrs[0]
		b.SurfaceErrs = b.SurfaceErrs[1:]
		if err != nil {
			b.record("surface-failed")
			return err
		}
	}
	b.surface = win
	b.hasSurface = true
	b.width, b.height = width, height
	b.surfaces++
	b.record("surface %dx%d", width, height)
	return nil
}

func (b *Binding) DestroySurface() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroySurface()
}

func (b *Binding) destroySurface() {
	if !b.hasSurface {
		return
	}
	b.hasSurface = false
	b.surface = 0
	b.current = false
	b.record("destroy-surface")
}

func (b *Binding) MakeCurrent() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context == 0 {
		return &egl.Error{Op: "eglMakeCurrent", Code: egl.BadContext}
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
	if !b.hasSurface || b.context == 0 {
		panic("egltest: Swap without a surface")
	}
	if len(b.SwapErrs) > 0 {
		err := b.SwapErrs[0]
		b.SwapErrs = b.SwapErrs[1:]
		if err != nil {
			b.record("swap-failed")
			return err
		}
	}
	b.swaps++
	return nil
}

func (b *Binding) DriverIdentity() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context == 0 {
		return ""
	}
	return b.driver.identity
}

// Inject runs f with b locked, to set fault fields while b is in use.
func (b *Binding) Inject(f func(b *Binding)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b)
}

// State is a snapshot of a Binding.
type State struct {
	Display    bool
	Context    bool
	Surface    bool
	Current    bool
	Window     egl.Window
	Width      int
	Height     int
	Swaps      int
	Surfaces   int
	Contexts   int
	Terminates int
}

// State returns a snapshot of b.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Display:    b.display,
		Context:    b.context != 0,
		Surface:    b.hasSurface,
		Current:    b.current,
		Window:     b.surface,
		Width:      b.width,
		Height:     b.height,
		Swaps:      b.swaps,
		Surfaces:   b.surfaces,
		Contexts:   b.contexts,
		Terminates: b.terminates,
	}
}

// Ops returns the recorded native operations.
func (b *Binding) Ops() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ops...)
}
