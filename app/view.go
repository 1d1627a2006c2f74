// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"gearvrf.org/surface/app/internal/arbiter"
	"gearvrf.org/surface/egl"
	"gearvrf.org/surface/internal/log"
)

var viewSeq atomic.Int64

// SurfaceView drives a Renderer on a dedicated render thread. Its
// methods are called by the control thread that receives window system
// callbacks; they are safe for concurrent use. The blocking methods
// panic when called on the view's own render thread.
type SurfaceView struct {
	arb      *arbiter.Arbiter
	binding  egl.Binding
	renderer Renderer
	cfg      Config
	tracer   trace.Tracer
	log      *zap.Logger

	// Guarded by the arbiter monitor.
	t          *glThread
	closed     bool
	mode       RenderMode
	paused     bool
	hasSurface bool
	win        egl.Window
	width      int
	height     int
}

// NewSurfaceView returns a view drawing r through b. The render thread
// does not run before Start.
//
// Views share the process-wide context arbiter, so that at most one of
// them holds a graphics context on drivers that support only one.
func NewSurfaceView(r Renderer, b egl.Binding, opts ...Option) (*SurfaceView, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.tp == nil {
		o.tp = trace.NewNoopTracerProvider()
	}
	if o.arb == nil {
		o.arb = arbiter.Default()
	}
	return &SurfaceView{
		arb:      o.arb,
		binding:  b,
		renderer: r,
		cfg:      o.cfg,
		tracer:   o.tp.Tracer("gearvrf.org/surface/app"),
		log:      log.Named("surface").With(zap.Int64("surface", viewSeq.Inc())),
		mode:     o.cfg.RenderMode,
	}, nil
}

// Start starts the render thread and returns once its display
// connection is open. A display failure is returned and the view stays
// stopped. The render thread exits when ctx is done.
//
// Start after Detach starts a new render thread. The render mode, the
// surface and the pause state of the view carry over.
func (v *SurfaceView) Start(ctx context.Context) error {
	v.arb.Lock()
	if v.closed {
		v.arb.Unlock()
		return ErrClosed
	}
	if v.running() != nil {
		v.arb.Unlock()
		return ErrStarted
	}
	t := newGLThread(v)
	v.t = t
	v.arb.Unlock()
	return t.start(ctx)
}

// running returns the render thread unless it has exited.
func (v *SurfaceView) running() *glThread {
	if v.t == nil || v.t.f.Exited {
		return nil
	}
	return v.t
}

// checkCaller panics if called on the render thread, where a blocking
// call would wait for itself.
func (v *SurfaceView) checkCaller(op string) {
	if t := v.running(); t != nil && t.tid != 0 && threadID() == t.tid {
		panic(fmt.Sprintf("app: %s called on the render thread", op))
	}
}

// SurfaceCreated reports a new native window of the given size. It
// blocks until the render thread attempted to bind a surface to it, or
// until drawing is impossible.
//
// The first surface makes the render thread create its context. If that
// fails the render thread exits, and Err reports the failure by the time
// SurfaceCreated returns.
func (v *SurfaceView) SurfaceCreated(win egl.Window, width, height int) {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("SurfaceCreated")
	v.hasSurface, v.win = true, win
	v.width, v.height = width, height
	t := v.running()
	if t == nil {
		return
	}
	t.win = win
	t.f.HasSurface = true
	t.setSize(width, height)
	t.finishedCreatingSurface = false
	v.arb.Broadcast()
	for !t.f.Exited && !t.finishedCreatingSurface && (t.f.WaitingForSurface || t.canDraw()) {
		v.arb.Wait()
	}
}

// SurfaceDestroyed reports that the native window is going away. It
// blocks until the render thread no longer uses it.
func (v *SurfaceView) SurfaceDestroyed() {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("SurfaceDestroyed")
	v.hasSurface = false
	v.win = 0
	t := v.running()
	if t == nil {
		return
	}
	t.f.HasSurface = false
	v.arb.Broadcast()
	for !t.f.Exited && !t.f.WaitingForSurface {
		v.arb.Wait()
	}
}

// WindowResized reports a new window size. It blocks until a frame was
// presented at that size, or until the view cannot draw.
func (v *SurfaceView) WindowResized(width, height int) {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("WindowResized")
	v.width, v.height = width, height
	t := v.running()
	if t == nil {
		return
	}
	gen := t.setSize(width, height)
	v.arb.Broadcast()
	for !t.f.Exited && !t.f.Paused && !t.f.RequestPaused && t.completedGen < gen &&
		(t.f.AbleToDraw() || t.drawing) {
		v.arb.Wait()
	}
}

// Pause stops drawing. It blocks until the render thread released its
// surface and, depending on the driver, its context.
func (v *SurfaceView) Pause() {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("Pause")
	v.paused = true
	t := v.running()
	if t == nil {
		return
	}
	t.f.RequestPaused = true
	v.arb.Broadcast()
	for !t.f.Exited && !t.f.Paused {
		v.arb.Wait()
	}
}

// Resume restarts drawing after Pause. It blocks until a frame was
// presented, or until the view cannot draw.
func (v *SurfaceView) Resume() {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("Resume")
	v.paused = false
	t := v.running()
	if t == nil {
		return
	}
	t.f.RequestPaused = false
	gen := t.requestFrame()
	v.arb.Broadcast()
	for !t.f.Exited && !t.f.RequestPaused &&
		(t.f.Paused || (t.completedGen < gen && (t.canDraw() || t.drawing))) {
		v.arb.Wait()
	}
}

// RequestRender asks for a frame drawn with p. It does not block.
func (v *SurfaceView) RequestRender(p FrameParams) {
	v.arb.Lock()
	defer v.arb.Unlock()
	t := v.running()
	if t == nil {
		return
	}
	t.params = p
	t.requestFrame()
	v.arb.Broadcast()
}

// QueueEvent runs fn on the render thread before the next frame. Events
// run once, in the order they were queued. Events still queued when the
// render thread exits are dropped.
func (v *SurfaceView) QueueEvent(fn func()) error {
	if fn == nil {
		return ErrNilEvent
	}
	v.arb.Lock()
	defer v.arb.Unlock()
	t := v.running()
	if t == nil || t.f.RequestExit {
		return ErrNotRunning
	}
	t.events = append(t.events, fn)
	v.arb.Broadcast()
	return nil
}

// SetRenderMode switches between on-demand and continuous drawing.
func (v *SurfaceView) SetRenderMode(m RenderMode) error {
	if !m.valid() {
		return ErrInvalidRenderMode
	}
	v.arb.Lock()
	defer v.arb.Unlock()
	v.mode = m
	if t := v.running(); t != nil {
		t.f.Continuous = m == Continuous
		v.arb.Broadcast()
	}
	return nil
}

// RenderMode returns the current render mode.
func (v *SurfaceView) RenderMode() RenderMode {
	v.arb.Lock()
	defer v.arb.Unlock()
	return v.mode
}

// Frames returns the number of frames presented by the current render
// thread.
func (v *SurfaceView) Frames() uint64 {
	v.arb.Lock()
	defer v.arb.Unlock()
	if v.t == nil {
		return 0
	}
	return v.t.frames
}

// Err returns the error that stopped the last render thread, if any.
func (v *SurfaceView) Err() error {
	v.arb.Lock()
	defer v.arb.Unlock()
	if v.t == nil {
		return nil
	}
	return v.t.err
}

// Detach stops the render thread and waits for it to release every
// native resource. The view can be started again.
func (v *SurfaceView) Detach() error {
	return v.stop(false)
}

// RequestExitAndWait stops the render thread for good and waits for it
// to release every native resource. It returns the error that stopped
// the thread, if any. It is idempotent; no Renderer method is called
// after it returns.
func (v *SurfaceView) RequestExitAndWait() error {
	return v.stop(true)
}

func (v *SurfaceView) stop(final bool) error {
	t, err := v.requestExit(final)
	if t != nil {
		<-t.stopped
	}
	return err
}

// requestExit asks the render thread to exit and waits until it has
// released its resources.
func (v *SurfaceView) requestExit(final bool) (*glThread, error) {
	v.arb.Lock()
	defer v.arb.Unlock()
	v.checkCaller("RequestExitAndWait")
	if final {
		v.closed = true
	}
	t := v.t
	if t == nil {
		return nil, nil
	}
	if !t.f.Exited {
		t.f.RequestExit = true
		v.arb.Broadcast()
		for !t.f.Exited {
			v.arb.Wait()
		}
	}
	return t, t.err
}
