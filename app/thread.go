// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gearvrf.org/surface/app/internal/arbiter"
	"gearvrf.org/surface/app/internal/lifecycle"
	"gearvrf.org/surface/egl"
)

// glThread is the render thread of a SurfaceView. It owns the binding:
// every native call happens on its locked OS thread.
type glThread struct {
	arb      *arbiter.Arbiter
	binding  egl.Binding
	renderer Renderer
	format   egl.Format
	preserve bool
	tracer   trace.Tracer
	log      *zap.Logger
	stopped  chan struct{}

	// Render thread only.
	ctx  context.Context
	info egl.Info

	// Guarded by the arbiter monitor.
	f      lifecycle.Flags
	win    egl.Window
	params FrameParams
	events []func()
	// finishedCreatingSurface is set after every surface creation
	// attempt.
	finishedCreatingSurface bool
	// requestGen counts the requests that need a new frame; completedGen
	// is the newest request served by a presented frame.
	requestGen   uint64
	completedGen uint64
	frames       uint64
	drawing      bool
	hadContext   bool
	tid          int
	err          error
}

// frameJob is a frame planned under the monitor and drawn outside it.
type frameJob struct {
	createSurface bool
	newContext    bool
	notifySize    bool
	width, height int
	win           egl.Window
	frame         Frame
	gen           uint64
}

var _ arbiter.Holder = (*glThread)(nil)

func newGLThread(v *SurfaceView) *glThread {
	t := &glThread{
		arb:      v.arb,
		binding:  v.binding,
		renderer: v.renderer,
		format:   v.cfg.Format,
		preserve: v.cfg.PreserveContextOnPause,
		tracer:   v.tracer,
		log:      v.log,
		stopped:  make(chan struct{}),
		ctx:      context.Background(),
	}
	t.f = lifecycle.Flags{
		RequestPaused: v.paused,
		Continuous:    v.mode == Continuous,
	}
	if v.hasSurface {
		t.win = v.win
		t.f.HasSurface = true
		t.setSize(v.width, v.height)
	}
	return t
}

// start runs the render thread and returns once the display is open.
// The thread exits when ctx is done.
func (t *glThread) start(ctx context.Context) error {
	// The binding must only be used from one OS thread, so pass the
	// initialization result through a channel.
	initErr := make(chan error)
	go func() {
		defer close(t.stopped)
		runtime.LockOSThread()
		// Don't UnlockOSThread to avoid reuse by the Go runtime.

		t.ctx = ctx
		if c, ok := t.binding.(egl.Configurable); ok {
			c.Configure(t.format)
		}
		if err := t.binding.OpenDisplay(); err != nil {
			err = fmt.Errorf("app: open display: %w", err)
			t.arb.Lock()
			t.err = err
			t.f = lifecycle.Terminated(t.f)
			t.arb.Broadcast()
			t.arb.Unlock()
			initErr <- err
			return
		}
		tid := threadID()
		t.log = t.log.With(zap.Int("tid", tid))
		t.arb.Lock()
		t.f.DisplayOpen = true
		t.tid = tid
		t.arb.Unlock()
		initErr <- nil

		t.log.Debug("render thread started")
		if n, ok := t.renderer.(StartNotifier); ok {
			n.OnStart()
		}
		t.run()
		t.log.Debug("render thread exited")
	}()
	if err := <-initErr; err != nil {
		return err
	}
	go func() {
		select {
		case <-ctx.Done():
			t.arb.Lock()
			t.f.RequestExit = true
			t.arb.Broadcast()
			t.arb.Unlock()
		case <-t.stopped:
		}
	}()
	return nil
}

// RequestRelease implements arbiter.Holder.
func (t *glThread) RequestRelease() {
	t.f.RequestRelease = true
}

func (t *glThread) run() {
	t.arb.Lock()
	defer t.arb.Unlock()
	for {
		switch t.next() {
		case lifecycle.Exit:
			t.exit()
			return
		case lifecycle.RunEvent:
			ev := t.events[0]
			t.events[0] = nil
			t.events = t.events[1:]
			t.arb.Unlock()
			ev()
			t.arb.Lock()
		case lifecycle.Draw:
			t.drawFrame()
		}
	}
}

// next applies lifecycle actions that can be carried out under the
// monitor and returns the first one that cannot.
func (t *glThread) next() lifecycle.Action {
	for {
		t.f.Events = len(t.events)
		p := lifecycle.Policy{
			ReleaseContextOnPause:   !t.preserve || t.arb.ShouldReleaseOnPause(),
			TerminateDisplayOnPause: t.arb.ShouldTerminateDisplayOnPause(),
		}
		f, a := lifecycle.Next(t.f, p)
		if a != lifecycle.Wait && a != lifecycle.Draw {
			t.log.Debug("transition", zap.Stringer("action", a), zap.Stringer("state", f.State()))
		}
		t.f = f
		switch a {
		case lifecycle.Wait:
			t.arb.Wait()
			t.f = lifecycle.Woken(t.f)
		case lifecycle.Update:
			t.arb.Broadcast()
		case lifecycle.ReleaseSurface:
			t.binding.ReleaseCurrent()
			t.binding.DestroySurface()
			t.arb.Broadcast()
		case lifecycle.ReleaseContext:
			t.releaseContext()
		case lifecycle.TerminateDisplay:
			t.binding.TerminateDisplay()
			t.arb.Broadcast()
		case lifecycle.AcquireContext:
			t.acquireContext()
		default:
			return a
		}
	}
}

func (t *glThread) releaseContext() {
	t.binding.ReleaseCurrent()
	t.binding.DestroySurface()
	t.binding.DestroyContext()
	t.arb.Release(t)
}

func (t *glThread) acquireContext() {
	if !t.arb.TryAcquire(t) {
		t.log.Debug("context token denied")
		t.f = lifecycle.Denied(t.f)
		return
	}
	_, span := t.tracer.Start(t.ctx, "context.acquire")
	defer span.End()
	info, err := t.binding.CreateContext()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context creation failed")
		t.arb.Release(t)
		if !t.hadContext {
			t.log.Error("context creation failed", zap.Error(err))
			t.err = fmt.Errorf("app: create context: %w", err)
			t.f.RequestExit = true
			return
		}
		t.log.Warn("context creation failed, waiting", zap.Error(err))
		t.f = lifecycle.Denied(t.f)
		return
	}
	span.SetAttributes(
		attribute.String("renderer", info.Renderer),
		attribute.Int("client_version", info.ClientVersion),
	)
	t.hadContext = true
	t.info = info
	t.f = lifecycle.Acquired(t.f)
	t.arb.Broadcast()
}

// drawFrame draws one frame, creating the surface first if needed. It is
// called with the monitor held and releases it while native and renderer
// calls run.
func (t *glThread) drawFrame() {
	j := t.plan()
	if j.createSurface {
		t.arb.Unlock()
		ok, identity := t.createSurface(j)
		if t.info.Renderer == "" {
			// Bindings that learn the renderer only once current.
			t.info.Renderer = identity
		}
		t.arb.Lock()
		t.f = lifecycle.SurfaceCreated(t.f, ok)
		t.finishedCreatingSurface = true
		t.arb.CheckDriver(identity)
		t.arb.Broadcast()
		if !ok || t.f.RequestExit || t.f.RequestPaused || !t.f.HasSurface {
			// The request is served by the next frame.
			t.f.RenderRequested = true
			t.drawing = false
			t.arb.Broadcast()
			return
		}
	}
	t.arb.Unlock()
	r := t.render(j)
	t.arb.Lock()
	t.f = lifecycle.Drawn(t.f, r)
	t.frames = j.frame.Seq
	if j.gen > t.completedGen {
		t.completedGen = j.gen
	}
	t.drawing = false
	t.arb.Broadcast()
}

func (t *glThread) plan() frameJob {
	t.drawing = true
	return frameJob{
		createSurface: t.f.CreateSurface,
		newContext:    t.f.NewContext,
		notifySize:    t.f.NotifySize,
		width:         t.f.SurfaceWidth,
		height:        t.f.SurfaceHeight,
		win:           t.win,
		frame:         Frame{Seq: t.frames + 1, Params: t.params},
		gen:           t.requestGen,
	}
}

// createSurface binds a surface to the planned window and makes it
// current. It returns the driver identity of the current context.
func (t *glThread) createSurface(j frameJob) (bool, string) {
	_, span := t.tracer.Start(t.ctx, "surface.create", trace.WithAttributes(
		attribute.Int("width", j.width),
		attribute.Int("height", j.height),
	))
	defer span.End()
	if err := t.binding.CreateSurface(j.win, j.width, j.height); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "surface creation failed")
		t.log.Warn("surface creation failed", zap.Error(err), zap.Int("width", j.width), zap.Int("height", j.height))
		return false, ""
	}
	if err := t.binding.MakeCurrent(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "make current failed")
		t.log.Warn("make current failed", zap.Error(err))
		return false, ""
	}
	identity := t.binding.DriverIdentity()
	span.SetAttributes(attribute.String("renderer", identity))
	return true, identity
}

func (t *glThread) render(j frameJob) lifecycle.SwapResult {
	if j.newContext {
		t.renderer.OnSurfaceCreated(t.info)
	}
	if j.notifySize {
		t.renderer.OnSurfaceChanged(j.width, j.height)
	}
	_, span := t.tracer.Start(t.ctx, "frame", trace.WithAttributes(
		attribute.Int64("seq", int64(j.frame.Seq)),
	))
	defer span.End()
	t.renderer.OnDrawFrame(j.frame)
	err := t.binding.Swap()
	switch {
	case err == nil:
		if n, ok := t.renderer.(FrameNotifier); ok {
			n.OnFrameRendered(j.frame.Params)
		}
		return lifecycle.SwapOK
	case errors.Is(err, egl.ErrContextLost):
		span.RecordError(err)
		t.log.Info("context lost", zap.Uint64("frame", j.frame.Seq))
		return lifecycle.SwapContextLost
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "swap failed")
		t.log.Warn("swap failed", zap.Error(err), zap.Uint64("frame", j.frame.Seq))
		return lifecycle.SwapFailed
	}
}

func (t *glThread) exit() {
	t.binding.ReleaseCurrent()
	t.binding.DestroySurface()
	t.binding.DestroyContext()
	t.binding.TerminateDisplay()
	t.arb.Exiting(t)
	t.f = lifecycle.Terminated(t.f)
	t.events = nil
	t.tid = 0
	t.arb.Broadcast()
}

// setSize records a new surface size and requests a frame at that size.
func (t *glThread) setSize(width, height int) uint64 {
	t.f.Width, t.f.Height = width, height
	t.f.SizeChanged = true
	return t.requestFrame()
}

func (t *glThread) requestFrame() uint64 {
	t.f.RenderRequested = true
	t.requestGen++
	return t.requestGen
}

// canDraw reports whether the render thread will draw without an
// external signal.
func (t *glThread) canDraw() bool {
	return t.f.ReadyToDraw() && (t.f.HaveContext || !t.f.HoldAcquire)
}
