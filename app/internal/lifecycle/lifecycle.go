// SPDX-License-Identifier: Unlicense OR MIT

/*
Package lifecycle is the state machine of a render thread.

The thread's state is a record of flags: intents written by the
control thread and facts owned by the render thread. Next maps a record
to the single most urgent action and to the record as it will be once
the action has been carried out. The render thread applies actions
until one of them needs it to leave the monitor (RunEvent, Draw), to
block (Wait) or to stop (Exit).

Next checks its rules in a fixed priority order:

	exit
	explicit context release request
	lost context recovery
	pause teardown
	surface loss teardown
	context and surface acquisition
	resize driven surface recreation
	event execution
	draw

Next performs no native calls and can be tested without a graphics
driver. The outcome of actions that can fail is fed back with Acquired,
Denied, SurfaceCreated and Drawn.
*/
package lifecycle

// State names the phase of a render thread. It is derived from the
// flags, never stored.
type State uint8

const (
	Starting State = iota
	WaitingForSurface
	AcquiringContext
	CreatingSurface
	Ready
	Paused
	ReleasingSurface
	ReleasingContext
	Exiting
	Exited
)

// Action is the next step of a render thread.
type Action uint8

const (
	// Wait blocks on the monitor until something changes.
	Wait Action = iota
	// Update means only flags changed; waiters must be woken.
	Update
	// Exit stops the render thread.
	Exit
	// ReleaseContext destroys the surface and the context and returns
	// the context token.
	ReleaseContext
	// ReleaseSurface destroys the surface.
	ReleaseSurface
	// TerminateDisplay closes the display connection.
	TerminateDisplay
	// AcquireContext asks for the context token and creates a context.
	AcquireContext
	// RunEvent runs the oldest queued event outside the monitor.
	RunEvent
	// Draw creates the surface if needed and draws a frame outside the
	// monitor.
	Draw
)

// Flags is the complete state of a render thread.
type Flags struct {
	// Written by the control thread.
	HasSurface      bool
	RequestPaused   bool
	RequestExit     bool
	RequestRelease  bool
	SizeChanged     bool
	Width, Height   int
	Continuous      bool
	RenderRequested bool
	// Events is the number of queued events.
	Events int

	// Written by the render thread.
	Paused            bool
	Exited            bool
	WaitingForSurface bool
	HaveContext       bool
	HaveSurface       bool
	SurfaceBad        bool
	DisplayOpen       bool
	ContextLost       bool
	// PauseTeardown is set while resources are released after a pause.
	PauseTeardown bool
	// HoldAcquire suppresses context acquisition until the next wake.
	HoldAcquire bool
	// CreateSurface is set when the next draw must (re)create the
	// native surface.
	CreateSurface bool
	// NewContext is set until the renderer saw the current context.
	NewContext bool
	// NotifySize is set until the renderer saw the surface size.
	NotifySize                  bool
	SurfaceWidth, SurfaceHeight int
}

// Policy holds the driver dependent pause behaviour.
type Policy struct {
	ReleaseContextOnPause   bool
	TerminateDisplayOnPause bool
}

// SwapResult is the outcome of presenting a frame.
type SwapResult uint8

const (
	SwapOK SwapResult = iota
	SwapContextLost
	SwapFailed
)

// ReadyToDraw reports whether the control thread's intents allow a
// frame to be drawn.
func (f Flags) ReadyToDraw() bool {
	return !f.Paused && f.HasSurface && !f.SurfaceBad &&
		f.Width > 0 && f.Height > 0 &&
		(f.RenderRequested || f.Continuous)
}

// AbleToDraw reports whether a frame can be drawn right now.
func (f Flags) AbleToDraw() bool {
	return f.HaveContext && f.HaveSurface && f.ReadyToDraw()
}

// State returns the phase described by f.
func (f Flags) State() State {
	switch {
	case f.Exited:
		return Exited
	case f.RequestExit:
		return Exiting
	case (f.RequestRelease || f.ContextLost) && f.HaveContext:
		return ReleasingContext
	case f.PauseTeardown && f.HaveSurface:
		return ReleasingSurface
	case f.PauseTeardown && f.HaveContext:
		return ReleasingContext
	case f.Paused:
		return Paused
	case !f.HasSurface && f.HaveSurface:
		return ReleasingSurface
	case !f.HasSurface && !f.WaitingForSurface:
		return Starting
	case !f.HasSurface:
		return WaitingForSurface
	case !f.HaveContext:
		return AcquiringContext
	case !f.HaveSurface || f.CreateSurface:
		return CreatingSurface
	default:
		return Ready
	}
}

// Next returns the most urgent action for f and the flags after it.
func Next(f Flags, p Policy) (Flags, Action) {
	switch {
	case f.RequestExit:
		return f, Exit
	case f.RequestRelease:
		f.RequestRelease = false
		f.HoldAcquire = true
		return release(f)
	case f.ContextLost:
		f.ContextLost = false
		return release(f)
	case f.Paused != f.RequestPaused:
		f.Paused = f.RequestPaused
		f.PauseTeardown = f.Paused
		return f, Update
	case f.PauseTeardown:
		return pauseTeardown(f, p)
	case !f.HasSurface && !f.WaitingForSurface:
		f.WaitingForSurface = true
		f.SurfaceBad = false
		if f.HaveSurface {
			return dropSurface(f), ReleaseSurface
		}
		return f, Update
	case f.HasSurface && f.WaitingForSurface:
		f.WaitingForSurface = false
		return f, Update
	case f.SurfaceBad && f.SizeChanged && f.HasSurface && !f.Paused:
		// A resize is the signal to retry a failed surface.
		f.SurfaceBad = false
		return f, Update
	}

	ready := f.ReadyToDraw()
	if ready {
		switch {
		case !f.HaveContext:
			if !f.HoldAcquire {
				return f, AcquireContext
			}
		case !f.HaveSurface:
			f.HaveSurface = true
			return resize(f), Update
		case f.SizeChanged:
			return resize(f), Update
		}
	}
	if f.Events > 0 {
		return f, RunEvent
	}
	if ready && f.HaveContext && f.HaveSurface {
		f.RenderRequested = false
		return f, Draw
	}
	return f, Wait
}

func release(f Flags) (Flags, Action) {
	if !f.HaveContext {
		return f, Update
	}
	f = dropSurface(f)
	f.HaveContext = false
	f.NewContext = false
	return f, ReleaseContext
}

func dropSurface(f Flags) Flags {
	f.HaveSurface = false
	f.CreateSurface = false
	return f
}

func resize(f Flags) Flags {
	f.CreateSurface = true
	f.NotifySize = true
	f.SurfaceWidth, f.SurfaceHeight = f.Width, f.Height
	f.SizeChanged = false
	return f
}

func pauseTeardown(f Flags, p Policy) (Flags, Action) {
	switch {
	case f.HaveSurface:
		return dropSurface(f), ReleaseSurface
	case f.HaveContext && (p.ReleaseContextOnPause || p.TerminateDisplayOnPause):
		// The display cannot be closed under a live context.
		return release(f)
	case f.DisplayOpen && p.TerminateDisplayOnPause:
		f.DisplayOpen = false
		f.PauseTeardown = false
		return f, TerminateDisplay
	}
	f.PauseTeardown = false
	return f, Update
}

// Woken clears the flags that only last until the next wake.
func Woken(f Flags) Flags {
	f.HoldAcquire = false
	return f
}

// Acquired records a created context.
func Acquired(f Flags) Flags {
	f.HaveContext = true
	f.NewContext = true
	f.DisplayOpen = true
	return f
}

// Denied records that no context could be acquired. Acquisition is
// retried after the next wake.
func Denied(f Flags) Flags {
	f.HoldAcquire = true
	return f
}

// SurfaceCreated records the outcome of a surface creation attempt.
func SurfaceCreated(f Flags, ok bool) Flags {
	f.CreateSurface = false
	if !ok {
		f.SurfaceBad = true
	}
	return f
}

// Drawn records a drawn frame and the outcome of presenting it.
func Drawn(f Flags, r SwapResult) Flags {
	f.NewContext = false
	f.NotifySize = false
	switch r {
	case SwapContextLost:
		f.ContextLost = true
	case SwapFailed:
		f.SurfaceBad = true
	}
	return f
}

// Terminated records a stopped render thread with every resource
// released.
func Terminated(f Flags) Flags {
	f = dropSurface(f)
	f.HaveContext = false
	f.NewContext = false
	f.DisplayOpen = false
	f.Exited = true
	return f
}

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case WaitingForSurface:
		return "waiting-for-surface"
	case AcquiringContext:
		return "acquiring-context"
	case CreatingSurface:
		return "creating-surface"
	case Ready:
		return "ready"
	case Paused:
		return "paused"
	case ReleasingSurface:
		return "releasing-surface"
	case ReleasingContext:
		return "releasing-context"
	case Exiting:
		return "exiting"
	case Exited:
		return "exited"
	default:
		panic("invalid State")
	}
}

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Update:
		return "update"
	case Exit:
		return "exit"
	case ReleaseContext:
		return "release-context"
	case ReleaseSurface:
		return "release-surface"
	case TerminateDisplay:
		return "terminate-display"
	case AcquireContext:
		return "acquire-context"
	case RunEvent:
		return "run-event"
	case Draw:
		return "draw"
	default:
		panic("invalid Action")
	}
}
