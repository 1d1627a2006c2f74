// SPDX-License-Identifier: Unlicense OR MIT

package lifecycle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var singleContext = Policy{ReleaseContextOnPause: true, TerminateDisplayOnPause: true}

// settle applies Next until the render thread would leave the monitor,
// granting every context request if grant is set.
func settle(t *testing.T, f Flags, p Policy, grant bool) (Flags, []Action) {
	t.Helper()
	var actions []Action
	for i := 0; i < 100; i++ {
		var a Action
		f, a = Next(f, p)
		actions = append(actions, a)
		switch a {
		case AcquireContext:
			if grant {
				f = Acquired(f)
			} else {
				f = Denied(f)
			}
		case Wait, RunEvent, Draw, Exit:
			return f, actions
		}
	}
	t.Fatalf("no stable state after %v", actions)
	return f, nil
}

// ready returns the flags of a thread drawing continuously to a
// 640x480 surface.
func ready(t *testing.T) Flags {
	f := Flags{
		HasSurface:  true,
		Width:       640,
		Height:      480,
		SizeChanged: true,
		Continuous:  true,
		DisplayOpen: true,
	}
	f, actions := settle(t, f, Policy{}, true)
	if last := actions[len(actions)-1]; last != Draw {
		t.Fatalf("got actions %v, want a draw", actions)
	}
	f = SurfaceCreated(f, true)
	return Drawn(f, SwapOK)
}

func TestStartup(t *testing.T) {
	f := Flags{DisplayOpen: true, Continuous: true}
	if s := f.State(); s != Starting {
		t.Errorf("got state %v, want starting", s)
	}
	f, actions := settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{Update, Wait}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !f.WaitingForSurface || f.State() != WaitingForSurface {
		t.Errorf("got state %v, want waiting-for-surface", f.State())
	}

	f.HasSurface = true
	f.Width, f.Height, f.SizeChanged = 320, 200, true
	f, actions = settle(t, f, Policy{}, true)
	want := []Action{Update, AcquireContext, Update, Draw}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !f.CreateSurface || !f.NewContext || !f.NotifySize {
		t.Errorf("first frame does not create the surface and notify the renderer: %+v", f)
	}
	if f.SurfaceWidth != 320 || f.SurfaceHeight != 200 {
		t.Errorf("got surface size %dx%d, want 320x200", f.SurfaceWidth, f.SurfaceHeight)
	}
	if s := f.State(); s != CreatingSurface {
		t.Errorf("got state %v, want creating-surface", s)
	}
	f = Drawn(SurfaceCreated(f, true), SwapOK)
	if s := f.State(); s != Ready {
		t.Errorf("got state %v, want ready", s)
	}
}

func TestExitWins(t *testing.T) {
	f := ready(t)
	f.RequestExit = true
	f.RequestRelease = true
	f.ContextLost = true
	f.RequestPaused = true
	f.HasSurface = false
	f.Events = 3
	if _, a := Next(f, singleContext); a != Exit {
		t.Errorf("got %v, want exit", a)
	}
	if s := f.State(); s != Exiting {
		t.Errorf("got state %v, want exiting", s)
	}
	if s := Terminated(f).State(); s != Exited {
		t.Errorf("got state %v, want exited", s)
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Flags)
		want   Action
	}{
		{"release before lost context", func(f *Flags) { f.RequestRelease = true; f.ContextLost = true }, ReleaseContext},
		{"lost context before pause", func(f *Flags) { f.ContextLost = true; f.RequestPaused = true }, ReleaseContext},
		{"pause before surface loss", func(f *Flags) { f.RequestPaused = true; f.HasSurface = false }, Update},
		{"surface loss before resize", func(f *Flags) { f.HasSurface = false; f.SizeChanged = true }, ReleaseSurface},
		{"resize before event", func(f *Flags) { f.SizeChanged = true; f.Events = 1 }, Update},
		{"event before draw", func(f *Flags) { f.Events = 1 }, RunEvent},
		{"draw", func(f *Flags) {}, Draw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready(t)
			tt.mutate(&f)
			if _, got := Next(f, singleContext); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestRelease(t *testing.T) {
	f := ready(t)
	f.RequestRelease = true
	f, a := Next(f, Policy{})
	if a != ReleaseContext {
		t.Fatalf("got %v, want release-context", a)
	}
	if f.HaveContext || f.HaveSurface || !f.HoldAcquire {
		t.Errorf("unexpected flags after release: %+v", f)
	}
	// The released context is not reacquired before the next wake.
	f, actions := settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{Wait}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	f, actions = settle(t, Woken(f), Policy{}, true)
	if diff := cmp.Diff([]Action{AcquireContext, Update, Draw}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !f.NewContext {
		t.Error("reacquired context not reported to the renderer")
	}

	// A release request without a context only holds acquisition.
	g := Flags{RequestRelease: true}
	g, a = Next(g, Policy{})
	if a != Update || !g.HoldAcquire || g.RequestRelease {
		t.Errorf("got %v with %+v", a, g)
	}
}

func TestContextLost(t *testing.T) {
	f := Drawn(ready(t), SwapContextLost)
	if !f.ContextLost {
		t.Fatal("context loss not recorded")
	}
	f, actions := settle(t, f, Policy{}, true)
	want := []Action{ReleaseContext, AcquireContext, Update, Draw}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !f.NewContext || !f.CreateSurface || !f.NotifySize {
		t.Errorf("recovered context not reported: %+v", f)
	}
}

func TestPause(t *testing.T) {
	tests := []struct {
		name        string
		p           Policy
		want        []Action
		haveContext bool
		displayOpen bool
	}{
		{
			name:        "multi context",
			p:           Policy{},
			want:        []Action{Update, ReleaseSurface, Update, Wait},
			haveContext: true,
			displayOpen: true,
		},
		{
			name:        "release context",
			p:           Policy{ReleaseContextOnPause: true},
			want:        []Action{Update, ReleaseSurface, ReleaseContext, Update, Wait},
			displayOpen: true,
		},
		{
			name: "single context",
			p:    singleContext,
			want: []Action{Update, ReleaseSurface, ReleaseContext, TerminateDisplay, Wait},
		},
		{
			name: "terminate only",
			p:    Policy{TerminateDisplayOnPause: true},
			want: []Action{Update, ReleaseSurface, ReleaseContext, TerminateDisplay, Wait},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready(t)
			f.RequestPaused = true
			f, actions := settle(t, f, tt.p, true)
			if diff := cmp.Diff(tt.want, actions); diff != "" {
				t.Errorf("actions mismatch (-want +got):\n%s", diff)
			}
			if !f.Paused || f.HaveSurface || f.PauseTeardown {
				t.Errorf("unexpected flags after pause: %+v", f)
			}
			if f.HaveContext != tt.haveContext || f.DisplayOpen != tt.displayOpen {
				t.Errorf("got context %v display %v, want %v %v", f.HaveContext, f.DisplayOpen, tt.haveContext, tt.displayOpen)
			}
			if s := f.State(); s != Paused {
				t.Errorf("got state %v, want paused", s)
			}

			// Resume.
			f.RequestPaused = false
			f.RenderRequested = true
			f, actions = settle(t, f, tt.p, true)
			if last := actions[len(actions)-1]; last != Draw {
				t.Errorf("got actions %v after resume, want a draw", actions)
			}
			if !f.CreateSurface || f.NewContext == tt.haveContext {
				t.Errorf("unexpected flags after resume: %+v", f)
			}
		})
	}
}

func TestSurfaceLoss(t *testing.T) {
	f := ready(t)
	f.HasSurface = false
	f, actions := settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{ReleaseSurface, Wait}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !f.WaitingForSurface || f.HaveSurface || !f.HaveContext {
		t.Errorf("unexpected flags after surface loss: %+v", f)
	}

	f.HasSurface = true
	f.SizeChanged = true
	f, actions = settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{Update, Update, Draw}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if f.WaitingForSurface || !f.CreateSurface || f.NewContext {
		t.Errorf("unexpected flags after new surface: %+v", f)
	}
}

func TestBadSurface(t *testing.T) {
	f := ready(t)
	f.SizeChanged = true
	f, _ = settle(t, f, Policy{}, true)
	f = SurfaceCreated(f, false)
	if !f.SurfaceBad || f.ReadyToDraw() {
		t.Fatalf("failed surface still ready: %+v", f)
	}
	// No retry without an external signal.
	if _, actions := settle(t, f, Policy{}, true); !cmp.Equal(actions, []Action{Wait}) {
		t.Errorf("got %v, want wait", actions)
	}
	// A resize retries.
	f.SizeChanged = true
	f, actions := settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{Update, Update, Draw}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if f.SurfaceBad || !f.CreateSurface {
		t.Errorf("surface not retried: %+v", f)
	}

	// So does a new surface.
	f = Drawn(SurfaceCreated(f, true), SwapFailed)
	if !f.SurfaceBad {
		t.Fatal("swap failure did not mark the surface bad")
	}
	f.HasSurface = false
	f, _ = settle(t, f, Policy{}, true)
	if f.SurfaceBad {
		t.Error("lost surface still marked bad")
	}
}

func TestOnDemand(t *testing.T) {
	f := ready(t)
	f.Continuous = false
	f.RenderRequested = true
	f, actions := settle(t, f, Policy{}, true)
	if diff := cmp.Diff([]Action{Draw}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if f.RenderRequested {
		t.Error("render request not consumed")
	}
	f = Drawn(f, SwapOK)
	if _, actions := settle(t, f, Policy{}, true); !cmp.Equal(actions, []Action{Wait}) {
		t.Errorf("got %v, want wait", actions)
	}
}

func TestDenied(t *testing.T) {
	f := Flags{HasSurface: true, Width: 1, Height: 1, Continuous: true, Events: 1}
	f, actions := settle(t, f, Policy{}, false)
	if diff := cmp.Diff([]Action{AcquireContext, RunEvent}, actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	f.Events = 0
	if _, actions := settle(t, f, Policy{}, false); !cmp.Equal(actions, []Action{Wait}) {
		t.Errorf("got %v, want wait", actions)
	}
}

func TestEventsWhilePaused(t *testing.T) {
	f := ready(t)
	f.RequestPaused = true
	f, _ = settle(t, f, singleContext, true)
	f.Events = 2
	if _, a := Next(f, singleContext); a != RunEvent {
		t.Errorf("got %v, want run-event", a)
	}
}

func TestAbleToDraw(t *testing.T) {
	f := ready(t)
	if !f.AbleToDraw() {
		t.Error("ready thread unable to draw")
	}
	f.Width = 0
	if f.ReadyToDraw() || f.AbleToDraw() {
		t.Error("empty surface ready to draw")
	}
}
