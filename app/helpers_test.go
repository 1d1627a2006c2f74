// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gearvrf.org/surface/app/internal/arbiter"
	"gearvrf.org/surface/app/internal/lifecycle"
	"gearvrf.org/surface/egl"
)

// recorder is a Renderer logging its callbacks.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	frames   []Frame
	infos    []egl.Info
	rendered []FrameParams
	starts   int
	hold     func()
}

var (
	_ FrameNotifier = (*recorder)(nil)
	_ StartNotifier = (*recorder)(nil)
)

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) OnStart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
}

func (r *recorder) OnSurfaceCreated(info egl.Info) {
	r.mu.Lock()
	r.infos = append(r.infos, info)
	r.mu.Unlock()
	r.record("created")
}

func (r *recorder) OnSurfaceChanged(width, height int) {
	r.record(fmt.Sprintf("changed %dx%d", width, height))
}

func (r *recorder) OnDrawFrame(f Frame) {
	r.mu.Lock()
	r.calls = append(r.calls, "draw")
	r.frames = append(r.frames, f)
	hold := r.hold
	r.mu.Unlock()
	if hold != nil {
		hold()
	}
}

func (r *recorder) OnFrameRendered(p FrameParams) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, p)
}

// setHold makes every following OnDrawFrame call f before returning.
func (r *recorder) setHold(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = f
}

// slow makes draws take a while, to keep continuous views from
// spinning.
func (r *recorder) slow() {
	r.setHold(func() { time.Sleep(time.Millisecond) })
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.snapshot() {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recorder) draws() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// newView returns a started view with its own arbiter, stopped when the
// test ends.
func newView(t *testing.T, r Renderer, b egl.Binding, opts ...Option) *SurfaceView {
	t.Helper()
	opts = append([]Option{withArbiter(arbiter.New(nil))}, opts...)
	v, err := NewSurfaceView(r, b, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		v.RequestExitAndWait()
	})
	return v
}

// flags returns the render thread flags of v.
func (v *SurfaceView) flags() lifecycle.Flags {
	v.arb.Lock()
	defer v.arb.Unlock()
	if v.t == nil {
		return lifecycle.Flags{}
	}
	return v.t.f
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// stable fails if n changes within a short period.
func stable(t *testing.T, what string, n func() int) {
	t.Helper()
	before := n()
	time.Sleep(20 * time.Millisecond)
	if after := n(); after != before {
		t.Errorf("%s changed from %d to %d", what, before, after)
	}
}
