// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd
// +build linux freebsd

package native

import (
	"errors"
	"os"
	"sync"
	"testing"

	"gearvrf.org/surface/egl"
)

func isBadContext(err error) bool {
	var e *egl.Error
	return errors.As(err, &e) && e.Code == egl.BadContext
}

func TestShareWithoutContext(t *testing.T) {
	owner, _ := New()
	b, _ := New(ShareWith(owner))
	if _, err := b.CreateContext(); !isBadContext(err) {
		t.Fatalf("got %v, want EGL_BAD_CONTEXT", err)
	}
	if b.disp != nilEGLDisplay || b.ctx != nilEGLContext {
		t.Error("failed CreateContext left native state behind")
	}
}

func TestShareWith(t *testing.T) {
	if os.Getenv("SURFACE_EGL_TEST") == "" {
		t.Skip("SURFACE_EGL_TEST not set")
	}
	owner, _ := New()
	if _, err := owner.CreateContext(); err != nil {
		t.Fatal(err)
	}
	defer owner.TerminateDisplay()

	// Contexts sharing with owner race its destruction. Each either
	// shares a live context or fails cleanly.
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := New(ShareWith(owner))
			_, errs[i] = b.CreateContext()
			// The display is owner's; terminating it here would end
			// owner's display too.
			b.DestroyContext()
		}()
	}
	owner.DestroyContext()
	wg.Wait()
	for _, err := range errs {
		if err != nil && !isBadContext(err) {
			t.Errorf("unexpected error %v", err)
		}
	}
	b, _ := New(ShareWith(owner))
	if _, err := b.CreateContext(); !isBadContext(err) {
		t.Errorf("got %v after owner destroyed its context, want EGL_BAD_CONTEXT", err)
	}
	if b.ctx != nilEGLContext {
		t.Error("context created without a shared context")
	}
}
