// SPDX-License-Identifier: Unlicense OR MIT

// Package arbiter decides which render thread may hold a graphics
// context when the driver cannot keep more than one alive.
//
// An Arbiter also owns the monitor that guards the state of every render
// thread using it. Methods other than Lock must be called with the
// monitor held.
package arbiter

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"gearvrf.org/surface/internal/log"
)

// Capability is the result of the driver probe.
type Capability uint8

const (
	// Unknown means no context has been probed yet. It is treated as
	// SingleContext.
	Unknown Capability = iota
	SingleContext
	MultiContext
)

func (c Capability) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case SingleContext:
		return "single"
	case MultiContext:
		return "multi"
	default:
		panic("invalid Capability")
	}
}

// Prober decides from a driver identity string whether the driver
// supports several live contexts.
type Prober interface {
	MultiContext(identity string) bool
}

// ProberFunc adapts a function to a Prober.
type ProberFunc func(identity string) bool

func (f ProberFunc) MultiContext(identity string) bool {
	return f(identity)
}

// singleContextRenderers lists renderer identity prefixes of drivers
// that fail when more than one context exists.
var singleContextRenderers = []string{
	"Q3Dimension MSM7500 ",
}

// DefaultProber allows multiple contexts unless the renderer is a known
// single-context driver.
var DefaultProber Prober = ProberFunc(func(identity string) bool {
	return slices.IndexFunc(singleContextRenderers, func(prefix string) bool {
		return strings.HasPrefix(identity, prefix)
	}) == -1
})

// Holder is a render thread that can own the context token.
type Holder interface {
	// RequestRelease asks the holder to give up its context at its
	// next opportunity. It is called with the monitor held and must not
	// block.
	RequestRelease()
}

// Arbiter hands out the context token.
type Arbiter struct {
	mu   sync.Mutex
	cond *sync.Cond

	owner      Holder
	capability Capability
	probe      Prober
	log        *zap.Logger
}

var (
	defaultOnce sync.Once
	defaultArb  *Arbiter
)

// Default returns the process-wide arbiter, creating it on first use.
func Default() *Arbiter {
	defaultOnce.Do(func() {
		defaultArb = New(DefaultProber)
	})
	return defaultArb
}

// New returns an arbiter probing drivers with p. A nil p means
// DefaultProber.
func New(p Prober) *Arbiter {
	if p == nil {
		p = DefaultProber
	}
	a := &Arbiter{
		probe: p,
		log:   log.Named("arbiter"),
	}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Lock acquires the monitor.
func (a *Arbiter) Lock() {
	a.mu.Lock()
}

// Unlock releases the monitor.
func (a *Arbiter) Unlock() {
	a.mu.Unlock()
}

// Wait atomically releases the monitor and suspends the caller until
// Broadcast is called.
func (a *Arbiter) Wait() {
	a.cond.Wait()
}

// Broadcast wakes every goroutine waiting on the monitor.
func (a *Arbiter) Broadcast() {
	a.cond.Broadcast()
}

// TryAcquire grants h a context if the token is free or already owned
// by h, or if the driver allows multiple contexts. Otherwise it asks the
// current owner to release the token and returns false; it never
// blocks.
func (a *Arbiter) TryAcquire(h Holder) bool {
	if a.owner == h || a.owner == nil {
		a.owner = h
		a.cond.Broadcast()
		return true
	}
	if a.capability == MultiContext {
		return true
	}
	a.RequestOwnerRelease()
	return false
}

// Release gives back the token if h owns it. It is idempotent.
func (a *Arbiter) Release(h Holder) {
	if a.owner == h {
		a.owner = nil
	}
	a.cond.Broadcast()
}

// RequestOwnerRelease asks the current owner, if any, to release its
// context. The request is advisory; the owner releases on its own
// thread.
func (a *Arbiter) RequestOwnerRelease() {
	if a.owner != nil {
		a.log.Debug("requesting context release from owner")
		a.owner.RequestRelease()
	}
	a.cond.Broadcast()
}

// Exiting forgets h when its render thread terminates.
func (a *Arbiter) Exiting(h Holder) {
	a.Release(h)
}

// Owner returns the current token owner, or nil.
func (a *Arbiter) Owner() Holder {
	return a.owner
}

// Capability returns the result of the driver probe.
func (a *Arbiter) Capability() Capability {
	return a.capability
}

// ShouldReleaseOnPause reports whether a pausing render thread must
// destroy its context.
func (a *Arbiter) ShouldReleaseOnPause() bool {
	return a.capability != MultiContext
}

// ShouldTerminateDisplayOnPause reports whether a pausing render thread
// must also close its display connection.
func (a *Arbiter) ShouldTerminateDisplayOnPause() bool {
	return a.capability != MultiContext
}

// CheckDriver probes the driver identity of the first successfully
// created context. Later calls, and calls with an empty identity, are
// ignored.
func (a *Arbiter) CheckDriver(identity string) {
	if a.capability != Unknown || identity == "" {
		return
	}
	if a.probe.MultiContext(identity) {
		a.capability = MultiContext
	} else {
		a.capability = SingleContext
	}
	a.log.Info("driver probed", zap.String("renderer", identity), zap.Stringer("contexts", a.capability))
	a.cond.Broadcast()
}
