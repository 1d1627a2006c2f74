// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gearvrf.org/surface/app/internal/arbiter"
	"gearvrf.org/surface/egl"
	"gearvrf.org/surface/internal/log"
)

var (
	// ErrNilEvent is returned by QueueEvent for nil work.
	ErrNilEvent = errors.New("app: nil event")
	// ErrInvalidRenderMode is returned for render modes other than
	// OnDemand and Continuous.
	ErrInvalidRenderMode = errors.New("app: invalid render mode")
	// ErrClosed is returned by Start after RequestExitAndWait.
	ErrClosed = errors.New("app: surface view closed")
	// ErrNotRunning is returned by QueueEvent when no render thread
	// runs.
	ErrNotRunning = errors.New("app: render thread not running")
	// ErrStarted is returned by Start on a running SurfaceView.
	ErrStarted = errors.New("app: surface view already started")
)

// Config is the configuration of a SurfaceView.
type Config struct {
	// RenderMode is the initial render mode.
	RenderMode RenderMode `toml:"render_mode"`
	// PreserveContextOnPause keeps the graphics context across pauses
	// when the driver can hold several contexts.
	PreserveContextOnPause bool `toml:"preserve_context_on_pause"`
	// Format is the requested surface format. It is passed to the
	// binding unchanged.
	Format egl.Format `toml:"format"`
}

// DefaultConfig returns the configuration used when no option
// overrides it.
func DefaultConfig() Config {
	return Config{RenderMode: Continuous}
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	if !c.RenderMode.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRenderMode, uint8(c.RenderMode))
	}
	f := c.Format
	for _, bits := range []int{f.RedBits, f.GreenBits, f.BlueBits, f.AlphaBits, f.DepthBits, f.StencilBits, f.Samples} {
		if bits < 0 {
			return fmt.Errorf("app: negative format size in %+v", f)
		}
	}
	if v := f.ClientVersion; v != 0 && v != 2 && v != 3 {
		return fmt.Errorf("app: unsupported client version %d", v)
	}
	return nil
}

// LoadConfig reads a TOML configuration file. Fields missing from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("app: load config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("app: load config: unknown key %q", undec[0].String())
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("app: load config: %w", err)
	}
	return c, nil
}

// Option configures a SurfaceView.
type Option func(o *options)

type options struct {
	cfg Config
	tp  trace.TracerProvider
	arb *arbiter.Arbiter
}

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.cfg = c
	}
}

// WithRenderMode sets the initial render mode.
func WithRenderMode(m RenderMode) Option {
	return func(o *options) {
		o.cfg.RenderMode = m
	}
}

// WithPreserveContextOnPause keeps the context across pauses where the
// driver allows it.
func WithPreserveContextOnPause(preserve bool) Option {
	return func(o *options) {
		o.cfg.PreserveContextOnPause = preserve
	}
}

// WithFormat sets the requested surface format.
func WithFormat(f egl.Format) Option {
	return func(o *options) {
		o.cfg.Format = f
	}
}

// WithTracerProvider records context, surface and frame spans with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// withArbiter isolates a view from the process-wide arbiter.
func withArbiter(a *arbiter.Arbiter) Option {
	return func(o *options) {
		o.arb = a
	}
}

// SetLogger directs the log output of every SurfaceView to l. A nil l
// silences logging.
func SetLogger(l *zap.Logger) {
	log.Set(l)
}
