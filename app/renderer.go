// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"

	"gearvrf.org/surface/egl"
)

// Renderer draws the content of a SurfaceView. Its methods are called on
// the render thread only.
type Renderer interface {
	// OnSurfaceCreated is called once for every new graphics context,
	// before the first OnDrawFrame that uses it. Resources created in the
	// previous context are gone.
	OnSurfaceCreated(info egl.Info)
	// OnSurfaceChanged is called once for every surface size, before the
	// next OnDrawFrame at that size.
	OnSurfaceChanged(width, height int)
	// OnDrawFrame draws a frame. It must not block indefinitely.
	OnDrawFrame(f Frame)
}

// FrameNotifier is implemented by renderers that want to know when a
// frame has been presented.
type FrameNotifier interface {
	OnFrameRendered(p FrameParams)
}

// StartNotifier is implemented by renderers that want to run code on the
// render thread before its first frame.
type StartNotifier interface {
	OnStart()
}

// FrameParams are the parameters of a render request. They are passed
// unchanged to the frame that serves the request.
type FrameParams struct {
	// Buffer selects the buffer of a multi-buffered renderer.
	Buffer int
	// Tag is an opaque caller value.
	Tag int64
}

// Frame describes a frame to draw.
type Frame struct {
	// Seq numbers the frames of a render thread from 1. It never
	// decreases.
	Seq    uint64
	Params FrameParams
}

// RenderMode selects when frames are drawn.
type RenderMode uint8

const (
	// OnDemand draws a frame only after RequestRender or a surface
	// change.
	OnDemand RenderMode = iota
	// Continuous draws frames repeatedly while the surface is usable.
	Continuous
)

func (m RenderMode) String() string {
	switch m {
	case OnDemand:
		return "on-demand"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("RenderMode(%d)", uint8(m))
	}
}

func (m RenderMode) valid() bool {
	return m == OnDemand || m == Continuous
}

func (m RenderMode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRenderMode, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *RenderMode) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "on-demand", "ondemand", "when-dirty":
		*m = OnDemand
	case "continuous", "continuously":
		*m = Continuous
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRenderMode, s)
	}
	return nil
}
