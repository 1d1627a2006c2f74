// SPDX-License-Identifier: Unlicense OR MIT

/*
Package app runs a Renderer on a dedicated render thread and keeps its
graphics context and window surface in step with the window system.

# Surface views

A SurfaceView is driven by the control thread that receives window
system callbacks. Each callback maps to a method:

	v, err := app.NewSurfaceView(renderer, binding)
	if err != nil {
		...
	}
	if err := v.Start(ctx); err != nil {
		// No display connection.
	}
	v.SurfaceCreated(win, width, height)
	v.WindowResized(width, height)
	v.Pause()
	v.Resume()
	v.SurfaceDestroyed()
	err = v.RequestExitAndWait()

SurfaceCreated, SurfaceDestroyed, WindowResized, Pause, Resume and
RequestExitAndWait block until the render thread has acted on them.
They must not be called from the render thread, that is from Renderer
methods or from functions passed to QueueEvent.

# Render thread

The render thread is a goroutine locked to its OS thread. It creates the
graphics context when it has a surface to draw to, recreates the
surface on resize, and releases the surface on pause. On drivers that
support a single context per process, views hand the context to each
other, and a paused view also releases its context and display
connection.

Renderer methods run on the render thread without any lock held.
Graphics errors other than a failure to create the first context are
logged and recovered from; see SetLogger.
*/
package app
