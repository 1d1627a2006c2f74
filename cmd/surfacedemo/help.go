// SPDX-License-Identifier: Unlicense OR MIT

package main

const mainUsage = `The surfacedemo command drives surface views through a scripted
lifecycle and saves the last presented frame of each view.

Usage:

	surfacedemo [flags]

Each view is created, drawn, paused, resumed, resized and destroyed.
Views share one context arbiter, so their render threads compete for
contexts the way windows of one process do.

The -config flag names a TOML file:

	render_mode = "on-demand"
	preserve_context_on_pause = true

	[format]
	client_version = 2
	depth_bits = 16

The -native flag opens the platform EGL display, creates a context and
prints its description instead of running the views.

Flags:

`
