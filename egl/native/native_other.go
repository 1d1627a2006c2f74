// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux && !freebsd
// +build !linux,!freebsd

// Package native implements egl.Binding on the platform EGL library.
package native

import "gearvrf.org/surface/egl"

// Binding is unavailable on this platform.
type Binding struct {
	egl.Binding
}

type Option func(b *Binding)

func ShareWith(other *Binding) Option {
	return func(b *Binding) {}
}

// New returns egl.ErrUnsupported.
func New(opts ...Option) (*Binding, error) {
	return nil, egl.ErrUnsupported
}
