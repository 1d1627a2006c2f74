// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux && !android
// +build !linux,!android

package app

// threadID returns 0 where thread ids are unavailable, which disables
// the render thread check.
func threadID() int {
	return 0
}
