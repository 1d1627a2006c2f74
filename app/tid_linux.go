// SPDX-License-Identifier: Unlicense OR MIT

package app

import "golang.org/x/sys/unix"

func threadID() int {
	return unix.Gettid()
}
