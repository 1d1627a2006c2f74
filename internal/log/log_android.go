// SPDX-License-Identifier: Unlicense OR MIT

package log

/*
#cgo LDFLAGS: -llog

#include <stdlib.h>
#include <android/log.h>
*/
import "C"

import (
	"bytes"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 1024 is the truncation limit from android/log.h, including the
// terminating '\0'.
const logcatLineMax = 1023

// logcat writes encoded log entries to the Android system log.
type logcat struct {
	mu  sync.Mutex
	tag *C.char
	// The buffer passed to C, including the terminating '\0'.
	buf [logcatLineMax + 1]byte
}

func defaultLogger() *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	// Android's logcat already includes timestamps.
	enc.TimeKey = ""
	w := &logcat{tag: C.CString("gearvrf")}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, zap.InfoLevel)
	return zap.New(core)
}

func (l *logcat) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(p)
	for len(p) > 0 {
		line := p
		if i := bytes.IndexByte(p, '\n'); i >= 0 {
			line, p = p[:i], p[i+1:]
		} else {
			p = nil
		}
		if len(line) > logcatLineMax {
			line = line[:logcatLineMax]
		}
		if len(line) == 0 {
			continue
		}
		copy(l.buf[:], line)
		l.buf[len(line)] = 0
		C.__android_log_write(C.ANDROID_LOG_INFO, l.tag, (*C.char)(unsafe.Pointer(&l.buf[0])))
	}
	return n, nil
}

func (l *logcat) Sync() error {
	return nil
}
