package kernel

import (
	"sync"
	"sync/atomic"
)

// PanicInfo contains details about a recovered process panic.
type PanicInfo struct {
	PID   int
	Value any
	Stack []byte
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether the kernel is in panic mode.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler.
//
// The handler is invoked at most once (on the first panic). It must not
// panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func triggerPanic(info PanicInfo) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		info.Stack = captureStack()
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}

// recoverExit converts a panic in process code into an exit: the kernel
// enters panic mode, the handler fires, and - if the handler returns - the
// process is retired so the rest of the machine keeps running. Panics with
// the gate held are kernel bugs and are not recoverable.
func (k *Kernel) recoverExit(t *Thread) {
	r := recover()
	if r == nil {
		return
	}
	if k.gate.depth > 0 {
		panic(r)
	}
	triggerPanic(PanicInfo{PID: t.p.pid, Value: r})
	k.logf("kernel: process %d panicked: %v", t.p.pid, r)
	t.p.nested = 0
	k.exitCurrent(t.p)
}
