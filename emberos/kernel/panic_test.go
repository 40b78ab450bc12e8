package kernel

import (
	"testing"
	"time"
)

// A panic in process code retires the process, flips the kernel into panic
// mode, and invokes the handler once; the rest of the machine keeps going.
// Panic mode is process-wide and sticky, so this is the only test that
// exercises it.
func TestProcessPanicEntersPanicMode(t *testing.T) {
	handled := make(chan PanicInfo, 1)
	SetPanicHandler(func(info PanicInfo) {
		handled <- info
	})

	k := New(Config{})
	k.Spawn(func(th *Thread) {
		panic("boom")
	}, DefaultPriority)
	survivor := make(chan struct{}, 1)
	k.Spawn(func(th *Thread) {
		survivor <- struct{}{}
	}, DefaultPriority)
	defer runKernel(t, k)()

	select {
	case info := <-handled:
		if info.PID != 1 {
			t.Fatalf("PanicInfo.PID = %d, want 1", info.PID)
		}
		if info.Value != "boom" {
			t.Fatalf("PanicInfo.Value = %v, want boom", info.Value)
		}
		if len(info.Stack) == 0 {
			t.Fatal("PanicInfo.Stack is empty")
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for panic handler")
	}

	if !InPanicMode() {
		t.Fatal("InPanicMode() = false after process panic")
	}

	select {
	case <-survivor:
	case <-time.After(testTimeout):
		t.Fatal("timed out: machine stalled after process panic")
	}

	waitFor(t, "panicking process to be retired", func() bool {
		st, ok := statusOf(k, 1)
		return ok && st == StatusExited
	})
}
