package kernel

import (
	"testing"
	"time"
)

// Two compute-bound processes must share the CPU under timer rotation:
// with strict round-robin each is current on half the ticks.
func TestRoundRobinPreemption(t *testing.T) {
	k := New(Config{})
	entry := func(th *Thread) {
		var sink uint64
		for {
			for i := 0; i < 1000; i++ {
				sink += uint64(i)
			}
			th.Checkpoint()
		}
	}
	k.Spawn(entry, DefaultPriority)
	k.Spawn(entry, DefaultPriority)
	defer runKernel(t, k)()

	waitFor(t, "first dispatch", func() bool { return k.CurrentPID() != 0 })

	const ticks = 100
	seen := map[int]int{}
	for i := 0; i < ticks; i++ {
		tick(t, k)
		seen[k.CurrentPID()]++
	}

	for pid := 1; pid <= 2; pid++ {
		if seen[pid] < 40 {
			t.Fatalf("pid %d current on %d of %d ticks, want >= 40 (seen %v)",
				pid, seen[pid], ticks, seen)
		}
	}
}

// A tick while the only process sleeps is handled by the idle loop, and
// the machine stays idle until the wakeup tick.
func TestIdleWhenAllSleep(t *testing.T) {
	k := New(Config{})
	woke := make(chan uint64, 1)
	k.Spawn(func(th *Thread) {
		th.Sleep(30)
		woke <- th.Ticks()
	}, DefaultPriority)
	defer runKernel(t, k)()

	waitFor(t, "process to block", func() bool { return k.CurrentPID() == 0 })

	for i := 0; i < 2; i++ {
		tick(t, k)
		if pid := k.CurrentPID(); pid != 0 {
			t.Fatalf("CurrentPID() = %d at tick %d, want 0 (idle)", pid, k.Ticks())
		}
	}
	tick(t, k) // tick 3 reaches the wakeup

	select {
	case at := <-woke:
		if at < 3 {
			t.Fatalf("woke at tick %d, want >= 3", at)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for wakeup")
	}
}

// Exiting mid-run hands the CPU to the surviving process.
func TestExitDispatchesSuccessor(t *testing.T) {
	k := New(Config{})
	done := make(chan int, 2)
	k.Spawn(func(th *Thread) {
		done <- th.PID()
		th.Exit()
	}, DefaultPriority)
	k.Spawn(func(th *Thread) {
		done <- th.PID()
	}, DefaultPriority)
	defer runKernel(t, k)()

	for i, want := range []int{1, 2} {
		select {
		case pid := <-done:
			if pid != want {
				t.Fatalf("completion #%d = pid %d, want %d", i, pid, want)
			}
		case <-time.After(testTimeout):
			t.Fatal("timed out waiting for processes")
		}
	}

	waitFor(t, "both exited", func() bool {
		a, _ := statusOf(k, 1)
		b, _ := statusOf(k, 2)
		return a == StatusExited && b == StatusExited
	})
}
