package kernel

import "testing"

// White-box: a tick taken while the current process is inside a system
// call must run the wakeup scan but not rotate the CPU.
func TestTimerInterruptInsideSyscallWakesOnly(t *testing.T) {
	k := New(Config{})

	k.gate.mu.Lock()
	running := k.allocPCB()
	running.status = StatusRunning
	running.nested = 1
	k.current = running

	sleeper := k.allocPCB()
	sleeper.status = StatusSleeping
	sleeper.wakeup = 1
	k.sleeping.put(sleeper)
	k.gate.mu.Unlock()

	k.irq.raise()
	k.timerInterrupt(running)

	if got := k.Ticks(); got != 1 {
		t.Fatalf("Ticks() = %d, want 1", got)
	}
	if k.current != running {
		t.Fatalf("current = %v, want the syscalling process", k.current)
	}
	if running.status != StatusRunning {
		t.Fatalf("running status = %s, want running", running.status)
	}
	if sleeper.status != StatusReady {
		t.Fatalf("sleeper status = %s, want ready", sleeper.status)
	}
	if got := k.ready.size(); got != 1 {
		t.Fatalf("ready size = %d, want 1 (woken sleeper only)", got)
	}
}

// White-box: a preemptable tick with an otherwise empty ready queue rotates
// the current process back onto the CPU without a context switch.
func TestTimerInterruptAloneKeepsCurrent(t *testing.T) {
	k := New(Config{})

	k.gate.mu.Lock()
	running := k.allocPCB()
	running.status = StatusRunning
	running.nested = 0
	k.current = running
	k.gate.mu.Unlock()

	k.irq.raise()
	k.timerInterrupt(running)

	if got := k.Ticks(); got != 1 {
		t.Fatalf("Ticks() = %d, want 1", got)
	}
	if k.current != running {
		t.Fatal("current changed, want same process redispatched")
	}
	if running.status != StatusRunning {
		t.Fatalf("status = %s, want running", running.status)
	}
	if !k.ready.empty() {
		t.Fatalf("ready size = %d, want 0", k.ready.size())
	}
	if k.irq.pending() {
		t.Fatal("irq still pending after EOI")
	}
}

// Ticks are counted once per serviced edge and never go backwards, even
// with no processes at all.
func TestTicksMonotonicWhileIdle(t *testing.T) {
	k := New(Config{})
	defer runKernel(t, k)()

	var last uint64
	for i := 0; i < 10; i++ {
		tick(t, k)
		now := k.Ticks()
		if now <= last {
			t.Fatalf("Ticks() = %d after %d, want strictly increasing", now, last)
		}
		last = now
	}
	if last != 10 {
		t.Fatalf("Ticks() = %d after 10 edges, want 10", last)
	}
}
