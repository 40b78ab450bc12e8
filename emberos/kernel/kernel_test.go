package kernel

import (
	"context"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

func runKernel(t *testing.T, k *Kernel) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go k.Run(ctx)
	return cancel
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// tick raises one timer edge and waits for the machine to service it.
func tick(t *testing.T, k *Kernel) {
	t.Helper()
	before := k.Ticks()
	k.RaiseTimerIRQ()
	waitFor(t, "tick", func() bool { return k.Ticks() > before })
}

func statusOf(k *Kernel, pid int) (Status, bool) {
	p, ok := k.Proc(pid)
	if !ok {
		return StatusFree, false
	}
	return p.Status, true
}

func TestSpawnAssignsMonotonicPIDs(t *testing.T) {
	k := New(Config{})
	for i := 0; i < 3; i++ {
		pid, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority)
		if err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
		if pid != i+1 {
			t.Fatalf("Spawn() pid = %d, want %d", pid, i+1)
		}
	}
}

func TestSpawnTableFull(t *testing.T) {
	k := New(Config{})
	for i := 0; i < MaxProcs; i++ {
		if _, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority); err != nil {
			t.Fatalf("Spawn() error = %v at slot %d", err, i)
		}
	}
	if _, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority); err != ErrTableFull {
		t.Fatalf("Spawn() error = %v, want ErrTableFull", err)
	}
}

func TestExitKeepsPCBByDefault(t *testing.T) {
	k := New(Config{})
	pid, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	defer runKernel(t, k)()

	waitFor(t, "process exit", func() bool {
		st, ok := statusOf(k, pid)
		return ok && st == StatusExited
	})
}

func TestFreeOnExitReclaimsSlot(t *testing.T) {
	k := New(Config{FreeOnExit: true})
	pid, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	defer runKernel(t, k)()

	waitFor(t, "slot reclaim", func() bool {
		_, ok := statusOf(k, pid)
		return !ok
	})

	// The freed slot is reusable and pids stay monotonic.
	pid2, err := k.Spawn(func(t *Thread) { t.Exit() }, DefaultPriority)
	if err != nil {
		t.Fatalf("Spawn() error = %v after reclaim", err)
	}
	if pid2 <= pid {
		t.Fatalf("Spawn() pid = %d after %d, want greater", pid2, pid)
	}
}

func TestPriorityClamped(t *testing.T) {
	k := New(Config{})
	got := make(chan [3]int, 1)
	k.Spawn(func(t *Thread) {
		initial := t.Priority()
		t.SetPriority(99)
		high := t.Priority()
		t.SetPriority(-5)
		low := t.Priority()
		got <- [3]int{initial, high, low}
	}, DefaultPriority)
	defer runKernel(t, k)()

	select {
	case v := <-got:
		if v[0] != DefaultPriority {
			t.Fatalf("Priority() = %d, want %d", v[0], DefaultPriority)
		}
		if v[1] != MaxPriority {
			t.Fatalf("SetPriority(99) clamped to %d, want %d", v[1], MaxPriority)
		}
		if v[2] != MinPriority {
			t.Fatalf("SetPriority(-5) clamped to %d, want %d", v[2], MinPriority)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for priority results")
	}
}

func TestYieldAloneKeepsRunning(t *testing.T) {
	k := New(Config{})
	done := make(chan struct{}, 1)
	k.Spawn(func(t *Thread) {
		for i := 0; i < 3; i++ {
			t.Yield()
		}
		done <- struct{}{}
	}, DefaultPriority)
	defer runKernel(t, k)()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("timed out: yield with empty ready queue did not return")
	}
}

func TestYieldAlternates(t *testing.T) {
	k := New(Config{})
	const rounds = 4
	order := make(chan int, 2*rounds)
	entry := func(t *Thread) {
		for i := 0; i < rounds; i++ {
			order <- t.PID()
			t.Yield()
		}
	}
	k.Spawn(entry, DefaultPriority)
	k.Spawn(entry, DefaultPriority)
	defer runKernel(t, k)()

	var got []int
	for i := 0; i < 2*rounds; i++ {
		select {
		case pid := <-order:
			got = append(got, pid)
		case <-time.After(testTimeout):
			t.Fatalf("timed out after %d entries", len(got))
		}
	}
	for i, pid := range got {
		want := i%2 + 1
		if pid != want {
			t.Fatalf("dispatch order[%d] = pid %d, want %d (got %v)", i, pid, want, got)
		}
	}
}

func TestSpawnFromThread(t *testing.T) {
	k := New(Config{})
	childRan := make(chan int, 1)
	spawnErr := make(chan error, 1)
	k.Spawn(func(th *Thread) {
		_, err := th.Spawn(func(c *Thread) {
			childRan <- c.PID()
		}, MinPriority)
		spawnErr <- err
	}, DefaultPriority)
	defer runKernel(t, k)()

	if err := <-spawnErr; err != nil {
		t.Fatalf("Thread.Spawn() error = %v", err)
	}

	select {
	case pid := <-childRan:
		if pid != 2 {
			t.Fatalf("child pid = %d, want 2", pid)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for child process")
	}
}
