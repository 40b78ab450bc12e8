package kernel

import (
	"context"
	"fmt"
)

const (
	// MaxProcs is the capacity of the process table.
	MaxProcs = 64

	// MSPerTick is the timer period in milliseconds.
	MSPerTick = 10
)

// Logger accepts newline-delimited log lines. hal.Logger satisfies it.
type Logger interface {
	WriteLineString(s string)
}

// Config carries kernel construction options.
type Config struct {
	// FreeOnExit reclaims a PCB as soon as its process exits. The default
	// keeps exited PCBs in the table so they stay visible to Procs.
	FreeOnExit bool

	// Logger receives kernel log lines. Nil discards them.
	Logger Logger
}

// Kernel is the machine-wide kernel state: tick counter, critical-section
// gate, ready and sleeping queues, current-running slot, IRQ line, and the
// process table. Sync primitives and syscalls reach it through the Thread
// they are called with. None of this state lives in package-level
// variables; the only process-wide state is panic mode and its handler
// (panic.go).
type Kernel struct {
	gate gate

	// ticks counts timer interrupts since boot. It is written only by the
	// timer interrupt body and read only with the gate held; on this
	// uniprocessor model that makes the 64-bit access safe without atomics.
	ticks uint64

	irq irqLine

	ready    fifo
	sleeping fifo
	current  *PCB

	table   [MaxProcs]PCB
	nextPID int

	idle chan struct{} // dispatch slot of the idle loop

	cfg Config
}

// New creates a kernel instance. Processes registered with Spawn start
// running once Run is called.
func New(cfg Config) *Kernel {
	k := &Kernel{nextPID: 1, cfg: cfg}
	k.irq.init()
	k.idle = make(chan struct{}, 1)
	for i := range k.table {
		k.table[i].dispatch = make(chan struct{}, 1)
	}
	return k
}

func (k *Kernel) logf(format string, args ...any) {
	if k.cfg.Logger == nil {
		return
	}
	k.cfg.Logger.WriteLineString(fmt.Sprintf(format, args...))
}

// Spawn registers a process entering fn with the given priority (clamped).
// It is the boot-time and embedder-side allocator; process code uses
// Thread.Spawn instead.
func (k *Kernel) Spawn(fn func(*Thread), pri int) (int, error) {
	k.gate.mu.Lock()
	p, err := k.spawnLocked(fn, pri)
	k.gate.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return p.pid, nil
}

// spawnLocked allocates a PCB, queues it ready, and starts its trampoline
// goroutine. Caller holds the gate.
func (k *Kernel) spawnLocked(fn func(*Thread), pri int) (*PCB, error) {
	p := k.allocPCB()
	if p == nil {
		return nil, ErrTableFull
	}
	p.priority = clampPriority(pri)
	p.entry = fn
	k.ready.put(p)
	go k.trampoline(p)
	return p, nil
}

// trampoline is the first-dispatch path: the goroutine parks on the PCB's
// dispatch slot until scheduler entry selects it, then enters user code.
// Falling off the end of the entry function is an implicit Exit.
func (k *Kernel) trampoline(p *PCB) {
	<-p.dispatch
	t := &Thread{k: k, p: p}
	defer k.recoverExit(t)
	p.entry(t)
	t.Exit()
}

// Run dispatches the first ready process and then becomes the idle loop:
// whenever nothing is runnable the CPU token returns here and the loop
// waits for timer interrupts to drive the wakeup scan. Run returns when ctx
// is done; the machine is abandoned at that point, not unwound.
func (k *Kernel) Run(ctx context.Context) error {
	k.logf("kernel: boot, %d slots, %dms tick", MaxProcs, MSPerTick)

	k.gate.enter()
	k.schedulerEntry()
	next := k.current
	k.gate.leave()

	for {
		if next != nil {
			next.dispatch <- struct{}{}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-k.idle:
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.irq.wake:
		}

		next = nil
		if k.irq.pending() {
			next = k.timerInterruptIdle()
		}
	}
}

// handoff passes the CPU token to the dispatched PCB, or back to the idle
// loop when nothing is runnable. The caller must not touch kernel state
// afterwards.
func (k *Kernel) handoff(next *PCB) {
	if next != nil {
		next.dispatch <- struct{}{}
		return
	}
	k.idle <- struct{}{}
}

// park gives up the CPU and waits to be dispatched again. The caller has
// already re-selected current and left the gate. The saved nesting depth is
// restored on resume: a process wakes up inside the syscall that blocked it.
func (k *Kernel) park(p *PCB, next *PCB) {
	saved := p.nested
	k.handoff(next)
	<-p.dispatch
	p.nested = saved
}

// Ticks returns the tick counter. Safe from any goroutine: the read takes
// the gate, mirroring the rule that readers of the 64-bit counter run with
// interrupts disabled. Process code uses Thread.Ticks instead.
func (k *Kernel) Ticks() uint64 {
	k.gate.mu.Lock()
	v := k.ticks
	k.gate.mu.Unlock()
	return v
}

// CurrentPID reports the pid of the running process, 0 when the CPU is idle.
func (k *Kernel) CurrentPID() int {
	k.gate.mu.Lock()
	pid := 0
	if k.current != nil {
		pid = k.current.pid
	}
	k.gate.mu.Unlock()
	return pid
}

// ProcInfo is a point-in-time view of one live process table slot.
type ProcInfo struct {
	PID      int
	Status   Status
	Priority int
	Wakeup   uint64
}

// Procs snapshots the live process table. Safe from any goroutine; process
// code uses Thread.Procs instead.
func (k *Kernel) Procs() []ProcInfo {
	k.gate.mu.Lock()
	out := k.procsLocked()
	k.gate.mu.Unlock()
	return out
}

// Proc looks up a live process by pid.
func (k *Kernel) Proc(pid int) (ProcInfo, bool) {
	if pid <= 0 {
		return ProcInfo{}, false
	}
	k.gate.mu.Lock()
	defer k.gate.mu.Unlock()
	for i := range k.table {
		p := &k.table[i]
		if p.pid == pid && p.status != StatusFree {
			return ProcInfo{
				PID:      p.pid,
				Status:   p.status,
				Priority: p.priority,
				Wakeup:   p.wakeup,
			}, true
		}
	}
	return ProcInfo{}, false
}

// procsLocked collects the non-free slots. Caller holds the gate.
func (k *Kernel) procsLocked() []ProcInfo {
	out := make([]ProcInfo, 0, MaxProcs)
	for i := range k.table {
		p := &k.table[i]
		if p.status == StatusFree {
			continue
		}
		out = append(out, ProcInfo{
			PID:      p.pid,
			Status:   p.status,
			Priority: p.priority,
			Wakeup:   p.wakeup,
		})
	}
	return out
}
