package kernel

import "runtime"

// Thread is a process's handle to the system-call surface. It is only valid
// on the goroutine the kernel spawned for that process.
type Thread struct {
	k *Kernel
	p *PCB
}

// PID returns the caller's process identifier.
func (t *Thread) PID() int { return t.p.pid }

// enterSyscall opens a system-call frame: the per-process nesting depth
// goes up (the preemption policy treats the process as non-preemptable
// until the frame closes) and the critical-section gate is entered.
func (k *Kernel) enterSyscall(p *PCB) {
	p.nested++
	k.gate.enter()
}

// exitSyscall closes a non-blocking system-call frame and services any
// timer interrupt that fired while the gate was closed.
func (k *Kernel) exitSyscall(p *PCB) {
	k.gate.leave()
	p.nested--
	k.servicePending(p)
}

// blockSyscall completes a system call that moved the current process out
// of RUNNING: it releases the gate, hands the CPU to the new current, and
// parks until redispatch. Caller holds the gate and has already called
// schedulerEntry.
func (k *Kernel) blockSyscall(p *PCB) {
	next := k.current
	k.gate.leave()
	k.park(p, next)
	k.servicePending(p)
}

// returnSyscall closes the frame of a syscall that blocked and resumed.
func (k *Kernel) returnSyscall(p *PCB) {
	p.nested--
	k.servicePending(p)
}

// Checkpoint is an instruction boundary: a pending timer interrupt is
// serviced here. Compute-bound code must pass through checkpoints (or make
// system calls) for preemption and the tick counter to make progress, the
// same way the hardware timer can only fire between instructions.
func (t *Thread) Checkpoint() {
	t.k.servicePending(t.p)
}

// Yield reschedules without blocking: the caller rotates to the ready-queue
// tail and the head is dispatched. With no other runnable process the
// caller keeps the CPU.
func (t *Thread) Yield() {
	k := t.k
	k.enterSyscall(t.p)
	saved := t.p.nested
	k.putCurrentRunning()
	k.schedulerEntry()
	if k.current == t.p {
		t.p.nested = saved
		k.exitSyscall(t.p)
		return
	}
	k.blockSyscall(t.p)
	k.returnSyscall(t.p)
}

// Exit terminates the caller and dispatches the next ready process.
// It does not return.
func (t *Thread) Exit() {
	t.k.exitCurrent(t.p)
	runtime.Goexit()
}

// Ticks returns the tick counter.
func (t *Thread) Ticks() uint64 {
	k := t.k
	k.enterSyscall(t.p)
	v := k.ticks
	k.exitSyscall(t.p)
	return v
}

// Priority returns the caller's priority.
func (t *Thread) Priority() int {
	k := t.k
	k.enterSyscall(t.p)
	v := t.p.priority
	k.exitSyscall(t.p)
	return v
}

// SetPriority sets the caller's priority, silently clamped to
// [MinPriority, MaxPriority]. Priorities are advisory: dispatch stays
// round-robin.
func (t *Thread) SetPriority(pri int) {
	k := t.k
	k.enterSyscall(t.p)
	t.p.priority = clampPriority(pri)
	k.exitSyscall(t.p)
}

// Spawn creates a new process entering fn with the given priority.
func (t *Thread) Spawn(fn func(*Thread), pri int) (int, error) {
	k := t.k
	k.enterSyscall(t.p)
	p, err := k.spawnLocked(fn, pri)
	pid := 0
	if p != nil {
		pid = p.pid
	}
	k.exitSyscall(t.p)
	return pid, err
}

// Procs snapshots the live process table.
func (t *Thread) Procs() []ProcInfo {
	k := t.k
	k.enterSyscall(t.p)
	out := k.procsLocked()
	k.exitSyscall(t.p)
	return out
}
