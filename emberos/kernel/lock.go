package kernel

// Lock is a blocking kernel mutex. Release hands the lock directly to the
// longest-waiting acquirer, so ownership is FIFO and a released lock with
// waiters is never observably unlocked.
type Lock struct {
	locked  bool
	owner   *PCB
	waiters fifo
}

// NewLock returns an unlocked mutex.
func NewLock() *Lock { return &Lock{} }

// Acquire blocks until the caller owns the lock.
func (l *Lock) Acquire(t *Thread) {
	k := t.k
	k.enterSyscall(t.p)
	if !l.locked {
		l.locked = true
		l.owner = t.p
		k.exitSyscall(t.p)
		return
	}
	t.p.status = StatusWaiting
	l.waiters.put(t.p)
	k.schedulerEntry()
	k.blockSyscall(t.p)
	// Release transferred ownership before waking us.
	k.returnSyscall(t.p)
}

// Release unlocks, or hands the lock to the head waiter. Releasing a lock
// the caller does not own is a kernel bug.
func (l *Lock) Release(t *Thread) {
	k := t.k
	k.enterSyscall(t.p)
	if l.owner != t.p {
		k.gate.leave()
		t.p.nested--
		panic("kernel: lock released by non-owner")
	}
	l.handoffLocked(k)
	k.exitSyscall(t.p)
}

// handoffLocked passes ownership to the next waiter or unlocks.
// Caller holds the gate.
func (l *Lock) handoffLocked(k *Kernel) {
	if w := l.waiters.get(); w != nil {
		l.owner = w
		k.schedulerAdd(w)
		return
	}
	l.locked = false
	l.owner = nil
}

// Held reports whether the caller owns the lock.
func (l *Lock) Held(t *Thread) bool {
	k := t.k
	k.enterSyscall(t.p)
	held := l.owner == t.p
	k.exitSyscall(t.p)
	return held
}
