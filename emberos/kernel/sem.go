package kernel

// Semaphore is a counting semaphore. Up with waiters present hands the
// permit directly to the head waiter without touching the count, so the
// count plus the number of in-flight Down calls always balances the Up
// calls and the count never overcounts.
type Semaphore struct {
	value   int
	waiters fifo
}

// NewSemaphore returns a semaphore with the given initial count.
// Negative values are rejected.
func NewSemaphore(value int) (*Semaphore, error) {
	if value < 0 {
		return nil, ErrNegativeValue
	}
	return &Semaphore{value: value}, nil
}

// Down takes a permit, blocking while the count is zero.
func (s *Semaphore) Down(t *Thread) {
	k := t.k
	k.enterSyscall(t.p)
	if s.value > 0 {
		s.value--
		k.exitSyscall(t.p)
		return
	}
	t.p.status = StatusWaiting
	s.waiters.put(t.p)
	k.schedulerEntry()
	k.blockSyscall(t.p)
	// The matching Up handed its permit to us directly.
	k.returnSyscall(t.p)
}

// Up releases a permit: the head waiter gets it directly, or the count
// goes up.
func (s *Semaphore) Up(t *Thread) {
	k := t.k
	k.enterSyscall(t.p)
	if w := s.waiters.get(); w != nil {
		k.schedulerAdd(w)
	} else {
		s.value++
	}
	k.exitSyscall(t.p)
}

// Value reports the current count.
func (s *Semaphore) Value(t *Thread) int {
	k := t.k
	k.enterSyscall(t.p)
	v := s.value
	k.exitSyscall(t.p)
	return v
}
