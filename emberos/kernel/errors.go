package kernel

import "errors"

var (
	// ErrTableFull reports that the process table has no free slot.
	ErrTableFull = errors.New("kernel: process table full")

	// ErrNegativeValue reports a semaphore initialized below zero.
	ErrNegativeValue = errors.New("kernel: negative semaphore value")

	// ErrBadCount reports a barrier initialized with fewer than one party.
	ErrBadCount = errors.New("kernel: barrier needs at least one party")
)
