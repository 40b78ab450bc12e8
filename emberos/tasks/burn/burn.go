// Package burn provides a compute-bound process: a busy loop that passes
// through a checkpoint each round so the timer can preempt it.
package burn

import "ember/emberos/kernel"

// New returns a burn process entry.
func New() func(*kernel.Thread) {
	return func(t *kernel.Thread) {
		var sink uint64
		for {
			for i := 0; i < 100_000; i++ {
				sink += uint64(i)
			}
			t.Checkpoint()
		}
	}
}
