// Package clock provides a process that prints uptime to the console.
package clock

import (
	"fmt"

	"ember/emberos/console"
	"ember/emberos/kernel"
)

// New returns a clock process entry printing every interval seconds.
func New(con *console.Console, interval uint32) func(*kernel.Thread) {
	if interval == 0 {
		interval = 10
	}
	return func(t *kernel.Thread) {
		for {
			t.Sleep(interval * 1000)
			ticks := t.Ticks()
			con.WriteLine(t, fmt.Sprintf("clock: up %ds (tick %d)",
				ticks*kernel.MSPerTick/1000, ticks))
		}
	}
}
