// Package pingpong provides two processes handing a token back and forth
// through a pair of semaphores, demonstrating the direct-handoff discipline.
package pingpong

import (
	"fmt"

	"ember/emberos/console"
	"ember/emberos/kernel"
)

const reportEvery = 500

// New returns the ping and pong process entries. The token starts on the
// ping side.
func New(con *console.Console) (ping, pong func(*kernel.Thread), err error) {
	a, err := kernel.NewSemaphore(1)
	if err != nil {
		return nil, nil, err
	}
	b, err := kernel.NewSemaphore(0)
	if err != nil {
		return nil, nil, err
	}

	ping = func(t *kernel.Thread) {
		for round := 1; ; round++ {
			a.Down(t)
			if round%reportEvery == 0 {
				con.WriteLine(t, fmt.Sprintf("pingpong: %d rounds", round))
			}
			b.Up(t)
		}
	}
	pong = func(t *kernel.Thread) {
		for {
			b.Down(t)
			a.Up(t)
		}
	}
	return ping, pong, nil
}
