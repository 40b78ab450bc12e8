// Package console is the shared text console of the machine: writers
// append chunks under a kernel lock, and a dedicated process drains them
// into a tinyterm terminal on the HAL framebuffer.
package console

import (
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"ember/emberos/kernel"
	"ember/hal"
)

const maxPending = 256

// Console buffers console output between writer processes and the render
// process. The buffer is guarded by a kernel lock; the condition variable
// wakes the render process when output arrives.
type Console struct {
	lock *kernel.Lock
	more *kernel.Cond

	pending []string
	dropped int
	clear   bool

	disp hal.Display
}

// New returns a console rendering to disp.
func New(disp hal.Display) *Console {
	return &Console{
		lock: kernel.NewLock(),
		more: kernel.NewCond(),
		disp: disp,
	}
}

// Write appends s to the console. Chunks are rendered in arrival order;
// when the buffer is full the chunk is dropped and counted.
func (c *Console) Write(t *kernel.Thread, s string) {
	c.lock.Acquire(t)
	if len(c.pending) >= maxPending {
		c.dropped++
	} else {
		c.pending = append(c.pending, s)
	}
	c.more.Signal(t)
	c.lock.Release(t)
}

// WriteLine appends s plus a newline.
func (c *Console) WriteLine(t *kernel.Thread, s string) {
	c.Write(t, s+"\r\n")
}

// Clear resets the terminal before the next batch renders.
func (c *Console) Clear(t *kernel.Thread) {
	c.lock.Acquire(t)
	c.clear = true
	c.pending = c.pending[:0]
	c.more.Signal(t)
	c.lock.Release(t)
}

// Run is the render process: it blocks on the condition variable until
// writers queue output, then drains the batch into the terminal and
// presents the frame. Spawn it as its own kernel process.
func (c *Console) Run(t *kernel.Thread) {
	if c.disp == nil {
		t.Exit()
	}
	fb := c.disp.Framebuffer()
	if fb == nil {
		t.Exit()
	}

	d := newFBDisplay(fb)
	term := resetTerminal(d, fb)

	for {
		c.lock.Acquire(t)
		for len(c.pending) == 0 && !c.clear {
			c.more.Wait(t, c.lock)
		}
		batch := append([]string(nil), c.pending...)
		c.pending = c.pending[:0]
		doClear := c.clear
		c.clear = false
		c.lock.Release(t)

		if doClear {
			term = resetTerminal(d, fb)
		}
		for _, s := range batch {
			term.Write([]byte(s))
		}
		fb.Present()

		// Pace the panel: batch whatever arrives during one tick.
		t.Sleep(hal.TickMS)
	}
}

func resetTerminal(d *fbDisplay, fb hal.Framebuffer) *tinyterm.Terminal {
	term := tinyterm.NewTerminal(d)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	fb.ClearRGB(0, 0, 0)
	fb.Present()
	return term
}
