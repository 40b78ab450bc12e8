// Package app assembles the machine: HAL devices on the outside, the
// kernel and its processes on the inside.
package app

import (
	"context"

	"ember/emberos/console"
	"ember/emberos/kernel"
	"ember/emberos/shell"
	"ember/emberos/tasks/clock"
	"ember/emberos/tasks/pingpong"
	"ember/hal"
)

type system struct {
	k *kernel.Kernel
}

// Config selects optional workloads.
type Config struct {
	Demo bool
}

// New initializes and starts the OS with default config.
func New(h hal.HAL) func() error {
	_ = newSystem(h, Config{})
	return func() error { return nil }
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	installPanicHandler(h)

	k := kernel.New(kernel.Config{Logger: h.Logger()})

	con := console.New(h.Display())
	k.Spawn(con.Run, kernel.MaxPriority)
	k.Spawn(shell.New(con, h.Input(), h.Logger()).Run, kernel.DefaultPriority)
	k.Spawn(clock.New(con, 10), kernel.DefaultPriority)

	if cfg.Demo {
		if ping, pong, err := pingpong.New(con); err == nil {
			k.Spawn(ping, kernel.DefaultPriority)
			k.Spawn(pong, kernel.DefaultPriority)
		}
	}

	// The HAL timer drives the timer IRQ line; every 100th tick toggles the
	// heartbeat LED.
	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				led := h.LED()
				on := false
				for seq := range ch {
					k.RaiseTimerIRQ()
					if led != nil && seq%100 == 0 {
						if on {
							led.Low()
						} else {
							led.High()
						}
						on = !on
					}
				}
			}()
		}
	}

	go k.Run(context.Background())

	return &system{k: k}
}
