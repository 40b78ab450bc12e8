package kernel

import "sync"

// gate is the kernel critical-section gate: a nestable interrupt-disable
// counter over a mutex. The 0->1 transition locks the mutex ("cli") and the
// 1->0 transition unlocks it ("sti"). Only the activation holding the CPU
// token nests, so depth needs no atomicity of its own; the mutex is what
// gives external observers (Kernel.Ticks, Kernel.Procs) consistent reads.
type gate struct {
	mu    sync.Mutex
	depth int
}

func (g *gate) enter() {
	if g.depth == 0 {
		g.mu.Lock()
	}
	g.depth++
}

func (g *gate) leave() {
	if g.depth <= 0 {
		panic("kernel: unbalanced critical-section leave")
	}
	g.depth--
	if g.depth == 0 {
		g.mu.Unlock()
	}
}
