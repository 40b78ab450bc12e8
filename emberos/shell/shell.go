// Package shell is the interactive console shell, running as an ordinary
// kernel process. It polls the HAL keyboard between naps so it never holds
// the CPU while idle.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"ember/emberos/console"
	"ember/emberos/kernel"
	"ember/emberos/tasks/burn"
	"ember/hal"
	"ember/internal/buildinfo"
)

const prompt = "ember> "

// Shell wires keyboard input to the builtin commands.
type Shell struct {
	con *console.Console
	in  hal.Input
	log hal.Logger

	line []rune
}

// New returns a shell reading from in and writing to con.
func New(con *console.Console, in hal.Input, log hal.Logger) *Shell {
	return &Shell{con: con, in: in, log: log}
}

// Run is the shell process entry.
func (s *Shell) Run(t *kernel.Thread) {
	s.con.WriteLine(t, "EmberOS "+buildinfo.Short())
	s.con.WriteLine(t, "type 'help' for commands")
	s.con.Write(t, prompt)

	var events <-chan hal.KeyEvent
	if s.in != nil {
		if kbd := s.in.Keyboard(); kbd != nil {
			events = kbd.Events()
		}
	}
	if events == nil {
		// No input device: nothing to do but stay out of the way.
		for {
			t.Sleep(1000)
		}
	}

	for {
		select {
		case ev := <-events:
			s.handleKey(t, ev)
		default:
			t.Sleep(2 * hal.TickMS)
		}
	}
}

func (s *Shell) handleKey(t *kernel.Thread, ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	switch {
	case ev.Code == hal.KeyEnter:
		s.con.Write(t, "\r\n")
		line := strings.TrimSpace(string(s.line))
		s.line = s.line[:0]
		if line != "" {
			s.execute(t, line)
		}
		s.con.Write(t, prompt)
	case ev.Code == hal.KeyBackspace:
		if len(s.line) > 0 {
			s.line = s.line[:len(s.line)-1]
			s.con.Write(t, "\b \b")
		}
	case ev.Rune != 0:
		s.line = append(s.line, ev.Rune)
		s.con.Write(t, string(ev.Rune))
	}
}

func (s *Shell) execute(t *kernel.Thread, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		for _, c := range builtinCommandHelp {
			s.con.WriteLine(t, fmt.Sprintf("  %-8s %s", c.Name, c.Desc))
		}
	case "clear":
		s.con.Clear(t)
	case "echo":
		s.con.WriteLine(t, strings.Join(args, " "))
	case "ps":
		s.ps(t)
	case "ticks":
		s.con.WriteLine(t, fmt.Sprintf("%d", t.Ticks()))
	case "uptime":
		ticks := t.Ticks()
		s.con.WriteLine(t, fmt.Sprintf("up %ds (%d ticks)", ticks*kernel.MSPerTick/1000, ticks))
	case "sleep":
		s.sleep(t, args)
	case "pri":
		s.pri(t, args)
	case "spawn":
		s.spawn(t, args)
	case "log":
		if s.log != nil {
			s.log.WriteLineString(strings.Join(args, " "))
		}
	case "version":
		s.con.WriteLine(t, buildinfo.Short())
	case "uname":
		if len(args) > 0 && args[0] == "-a" {
			s.con.WriteLine(t, fmt.Sprintf("EmberOS %s (%s, %s)",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date))
			return
		}
		s.con.WriteLine(t, "EmberOS")
	case "panic":
		panic("shell: requested panic")
	default:
		s.con.WriteLine(t, "unknown command: "+cmd)
	}
}

func (s *Shell) ps(t *kernel.Thread) {
	s.con.WriteLine(t, "  pid status    pri")
	for _, p := range t.Procs() {
		s.con.WriteLine(t, fmt.Sprintf("%5d %-9s %3d", p.PID, p.Status, p.Priority))
	}
}

func (s *Shell) sleep(t *kernel.Thread, args []string) {
	if len(args) != 1 {
		s.con.WriteLine(t, "usage: sleep <ms>")
		return
	}
	ms, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		s.con.WriteLine(t, "sleep: bad duration")
		return
	}
	before := t.Ticks()
	t.Sleep(uint32(ms))
	s.con.WriteLine(t, fmt.Sprintf("slept %dms (tick %d -> %d)", ms, before, t.Ticks()))
}

func (s *Shell) pri(t *kernel.Thread, args []string) {
	if len(args) == 0 {
		s.con.WriteLine(t, fmt.Sprintf("%d", t.Priority()))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		s.con.WriteLine(t, "pri: bad priority")
		return
	}
	t.SetPriority(n)
	s.con.WriteLine(t, fmt.Sprintf("%d", t.Priority()))
}

func (s *Shell) spawn(t *kernel.Thread, args []string) {
	if len(args) != 1 {
		s.con.WriteLine(t, "usage: spawn <burn|sleeper>")
		return
	}
	var entry func(*kernel.Thread)
	switch args[0] {
	case "burn":
		entry = burn.New()
	case "sleeper":
		entry = func(t *kernel.Thread) { t.Sleep(5000) }
	default:
		s.con.WriteLine(t, "spawn: unknown kind")
		return
	}
	pid, err := t.Spawn(entry, kernel.DefaultPriority)
	if err != nil {
		s.con.WriteLine(t, "spawn: "+err.Error())
		return
	}
	s.con.WriteLine(t, fmt.Sprintf("pid %d", pid))
}
