package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

type command struct {
	name    string // Command name.
	min     int    // Minimum abbreviation.
	args    string
	help    string
	process func(mon *monitor, args []string) (bool, error)
}

var commands []command

func init() {
	commands = []command{
		{name: "step", min: 1, args: "[n]", help: "execute n instructions", process: (*monitor).step},
		{name: "run", min: 2, help: "run until the program exits or stops", process: (*monitor).run},
		{name: "regs", min: 3, help: "show the registers of the current mode", process: (*monitor).regs},
		{name: "mem", min: 1, args: "addr [n]", help: "show n words of memory", process: (*monitor).mem},
		{name: "decode", min: 1, args: "word", help: "decode an instruction word", process: (*monitor).decode},
		{name: "reset", min: 3, help: "reload the program and restart", process: (*monitor).reset},
		{name: "help", min: 1, help: "list commands", process: (*monitor).help},
		{name: "quit", min: 1, help: "leave the monitor", process: (*monitor).quit},
	}
}

// monitor is the interactive command interpreter.
type monitor struct {
	m   *machine
	out io.Writer
}

func newMonitor(m *machine, out io.Writer) *monitor {
	return &monitor{m: m, out: out}
}

// loop reads commands until quit, Ctrl-C or end of input.
func (mon *monitor) loop() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	for {
		input, err := line.Prompt("arm7> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line.AppendHistory(input)
		quit, err := mon.process(input)
		if err != nil {
			fmt.Fprintln(mon.out, "Error: "+err.Error())
		}
		if quit {
			return nil
		}
	}
}

// process executes one command line. It returns true on quit.
func (mon *monitor) process(input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}

	match := matchList(strings.ToLower(fields[0]))
	switch len(match) {
	case 0:
		return false, fmt.Errorf("command not found: %s", fields[0])
	case 1:
		return match[0].process(mon, fields[1:])
	default:
		return false, fmt.Errorf("unique command not found: %s", fields[0])
	}
}

// matchList returns the commands that word abbreviates.
func matchList(word string) []command {
	var match []command
	for _, c := range commands {
		if len(word) >= c.min && strings.HasPrefix(c.name, word) {
			match = append(match, c)
		}
	}
	return match
}

func complete(line string) []string {
	word := strings.ToLower(strings.TrimSpace(line))
	var names []string
	for _, c := range commands {
		if strings.HasPrefix(c.name, word) {
			names = append(names, c.name)
		}
	}
	return names
}

func parseNumber(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint32(v), nil
}

// optionalCount parses args[i] as a count, or returns def when absent.
func optionalCount(args []string, i int, def uint32) (uint32, error) {
	if len(args) <= i {
		return def, nil
	}
	return parseNumber(args[i])
}

func (mon *monitor) printStep(r emu.StepResult) {
	name := r.Spec.String()
	if r.Thumb {
		name = r.ThumbSpec.String()
	}
	note := ""
	if r.Skipped {
		note = " (skipped)"
	}
	fmt.Fprintf(mon.out, "0x%08X: %08X %s%s\n", r.Addr, r.Word, name, note)
}

func (mon *monitor) printHalt() {
	if err := mon.m.core.Err(); err != nil {
		fmt.Fprintf(mon.out, "stopped: %v\n", err)
		return
	}
	fmt.Fprintf(mon.out, "exited with code %d\n", mon.m.core.ExitCode())
}

func (mon *monitor) step(args []string) (bool, error) {
	n, err := optionalCount(args, 0, 1)
	if err != nil {
		return false, err
	}

	c := mon.m.core
	if c.Halted() {
		mon.printHalt()
		return false, nil
	}

	for i := uint32(0); i < n; i++ {
		r := c.Step()
		if r.Err == nil {
			mon.printStep(r)
		}
		if c.Halted() {
			mon.printHalt()
			break
		}
	}
	return false, nil
}

func (mon *monitor) run([]string) (bool, error) {
	c := mon.m.core
	for c.Tick() {
	}
	mon.printHalt()

	stats := c.Stats()
	fmt.Fprintf(mon.out, "%d instructions, %d cycles, CPI %.2f\n",
		stats.Instructions, stats.Cycles, stats.CPI())
	return false, nil
}

func (mon *monitor) regs([]string) (bool, error) {
	fmt.Fprintln(mon.out, mon.m.core.CPU.Snapshot())
	return false, nil
}

func (mon *monitor) mem(args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("mem needs an address")
	}
	addr, err := parseNumber(args[0])
	if err != nil {
		return false, err
	}
	n, err := optionalCount(args, 1, 4)
	if err != nil {
		return false, err
	}

	addr &^= 3
	for i := uint32(0); i < n; i++ {
		a := addr + 4*i
		if i%4 == 0 {
			if i > 0 {
				fmt.Fprintln(mon.out)
			}
			fmt.Fprintf(mon.out, "0x%08X:", a)
		}
		fmt.Fprintf(mon.out, " %08X", mon.m.mem.Read32(a))
	}
	fmt.Fprintln(mon.out)
	return false, nil
}

func (mon *monitor) decode(args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("decode needs an instruction word")
	}
	word, err := parseNumber(args[0])
	if err != nil {
		return false, err
	}

	spec := mon.m.core.CPU.Decoder().Decode(word)
	fmt.Fprintf(mon.out, "%08X %s cond=%v spec=%d\n", word, spec, insts.CondOf(word), uint16(spec))
	return false, nil
}

func (mon *monitor) reset([]string) (bool, error) {
	mon.m.reset()
	fmt.Fprintf(mon.out, "pc=0x%08X\n", mon.m.core.CPU.PC())
	return false, nil
}

func (mon *monitor) help([]string) (bool, error) {
	for _, c := range commands {
		fmt.Fprintf(mon.out, "  %-7s %-9s %s\n", c.name, c.args, c.help)
	}
	return false, nil
}

func (mon *monitor) quit([]string) (bool, error) {
	return true, nil
}
