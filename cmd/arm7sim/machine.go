package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/loader"
	"github.com/sarchlab/arm7sim/timing/core"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// machine is a loaded program on a timed core.
type machine struct {
	prog *loader.Program
	mem  *emu.Memory
	core *core.Core
	log  *logrus.Logger
}

func newMachine(o *options, log *logrus.Logger, stdin io.Reader, stdout, stderr io.Writer) (*machine, error) {
	var (
		prog *loader.Program
		err  error
	)
	if o.elfPath != "" {
		prog, err = loader.Load(o.elfPath)
	} else {
		prog, err = loader.LoadBinary(o.binPath, o.base)
	}
	if err != nil {
		return nil, err
	}

	config := latency.DefaultTimingConfig()
	if o.configPath != "" {
		config, err = latency.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	swi := emu.NewDefaultSWIHandler(stdout, stderr)
	swi.SetStdin(stdin)

	mem := emu.NewMemory()
	c, err := core.NewCore(mem, config,
		emu.WithLogger(log),
		emu.WithSWIHandler(swi),
		emu.WithMaxInstructions(o.maxInstr),
		emu.WithUndefinedException(o.undefException),
	)
	if err != nil {
		return nil, err
	}

	m := &machine{prog: prog, mem: mem, core: c, log: log}
	m.reset()
	return m, nil
}

// reset reloads the program image and restarts at the entry point.
func (m *machine) reset() {
	m.core.Reset()
	m.prog.LoadInto(m.mem)
	m.prog.Start(m.core.CPU)
}

// run executes until the program exits or stops on an error.
func (m *machine) run() int64 {
	code := m.core.Run()
	if err := m.core.Err(); err != nil {
		m.log.WithError(err).WithField("pc", fmt.Sprintf("0x%08X", m.core.CPU.PC())).
			Error("emulation stopped")
	}
	return code
}

// report prints the cycle statistics.
func (m *machine) report(w io.Writer) {
	stats := m.core.Stats()
	table := m.core.Table()

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Exit code: %d\n", m.core.ExitCode())
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "Simulated time: %v\n", table.Duration(stats.Cycles))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Bus cycles:\n")
	fmt.Fprintf(w, "  Non-sequential: %d\n", stats.Bus.N)
	fmt.Fprintf(w, "  Sequential:     %d\n", stats.Bus.S)
	fmt.Fprintf(w, "  Internal:       %d\n", stats.Bus.I)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Pipeline Events:\n")
	fmt.Fprintf(w, "  Flushes:    %d\n", stats.Flushes)
	fmt.Fprintf(w, "  Branches:   %d\n", stats.Branches)
	fmt.Fprintf(w, "  Memory ops: %d\n", stats.MemoryOps)

	if fb := m.core.FetchBuffer(); fb != nil {
		fs := fb.Stats()
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Fetch buffer (%v):\n", fb.Mode())
		fmt.Fprintf(w, "  Hits:   %d\n", fs.Hits)
		fmt.Fprintf(w, "  Misses: %d\n", fs.Misses)
		fmt.Fprintf(w, "  Stall cycles: %d\n", stats.StallCycles)
	}
}
