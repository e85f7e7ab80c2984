// Package core provides the cycle-counting ARM7TDMI core model.
// It wraps the functional emulator and prices every step with a latency
// table and an optional fetch buffer.
package core

import (
	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/cache"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of clock cycles simulated, wait states
	// and fetch buffer stalls included.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64
	// Branches is the number of B, BL and BX instructions executed.
	Branches uint64
	// MemoryOps is the number of load, store and swap instructions
	// executed.
	MemoryOps uint64
	// StallCycles is the number of cycles spent filling fetch buffer
	// lines.
	StallCycles uint64
	// Bus is the raw N/S/I cycle count.
	Bus emu.CycleStats
}

// CPI returns the cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core runs an emu.CPU against a timing model.
type Core struct {
	// CPU is the functional core.
	CPU *emu.CPU

	table *latency.Table
	fetch *cache.FetchBuffer

	stats    Stats
	halted   bool
	exitCode int64
	err      error
}

// NewCore creates a core over mem. A nil config selects
// latency.DefaultTimingConfig. When the config enables the fetch buffer,
// the CPU sees mem through it.
func NewCore(mem emu.Bus, config *latency.TimingConfig, opts ...emu.CPUOption) (*Core, error) {
	if config == nil {
		config = latency.DefaultTimingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Core{
		table: latency.NewTableWithConfig(config),
	}

	bus := mem
	if config.FetchBufferMode != latency.FetchBufferDisabled {
		fb, err := cache.NewFetchBufferFromTiming(mem, config)
		if err != nil {
			return nil, err
		}
		c.fetch = fb
		bus = fb
	}

	c.CPU = emu.NewCPU(append(opts[:len(opts):len(opts)], emu.WithBus(bus))...)
	return c, nil
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.CPU.SetPC(pc)
}

// FetchBuffer returns the fetch buffer, or nil when it is disabled.
func (c *Core) FetchBuffer() *cache.FetchBuffer {
	return c.fetch
}

// Table returns the latency table in use.
func (c *Core) Table() *latency.Table {
	return c.table
}

// Tick executes one instruction and accounts its cycles. It returns false
// once the core has halted.
func (c *Core) Tick() bool {
	c.Step()
	return !c.halted
}

// Step executes one instruction, accounts its cycles and returns the
// emulator's result. Once halted it executes nothing and reports the
// halting exit or error again.
func (c *Core) Step() emu.StepResult {
	if c.halted {
		return emu.StepResult{Exited: c.err == nil, ExitCode: c.exitCode, Err: c.err}
	}

	before := c.CPU.Cycles()
	var stallBefore uint64
	if c.fetch != nil {
		stallBefore = c.fetch.StallCycles()
	}

	r := c.CPU.Step()

	bus := c.CPU.Cycles().Sub(before)
	c.stats.Bus.N += bus.N
	c.stats.Bus.S += bus.S
	c.stats.Bus.I += bus.I
	c.stats.Cycles += c.table.Cost(bus)
	if c.fetch != nil {
		stall := c.fetch.StallCycles() - stallBefore
		c.stats.StallCycles += stall
		c.stats.Cycles += stall
	}

	if r.Err != nil {
		c.halted = true
		c.err = r.Err
		c.exitCode = -1
		return r
	}

	c.stats.Instructions++
	if r.Branched {
		c.stats.Flushes++
	}
	if !r.Thumb && !r.Skipped {
		if c.table.IsBranchOp(r.Spec) {
			c.stats.Branches++
		}
		if c.table.IsMemoryOp(r.Spec) {
			c.stats.MemoryOps++
		}
	}

	if r.Exited {
		c.halted = true
		c.exitCode = r.ExitCode
	}
	return r
}

// Halted returns true if the program exited or an error stopped the core.
func (c *Core) Halted() bool {
	return c.halted
}

// ExitCode returns the exit code once halted, -1 after an error.
func (c *Core) ExitCode() int64 {
	return c.exitCode
}

// Err returns the error that halted the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Run executes the core until it halts.
// Returns the exit code.
func (c *Core) Run() int64 {
	for c.Tick() {
	}
	return c.exitCode
}

// RunCycles executes whole instructions until at least cycles more clock
// cycles have elapsed. Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	end := c.stats.Cycles + cycles
	for c.stats.Cycles < end {
		if !c.Tick() {
			return false
		}
	}
	return true
}

// Reset returns the CPU to its reset state and clears all statistics.
func (c *Core) Reset() {
	c.CPU.Reset()
	if c.fetch != nil {
		c.fetch.Reset()
	}
	c.stats = Stats{}
	c.halted = false
	c.exitCode = 0
	c.err = nil
}
