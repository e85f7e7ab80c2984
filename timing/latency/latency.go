// Package latency turns ARM7TDMI bus cycle counts into clock cycles and
// gives static per-instruction cost estimates.
//
// An instruction's cost is expressed in N (non-sequential), S (sequential)
// and I (internal) cycles; wait states from TimingConfig stretch the N and
// S cycles.
package latency

import (
	"time"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

// Table provides cost lookups under one TimingConfig.
type Table struct {
	config *TimingConfig
}

// NewTable creates a table with the default timing.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a table with custom timing.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Cost returns the clock cycles taken by the given bus cycles.
func (t *Table) Cost(s emu.CycleStats) uint64 {
	return s.N*(1+t.config.NonSequentialWaitStates) +
		s.S*(1+t.config.SequentialWaitStates) +
		s.I*t.config.InternalCycleCost
}

// Duration converts clock cycles to wall time at the configured clock.
func (t *Table) Duration(cycles uint64) time.Duration {
	return time.Duration(float64(cycles) * float64(time.Second) / float64(t.config.ClockHz))
}

// BusCycles returns the bus cycles an instruction takes when it does not
// touch r15, with one transferred register and the shortest multiply.
func (t *Table) BusCycles(spec insts.Spec) emu.CycleStats {
	return t.bounds(spec, false)
}

// GetMinLatency returns the fewest clock cycles spec can take.
func (t *Table) GetMinLatency(spec insts.Spec) uint64 {
	return t.Cost(t.bounds(spec, false))
}

// GetMaxLatency returns the most clock cycles spec can take: every
// register transferred, the slowest multiply, and a write to r15.
func (t *Table) GetMaxLatency(spec insts.Spec) uint64 {
	return t.Cost(t.bounds(spec, true))
}

// refill is the 2S+1N pipeline refill after a branch.
var refill = emu.CycleStats{N: 1, S: 2}

func (t *Table) bounds(spec insts.Spec, worst bool) emu.CycleStats {
	v := spec.Variant()
	var m uint64 = 1
	regs := uint64(1)
	if worst {
		m = 4
		regs = 16
	}

	switch op := v.Op; {
	case op == insts.OpB || op == insts.OpBL || op == insts.OpBX || op == insts.OpSWI:
		return refill
	case op == insts.OpUndefined:
		return emu.CycleStats{N: 1, S: 2, I: 1}
	case op == insts.OpSWP || op == insts.OpSWPB:
		return emu.CycleStats{N: 2, S: 1, I: 1}
	case op == insts.OpLDM:
		s := emu.CycleStats{N: 1, S: regs, I: 1}
		if worst {
			s = emu.CycleStats{N: 2, S: regs + 1, I: 1}
		}
		return s
	case op == insts.OpSTM:
		return emu.CycleStats{N: 2, S: regs - 1}
	case op == insts.OpMUL:
		return emu.CycleStats{S: 1, I: m}
	case op == insts.OpMLA:
		return emu.CycleStats{S: 1, I: m + 1}
	case op == insts.OpUMULL || op == insts.OpSMULL:
		return emu.CycleStats{S: 1, I: m + 1}
	case op == insts.OpUMLAL || op == insts.OpSMLAL:
		return emu.CycleStats{S: 1, I: m + 2}
	case t.IsLoadOp(spec):
		if worst {
			return emu.CycleStats{N: 2, S: 2, I: 1}
		}
		return emu.CycleStats{N: 1, S: 1, I: 1}
	case t.IsStoreOp(spec):
		return emu.CycleStats{N: 2}
	}

	s := emu.CycleStats{S: 1}
	if v.Shift.IsRegisterShift() {
		s.I = 1
	}
	if worst && !v.Op.IsTstLike() && v.Op.IsDataProcessing() {
		s.N++
		s.S++
	}
	return s
}

// IsMemoryOp reports whether spec accesses data memory.
func (t *Table) IsMemoryOp(spec insts.Spec) bool {
	return t.IsLoadOp(spec) || t.IsStoreOp(spec) ||
		spec.Op() == insts.OpSWP || spec.Op() == insts.OpSWPB
}

// IsLoadOp reports whether spec is a load.
func (t *Table) IsLoadOp(spec insts.Spec) bool {
	switch spec.Op() {
	case insts.OpLDR, insts.OpLDRB, insts.OpLDRH, insts.OpLDRSB, insts.OpLDRSH, insts.OpLDM:
		return true
	}
	return false
}

// IsStoreOp reports whether spec is a store.
func (t *Table) IsStoreOp(spec insts.Spec) bool {
	switch spec.Op() {
	case insts.OpSTR, insts.OpSTRB, insts.OpSTRH, insts.OpSTM:
		return true
	}
	return false
}

// IsBranchOp reports whether spec always redirects the pipeline.
func (t *Table) IsBranchOp(spec insts.Spec) bool {
	switch spec.Op() {
	case insts.OpB, insts.OpBL, insts.OpBX:
		return true
	}
	return false
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
