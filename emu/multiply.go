package emu

import (
	"github.com/sarchlab/arm7sim/bitfield"
	"github.com/sarchlab/arm7sim/insts"
)

// multiplierCycles returns the ARM7TDMI early-termination count m: the
// number of 8-bit multiplier steps needed for rs. With signed set, leading
// ones terminate as well as leading zeros.
func multiplierCycles(rs uint32, signed bool) uint64 {
	for m := uint64(1); m < 4; m++ {
		top := rs >> (8 * m)
		if top == 0 || signed && top == 0xFFFFFFFF>>(8*m) {
			return m
		}
	}
	return 4
}

// multiply binds MUL and MLA. Flag updates touch N and Z; C and V keep
// their values.
func multiply(accumulate bool, s insts.SFlag) Handler {
	return func(c *CPU, word uint32) error {
		rd := bitfield.Range(word, 19, 16)
		rm := c.readReg(bitfield.Range(word, 3, 0), 0)
		rs := c.readReg(bitfield.Range(word, 11, 8), 0)

		r := rm * rs
		cycles := multiplierCycles(rs, true)
		if accumulate {
			r += c.readReg(bitfield.Range(word, 15, 12), 0)
			cycles++
		}
		c.internal(cycles)

		if s == insts.SOn {
			c.regs.SetFlags(c.regs.CPSR().WithNZ(r))
		}
		c.writeReg(rd, r)
		return nil
	}
}

// multiplyLong binds UMULL, UMLAL, SMULL and SMLAL.
func multiplyLong(op insts.Op, s insts.SFlag) Handler {
	signed := op == insts.OpSMULL || op == insts.OpSMLAL
	accumulate := op == insts.OpUMLAL || op == insts.OpSMLAL

	return func(c *CPU, word uint32) error {
		rdHi := bitfield.Range(word, 19, 16)
		rdLo := bitfield.Range(word, 15, 12)
		rm := c.readReg(bitfield.Range(word, 3, 0), 0)
		rs := c.readReg(bitfield.Range(word, 11, 8), 0)

		var r uint64
		if signed {
			r = uint64(int64(int32(rm)) * int64(int32(rs)))
		} else {
			r = uint64(rm) * uint64(rs)
		}

		cycles := multiplierCycles(rs, signed) + 1
		if accumulate {
			r += uint64(c.regs.Get(int(rdHi)))<<32 | uint64(c.regs.Get(int(rdLo)))
			cycles++
		}
		c.internal(cycles)

		if s == insts.SOn {
			p := c.regs.CPSR().WithN(bitfield.Bit(r, 63)).WithZ(r == 0)
			c.regs.SetFlags(p)
		}
		c.writeReg(rdLo, uint32(r))
		c.writeReg(rdHi, uint32(r>>32))
		return nil
	}
}
