package emu

import (
	"github.com/sarchlab/arm7sim/bitfield"
	"github.com/sarchlab/arm7sim/insts"
)

// moveFromPSR binds MRS. Reading the SPSR in a mode without one reads the
// CPSR.
func moveFromPSR(spsr bool) Handler {
	return func(c *CPU, word uint32) error {
		v := c.regs.CPSR()
		if spsr && c.regs.HasSPSR() {
			v = c.regs.SPSR()
		}
		c.writeReg(bitfield.Range(word, 15, 12), uint32(v))
		return nil
	}
}

// fieldMask expands the MSR field mask (bits 19:16: control, extension,
// status, flags) into a bit mask.
func fieldMask(word uint32) uint32 {
	var mask uint32
	for i := uint(0); i < 4; i++ {
		if bitfield.Bit(word, 16+i) {
			mask |= 0xFF << (8 * i)
		}
	}
	return mask
}

// moveToPSR binds MSR. User mode may only write the flags byte, the T bit
// is never written, and a control write naming an illegal mode keeps the
// current mode.
func moveToPSR(spsr bool, imm insts.Immediate) Handler {
	return func(c *CPU, word uint32) error {
		var value uint32
		if imm == insts.ImmOn {
			value, _ = RotatedImmediate(word, false)
		} else {
			value = c.readReg(bitfield.Range(word, 3, 0), 0)
		}
		mask := fieldMask(word)

		if spsr {
			if !c.regs.HasSPSR() {
				c.log.WithField("mode", c.regs.Mode().String()).
					Warn("MSR to SPSR without an SPSR ignored")
				return nil
			}
			old := uint32(c.regs.SPSR())
			c.regs.SetSPSR(PSR(old&^mask | value&mask))
			return nil
		}

		if !c.regs.Mode().Privileged() {
			mask &= 0xFF000000
		}
		mask = bitfield.SetBit(mask, bitT, false)

		old := uint32(c.regs.CPSR())
		next := PSR(old&^mask | value&mask)
		if !next.Mode().Valid() {
			c.log.WithField("mode", next.Mode().String()).
				Warn("MSR with an illegal mode ignored")
			next = PSR(bitfield.SetRange(uint32(next), 4, 0, old))
		}
		c.regs.SetCPSR(next)
		return nil
	}
}
