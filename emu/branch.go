package emu

import "github.com/sarchlab/arm7sim/bitfield"

// branchWithLink binds B and BL: a signed 24-bit word offset from r15,
// with BL saving the address of the next instruction in LR.
func branchWithLink(link bool) Handler {
	return func(c *CPU, word uint32) error {
		offset := bitfield.SignExtend(bitfield.Range(word, 23, 0), 23) << 2
		target := c.regs.Get(RegPC) + offset
		if link {
			c.regs.Set(RegLR, c.nextAddr())
		}
		c.branch(target)
		return nil
	}
}

// branchExchange branches to Rm and selects Thumb state from bit 0.
func branchExchange(c *CPU, word uint32) error {
	target := c.readReg(bitfield.Range(word, 3, 0), 0)
	c.regs.SetCPSR(c.regs.CPSR().WithT(bitfield.Bit(target, 0)))
	c.branch(target)
	return nil
}
