package emu

import (
	"math/bits"

	"github.com/sarchlab/arm7sim/bitfield"
)

// Add returns a+b and the unsigned carry-out.
func Add(a, b uint32) (uint32, bool) {
	r, carry := bits.Add32(a, b, 0)
	return r, carry == 1
}

// Adc returns a+b+carry and the unsigned carry-out.
func Adc(a, b uint32, carry bool) (uint32, bool) {
	var in uint32
	if carry {
		in = 1
	}
	r, out := bits.Add32(a, b, in)
	return r, out == 1
}

// Sub returns a-b and the ARM carry, which is set when no borrow occurs
// (a >= b unsigned).
func Sub(a, b uint32) (uint32, bool) {
	r, borrow := bits.Sub32(a, b, 0)
	return r, borrow == 0
}

// Sbc returns a-b-NOT(carry) and the ARM carry (NOT borrow).
func Sbc(a, b uint32, carry bool) (uint32, bool) {
	var in uint32
	if !carry {
		in = 1
	}
	r, borrow := bits.Sub32(a, b, in)
	return r, borrow == 0
}

// Rsb returns b-a and the ARM carry.
func Rsb(a, b uint32) (uint32, bool) {
	return Sub(b, a)
}

// Rsc returns b-a-NOT(carry) and the ARM carry.
func Rsc(a, b uint32, carry bool) (uint32, bool) {
	return Sbc(b, a, carry)
}

// AddOverflow reports signed overflow of r = a+b(+c): both operands share a
// sign that the result does not.
func AddOverflow(a, b, r uint32) bool {
	return bitfield.Bit((a^r)&(b^r), 31)
}

// SubOverflow reports signed overflow of r = a-b(-c): the operands differ
// in sign and the result's sign differs from a.
func SubOverflow(a, b, r uint32) bool {
	return bitfield.Bit((a^b)&(a^r), 31)
}

// setLogicFlags sets N and Z from the result and C from the shifter.
// V is preserved.
func (c *CPU) setLogicFlags(result uint32, carry bool) {
	c.regs.SetFlags(c.regs.CPSR().WithNZ(result).WithC(carry))
}

// setArithFlags sets all four condition flags.
func (c *CPU) setArithFlags(result uint32, carry, overflow bool) {
	c.regs.SetFlags(c.regs.CPSR().WithNZ(result).WithC(carry).WithV(overflow))
}
