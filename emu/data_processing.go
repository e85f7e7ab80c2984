package emu

import (
	"github.com/sarchlab/arm7sim/bitfield"
	"github.com/sarchlab/arm7sim/insts"
)

// evalFunc computes a data-processing result with its adder carry and
// overflow. Logical operations report false for both.
type evalFunc func(a, b uint32, carry bool) (result uint32, c, v bool)

func evalFor(op insts.Op) evalFunc {
	switch op {
	case insts.OpAND, insts.OpTST:
		return func(a, b uint32, _ bool) (uint32, bool, bool) { return a & b, false, false }
	case insts.OpEOR, insts.OpTEQ:
		return func(a, b uint32, _ bool) (uint32, bool, bool) { return a ^ b, false, false }
	case insts.OpORR:
		return func(a, b uint32, _ bool) (uint32, bool, bool) { return a | b, false, false }
	case insts.OpBIC:
		return func(a, b uint32, _ bool) (uint32, bool, bool) { return a &^ b, false, false }
	case insts.OpMOV:
		return func(_, b uint32, _ bool) (uint32, bool, bool) { return b, false, false }
	case insts.OpMVN:
		return func(_, b uint32, _ bool) (uint32, bool, bool) { return ^b, false, false }
	case insts.OpSUB, insts.OpCMP:
		return func(a, b uint32, _ bool) (uint32, bool, bool) {
			r, c := Sub(a, b)
			return r, c, SubOverflow(a, b, r)
		}
	case insts.OpRSB:
		return func(a, b uint32, _ bool) (uint32, bool, bool) {
			r, c := Rsb(a, b)
			return r, c, SubOverflow(b, a, r)
		}
	case insts.OpADD, insts.OpCMN:
		return func(a, b uint32, _ bool) (uint32, bool, bool) {
			r, c := Add(a, b)
			return r, c, AddOverflow(a, b, r)
		}
	case insts.OpADC:
		return func(a, b uint32, carry bool) (uint32, bool, bool) {
			r, c := Adc(a, b, carry)
			return r, c, AddOverflow(a, b, r)
		}
	case insts.OpSBC:
		return func(a, b uint32, carry bool) (uint32, bool, bool) {
			r, c := Sbc(a, b, carry)
			return r, c, SubOverflow(a, b, r)
		}
	case insts.OpRSC:
		return func(a, b uint32, carry bool) (uint32, bool, bool) {
			r, c := Rsc(a, b, carry)
			return r, c, SubOverflow(b, a, r)
		}
	}
	panic("emu: not a data-processing family: " + op.String())
}

// operandFunc computes operand 2 and the shifter carry-out.
type operandFunc func(c *CPU, word uint32) (uint32, bool)

func operandFor(imm insts.Immediate, kind insts.ShiftKind) operandFunc {
	if imm == insts.ImmOn {
		return func(c *CPU, word uint32) (uint32, bool) {
			return RotatedImmediate(word, c.regs.CPSR().C())
		}
	}

	if kind.IsRegisterShift() {
		return func(c *CPU, word uint32) (uint32, bool) {
			c.internal(1)
			amount := c.readReg(bitfield.Range(word, 11, 8), 4)
			rm := c.readReg(bitfield.Range(word, 3, 0), 4)
			return ShiftCarry(kind, rm, amount, c.regs.CPSR().C())
		}
	}

	return func(c *CPU, word uint32) (uint32, bool) {
		amount := bitfield.Range(word, 11, 7)
		rm := c.readReg(bitfield.Range(word, 3, 0), 0)
		return ShiftCarry(kind, rm, amount, c.regs.CPSR().C())
	}
}

// dataProcessing binds one data-processing variant.
func dataProcessing(v insts.Variant) Handler {
	eval := evalFor(v.Op)
	operand := operandFor(v.Imm, v.Shift)
	logical := v.Op.IsLogical()
	writes := !v.Op.IsTstLike()

	var pcExtra uint32
	if v.Shift.IsRegisterShift() {
		pcExtra = 4
	}

	if v.S == insts.SOff {
		return func(c *CPU, word uint32) error {
			b, _ := operand(c, word)
			a := c.readReg(bitfield.Range(word, 19, 16), pcExtra)
			r, _, _ := eval(a, b, c.regs.CPSR().C())
			c.writeReg(bitfield.Range(word, 15, 12), r)
			return nil
		}
	}

	return func(c *CPU, word uint32) error {
		b, shiftCarry := operand(c, word)
		a := c.readReg(bitfield.Range(word, 19, 16), pcExtra)
		r, carry, overflow := eval(a, b, c.regs.CPSR().C())
		rd := bitfield.Range(word, 15, 12)

		if writes && rd == RegPC {
			c.restoreCPSR()
			c.writeReg(rd, r)
			return nil
		}

		if logical {
			c.setLogicFlags(r, shiftCarry)
		} else {
			c.setArithFlags(r, carry, overflow)
		}

		if writes {
			c.writeReg(rd, r)
		}
		return nil
	}
}
