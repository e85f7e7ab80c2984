package emu

import (
	"github.com/sarchlab/arm7sim/bitfield"
	"github.com/sarchlab/arm7sim/insts"
)

// addressing holds the decoded P, U and W bits shared by the single and
// halfword transfers.
type addressing struct {
	pre       bool
	up        bool
	writeBack bool
	rn        uint32
	rd        uint32
}

func decodeAddressing(word uint32) addressing {
	pre := bitfield.Bit(word, 24)
	return addressing{
		pre:       pre,
		up:        bitfield.Bit(word, 23),
		writeBack: bitfield.Bit(word, 21) || !pre,
		rn:        bitfield.Range(word, 19, 16),
		rd:        bitfield.Range(word, 15, 12),
	}
}

// resolve returns the transfer address and the written-back base.
func (a addressing) resolve(base, offset uint32) (addr, updated uint32) {
	if a.up {
		updated = base + offset
	} else {
		updated = base - offset
	}
	if a.pre {
		return updated, updated
	}
	return base, updated
}

// writeBackBase updates Rn after a transfer. A load into Rn keeps the
// loaded value, and r15 is never written back.
func (c *CPU) writeBackBase(a addressing, updated uint32, load bool) {
	if !a.writeBack || a.rn == RegPC || load && a.rn == a.rd {
		return
	}
	c.regs.Set(int(a.rn), updated)
}

// singleTransfer binds LDR, STR, LDRB and STRB.
func singleTransfer(op insts.Op, imm insts.Immediate, kind insts.ShiftKind) Handler {
	load := op == insts.OpLDR || op == insts.OpLDRB
	byteAccess := op == insts.OpLDRB || op == insts.OpSTRB

	offset := func(_ *CPU, word uint32) uint32 {
		return bitfield.Range(word, 11, 0)
	}
	if imm == insts.ImmOff {
		offset = func(c *CPU, word uint32) uint32 {
			rm := c.readReg(bitfield.Range(word, 3, 0), 0)
			return Shift(kind, rm, bitfield.Range(word, 11, 7), c.regs.CPSR().C())
		}
	}

	return func(c *CPU, word uint32) error {
		a := decodeAddressing(word)
		addr, updated := a.resolve(c.readReg(a.rn, 0), offset(c, word))

		if !load {
			value := c.readReg(a.rd, 4)
			if byteAccess {
				c.store(addr, Byte, value&0xFF)
			} else {
				c.store(addr&^3, Word, value)
			}
			c.writeBackBase(a, updated, false)
			return nil
		}

		var value uint32
		if byteAccess {
			value = c.load(addr, Byte)
		} else {
			value = c.loadWord(addr)
		}
		c.internal(1)
		c.writeBackBase(a, updated, true)
		c.writeReg(a.rd, value)
		return nil
	}
}

// halfwordTransfer binds STRH, LDRH, LDRSB and LDRSH. Misaligned halfword
// loads follow the ARM7TDMI: LDRH rotates the aligned halfword by 8 and
// LDRSH loads the addressed byte sign-extended.
func halfwordTransfer(op insts.Op, imm insts.Immediate) Handler {
	offset := func(_ *CPU, word uint32) uint32 {
		return bitfield.Range(word, 11, 8)<<4 | bitfield.Range(word, 3, 0)
	}
	if imm == insts.ImmOff {
		offset = func(c *CPU, word uint32) uint32 {
			return c.readReg(bitfield.Range(word, 3, 0), 0)
		}
	}

	return func(c *CPU, word uint32) error {
		a := decodeAddressing(word)
		addr, updated := a.resolve(c.readReg(a.rn, 0), offset(c, word))

		if op == insts.OpSTRH {
			c.store(addr&^1, Halfword, c.readReg(a.rd, 4)&0xFFFF)
			c.writeBackBase(a, updated, false)
			return nil
		}

		var value uint32
		switch {
		case op == insts.OpLDRH:
			value = bitfield.Rotr(c.load(addr&^1, Halfword), uint(addr&1)*8)
		case op == insts.OpLDRSB || addr&1 == 1:
			value = bitfield.SignExtend(c.load(addr, Byte), 7)
		default:
			value = bitfield.SignExtend(c.load(addr, Halfword), 15)
		}
		c.internal(1)
		c.writeBackBase(a, updated, true)
		c.writeReg(a.rd, value)
		return nil
	}
}

// swap binds SWP and SWPB: a locked read of [Rn] into Rd and write of Rm.
func swap(byteAccess bool) Handler {
	return func(c *CPU, word uint32) error {
		addr := c.readReg(bitfield.Range(word, 19, 16), 0)
		src := c.readReg(bitfield.Range(word, 3, 0), 0)

		var old uint32
		if byteAccess {
			old = c.access(addr, Byte, false, 0, true)
			c.dataSeq = false
			c.access(addr, Byte, true, src&0xFF, true)
		} else {
			old = rotateUnaligned(c.access(addr&^3, Word, false, 0, true), addr)
			c.dataSeq = false
			c.access(addr&^3, Word, true, src, true)
		}
		c.internal(1)

		c.writeReg(bitfield.Range(word, 15, 12), old)
		return nil
	}
}
