package emu

import (
	"github.com/sarchlab/arm7sim/bitfield"
	"github.com/sarchlab/arm7sim/insts"
)

// shiftFunc shifts value by amount and returns the result and carry-out.
type shiftFunc func(value, amount uint32, carry bool) (uint32, bool)

// shifters is indexed by insts.ShiftKind.
var shifters = [insts.NumShiftKinds + 1]shiftFunc{
	insts.ShiftLSL:   lsl,
	insts.ShiftLSR:   lsr,
	insts.ShiftASR:   asr,
	insts.ShiftROR:   ror,
	insts.ShiftRRX:   rrx,
	insts.ShiftLSR32: func(v, _ uint32, c bool) (uint32, bool) { return lsr(v, 32, c) },
	insts.ShiftASR32: func(v, _ uint32, c bool) (uint32, bool) { return asr(v, 32, c) },
	insts.ShiftRSLSL: lsl,
	insts.ShiftRSLSR: lsr,
	insts.ShiftRSASR: asr,
	insts.ShiftRSROR: ror,
	insts.ShiftNone:  func(v, _ uint32, c bool) (uint32, bool) { return v, c },
}

// ShiftCarry applies the barrel shifter to value and returns the result and
// the shifter carry-out. carry is the current C flag.
//
// For the immediate kinds amount is the 5-bit field (1-31 for LSR, ASR and
// ROR, 0-31 for LSL); the carved RRX, LSR32 and ASR32 kinds ignore it. For
// the register kinds amount is bits 7:0 of Rs and follows the architecture:
//
//	amount 0         value and carry unchanged
//	LSL 32           0, carry = bit 0
//	LSL > 32         0, carry = 0
//	LSR 32           0, carry = bit 31
//	LSR > 32         0, carry = 0
//	ASR >= 32        sign fill, carry = bit 31
//	ROR n%32 == 0    value unchanged, carry = bit 31
//	ROR otherwise    rotate by n%32
func ShiftCarry(kind insts.ShiftKind, value, amount uint32, carry bool) (uint32, bool) {
	if kind.IsRegisterShift() {
		amount &= 0xFF
	}
	return shifters[kind](value, amount, carry)
}

// Shift is ShiftCarry without the carry-out.
func Shift(kind insts.ShiftKind, value, amount uint32, carry bool) uint32 {
	v, _ := ShiftCarry(kind, value, amount, carry)
	return v
}

func lsl(v, n uint32, c bool) (uint32, bool) {
	switch {
	case n == 0:
		return v, c
	case n < 32:
		return bitfield.Shl(v, uint(n)), bitfield.Bit(v, uint(32-n))
	case n == 32:
		return 0, bitfield.Bit(v, 0)
	}
	return 0, false
}

func lsr(v, n uint32, c bool) (uint32, bool) {
	switch {
	case n == 0:
		return v, c
	case n < 32:
		return bitfield.Shr(v, uint(n)), bitfield.Bit(v, uint(n-1))
	case n == 32:
		return 0, bitfield.Bit(v, 31)
	}
	return 0, false
}

func asr(v, n uint32, c bool) (uint32, bool) {
	switch {
	case n == 0:
		return v, c
	case n < 32:
		return bitfield.Sar(v, uint(n)), bitfield.Bit(v, uint(n-1))
	}
	return bitfield.Sar(v, 32), bitfield.Bit(v, 31)
}

func ror(v, n uint32, c bool) (uint32, bool) {
	switch {
	case n == 0:
		return v, c
	case n%32 == 0:
		return v, bitfield.Bit(v, 31)
	}
	n %= 32
	return bitfield.Rotr(v, uint(n)), bitfield.Bit(v, uint(n-1))
}

func rrx(v, _ uint32, c bool) (uint32, bool) {
	r := bitfield.Shr(v, 1)
	return bitfield.SetBit(r, 31, c), bitfield.Bit(v, 0)
}

// RotatedImmediate decodes a data-processing immediate operand: an 8-bit
// value rotated right by twice the 4-bit rotate field. The carry-out is
// bit 31 of the result for a nonzero rotation and the current carry
// otherwise.
func RotatedImmediate(word uint32, carry bool) (uint32, bool) {
	imm := bitfield.Range(word, 7, 0)
	rot := bitfield.Range(word, 11, 8) * 2
	if rot == 0 {
		return imm, carry
	}
	v := bitfield.Rotr(imm, uint(rot))
	return v, bitfield.Bit(v, 31)
}
