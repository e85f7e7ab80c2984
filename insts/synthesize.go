package insts

// Canonical register fields used by Synthesize.
const (
	synthRn = 1
	synthRd = 2
	synthRm = 3
	synthRs = 4
)

// Synthesize returns a canonical ARM encoding of s with condition AL:
// Rn=r1, Rd=r2, Rm=r3, Rs=r4, general LSR/ASR/ROR amounts of 1 and zero
// amounts for LSL and the carved RRX/LSR #32/ASR #32 forms. Decoding the
// result yields s. Synthesize(SpecUndefined) returns an encoding from the
// undefined instruction space.
func Synthesize(s Spec) uint32 {
	const al = uint32(CondAL) << 28

	v := s.Variant()
	e := entryFor(s)
	word := al | e.Opcode

	switch v.Op {
	case OpUndefined:
		return al | 0x06000010
	case OpB, OpBL:
		return word | 0x10
	case OpBX:
		return word | synthRm
	case OpSWI:
		return word | 0x42
	case OpSWP, OpSWPB:
		return word | synthRn<<16 | synthRd<<12 | synthRm
	case OpMRSCPSR, OpMRSSPSR:
		return word | synthRd<<12
	case OpMSRCPSR, OpMSRSPSR:
		word |= 0x9 << 16 // control and flags fields
		if v.Imm == ImmOn {
			return word | 4<<8 | 0xF0
		}
		return word | synthRm
	case OpLDM, OpSTM:
		return word | 1<<23 | 1<<21 | 13<<16 | 0x000E
	case OpMUL:
		return word | synthRd<<16 | synthRs<<8 | synthRm
	case OpMLA:
		return word | synthRd<<16 | synthRn<<12 | synthRs<<8 | synthRm
	case OpUMULL, OpUMLAL, OpSMULL, OpSMLAL:
		return word | synthRd<<16 | synthRn<<12 | synthRs<<8 | synthRm
	case OpSTRH, OpLDRH, OpLDRSB, OpLDRSH:
		word |= 1<<24 | 1<<23 | synthRn<<16 | synthRd<<12
		if v.Imm == ImmOn {
			return word | 0x4
		}
		return word | synthRm
	case OpSTR, OpLDR, OpSTRB, OpLDRB:
		word |= 1<<24 | 1<<23 | synthRn<<16 | synthRd<<12
		if v.Imm == ImmOn {
			return word | 0x10
		}
		return word | synthShiftOperand(v.Shift)
	}

	// Data processing.
	switch {
	case v.Op.IsTstLike():
		word |= synthRn << 16
	case v.Op == OpMOV || v.Op == OpMVN:
		word |= synthRd << 12
	default:
		word |= synthRn<<16 | synthRd<<12
	}
	if v.Imm == ImmOn {
		return word | 0x2A
	}
	return word | synthShiftOperand(v.Shift)
}

func synthShiftOperand(k ShiftKind) uint32 {
	switch k {
	case ShiftLSR, ShiftASR, ShiftROR:
		return 1<<7 | synthRm
	case ShiftRSLSL, ShiftRSLSR, ShiftRSASR, ShiftRSROR:
		return synthRs<<8 | synthRm
	}
	return synthRm
}

// SynthesizeThumb returns a canonical Thumb encoding of t. Decoding the
// result yields t.
func SynthesizeThumb(t ThumbSpec) uint16 {
	if t == ThumbUndefined {
		return 0xE800
	}
	e := thumbEntryFor(t)
	half := uint16(e.Opcode)
	switch t {
	case ThumbBCond:
		return half | uint16(CondNE)<<8 | 0x04
	case ThumbSWI:
		return half | 0x42
	case ThumbPUSH, ThumbPOP, ThumbSTMIA, ThumbLDMIA:
		return half | 0x0E
	case ThumbBX:
		return half | 0x3<<3
	}
	return half | 0x0A
}
