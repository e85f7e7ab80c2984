package insts

import "fmt"

// Entry is one decode table row: a word w belongs to the entry's identity
// when w&Mask == Opcode. The condition field is never part of the mask.
type Entry struct {
	Mask   uint32
	Opcode uint32
}

// Matches reports whether word satisfies the entry.
func (e Entry) Matches(word uint32) bool {
	return word&e.Mask == e.Opcode
}

// undefinedEntry can never match: no word masked by 0 equals 1.
var undefinedEntry = Entry{Mask: 0, Opcode: 1}

const (
	maskDPImm      = 0x0FF00000 // bits 27:20
	maskDPShift    = 0x0FF00070 // plus type and bit 4
	maskDPShift0   = 0x0FF00FF0 // plus a zero shift amount
	maskDPRegShift = 0x0FF000F0 // plus bit 7 clear, bit 4 set

	maskSDTImm    = 0x0E500000 // bits 27:25, B, L
	maskSDTShift  = 0x0E500070
	maskSDTShift0 = 0x0E500FF0
)

func bitIf(b bool, pos uint) uint32 {
	if b {
		return 1 << pos
	}
	return 0
}

// shiftOperandEntry adds the operand-2 shift bits of kind k to a family
// opcode. general, zero and regAmount are the masks of the encoding class
// for immediate amounts, zero amounts and register amounts.
func shiftOperandEntry(opcode, general, zero, regAmount uint32, k ShiftKind) Entry {
	switch k {
	case ShiftLSL, ShiftLSR, ShiftASR, ShiftROR:
		return Entry{Mask: general, Opcode: opcode | k.Type()<<5}
	case ShiftRRX, ShiftLSR32, ShiftASR32:
		return Entry{Mask: zero, Opcode: opcode | k.Type()<<5}
	case ShiftRSLSL, ShiftRSLSR, ShiftRSASR, ShiftRSROR:
		return Entry{Mask: regAmount, Opcode: opcode | k.Type()<<5 | 1<<4}
	}
	panic(fmt.Sprintf("insts: no operand encoding for shift %v", k))
}

// entryFor computes the decode entry of a single identity.
func entryFor(s Spec) Entry {
	v := s.Variant()

	switch v.Op {
	case OpUndefined:
		return undefinedEntry
	case OpB:
		return Entry{Mask: 0x0F000000, Opcode: 0x0A000000}
	case OpBL:
		return Entry{Mask: 0x0F000000, Opcode: 0x0B000000}
	case OpBX:
		return Entry{Mask: 0x0FFFFFF0, Opcode: 0x012FFF10}
	case OpSWI:
		return Entry{Mask: 0x0F000000, Opcode: 0x0F000000}
	case OpSWP:
		return Entry{Mask: 0x0FF00FF0, Opcode: 0x01000090}
	case OpSWPB:
		return Entry{Mask: 0x0FF00FF0, Opcode: 0x01400090}
	case OpMRSCPSR:
		return Entry{Mask: 0x0FFF0FFF, Opcode: 0x010F0000}
	case OpMRSSPSR:
		return Entry{Mask: 0x0FFF0FFF, Opcode: 0x014F0000}
	case OpLDM:
		return Entry{Mask: 0x0E100000, Opcode: 0x08100000}
	case OpSTM:
		return Entry{Mask: 0x0E100000, Opcode: 0x08000000}
	case OpMSRCPSR, OpMSRSPSR:
		opcode := uint32(0x0120F000) | bitIf(v.Op == OpMSRSPSR, 22)
		if v.Imm == ImmOn {
			return Entry{Mask: 0x0FF0F000, Opcode: opcode | 1<<25}
		}
		return Entry{Mask: 0x0FF0FFF0, Opcode: opcode}
	case OpMUL, OpMLA, OpUMULL, OpUMLAL, OpSMULL, OpSMLAL:
		return Entry{Mask: 0x0FF000F0, Opcode: multiplyOpcode(v.Op) | bitIf(bool(v.S), 20)}
	case OpSTRH, OpLDRH, OpLDRSB, OpLDRSH:
		opcode := halfwordOpcode(v.Op)
		if v.Imm == ImmOn {
			return Entry{Mask: 0x0E5000F0, Opcode: opcode | 1<<22}
		}
		return Entry{Mask: 0x0E500FF0, Opcode: opcode}
	case OpSTR, OpLDR, OpSTRB, OpLDRB:
		opcode := uint32(0x04000000) |
			bitIf(v.Op == OpSTRB || v.Op == OpLDRB, 22) |
			bitIf(v.Op == OpLDR || v.Op == OpLDRB, 20)
		if v.Imm == ImmOn {
			return Entry{Mask: maskSDTImm, Opcode: opcode}
		}
		return shiftOperandEntry(opcode|1<<25, maskSDTShift, maskSDTShift0, 0, v.Shift)
	}

	// Data processing.
	opcode := v.Op.DPOpcode()<<21 | bitIf(bool(v.S), 20)
	if v.Imm == ImmOn {
		return Entry{Mask: maskDPImm, Opcode: opcode | 1<<25}
	}
	return shiftOperandEntry(opcode, maskDPShift, maskDPShift0, maskDPRegShift, v.Shift)
}

func multiplyOpcode(op Op) uint32 {
	switch op {
	case OpMUL:
		return 0x00000090
	case OpMLA:
		return 0x00200090
	case OpUMULL:
		return 0x00800090
	case OpUMLAL:
		return 0x00A00090
	case OpSMULL:
		return 0x00C00090
	case OpSMLAL:
		return 0x00E00090
	}
	panic("insts: not a multiply: " + op.String())
}

func halfwordOpcode(op Op) uint32 {
	switch op {
	case OpSTRH:
		return 0x000000B0
	case OpLDRH:
		return 0x001000B0
	case OpLDRSB:
		return 0x001000D0
	case OpLDRSH:
		return 0x001000F0
	}
	panic("insts: not a halfword transfer: " + op.String())
}

// decodeOrder lists the families in the order the decoder tries them.
var decodeOrder = []Op{
	OpB, OpBL, OpBX, OpSWI,
	OpAND, OpEOR, OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC,
	OpTST, OpTEQ, OpCMP, OpCMN,
	OpORR, OpMOV, OpBIC, OpMVN,
	OpMRSCPSR, OpMRSSPSR, OpMSRCPSR, OpMSRSPSR,
	OpMUL, OpMLA, OpUMULL, OpUMLAL, OpSMULL, OpSMLAL,
	OpSWP, OpSWPB,
	OpSTRH, OpLDRH, OpLDRSB, OpLDRSH,
	OpSTR, OpLDR, OpSTRB, OpLDRB,
	OpLDM, OpSTM,
}

// carvedFirst orders the shift variants of a family so that the
// zero-amount encodings (RRX, LSR #32, ASR #32) are tried before the
// general LSR/ASR/ROR entries whose masks they refine.
var carvedFirst = []ShiftKind{
	ShiftRRX, ShiftLSR32, ShiftASR32,
	ShiftLSL, ShiftLSR, ShiftASR, ShiftROR,
	ShiftRSLSL, ShiftRSLSR, ShiftRSASR, ShiftRSROR,
}

// priorityOrder returns every defined identity in decode priority order.
func priorityOrder() []Spec {
	order := make([]Spec, 0, NumSpecs-1)
	for _, op := range decodeOrder {
		sh := shapeOf(op)

		sValues := []SFlag{sh.fixedS}
		if sh.s {
			sValues = []SFlag{SOff, SOn}
		}

		for _, s := range sValues {
			if sh.imm {
				order = append(order, Construct(op, ImmOn, ShiftNone, s))
			}
			if sh.shifts == 0 {
				order = append(order, Construct(op, ImmOff, ShiftNone, s))
				continue
			}
			for _, k := range carvedFirst {
				if int(k) < sh.shifts {
					order = append(order, Construct(op, ImmOff, k, s))
				}
			}
		}
	}
	return order
}
