package insts

import "fmt"

// ThumbSpec is the identity of one 16-bit Thumb instruction operation.
// ThumbUndefined is the sentinel for words matching no entry.
type ThumbSpec uint8

// Thumb identities, grouped by encoding format.
const (
	ThumbUndefined ThumbSpec = iota

	// Move shifted register.
	ThumbLSLImm
	ThumbLSRImm
	ThumbASRImm

	// Add/subtract.
	ThumbADDReg
	ThumbSUBReg
	ThumbADDImm3
	ThumbSUBImm3

	// Move/compare/add/subtract immediate.
	ThumbMOVImm
	ThumbCMPImm
	ThumbADDImm8
	ThumbSUBImm8

	// ALU operations.
	ThumbAND
	ThumbEOR
	ThumbLSL
	ThumbLSR
	ThumbASR
	ThumbADC
	ThumbSBC
	ThumbROR
	ThumbTST
	ThumbNEG
	ThumbCMP
	ThumbCMN
	ThumbORR
	ThumbMUL
	ThumbBIC
	ThumbMVN

	// Hi register operations and branch exchange.
	ThumbADDHi
	ThumbCMPHi
	ThumbMOVHi
	ThumbBX

	ThumbLDRPC

	// Load/store with register offset.
	ThumbSTRReg
	ThumbSTRBReg
	ThumbLDRReg
	ThumbLDRBReg

	// Load/store sign-extended byte/halfword.
	ThumbSTRHReg
	ThumbLDRSB
	ThumbLDRHReg
	ThumbLDRSH

	// Load/store with immediate offset.
	ThumbSTRImm
	ThumbLDRImm
	ThumbSTRBImm
	ThumbLDRBImm

	// Load/store halfword.
	ThumbSTRHImm
	ThumbLDRHImm

	// SP-relative load/store.
	ThumbSTRSP
	ThumbLDRSP

	// Load address.
	ThumbADDPC
	ThumbADDSP

	ThumbADJSP
	ThumbPUSH
	ThumbPOP
	ThumbSTMIA
	ThumbLDMIA
	ThumbBCond
	ThumbSWI
	ThumbB
	ThumbBLHigh
	ThumbBLLow

	NumThumbSpecs
)

var thumbNames = [NumThumbSpecs]string{
	"undefined",
	"lsl_imm", "lsr_imm", "asr_imm",
	"add_reg", "sub_reg", "add_imm3", "sub_imm3",
	"mov_imm", "cmp_imm", "add_imm8", "sub_imm8",
	"and", "eor", "lsl", "lsr", "asr", "adc", "sbc", "ror",
	"tst", "neg", "cmp", "cmn", "orr", "mul", "bic", "mvn",
	"add_hi", "cmp_hi", "mov_hi", "bx",
	"ldr_pc",
	"str_reg", "strb_reg", "ldr_reg", "ldrb_reg",
	"strh_reg", "ldrsb", "ldrh_reg", "ldrsh",
	"str_imm", "ldr_imm", "strb_imm", "ldrb_imm",
	"strh_imm", "ldrh_imm",
	"str_sp", "ldr_sp",
	"add_pc", "add_sp",
	"adj_sp", "push", "pop", "stmia", "ldmia",
	"b_cond", "swi", "b", "bl_high", "bl_low",
}

func (t ThumbSpec) String() string {
	if t >= NumThumbSpecs {
		return fmt.Sprintf("thumb(%d)", uint8(t))
	}
	return thumbNames[t]
}

// Valid reports whether t lies inside the Thumb identity space.
func (t ThumbSpec) Valid() bool {
	return t < NumThumbSpecs
}

// thumbEntryFor returns the decode entry of a Thumb identity. Masks and
// opcodes occupy the low 16 bits.
func thumbEntryFor(t ThumbSpec) Entry {
	switch {
	case t == ThumbUndefined:
		return undefinedEntry
	case t <= ThumbASRImm:
		return Entry{Mask: 0xF800, Opcode: uint32(t-ThumbLSLImm) << 11}
	case t <= ThumbSUBImm3:
		return Entry{Mask: 0xFE00, Opcode: 0x1800 | uint32(t-ThumbADDReg)<<9}
	case t <= ThumbSUBImm8:
		return Entry{Mask: 0xF800, Opcode: 0x2000 | uint32(t-ThumbMOVImm)<<11}
	case t <= ThumbMVN:
		return Entry{Mask: 0xFFC0, Opcode: 0x4000 | uint32(t-ThumbAND)<<6}
	case t <= ThumbBX:
		return Entry{Mask: 0xFF00, Opcode: 0x4400 | uint32(t-ThumbADDHi)<<8}
	case t == ThumbLDRPC:
		return Entry{Mask: 0xF800, Opcode: 0x4800}
	case t <= ThumbLDRBReg:
		return Entry{Mask: 0xFE00, Opcode: 0x5000 | uint32(t-ThumbSTRReg)<<10}
	case t <= ThumbLDRSH:
		return Entry{Mask: 0xFE00, Opcode: 0x5200 | uint32(t-ThumbSTRHReg)<<10}
	case t <= ThumbLDRBImm:
		return Entry{Mask: 0xF800, Opcode: 0x6000 | uint32(t-ThumbSTRImm)<<11}
	case t <= ThumbLDRHImm:
		return Entry{Mask: 0xF800, Opcode: 0x8000 | uint32(t-ThumbSTRHImm)<<11}
	case t <= ThumbLDRSP:
		return Entry{Mask: 0xF800, Opcode: 0x9000 | uint32(t-ThumbSTRSP)<<11}
	case t <= ThumbADDSP:
		return Entry{Mask: 0xF800, Opcode: 0xA000 | uint32(t-ThumbADDPC)<<11}
	case t == ThumbADJSP:
		return Entry{Mask: 0xFF00, Opcode: 0xB000}
	case t == ThumbPUSH:
		return Entry{Mask: 0xFE00, Opcode: 0xB400}
	case t == ThumbPOP:
		return Entry{Mask: 0xFE00, Opcode: 0xBC00}
	case t == ThumbSTMIA:
		return Entry{Mask: 0xF800, Opcode: 0xC000}
	case t == ThumbLDMIA:
		return Entry{Mask: 0xF800, Opcode: 0xC800}
	case t == ThumbBCond:
		return Entry{Mask: 0xF000, Opcode: 0xD000}
	case t == ThumbSWI:
		return Entry{Mask: 0xFF00, Opcode: 0xDF00}
	case t == ThumbB:
		return Entry{Mask: 0xF800, Opcode: 0xE000}
	case t == ThumbBLHigh:
		return Entry{Mask: 0xF800, Opcode: 0xF000}
	case t == ThumbBLLow:
		return Entry{Mask: 0xF800, Opcode: 0xF800}
	}
	panic(fmt.Sprintf("insts: no such thumb identity %d", uint8(t)))
}

// thumbOrder tries SWI ahead of the conditional branch whose mask it
// refines. Every other pair of entries is disjoint.
func thumbOrder() []ThumbSpec {
	order := []ThumbSpec{ThumbSWI}
	for t := ThumbSpec(1); t < NumThumbSpecs; t++ {
		if t != ThumbSWI {
			order = append(order, t)
		}
	}
	return order
}

func (d *Decoder) buildThumb() {
	for t := range d.thumbEntries {
		d.thumbEntries[t] = thumbEntryFor(ThumbSpec(t))
	}

	order := thumbOrder()
	for slot := range d.thumbCandidates {
		half := uint32(slot) << 8
		for _, t := range order {
			e := d.thumbEntries[t]
			if half&e.Mask&0xFF00 == e.Opcode&0xFF00 {
				d.thumbCandidates[slot] = append(d.thumbCandidates[slot], t)
			}
		}
	}
}

// DecodeThumb returns the identity of a 16-bit Thumb instruction, or
// ThumbUndefined if no entry matches.
func (d *Decoder) DecodeThumb(half uint16) ThumbSpec {
	word := uint32(half)
	for _, t := range d.thumbCandidates[half>>8] {
		if d.thumbEntries[t].Matches(word) {
			return t
		}
	}
	return ThumbUndefined
}

// ThumbEntry returns the decode table entry of a Thumb identity.
func (d *Decoder) ThumbEntry(t ThumbSpec) Entry {
	if !t.Valid() {
		return undefinedEntry
	}
	return d.thumbEntries[t]
}
