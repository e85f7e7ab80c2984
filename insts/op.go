package insts

import "fmt"

// Op is an ARM instruction family: a base mnemonic before its immediate,
// shift and set-flags variants are applied.
type Op uint8

// ARM instruction families, in identity order.
const (
	OpUndefined Op = iota

	// Fixed families, one identity each.
	OpB
	OpBL
	OpBX
	OpSWI
	OpSWP
	OpSWPB
	OpMRSCPSR
	OpMRSSPSR
	OpLDM
	OpSTM

	// PSR writes: register or immediate source.
	OpMSRCPSR
	OpMSRSPSR

	// Multiplies: S off or on.
	OpMUL
	OpMLA
	OpUMULL
	OpUMLAL
	OpSMULL
	OpSMLAL

	// Halfword and signed transfers: register or immediate offset.
	OpSTRH
	OpLDRH
	OpLDRSB
	OpLDRSH

	// Word and byte transfers: seven immediate-amount shifts or an
	// immediate offset.
	OpSTR
	OpLDR
	OpSTRB
	OpLDRB

	// Tst-like data processing: flags always set, no destination.
	OpTST
	OpTEQ
	OpCMP
	OpCMN

	// And-like data processing: destination plus optional flags.
	OpAND
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpORR
	OpMOV
	OpBIC
	OpMVN

	NumOps
)

var opNames = [NumOps]string{
	"undefined",
	"b", "bl", "bx", "swi", "swp", "swpb", "mrs_cpsr", "mrs_spsr", "ldm", "stm",
	"msr_cpsr", "msr_spsr",
	"mul", "mla", "umull", "umlal", "smull", "smlal",
	"strh", "ldrh", "ldrsb", "ldrsh",
	"str", "ldr", "strb", "ldrb",
	"tst", "teq", "cmp", "cmn",
	"and", "eor", "sub", "rsb", "add", "adc", "sbc", "rsc", "orr", "mov", "bic", "mvn",
}

func (o Op) String() string {
	if o >= NumOps {
		return fmt.Sprintf("op(%d)", uint8(o))
	}
	return opNames[o]
}

// IsDataProcessing reports whether the family is one of the sixteen
// data-processing operations.
func (o Op) IsDataProcessing() bool {
	return o >= OpTST && o <= OpMVN
}

// IsTstLike reports whether the family always sets flags and writes no
// destination register.
func (o Op) IsTstLike() bool {
	return o >= OpTST && o <= OpCMN
}

// IsLogical reports whether a data-processing family computes its carry from
// the shifter rather than from the adder.
func (o Op) IsLogical() bool {
	switch o {
	case OpAND, OpEOR, OpTST, OpTEQ, OpORR, OpMOV, OpBIC, OpMVN:
		return true
	}
	return false
}

// DPOpcode returns the 4-bit data-processing opcode field (bits 24:21) of a
// data-processing family.
func (o Op) DPOpcode() uint32 {
	switch o {
	case OpAND:
		return 0x0
	case OpEOR:
		return 0x1
	case OpSUB:
		return 0x2
	case OpRSB:
		return 0x3
	case OpADD:
		return 0x4
	case OpADC:
		return 0x5
	case OpSBC:
		return 0x6
	case OpRSC:
		return 0x7
	case OpTST:
		return 0x8
	case OpTEQ:
		return 0x9
	case OpCMP:
		return 0xA
	case OpCMN:
		return 0xB
	case OpORR:
		return 0xC
	case OpMOV:
		return 0xD
	case OpBIC:
		return 0xE
	case OpMVN:
		return 0xF
	}
	panic("insts: " + o.String() + " is not a data-processing family")
}

// ShiftKind selects how the second operand of an instruction is shifted.
type ShiftKind uint8

// Shift kinds. The first seven can be encoded with an immediate shift
// amount; the RS kinds take their amount from bits 7:0 of a register.
const (
	ShiftLSL   ShiftKind = iota // LSL #0..31
	ShiftLSR                    // LSR #1..31
	ShiftASR                    // ASR #1..31
	ShiftROR                    // ROR #1..31
	ShiftRRX                    // ROR #0 encodes RRX
	ShiftLSR32                  // LSR #0 encodes LSR #32
	ShiftASR32                  // ASR #0 encodes ASR #32
	ShiftRSLSL
	ShiftRSLSR
	ShiftRSASR
	ShiftRSROR

	// ShiftNone marks immediate operands and families without a shift.
	ShiftNone
)

// NumImmShiftKinds is the number of shift kinds with an immediate amount.
const NumImmShiftKinds = 7

// NumShiftKinds is the number of real shift kinds, excluding ShiftNone.
const NumShiftKinds = 11

var shiftNames = [...]string{
	"lsl", "lsr", "asr", "ror", "rrx", "lsr32", "asr32",
	"rslsl", "rslsr", "rsasr", "rsror", "none",
}

func (k ShiftKind) String() string {
	if int(k) < len(shiftNames) {
		return shiftNames[k]
	}
	return "shift?"
}

// IsRegisterShift reports whether the shift amount comes from a register.
func (k ShiftKind) IsRegisterShift() bool {
	return k >= ShiftRSLSL && k <= ShiftRSROR
}

// Type returns the 2-bit shift type field (bits 6:5) encoding the kind.
func (k ShiftKind) Type() uint32 {
	switch k {
	case ShiftLSL, ShiftRSLSL:
		return 0
	case ShiftLSR, ShiftLSR32, ShiftRSLSR:
		return 1
	case ShiftASR, ShiftASR32, ShiftRSASR:
		return 2
	case ShiftROR, ShiftRRX, ShiftRSROR:
		return 3
	}
	return 0
}

// Immediate selects between a register and an immediate operand.
type Immediate bool

// Immediate operand settings.
const (
	ImmOff Immediate = false
	ImmOn  Immediate = true
)

// SFlag is the set-flags bit of an instruction.
type SFlag bool

// Set-flags settings.
const (
	SOff SFlag = false
	SOn  SFlag = true
)
