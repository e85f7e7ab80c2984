// Package emu provides functional ARM7TDMI emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/arm7sim/bitfield"
)

// Mode is a processor mode, the value of PSR bits 4:0.
type Mode uint32

// Processor modes.
const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// Valid reports whether m is one of the seven legal mode encodings.
func (m Mode) Valid() bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	}
	return false
}

// Privileged reports whether m may write the control byte of the CPSR.
func (m Mode) Privileged() bool {
	return m != ModeUser
}

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "usr"
	case ModeFIQ:
		return "fiq"
	case ModeIRQ:
		return "irq"
	case ModeSupervisor:
		return "svc"
	case ModeAbort:
		return "abt"
	case ModeUndefined:
		return "und"
	case ModeSystem:
		return "sys"
	}
	return fmt.Sprintf("mode(%#x)", uint32(m))
}

// PSR bit positions.
const (
	bitN = 31
	bitZ = 30
	bitC = 29
	bitV = 28
	bitI = 7
	bitF = 6
	bitT = 5
)

// PSR is a program status register value. Setters return a new value and
// never disturb bits they do not name.
type PSR uint32

// N returns the negative flag.
func (p PSR) N() bool { return bitfield.Bit(uint32(p), bitN) }

// Z returns the zero flag.
func (p PSR) Z() bool { return bitfield.Bit(uint32(p), bitZ) }

// C returns the carry flag.
func (p PSR) C() bool { return bitfield.Bit(uint32(p), bitC) }

// V returns the overflow flag.
func (p PSR) V() bool { return bitfield.Bit(uint32(p), bitV) }

// I reports whether IRQs are disabled.
func (p PSR) I() bool { return bitfield.Bit(uint32(p), bitI) }

// F reports whether FIQs are disabled.
func (p PSR) F() bool { return bitfield.Bit(uint32(p), bitF) }

// T reports whether the processor is in Thumb state.
func (p PSR) T() bool { return bitfield.Bit(uint32(p), bitT) }

// Mode returns the mode field.
func (p PSR) Mode() Mode { return Mode(bitfield.Range(uint32(p), 4, 0)) }

// WithN returns p with the negative flag set to b.
func (p PSR) WithN(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitN, b)) }

// WithZ returns p with the zero flag set to b.
func (p PSR) WithZ(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitZ, b)) }

// WithC returns p with the carry flag set to b.
func (p PSR) WithC(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitC, b)) }

// WithV returns p with the overflow flag set to b.
func (p PSR) WithV(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitV, b)) }

// WithI returns p with the IRQ disable bit set to b.
func (p PSR) WithI(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitI, b)) }

// WithF returns p with the FIQ disable bit set to b.
func (p PSR) WithF(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitF, b)) }

// WithT returns p with the Thumb bit set to b.
func (p PSR) WithT(b bool) PSR { return PSR(bitfield.SetBit(uint32(p), bitT, b)) }

// WithMode returns p with the mode field replaced. It panics if m is not a
// legal mode.
func (p PSR) WithMode(m Mode) PSR {
	if !m.Valid() {
		panic(fmt.Sprintf("emu: illegal processor mode %#x", uint32(m)))
	}
	return PSR(bitfield.SetRange(uint32(p), 4, 0, uint32(m)))
}

// WithNZ sets N and Z from a 32-bit result.
func (p PSR) WithNZ(result uint32) PSR {
	return p.WithN(bitfield.Bit(result, 31)).WithZ(result == 0)
}

func (p PSR) String() string {
	flag := func(b bool, c byte) byte {
		if b {
			return c
		}
		return '-'
	}
	return fmt.Sprintf("%c%c%c%c %c%c%c %v",
		flag(p.N(), 'N'), flag(p.Z(), 'Z'), flag(p.C(), 'C'), flag(p.V(), 'V'),
		flag(p.I(), 'I'), flag(p.F(), 'F'), flag(p.T(), 'T'), p.Mode())
}
