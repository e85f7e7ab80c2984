package emu_test

import (
	"github.com/sarchlab/arm7sim/emu"
)

const (
	al     = uint32(0xE) << 28
	origin = uint32(0x1000)
)

// Data-processing opcodes.
const (
	dpAND = 0x0
	dpEOR = 0x1
	dpSUB = 0x2
	dpRSB = 0x3
	dpADD = 0x4
	dpADC = 0x5
	dpSBC = 0x6
	dpRSC = 0x7
	dpTST = 0x8
	dpTEQ = 0x9
	dpCMP = 0xA
	dpCMN = 0xB
	dpORR = 0xC
	dpMOV = 0xD
	dpBIC = 0xE
	dpMVN = 0xF
)

// Shift types.
const (
	shLSL = 0
	shLSR = 1
	shASR = 2
	shROR = 3
)

func sbit(s bool) uint32 {
	if s {
		return 1 << 20
	}
	return 0
}

func encodeDPImm(opc uint32, s bool, rd, rn, imm8, rot uint32) uint32 {
	return al | 1<<25 | opc<<21 | sbit(s) | rn<<16 | rd<<12 | rot<<8 | imm8
}

func encodeDPReg(opc uint32, s bool, rd, rn, rm, shift, amount uint32) uint32 {
	return al | opc<<21 | sbit(s) | rn<<16 | rd<<12 | amount<<7 | shift<<5 | rm
}

func encodeDPRegShift(opc uint32, s bool, rd, rn, rm, shift, rs uint32) uint32 {
	return al | opc<<21 | sbit(s) | rn<<16 | rd<<12 | rs<<8 | shift<<5 | 1<<4 | rm
}

func encodeB(offset int32, link bool) uint32 {
	w := al | 0x0A000000 | uint32(offset>>2)&0xFFFFFF
	if link {
		w |= 1 << 24
	}
	return w
}

func encodeBX(rm uint32) uint32 {
	return al | 0x012FFF10 | rm
}

func encodeSWI(comment uint32) uint32 {
	return al | 0x0F000000 | comment&0xFFFFFF
}

// encodeSDTImm encodes LDR/STR/LDRB/STRB with a 12-bit immediate offset.
func encodeSDTImm(load, byteAccess, pre, up, wb bool, rd, rn, offset uint32) uint32 {
	w := al | 0x04000000 | rn<<16 | rd<<12 | offset&0xFFF
	w |= flag(pre, 24) | flag(up, 23) | flag(byteAccess, 22) | flag(wb, 21) | flag(load, 20)
	return w
}

// encodeSDTReg encodes LDR/STR/LDRB/STRB with a shifted register offset.
func encodeSDTReg(load, byteAccess, pre, up, wb bool, rd, rn, rm, shift, amount uint32) uint32 {
	w := al | 0x06000000 | rn<<16 | rd<<12 | amount<<7 | shift<<5 | rm
	w |= flag(pre, 24) | flag(up, 23) | flag(byteAccess, 22) | flag(wb, 21) | flag(load, 20)
	return w
}

// encodeHalfImm encodes a halfword transfer with an 8-bit immediate. sh is
// 1 for H, 2 for SB, 3 for SH.
func encodeHalfImm(load, pre, up, wb bool, sh, rd, rn, offset uint32) uint32 {
	w := al | 1<<22 | rn<<16 | rd<<12 | (offset>>4&0xF)<<8 | 1<<7 | sh<<5 | 1<<4 | offset&0xF
	w |= flag(pre, 24) | flag(up, 23) | flag(wb, 21) | flag(load, 20)
	return w
}

func encodeBlock(load, pre, up, s, wb bool, rn, list uint32) uint32 {
	w := al | 0x08000000 | rn<<16 | list&0xFFFF
	w |= flag(pre, 24) | flag(up, 23) | flag(s, 22) | flag(wb, 21) | flag(load, 20)
	return w
}

func encodeMUL(accumulate, s bool, rd, rn, rs, rm uint32) uint32 {
	return al | flag(accumulate, 21) | sbit(s) | rd<<16 | rn<<12 | rs<<8 | 0x90 | rm
}

func encodeMULL(signed, accumulate, s bool, rdHi, rdLo, rs, rm uint32) uint32 {
	return al | 1<<23 | flag(signed, 22) | flag(accumulate, 21) | sbit(s) |
		rdHi<<16 | rdLo<<12 | rs<<8 | 0x90 | rm
}

func flag(b bool, pos uint) uint32 {
	if b {
		return 1 << pos
	}
	return 0
}

// newCPU creates a CPU over a fresh memory holding program at origin.
func newCPU(program ...uint32) (*emu.CPU, *emu.Memory) {
	return newCPUWith(nil, program...)
}

func newCPUWith(opts []emu.CPUOption, program ...uint32) (*emu.CPU, *emu.Memory) {
	mem := emu.NewMemory()
	for i, w := range program {
		mem.Write32(origin+uint32(4*i), w)
	}
	c := emu.NewCPU(append([]emu.CPUOption{emu.WithBus(mem)}, opts...)...)
	c.SetPC(origin)
	return c, mem
}

// userMode drops to User mode with interrupts enabled and flags clear.
func userMode(c *emu.CPU) {
	c.SetCPSR(emu.PSR(0).WithMode(emu.ModeUser))
}

// run steps n instructions, stopping at the first error.
func run(c *emu.CPU, n int) emu.StepResult {
	var r emu.StepResult
	for i := 0; i < n; i++ {
		r = c.Step()
		if r.Err != nil {
			return r
		}
	}
	return r
}
