package emu

import "fmt"

// Register aliases.
const (
	RegSP = 13
	RegLR = 14
	RegPC = 15
)

// Physical slot layout. User and System share slots 0-15; the other modes
// bank the registers listed next to their first slot.
const (
	slotUser = 0  // r0-r15
	slotFIQ  = 16 // r8-r14
	slotIRQ  = 23 // r13-r14
	slotSVC  = 25 // r13-r14
	slotABT  = 27 // r13-r14
	slotUND  = 29 // r13-r14

	numSlots = 31
)

// SPSR indices.
const (
	spsrFIQ = iota
	spsrIRQ
	spsrSVC
	spsrABT
	spsrUND

	numSPSRs

	noSPSR = -1
)

// RegFile is the banked ARM7TDMI register file: 31 physical registers, the
// CPSR and five SPSRs. Logical registers are resolved through an active
// table rebuilt only when the mode changes.
type RegFile struct {
	phys   [numSlots]uint32
	active [16]uint8

	cpsr PSR
	spsr [numSPSRs]PSR

	// spsrIndex selects the visible SPSR, noSPSR in User and System mode.
	spsrIndex int
}

// NewRegFile creates a register file in the reset state: Supervisor mode,
// ARM state, IRQ and FIQ disabled.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.cpsr = PSR(0).WithI(true).WithF(true).WithMode(ModeSupervisor)
	r.remap(ModeSupervisor)
	return r
}

// bankOf returns the first physical slot and first banked logical register
// of mode m.
func bankOf(m Mode) (slot, first int) {
	switch m {
	case ModeFIQ:
		return slotFIQ, 8
	case ModeIRQ:
		return slotIRQ, 13
	case ModeSupervisor:
		return slotSVC, 13
	case ModeAbort:
		return slotABT, 13
	case ModeUndefined:
		return slotUND, 13
	}
	return slotUser, 16
}

func spsrIndexOf(m Mode) int {
	switch m {
	case ModeFIQ:
		return spsrFIQ
	case ModeIRQ:
		return spsrIRQ
	case ModeSupervisor:
		return spsrSVC
	case ModeAbort:
		return spsrABT
	case ModeUndefined:
		return spsrUND
	}
	return noSPSR
}

func (r *RegFile) remap(m Mode) {
	slot, first := bankOf(m)
	for i := range r.active {
		r.active[i] = uint8(i)
	}
	for i := first; i < RegPC; i++ {
		r.active[i] = uint8(slot + i - first)
	}
	r.spsrIndex = spsrIndexOf(m)
}

// Get reads logical register i (0-15) of the current mode.
func (r *RegFile) Get(i int) uint32 {
	return r.phys[r.active[i&0xF]]
}

// Set writes logical register i (0-15) of the current mode.
func (r *RegFile) Set(i int, v uint32) {
	r.phys[r.active[i&0xF]] = v
}

// GetUser reads logical register i of the User bank regardless of mode.
func (r *RegFile) GetUser(i int) uint32 {
	return r.phys[slotUser+i&0xF]
}

// SetUser writes logical register i of the User bank regardless of mode.
func (r *RegFile) SetUser(i int, v uint32) {
	r.phys[slotUser+i&0xF] = v
}

// GetBanked reads logical register i as seen from mode m.
func (r *RegFile) GetBanked(m Mode, i int) uint32 {
	i &= 0xF
	slot, first := bankOf(m)
	if i >= first && i < RegPC {
		return r.phys[slot+i-first]
	}
	return r.phys[i]
}

// CPSR returns the current program status register.
func (r *RegFile) CPSR() PSR {
	return r.cpsr
}

// SetCPSR replaces the CPSR. A change of mode switches register banks.
func (r *RegFile) SetCPSR(p PSR) {
	m := p.Mode()
	if !m.Valid() {
		panic(fmt.Sprintf("emu: illegal processor mode %#x", uint32(m)))
	}
	if m != r.cpsr.Mode() {
		r.remap(m)
	}
	r.cpsr = p
}

// SetFlags replaces only the condition flags of the CPSR.
func (r *RegFile) SetFlags(p PSR) {
	r.cpsr = r.cpsr&0x0FFFFFFF | p&0xF0000000
}

// Mode returns the current processor mode.
func (r *RegFile) Mode() Mode {
	return r.cpsr.Mode()
}

// SwitchMode changes the processor mode, rebanking r8-r14 and selecting the
// mode's SPSR. It panics on an illegal mode.
func (r *RegFile) SwitchMode(m Mode) {
	r.SetCPSR(r.cpsr.WithMode(m))
}

// HasSPSR reports whether the current mode has an SPSR.
func (r *RegFile) HasSPSR() bool {
	return r.spsrIndex != noSPSR
}

// SPSR returns the saved status register of the current mode. It panics in
// User and System mode, which have none.
func (r *RegFile) SPSR() PSR {
	if r.spsrIndex == noSPSR {
		panic(fmt.Sprintf("emu: mode %v has no SPSR", r.cpsr.Mode()))
	}
	return r.spsr[r.spsrIndex]
}

// SetSPSR writes the saved status register of the current mode. It panics
// in User and System mode.
func (r *RegFile) SetSPSR(p PSR) {
	if r.spsrIndex == noSPSR {
		panic(fmt.Sprintf("emu: mode %v has no SPSR", r.cpsr.Mode()))
	}
	r.spsr[r.spsrIndex] = p
}

// Reset returns the register file to its reset state.
func (r *RegFile) Reset() {
	*r = *NewRegFile()
}
