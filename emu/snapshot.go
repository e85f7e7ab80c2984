package emu

import (
	"fmt"
	"strings"
)

// Snapshot is a value copy of the register file.
type Snapshot struct {
	Mode Mode

	// Regs holds r0-r15 as seen from the current mode.
	Regs [16]uint32

	// User holds the User/System bank.
	User [16]uint32

	FIQ [7]uint32 // r8_fiq-r14_fiq
	IRQ [2]uint32 // r13_irq, r14_irq
	SVC [2]uint32 // r13_svc, r14_svc
	ABT [2]uint32 // r13_abt, r14_abt
	UND [2]uint32 // r13_und, r14_und

	CPSR PSR

	// SPSR is indexed FIQ, IRQ, SVC, ABT, UND.
	SPSR [5]PSR
}

// Snapshot copies the register state.
func (r *RegFile) Snapshot() Snapshot {
	s := Snapshot{
		Mode: r.cpsr.Mode(),
		CPSR: r.cpsr,
		SPSR: r.spsr,
	}
	for i := range s.Regs {
		s.Regs[i] = r.Get(i)
	}
	copy(s.User[:], r.phys[slotUser:slotUser+16])
	copy(s.FIQ[:], r.phys[slotFIQ:slotFIQ+7])
	copy(s.IRQ[:], r.phys[slotIRQ:slotIRQ+2])
	copy(s.SVC[:], r.phys[slotSVC:slotSVC+2])
	copy(s.ABT[:], r.phys[slotABT:slotABT+2])
	copy(s.UND[:], r.phys[slotUND:slotUND+2])
	return s
}

var regNames = [16]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "sp", "lr", "pc",
}

// String renders the registers of the current mode, four per line,
// followed by the CPSR and, where the mode has one, the SPSR.
func (s Snapshot) String() string {
	var b strings.Builder
	for i, v := range s.Regs {
		fmt.Fprintf(&b, "%4s=%08X", regNames[i], v)
		if i%4 == 3 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	fmt.Fprintf(&b, "cpsr=%08X [%v]", uint32(s.CPSR), s.CPSR)
	if idx := spsrIndexOf(s.Mode); idx != noSPSR {
		fmt.Fprintf(&b, " spsr=%08X [%v]", uint32(s.SPSR[idx]), s.SPSR[idx])
	}
	return b.String()
}
