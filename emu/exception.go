package emu

// Exception is an ARM7TDMI exception kind.
type Exception uint8

// Exceptions the core raises.
const (
	ExceptionReset Exception = iota
	ExceptionUndefined
	ExceptionSWI
	ExceptionIRQ
	ExceptionFIQ
)

// Exception vectors.
const (
	VectorReset     uint32 = 0x00
	VectorUndefined uint32 = 0x04
	VectorSWI       uint32 = 0x08
	VectorIRQ       uint32 = 0x18
	VectorFIQ       uint32 = 0x1C
)

var exceptionTargets = [...]struct {
	mode   Mode
	vector uint32
}{
	ExceptionReset:     {ModeSupervisor, VectorReset},
	ExceptionUndefined: {ModeUndefined, VectorUndefined},
	ExceptionSWI:       {ModeSupervisor, VectorSWI},
	ExceptionIRQ:       {ModeIRQ, VectorIRQ},
	ExceptionFIQ:       {ModeFIQ, VectorFIQ},
}

func (e Exception) String() string {
	switch e {
	case ExceptionReset:
		return "reset"
	case ExceptionUndefined:
		return "undefined"
	case ExceptionSWI:
		return "swi"
	case ExceptionIRQ:
		return "irq"
	case ExceptionFIQ:
		return "fiq"
	}
	return "exception?"
}

// enterException saves the CPSR into the target mode's SPSR, switches to
// that mode in ARM state with IRQs masked (and FIQs for FIQ and reset),
// stores the return address in its LR and jumps to the vector.
func (c *CPU) enterException(e Exception, returnAddr uint32) {
	target := exceptionTargets[e]

	old := c.regs.CPSR()
	next := old.WithMode(target.mode).WithT(false).WithI(true)
	if e == ExceptionFIQ || e == ExceptionReset {
		next = next.WithF(true)
	}

	c.regs.SetCPSR(next)
	c.regs.SetSPSR(old)
	c.regs.Set(RegLR, returnAddr)
	c.branch(target.vector)

	c.log.WithField("exception", e.String()).Debug("exception entry")
}
