package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/arm7sim/insts"
)

// Handler performs the effects of one instruction given its raw word.
type Handler func(c *CPU, word uint32) error

// Table binds every ARM identity to its handler.
type Table [insts.NumSpecs]Handler

// ThumbTable binds every Thumb identity to its handler.
type ThumbTable [insts.NumThumbSpecs]Handler

// NewTable generates the ARM dispatch table by binding a handler to every
// (family, immediate, shift, S) combination. Each S setting gets its own
// handler so flag updates are decided here rather than per instruction.
func NewTable() *Table {
	t := &Table{}
	for _, s := range insts.All() {
		t[s] = bind(s.Variant())
	}
	return t
}

// Handler returns the handler bound to s.
func (t *Table) Handler(s insts.Spec) Handler {
	return t[s]
}

func bind(v insts.Variant) Handler {
	switch v.Op {
	case insts.OpUndefined:
		return undefinedInstruction
	case insts.OpB:
		return branchWithLink(false)
	case insts.OpBL:
		return branchWithLink(true)
	case insts.OpBX:
		return branchExchange
	case insts.OpSWI:
		return softwareInterrupt
	case insts.OpSWP:
		return swap(false)
	case insts.OpSWPB:
		return swap(true)
	case insts.OpMRSCPSR:
		return moveFromPSR(false)
	case insts.OpMRSSPSR:
		return moveFromPSR(true)
	case insts.OpMSRCPSR:
		return moveToPSR(false, v.Imm)
	case insts.OpMSRSPSR:
		return moveToPSR(true, v.Imm)
	case insts.OpLDM:
		return blockTransfer(true)
	case insts.OpSTM:
		return blockTransfer(false)
	case insts.OpMUL, insts.OpMLA:
		return multiply(v.Op == insts.OpMLA, v.S)
	case insts.OpUMULL, insts.OpUMLAL, insts.OpSMULL, insts.OpSMLAL:
		return multiplyLong(v.Op, v.S)
	case insts.OpSTRH, insts.OpLDRH, insts.OpLDRSB, insts.OpLDRSH:
		return halfwordTransfer(v.Op, v.Imm)
	case insts.OpSTR, insts.OpLDR, insts.OpSTRB, insts.OpLDRB:
		return singleTransfer(v.Op, v.Imm, v.Shift)
	}

	if v.Op.IsDataProcessing() {
		return dataProcessing(v)
	}

	panic(fmt.Sprintf("emu: no handler for %v", v.Op))
}

// NewThumbTable generates the Thumb dispatch table. Thumb execution is not
// implemented: every defined identity traps with ErrUnimplemented.
func NewThumbTable() *ThumbTable {
	t := &ThumbTable{}
	t[insts.ThumbUndefined] = undefinedInstruction
	for s := insts.ThumbSpec(1); s < insts.NumThumbSpecs; s++ {
		t[s] = unimplementedThumb(s)
	}
	return t
}

func undefinedInstruction(c *CPU, word uint32) error {
	c.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08X", c.current.Addr),
		"word": fmt.Sprintf("0x%08X", word),
		"spec": insts.SpecUndefined.String(),
	}).Error("undefined instruction")

	if c.undefinedException {
		c.enterException(ExceptionUndefined, c.nextAddr())
		return nil
	}

	return fmt.Errorf("%w: 0x%08X at PC=0x%08X", ErrUndefinedInstruction, word, c.current.Addr)
}

func unimplementedThumb(s insts.ThumbSpec) Handler {
	return func(c *CPU, word uint32) error {
		return fmt.Errorf("%w: thumb %v 0x%04X at PC=0x%08X",
			ErrUnimplemented, s, word, c.current.Addr)
	}
}
