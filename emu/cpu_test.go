package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("CPU", func() {
	Describe("reset state", func() {
		It("should start in Supervisor mode at address 0", func() {
			c := emu.NewCPU()
			Expect(c.PC()).To(BeZero())
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeSupervisor))
			Expect(c.Thumb()).To(BeFalse())
		})

		It("should return to the reset vector on Reset", func() {
			c, _ := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			userMode(c)
			run(c, 1)

			c.Reset()
			Expect(c.PC()).To(Equal(emu.VectorReset))
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeSupervisor))
			Expect(c.InstructionCount()).To(BeZero())
			Expect(c.Cycles()).To(Equal(emu.CycleStats{}))
		})
	})

	Describe("pipeline", func() {
		It("should read the PC as the instruction address plus 8", func() {
			c, _ := newCPU(
				encodeDPImm(dpMOV, false, 1, 0, 0, 0),
				encodeDPReg(dpMOV, false, 0, 0, 15, shLSL, 0),
			)
			run(c, 2)
			Expect(c.Reg(0)).To(Equal(origin + 4 + 8))
		})

		It("should read the PC plus 12 with a register-specified shift", func() {
			c, _ := newCPU(
				encodeDPImm(dpMOV, false, 2, 0, 0, 0),
				encodeDPRegShift(dpMOV, false, 0, 0, 15, shLSL, 2),
			)
			run(c, 2)
			Expect(c.Reg(0)).To(Equal(origin + 4 + 12))
		})

		It("should keep two words prefetched", func() {
			c, _ := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			run(c, 1)
			Expect(c.Queue()).To(Equal(1))
			Expect(c.PC()).To(Equal(origin + 4))
		})

		It("should flush the prefetched words on a branch", func() {
			c, _ := newCPU(
				encodeB(8, false),
				encodeDPImm(dpMOV, false, 0, 0, 1, 0),
				encodeDPImm(dpMOV, false, 0, 0, 2, 0),
				encodeDPImm(dpMOV, false, 0, 0, 3, 0),
				encodeDPImm(dpMOV, false, 0, 0, 4, 0),
			)

			r := c.Step()
			Expect(r.Branched).To(BeTrue())
			Expect(c.Queue()).To(BeZero())
			Expect(c.PC()).To(Equal(origin + 16))

			r = c.Step()
			Expect(r.Addr).To(Equal(origin + 16))
			Expect(c.Reg(0)).To(Equal(uint32(4)))
		})
	})

	Describe("conditions", func() {
		It("should skip an instruction whose condition fails", func() {
			moveq := encodeDPImm(dpMOV, false, 0, 0, 9, 0)&0x0FFFFFFF | uint32(insts.CondEQ)<<28
			c, _ := newCPU(moveq)
			userMode(c)

			r := c.Step()
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.Skipped).To(BeTrue())
			Expect(c.Reg(0)).To(BeZero())
			Expect(c.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should execute an instruction whose condition holds", func() {
			moveq := encodeDPImm(dpMOV, false, 0, 0, 9, 0)&0x0FFFFFFF | uint32(insts.CondEQ)<<28
			c, _ := newCPU(encodeDPImm(dpCMP, true, 0, 0, 0, 0), moveq)
			run(c, 2)
			Expect(c.Reg(0)).To(Equal(uint32(9)))
		})
	})

	Describe("undefined instructions", func() {
		const undefined = uint32(0xE6000010)

		It("should return ErrUndefinedInstruction and keep the PC", func() {
			c, _ := newCPU(undefined)
			r := c.Step()
			Expect(errors.Is(r.Err, emu.ErrUndefinedInstruction)).To(BeTrue())
			Expect(r.Spec).To(Equal(insts.SpecUndefined))
			Expect(c.PC()).To(Equal(origin))
			Expect(c.InstructionCount()).To(BeZero())
		})

		It("should log the fault through the configured logger", func() {
			logger, hook := test.NewNullLogger()
			c, _ := newCPUWith([]emu.CPUOption{emu.WithLogger(logger)}, undefined)
			c.Step()

			entry := hook.LastEntry()
			Expect(entry).NotTo(BeNil())
			Expect(entry.Level).To(Equal(logrus.ErrorLevel))
			Expect(entry.Data).To(HaveKeyWithValue("component", "arm7tdmi"))
			Expect(entry.Data).To(HaveKeyWithValue("word", "0xE6000010"))
		})

		It("should enter the Undefined exception when enabled", func() {
			c, _ := newCPUWith([]emu.CPUOption{emu.WithUndefinedException(true)}, undefined)
			userMode(c)
			before := c.CPSR()

			r := c.Step()
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.Branched).To(BeTrue())
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeUndefined))
			Expect(c.CPSR().I()).To(BeTrue())
			Expect(c.SPSR()).To(Equal(before))
			Expect(c.Reg(emu.RegLR)).To(Equal(origin + 4))
			Expect(c.PC()).To(Equal(emu.VectorUndefined))
		})
	})

	Describe("interrupts", func() {
		It("should take an IRQ before the next instruction and return from it", func() {
			c, mem := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			mem.Write32(emu.VectorIRQ, encodeDPImm(dpSUB, true, 15, 14, 4, 0))
			userMode(c)
			c.RaiseIRQ()

			r := c.Step()
			Expect(r.Addr).To(Equal(emu.VectorIRQ))
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeUser))
			Expect(c.PC()).To(Equal(origin))

			r = c.Step()
			Expect(r.Addr).To(Equal(origin))
			Expect(c.Reg(0)).To(Equal(uint32(1)))
		})

		It("should bank LR and SPSR on IRQ entry", func() {
			c, _ := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			userMode(c)
			c.RaiseIRQ()
			c.Step()

			Expect(c.CPSR().Mode()).To(Equal(emu.ModeIRQ))
			Expect(c.CPSR().I()).To(BeTrue())
			Expect(c.CPSR().F()).To(BeFalse())
			Expect(c.Reg(emu.RegLR)).To(Equal(origin + 4))
			Expect(c.SPSR().Mode()).To(Equal(emu.ModeUser))
		})

		It("should not take a masked IRQ", func() {
			c, _ := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			c.RaiseIRQ()
			r := c.Step()
			Expect(r.Addr).To(Equal(origin))
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeSupervisor))
		})

		It("should prefer FIQ over IRQ", func() {
			c, _ := newCPU(encodeDPImm(dpMOV, false, 0, 0, 1, 0))
			userMode(c)
			c.RaiseIRQ()
			c.RaiseFIQ()

			r := c.Step()
			Expect(r.Addr).To(Equal(emu.VectorFIQ))
			Expect(c.CPSR().Mode()).To(Equal(emu.ModeFIQ))
			Expect(c.CPSR().F()).To(BeTrue())
		})
	})

	Describe("cycle accounting", func() {
		It("should count one N then S fetches for straight-line code", func() {
			c, _ := newCPU(
				encodeDPImm(dpMOV, false, 0, 0, 1, 0),
				encodeDPImm(dpMOV, false, 0, 0, 2, 0),
				encodeDPImm(dpMOV, false, 0, 0, 3, 0),
			)
			run(c, 3)
			Expect(c.Cycles()).To(Equal(emu.CycleStats{N: 1, S: 3}))
		})

		It("should refill with one N and one S fetch after a branch", func() {
			c, _ := newCPU(encodeB(0, false))
			run(c, 1)
			before := c.Cycles()
			run(c, 1)
			Expect(c.Cycles().Sub(before)).To(Equal(emu.CycleStats{N: 1, S: 1}))
		})

		It("should add an internal cycle for a register-specified shift", func() {
			c, _ := newCPU(encodeDPRegShift(dpMOV, false, 0, 0, 1, shLSL, 2))
			run(c, 1)
			Expect(c.Cycles().I).To(Equal(uint64(1)))
		})
	})

	Describe("limits", func() {
		It("should stop at the instruction limit", func() {
			c, _ := newCPUWith([]emu.CPUOption{emu.WithMaxInstructions(2)},
				encodeDPImm(dpMOV, false, 0, 0, 1, 0),
				encodeDPImm(dpMOV, false, 0, 0, 2, 0),
				encodeDPImm(dpMOV, false, 0, 0, 3, 0),
			)
			run(c, 2)
			r := c.Step()
			Expect(r.Err).To(MatchError(emu.ErrMaxInstructions))
			Expect(c.Reg(0)).To(Equal(uint32(2)))
		})

		It("should return -1 from Run on an error", func() {
			c, _ := newCPU(0xE6000010)
			Expect(c.Run()).To(Equal(int64(-1)))
		})
	})

	Describe("Thumb state", func() {
		It("should trap Thumb instructions as unimplemented", func() {
			c, mem := newCPU()
			mem.Write16(origin, 0x2005)
			c.SetCPSR(c.CPSR().WithT(true))
			c.SetPC(origin)

			r := c.Step()
			Expect(r.Thumb).To(BeTrue())
			Expect(r.ThumbSpec).To(Equal(insts.ThumbMOVImm))
			Expect(errors.Is(r.Err, emu.ErrUnimplemented)).To(BeTrue())
			Expect(c.PC()).To(Equal(origin))
		})
	})

	Describe("Execute", func() {
		It("should run one instruction at the current PC", func() {
			c, _ := newCPU()
			word := encodeDPReg(dpMOV, false, 0, 0, 15, shLSL, 0)

			Expect(c.Execute(word, c.Decoder().Decode(word))).To(Succeed())
			Expect(c.Reg(0)).To(Equal(origin + 8))
			Expect(c.PC()).To(Equal(origin + 4))
			Expect(c.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should follow a branch", func() {
			c, _ := newCPU()
			word := encodeB(0x100, true)

			Expect(c.Execute(word, insts.Construct(insts.OpBL, insts.ImmOff, insts.ShiftNone, insts.SOff))).To(Succeed())
			Expect(c.PC()).To(Equal(origin + 8 + 0x100))
			Expect(c.Reg(emu.RegLR)).To(Equal(origin + 4))
		})

		It("should leave the PC unchanged on an error", func() {
			c, _ := newCPU()
			Expect(c.Execute(0xE6000010, insts.SpecUndefined)).
				To(MatchError(emu.ErrUndefinedInstruction))
			Expect(c.PC()).To(Equal(origin))
		})
	})
})
