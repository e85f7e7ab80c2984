package emu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
)

var _ = Describe("Software interrupts", func() {
	var (
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		handler *emu.DefaultSWIHandler
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		handler = emu.NewDefaultSWIHandler(stdout, stderr)
	})

	withHandler := func(program ...uint32) (*emu.CPU, *emu.Memory) {
		return newCPUWith([]emu.CPUOption{emu.WithSWIHandler(handler)}, program...)
	}

	It("should exit with the status in r0", func() {
		c, _ := withHandler(
			encodeDPImm(dpMOV, false, 0, 0, 42, 0),
			encodeDPImm(dpMOV, false, 7, 0, 1, 0),
			encodeSWI(0),
		)
		Expect(c.Run()).To(Equal(int64(42)))
		Expect(c.InstructionCount()).To(Equal(uint64(3)))
	})

	It("should write a buffer to stdout", func() {
		c, mem := withHandler(encodeSWI(0))
		mem.LoadProgram(0x8000, []byte("hello\n"))
		c.SetReg(0, 1)
		c.SetReg(1, 0x8000)
		c.SetReg(2, 6)
		c.SetReg(7, emu.SyscallWrite)

		r := c.Step()
		Expect(r.Err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("hello\n"))
		Expect(c.Reg(0)).To(Equal(uint32(6)))
	})

	It("should write to stderr", func() {
		c, mem := withHandler(encodeSWI(0))
		mem.LoadProgram(0x8000, []byte("oops"))
		c.SetReg(0, 2)
		c.SetReg(1, 0x8000)
		c.SetReg(2, 4)
		c.SetReg(7, emu.SyscallWrite)

		c.Step()
		Expect(stderr.String()).To(Equal("oops"))
	})

	It("should read stdin into memory", func() {
		handler.SetStdin(strings.NewReader("abc"))
		c, mem := withHandler(encodeSWI(0))
		c.SetReg(0, 0)
		c.SetReg(1, 0x8000)
		c.SetReg(2, 16)
		c.SetReg(7, emu.SyscallRead)

		c.Step()
		Expect(c.Reg(0)).To(Equal(uint32(3)))
		Expect(mem.Read8(0x8002)).To(Equal(byte('c')))
	})

	It("should read EOF without stdin", func() {
		c, _ := withHandler(encodeSWI(0))
		c.SetReg(2, 16)
		c.SetReg(7, emu.SyscallRead)

		c.Step()
		Expect(c.Reg(0)).To(BeZero())
	})

	DescribeTable("errors in r0",
		func(number, fd uint32, errno int) {
			c, _ := withHandler(encodeSWI(0))
			c.SetReg(0, fd)
			c.SetReg(7, number)

			c.Step()
			Expect(int32(c.Reg(0))).To(Equal(int32(-errno)))
		},
		Entry("bad write fd", emu.SyscallWrite, uint32(5), emu.EBADF),
		Entry("bad read fd", emu.SyscallRead, uint32(1), emu.EBADF),
		Entry("unknown syscall", uint32(999), uint32(0), emu.ENOSYS),
	)

	It("should take the SWI exception for other comments", func() {
		c, _ := withHandler(encodeSWI(0x123))
		userMode(c)

		r := c.Step()
		Expect(r.Exited).To(BeFalse())
		Expect(c.CPSR().Mode()).To(Equal(emu.ModeSupervisor))
		Expect(c.Reg(emu.RegLR)).To(Equal(origin + 4))
		Expect(c.PC()).To(Equal(emu.VectorSWI))
	})

	It("should take the SWI exception without a handler", func() {
		c, _ := newCPU(encodeSWI(0))
		userMode(c)

		c.Step()
		Expect(c.CPSR().Mode()).To(Equal(emu.ModeSupervisor))
		Expect(c.CPSR().I()).To(BeTrue())
		Expect(c.SPSR().Mode()).To(Equal(emu.ModeUser))
	})

	It("should pass the comment field to a custom handler", func() {
		var got uint32
		h := emu.SWIHandlerFunc(func(_ *emu.CPU, comment uint32) emu.SWIResult {
			got = comment
			return emu.SWIResult{Handled: true}
		})
		c, _ := newCPUWith([]emu.CPUOption{emu.WithSWIHandler(h)}, encodeSWI(0xABCDEF))

		r := c.Step()
		Expect(r.Branched).To(BeFalse())
		Expect(got).To(Equal(uint32(0xABCDEF)))
	})
})
