package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Branches", func() {
	It("should branch forward relative to PC+8", func() {
		c, _ := newCPU(encodeB(0x20, false))
		run(c, 1)
		Expect(c.PC()).To(Equal(origin + 8 + 0x20))
	})

	It("should branch backward", func() {
		c, _ := newCPU(encodeB(-16, false))
		run(c, 1)
		Expect(c.PC()).To(Equal(origin + 8 - 16))
	})

	It("should branch to itself with an offset of -8", func() {
		c, _ := newCPU(encodeB(-8, false))
		run(c, 3)
		Expect(c.PC()).To(Equal(origin))
	})

	It("should save the return address in LR", func() {
		c, _ := newCPU(encodeB(0x100, true))
		run(c, 1)
		Expect(c.Reg(14)).To(Equal(origin + 4))
		Expect(c.PC()).To(Equal(origin + 8 + 0x100))
	})

	It("should return through BX LR", func() {
		c, mem := newCPU(encodeB(0x100, true), encodeDPImm(dpMOV, false, 0, 0, 7, 0))
		mem.Write32(origin+8+0x100, encodeBX(14))

		run(c, 3)
		Expect(c.Reg(0)).To(Equal(uint32(7)))
		Expect(c.Thumb()).To(BeFalse())
	})

	It("should enter Thumb state when BX targets an odd address", func() {
		c, _ := newCPU(encodeBX(1))
		c.SetReg(1, 0x4001)

		r := run(c, 1)
		Expect(r.Branched).To(BeTrue())
		Expect(c.Thumb()).To(BeTrue())
		Expect(c.PC()).To(Equal(uint32(0x4000)))
	})
})
