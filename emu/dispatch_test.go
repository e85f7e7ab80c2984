package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("Dispatch tables", func() {
	It("should bind a handler to every ARM identity", func() {
		t := emu.NewTable()
		for _, s := range insts.All() {
			Expect(t.Handler(s)).NotTo(BeNil(), s.String())
		}
	})

	It("should bind a handler to every Thumb identity", func() {
		t := emu.NewThumbTable()
		for s := insts.ThumbSpec(0); s < insts.NumThumbSpecs; s++ {
			Expect(t[s]).NotTo(BeNil(), s.String())
		}
	})

	It("should execute every canonical encoding without panicking", func() {
		for _, s := range insts.All() {
			c, _ := newCPU()
			c.SwitchMode(emu.ModeSupervisor)
			for i := 0; i < 15; i++ {
				c.SetReg(i, origin+0x100)
			}
			word := insts.Synthesize(s)
			Expect(func() {
				err := c.Execute(word, s)
				if s == insts.SpecUndefined {
					Expect(errors.Is(err, emu.ErrUndefinedInstruction)).To(BeTrue())
				}
			}).NotTo(Panic(), s.String())
		}
	})

	It("should trap Thumb identities as unimplemented", func() {
		c, _ := newCPU()
		err := emu.NewThumbTable()[insts.ThumbMOVImm](c, 0x2005)
		Expect(errors.Is(err, emu.ErrUnimplemented)).To(BeTrue())
	})
})
