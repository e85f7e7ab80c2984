package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("construct agreement", func() {
		// ADDS R2, R1, R3 (LSL #0)
		It("should decode the canonical flag-setting add", func() {
			word := uint32(0b1110_00_0_0100_1_0001_0010_00000_00_0_0011)
			Expect(word).To(Equal(uint32(0xE0912003)))
			Expect(decoder.Decode(word)).To(Equal(
				insts.Construct(insts.OpADD, insts.ImmOff, insts.ShiftLSL, insts.SOn)))
		})

		It("should decode every synthesized identity to itself", func() {
			for _, s := range insts.All() {
				Expect(decoder.Decode(insts.Synthesize(s))).To(Equal(s), s.String())
			}
		})

		It("should match only its own entry outside the carved shift forms", func() {
			refines := map[insts.ShiftKind]insts.ShiftKind{
				insts.ShiftRRX:   insts.ShiftROR,
				insts.ShiftLSR32: insts.ShiftLSR,
				insts.ShiftASR32: insts.ShiftASR,
			}

			for _, s := range insts.All()[1:] {
				word := insts.Synthesize(s)
				var matches []insts.Spec
				for _, other := range insts.All() {
					if decoder.Entry(other).Matches(word) {
						matches = append(matches, other)
					}
				}

				v := s.Variant()
				general, carved := refines[v.Shift]
				if carved {
					Expect(matches).To(ConsistOf(s,
						insts.Construct(v.Op, v.Imm, general, v.S)), s.String())
				} else {
					Expect(matches).To(Equal([]insts.Spec{s}), s.String())
				}
			}
		})

		It("should ignore the condition field", func() {
			for _, s := range insts.All() {
				word := insts.Synthesize(s)&0x0FFFFFFF | uint32(insts.CondGT)<<28
				Expect(decoder.Decode(word)).To(Equal(s), s.String())
			}
		})
	})

	Describe("shift variants", func() {
		It("should decode LSR #0 as LSR #32", func() {
			// MOV R0, R1, LSR #32
			Expect(decoder.Decode(0xE1A00021).String()).To(Equal("mov_lsr32"))
		})

		It("should decode LSR #4 as a general LSR", func() {
			Expect(decoder.Decode(0xE1A00221).String()).To(Equal("mov_lsr"))
		})

		It("should decode ROR #0 as RRX", func() {
			Expect(decoder.Decode(0xE1B00061).String()).To(Equal("movs_rrx"))
		})

		It("should decode ASR #0 as ASR #32", func() {
			Expect(decoder.Decode(0xE1A00041).String()).To(Equal("mov_asr32"))
		})

		It("should decode a register-specified rotate", func() {
			// ORRS R0, R1, R2, ROR R3
			Expect(decoder.Decode(0xE1910372).String()).To(Equal("orrs_rsror"))
		})

		It("should keep LSL #0 a plain register operand", func() {
			Expect(decoder.Decode(0xE1A00001).String()).To(Equal("mov_lsl"))
		})

		It("should decode scaled register offsets of word transfers", func() {
			// LDR R0, [R1, R2, LSL #2]
			Expect(decoder.Decode(0xE7910102).String()).To(Equal("ldr_lsl"))
			// STRB R0, [R1, -R2, RRX]
			Expect(decoder.Decode(0xE7410062).String()).To(Equal("strb_rrx"))
		})
	})

	DescribeTable("representative encodings",
		func(word uint32, name string) {
			Expect(decoder.Decode(word).String()).To(Equal(name))
		},
		Entry("B", uint32(0xEA000000), "b"),
		Entry("BLNE", uint32(0x1BFFFFFE), "bl"),
		Entry("BX R14", uint32(0xE12FFF1E), "bx"),
		Entry("SWI", uint32(0xEF000011), "swi"),
		Entry("CMP R0, #1", uint32(0xE3500001), "cmp_imm"),
		Entry("TST R0, R1", uint32(0xE1100001), "tst_lsl"),
		Entry("MRS R0, CPSR", uint32(0xE10F0000), "mrs_cpsr"),
		Entry("MRS R0, SPSR", uint32(0xE14F0000), "mrs_spsr"),
		Entry("MSR CPSR_c, R0", uint32(0xE121F000), "msr_cpsr"),
		Entry("MSR SPSR_f, #0xF0000000", uint32(0xE368F20F), "msr_spsr_imm"),
		Entry("MUL R0, R1, R2", uint32(0xE0000291), "mul"),
		Entry("MLAS R0, R1, R2, R3", uint32(0xE0303291), "mlas"),
		Entry("UMULL R0, R1, R2, R3", uint32(0xE0810392), "umull"),
		Entry("SMLALS R0, R1, R2, R3", uint32(0xE0F10392), "smlals"),
		Entry("SWP R0, R1, [R2]", uint32(0xE1020091), "swp"),
		Entry("SWPB R0, R1, [R2]", uint32(0xE1420091), "swpb"),
		Entry("LDRH R0, [R1, #2]", uint32(0xE1D100B2), "ldrh_imm"),
		Entry("STRH R0, [R1, R2]", uint32(0xE18100B2), "strh"),
		Entry("LDRSB R0, [R1]", uint32(0xE1D100D0), "ldrsb_imm"),
		Entry("LDRSH R0, [R1], -R2", uint32(0xE01100F2), "ldrsh"),
		Entry("LDR R0, [R1, #4]!", uint32(0xE5B10004), "ldr_imm"),
		Entry("STMFD SP!, {R0-R3, LR}", uint32(0xE92D400F), "stm"),
		Entry("LDMFD SP!, {R0-R3, PC}", uint32(0xE8BD800F), "ldm"),
	)

	DescribeTable("undefined encodings",
		func(word uint32) {
			Expect(decoder.Decode(word)).To(Equal(insts.SpecUndefined))
		},
		Entry("architecturally undefined", uint32(0xE7F000F0)),
		Entry("coprocessor data transfer", uint32(0xED900A00)),
		Entry("coprocessor register transfer", uint32(0xEE100F10)),
		Entry("tst with S clear and a register operand", uint32(0xE1000001)),
		Entry("swap encoding with the wrong fixed bits", uint32(0xE1B00090)),
	)

	It("should never match the undefined entry", func() {
		e := decoder.Entry(insts.SpecUndefined)
		Expect(e.Matches(0)).To(BeFalse())
		Expect(e.Matches(0xFFFFFFFF)).To(BeFalse())
	})

	It("should try carved shift forms before general ones", func() {
		candidates := decoder.Candidates(0xE1A00021)
		lsr32 := insts.Construct(insts.OpMOV, insts.ImmOff, insts.ShiftLSR32, insts.SOff)
		lsr := insts.Construct(insts.OpMOV, insts.ImmOff, insts.ShiftLSR, insts.SOff)
		Expect(candidates).To(ContainElements(lsr32, lsr))

		index := func(s insts.Spec) int {
			for i, c := range candidates {
				if c == s {
					return i
				}
			}
			return -1
		}
		Expect(index(lsr32)).To(BeNumerically("<", index(lsr)))
	})
})
