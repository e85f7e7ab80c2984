package benchmarks

// ARM data-processing opcodes.
const (
	OpAND uint32 = 0x0
	OpEOR uint32 = 0x1
	OpSUB uint32 = 0x2
	OpRSB uint32 = 0x3
	OpADD uint32 = 0x4
	OpADC uint32 = 0x5
	OpSBC uint32 = 0x6
	OpRSC uint32 = 0x7
	OpTST uint32 = 0x8
	OpTEQ uint32 = 0x9
	OpCMP uint32 = 0xA
	OpCMN uint32 = 0xB
	OpORR uint32 = 0xC
	OpMOV uint32 = 0xD
	OpBIC uint32 = 0xE
	OpMVN uint32 = 0xF
)

// Condition codes used by the benchmarks.
const (
	CondEQ uint32 = 0x0
	CondNE uint32 = 0x1
	CondGE uint32 = 0xA
	CondLT uint32 = 0xB
	CondAL uint32 = 0xE
)

func bit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// EncodeDPImm encodes a data-processing instruction with an 8-bit
// unrotated immediate: Rd = Rn op imm8.
func EncodeDPImm(op uint32, setFlags bool, rd, rn uint8, imm8 uint8) uint32 {
	return CondAL<<28 | 1<<25 | op<<21 | bit(setFlags)<<20 |
		uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(imm8)
}

// EncodeDPReg encodes a data-processing instruction with an unshifted
// register operand: Rd = Rn op Rm.
func EncodeDPReg(op uint32, setFlags bool, rd, rn, rm uint8) uint32 {
	return CondAL<<28 | op<<21 | bit(setFlags)<<20 |
		uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(rm&0xF)
}

// EncodeMOVImm encodes MOV Rd, #imm8.
func EncodeMOVImm(rd uint8, imm8 uint8) uint32 {
	return EncodeDPImm(OpMOV, false, rd, 0, imm8)
}

// EncodeADDImm encodes ADD{S} Rd, Rn, #imm8.
func EncodeADDImm(rd, rn uint8, imm8 uint8, setFlags bool) uint32 {
	return EncodeDPImm(OpADD, setFlags, rd, rn, imm8)
}

// EncodeSUBImm encodes SUB{S} Rd, Rn, #imm8.
func EncodeSUBImm(rd, rn uint8, imm8 uint8, setFlags bool) uint32 {
	return EncodeDPImm(OpSUB, setFlags, rd, rn, imm8)
}

// EncodeCMPImm encodes CMP Rn, #imm8.
func EncodeCMPImm(rn uint8, imm8 uint8) uint32 {
	return EncodeDPImm(OpCMP, true, 0, rn, imm8)
}

// EncodeB encodes a branch to the instruction offset bytes away from the
// branch itself.
func EncodeB(cond uint32, offset int32) uint32 {
	return cond<<28 | 0b101<<25 | uint32((offset-8)>>2)&0xFFFFFF
}

// EncodeBL encodes a branch with link to the instruction offset bytes away
// from the branch itself.
func EncodeBL(offset int32) uint32 {
	return EncodeB(CondAL, offset) | 1<<24
}

// EncodeBX encodes BX Rm.
func EncodeBX(rm uint8) uint32 {
	return CondAL<<28 | 0x012FFF10 | uint32(rm&0xF)
}

// EncodeSWI encodes SWI #comment.
func EncodeSWI(comment uint32) uint32 {
	return CondAL<<28 | 0xF<<24 | comment&0xFFFFFF
}

// EncodeExit encodes the two-instruction exit sequence, r0 being the
// status: MOV r7, #1; SWI 0.
func EncodeExit() []uint32 {
	return []uint32{EncodeMOVImm(7, 1), EncodeSWI(0)}
}

// EncodeLDRImm encodes LDR Rd, [Rn, #imm12].
func EncodeLDRImm(rd, rn uint8, imm12 uint16) uint32 {
	return CondAL<<28 | 0b01<<26 | 1<<24 | 1<<23 | 1<<20 |
		uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(imm12&0xFFF)
}

// EncodeSTRImm encodes STR Rd, [Rn, #imm12].
func EncodeSTRImm(rd, rn uint8, imm12 uint16) uint32 {
	return EncodeLDRImm(rd, rn, imm12) &^ (1 << 20)
}

// EncodePush encodes STMDB sp!, {list}.
func EncodePush(list uint16) uint32 {
	return CondAL<<28 | 0x092D0000 | uint32(list)
}

// EncodePop encodes LDMIA sp!, {list}.
func EncodePop(list uint16) uint32 {
	return CondAL<<28 | 0x08BD0000 | uint32(list)
}

// EncodeMUL encodes MUL Rd, Rm, Rs.
func EncodeMUL(rd, rm, rs uint8) uint32 {
	return CondAL<<28 | uint32(rd&0xF)<<16 | uint32(rs&0xF)<<8 | 0b1001<<4 | uint32(rm&0xF)
}

// EncodeMLA encodes MLA Rd, Rm, Rs, Rn.
func EncodeMLA(rd, rm, rs, rn uint8) uint32 {
	return EncodeMUL(rd, rm, rs) | 1<<21 | uint32(rn&0xF)<<12
}

// EncodeSWP encodes SWP Rd, Rm, [Rn].
func EncodeSWP(rd, rm, rn uint8) uint32 {
	return CondAL<<28 | 0x01000090 | uint32(rn&0xF)<<16 | uint32(rd&0xF)<<12 | uint32(rm&0xF)
}
