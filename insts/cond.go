package insts

// Cond is an ARM condition code (bits 31:28 of every ARM instruction and
// bits 11:8 of a Thumb conditional branch).
type Cond uint8

// ARM condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Never on ARMv4
)

var condNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (c Cond) String() string {
	return condNames[c&0xF]
}

// CondOf extracts the condition field of an ARM instruction word.
func CondOf(word uint32) Cond {
	return Cond(word >> 28)
}

// Holds evaluates the condition against the given flags.
func (c Cond) Holds(n, z, carry, v bool) bool {
	switch c & 0xF {
	case CondEQ:
		return z
	case CondNE:
		return !z
	case CondCS:
		return carry
	case CondCC:
		return !carry
	case CondMI:
		return n
	case CondPL:
		return !n
	case CondVS:
		return v
	case CondVC:
		return !v
	case CondHI:
		return carry && !z
	case CondLS:
		return !carry || z
	case CondGE:
		return n == v
	case CondLT:
		return n != v
	case CondGT:
		return !z && n == v
	case CondLE:
		return z || n != v
	case CondAL:
		return true
	}
	return false
}
