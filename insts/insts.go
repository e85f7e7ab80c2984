// Package insts provides ARM7TDMI instruction identities and decoding.
//
// Every distinct ARM instruction variant (base mnemonic, immediate or
// register operand, shift kind, set-flags bit) is named by a dense Spec
// index. A Decoder maps raw instruction words to Specs through an ordered
// table of (mask, opcode) entries. Thumb encodings have their own, smaller
// ThumbSpec space.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	spec := decoder.Decode(0xE0912003) // ADDS R2, R1, R3
//	fmt.Println(spec)                 // adds_lsl
//	v := spec.Variant()               // {Op: OpADD, Imm: ImmOff, Shift: ShiftLSL, S: SOn}
package insts
