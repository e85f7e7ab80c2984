package insts

import "fmt"

// Spec is the dense identity of one fully specified ARM instruction variant.
// Spec 0 is the undefined sentinel.
type Spec uint16

// SpecUndefined names every word that matches no decode entry.
const SpecUndefined Spec = 0

// NumSpecs is the size of the ARM identity space.
const NumSpecs = 1 + // undefined
	10 + // b, bl, bx, swi, swp, swpb, mrs x2, ldm, stm
	2*2 + // msr: register / immediate
	6*2 + // multiplies: S off / on
	4*2 + // halfword transfers: register / immediate offset
	4*(NumImmShiftKinds+1) + // word/byte transfers
	4*(NumShiftKinds+1) + // tst-like
	12*2*(NumShiftKinds+1) // and-like

// Variant is the decomposition of a Spec into its family and variant
// dimensions.
type Variant struct {
	Op    Op
	Imm   Immediate
	Shift ShiftKind
	S     SFlag
}

// shape describes the variant dimensions of a family.
type shape struct {
	shifts int   // register shift kinds, 0 when there is no shift dimension
	imm    bool  // has an immediate operand variant
	s      bool  // S is a variant dimension
	fixedS SFlag // S value when it is not a dimension
}

func (sh shape) regSlots() int {
	if sh.shifts == 0 {
		return 1
	}
	return sh.shifts
}

func (sh shape) block() int {
	b := sh.regSlots()
	if sh.imm {
		b++
	}
	return b
}

func (sh shape) count() int {
	if sh.s {
		return 2 * sh.block()
	}
	return sh.block()
}

func shapeOf(op Op) shape {
	switch {
	case op <= OpSTM:
		return shape{}
	case op <= OpMSRSPSR:
		return shape{imm: true}
	case op <= OpSMLAL:
		return shape{s: true}
	case op <= OpLDRSH:
		return shape{imm: true}
	case op <= OpLDRB:
		return shape{shifts: NumImmShiftKinds, imm: true}
	case op <= OpCMN:
		return shape{shifts: NumShiftKinds, imm: true, fixedS: SOn}
	case op <= OpMVN:
		return shape{shifts: NumShiftKinds, imm: true, s: true}
	}
	panic(fmt.Sprintf("insts: no such family %d", uint8(op)))
}

type layout struct {
	base [NumOps]Spec
	op   [NumSpecs]Op
}

var specs = buildLayout()

func buildLayout() *layout {
	l := &layout{}
	next := 0
	for op := Op(0); op < NumOps; op++ {
		l.base[op] = Spec(next)
		n := shapeOf(op).count()
		for i := 0; i < n; i++ {
			l.op[next+i] = op
		}
		next += n
	}
	if next != NumSpecs {
		panic(fmt.Sprintf("insts: identity layout has %d entries, want %d", next, NumSpecs))
	}
	return l
}

// Construct returns the identity of family op with the given variant
// settings. It panics when the combination is not legal for the family:
// an immediate operand on a family without one, a shift kind outside the
// family's shift dimension, a shift together with an immediate operand, or
// an S setting on a family whose S bit is fixed.
func Construct(op Op, imm Immediate, shift ShiftKind, s SFlag) Spec {
	if op >= NumOps {
		panic(fmt.Sprintf("insts: no such family %d", uint8(op)))
	}
	sh := shapeOf(op)

	if !sh.s && s != sh.fixedS {
		panic(fmt.Sprintf("insts: %v has a fixed S bit", op))
	}

	var slot int
	switch {
	case imm == ImmOn:
		if !sh.imm {
			panic(fmt.Sprintf("insts: %v has no immediate form", op))
		}
		if shift != ShiftNone {
			panic(fmt.Sprintf("insts: immediate %v cannot carry shift %v", op, shift))
		}
		slot = sh.regSlots()
	case sh.shifts == 0:
		if shift != ShiftNone {
			panic(fmt.Sprintf("insts: %v has no shift dimension", op))
		}
	default:
		if shift >= ShiftKind(sh.shifts) {
			panic(fmt.Sprintf("insts: %v does not support shift %v", op, shift))
		}
		slot = int(shift)
	}

	if sh.s && s == SOn {
		slot += sh.block()
	}

	return specs.base[op] + Spec(slot)
}

// Root returns the first identity of family op. For families without
// variant dimensions it is the only one.
func Root(op Op) Spec {
	if op >= NumOps {
		panic(fmt.Sprintf("insts: no such family %d", uint8(op)))
	}
	return specs.base[op]
}

// Valid reports whether s lies inside the identity space.
func (s Spec) Valid() bool {
	return int(s) < NumSpecs
}

// Op returns the family of s.
func (s Spec) Op() Op {
	if !s.Valid() {
		return OpUndefined
	}
	return specs.op[s]
}

// Base returns the root identity of the family of s, with every variant
// dimension at its first setting.
func (s Spec) Base() Spec {
	return specs.base[s.Op()]
}

// Variant decomposes s into its family and variant settings. Feeding the
// result back to Construct yields s.
func (s Spec) Variant() Variant {
	op := s.Op()
	sh := shapeOf(op)
	offset := int(s - specs.base[op])

	v := Variant{Op: op, Shift: ShiftNone, S: sh.fixedS}
	if sh.s {
		v.S = SFlag(offset >= sh.block())
		offset %= sh.block()
	}

	switch {
	case sh.imm && offset == sh.regSlots():
		v.Imm = ImmOn
	case sh.shifts > 0:
		v.Shift = ShiftKind(offset)
	}

	return v
}

// SetsFlags reports whether the instruction updates the condition flags.
func (s Spec) SetsFlags() bool {
	return bool(s.Variant().S)
}

// String renders s as its mnemonic plus variant suffixes, e.g. "adds_lsr32"
// or "ldr_imm".
func (s Spec) String() string {
	if !s.Valid() {
		return fmt.Sprintf("spec(%d)", uint16(s))
	}

	v := s.Variant()
	name := v.Op.String()
	if shapeOf(v.Op).s && v.S == SOn {
		name += "s"
	}

	switch {
	case v.Imm == ImmOn:
		name += "_imm"
	case v.Shift != ShiftNone:
		name += "_" + v.Shift.String()
	}

	return name
}

// All returns every identity in index order.
func All() []Spec {
	all := make([]Spec, NumSpecs)
	for i := range all {
		all[i] = Spec(i)
	}
	return all
}
