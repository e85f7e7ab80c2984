// Package bitfield provides fixed-width bit manipulation over any unsigned
// integer type.
//
// Every function is pure: setters return the updated value instead of
// writing through a reference. Shift amounts at or beyond the width of T
// never panic; logical shifts produce zero, arithmetic shifts produce the
// sign fill, and rotations are taken modulo the width.
//
// Usage:
//
//	rd := bitfield.Range(word, 15, 12)
//	word = bitfield.SetRange(word, 15, 12, 3)
//	negative := bitfield.Bit(word, 31)
package bitfield

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Width returns the number of bits in T.
func Width[T constraints.Unsigned]() uint {
	return uint(bits.OnesCount64(uint64(^T(0))))
}

// Mask returns a value of T with the low n bits set.
func Mask[T constraints.Unsigned](n uint) T {
	if n >= Width[T]() {
		return ^T(0)
	}
	return T(1)<<n - 1
}

// Bit reports whether bit i of v is set. Bits beyond the width read as clear.
func Bit[T constraints.Unsigned](v T, i uint) bool {
	if i >= Width[T]() {
		return false
	}
	return v>>i&1 == 1
}

// SetBit returns v with bit i set to b. Out-of-range positions leave v
// unchanged.
func SetBit[T constraints.Unsigned](v T, i uint, b bool) T {
	if i >= Width[T]() {
		return v
	}
	if b {
		return v | T(1)<<i
	}
	return v &^ (T(1) << i)
}

// Range extracts the inclusive bit range [hi:lo] of v, right-aligned.
func Range[T constraints.Unsigned](v T, hi, lo uint) T {
	w := Width[T]()
	if lo >= w || hi < lo {
		return 0
	}
	if hi >= w {
		hi = w - 1
	}
	return v >> lo & Mask[T](hi-lo+1)
}

// SetRange returns v with the inclusive range [hi:lo] replaced by the low
// bits of chunk. The destination range is cleared first; chunk bits above
// the range width are discarded.
func SetRange[T constraints.Unsigned](v T, hi, lo uint, chunk T) T {
	w := Width[T]()
	if lo >= w || hi < lo {
		return v
	}
	if hi >= w {
		hi = w - 1
	}
	m := Mask[T](hi-lo+1) << lo
	return v&^m | chunk<<lo&m
}

// Shl is a logical shift left. Amounts at or beyond the width yield zero.
func Shl[T constraints.Unsigned](v T, n uint) T {
	return v << n
}

// Shr is a logical shift right. Amounts at or beyond the width yield zero.
func Shr[T constraints.Unsigned](v T, n uint) T {
	return v >> n
}

// Sar is an arithmetic shift right that replicates the top bit of T.
// Amounts at or beyond the width yield the sign fill.
func Sar[T constraints.Unsigned](v T, n uint) T {
	w := Width[T]()
	negative := Bit(v, w-1)
	if n >= w {
		if negative {
			return ^T(0)
		}
		return 0
	}
	r := v >> n
	if negative && n > 0 {
		r |= ^T(0) << (w - n)
	}
	return r
}

// Rotr rotates v right by n modulo the width.
func Rotr[T constraints.Unsigned](v T, n uint) T {
	w := Width[T]()
	n %= w
	if n == 0 {
		return v
	}
	return v>>n | v<<(w-n)
}

// Rotl rotates v left by n modulo the width.
func Rotl[T constraints.Unsigned](v T, n uint) T {
	w := Width[T]()
	return Rotr(v, w-n%w)
}

// SignExtend treats bit pos as the sign bit of v and replicates it into
// every higher bit.
func SignExtend[T constraints.Unsigned](v T, pos uint) T {
	w := Width[T]()
	if pos >= w-1 {
		return v
	}
	if Bit(v, pos) {
		return v | ^T(0)<<pos
	}
	return v & Mask[T](pos+1)
}

// ByteSwap reverses the byte order of v.
func ByteSwap[T constraints.Unsigned](v T) T {
	var r T
	for i := uint(0); i < Width[T]()/8; i++ {
		r = r<<8 | v&0xFF
		v >>= 8
	}
	return r
}
