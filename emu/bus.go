package emu

import "github.com/sarchlab/arm7sim/bitfield"

// Size is the width of a bus transfer in bytes.
type Size uint8

// Transfer sizes.
const (
	Byte     Size = 1
	Halfword Size = 2
	Word     Size = 4
)

// Signals carries the ARM7TDMI bus control outputs that accompany an access.
type Signals struct {
	// NotOpcode is set for data accesses and clear for instruction fetches.
	NotOpcode bool
	// Sequential is set when the address follows the previous access.
	Sequential bool
	// Lock is set for the read and write halves of a swap.
	Lock bool
	// Thumb is set while the processor is in Thumb state.
	Thumb bool
}

// Bus is the memory system seen by the core. Reads return the value
// zero-extended to 32 bits; writes use the low size bytes of value.
// Addresses arrive aligned to the transfer size.
type Bus interface {
	Read(addr uint32, size Size, sig Signals) uint32
	Write(addr uint32, size Size, sig Signals, value uint32)
}

const (
	pageBits = 12
	pageSize = 1 << pageBits
)

// Memory is a sparse, little-endian, flat 32-bit address space. Unwritten
// bytes read as zero.
type Memory struct {
	pages map[uint32]*[pageSize]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[pageSize]byte)}
}

func (m *Memory) page(addr uint32, create bool) *[pageSize]byte {
	key := addr >> pageBits
	p, ok := m.pages[key]
	if !ok && create {
		p = new([pageSize]byte)
		m.pages[key] = p
	}
	return p
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint32) byte {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(pageSize-1)]
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint32, v byte) {
	m.page(addr, true)[addr&(pageSize-1)] = v
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, v uint16) {
	m.Write8(addr, byte(v))
	m.Write8(addr+1, byte(v>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, v uint32) {
	m.Write16(addr, uint16(v))
	m.Write16(addr+2, uint16(v>>16))
}

// LoadProgram copies data into memory starting at addr.
func (m *Memory) LoadProgram(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint32(i), b)
	}
}

// Read implements Bus.
func (m *Memory) Read(addr uint32, size Size, _ Signals) uint32 {
	switch size {
	case Byte:
		return uint32(m.Read8(addr))
	case Halfword:
		return uint32(m.Read16(addr))
	}
	return m.Read32(addr)
}

// Write implements Bus.
func (m *Memory) Write(addr uint32, size Size, _ Signals, value uint32) {
	switch size {
	case Byte:
		m.Write8(addr, byte(value))
	case Halfword:
		m.Write16(addr, uint16(value))
	default:
		m.Write32(addr, value)
	}
}

// rotateUnaligned rotates a word read from addr rounded down so that the
// addressed byte lands in bits 7:0, the ARM7TDMI behavior for unaligned
// word loads.
func rotateUnaligned(v, addr uint32) uint32 {
	return bitfield.Rotr(v, uint(addr&3)*8)
}
