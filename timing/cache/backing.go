package cache

import (
	"github.com/sarchlab/arm7sim/emu"
)

// BusBacking fills lines from an emu.Bus with sequential word reads.
type BusBacking struct {
	bus emu.Bus
}

// NewBusBacking creates a BusBacking adapter.
func NewBusBacking(bus emu.Bus) *BusBacking {
	return &BusBacking{bus: bus}
}

// Read fetches size bytes, a multiple of four, starting at the word-aligned
// addr.
func (b *BusBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i+4 <= size; i += 4 {
		sig := emu.Signals{Sequential: i > 0}
		w := b.bus.Read(addr+uint32(i), emu.Word, sig)
		data[i] = byte(w)
		data[i+1] = byte(w >> 8)
		data[i+2] = byte(w >> 16)
		data[i+3] = byte(w >> 24)
	}
	return data
}
