package emu

// CycleStats counts ARM7TDMI bus cycles by type: non-sequential (N),
// sequential (S) and internal (I).
type CycleStats struct {
	N uint64
	S uint64
	I uint64
}

// Total returns the number of cycles assuming zero wait states.
func (s CycleStats) Total() uint64 {
	return s.N + s.S + s.I
}

// Sub returns the counts accumulated since an earlier sample.
func (s CycleStats) Sub(earlier CycleStats) CycleStats {
	return CycleStats{N: s.N - earlier.N, S: s.S - earlier.S, I: s.I - earlier.I}
}

func (s *CycleStats) count(sequential bool) {
	if sequential {
		s.S++
	} else {
		s.N++
	}
}

// access performs one data transfer. The first transfer of an instruction
// is non-sequential and later ones sequential; the opcode fetch after a
// data transfer is non-sequential.
func (c *CPU) access(addr uint32, size Size, write bool, value uint32, lock bool) uint32 {
	sig := Signals{
		NotOpcode:  true,
		Sequential: c.dataSeq,
		Lock:       lock,
		Thumb:      c.Thumb(),
	}
	c.cycles.count(sig.Sequential)
	c.dataSeq = true
	c.fetchSeq = false

	if write {
		c.bus.Write(addr, size, sig, value)
		return 0
	}
	return c.bus.Read(addr, size, sig)
}

func (c *CPU) load(addr uint32, size Size) uint32 {
	return c.access(addr, size, false, 0, false)
}

func (c *CPU) store(addr uint32, size Size, value uint32) {
	c.access(addr, size, true, value, false)
}

// loadWord reads a word, rotating unaligned data into place.
func (c *CPU) loadWord(addr uint32) uint32 {
	return rotateUnaligned(c.load(addr&^3, Word), addr)
}

// internal adds n internal cycles.
func (c *CPU) internal(n uint64) {
	c.cycles.I += n
}
