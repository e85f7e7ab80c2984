package cache

import (
	"fmt"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/timing/latency"
)

// Mode selects which reads a FetchBuffer serves.
type Mode uint8

// Fetch buffer modes.
const (
	ModeDisabled Mode = iota // every read goes to the bus
	ModeOpcode               // instruction fetches only
	ModeFull                 // instruction fetches and data reads
)

// ParseMode parses the latency.FetchBuffer* names.
func ParseMode(s string) (Mode, error) {
	switch s {
	case latency.FetchBufferDisabled:
		return ModeDisabled, nil
	case latency.FetchBufferOpcode:
		return ModeOpcode, nil
	case latency.FetchBufferFull:
		return ModeFull, nil
	}
	return ModeDisabled, fmt.Errorf("unknown fetch buffer mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return latency.FetchBufferDisabled
	case ModeOpcode:
		return latency.FetchBufferOpcode
	case ModeFull:
		return latency.FetchBufferFull
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// FetchBuffer is an emu.Bus that serves reads from a line buffer and
// counts the stall cycles of line fills. Writes go through to the bus and
// invalidate the line they touch.
type FetchBuffer struct {
	bus   emu.Bus
	lines *Cache
	mode  Mode

	stallCycles uint64
}

// NewFetchBuffer wraps bus.
func NewFetchBuffer(bus emu.Bus, mode Mode, config Config) *FetchBuffer {
	return &FetchBuffer{
		bus:   bus,
		lines: New(config, NewBusBacking(bus)),
		mode:  mode,
	}
}

// NewFetchBufferFromTiming wraps bus with the fetch buffer settings of t.
func NewFetchBufferFromTiming(bus emu.Bus, t *latency.TimingConfig) (*FetchBuffer, error) {
	mode, err := ParseMode(t.FetchBufferMode)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Lines = t.FetchBufferLines
	config.Associativity = t.FetchBufferLines
	config.LineBytes = t.FetchLineBytes
	config.MissLatency = t.FetchMissPenalty

	return NewFetchBuffer(bus, mode, config), nil
}

func (f *FetchBuffer) serves(sig emu.Signals) bool {
	switch f.mode {
	case ModeOpcode:
		return !sig.NotOpcode
	case ModeFull:
		return !sig.Lock
	}
	return false
}

// Read implements emu.Bus.
func (f *FetchBuffer) Read(addr uint32, size emu.Size, sig emu.Signals) uint32 {
	if !f.serves(sig) {
		return f.bus.Read(addr, size, sig)
	}

	r := f.lines.Read(addr, int(size))
	f.stallCycles += r.Latency
	return r.Data
}

// Write implements emu.Bus.
func (f *FetchBuffer) Write(addr uint32, size emu.Size, sig emu.Signals, value uint32) {
	f.bus.Write(addr, size, sig, value)
	f.lines.Invalidate(addr)
}

// Mode returns the buffer mode.
func (f *FetchBuffer) Mode() Mode {
	return f.mode
}

// StallCycles returns the cycles spent filling lines.
func (f *FetchBuffer) StallCycles() uint64 {
	return f.stallCycles
}

// Stats returns the line buffer statistics.
func (f *FetchBuffer) Stats() Statistics {
	return f.lines.Stats()
}

// Reset invalidates every line and clears the counters.
func (f *FetchBuffer) Reset() {
	f.lines.Reset()
	f.stallCycles = 0
}
