// Package loader loads ARM executables: 32-bit little-endian ELF files and
// raw binary images.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/arm7sim/emu"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the initial stack pointer, just below the 2 GiB mark.
const DefaultStackTop = 0x7FFF0000

// Segment represents a loadable segment.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin, with bit 0
	// cleared.
	EntryPoint uint32
	// Thumb is set when the entry point selects Thumb state.
	Thumb bool
	// Segments contains all loadable segments.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
}

// Load parses a 32-bit ARM ELF executable.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}
	if f.Machine != elf.EM_ARM {
		return nil, fmt.Errorf("not an ARM ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry) &^ 1,
		Thumb:      f.Entry&1 == 1,
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// LoadBinary reads a raw ARM image that executes from base.
func LoadBinary(path string, base uint32) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary image: %w", err)
	}

	return &Program{
		EntryPoint: base,
		InitialSP:  DefaultStackTop,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint32(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

// LoadInto copies every segment into mem and zero-fills the BSS tails.
func (p *Program) LoadInto(mem *emu.Memory) {
	for _, seg := range p.Segments {
		mem.LoadProgram(seg.VirtAddr, seg.Data)
		for i := uint32(len(seg.Data)); i < seg.MemSize; i++ {
			mem.Write8(seg.VirtAddr+i, 0)
		}
	}
}

// Start points c at the entry point with the initial stack.
func (p *Program) Start(c *emu.CPU) {
	c.SetReg(emu.RegSP, p.InitialSP)
	c.SetCPSR(c.CPSR().WithT(p.Thumb))
	c.SetPC(p.EntryPoint)
}
