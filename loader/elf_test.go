package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arm7sim/emu"
	"github.com/sarchlab/arm7sim/loader"
)

const (
	emARM = 40
	em386 = 3

	ptLoad = 1
	ptNote = 4

	pfX = 1
	pfW = 2
	pfR = 4
)

// code is "mov r0, #42; swi 0".
var code = []byte{
	0x2A, 0x00, 0xA0, 0xE3,
	0x00, 0x00, 0x00, 0xEF,
}

type testSegment struct {
	typ   uint32
	flags uint32
	vaddr uint32
	data  []byte
	memsz uint32
}

// writeELF32 writes a little-endian ELF32 executable with one program
// header per segment and the segment contents after the headers.
func writeELF32(path string, machine uint16, entry uint32, segs ...testSegment) {
	const ehsize, phentsize = 52, 32

	header := make([]byte, ehsize)
	copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
	header[4] = 1 // 32-bit
	header[5] = 1 // little endian
	header[6] = 1 // version
	binary.LittleEndian.PutUint16(header[16:18], 2) // executable
	binary.LittleEndian.PutUint16(header[18:20], machine)
	binary.LittleEndian.PutUint32(header[20:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], entry)
	binary.LittleEndian.PutUint32(header[28:32], ehsize) // phoff
	binary.LittleEndian.PutUint16(header[40:42], ehsize)
	binary.LittleEndian.PutUint16(header[42:44], phentsize)
	binary.LittleEndian.PutUint16(header[44:46], uint16(len(segs)))

	offset := uint32(ehsize + phentsize*len(segs))
	var phdrs, contents []byte
	for _, s := range segs {
		p := make([]byte, phentsize)
		binary.LittleEndian.PutUint32(p[0:4], s.typ)
		binary.LittleEndian.PutUint32(p[4:8], offset)
		binary.LittleEndian.PutUint32(p[8:12], s.vaddr)
		binary.LittleEndian.PutUint32(p[12:16], s.vaddr)
		binary.LittleEndian.PutUint32(p[16:20], uint32(len(s.data)))
		binary.LittleEndian.PutUint32(p[20:24], s.memsz)
		binary.LittleEndian.PutUint32(p[24:28], s.flags)
		binary.LittleEndian.PutUint32(p[28:32], 4)
		phdrs = append(phdrs, p...)
		contents = append(contents, s.data...)
		offset += uint32(len(s.data))
	}

	file := append(append(header, phdrs...), contents...)
	Expect(os.WriteFile(path, file, 0644)).To(Succeed())
}

func textSegment(vaddr uint32, data []byte) testSegment {
	return testSegment{typ: ptLoad, flags: pfR | pfX, vaddr: vaddr, data: data, memsz: uint32(len(data))}
}

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	path := func(name string) string {
		return filepath.Join(tempDir, name)
	}

	Describe("Load", func() {
		Context("with a valid ARM ELF executable", func() {
			It("should extract the entry point and segments", func() {
				writeELF32(path("test.elf"), emARM, 0x8000, textSegment(0x8000, code))

				prog, err := loader.Load(path("test.elf"))
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint32(0x8000)))
				Expect(prog.Thumb).To(BeFalse())
				Expect(prog.InitialSP).To(Equal(uint32(loader.DefaultStackTop)))
				Expect(prog.Segments).To(HaveLen(1))
				Expect(prog.Segments[0].Data).To(Equal(code))
				Expect(prog.Segments[0].Flags & loader.SegmentFlagExecute).NotTo(BeZero())
			})

			It("should select Thumb state for an odd entry point", func() {
				writeELF32(path("thumb.elf"), emARM, 0x8001, textSegment(0x8000, code))

				prog, err := loader.Load(path("thumb.elf"))
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint32(0x8000)))
				Expect(prog.Thumb).To(BeTrue())
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.Load("/nonexistent/path/to/file.elf")
				Expect(err).To(MatchError(ContainSubstring("failed to open")))
			})

			It("should return error for non-ELF file", func() {
				Expect(os.WriteFile(path("not-elf.bin"), []byte("not an elf file"), 0644)).To(Succeed())
				_, err := loader.Load(path("not-elf.bin"))
				Expect(err).To(MatchError(ContainSubstring("ELF")))
			})

			It("should return error for empty file", func() {
				Expect(os.WriteFile(path("empty.elf"), nil, 0644)).To(Succeed())
				_, err := loader.Load(path("empty.elf"))
				Expect(err).To(HaveOccurred())
			})

			It("should reject another machine", func() {
				writeELF32(path("x86.elf"), em386, 0x8000)
				_, err := loader.Load(path("x86.elf"))
				Expect(err).To(MatchError(ContainSubstring("not an ARM")))
			})

			It("should reject a 64-bit ELF", func() {
				header := make([]byte, 64)
				copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
				header[4] = 2 // 64-bit
				header[5] = 1
				header[6] = 1
				binary.LittleEndian.PutUint16(header[16:18], 2)
				binary.LittleEndian.PutUint16(header[18:20], 183)
				binary.LittleEndian.PutUint32(header[20:24], 1)
				binary.LittleEndian.PutUint16(header[52:54], 64)
				binary.LittleEndian.PutUint16(header[54:56], 56)
				Expect(os.WriteFile(path("elf64.elf"), header, 0644)).To(Succeed())

				_, err := loader.Load(path("elf64.elf"))
				Expect(err).To(MatchError(ContainSubstring("not a 32-bit")))
			})
		})

		It("should load multiple PT_LOAD segments", func() {
			data := []byte{0x01, 0x02, 0x03, 0x04}
			writeELF32(path("multi.elf"), emARM, 0x8000,
				textSegment(0x8000, code),
				testSegment{typ: ptLoad, flags: pfR | pfW, vaddr: 0x20000, data: data, memsz: 4},
			)

			prog, err := loader.Load(path("multi.elf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(2))
			Expect(prog.Segments[1].VirtAddr).To(Equal(uint32(0x20000)))
			Expect(prog.Segments[1].Data).To(Equal(data))
			Expect(prog.Segments[1].Flags & loader.SegmentFlagWrite).NotTo(BeZero())
		})

		It("should keep the memory size of BSS segments", func() {
			writeELF32(path("bss.elf"), emARM, 0x8000,
				testSegment{typ: ptLoad, flags: pfR | pfW, vaddr: 0x20000, data: []byte{1, 2, 3, 4}, memsz: 1024},
			)

			prog, err := loader.Load(path("bss.elf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments[0].Data).To(HaveLen(4))
			Expect(prog.Segments[0].MemSize).To(Equal(uint32(1024)))
		})

		It("should skip segments that are not PT_LOAD", func() {
			writeELF32(path("note.elf"), emARM, 0x8000,
				testSegment{typ: ptNote, flags: pfR, vaddr: 0, data: []byte{0, 0, 0, 0}},
			)

			prog, err := loader.Load(path("note.elf"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(BeEmpty())
		})
	})

	Describe("LoadBinary", func() {
		It("should place a raw image at the base address", func() {
			Expect(os.WriteFile(path("image.bin"), code, 0644)).To(Succeed())

			prog, err := loader.LoadBinary(path("image.bin"), 0x4000)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(Equal(uint32(0x4000)))
			Expect(prog.Segments).To(HaveLen(1))
			Expect(prog.Segments[0].MemSize).To(Equal(uint32(len(code))))
		})

		It("should return error for a missing image", func() {
			_, err := loader.LoadBinary(path("missing.bin"), 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Program", func() {
		It("should load into memory and run", func() {
			writeELF32(path("run.elf"), emARM, 0x8000,
				textSegment(0x8000, code),
				testSegment{typ: ptLoad, flags: pfR | pfW, vaddr: 0x20000, data: []byte{0xFF}, memsz: 8},
			)
			prog, err := loader.Load(path("run.elf"))
			Expect(err).NotTo(HaveOccurred())

			mem := emu.NewMemory()
			mem.Write32(0x20004, 0xFFFFFFFF)
			prog.LoadInto(mem)
			Expect(mem.Read32(0x8000)).To(Equal(uint32(0xE3A0002A)))
			Expect(mem.Read32(0x20000)).To(Equal(uint32(0xFF)))
			Expect(mem.Read32(0x20004)).To(BeZero())

			var exit int64 = -2
			handler := emu.SWIHandlerFunc(func(c *emu.CPU, _ uint32) emu.SWIResult {
				exit = int64(c.Reg(0))
				return emu.SWIResult{Handled: true, Exited: true, ExitCode: exit}
			})
			c := emu.NewCPU(emu.WithBus(mem), emu.WithSWIHandler(handler))
			prog.Start(c)
			Expect(c.Reg(emu.RegSP)).To(Equal(uint32(loader.DefaultStackTop)))
			Expect(c.PC()).To(Equal(uint32(0x8000)))

			Expect(c.Run()).To(Equal(int64(42)))
			Expect(exit).To(Equal(int64(42)))
		})

		It("should start a Thumb entry point in Thumb state", func() {
			prog := &loader.Program{EntryPoint: 0x8000, Thumb: true, InitialSP: 0x1000}
			c := emu.NewCPU()
			prog.Start(c)
			Expect(c.Thumb()).To(BeTrue())
			Expect(c.PC()).To(Equal(uint32(0x8000)))
		})
	})
})
