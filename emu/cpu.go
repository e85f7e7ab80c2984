package emu

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/arm7sim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated through the SWI handler.
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64

	// Err is set if an error occurred during execution.
	Err error

	// Addr and Word identify the instruction that was stepped. Word holds
	// the zero-extended halfword in Thumb state.
	Addr uint32
	Word uint32

	// Spec is the decoded identity in ARM state.
	Spec insts.Spec

	// ThumbSpec is the decoded identity in Thumb state.
	ThumbSpec insts.ThumbSpec

	// Thumb is true if the instruction was fetched in Thumb state.
	Thumb bool

	// Skipped is true if the condition field failed.
	Skipped bool

	// Branched is true if the instruction redirected the pipeline.
	Branched bool
}

var (
	defaultDecoder    = sync.OnceValue(insts.NewDecoder)
	defaultTable      = sync.OnceValue(NewTable)
	defaultThumbTable = sync.OnceValue(NewThumbTable)
)

// CPU is an ARM7TDMI core: a banked register file driven by a
// fetch/decode/execute loop over a Bus.
type CPU struct {
	regs       *RegFile
	bus        Bus
	decoder    *insts.Decoder
	table      *Table
	thumbTable *ThumbTable
	swiHandler SWIHandler
	log        *logrus.Entry

	queue   PrefetchQueue
	current Fetched

	undefinedException bool

	// Bus sequencing.
	fetchSeq bool
	dataSeq  bool
	flushed  bool

	irqPending bool
	fiqPending bool

	exited   bool
	exitCode int64

	cycles           CycleStats
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// CPUOption is a functional option for configuring the CPU.
type CPUOption func(*CPU)

// WithBus sets the memory system. The default is an empty Memory.
func WithBus(b Bus) CPUOption {
	return func(c *CPU) {
		c.bus = b
	}
}

// WithDecoder sets a shared decoder.
func WithDecoder(d *insts.Decoder) CPUOption {
	return func(c *CPU) {
		c.decoder = d
	}
}

// WithTable sets a shared dispatch table.
func WithTable(t *Table) CPUOption {
	return func(c *CPU) {
		c.table = t
	}
}

// WithLogger sets the logger. Entries carry component=arm7tdmi.
func WithLogger(l *logrus.Logger) CPUOption {
	return func(c *CPU) {
		c.log = l.WithField("component", "arm7tdmi")
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) CPUOption {
	return func(c *CPU) {
		c.maxInstructions = max
	}
}

// WithUndefinedException makes undefined instructions enter the Undefined
// mode exception vector instead of returning ErrUndefinedInstruction.
func WithUndefinedException(enable bool) CPUOption {
	return func(c *CPU) {
		c.undefinedException = enable
	}
}

// WithSWIHandler emulates software interrupts in Go instead of taking the
// Supervisor exception.
func WithSWIHandler(h SWIHandler) CPUOption {
	return func(c *CPU) {
		c.swiHandler = h
	}
}

// NewCPU creates a CPU in the reset state with the PC at address 0.
func NewCPU(opts ...CPUOption) *CPU {
	c := &CPU{
		regs: NewRegFile(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.bus == nil {
		c.bus = NewMemory()
	}
	if c.decoder == nil {
		c.decoder = defaultDecoder()
	}
	if c.table == nil {
		c.table = defaultTable()
	}
	if c.thumbTable == nil {
		c.thumbTable = defaultThumbTable()
	}
	if c.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		c.log = l.WithField("component", "arm7tdmi")
	}

	c.SetPC(0)

	return c
}

// Bus returns the memory system.
func (c *CPU) Bus() Bus {
	return c.bus
}

// Decoder returns the decoder in use.
func (c *CPU) Decoder() *insts.Decoder {
	return c.decoder
}

// Reg reads logical register i of the current mode.
func (c *CPU) Reg(i int) uint32 {
	return c.regs.Get(i)
}

// SetReg writes logical register i of the current mode. Writing r15
// redirects the pipeline like SetPC.
func (c *CPU) SetReg(i int, v uint32) {
	if i&0xF == RegPC {
		c.SetPC(v)
		return
	}
	c.regs.Set(i, v)
}

// CPSR returns the current program status register.
func (c *CPU) CPSR() PSR {
	return c.regs.CPSR()
}

// SetCPSR replaces the CPSR, switching register banks on a mode change.
func (c *CPU) SetCPSR(p PSR) {
	c.regs.SetCPSR(p)
}

// SwitchMode changes the processor mode.
func (c *CPU) SwitchMode(m Mode) {
	c.regs.SwitchMode(m)
}

// SPSR returns the saved status register of the current mode. It panics in
// User and System mode.
func (c *CPU) SPSR() PSR {
	return c.regs.SPSR()
}

// SetSPSR writes the saved status register of the current mode. It panics
// in User and System mode.
func (c *CPU) SetSPSR(p PSR) {
	c.regs.SetSPSR(p)
}

// Thumb reports whether the processor is in Thumb state.
func (c *CPU) Thumb() bool {
	return c.regs.CPSR().T()
}

// PC returns the address of the next instruction to execute.
func (c *CPU) PC() uint32 {
	if f, ok := c.queue.Peek(); ok {
		return f.Addr
	}
	return c.queue.Next()
}

// SetPC discards the prefetched instructions and continues execution at
// addr.
func (c *CPU) SetPC(addr uint32) {
	c.queue.Redirect(addr)
	c.regs.Set(RegPC, addr)
	c.fetchSeq = false
}

// InstructionCount returns the number of instructions executed.
func (c *CPU) InstructionCount() uint64 {
	return c.instructionCount
}

// Cycles returns the bus cycle counts accumulated so far.
func (c *CPU) Cycles() CycleStats {
	return c.cycles
}

// Queue returns the number of prefetched instructions.
func (c *CPU) Queue() int {
	return c.queue.Len()
}

// Snapshot returns a copy of the register state.
func (c *CPU) Snapshot() Snapshot {
	return c.regs.Snapshot()
}

// RaiseIRQ requests an interrupt. It is taken before the next instruction
// if the CPSR I bit is clear.
func (c *CPU) RaiseIRQ() {
	c.irqPending = true
}

// RaiseFIQ requests a fast interrupt. It is taken before the next
// instruction if the CPSR F bit is clear.
func (c *CPU) RaiseFIQ() {
	c.fiqPending = true
}

// Reset returns the CPU to its reset state: Supervisor mode, ARM state,
// interrupts disabled, PC at the reset vector.
func (c *CPU) Reset() {
	c.regs.Reset()
	c.queue = PrefetchQueue{}
	c.current = Fetched{}
	c.cycles = CycleStats{}
	c.instructionCount = 0
	c.irqPending = false
	c.fiqPending = false
	c.exited = false
	c.exitCode = 0
	c.SetPC(VectorReset)
}

// width returns the instruction size in the current state.
func (c *CPU) width() uint32 {
	if c.Thumb() {
		return 2
	}
	return 4
}

// fill fetches until the prefetch queue is full.
func (c *CPU) fill() {
	thumb := c.Thumb()
	for !c.queue.Full() {
		addr := c.queue.Next()
		sig := Signals{Sequential: c.fetchSeq, Thumb: thumb}
		var word uint32
		if thumb {
			word = c.bus.Read(addr&^1, Halfword, sig)
		} else {
			word = c.bus.Read(addr&^3, Word, sig)
		}
		c.cycles.count(sig.Sequential)
		c.fetchSeq = true
		c.queue.Push(word, c.width())
	}
}

// Step executes a single instruction.
func (c *CPU) Step() StepResult {
	if c.maxInstructions > 0 && c.instructionCount >= c.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	c.takeInterrupts()

	c.fill()
	c.current = c.queue.Pop()
	c.regs.Set(RegPC, c.queue.Next())
	c.flushed = false
	c.dataSeq = false

	result := StepResult{
		Addr:  c.current.Addr,
		Word:  c.current.Word,
		Thumb: c.Thumb(),
	}

	if result.Thumb {
		result.ThumbSpec = c.decoder.DecodeThumb(uint16(c.current.Word))
		result.Err = c.thumbTable[result.ThumbSpec](c, c.current.Word)
	} else {
		result.Spec = c.decoder.Decode(c.current.Word)
		result.Skipped, result.Err = c.execute(c.current.Word, result.Spec)
	}

	if c.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		c.log.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%08X", result.Addr),
			"word": fmt.Sprintf("0x%08X", result.Word),
			"spec": specName(result),
			"mode": c.regs.Mode().String(),
		}).Trace("step")
	}

	if result.Err != nil {
		// Leave the PC on the faulting instruction.
		c.SetPC(result.Addr)
		return result
	}

	c.instructionCount++
	result.Branched = c.flushed

	if c.exited {
		result.Exited = true
		result.ExitCode = c.exitCode
	}

	return result
}

func specName(r StepResult) string {
	if r.Thumb {
		return r.ThumbSpec.String()
	}
	return r.Spec.String()
}

// Run executes instructions until the program exits or an error occurs.
// Returns the exit code (-1 if error).
func (c *CPU) Run() int64 {
	for {
		result := c.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Err != nil {
			c.log.WithError(result.Err).Error("emulation stopped")
			return -1
		}
	}
}

// Execute performs the effects of one ARM instruction, given as a word and
// its identity, as if it were located at PC(). The condition field is
// honored. Afterwards PC() is the following instruction unless the
// instruction branched.
func (c *CPU) Execute(word uint32, spec insts.Spec) error {
	addr := c.PC()
	c.queue.Redirect(addr + 4)
	c.current = Fetched{Addr: addr, Word: word}
	c.regs.Set(RegPC, addr+8)
	c.flushed = false
	c.dataSeq = false

	_, err := c.execute(word, spec)
	if err != nil {
		c.SetPC(addr)
		return err
	}
	c.instructionCount++
	return nil
}

// execute checks the condition field and runs the bound handler.
func (c *CPU) execute(word uint32, spec insts.Spec) (skipped bool, err error) {
	cpsr := c.regs.CPSR()
	if !insts.CondOf(word).Holds(cpsr.N(), cpsr.Z(), cpsr.C(), cpsr.V()) {
		return true, nil
	}
	return false, c.table[spec](c, word)
}

// branch redirects the pipeline to addr, aligned for the current state.
func (c *CPU) branch(addr uint32) {
	if c.Thumb() {
		addr &^= 1
	} else {
		addr &^= 3
	}
	c.queue.Redirect(addr)
	c.regs.Set(RegPC, addr)
	c.fetchSeq = false
	c.flushed = true
}

// nextAddr returns the address of the instruction after the executing one.
func (c *CPU) nextAddr() uint32 {
	if c.Thumb() {
		return c.current.Addr + 2
	}
	return c.current.Addr + 4
}

// readReg reads a register operand. extraPC is added when i is r15, for
// register-specified shifts and stored PCs which observe r15 one fetch
// later.
func (c *CPU) readReg(i uint32, extraPC uint32) uint32 {
	v := c.regs.Get(int(i))
	if i == RegPC {
		v += extraPC
	}
	return v
}

// writeReg writes a register result; writing r15 branches.
func (c *CPU) writeReg(i uint32, v uint32) {
	if i == RegPC {
		c.branch(v)
		return
	}
	c.regs.Set(int(i), v)
}

// restoreCPSR copies the SPSR of the current mode into the CPSR. User and
// System mode have no SPSR; the CPSR is left alone.
func (c *CPU) restoreCPSR() {
	if !c.regs.HasSPSR() {
		c.log.WithField("mode", c.regs.Mode().String()).
			Warn("CPSR restore without an SPSR ignored")
		return
	}
	p := c.regs.SPSR()
	if !p.Mode().Valid() {
		c.log.WithField("mode", p.Mode().String()).
			Warn("SPSR with an illegal mode restored without a mode change")
		p = PSR(uint32(p)&^0x1F | uint32(c.regs.Mode()))
	}
	c.regs.SetCPSR(p)
}

func (c *CPU) takeInterrupts() {
	cpsr := c.regs.CPSR()
	switch {
	case c.fiqPending && !cpsr.F():
		c.fiqPending = false
		c.enterException(ExceptionFIQ, c.PC()+4)
	case c.irqPending && !cpsr.I():
		c.irqPending = false
		c.enterException(ExceptionIRQ, c.PC()+4)
	}
}
