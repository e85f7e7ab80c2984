package emu

import (
	"io"

	"github.com/sarchlab/arm7sim/bitfield"
)

// Syscall numbers of the EABI convention: SWI 0 with the number in r7.
const (
	SyscallExit  uint32 = 1 // exit(status)
	SyscallRead  uint32 = 3 // read(fd, buf, count)
	SyscallWrite uint32 = 4 // write(fd, buf, count)
)

// Linux error codes.
const (
	EBADF  = 9  // Bad file descriptor
	ENOSYS = 38 // Function not implemented
	EIO    = 5  // I/O error
)

// SWIResult is the outcome of a software interrupt handled in Go.
type SWIResult struct {
	// Handled is false if the interrupt should take the Supervisor
	// exception instead.
	Handled bool

	// Exited is true if the program terminated.
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64
}

// SWIHandler emulates software interrupts. comment is the 24-bit SWI
// field.
type SWIHandler interface {
	HandleSWI(c *CPU, comment uint32) SWIResult
}

// SWIHandlerFunc adapts a function to SWIHandler.
type SWIHandlerFunc func(c *CPU, comment uint32) SWIResult

// HandleSWI calls f.
func (f SWIHandlerFunc) HandleSWI(c *CPU, comment uint32) SWIResult {
	return f(c, comment)
}

// softwareInterrupt binds SWI. A configured handler runs first; unhandled
// interrupts enter Supervisor mode at the SWI vector.
func softwareInterrupt(c *CPU, word uint32) error {
	comment := bitfield.Range(word, 23, 0)
	if c.swiHandler != nil {
		r := c.swiHandler.HandleSWI(c, comment)
		if r.Exited {
			c.exited = true
			c.exitCode = r.ExitCode
			return nil
		}
		if r.Handled {
			return nil
		}
	}
	c.enterException(ExceptionSWI, c.nextAddr())
	return nil
}

// DefaultSWIHandler implements exit, read and write for SWI 0. Other
// comments are left to the exception vector.
type DefaultSWIHandler struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewDefaultSWIHandler creates a handler writing to the given streams.
func NewDefaultSWIHandler(stdout, stderr io.Writer) *DefaultSWIHandler {
	return &DefaultSWIHandler{
		stdout: stdout,
		stderr: stderr,
	}
}

// SetStdin sets the reader behind fd 0.
func (h *DefaultSWIHandler) SetStdin(stdin io.Reader) {
	h.stdin = stdin
}

// HandleSWI implements SWIHandler.
func (h *DefaultSWIHandler) HandleSWI(c *CPU, comment uint32) SWIResult {
	if comment != 0 {
		return SWIResult{}
	}

	switch c.Reg(7) {
	case SyscallExit:
		return SWIResult{Handled: true, Exited: true, ExitCode: int64(int32(c.Reg(0)))}
	case SyscallRead:
		h.handleRead(c)
	case SyscallWrite:
		h.handleWrite(c)
	default:
		h.setError(c, ENOSYS)
	}
	return SWIResult{Handled: true}
}

func (h *DefaultSWIHandler) handleRead(c *CPU) {
	fd, bufPtr, count := c.Reg(0), c.Reg(1), c.Reg(2)

	if fd != 0 {
		h.setError(c, EBADF)
		return
	}

	// Without stdin every read is at EOF.
	if h.stdin == nil {
		c.SetReg(0, 0)
		return
	}

	buf := make([]byte, count)
	n, err := h.stdin.Read(buf)
	if err != nil && n == 0 {
		c.SetReg(0, 0)
		return
	}

	for i := 0; i < n; i++ {
		c.bus.Write(bufPtr+uint32(i), Byte, Signals{NotOpcode: true}, uint32(buf[i]))
	}
	c.SetReg(0, uint32(n))
}

func (h *DefaultSWIHandler) handleWrite(c *CPU) {
	fd, bufPtr, count := c.Reg(0), c.Reg(1), c.Reg(2)

	var writer io.Writer
	switch fd {
	case 1:
		writer = h.stdout
	case 2:
		writer = h.stderr
	default:
		h.setError(c, EBADF)
		return
	}

	buf := make([]byte, count)
	for i := range buf {
		buf[i] = byte(c.bus.Read(bufPtr+uint32(i), Byte, Signals{NotOpcode: true}))
	}

	n, err := writer.Write(buf)
	if err != nil {
		h.setError(c, EIO)
		return
	}
	c.SetReg(0, uint32(n))
}

// setError sets r0 to -errno.
func (h *DefaultSWIHandler) setError(c *CPU, errno int) {
	c.SetReg(0, uint32(-int32(errno)))
}
