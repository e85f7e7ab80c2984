package emu

import "errors"

var (
	// ErrUndefinedInstruction is returned when a word decodes to no
	// instruction and undefined-instruction exceptions are disabled.
	ErrUndefinedInstruction = errors.New("undefined instruction")

	// ErrUnimplemented is returned for Thumb instructions, which decode but
	// have no executor.
	ErrUnimplemented = errors.New("unimplemented instruction")

	// ErrMaxInstructions is returned once the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
)
