package riscv

import "fmt"

// DecodeError reports a raw word that could not be classified as any known
// RISC-V encoding. The decoder itself never returns this — unrecognized
// encodings become Unimpl — and executing an Unimpl instruction raises
// emulator.UndefinedInstructionError instead (spec.md §4.2).
type DecodeError struct {
	Raw uint32
	PC  uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("riscv: undefined instruction %#08x at pc %#08x", e.Raw, e.PC)
}
