package emulator

import "fmt"

// UndefinedInstructionError is raised when the executor encounters an
// UNIMPL sentinel instruction: the decoder could not classify the
// encoding, and execution must stop rather than silently skip it
// (spec.md §4.2, §7).
type UndefinedInstructionError struct {
	PC  uint32
	Raw uint32
}

func (e *UndefinedInstructionError) Error() string {
	return fmt.Sprintf("emulator: undefined instruction %#08x at pc %#08x", e.Raw, e.PC)
}

// UnknownSyscallError is raised by ECALL when the syscall number in a0 has
// no registered handler.
type UnknownSyscallError struct {
	PC     uint32
	Number uint32
}

func (e *UnknownSyscallError) Error() string {
	return fmt.Sprintf("emulator: unknown syscall %d at pc %#08x", e.Number, e.PC)
}

// PrivateInputExhaustedError is raised when a private-input read executes
// against an empty tape.
type PrivateInputExhaustedError struct {
	PC uint32
}

func (e *PrivateInputExhaustedError) Error() string {
	return fmt.Sprintf("emulator: private input tape exhausted at pc %#08x", e.PC)
}
