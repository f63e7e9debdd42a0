package emulator

import (
	"github.com/rvzk/zkvm/memory"
	"github.com/rvzk/zkvm/riscv"
)

// ProgramStep is the complete record of one instruction's execution: the
// decoded instruction, the operand values the chip framework needs to
// check the ALU/branch/memory constraints against, and at most one memory
// access (RV32I never issues more than one load or store per instruction).
// This is spec.md §3's "ProgramStep" data model entry.
type ProgramStep struct {
	PC          uint32
	NextPC      uint32
	Instruction riscv.Instruction
	Rs1Value    uint32
	Rs2Value    uint32
	RdValue     uint32
	Load        *memory.LoadRecord
	Store       *memory.StoreRecord
	Timestamp   uint64
	IsPadding   bool
}

// Padding returns the canonical zero-valued step used to fill a trace out
// to its power-of-two length: a fixed no-op opcode with every operand and
// selector column held at zero (spec.md §9, SPEC_FULL.md §13).
func Padding(pc uint32) ProgramStep {
	return ProgramStep{
		PC:          pc,
		NextPC:      pc,
		Instruction: riscv.Instruction{Opcode: riscv.Opcode{Builtin: riscv.UNIMPL}},
		IsPadding:   true,
	}
}
