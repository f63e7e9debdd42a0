package riscv

import "fmt"

// Instruction is a decoded RISC-V instruction: an opcode plus the register/
// immediate operands resolved by the encoding's type. Rs2 and the
// sign-extended Imm are separate fields; Type records the encoding and
// HasImm whether the decoded form carries an immediate.
type Instruction struct {
	Opcode   Opcode
	Rd       uint8
	Rs1      uint8
	Rs2      uint8
	Imm      int32
	Type     InstructionType
	Raw      uint32
	HasImm   bool // true when the decoded form carries an immediate operand
}

// Unimpl constructs the sentinel instruction the decoder emits for any
// encoding it cannot classify. Executing it raises UndefinedInstruction;
// it is never silently skipped (spec.md §4.2).
func Unimpl(raw uint32) Instruction {
	return Instruction{Opcode: Opcode{Builtin: UNIMPL}, Raw: raw}
}

// IsBranchOrJump reports whether this instruction terminates a basic block.
func (in Instruction) IsBranchOrJump() bool {
	return in.Opcode.IsBranchOrJump()
}

func (in Instruction) String() string {
	name := in.Opcode.String()
	switch in.Type {
	case TypeR:
		return fmt.Sprintf("%s x%d, x%d, x%d", name, in.Rd, in.Rs1, in.Rs2)
	case TypeI:
		return fmt.Sprintf("%s x%d, x%d, %d", name, in.Rd, in.Rs1, in.Imm)
	case TypeS:
		return fmt.Sprintf("%s x%d, %d(x%d)", name, in.Rs2, in.Imm, in.Rs1)
	case TypeB:
		return fmt.Sprintf("%s x%d, x%d, %d", name, in.Rs1, in.Rs2, in.Imm)
	case TypeU:
		return fmt.Sprintf("%s x%d, %#x", name, in.Rd, uint32(in.Imm))
	case TypeJ:
		return fmt.Sprintf("%s x%d, %d", name, in.Rd, in.Imm)
	default:
		return fmt.Sprintf("unimpl(%#08x)", in.Raw)
	}
}
