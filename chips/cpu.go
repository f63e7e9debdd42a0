package chips

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/riscv"
	"github.com/rvzk/zkvm/trace"
	"github.com/rvzk/zkvm/word"
)

// arithmetizedOpcodes lists every opcode the CPU chip reserves a selector
// column for. RIN/WOU have selector columns too, but no Linear-pass step
// carries either opcode, so those selectors are zero on every row (spec.md
// §4.3); UNIMPL and CUSTOM0 are excluded —
// UNIMPL never reaches the trace (it halts execution, spec.md §4.2) and
// CUSTOM0 selectors belong to whatever host chip registers that
// funct3/funct7 pair, not to the CPU chip itself.
var arithmetizedOpcodes = []riscv.BuiltinOpcode{
	riscv.ADD, riscv.SUB, riscv.SLL, riscv.SLT, riscv.SLTU, riscv.XOR,
	riscv.SRL, riscv.SRA, riscv.OR, riscv.AND,
	riscv.ADDI, riscv.SLTI, riscv.SLTIU, riscv.XORI, riscv.ORI, riscv.ANDI,
	riscv.SLLI, riscv.SRLI, riscv.SRAI,
	riscv.LB, riscv.LH, riscv.LW, riscv.LBU, riscv.LHU, riscv.SB, riscv.SH, riscv.SW,
	riscv.BEQ, riscv.BGE, riscv.BGEU, riscv.BLT, riscv.BLTU, riscv.BNE,
	riscv.JAL, riscv.JALR, riscv.LUI, riscv.AUIPC, riscv.ECALL, riscv.EBREAK,
	riscv.RIN, riscv.WOU,
}

// CPUChip owns the columns every other chip reads to find out what
// instruction ran: pc/next_pc, the three operand words (spec.md §4.6 calls
// them value_a/value_b/value_c — the result and the two operands), a
// dedicated imm column holding the decoded immediate regardless of
// encoding type, and one boolean selector per opcode (spec.md §4.4
// "selector columns gate which chip's constraints apply to a row"). It
// also fills padding rows with the canonical zero step (spec.md §4.4, §9).
type CPUChip struct {
	fields backend.FieldFactory

	pc, nextPC             trace.Span
	valueA, valueB, valueC trace.Span
	imm                    trace.Span
	selectors              map[riscv.BuiltinOpcode]trace.Span
}

// NewCPUChip reserves its columns in registry. Call before any other chip
// that reads pc/value_a/value_b/value_c/imm/selectors.
func NewCPUChip(registry *trace.Registry, fields backend.FieldFactory) *CPUChip {
	c := &CPUChip{
		fields:    fields,
		pc:        registry.MustReserve(trace.Main, "pc", 1),
		nextPC:    registry.MustReserve(trace.Main, "next_pc", 1),
		valueA:    registry.MustReserve(trace.Main, "value_a", word.Size),
		valueB:    registry.MustReserve(trace.Main, "value_b", word.Size),
		valueC:    registry.MustReserve(trace.Main, "value_c", word.Size),
		imm:       registry.MustReserve(trace.Main, "imm", word.Size),
		selectors: make(map[riscv.BuiltinOpcode]trace.Span, len(arithmetizedOpcodes)),
	}
	for _, op := range arithmetizedOpcodes {
		name := "is_" + (riscv.Opcode{Builtin: op}).String()
		c.selectors[op] = registry.MustReserve(trace.Main, name, 1)
	}
	return c
}

// ValueASpan, ValueBSpan, ValueCSpan and ImmSpan expose the operand column
// layout to arithmetic chips constructed after this one.
func (c *CPUChip) PCSpan() trace.Span     { return c.pc }
func (c *CPUChip) NextPCSpan() trace.Span { return c.nextPC }
func (c *CPUChip) ValueASpan() trace.Span { return c.valueA }
func (c *CPUChip) ValueBSpan() trace.Span { return c.valueB }
func (c *CPUChip) ValueCSpan() trace.Span { return c.valueC }

// ImmSpan is the instruction's raw decoded immediate, independent of
// value_c: for B-type branches value_c holds the compared register rs2
// (the borrow chain's operand), while the PC-update needs the branch
// offset — the two cannot share a column, so imm is always the decoded
// immediate regardless of encoding type.
func (c *CPUChip) ImmSpan() trace.Span { return c.imm }

// SelectorSpan returns the is_<op> column for op, if the CPU chip reserved
// one.
func (c *CPUChip) SelectorSpan(op riscv.BuiltinOpcode) (trace.Span, bool) {
	s, ok := c.selectors[op]
	return s, ok
}

func (c *CPUChip) Name() string { return "cpu" }

func wordLimbs(v uint32, fields backend.FieldFactory) []backend.Field {
	w := word.FromUint32(v)
	out := make([]backend.Field, word.Size)
	for i, b := range w {
		out[i] = fields.FromUint64(uint64(b))
	}
	return out
}

func (c *CPUChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, side *trace.SideNote) error {
	if err := tb.Fill(trace.Main, row, "pc", []backend.Field{c.fields.FromUint64(uint64(step.PC))}); err != nil {
		return err
	}
	if err := tb.Fill(trace.Main, row, "next_pc", []backend.Field{c.fields.FromUint64(uint64(step.NextPC))}); err != nil {
		return err
	}
	if err := tb.Fill(trace.Main, row, "value_a", wordLimbs(step.RdValue, c.fields)); err != nil {
		return err
	}
	if err := tb.Fill(trace.Main, row, "value_b", wordLimbs(step.Rs1Value, c.fields)); err != nil {
		return err
	}
	// value_c is the instruction's second operand: the rs2 register for
	// R/S/B-type encodings (the compared or stored value), the immediate
	// for I/U/J-type encodings which carry no second register at all.
	valueC := step.Rs2Value
	switch step.Instruction.Type {
	case riscv.TypeI, riscv.TypeU, riscv.TypeJ:
		valueC = uint32(step.Instruction.Imm)
	}
	if err := tb.Fill(trace.Main, row, "value_c", wordLimbs(valueC, c.fields)); err != nil {
		return err
	}
	// imm is always the decoded immediate, regardless of encoding type —
	// unlike value_c it is never overloaded with a register operand, so
	// chips that need the literal (e.g. a branch's PC-update target) read
	// it here instead.
	if err := tb.Fill(trace.Main, row, "imm", wordLimbs(uint32(step.Instruction.Imm), c.fields)); err != nil {
		return err
	}

	active := step.Instruction.Opcode.Builtin
	for op, span := range c.selectors {
		v := uint64(0)
		if !step.IsPadding && op == active {
			v = 1
		}
		if err := tb.Table(trace.Main).FillSpan(row, span, []backend.Field{c.fields.FromUint64(v)}); err != nil {
			return err
		}
	}
	return nil
}

// rowIsActive reports whether row carries a real step rather than padding:
// FillMainTrace never sets a selector on a padding row (step.IsPadding),
// so the absence of any active selector is the row-local padding signal
// other chips gate their row-local audits on.
func (c *CPUChip) rowIsActive(tb *trace.FinalizedTrace, row int) bool {
	one := c.fields.One()
	for _, span := range c.selectors {
		if tb.Main.Cell(span.Offset, row).Equal(one) {
			return true
		}
	}
	return false
}

// EvaluateConstraints checks the boolean/mutual-exclusion property spec.md
// §8 property 4 describes: every selector cell is 0 or 1, and at most one
// is 1 per row.
func (c *CPUChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	one := c.fields.One()
	active := 0
	for op, span := range c.selectors {
		v := tb.Main.Cell(span.Offset, row)
		if v.IsZero() {
			continue
		}
		if !v.Equal(one) {
			return fmt.Errorf("selector is_%s at row %d is non-boolean", (riscv.Opcode{Builtin: op}).String(), row)
		}
		active++
	}
	if active > 1 {
		return fmt.Errorf("row %d has %d active selectors, want at most 1", row, active)
	}
	return nil
}
