package chips

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/riscv"
	"github.com/rvzk/zkvm/trace"
	"github.com/rvzk/zkvm/word"
)

// carryLimbs computes the four-limb sum of b and c and the carry-bit word
// k such that b[i] + c[i] + k[i-1] = a[i] + 256*k[i] for every limb, with
// k[-1] = 0 (spec.md §4.6 "Addition"). The top carry is discarded, which is
// exactly RV32's wraparound semantics.
func carryLimbs(b, c word.Word) (sum word.Word, carry word.BoolWord) {
	var k uint16
	for i := 0; i < word.Size; i++ {
		total := uint16(b[i]) + uint16(c[i]) + k
		sum[i] = byte(total)
		k = total >> 8
		carry[i] = k != 0
	}
	return
}

// borrowLimbs computes the four-limb difference of b and c and the borrow
// word h such that a[i] + h[i]*256 = b[i] - c[i] - h[i-1] for every limb,
// with h[-1] = 0 (spec.md §4.6 "Subtraction"). h[3] is the unsigned b < c
// flag.
func borrowLimbs(b, c word.Word) (diff word.Word, borrow word.BoolWord) {
	var h int16
	for i := 0; i < word.Size; i++ {
		total := int16(b[i]) - int16(c[i]) - h
		if total < 0 {
			total += 256
			h = 1
		} else {
			h = 0
		}
		diff[i] = byte(total)
		borrow[i] = h != 0
	}
	return
}

func boolLimbsToFields(b word.BoolWord, fields backend.FieldFactory) []backend.Field {
	out := make([]backend.Field, word.Size)
	for i, bit := range b {
		v := uint64(0)
		if bit {
			v = 1
		}
		out[i] = fields.FromUint64(v)
	}
	return out
}

func readWord(tb interface {
	Cell(column, row int) backend.Field
}, span trace.Span, row int, fields backend.FieldFactory) word.Word {
	var w word.Word
	for i := 0; i < word.Size; i++ {
		w[i] = fieldToByte(tb.Cell(span.Offset+i, row), fields)
	}
	return w
}

// fieldToByte recovers the byte value a limb column cell holds. Every limb
// cell in this trace is filled via FromUint64 of a value in [0,255], so the
// low byte of the canonical big-endian encoding Bytes() returns is exact.
func fieldToByte(f backend.Field, _ backend.FieldFactory) byte {
	b := f.Bytes()
	return b[len(b)-1]
}

func cellIsOne(tb interface {
	Cell(column, row int) backend.Field
}, span trace.Span, row int, fields backend.FieldFactory) bool {
	return tb.Cell(span.Offset, row).Equal(fields.One())
}

// AddChip arithmetizes ADD and ADDI: value_a = value_b + value_c limb by
// limb, with a 4-bit carry word it owns (spec.md §4.6 "Addition").
type AddChip struct {
	cpu    *CPUChip
	fields backend.FieldFactory
	carry  trace.Span
}

func NewAddChip(registry *trace.Registry, cpu *CPUChip, fields backend.FieldFactory) *AddChip {
	return &AddChip{
		cpu:    cpu,
		fields: fields,
		carry:  registry.MustReserve(trace.Main, "add_carry", word.Size),
	}
}

func (c *AddChip) Name() string { return "add" }

func (c *AddChip) isActive(step *emulator.ProgramStep) bool {
	op := step.Instruction.Opcode.Builtin
	return !step.IsPadding && (op == riscv.ADD || op == riscv.ADDI)
}

func (c *AddChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, _ *trace.SideNote) error {
	var carry word.BoolWord
	if c.isActive(step) {
		b := word.FromUint32(step.Rs1Value)
		var cc uint32
		if step.Instruction.HasImm {
			cc = uint32(step.Instruction.Imm)
		} else {
			cc = step.Rs2Value
		}
		_, carry = carryLimbs(b, word.FromUint32(cc))
	}
	return tb.Fill(trace.Main, row, "add_carry", boolLimbsToFields(carry, c.fields))
}

func (c *AddChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	addSel, _ := c.cpu.SelectorSpan(riscv.ADD)
	addiSel, _ := c.cpu.SelectorSpan(riscv.ADDI)
	active := cellIsOne(tb.Main, addSel, row, c.fields) || cellIsOne(tb.Main, addiSel, row, c.fields)
	if !active {
		return nil
	}
	a := readWord(tb.Main, c.cpu.ValueASpan(), row, c.fields)
	b := readWord(tb.Main, c.cpu.ValueBSpan(), row, c.fields)
	cc := readWord(tb.Main, c.cpu.ValueCSpan(), row, c.fields)
	k := readWord(tb.Main, c.carry, row, c.fields)
	var prevK byte
	for i := 0; i < word.Size; i++ {
		if k[i] != 0 && k[i] != 1 {
			return fmt.Errorf("add_carry[%d] at row %d is not boolean", i, row)
		}
		want := int(b[i]) + int(cc[i]) + int(prevK)
		got := int(a[i]) + int(k[i])*256
		if want != got {
			return fmt.Errorf("add limb %d at row %d: b+c+k_prev=%d, a+256k=%d", i, row, want, got)
		}
		prevK = k[i]
	}
	return nil
}

// SubChip arithmetizes SUB: value_a = value_b - value_c limb by limb, with
// a 4-bit borrow word it owns (spec.md §4.6 "Subtraction").
type SubChip struct {
	cpu    *CPUChip
	fields backend.FieldFactory
	borrow trace.Span
}

func NewSubChip(registry *trace.Registry, cpu *CPUChip, fields backend.FieldFactory) *SubChip {
	return &SubChip{
		cpu:    cpu,
		fields: fields,
		borrow: registry.MustReserve(trace.Main, "sub_borrow", word.Size),
	}
}

func (c *SubChip) Name() string { return "sub" }

func (c *SubChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, _ *trace.SideNote) error {
	var borrow word.BoolWord
	if !step.IsPadding && step.Instruction.Opcode.Builtin == riscv.SUB {
		b := word.FromUint32(step.Rs1Value)
		cc := word.FromUint32(step.Rs2Value)
		_, borrow = borrowLimbs(b, cc)
	}
	return tb.Fill(trace.Main, row, "sub_borrow", boolLimbsToFields(borrow, c.fields))
}

func (c *SubChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	sel, _ := c.cpu.SelectorSpan(riscv.SUB)
	if !cellIsOne(tb.Main, sel, row, c.fields) {
		return nil
	}
	a := readWord(tb.Main, c.cpu.ValueASpan(), row, c.fields)
	b := readWord(tb.Main, c.cpu.ValueBSpan(), row, c.fields)
	cc := readWord(tb.Main, c.cpu.ValueCSpan(), row, c.fields)
	h := readWord(tb.Main, c.borrow, row, c.fields)
	var prevH int
	for i := 0; i < word.Size; i++ {
		if h[i] != 0 && h[i] != 1 {
			return fmt.Errorf("sub_borrow[%d] at row %d is not boolean", i, row)
		}
		want := int(a[i]) + int(h[i])*256
		got := int(b[i]) - int(cc[i]) - prevH
		wantBorrow := 0
		if got < 0 {
			got += 256
			wantBorrow = 1
		}
		if int(h[i]) != wantBorrow {
			return fmt.Errorf("sub_borrow[%d] at row %d is %d, want %d", i, row, h[i], wantBorrow)
		}
		if got != want {
			return fmt.Errorf("sub limb %d at row %d: a+256h=%d, b-c-h_prev=%d", i, row, want, got)
		}
		prevH = int(h[i])
	}
	return nil
}

// UnsignedBranchChip arithmetizes BGEU and BLTU: both compute the unsigned
// b - c borrow chain and read the comparison off its top borrow bit, then
// linearly combine pc+imm and pc+4 by the taken flag (spec.md §4.6
// "Unsigned branches").
type UnsignedBranchChip struct {
	cpu    *CPUChip
	fields backend.FieldFactory
	borrow trace.Span
	taken  trace.Span
}

func NewUnsignedBranchChip(registry *trace.Registry, cpu *CPUChip, fields backend.FieldFactory) *UnsignedBranchChip {
	return &UnsignedBranchChip{
		cpu:    cpu,
		fields: fields,
		borrow: registry.MustReserve(trace.Main, "branch_borrow", word.Size),
		taken:  registry.MustReserve(trace.Main, "branch_taken", 1),
	}
}

func (c *UnsignedBranchChip) Name() string { return "unsigned_branch" }

func (c *UnsignedBranchChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, _ *trace.SideNote) error {
	op := step.Instruction.Opcode.Builtin
	var borrow word.BoolWord
	var taken bool
	if !step.IsPadding && (op == riscv.BGEU || op == riscv.BLTU) {
		b := word.FromUint32(step.Rs1Value)
		cc := word.FromUint32(step.Rs2Value)
		_, borrow = borrowLimbs(b, cc)
		ltu := borrow[word.Size-1]
		if op == riscv.BLTU {
			taken = ltu
		} else {
			taken = !ltu
		}
	}
	if err := tb.Fill(trace.Main, row, "branch_borrow", boolLimbsToFields(borrow, c.fields)); err != nil {
		return err
	}
	takenVal := uint64(0)
	if taken {
		takenVal = 1
	}
	return tb.Fill(trace.Main, row, "branch_taken", []backend.Field{c.fields.FromUint64(takenVal)})
}

func (c *UnsignedBranchChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	bgeu, _ := c.cpu.SelectorSpan(riscv.BGEU)
	bltu, _ := c.cpu.SelectorSpan(riscv.BLTU)
	isBgeu := cellIsOne(tb.Main, bgeu, row, c.fields)
	isBltu := cellIsOne(tb.Main, bltu, row, c.fields)
	if !isBgeu && !isBltu {
		return nil
	}
	b := readWord(tb.Main, c.cpu.ValueBSpan(), row, c.fields)
	cc := readWord(tb.Main, c.cpu.ValueCSpan(), row, c.fields)
	h := readWord(tb.Main, c.borrow, row, c.fields)
	var prevH int
	for i := 0; i < word.Size; i++ {
		if h[i] != 0 && h[i] != 1 {
			return fmt.Errorf("branch_borrow[%d] at row %d is not boolean", i, row)
		}
		got := int(b[i]) - int(cc[i]) - prevH
		if got < 0 {
			got += 256
			if h[i] != 1 {
				return fmt.Errorf("branch_borrow[%d] at row %d should be 1", i, row)
			}
		} else if h[i] != 0 {
			return fmt.Errorf("branch_borrow[%d] at row %d should be 0", i, row)
		}
		prevH = int(h[i])
	}
	ltu := h[word.Size-1] == 1
	wantTaken := ltu
	if isBgeu {
		wantTaken = !ltu
	}
	taken := cellIsOne(tb.Main, c.taken, row, c.fields)
	if taken != wantTaken {
		return fmt.Errorf("branch_taken at row %d is %v, want %v", row, taken, wantTaken)
	}

	// The PC update itself wraps modulo 2^32 like every other RV32 word
	// operation (spec.md §4.6 "RV32 modular arithmetic"); it is checked
	// here as native uint32 arithmetic rather than field arithmetic, since
	// pc/next_pc are stored as whole-word field values rather than byte
	// limbs and the field's modulus does not coincide with 2^32.
	pcVal := uint32(fieldToUint64(tb.Main.Cell(c.cpu.PCSpan().Offset, row)))
	nextPCVal := uint32(fieldToUint64(tb.Main.Cell(c.cpu.NextPCSpan().Offset, row)))
	imm := readWord(tb.Main, c.cpu.ImmSpan(), row, c.fields).ToUint32()
	want := pcVal + 4
	if taken {
		want = pcVal + imm
	}
	if nextPCVal != want {
		return fmt.Errorf("next_pc at row %d does not match taken=%v PC update", row, taken)
	}
	return nil
}

// fieldToUint64 recovers the uint64 a whole-word column cell holds. Every
// such cell in this trace is filled via FromUint64, so the low 8 bytes of
// the canonical big-endian encoding Bytes() returns reassemble it exactly.
func fieldToUint64(f backend.Field) uint64 {
	b := f.Bytes()
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v
}

// SltChip arithmetizes SLT and SLTI via sign-bit and unsigned-magnitude
// decomposition (spec.md §4.6 "Signed comparisons"): result =
// sgn_b*(1-sgn_c) + ltu*(sgn_b*sgn_c + (1-sgn_b)*(1-sgn_c)), materialized
// in value_a[0] with the remaining limbs held at zero by construction
// (RdValue is always 0 or 1). ltu is read off the same unsigned borrow
// chain UnsignedBranchChip and SubChip use, computed independently here
// over the full words so SltChip does not depend on chip ordering.
type SltChip struct {
	cpu    *CPUChip
	fields backend.FieldFactory
	sgnB   trace.Span
	sgnC   trace.Span
	ltu    trace.Span
	borrow trace.Span
}

func NewSltChip(registry *trace.Registry, cpu *CPUChip, fields backend.FieldFactory) *SltChip {
	return &SltChip{
		cpu:    cpu,
		fields: fields,
		sgnB:   registry.MustReserve(trace.Main, "slt_sgn_b", 1),
		sgnC:   registry.MustReserve(trace.Main, "slt_sgn_c", 1),
		ltu:    registry.MustReserve(trace.Main, "slt_ltu", 1),
		borrow: registry.MustReserve(trace.Main, "slt_borrow", word.Size),
	}
}

func (c *SltChip) Name() string { return "slt" }

func boolField(v bool, fields backend.FieldFactory) backend.Field {
	if v {
		return fields.One()
	}
	return fields.Zero()
}

func (c *SltChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, _ *trace.SideNote) error {
	op := step.Instruction.Opcode.Builtin
	var sgnB, sgnC, ltu bool
	var borrow word.BoolWord
	if !step.IsPadding && (op == riscv.SLT || op == riscv.SLTI) {
		b := word.FromUint32(step.Rs1Value)
		var cVal uint32
		if step.Instruction.HasImm {
			cVal = uint32(step.Instruction.Imm)
		} else {
			cVal = step.Rs2Value
		}
		cc := word.FromUint32(cVal)
		sgnB = b.SignBit()
		sgnC = cc.SignBit()
		_, borrow = borrowLimbs(b, cc)
		ltu = borrow[word.Size-1]
	}
	if err := tb.Fill(trace.Main, row, "slt_sgn_b", []backend.Field{boolField(sgnB, c.fields)}); err != nil {
		return err
	}
	if err := tb.Fill(trace.Main, row, "slt_sgn_c", []backend.Field{boolField(sgnC, c.fields)}); err != nil {
		return err
	}
	if err := tb.Fill(trace.Main, row, "slt_ltu", []backend.Field{boolField(ltu, c.fields)}); err != nil {
		return err
	}
	return tb.Fill(trace.Main, row, "slt_borrow", boolLimbsToFields(borrow, c.fields))
}

func (c *SltChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	slt, _ := c.cpu.SelectorSpan(riscv.SLT)
	slti, _ := c.cpu.SelectorSpan(riscv.SLTI)
	if !cellIsOne(tb.Main, slt, row, c.fields) && !cellIsOne(tb.Main, slti, row, c.fields) {
		return nil
	}
	one := c.fields.One()
	sgnB := tb.Main.Cell(c.sgnB.Offset, row)
	sgnC := tb.Main.Cell(c.sgnC.Offset, row)
	ltu := tb.Main.Cell(c.ltu.Offset, row)
	for _, v := range []backend.Field{sgnB, sgnC, ltu} {
		if !v.IsZero() && !v.Equal(one) {
			return fmt.Errorf("slt sign/ltu witness at row %d is not boolean", row)
		}
	}
	notSgnB := one.Sub(sgnB)
	notSgnC := one.Sub(sgnC)
	result := sgnB.Mul(notSgnC).Add(ltu.Mul(sgnB.Mul(sgnC).Add(notSgnB.Mul(notSgnC))))

	a := readWord(tb.Main, c.cpu.ValueASpan(), row, c.fields)
	got := c.fields.FromUint64(uint64(a[0]))
	for i := 1; i < word.Size; i++ {
		if a[i] != 0 {
			return fmt.Errorf("slt result at row %d: value_a limb %d is %d, want 0", row, i, a[i])
		}
	}
	if !got.Equal(result) {
		return fmt.Errorf("slt result at row %d does not match sign/ltu decomposition", row)
	}
	return nil
}
