package chips

import (
	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/trace"
	"github.com/rvzk/zkvm/word"
)

// Build assembles the full chip tuple for this core: the CPU chip first
// (it owns the columns every other chip reads), then one chip per
// arithmetic/branch family, then the cross-row consistency chips, and
// finally the range-check chips, which must run last because they consume
// columns the earlier chips fill (spec.md §4.5, §4.8 "Range checks are the
// last entries in the global chip tuple").
func Build(registry *trace.Registry, fields backend.FieldFactory, img *program.Image) Tuple {
	cpu := NewCPUChip(registry, fields)
	add := NewAddChip(registry, cpu, fields)
	sub := NewSubChip(registry, cpu, fields)
	branch := NewUnsignedBranchChip(registry, cpu, fields)
	slt := NewSltChip(registry, cpu, fields)
	mem := NewMemoryConsistencyChip(registry, fields)
	prog := NewProgramChip(registry, cpu, fields, img)

	boolChecks := NewRangeCheckChip("bool", BoundBool)
	boolChecks.Consume(add.carry)
	boolChecks.Consume(sub.borrow)
	boolChecks.Consume(branch.borrow)
	boolChecks.Consume(branch.taken)
	boolChecks.Consume(slt.sgnB)
	boolChecks.Consume(slt.sgnC)
	boolChecks.Consume(slt.ltu)

	byteChecks := NewRangeCheckChip("256", Bound256)
	byteChecks.Consume(cpu.ValueASpan())
	byteChecks.Consume(cpu.ValueBSpan())
	byteChecks.Consume(cpu.ValueCSpan())
	byteChecks.Consume(cpu.ImmSpan())
	byteChecks.Consume(trace.Span{Offset: slt.borrow.Offset, Width: word.Size})

	return Tuple{cpu, add, sub, branch, slt, mem, prog, boolChecks, byteChecks}
}

// ProgramTableFiller is implemented by chips that need a one-time pass to
// fill a preprocessed/program table ahead of the per-step main-table scan
// (spec.md §4.9 step 2). Build's ProgramChip is the only current example.
type ProgramTableFiller interface {
	FillProgramTable(tb *trace.Builder) error
}

// FillProgramTables runs FillProgramTable on every chip in t that
// implements ProgramTableFiller.
func (t Tuple) FillProgramTables(tb *trace.Builder) error {
	for _, c := range t {
		if f, ok := c.(ProgramTableFiller); ok {
			if err := f.FillProgramTable(tb); err != nil {
				return err
			}
		}
	}
	return nil
}
