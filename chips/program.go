package chips

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/trace"
)

// programRelation names the LogUp relation the program-ROM consistency
// chip draws its challenges under (spec.md §4.7 "Analogous chips exist for
// register file and program ROM consistency").
const programRelation = "program"

// ProgramChip preprocesses the program image into the program table (one
// (pc, instruction word) row per program word, spec.md §2 "program table:
// the immutable instruction memory") and, in the main table, records which
// (pc, raw) pair each step actually fetched. The two must agree: every
// fetch must name a row that exists verbatim in the program table.
//
// Register-file consistency has no analogous chip here: this core executes
// strictly in program order with a single linear register array (spec.md
// §4.1 "CPU"), so there is no reordering across rows for a LogUp argument
// to certify — the array itself is already the single source of truth.
type ProgramChip struct {
	cpu    *CPUChip
	fields backend.FieldFactory

	fetchPC, fetchRaw trace.Span
	progPC, progRaw   trace.Span
	logup             trace.Span

	image *program.Image
}

// NewProgramChip reserves its columns and preloads the program table from
// img. cpu is consulted to tell a real fetch apart from a padding row (spec.md
// §4.4, §4.9): a padding row carries no active selector and is never
// audited against the program table.
func NewProgramChip(registry *trace.Registry, cpu *CPUChip, fields backend.FieldFactory, img *program.Image) *ProgramChip {
	return &ProgramChip{
		cpu:      cpu,
		fields:   fields,
		fetchPC:  registry.MustReserve(trace.Main, "fetch_pc", 1),
		fetchRaw: registry.MustReserve(trace.Main, "fetch_raw", 1),
		progPC:   registry.MustReserve(trace.Program, "program_pc", 1),
		progRaw:  registry.MustReserve(trace.Program, "program_raw", 1),
		logup:    registry.MustReserve(trace.Interaction, "program_logup", 1),
		image:    img,
	}
}

func (c *ProgramChip) Name() string { return "program" }

// FillProgramTable fills every row of the program table from the image,
// zero-padding past the instruction count. Call once per proving run,
// before or after filling steps into the main table.
func (c *ProgramChip) FillProgramTable(tb *trace.Builder) error {
	prog := tb.Table(trace.Program)
	for row := 0; row < prog.NumRows; row++ {
		var pc, raw uint64
		if row < len(c.image.Instructions) {
			pc = uint64(c.image.Base + uint32(row)*4)
			raw = uint64(c.image.Instructions[row])
		}
		if err := tb.Fill(trace.Program, row, "program_pc", []backend.Field{c.fields.FromUint64(pc)}); err != nil {
			return err
		}
		if err := tb.Fill(trace.Program, row, "program_raw", []backend.Field{c.fields.FromUint64(raw)}); err != nil {
			return err
		}
	}
	return nil
}

func (c *ProgramChip) FillMainTrace(tb *trace.Builder, row int, step *emulator.ProgramStep, _ *trace.SideNote) error {
	if err := tb.Fill(trace.Main, row, "fetch_pc", []backend.Field{c.fields.FromUint64(uint64(step.PC))}); err != nil {
		return err
	}
	return tb.Fill(trace.Main, row, "fetch_raw", []backend.Field{c.fields.FromUint64(uint64(step.Instruction.Raw))})
}

func (c *ProgramChip) DrawLookupElements(channel backend.Channel, all *LookupElements) error {
	_, err := all.Register(programRelation, channel)
	return err
}

func (c *ProgramChip) FillInteractionTrace(tb *trace.Builder, all *LookupElements) error {
	le := all.MustGet(programRelation)
	main := tb.Table(trace.Main)
	prog := tb.Table(trace.Program)
	for row := 0; row < main.NumRows; row++ {
		fetchTerm := le.Compress(main.Cell(c.fetchPC.Offset, row), main.Cell(c.fetchRaw.Offset, row)).Inverse()
		progTerm := le.Compress(prog.Cell(c.progPC.Offset, row), prog.Cell(c.progRaw.Offset, row)).Inverse()
		net := fetchTerm.Sub(progTerm)
		if err := tb.Fill(trace.Interaction, row, "program_logup", []backend.Field{net}); err != nil {
			return err
		}
	}
	return nil
}

// EvaluateConstraints checks that the (pc, raw) pair fetched at row exists
// verbatim somewhere in the program table — the row-local form of the ROM
// consistency argument (spec.md §8 "every fetched instruction word matches
// the program image at that address"). A padding row (spec.md §4.4, §4.9)
// has no active CPU selector and fetches nothing real, so it is exempt:
// its fetch_pc commonly sits one word past the image and would otherwise
// be rejected as unknown.
func (c *ProgramChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	if !c.cpu.rowIsActive(tb, row) {
		return nil
	}
	fetchPC := tb.Main.Cell(c.fetchPC.Offset, row)
	fetchRaw := tb.Main.Cell(c.fetchRaw.Offset, row)
	for r := 0; r < tb.Program.NumRows; r++ {
		if tb.Program.Cell(c.progPC.Offset, r).Equal(fetchPC) {
			if !tb.Program.Cell(c.progRaw.Offset, r).Equal(fetchRaw) {
				return fmt.Errorf("program: row %d fetched raw word does not match program table at pc %v", row, fetchPC)
			}
			return nil
		}
	}
	return fmt.Errorf("program: row %d fetched pc %v is not present in the program table", row, fetchPC)
}
