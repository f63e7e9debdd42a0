package chips

import (
	"testing"

	"github.com/rvzk/zkvm/backend/reference"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/riscv"
	"github.com/rvzk/zkvm/trace"
)

func buildProgramChip(t *testing.T, instructions []uint32) (*trace.Registry, *CPUChip, *ProgramChip) {
	t.Helper()
	registry := trace.NewRegistry()
	fields := reference.Factory{}
	cpu := NewCPUChip(registry, fields)
	img := program.NewImage(0x1000, instructions)
	return registry, cpu, NewProgramChip(registry, cpu, fields, img)
}

func TestProgramChipPreloadsTheProgramTable(t *testing.T) {
	instructions := []uint32{0x111, 0x222, 0x333}
	registry, _, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 4, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	table := builder.Table(trace.Program)
	for i, want := range instructions {
		if got := fieldToUint64(table.Cell(prog.progPC.Offset, i)); got != uint64(0x1000+i*4) {
			t.Fatalf("row %d pc = %v, want %d", i, got, 0x1000+i*4)
		}
		if got := fieldToUint64(table.Cell(prog.progRaw.Offset, i)); got != uint64(want) {
			t.Fatalf("row %d raw = %v, want %#x", i, got, want)
		}
	}
	// a row past the instruction count is zero-padded.
	if got := fieldToUint64(table.Cell(prog.progPC.Offset, 3)); got != 0 {
		t.Fatalf("padding row pc = %v, want 0", got)
	}
	if got := fieldToUint64(table.Cell(prog.progRaw.Offset, 3)); got != 0 {
		t.Fatalf("padding row raw = %v, want 0", got)
	}
}

func TestProgramChipAcceptsAFetchThatMatchesTheImage(t *testing.T) {
	instructions := []uint32{0x111, 0x222}
	registry, cpu, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 2, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	step := emulator.ProgramStep{
		PC:          0x1004,
		Instruction: riscv.Instruction{Raw: 0x222, Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR},
	}
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("cpu FillMainTrace: %v", err)
	}
	if err := prog.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("FillMainTrace: %v", err)
	}
	builder.PadRow(1)

	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := prog.EvaluateConstraints(finalized, 0); err != nil {
		t.Fatalf("expected a genuine fetch to verify: %v", err)
	}
}

func TestProgramChipRejectsAFetchThatDoesNotMatchTheImage(t *testing.T) {
	instructions := []uint32{0x111, 0x222}
	registry, cpu, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 2, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	// claims pc 0x1004 fetched 0x999, but the image holds 0x222 there.
	step := emulator.ProgramStep{
		PC:          0x1004,
		Instruction: riscv.Instruction{Raw: 0x999, Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR},
	}
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("cpu FillMainTrace: %v", err)
	}
	if err := prog.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("FillMainTrace: %v", err)
	}
	builder.PadRow(1)

	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := prog.EvaluateConstraints(finalized, 0); err == nil {
		t.Fatal("expected a mismatch between the fetched raw word and the program table")
	}
}

func TestProgramChipRejectsAFetchAtAnUnknownPC(t *testing.T) {
	instructions := []uint32{0x111}
	registry, cpu, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 1, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	step := emulator.ProgramStep{
		PC:          0x9999,
		Instruction: riscv.Instruction{Raw: 0x111, Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR},
	}
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("cpu FillMainTrace: %v", err)
	}
	if err := prog.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("FillMainTrace: %v", err)
	}

	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := prog.EvaluateConstraints(finalized, 0); err == nil {
		t.Fatal("expected a fetch at an address outside the program table to be rejected")
	}
}

func TestProgramChipSkipsAPaddingRow(t *testing.T) {
	// A padding row's fetch_pc commonly sits one word past the image (the
	// final real step's NextPC); EvaluateConstraints must not reject it.
	instructions := []uint32{0x111}
	registry, cpu, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 1, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	step := emulator.ProgramStep{PC: 0x1004, IsPadding: true, Instruction: riscv.Instruction{Raw: 0}}
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("cpu FillMainTrace: %v", err)
	}
	if err := prog.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("FillMainTrace: %v", err)
	}

	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := prog.EvaluateConstraints(finalized, 0); err != nil {
		t.Fatalf("expected a padding row with no active selector to be exempt: %v", err)
	}
}

func TestProgramChipInteractionTraceNetsZeroWhenFetchesCoverTheTable(t *testing.T) {
	instructions := []uint32{0x111, 0x222}
	registry, cpu, prog := buildProgramChip(t, instructions)

	builder := trace.NewBuilder(registry, 2, reference.Factory{})
	if err := prog.FillProgramTable(builder); err != nil {
		t.Fatalf("FillProgramTable: %v", err)
	}
	steps := []emulator.ProgramStep{
		{PC: 0x1000, Instruction: riscv.Instruction{Raw: 0x111, Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR}},
		{PC: 0x1004, Instruction: riscv.Instruction{Raw: 0x222, Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR}},
	}
	for i := range steps {
		if err := cpu.FillMainTrace(builder, i, &steps[i], builder.SideNote); err != nil {
			t.Fatalf("cpu fill row %d: %v", i, err)
		}
		if err := prog.FillMainTrace(builder, i, &steps[i], builder.SideNote); err != nil {
			t.Fatalf("fill row %d: %v", i, err)
		}
	}
	if _, err := builder.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	channel := reference.NewChannel()
	all := NewLookupElements()
	if err := prog.DrawLookupElements(channel, all); err != nil {
		t.Fatalf("draw lookup elements: %v", err)
	}
	if err := prog.FillInteractionTrace(builder, all); err != nil {
		t.Fatalf("fill interaction trace: %v", err)
	}
	if err := builder.FinalizeInteraction(); err != nil {
		t.Fatalf("finalize interaction: %v", err)
	}

	interaction := builder.Table(trace.Interaction)
	var sum = reference.Factory{}.Zero()
	for row := 0; row < interaction.NumRows; row++ {
		sum = sum.Add(interaction.Cell(prog.logup.Offset, row))
	}
	if !sum.IsZero() {
		t.Fatal("when every fetch matches a distinct program row one-for-one, the net LogUp sum should cancel to zero")
	}
}
