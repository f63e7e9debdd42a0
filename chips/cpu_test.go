package chips

import (
	"testing"

	"github.com/rvzk/zkvm/backend/reference"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/riscv"
	"github.com/rvzk/zkvm/trace"
)

func TestCPUChipExactlyOneSelectorActive(t *testing.T) {
	registry := trace.NewRegistry()
	fields := reference.Factory{}
	cpu := NewCPUChip(registry, fields)

	step := emulator.ProgramStep{
		Instruction: riscv.Instruction{Opcode: riscv.Opcode{Builtin: riscv.ADD}, Type: riscv.TypeR},
		Rs1Value:    1, Rs2Value: 2, RdValue: 3,
	}
	builder := trace.NewBuilder(registry, 1, fields)
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("fill: %v", err)
	}
	builder.PadRow(0)
	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := cpu.EvaluateConstraints(finalized, 0); err != nil {
		t.Fatalf("constraints: %v", err)
	}

	addSpan, ok := cpu.SelectorSpan(riscv.ADD)
	if !ok {
		t.Fatal("expected an is_add selector")
	}
	if !finalized.Main.Cell(addSpan.Offset, 0).Equal(fields.One()) {
		t.Fatal("is_add should be 1 for an ADD step")
	}
	subSpan, _ := cpu.SelectorSpan(riscv.SUB)
	if !finalized.Main.Cell(subSpan.Offset, 0).IsZero() {
		t.Fatal("is_sub should be 0 for an ADD step")
	}
}

func TestCPUChipPaddingRowHasNoActiveSelector(t *testing.T) {
	registry := trace.NewRegistry()
	fields := reference.Factory{}
	cpu := NewCPUChip(registry, fields)

	step := emulator.Padding(0x1000)
	builder := trace.NewBuilder(registry, 1, fields)
	if err := cpu.FillMainTrace(builder, 0, &step, builder.SideNote); err != nil {
		t.Fatalf("fill: %v", err)
	}
	builder.PadRow(0)
	finalized, err := builder.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := cpu.EvaluateConstraints(finalized, 0); err != nil {
		t.Fatalf("constraints: %v", err)
	}
}
