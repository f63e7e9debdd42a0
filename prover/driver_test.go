package prover

import (
	"errors"
	"testing"

	"github.com/rvzk/zkvm/backend/reference"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/memory"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/trace"
)

const (
	opOpImm = 0x13
	opOp    = 0x33
	opSys   = 0x73
)

func encR(funct7, rs2, rs1, funct3, rd uint32, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(imm uint32, rs1, funct3, rd uint32, opcode uint32) uint32 {
	return imm<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// sumProgram computes 5+7 into a0 and halts via ecall (spec.md §8's
// determinism scenario).
func sumProgram() []uint32 {
	return []uint32{
		encI(5, 0, 0, 1, opOpImm),  // addi x1, x0, 5
		encI(7, 0, 0, 2, opOpImm),  // addi x2, x0, 7
		encR(0, 2, 1, 0, 3, opOp),  // add  x3, x1, x2
		encI(0, 3, 0, 10, opOpImm), // addi a0, x3, 0
		encI(0, 0, 0, 0, opSys),    // ecall
	}
}

func runSumProgram(t *testing.T) (*program.Image, []emulator.ProgramStep) {
	t.Helper()
	img := program.NewImage(0x1000, sumProgram())
	stats := memory.NewMemoryStats(img.DataEnd())
	le := emulator.FromHarvard(img, stats, nil, nil, emulator.NewRegistry())
	if err := le.Run(); err != nil {
		t.Fatalf("linear run: %v", err)
	}
	return img, le.Steps
}

func TestProverRunProducesAllFourCommitments(t *testing.T) {
	img, steps := runSumProgram(t)
	back := reference.New(4)

	proof, err := Run(back, img, steps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for name, c := range map[string][]byte{
		"preprocessed": proof.Preprocessed,
		"main":         proof.Main,
		"interaction":  proof.Interaction,
		"program":      proof.Program,
	} {
		if len(c) == 0 {
			t.Fatalf("%s commitment is empty", name)
		}
	}
	if len(proof.Bytes) != len(proof.Preprocessed)+len(proof.Main)+len(proof.Interaction)+len(proof.Program) {
		t.Fatal("proof bytes should be the concatenation of the four commitments")
	}
}

func TestProverRunIsDeterministic(t *testing.T) {
	img, steps := runSumProgram(t)

	first, err := Run(reference.New(4), img, steps)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(reference.New(4), img, steps)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if string(first.Main) != string(second.Main) {
		t.Fatal("proving the same steps twice should commit to the same main table")
	}
}

func TestRunWithLimitRejectsATraceOverMaxSteps(t *testing.T) {
	img, steps := runSumProgram(t)
	back := reference.New(4)

	if _, err := RunWithLimit(back, img, steps, uint64(len(steps)-1)); err == nil {
		t.Fatal("expected a trace over max_steps to be rejected")
	} else if !errors.Is(err, ErrTraceOversized) {
		t.Fatalf("RunWithLimit error = %v, want errors.Is match against ErrTraceOversized", err)
	}
}

func TestRunWithLimitAcceptsATraceAtMaxSteps(t *testing.T) {
	img, steps := runSumProgram(t)
	back := reference.New(4)

	if _, err := RunWithLimit(back, img, steps, uint64(len(steps))); err != nil {
		t.Fatalf("RunWithLimit at the exact bound: %v", err)
	}
}

func TestVerifyConstraintsAcceptsAGenuineRun(t *testing.T) {
	img, steps := runSumProgram(t)
	registry := trace.NewRegistry()
	if err := VerifyConstraints(registry, reference.Factory{}, img, steps); err != nil {
		t.Fatalf("VerifyConstraints: %v", err)
	}
}

func TestVerifyConstraintsRejectsATamperedStep(t *testing.T) {
	img, steps := runSumProgram(t)
	tampered := make([]emulator.ProgramStep, len(steps))
	copy(tampered, steps)
	tampered[2].RdValue = tampered[2].RdValue + 1 // ADD's recorded result no longer matches its operands

	registry := trace.NewRegistry()
	if err := VerifyConstraints(registry, reference.Factory{}, img, tampered); err == nil {
		t.Fatal("expected a constraint violation for the tampered ADD result")
	}
}
