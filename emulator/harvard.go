package emulator

import (
	"github.com/rvzk/zkvm/memory"
	"github.com/rvzk/zkvm/riscv"
)

// HarvardEmulator runs the first pass: it executes the program against
// separated instruction/input/output/data memories purely to discover the
// footprint (MemoryStats) the Linear pass needs, and to validate the
// program runs to completion at all. It produces no memory transcript
// (spec.md §4.3).
type HarvardEmulator struct {
	CPU      *CPU
	Memory   *memory.HarvardMemory
	Blocks   *riscv.BlockCache
	Registry *Registry
	Env      *Environment
}

// NewHarvardEmulator wires a CPU, memory and registry together. privateInput
// may be nil for programs that never read private data.
func NewHarvardEmulator(entry uint32, mem *memory.HarvardMemory, registry *Registry, privateInput []byte) *HarvardEmulator {
	return &HarvardEmulator{
		CPU:      NewCPU(entry),
		Memory:   mem,
		Blocks:   riscv.NewBlockCache(),
		Registry: registry,
		Env: &Environment{
			PrivateInput: NewPrivateInputTape(privateInput),
			Cycles:       NewCycleTracker(),
		},
	}
}

func (e *HarvardEmulator) fetchWords(pc uint32) []uint32 {
	var words []uint32
	for {
		v, err := e.Memory.Load(pc+uint32(len(words))*4, 4)
		if err != nil {
			break
		}
		words = append(words, v)
		in := riscv.Decode(v)
		if in.IsBranchOrJump() || in.Opcode.Builtin == riscv.UNIMPL {
			break
		}
	}
	return words
}

// overlayFor selects the Harvard-pass overlay for a load/store instruction
// by checking whether its effective address falls inside the input or
// output segment (spec.md §4.3).
func (e *HarvardEmulator) overlayFor(in riscv.Instruction) OverlayKind {
	if !in.Opcode.IsLoad() && !in.Opcode.IsStore() {
		return OverlayNone
	}
	addr := e.CPU.ReadReg(in.Rs1) + uint32(in.Imm)
	size := in.Opcode.LoadStoreSize()
	switch {
	case in.Opcode.IsLoad() && e.Memory.Input.Contains(addr, size):
		return OverlayReadInput
	case in.Opcode.IsStore() && e.Memory.Output.Contains(addr, size):
		return OverlayWriteOutput
	default:
		return OverlayNone
	}
}

// Run executes from the CPU's current PC until env.Halted is set or an
// error occurs, returning the final MemoryStats footprint.
func (e *HarvardEmulator) Run() (*memory.MemoryStats, error) {
	for !e.Env.Halted {
		decodesBefore := e.Blocks.Decodes
		block := e.Blocks.Fetch(e.CPU.PC, e.fetchWords)
		wasCached := e.Blocks.Decodes == decodesBefore
		if len(block.Instructions) == 0 {
			if _, err := e.Memory.Load(e.CPU.PC, 4); err != nil {
				return nil, err
			}
			break
		}
		pc := e.CPU.PC
		for _, in := range block.Instructions {
			step := &ProgramStep{PC: pc, NextPC: pc + 4, Instruction: in}
			kind := e.overlayFor(in)
			fn, ok := e.Registry.Lookup(in, kind)
			if !ok {
				return nil, &UndefinedInstructionError{PC: pc, Raw: in.Raw}
			}
			if err := fn(step, e.CPU, e.Memory, e.Env); err != nil {
				return nil, err
			}
			e.Env.Cycles.Record(in.Opcode.String(), !wasCached)
			if isStackPointerWrite(in) {
				e.Memory.RecordStackPointer(step.RdValue)
			}
			pc = step.NextPC
			e.CPU.PC = pc
			if e.Env.Halted {
				break
			}
		}
	}
	return e.Memory.Stats, nil
}

// isStackPointerWrite reports whether an instruction writes x2, the RISC-V
// calling-convention stack pointer register, so the Harvard pass can track
// its low-water mark (spec.md §9).
func isStackPointerWrite(in riscv.Instruction) bool {
	return in.Rd == 2 && in.Type != riscv.TypeS && in.Type != riscv.TypeB
}
