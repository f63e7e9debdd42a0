package emulator

import (
	"github.com/rvzk/zkvm/memory"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/riscv"
)

// LinearEmulator runs the second pass against a single unified address
// space built from the Harvard pass's footprint statistics. Unlike the
// Harvard pass it keeps every ProgramStep it produces, since those steps
// are exactly the rows the trace builder consumes (spec.md §4.3, §4.4).
type LinearEmulator struct {
	CPU      *CPU
	Memory   *memory.LinearMemory
	Blocks   *riscv.BlockCache
	Registry *Registry
	Env      *Environment

	Steps []ProgramStep
}

// NewLinearEmulator constructs a Linear pass directly from a layout and
// initial image, without requiring a prior Harvard run (useful for tests
// that already know the footprint).
func NewLinearEmulator(entry uint32, mem *memory.LinearMemory, registry *Registry, privateInput []byte) *LinearEmulator {
	return &LinearEmulator{
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

// FromHarvard derives a LinearEmulator from a completed Harvard run: it
// computes a tight LinearMemoryLayout from the Harvard pass's MemoryStats
// and re-executes the same program image from scratch against the unified
// address space (spec.md §9 "Open Question: custom input/output opcode
// address-alignment mapping in the Linear pass").
func FromHarvard(img *program.Image, stats *memory.MemoryStats, publicInput, privateInput []byte, registry *Registry) *LinearEmulator {
	layout := memory.NewLinearMemoryLayout(*stats, img.Base, len(img.Instructions), uint32(len(publicInput)), 4)

	initialData := make([]byte, layout.DataSize)
	for addr, b := range img.RWData {
		if addr >= layout.DataBase && addr < layout.DataBase+layout.DataSize {
			initialData[addr-layout.DataBase] = b
		}
	}
	for addr, b := range img.ROData {
		if addr >= layout.DataBase && addr < layout.DataBase+layout.DataSize {
			initialData[addr-layout.DataBase] = b
		}
	}

	mem := memory.NewLinearMemory(layout, img.Instructions, publicInput, initialData)
	return NewLinearEmulator(img.Entry, mem, registry, privateInput)
}

func (e *LinearEmulator) fetchWords(pc uint32) []uint32 {
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

// Run executes the program to completion, appending one ProgramStep per
// instruction (including its resolved memory record, if any) to e.Steps.
func (e *LinearEmulator) Run() error {
	for !e.Env.Halted {
		decodesBefore := e.Blocks.Decodes
		block := e.Blocks.Fetch(e.CPU.PC, e.fetchWords)
		wasCached := e.Blocks.Decodes == decodesBefore
		if len(block.Instructions) == 0 {
			if _, err := e.Memory.Load(e.CPU.PC, 4); err != nil {
				return err
			}
			break
		}
		pc := e.CPU.PC
		for _, in := range block.Instructions {
			step := ProgramStep{PC: pc, NextPC: pc + 4, Instruction: in}
			loadsBefore, storesBefore := len(e.Memory.Loads), len(e.Memory.Stores)

			fn, ok := e.Registry.Lookup(in, OverlayNone)
			if !ok {
				return &UndefinedInstructionError{PC: pc, Raw: in.Raw}
			}
			if err := fn(&step, e.CPU, e.Memory, e.Env); err != nil {
				return err
			}
			if len(e.Memory.Loads) > loadsBefore {
				rec := e.Memory.LastLoad()
				step.Load = &rec
				step.Timestamp = rec.TimestampCur
			}
			if len(e.Memory.Stores) > storesBefore {
				rec := e.Memory.LastStore()
				step.Store = &rec
				step.Timestamp = rec.TimestampCur
			}
			e.Env.Cycles.Record(in.Opcode.String(), !wasCached)
			e.Steps = append(e.Steps, step)

			pc = step.NextPC
			e.CPU.PC = pc
			if e.Env.Halted {
				break
			}
		}
	}
	return nil
}
