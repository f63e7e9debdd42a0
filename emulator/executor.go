package emulator

import (
	"github.com/rvzk/zkvm/riscv"
)

// MemoryAccessor is the subset of memory.HarvardMemory and memory.LinearMemory
// that instruction executors need. Both concrete memories satisfy it, so the
// same executor registry runs unmodified in either pass (spec.md §4.3).
type MemoryAccessor interface {
	Load(addr uint32, size int) (uint32, error)
	Store(addr uint32, size int, value uint32) error
}

// Environment carries the state an executor needs beyond registers and
// memory: the private input tape, the collected public output bytes and the
// diagnostic cycle tracker.
type Environment struct {
	PrivateInput *PrivateInputTape
	PublicOutput []byte
	Cycles       CycleTracker
	Halted       bool
	ExitCode     uint32
}

// ExecutorFunc performs the semantics of one instruction: it reads operands
// from cpu/mem, writes the result back, and fills in step's Rs1Value/
// Rs2Value/RdValue fields for the trace builder. The Linear pass attaches
// the Load/Store records after the executor returns.
type ExecutorFunc func(step *ProgramStep, cpu *CPU, mem MemoryAccessor, env *Environment) error

// OverlayKind selects which overlay map, if any, should be consulted before
// falling back to the standard executor for an opcode. The Harvard pass
// uses ReadInput/WriteOutput overlays to route LW/SW-shaped accesses against
// the input/output segments through RIN/WOU semantics instead of a plain
// load/store (spec.md §4.3 "instruction executor registry... overlay
// maps for reading input and writing output").
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayReadInput
	OverlayWriteOutput
)

// Registry dispatches a decoded opcode to the executor function that
// implements it, consulting an overlay map first when one is selected.
type Registry struct {
	standard     map[riscv.BuiltinOpcode]ExecutorFunc
	readInput    map[riscv.BuiltinOpcode]ExecutorFunc
	writeOutput  map[riscv.BuiltinOpcode]ExecutorFunc
	custom       map[[2]uint8]ExecutorFunc // keyed by (funct3, funct7) for CUSTOM0
}

// NewRegistry builds a registry with every RV32I opcode this emulator
// supports bound to its standard executor.
func NewRegistry() *Registry {
	r := &Registry{
		standard:    map[riscv.BuiltinOpcode]ExecutorFunc{},
		readInput:   map[riscv.BuiltinOpcode]ExecutorFunc{},
		writeOutput: map[riscv.BuiltinOpcode]ExecutorFunc{},
		custom:      map[[2]uint8]ExecutorFunc{},
	}
	r.registerStandard()
	r.readInput[riscv.LW] = execRIN
	r.readInput[riscv.LB] = execRIN
	r.readInput[riscv.LH] = execRIN
	r.readInput[riscv.LBU] = execRIN
	r.readInput[riscv.LHU] = execRIN
	r.writeOutput[riscv.SW] = execWOU
	r.writeOutput[riscv.SB] = execWOU
	r.writeOutput[riscv.SH] = execWOU
	return r
}

// RegisterCustom binds an executor for a CUSTOM0 instruction identified by
// its (funct3, funct7) pair, letting a host application extend the ISA
// without modifying the decoder (spec.md §4.2 "dynamic R-type opcode").
func (r *Registry) RegisterCustom(funct3, funct7 uint8, fn ExecutorFunc) {
	r.custom[[2]uint8{funct3, funct7}] = fn
}

// Lookup resolves the executor for an instruction, consulting the overlay
// selected by kind before the standard table.
func (r *Registry) Lookup(in riscv.Instruction, kind OverlayKind) (ExecutorFunc, bool) {
	if in.Opcode.Builtin == riscv.CUSTOM0 {
		fn, ok := r.custom[[2]uint8{in.Opcode.Funct3, in.Opcode.Funct7}]
		return fn, ok
	}
	switch kind {
	case OverlayReadInput:
		if fn, ok := r.readInput[in.Opcode.Builtin]; ok {
			return fn, true
		}
	case OverlayWriteOutput:
		if fn, ok := r.writeOutput[in.Opcode.Builtin]; ok {
			return fn, true
		}
	}
	fn, ok := r.standard[in.Opcode.Builtin]
	return fn, ok
}
