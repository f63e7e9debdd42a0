package memory

// MemoryTop is the highest address a Harvard-pass data/stack region may
// reach before wrapping into the reserved top of the 32-bit space
// (spec.md §6 "maximum address = 2^32 - 1").
const MemoryTop uint32 = 0xFFFFFFFF - 0x1000 // leave a guard page at the top

// WordAlign rounds addr up to the next multiple of 4.
func WordAlign(addr uint32) uint32 {
	return (addr + 3) &^ 3
}

// MemoryStats accumulates the footprint the Harvard pass observes: the
// high-water mark of the heap/data region and the low-water mark of the
// stack pointer. The Linear pass uses these two numbers to size a single
// unified address space tightly instead of over-provisioning (spec.md
// §4.1, §9 "Two-pass layout discovery").
type MemoryStats struct {
	MaxDataEnd      uint32
	MinStackPointer uint32
}

// NewMemoryStats seeds the stack low-water mark at the top of the address
// space, since the stack only ever grows downward from there.
func NewMemoryStats(initialDataEnd uint32) *MemoryStats {
	return &MemoryStats{MaxDataEnd: initialDataEnd, MinStackPointer: MemoryTop}
}

// RecordDataEnd widens the heap high-water mark if end exceeds it.
func (s *MemoryStats) RecordDataEnd(end uint32) {
	if end > s.MaxDataEnd {
		s.MaxDataEnd = end
	}
}

// RecordStackPointer narrows the stack low-water mark if sp is lower than
// the current mark.
func (s *MemoryStats) RecordStackPointer(sp uint32) {
	if sp < s.MinStackPointer {
		s.MinStackPointer = sp
	}
}

// LinearMemoryLayout lays out the unified address space the Linear pass
// executes against: program image, public input, public output, and a
// combined data+stack region sized from MemoryStats, every region rounded
// to word alignment (spec.md §4.1, §4.3).
type LinearMemoryLayout struct {
	ProgramBase uint32
	ProgramSize uint32

	PublicInputBase uint32
	PublicInputSize uint32

	PublicOutputBase uint32
	PublicOutputSize uint32

	DataBase uint32
	DataSize uint32

	StackBase uint32
	StackSize uint32
}

// NewLinearMemoryLayout computes a tight layout from the Harvard pass's
// observed statistics. Regions are placed contiguously in the order
// program, public input, public output, data, stack, each word-aligned.
func NewLinearMemoryLayout(stats MemoryStats, programBase uint32, programWords int, publicInputLen, publicOutputLen uint32) LinearMemoryLayout {
	layout := LinearMemoryLayout{
		ProgramBase: programBase,
		ProgramSize: WordAlign(uint32(programWords) * 4),
	}
	layout.PublicInputBase = layout.ProgramBase + layout.ProgramSize
	layout.PublicInputSize = WordAlign(4 + publicInputLen) // 4-byte length prefix, spec.md §6

	layout.PublicOutputBase = layout.PublicInputBase + layout.PublicInputSize
	layout.PublicOutputSize = WordAlign(publicOutputLen)
	if layout.PublicOutputSize == 0 {
		layout.PublicOutputSize = 4 // room for the exit code word at minimum
	}

	layout.DataBase = layout.PublicOutputBase + layout.PublicOutputSize
	dataExtent := stats.MaxDataEnd
	if dataExtent < layout.DataBase {
		dataExtent = layout.DataBase
	}
	layout.DataSize = WordAlign(dataExtent - layout.DataBase)

	layout.StackBase = layout.DataBase + layout.DataSize
	stackExtent := MemoryTop - stats.MinStackPointer
	layout.StackSize = WordAlign(stackExtent + 4096) // headroom for the initial frame
	return layout
}
