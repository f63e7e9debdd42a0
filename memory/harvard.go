package memory

// HarvardMemory is the first-pass address space: instruction words, public
// input, public output, and data are four separate segments with no cross-
// segment aliasing and no access transcript. Its only job beyond ordinary
// loads/stores is to surface the footprint statistics the Linear pass needs
// to size a unified address space (spec.md §4.1, §4.3 "Harvard pass").
type HarvardMemory struct {
	Instruction *Segment
	Input       *Segment
	Output      *Segment
	Data        *Segment

	Stats *MemoryStats
}

// NewHarvardMemory builds the four segments from an already-sized program
// image. dataSize is the size of the data segment, which holds the heap and
// stack: their footprint is tracked via Stats, and an access outside the
// segment fails with OutOfBoundsError.
func NewHarvardMemory(programBase uint32, programWords int, input []byte, outputSize uint32, dataBase, dataSize uint32) *HarvardMemory {
	instr := NewSegment("instruction", programBase, WordAlign(uint32(programWords)*4), ReadOnly)

	in := NewSegment("input", instr.end(), WordAlign(4+uint32(len(input))), ReadOnly)
	copy(in.Data, storeLE(uint32(len(input)), 4))
	copy(in.Data[4:], input)

	out := NewSegment("output", in.end(), WordAlign(outputSize), WriteOnly)
	data := NewSegment("data", dataBase, WordAlign(dataSize), ReadWrite)

	return &HarvardMemory{
		Instruction: instr,
		Input:       in,
		Output:      out,
		Data:        data,
		Stats:       NewMemoryStats(data.Base),
	}
}

func (m *HarvardMemory) segmentFor(addr uint32, size int) (*Segment, error) {
	for _, s := range []*Segment{m.Instruction, m.Input, m.Output, m.Data} {
		if s.contains(addr, size) {
			return s, nil
		}
	}
	return nil, &OutOfBoundsError{Address: addr, Size: size}
}

// Load reads size bytes (1, 2 or 4) starting at addr as a little-endian
// value, regardless of which of the four segments it falls in.
func (m *HarvardMemory) Load(addr uint32, size int) (uint32, error) {
	seg, err := m.segmentFor(addr, size)
	if err != nil {
		return 0, err
	}
	if err := seg.checkRead(addr, size); err != nil {
		return 0, err
	}
	return loadLE(seg.readBytes(addr, size)), nil
}

// Store writes value as size little-endian bytes starting at addr. Writes
// into the data segment widen the heap high-water mark recorded in Stats.
func (m *HarvardMemory) Store(addr uint32, size int, value uint32) error {
	seg, err := m.segmentFor(addr, size)
	if err != nil {
		return err
	}
	if err := seg.checkWrite(addr, size); err != nil {
		return err
	}
	seg.writeBytes(addr, storeLE(value, size))
	if seg == m.Data {
		m.Stats.RecordDataEnd(addr + uint32(size))
	}
	return nil
}

// RecordStackPointer should be called by the emulator on every update to
// the stack-pointer register so Stats tracks the stack's low-water mark
// even though the stack lives inside the data segment and never triggers
// a bounds failure on its own (spec.md §9).
func (m *HarvardMemory) RecordStackPointer(sp uint32) {
	m.Stats.RecordStackPointer(sp)
}
