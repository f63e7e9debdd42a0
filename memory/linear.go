package memory

// LinearMemory is the second-pass address space: a single unified segment
// covering program, public input, public output, data and stack regions as
// laid out by a LinearMemoryLayout, plus a full access transcript recording
// every load and store with its Clock timestamp (spec.md §4.1 "Linear
// pass"). The transcript is what the memory-consistency chip (§4.7)
// consumes to build its LogUp argument.
type LinearMemory struct {
	Layout LinearMemoryLayout
	bytes  []byte
	base   uint32

	clock *Clock
	Loads  []LoadRecord
	Stores []StoreRecord
}

// NewLinearMemory allocates the unified address space described by layout
// and copies in the program image, public input and initial data so that
// loads against untouched addresses read back the Harvard pass's initial
// values rather than zero.
func NewLinearMemory(layout LinearMemoryLayout, programWords []uint32, input []byte, initialData []byte) *LinearMemory {
	top := layout.StackBase + layout.StackSize
	m := &LinearMemory{
		Layout: layout,
		bytes:  make([]byte, top-layout.ProgramBase),
		base:   layout.ProgramBase,
		clock:  NewClock(),
	}
	for i, w := range programWords {
		copy(m.bytes[uint32(i)*4:], storeLE(w, 4))
	}
	inputOff := layout.PublicInputBase - layout.ProgramBase
	copy(m.bytes[inputOff:], storeLE(uint32(len(input)), 4))
	copy(m.bytes[inputOff+4:], input)

	dataOff := layout.DataBase - layout.ProgramBase
	copy(m.bytes[dataOff:], initialData)
	return m
}

func (m *LinearMemory) contains(addr uint32, size int) bool {
	if addr < m.base {
		return false
	}
	off := addr - m.base
	return uint64(off)+uint64(size) <= uint64(len(m.bytes))
}

func (m *LinearMemory) raw(addr uint32, size int) []byte {
	off := addr - m.base
	return m.bytes[off : off+uint32(size)]
}

// Load reads size bytes at addr, records the access in the transcript with
// its assigned timestamp, and returns the value.
func (m *LinearMemory) Load(addr uint32, size int) (uint32, error) {
	if !m.contains(addr, size) {
		return 0, &OutOfBoundsError{Address: addr, Size: size}
	}
	value := loadLE(m.raw(addr, size))
	prev, cur := m.clock.touch(addr, size)
	m.Loads = append(m.Loads, LoadRecord{
		Address: addr, Size: size, Value: value,
		TimestampPrev: prev, TimestampCur: cur,
	})
	return value, nil
}

// Store writes value as size little-endian bytes at addr, recording the
// before/after values and the transcript timestamps.
func (m *LinearMemory) Store(addr uint32, size int, value uint32) error {
	if !m.contains(addr, size) {
		return &OutOfBoundsError{Address: addr, Size: size}
	}
	before := loadLE(m.raw(addr, size))
	copy(m.raw(addr, size), storeLE(value, size))
	prev, cur := m.clock.touch(addr, size)
	m.Stores = append(m.Stores, StoreRecord{
		Address: addr, Size: size, ValueBefore: before, ValueAfter: value,
		TimestampPrev: prev, TimestampCur: cur,
	})
	return nil
}

// Now returns the current access timestamp.
func (m *LinearMemory) Now() uint64 { return m.clock.Now() }

// LastLoad returns the most recently appended load record. Callers that
// need to attach a record to a ProgramStep use this right after Load
// returns rather than threading the record back through the
// emulator.MemoryAccessor interface.
func (m *LinearMemory) LastLoad() LoadRecord { return m.Loads[len(m.Loads)-1] }

// LastStore returns the most recently appended store record.
func (m *LinearMemory) LastStore() StoreRecord { return m.Stores[len(m.Stores)-1] }
