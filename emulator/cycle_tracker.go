package emulator

// OpStats counts how often an opcode executed and how many of those
// executions were on the critical path of a basic block fetch miss
// (spec.md §12, grounded on the original's executor.rs cycle_tracker and
// the teacher's PerformanceStatistics counters).
type OpStats struct {
	Count       int
	BlockFaults int
}

// CycleTracker accumulates per-opcode execution counts across a full run,
// keyed by the opcode's mnemonic so it reads directly as a diagnostic
// table.
type CycleTracker map[string]OpStats

// NewCycleTracker returns an empty tracker.
func NewCycleTracker() CycleTracker {
	return make(CycleTracker)
}

// Record increments the count for name, tallying a block fault when this
// execution came from a basic block the cache had to decode.
func (c CycleTracker) Record(name string, blockFault bool) {
	s := c[name]
	s.Count++
	if blockFault {
		s.BlockFaults++
	}
	c[name] = s
}

// Total returns the number of instructions recorded across all opcodes.
func (c CycleTracker) Total() int {
	var total int
	for _, s := range c {
		total += s.Count
	}
	return total
}
