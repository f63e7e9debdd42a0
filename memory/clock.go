package memory

// LoadRecord and StoreRecord are the (address, size, value, timestamp)
// tuples the Linear pass emits for every memory access (spec.md §3
// "Memory record"). The invariant the memory-consistency chip enforces —
// value_before of record i+1 equals value_after of record i, ordered by
// timestamp_cur — is maintained here by Clock, not by the chip; the chip
// only checks it algebraically against the transcript Clock produces.
type LoadRecord struct {
	Address       uint32
	Size          int
	Value         uint32
	TimestampPrev uint64
	TimestampCur  uint64
}

type StoreRecord struct {
	Address       uint32
	Size          int
	ValueBefore   uint32
	ValueAfter    uint32
	TimestampPrev uint64
	TimestampCur  uint64
}

// Clock assigns the access timestamp for every load/store and tracks, per
// address, the most recent timestamp at three granularities: the exact
// byte address, its enclosing halfword-aligned address, and its enclosing
// word-aligned address. An access's "previous timestamp" is the maximum of
// all three so that a sub-word write is never silently invisible to a
// later overlapping word read (spec.md §4.1).
type Clock struct {
	now   uint64
	exact map[uint32]uint64
	half  map[uint32]uint64
	word  map[uint32]uint64
}

// NewClock starts the global clock at 1; tick 0 is reserved to represent
// "before any access", matching the teacher's convention of starting
// instrumented counters above their zero value so "never touched" and
// "touched at t=0" stay distinguishable.
func NewClock() *Clock {
	return &Clock{now: 1, exact: map[uint32]uint64{}, half: map[uint32]uint64{}, word: map[uint32]uint64{}}
}

func halfAlign(addr uint32) uint32 { return addr &^ 1 }
func wordAlign(addr uint32) uint32 { return addr &^ 3 }

// prevTimestamp returns the maximum recorded timestamp across all bytes
// touched by an access of size starting at addr, at all three
// granularities.
func (c *Clock) prevTimestamp(addr uint32, size int) uint64 {
	var prev uint64
	for i := 0; i < size; i++ {
		a := addr + uint32(i)
		if ts := c.exact[a]; ts > prev {
			prev = ts
		}
		if ts := c.half[halfAlign(a)]; ts > prev {
			prev = ts
		}
		if ts := c.word[wordAlign(a)]; ts > prev {
			prev = ts
		}
	}
	return prev
}

// touch advances the clock and stamps every granularity for every byte in
// [addr, addr+size) with the new timestamp, returning (prev, cur).
func (c *Clock) touch(addr uint32, size int) (prev, cur uint64) {
	prev = c.prevTimestamp(addr, size)
	c.now++
	cur = c.now
	for i := 0; i < size; i++ {
		a := addr + uint32(i)
		c.exact[a] = cur
		c.half[halfAlign(a)] = cur
		c.word[wordAlign(a)] = cur
	}
	return prev, cur
}

// Now returns the current clock value without advancing it.
func (c *Clock) Now() uint64 { return c.now }
