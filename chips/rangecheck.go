package chips

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/trace"
)

// RangeCheckChip audits that every cell of its registered consumer columns
// holds a value strictly below Bound (spec.md §4.8: "{bool, 8, 16, 32, 128,
// 256}" range families, e.g. "k[i] ∈ {0,1} by range check"). It owns no
// columns of its own and must be placed after every chip whose columns it
// consumes (spec.md §4.5 "order within the tuple matters").
//
// The soundness argument spec.md §4.8 describes — a LogUp multiset lookup
// against a preprocessed table of the valid range — is the STARK backend's
// job once it has the bound and the consumer columns; that table and its
// multiset equality are out of this core's scope (spec.md §1, §6). This
// chip performs the equivalent direct bound audit so a violated range
// shows up immediately during witness generation (spec.md §8 "range
// soundness").
type RangeCheckChip struct {
	name      string
	bound     uint64
	consumers []trace.Span
}

// NewRangeCheckChip returns a chip enforcing values < bound. bound must be
// a power of two per spec.md §4.8's named families (2, 8, 16, 32, 128, 256).
func NewRangeCheckChip(name string, bound uint64) *RangeCheckChip {
	return &RangeCheckChip{name: name, bound: bound}
}

// Consume registers span as a column this chip must bound-check.
func (c *RangeCheckChip) Consume(span trace.Span) {
	c.consumers = append(c.consumers, span)
}

func (c *RangeCheckChip) Name() string { return "range_" + c.name }

func (c *RangeCheckChip) FillMainTrace(*trace.Builder, int, *emulator.ProgramStep, *trace.SideNote) error {
	return nil
}

func (c *RangeCheckChip) EvaluateConstraints(tb *trace.FinalizedTrace, row int) error {
	for _, span := range c.consumers {
		for i := 0; i < span.Width; i++ {
			v := fieldToUint64(tb.Main.Cell(span.Offset+i, row))
			if v >= c.bound {
				return fmt.Errorf("range_%s: value %d at row %d column %d exceeds bound %d", c.name, v, row, span.Offset+i, c.bound)
			}
		}
	}
	return nil
}

// Standard range families named in spec.md §4.8: n ∈ {bool,8,16,32,128,256}
// is the table [0, n) itself, not a bit width.
const (
	BoundBool = 2
	Bound8    = 8
	Bound16   = 16
	Bound32   = 32
	Bound128  = 128
	Bound256  = 256
)

var _ backend.Field // keep backend imported for doc-comment cross reference
