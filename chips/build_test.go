package chips

import (
	"testing"

	"github.com/rvzk/zkvm/backend/reference"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/trace"
)

func TestBuildAssemblesARangeCheckChipsLastTuple(t *testing.T) {
	registry := trace.NewRegistry()
	img := program.NewImage(0x1000, []uint32{0x13})
	tuple := Build(registry, reference.Factory{}, img)

	if len(tuple) == 0 {
		t.Fatal("Build returned an empty tuple")
	}
	n := len(tuple)
	if _, ok := tuple[n-1].(*RangeCheckChip); !ok {
		t.Fatalf("last chip is %T, want *RangeCheckChip", tuple[n-1])
	}
	if _, ok := tuple[n-2].(*RangeCheckChip); !ok {
		t.Fatalf("second-to-last chip is %T, want *RangeCheckChip", tuple[n-2])
	}
	for i := 0; i < n-2; i++ {
		if _, ok := tuple[i].(*RangeCheckChip); ok {
			t.Fatalf("range-check chip found at non-terminal position %d", i)
		}
	}
}

func TestBuildReservesDistinctColumnsPerChip(t *testing.T) {
	registry := trace.NewRegistry()
	img := program.NewImage(0x1000, []uint32{0x13})
	// MustReserve panics on a duplicate column name within a table kind,
	// so reaching this line at all already proves no chip in the tuple
	// collided with another's columns.
	Build(registry, reference.Factory{}, img)

	if w := registry.Width(trace.Main); w == 0 {
		t.Fatal("expected Build to reserve at least one main-table column")
	}
	if w := registry.Width(trace.Interaction); w == 0 {
		t.Fatal("expected Build to reserve at least one interaction-table column")
	}
	if w := registry.Width(trace.Program); w == 0 {
		t.Fatal("expected Build to reserve at least one program-table column")
	}
}

func TestBuildFirstChipIsTheCPUChip(t *testing.T) {
	registry := trace.NewRegistry()
	img := program.NewImage(0x1000, []uint32{0x13})
	tuple := Build(registry, reference.Factory{}, img)
	if _, ok := tuple[0].(*CPUChip); !ok {
		t.Fatalf("first chip is %T, want *CPUChip", tuple[0])
	}
}
