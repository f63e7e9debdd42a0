package trace

import (
	"testing"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/backend/reference"
)

func fieldRow(vs ...uint64) []backend.Field {
	out := make([]backend.Field, len(vs))
	for i, v := range vs {
		out[i] = reference.FromUint64(v)
	}
	return out
}

func TestFillSpanThenDoubleFillErrors(t *testing.T) {
	tbl := NewTable(Main, 4, 2, reference.Factory{})
	span := Span{Offset: 0, Width: 2}
	if err := tbl.FillSpan(0, span, fieldRow(1, 2)); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	if err := tbl.FillSpan(0, span, fieldRow(3, 4)); err == nil {
		t.Fatal("expected a double-fill error")
	}
}

func TestFillZeroRowOnlyTouchesUnfilled(t *testing.T) {
	tbl := NewTable(Main, 2, 1, reference.Factory{})
	tbl.FillSpan(0, Span{Offset: 0, Width: 1}, fieldRow(9))
	tbl.FillZeroRow(0)
	if !tbl.Cell(0, 0).Equal(reference.FromUint64(9)) {
		t.Fatal("FillZeroRow must not overwrite an already-filled cell")
	}
	if !tbl.Cell(1, 0).IsZero() {
		t.Fatal("FillZeroRow must fill the untouched cell with zero")
	}
}

func TestAllFilledDetectsGaps(t *testing.T) {
	tbl := NewTable(Main, 1, 2, reference.Factory{})
	tbl.FillSpan(0, Span{Offset: 0, Width: 1}, fieldRow(1))
	if ok, _, _ := tbl.AllFilled(); ok {
		t.Fatal("row 1 was never filled, AllFilled should report false")
	}
	tbl.FillZeroRow(1)
	if ok, _, _ := tbl.AllFilled(); !ok {
		t.Fatal("every cell is now filled, AllFilled should report true")
	}
}
