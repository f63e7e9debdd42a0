package trace

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
)

// Table is a dense, column-major matrix of field elements: one of the four
// tables named in spec.md §2 (preprocessed/main/interaction/program). Rows
// are pre-allocated to a power-of-two row count before filling begins; the
// Filled bitmap enforces spec.md §4.4's "filling twice into the same
// (row, column) is a programming error" invariant.
type Table struct {
	Kind    Kind
	NumRows int
	columns [][]backend.Field
	filled  [][]bool
	fields  backend.FieldFactory
}

// NewTable allocates a table of the given kind with width columns and
// numRows rows, every cell initialized to the field's zero element.
func NewTable(kind Kind, width, numRows int, fields backend.FieldFactory) *Table {
	t := &Table{Kind: kind, NumRows: numRows, fields: fields}
	t.columns = make([][]backend.Field, width)
	t.filled = make([][]bool, width)
	zero := fields.Zero()
	for c := 0; c < width; c++ {
		t.columns[c] = make([]backend.Field, numRows)
		t.filled[c] = make([]bool, numRows)
		for r := 0; r < numRows; r++ {
			t.columns[c][r] = zero
		}
	}
	return t
}

// Width reports the number of base columns in the table.
func (t *Table) Width() int { return len(t.columns) }

// FillSpan writes values into the width columns of span at row, failing if
// any targeted cell was already filled or if len(values) != span.Width.
func (t *Table) FillSpan(row int, span Span, values []backend.Field) error {
	if row < 0 || row >= t.NumRows {
		return fmt.Errorf("trace: row %d out of range [0,%d)", row, t.NumRows)
	}
	if len(values) != span.Width {
		return fmt.Errorf("trace: span width %d does not match %d values", span.Width, len(values))
	}
	for i, v := range values {
		col := span.Offset + i
		if t.filled[col][row] {
			return &DoubleFillError{Kind: t.Kind, Row: row, Column: col}
		}
		t.columns[col][row] = v
		t.filled[col][row] = true
	}
	return nil
}

// FillZeroRow fills every not-yet-filled cell of row with the field's zero
// element, used to pad a row out once all real chips have had a chance to
// fill it (spec.md §4.4 "padding rows are filled by the CPU chip with a
// canonical zero step").
func (t *Table) FillZeroRow(row int) {
	zero := t.fields.Zero()
	for c := range t.columns {
		if !t.filled[c][row] {
			t.columns[c][row] = zero
			t.filled[c][row] = true
		}
	}
}

// Column returns the underlying values for base column c, for read access
// by chips that consume another chip's output (spec.md §4.5 "order within
// the tuple matters only when a chip reads a column another chip filled").
func (t *Table) Column(c int) []backend.Field {
	return t.columns[c]
}

// Cell returns the value at (column, row).
func (t *Table) Cell(column, row int) backend.Field {
	return t.columns[column][row]
}

// AllFilled reports whether every cell in the table has been written,
// the precondition Finalize checks (spec.md §4.4 "every row must be
// filled on every column").
func (t *Table) AllFilled() (bool, int, int) {
	for c := range t.filled {
		for r := range t.filled[c] {
			if !t.filled[c][r] {
				return false, c, r
			}
		}
	}
	return true, 0, 0
}

// Columns exposes the full column-major matrix, e.g. for passing to
// backend.Backend.Commit.
func (t *Table) Columns() [][]backend.Field {
	return t.columns
}

// DoubleFillError is raised when a chip attempts to fill a cell another
// chip (or the same chip) already filled.
type DoubleFillError struct {
	Kind   Kind
	Row    int
	Column int
}

func (e *DoubleFillError) Error() string {
	return fmt.Sprintf("trace: column %d row %d in %s table already filled", e.Column, e.Row, e.Kind)
}

// UnfinalizedTraceError is raised by Finalize when a cell was never filled.
type UnfinalizedTraceError struct {
	Kind   Kind
	Row    int
	Column int
}

func (e *UnfinalizedTraceError) Error() string {
	return fmt.Sprintf("trace: %s table row %d column %d was never filled", e.Kind, e.Row, e.Column)
}
