package trace

import (
	"github.com/rvzk/zkvm/backend"
)

// Builder owns the four trace tables for one proving run plus the side
// note threaded through chip filling (spec.md §4.4). Column storage is
// exclusively owned by the builder while filling; ownership transfers to
// the backend once Finalize succeeds (spec.md §3 "Ownership").
type Builder struct {
	Registry *Registry
	SideNote *SideNote

	preprocessed *Table
	main         *Table
	program      *Table
	interaction  *Table

	fields backend.FieldFactory
}

// NewBuilder allocates all four tables at numRows using the widths already
// reserved in registry. Call after every chip has registered its columns.
func NewBuilder(registry *Registry, numRows int, fields backend.FieldFactory) *Builder {
	return &Builder{
		Registry:     registry,
		SideNote:     NewSideNote(),
		preprocessed: NewTable(Preprocessed, registry.Width(Preprocessed), numRows, fields),
		main:         NewTable(Main, registry.Width(Main), numRows, fields),
		program:      NewTable(Program, registry.Width(Program), numRows, fields),
		interaction:  NewTable(Interaction, registry.Width(Interaction), numRows, fields),
		fields:       fields,
	}
}

// Table returns the table for kind.
func (b *Builder) Table(kind Kind) *Table {
	switch kind {
	case Preprocessed:
		return b.preprocessed
	case Main:
		return b.main
	case Program:
		return b.program
	case Interaction:
		return b.interaction
	default:
		return nil
	}
}

// Fill writes values into the span registered under name in kind's table
// at row.
func (b *Builder) Fill(kind Kind, row int, name string, values []backend.Field) error {
	span, ok := b.Registry.Lookup(kind, name)
	if !ok {
		return &UnknownColumnError{Kind: kind, Name: name}
	}
	return b.Table(kind).FillSpan(row, span, values)
}

// PadRow zero-fills every remaining cell of row in the main and program
// tables — the rows beyond the real step count (spec.md §4.4, §9).
func (b *Builder) PadRow(row int) {
	b.main.FillZeroRow(row)
	b.program.FillZeroRow(row)
}

// FinalizedTrace is the result of Finalize: read-only column-major tables
// ready to hand to a backend.Backend for commitment.
type FinalizedTrace struct {
	Preprocessed *Table
	Main         *Table
	Program      *Table
	Interaction  *Table
}

// Finalize validates every cell of the preprocessed/main/program tables is
// filled and returns the FinalizedTrace. The interaction table is filled
// later, after lookup elements are drawn (spec.md §4.9 step 5), so it is
// not checked here — FinalizeInteraction does that once it is filled.
func (b *Builder) Finalize() (*FinalizedTrace, error) {
	for _, t := range []*Table{b.preprocessed, b.main, b.program} {
		if ok, c, r := t.AllFilled(); !ok {
			return nil, &UnfinalizedTraceError{Kind: t.Kind, Row: r, Column: c}
		}
	}
	return &FinalizedTrace{
		Preprocessed: b.preprocessed,
		Main:         b.main,
		Program:      b.program,
		Interaction:  b.interaction,
	}, nil
}

// FinalizeInteraction validates the interaction table after chips have
// filled it via fill_interaction_trace (spec.md §4.9 step 5-6).
func (b *Builder) FinalizeInteraction() error {
	if ok, c, r := b.interaction.AllFilled(); !ok {
		return &UnfinalizedTraceError{Kind: Interaction, Row: r, Column: c}
	}
	return nil
}

// UnknownColumnError is returned by Fill when name was never registered.
type UnknownColumnError struct {
	Kind Kind
	Name string
}

func (e *UnknownColumnError) Error() string {
	return "trace: unknown column " + e.Name + " in " + e.Kind.String() + " table"
}
