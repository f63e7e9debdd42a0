// Package traceview is a read-only terminal inspector over a finalized
// trace: one tview.Table grid per table kind (preprocessed/main/
// interaction/program), with column headers taken from the registry that
// built the trace and a status line marking the real-step/padding
// boundary (spec.md §4.9's "the padded region is the trace beyond the
// real step count"). It is the zkVM analogue of the teacher's register/
// memory/stack TUI panes (`debugger/tui.go`), rebuilt around columns and
// rows instead of registers and bytes.
package traceview

import (
	"encoding/binary"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rvzk/zkvm/backend"
	"github.com/rvzk/zkvm/trace"
)

// View is the inspector application.
type View struct {
	App    *tview.Application
	Pages  *tview.Pages
	Grid   *tview.Table
	Status *tview.TextView

	registry  *trace.Registry
	finalized *trace.FinalizedTrace
	numSteps  int

	kinds   []trace.Kind
	kindIdx int
}

// New builds an inspector over finalized, whose columns are named per
// registry. numSteps is the count of real (non-padding) rows, used to mark
// the padding boundary in the status line.
func New(registry *trace.Registry, finalized *trace.FinalizedTrace, numSteps int) *View {
	v := &View{
		App:       tview.NewApplication(),
		registry:  registry,
		finalized: finalized,
		numSteps:  numSteps,
		kinds:     []trace.Kind{trace.Main, trace.Interaction, trace.Program, trace.Preprocessed},
	}
	v.initializeViews()
	v.buildLayout()
	v.setupKeyBindings()
	v.renderCurrentTable()
	return v
}

func (v *View) initializeViews() {
	v.Grid = tview.NewTable().
		SetFixed(1, 1).
		SetSelectable(true, false)
	v.Grid.SetBorder(true)

	v.Status = tview.NewTextView().
		SetDynamicColors(true)
	v.Status.SetBorder(true).SetTitle(" Status ")
}

func (v *View) buildLayout() {
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.Grid, 0, 5, true).
		AddItem(v.Status, 3, 0, false)

	v.Pages = tview.NewPages().AddPage("main", layout, true, true)
}

func (v *View) setupKeyBindings() {
	v.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			v.kindIdx = (v.kindIdx + 1) % len(v.kinds)
			v.renderCurrentTable()
			return nil
		case tcell.KeyBacktab:
			v.kindIdx = (v.kindIdx - 1 + len(v.kinds)) % len(v.kinds)
			v.renderCurrentTable()
			return nil
		case tcell.KeyCtrlC:
			v.App.Stop()
			return nil
		}
		return event
	})
}

func (v *View) table(kind trace.Kind) *trace.Table {
	switch kind {
	case trace.Preprocessed:
		return v.finalized.Preprocessed
	case trace.Main:
		return v.finalized.Main
	case trace.Program:
		return v.finalized.Program
	case trace.Interaction:
		return v.finalized.Interaction
	default:
		return nil
	}
}

// renderCurrentTable repaints Grid with the table selected by kindIdx.
func (v *View) renderCurrentTable() {
	kind := v.kinds[v.kindIdx]
	t := v.table(kind)
	names := v.registry.Names(kind)

	v.Grid.Clear()
	v.Grid.SetCell(0, 0, tview.NewTableCell("row").SetSelectable(false).SetTextColor(tcell.ColorYellow))
	for col, name := range names {
		v.Grid.SetCell(0, col+1, tview.NewTableCell(name).SetSelectable(false).SetTextColor(tcell.ColorYellow))
	}

	if t != nil {
		for row := 0; row < t.NumRows; row++ {
			rowColor := tcell.ColorWhite
			if row >= v.numSteps {
				rowColor = tcell.ColorGray
			}
			v.Grid.SetCell(row+1, 0, tview.NewTableCell(fmt.Sprintf("%d", row)).SetTextColor(rowColor))
			col := 0
			for _, name := range names {
				span, ok := v.registry.Lookup(kind, name)
				if !ok {
					continue
				}
				for w := 0; w < span.Width; w++ {
					cell := t.Cell(span.Offset+w, row)
					v.Grid.SetCell(row+1, col+1, tview.NewTableCell(fieldString(cell)).SetTextColor(rowColor))
					col++
				}
			}
		}
	}

	v.Status.SetText(fmt.Sprintf(
		"[yellow]%s[white]  rows=%d  real steps=%d  padding from row %d  (Tab/Shift+Tab to switch tables, Ctrl+C to quit)",
		kind, t.NumRows, v.numSteps, v.numSteps,
	))
}

// fieldString renders a field element as a decimal string, decoding its
// big-endian byte encoding the same way backend/reference's own Bytes
// round-trips (spec.md §6's field is opaque to the core beyond Bytes()).
func fieldString(f backend.Field) string {
	b := f.Bytes()
	if len(b) > 8 {
		b = b[len(b)-8:]
	}
	var padded [8]byte
	copy(padded[8-len(b):], b)
	return fmt.Sprintf("%d", binary.BigEndian.Uint64(padded[:]))
}

// Run starts the inspector's event loop.
func (v *View) Run() error {
	return v.App.SetRoot(v.Pages, true).SetFocus(v.Grid).Run()
}

// Stop stops the inspector.
func (v *View) Stop() {
	v.App.Stop()
}
