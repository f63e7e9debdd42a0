package memory

import "testing"

func testLayout() LinearMemoryLayout {
	stats := MemoryStats{MaxDataEnd: 0x40, MinStackPointer: MemoryTop - 64}
	return NewLinearMemoryLayout(stats, 0x1000, 4, 4, 4)
}

func TestLinearMemoryReadsInitialProgramWords(t *testing.T) {
	layout := testLayout()
	words := []uint32{0x11111111, 0x22222222}
	m := NewLinearMemory(layout, words, []byte{9}, nil)

	got, err := m.Load(layout.ProgramBase, 4)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != 0x11111111 {
		t.Fatalf("got %#x, want %#x", got, 0x11111111)
	}
}

func TestLinearMemoryTranscriptOrdering(t *testing.T) {
	layout := testLayout()
	m := NewLinearMemory(layout, nil, nil, nil)

	if err := m.Store(layout.DataBase, 4, 1); err != nil {
		t.Fatalf("store 1: %v", err)
	}
	if err := m.Store(layout.DataBase, 4, 2); err != nil {
		t.Fatalf("store 2: %v", err)
	}
	if _, err := m.Load(layout.DataBase, 4); err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(m.Stores) != 2 || len(m.Loads) != 1 {
		t.Fatalf("unexpected transcript lengths: stores=%d loads=%d", len(m.Stores), len(m.Loads))
	}
	if m.Stores[1].ValueBefore != m.Stores[0].ValueAfter {
		t.Fatal("store 2's before-value must equal store 1's after-value")
	}
	if m.Loads[0].Value != m.Stores[1].ValueAfter {
		t.Fatal("load must observe the most recent store's after-value")
	}
	if m.Stores[1].TimestampPrev != m.Stores[0].TimestampCur {
		t.Fatal("store 2's prev timestamp must equal store 1's cur timestamp")
	}
	if m.Loads[0].TimestampPrev != m.Stores[1].TimestampCur {
		t.Fatal("load's prev timestamp must equal store 2's cur timestamp")
	}
}

func TestLinearMemorySubWordTimestampVisibility(t *testing.T) {
	layout := testLayout()
	m := NewLinearMemory(layout, nil, nil, nil)

	if err := m.Store(layout.DataBase, 1, 0xff); err != nil {
		t.Fatalf("byte store: %v", err)
	}
	if _, err := m.Load(layout.DataBase, 4); err != nil {
		t.Fatalf("word load: %v", err)
	}
	if m.Loads[0].TimestampPrev != m.Stores[0].TimestampCur {
		t.Fatal("word-aligned load must see the earlier sub-word store's timestamp")
	}
}

func TestLinearMemoryOutOfBounds(t *testing.T) {
	layout := testLayout()
	m := NewLinearMemory(layout, nil, nil, nil)
	top := layout.StackBase + layout.StackSize
	if _, err := m.Load(top, 4); err == nil {
		t.Fatal("expected out of bounds error past the stack region")
	}
}
