package memory

import "testing"

func TestHarvardMemoryRoundTrip(t *testing.T) {
	m := NewHarvardMemory(0x1000, 4, []byte{1, 2, 3}, 64, 0x3000, 256)

	if err := m.Store(0x3000, 4, 0xdeadbeef); err != nil {
		t.Fatalf("store into data segment: %v", err)
	}
	got, err := m.Load(0x3000, 4)
	if err != nil {
		t.Fatalf("load from data segment: %v", err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("got %#x, want %#x", got, 0xdeadbeef)
	}
	if m.Stats.MaxDataEnd < 0x3004 {
		t.Fatalf("data end should widen past the write, got %#x", m.Stats.MaxDataEnd)
	}
}

func TestHarvardMemoryInputHasLengthPrefix(t *testing.T) {
	m := NewHarvardMemory(0x1000, 1, []byte{0xaa, 0xbb}, 4, 0x2000, 16)
	length, err := m.Load(m.Input.Base, 4)
	if err != nil {
		t.Fatalf("load input length prefix: %v", err)
	}
	if length != 2 {
		t.Fatalf("expected length prefix 2, got %d", length)
	}
}

func TestHarvardMemoryRejectsWriteToInstructionSegment(t *testing.T) {
	m := NewHarvardMemory(0x1000, 2, nil, 4, 0x2000, 16)
	if err := m.Store(0x1000, 4, 1); err == nil {
		t.Fatal("expected permission error writing to read-only instruction segment")
	}
}

func TestHarvardMemoryOutOfBounds(t *testing.T) {
	m := NewHarvardMemory(0x1000, 1, nil, 4, 0x2000, 16)
	if _, err := m.Load(0xffffff00, 4); err == nil {
		t.Fatal("expected out of bounds error")
	}
}

func TestHarvardMemoryStackPointerTracking(t *testing.T) {
	m := NewHarvardMemory(0x1000, 1, nil, 4, 0x2000, 16)
	initial := m.Stats.MinStackPointer
	m.RecordStackPointer(initial - 128)
	if m.Stats.MinStackPointer != initial-128 {
		t.Fatal("stack pointer mark should narrow")
	}
}
