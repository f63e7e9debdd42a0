package riscv

import "testing"

func TestDecodeBlockStopsAtBranch(t *testing.T) {
	words := []uint32{
		encodeI(majorOpIType, 1, 0x0, 0, 1), // addi x1, x0, 1
		encodeB(0x7, 0, 0, 12),              // bgeu x0, x0, 12
		encodeI(majorOpIType, 2, 0x0, 0, 2), // never reached
	}
	block := DecodeBlock(0x1000, words)
	if len(block.Instructions) != 2 {
		t.Fatalf("expected block to stop at the branch, got %d instructions", len(block.Instructions))
	}
	if !block.Instructions[1].IsBranchOrJump() {
		t.Fatal("last instruction in block should be the branch")
	}
}

func TestDecodeBlockRunsToEndWithoutTerminator(t *testing.T) {
	words := []uint32{
		encodeI(majorOpIType, 1, 0x0, 0, 1),
		encodeI(majorOpIType, 2, 0x0, 0, 2),
	}
	block := DecodeBlock(0, words)
	if len(block.Instructions) != len(words) {
		t.Fatalf("expected %d instructions, got %d", len(words), len(block.Instructions))
	}
}

func TestBlockCacheMemoizesByPC(t *testing.T) {
	cache := NewBlockCache()
	words := []uint32{encodeI(majorOpIType, 1, 0x0, 0, 1)}
	fetch := func(pc uint32) []uint32 { return words }

	first := cache.Fetch(0x8000, fetch)
	second := cache.Fetch(0x8000, fetch)

	if cache.Decodes != 1 {
		t.Fatalf("expected exactly one decode, got %d", cache.Decodes)
	}
	if len(first.Instructions) != len(second.Instructions) {
		t.Fatal("cached block should be equal across lookups")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one distinct cached PC, got %d", cache.Len())
	}
}
