package riscv

import "strings"

// BasicBlock is a maximal straight-line run of instructions terminated by
// the first branch/jump (inclusive), or by the end of the supplied word
// slice if none is found (spec.md §4.2).
type BasicBlock struct {
	StartPC      uint32
	Instructions []Instruction
}

// DecodeBlock decodes a basic block starting at pc from a slice of raw
// instruction words. It stops after the first branch/jump instruction
// (inclusive) or after consuming the entire slice.
func DecodeBlock(pc uint32, words []uint32) BasicBlock {
	block := BasicBlock{StartPC: pc}
	for _, raw := range words {
		in := Decode(raw)
		block.Instructions = append(block.Instructions, in)
		if in.IsBranchOrJump() {
			break
		}
	}
	return block
}

func (b BasicBlock) String() string {
	var sb strings.Builder
	for i, in := range b.Instructions {
		sb.WriteString(in.String())
		if i != len(b.Instructions)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// BlockCache memoizes decoded basic blocks by their starting PC. A lookup
// miss decodes and inserts; a hit returns the cached block without
// touching the decoder (spec.md §4.2, testable property §8 "Basic-block
// cache").
type BlockCache struct {
	blocks map[uint32]BasicBlock
	order  []uint32

	// Decodes counts how many times DecodeBlock was actually invoked,
	// so callers (and tests) can observe that a repeated lookup at the
	// same PC performs no decoding work.
	Decodes int
}

// NewBlockCache returns an empty, ready-to-use cache.
func NewBlockCache() *BlockCache {
	return &BlockCache{blocks: make(map[uint32]BasicBlock)}
}

// Fetch returns the cached block at pc, decoding and inserting it on a
// miss using fetchWords to obtain the raw instruction stream starting at
// pc. fetchWords may return fewer words than requested; DecodeBlock stops
// early on the first branch/jump regardless.
func (c *BlockCache) Fetch(pc uint32, fetchWords func(pc uint32) []uint32) BasicBlock {
	if block, ok := c.blocks[pc]; ok {
		return block
	}
	c.Decodes++
	block := DecodeBlock(pc, fetchWords(pc))
	c.blocks[pc] = block
	c.order = append(c.order, pc)
	return block
}

// Len reports how many distinct starting PCs are cached.
func (c *BlockCache) Len() int {
	return len(c.order)
}
