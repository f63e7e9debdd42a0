// Package program models the in-memory program image the emulator executes
// against. Programs are constructed directly by the embedding application
// (a test, a fixture loader, or the cmd/zkvm-prove driver) rather than
// parsed from an ELF file — ELF/object-file ingestion is explicitly out of
// scope (spec.md §6 "program ingestion is in-memory, not ELF").
package program

import "fmt"

// Image is a fully-linked RISC-V program ready to execute: instruction
// words starting at Base, an entry point, and a split read-only/read-write
// initial data view (spec.md §12, grounded on the original's
// ElfFile{ram_image, rom_image} split so the memory-consistency chip can
// tell "was initialized read-only" apart from "will be written").
type Image struct {
	Base         uint32
	Instructions []uint32
	Entry        uint32

	// ROData holds addresses that are readable but never written by the
	// program itself (string literals, jump tables).
	ROData map[uint32]byte
	// RWData holds addresses the program may both read and write (the
	// initialized portion of .data/.bss).
	RWData map[uint32]byte
}

// NewImage builds an Image with the entry point defaulting to base.
func NewImage(base uint32, instructions []uint32) *Image {
	return &Image{
		Base:         base,
		Instructions: instructions,
		Entry:        base,
		ROData:       map[uint32]byte{},
		RWData:       map[uint32]byte{},
	}
}

// SetROData copies data into the read-only map starting at addr.
func (img *Image) SetROData(addr uint32, data []byte) {
	for i, b := range data {
		img.ROData[addr+uint32(i)] = b
	}
}

// SetRWData copies data into the read-write map starting at addr.
func (img *Image) SetRWData(addr uint32, data []byte) {
	for i, b := range data {
		img.RWData[addr+uint32(i)] = b
	}
}

// DataEnd returns one past the highest address touched by either data map,
// the seed for MemoryStats.MaxDataEnd before any instruction executes.
func (img *Image) DataEnd() uint32 {
	var end uint32
	for addr := range img.ROData {
		if addr+1 > end {
			end = addr + 1
		}
	}
	for addr := range img.RWData {
		if addr+1 > end {
			end = addr + 1
		}
	}
	return end
}

// Validate reports a malformed image: a non-word-aligned base, or an entry
// point outside the instruction range.
func (img *Image) Validate() error {
	if img.Base%4 != 0 {
		return &MalformedImageError{Reason: fmt.Sprintf("base address %#08x is not word-aligned", img.Base)}
	}
	if img.Entry < img.Base || img.Entry >= img.Base+uint32(len(img.Instructions))*4 {
		return &MalformedImageError{Reason: fmt.Sprintf("entry point %#08x lies outside the instruction range", img.Entry)}
	}
	if img.Entry%4 != 0 {
		return &MalformedImageError{Reason: fmt.Sprintf("entry point %#08x is not word-aligned", img.Entry)}
	}
	return nil
}

// MalformedImageError is returned by Validate for a structurally invalid
// Image.
type MalformedImageError struct {
	Reason string
}

func (e *MalformedImageError) Error() string {
	return fmt.Sprintf("program: malformed image: %s", e.Reason)
}
