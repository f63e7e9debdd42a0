package memory

import "fmt"

// OutOfBoundsError is raised when an access falls outside every mapped
// segment, or spills past the end of the segment that contains its start
// address (spec.md §4.1 "Addresses are 32-bit; out-of-range access fails
// with MemoryOutOfBounds").
type OutOfBoundsError struct {
	Address uint32
	Size    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("memory: out of bounds access at %#08x (size %d)", e.Address, e.Size)
}

// PermissionDeniedError is raised when a store targets a segment without
// write access, or a load targets a segment without read access (spec.md
// §4.1 "writing to read-only or reading no-access fails with
// MemoryPermissionDenied").
type PermissionDeniedError struct {
	Address uint32
	Segment string
	Mode    Mode
	Write   bool
}

func (e *PermissionDeniedError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("memory: %s permission denied for segment %q (mode %s) at %#08x", op, e.Segment, e.Mode, e.Address)
}

// UnalignedAccessError is raised by callers that require natural alignment
// for halfword/word accesses.
type UnalignedAccessError struct {
	Address uint32
	Size    int
}

func (e *UnalignedAccessError) Error() string {
	return fmt.Sprintf("memory: unaligned %d-byte access at %#08x", e.Size, e.Address)
}
