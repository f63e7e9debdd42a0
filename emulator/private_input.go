package emulator

// PrivateInputTape is a FIFO of bytes consumed by ECALL with a0 == 0 (one
// word per call), kept distinct from the public input segment in memory so a
// verifier never sees private-tape contents (spec.md §12, grounded on the
// original's executor.rs private_input_tape).
type PrivateInputTape struct {
	data []byte
	pos  int
}

// NewPrivateInputTape wraps data as a FIFO; the tape does not copy data, so
// callers must not mutate it afterwards.
func NewPrivateInputTape(data []byte) *PrivateInputTape {
	return &PrivateInputTape{data: data}
}

// ReadByte pops the next byte off the tape.
func (t *PrivateInputTape) ReadByte() (byte, error) {
	if t.pos >= len(t.data) {
		return 0, ErrPrivateInputExhausted
	}
	b := t.data[t.pos]
	t.pos++
	return b, nil
}

// ReadWord pops four bytes and assembles them little-endian.
func (t *PrivateInputTape) ReadWord() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := t.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * i)
	}
	return v, nil
}

// Remaining reports how many bytes are left on the tape.
func (t *PrivateInputTape) Remaining() int {
	return len(t.data) - t.pos
}

// ErrPrivateInputExhausted is returned by ReadByte/ReadWord once the tape
// is empty. ECALL returns it unchanged, so its PC field is zero.
var ErrPrivateInputExhausted = &PrivateInputExhaustedError{}
