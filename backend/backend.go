// Package backend declares the abstract STARK backend the core calls into:
// a prime field, a Fiat-Shamir transcript channel, and a commit-and-open
// engine over polynomial columns (spec.md §6 "STARK backend (consumed)").
// The polynomial commitment engine itself — FFT/FRI, Merkle hashing — is
// explicitly out of scope (spec.md §1); this package only fixes the
// interface the prover driver programs against. backend/reference provides
// a concrete, swappable implementation for tests.
package backend

// Field is a prime field element with the operations the chip framework's
// constraint evaluator needs.
type Field interface {
	Add(Field) Field
	Sub(Field) Field
	Mul(Field) Field
	Neg() Field
	Inverse() Field
	IsZero() bool
	Equal(Field) bool
	Bytes() []byte
}

// FieldFactory constructs field elements from small integers, the only way
// chip code should create a Field value (never via a concrete type literal,
// so the same chip code runs unmodified against any backend).
type FieldFactory interface {
	Zero() Field
	One() Field
	FromUint64(uint64) Field
}

// Channel is the Fiat-Shamir transcript every soundness challenge in the
// protocol is drawn from (spec.md §4.9, §6).
type Channel interface {
	MixCommitment(commitment []byte)
	DrawFelts(n int) []Field
}

// Commitment is an opaque handle a backend returns for a committed table;
// the core never inspects its contents (spec.md §6 "Proof artifact").
type Commitment []byte

// Backend is the minimal surface the prover driver needs: commit a set of
// columns and, at the end, assemble a proof from the four commitments.
type Backend interface {
	Fields() FieldFactory
	NewChannel() Channel

	// Commit commits a table of columns (each a slice of Field of equal
	// length) and mixes the resulting commitment into channel.
	Commit(channel Channel, columns [][]Field) (Commitment, error)

	// BlowupFactor reports the backend's blowup factor, used by the driver
	// to size FFT twiddles (spec.md §4.9 step 1). Must be >= 2.
	BlowupFactor() int

	// Prove assembles the final proof artifact from the four committed
	// tables. The core treats the return value as opaque bytes.
	Prove(commitments [4]Commitment) ([]byte, error)
}
