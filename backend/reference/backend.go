package reference

import (
	"golang.org/x/crypto/blake2s"

	"github.com/rvzk/zkvm/backend"
)

// Backend is the reference backend.Backend: it commits a table of columns
// by hashing their serialized field values into a single digest, instead
// of building a real polynomial commitment. It exists to exercise the
// prover driver's protocol end to end (spec.md §4.9) and to let chip
// constraints be evaluated against real field arithmetic in tests; it is
// not a sound proof system (SPEC_FULL.md §11).
type Backend struct {
	blowup int
}

// New returns a reference backend with the given blowup factor (must be
// >= 2, per spec.md §6).
func New(blowup int) *Backend {
	if blowup < 2 {
		blowup = 2
	}
	return &Backend{blowup: blowup}
}

func (b *Backend) Fields() backend.FieldFactory { return Factory{} }

func (b *Backend) NewChannel() backend.Channel { return NewChannel() }

func (b *Backend) BlowupFactor() int { return b.blowup }

// Commit hashes every column's serialized values in order, mixes the
// resulting digest into channel, and returns it as the commitment.
func (b *Backend) Commit(channel backend.Channel, columns [][]backend.Field) (backend.Commitment, error) {
	h, err := blake2s.New256(nil)
	if err != nil {
		return nil, err
	}
	for _, col := range columns {
		for _, v := range col {
			h.Write(v.Bytes())
		}
	}
	digest := h.Sum(nil)
	channel.MixCommitment(digest)
	return backend.Commitment(digest), nil
}

// Prove concatenates the four table commitments as the opaque proof
// artifact (spec.md §6 "Proof artifact"); a real backend would instead
// assemble FRI layers and opening proofs here.
func (b *Backend) Prove(commitments [4]backend.Commitment) ([]byte, error) {
	var out []byte
	for _, c := range commitments {
		out = append(out, c...)
	}
	return out, nil
}
