package reference

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2s"

	"github.com/rvzk/zkvm/backend"
)

// Channel is a Fiat-Shamir transcript built on blake2s: every mixed
// commitment updates a running digest, and every draw squeezes fresh
// field elements from it before folding the digest forward. This is the
// grounding for SPEC_FULL.md §11's "Fiat-Shamir channel over the hash"
// wiring of golang.org/x/crypto.
type Channel struct {
	state [32]byte
	draws uint64
}

// NewChannel returns a channel seeded to the zero digest.
func NewChannel() *Channel {
	return &Channel{}
}

// MixCommitment folds a commitment into the transcript state.
func (c *Channel) MixCommitment(commitment []byte) {
	h, _ := blake2s.New256(nil)
	h.Write(c.state[:])
	h.Write(commitment)
	copy(c.state[:], h.Sum(nil))
	c.draws = 0
}

// DrawFelts squeezes n field elements, each derived from a distinct
// counter-keyed digest so repeated draws never collide.
func (c *Channel) DrawFelts(n int) []backend.Field {
	out := make([]backend.Field, n)
	for i := 0; i < n; i++ {
		h, _ := blake2s.New256(nil)
		h.Write(c.state[:])
		var ctr [8]byte
		binary.BigEndian.PutUint64(ctr[:], c.draws)
		h.Write(ctr[:])
		c.draws++
		digest := h.Sum(nil)
		out[i] = FromUint64(binary.BigEndian.Uint64(digest[:8]))
	}
	return out
}
