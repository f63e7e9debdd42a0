// Package reference is a concrete, swappable backend.Backend implementation
// built on github.com/vybium/vybium-crypto's field element type and
// golang.org/x/crypto/blake2s for the Fiat-Shamir channel. It lets chip
// constraints be evaluated and asserted to zero in tests without the core
// depending on real FFT/FRI/Merkle machinery — Commit below hashes columns
// instead of building a polynomial commitment, which is adequate for
// exercising the wiring but is not a sound proof system on its own
// (SPEC_FULL.md §11).
package reference

import (
	"encoding/binary"

	vfield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/rvzk/zkvm/backend"
)

// modulus is the Goldilocks prime 2^64 - 2^32 + 1, the field vybium-crypto's
// Poseidon/Tip5-oriented VM.State is built for (visible in the pack only
// through field.New/field.Zero/field.One/Element.Mul/Element.Value — Add,
// Sub and Inverse are not directly observable in the retrieval pack, so
// this package implements them itself over the raw uint64 value rather
// than guessing at unconfirmed vybium-crypto methods).
const modulus uint64 = 0xFFFFFFFF00000001

// Element wraps a vybium-crypto field.Element, adding the Add/Sub/Inverse
// operations backend.Field requires via direct modular arithmetic on its
// raw value, since only New/Zero/One/Mul/Value are exercised anywhere in
// the retrieval pack.
type Element struct {
	inner vfield.Element
}

func wrap(v uint64) Element {
	return Element{inner: vfield.New(v % modulus)}
}

func asElement(f backend.Field) Element {
	e, ok := f.(Element)
	if !ok {
		panic("reference: Field value did not originate from this backend")
	}
	return e
}

// Zero is the additive identity.
func Zero() Element { return Element{inner: vfield.Zero} }

// One is the multiplicative identity.
func One() Element { return Element{inner: vfield.One} }

// FromUint64 reduces v modulo the field's prime.
func FromUint64(v uint64) Element { return wrap(v) }

func (e Element) value() uint64 { return e.inner.Value() }

// Add returns e + other mod p.
func (e Element) Add(other backend.Field) backend.Field {
	o := asElement(other)
	a, b := e.value(), o.value()
	s := a + b
	if s < a || s >= modulus {
		s -= modulus
	}
	return wrap(s)
}

// Sub returns e - other mod p.
func (e Element) Sub(other backend.Field) backend.Field {
	o := asElement(other)
	a, b := e.value(), o.value()
	if a >= b {
		return wrap(a - b)
	}
	return wrap(a + (modulus - b))
}

// Mul delegates to vybium-crypto's own multiplication.
func (e Element) Mul(other backend.Field) backend.Field {
	o := asElement(other)
	return Element{inner: e.inner.Mul(o.inner)}
}

// Neg returns -e mod p.
func (e Element) Neg() backend.Field {
	if e.value() == 0 {
		return e
	}
	return wrap(modulus - e.value())
}

// Inverse returns the multiplicative inverse of e via Fermat's little
// theorem (e^(p-2) mod p). Zero has no inverse; Inverse returns zero for it.
func (e Element) Inverse() backend.Field {
	if e.value() == 0 {
		return e
	}
	result := One()
	base := e
	exp := modulus - 2
	for exp > 0 {
		if exp&1 == 1 {
			result = asElement(result.Mul(base))
		}
		base = asElement(base.Mul(base))
		exp >>= 1
	}
	return result
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.value() == 0 }

// Equal reports value equality.
func (e Element) Equal(other backend.Field) bool {
	o, ok := other.(Element)
	return ok && e.value() == o.value()
}

// Bytes serializes e as 8 big-endian bytes, used when mixing a value into
// the Fiat-Shamir channel.
func (e Element) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], e.value())
	return b[:]
}

// Factory implements backend.FieldFactory for Element.
type Factory struct{}

func (Factory) Zero() backend.Field             { return Zero() }
func (Factory) One() backend.Field              { return One() }
func (Factory) FromUint64(v uint64) backend.Field { return FromUint64(v) }
