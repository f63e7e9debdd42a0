package chips

import (
	"fmt"

	"github.com/rvzk/zkvm/backend"
)

// LookupElement is one relation's drawn Fiat-Shamir challenges: alpha
// compresses a tuple's components into one field element, z offsets it,
// per spec.md §4.7's "(addr, value, ts) compressed by (alpha, z)".
type LookupElement struct {
	Alpha backend.Field
	Z     backend.Field
}

// Compress folds a tuple of field elements into one using this element's
// alpha as the multiplicative weight and z as the additive offset:
// z + values[0] + alpha*values[1] + alpha^2*values[2] + ...
func (le LookupElement) Compress(values ...backend.Field) backend.Field {
	acc := le.Z
	power := le.Alpha
	for i, v := range values {
		if i == 0 {
			acc = acc.Add(v)
			continue
		}
		acc = acc.Add(power.Mul(v))
		power = power.Mul(le.Alpha)
	}
	return acc
}

// LookupElements is the keyed container of every relation's drawn
// challenges, indexed by the relation's name. Registering the same
// relation twice is a programming error (spec.md §3 "Lookup element set...
// stored in a keyed container indexed by the relation's identity;
// inserting the same relation twice is a programming error and must fail
// loudly").
type LookupElements struct {
	byName map[string]LookupElement
}

// NewLookupElements returns an empty container.
func NewLookupElements() *LookupElements {
	return &LookupElements{byName: map[string]LookupElement{}}
}

// Register draws two fresh field elements from channel and stores them
// under name, failing if name is already registered.
func (l *LookupElements) Register(name string, channel backend.Channel) (LookupElement, error) {
	if _, exists := l.byName[name]; exists {
		return LookupElement{}, &DuplicateRelationError{Name: name}
	}
	drawn := channel.DrawFelts(2)
	le := LookupElement{Alpha: drawn[0], Z: drawn[1]}
	l.byName[name] = le
	return le, nil
}

// Get retrieves the lookup element registered under name.
func (l *LookupElements) Get(name string) (LookupElement, bool) {
	le, ok := l.byName[name]
	return le, ok
}

// MustGet retrieves the lookup element registered under name, panicking if
// absent — used by fill_interaction_trace implementations that can only
// run after draw_lookup_elements has already populated the container.
func (l *LookupElements) MustGet(name string) LookupElement {
	le, ok := l.byName[name]
	if !ok {
		panic(fmt.Sprintf("chips: lookup element %q was never registered", name))
	}
	return le
}

// DuplicateRelationError is returned by Register for a relation name
// already present in the container.
type DuplicateRelationError struct {
	Name string
}

func (e *DuplicateRelationError) Error() string {
	return fmt.Sprintf("chips: lookup relation %q registered twice", e.Name)
}
