package reference

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a := FromUint64(17)
	b := FromUint64(5)
	sum := a.Add(b)
	back := sum.Sub(b)
	if !back.Equal(a) {
		t.Fatalf("(a+b)-b should equal a")
	}
}

func TestMulInverse(t *testing.T) {
	a := FromUint64(12345)
	inv := a.Inverse()
	product := a.Mul(inv)
	if !product.Equal(One()) {
		t.Fatal("a * a^-1 should equal one")
	}
}

func TestNegIsAdditiveInverse(t *testing.T) {
	a := FromUint64(999)
	sum := a.Add(a.Neg())
	if !sum.IsZero() {
		t.Fatal("a + (-a) should be zero")
	}
}

func TestZeroHasNoInverseButDoesNotPanic(t *testing.T) {
	z := Zero()
	if !z.Inverse().IsZero() {
		t.Fatal("Inverse of zero is defined here as zero, not an error")
	}
}

func TestBytesRoundTripThroughDistinctValues(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	if string(a.Bytes()) == string(b.Bytes()) {
		t.Fatal("distinct field elements must serialize to distinct byte strings")
	}
}
