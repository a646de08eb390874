// Package fpalgebra implements bitset algebra over fixed-width fingerprint
// byte slices: the AND/OR/XOR/popcount/substructure/identity/Tanimoto
// predicates the search pipeline composes candidate generation and
// structure verification from. It operates on raw []byte so callers can
// feed it either a kernel.Fingerprint's Bits or bytes decoded straight off
// an index document, without an intermediate allocation.
package fpalgebra

import (
	"math/bits"

	"github.com/cheminee/search-engine/pkg/errors"
)

// And returns a AND b. Both slices must share length.
func And(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, errors.WidthMismatch("fingerprint AND: operand widths differ")
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] & b[i]
	}
	return out, nil
}

// Or returns a OR b. Both slices must share length.
func Or(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, errors.WidthMismatch("fingerprint OR: operand widths differ")
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] | b[i]
	}
	return out, nil
}

// Xor returns a XOR b. Both slices must share length.
func Xor(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, errors.WidthMismatch("fingerprint XOR: operand widths differ")
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// PopCount returns the number of set bits in b.
func PopCount(b []byte) int {
	count := 0
	for _, v := range b {
		count += bits.OnesCount8(v)
	}
	return count
}

// SubstructureContains reports whether sub is bit-contained in super: every
// bit set in sub is also set in super. Both slices must share length.
func SubstructureContains(sub, super []byte) (bool, error) {
	if len(sub) != len(super) {
		return false, errors.WidthMismatch("substructure_contains: operand widths differ")
	}
	for i := range sub {
		if sub[i]&super[i] != sub[i] {
			return false, nil
		}
	}
	return true, nil
}

// Identity reports byte-exact equality. Both slices must share length.
func Identity(a, b []byte) (bool, error) {
	if len(a) != len(b) {
		return false, errors.WidthMismatch("identity: operand widths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			return false, nil
		}
	}
	return true, nil
}

// Tanimoto computes popcount(a AND b) / popcount(a OR b) as float32. When
// both operands are all-zero the result is defined as 0 rather than NaN.
func Tanimoto(a, b []byte) (float32, error) {
	if len(a) != len(b) {
		return 0, errors.WidthMismatch("tanimoto: operand widths differ")
	}
	var andCount, orCount int
	for i := range a {
		andCount += bits.OnesCount8(a[i] & b[i])
		orCount += bits.OnesCount8(a[i] | b[i])
	}
	if orCount == 0 {
		return 0, nil
	}
	return float32(andCount) / float32(orCount), nil
}

// MaxTanimoto computes the Tanimoto similarity between target and every
// fingerprint in candidates, returning the maximum. Used by similarity
// search to score a stored fingerprint against every tautomer of a query.
func MaxTanimoto(target []byte, candidates [][]byte) (float32, error) {
	var max float32
	for _, c := range candidates {
		t, err := Tanimoto(target, c)
		if err != nil {
			return 0, err
		}
		if t > max {
			max = t
		}
	}
	return max, nil
}
