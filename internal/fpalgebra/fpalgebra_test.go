package fpalgebra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheminee/search-engine/internal/fpalgebra"
)

func TestAndOrXor(t *testing.T) {
	a := []byte{0b1100, 0b0011}
	b := []byte{0b1010, 0b0110}

	and, err := fpalgebra.And(a, b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b1000, 0b0010}, and)

	or, err := fpalgebra.Or(a, b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b1110, 0b0111}, or)

	xor, err := fpalgebra.Xor(a, b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b0110, 0b0101}, xor)
}

func TestWidthMismatch(t *testing.T) {
	a := []byte{0x01}
	b := []byte{0x01, 0x02}

	_, err := fpalgebra.And(a, b)
	assert.Error(t, err)
	_, err = fpalgebra.Or(a, b)
	assert.Error(t, err)
	_, err = fpalgebra.Xor(a, b)
	assert.Error(t, err)
	_, err = fpalgebra.SubstructureContains(a, b)
	assert.Error(t, err)
	_, err = fpalgebra.Identity(a, b)
	assert.Error(t, err)
	_, err = fpalgebra.Tanimoto(a, b)
	assert.Error(t, err)
}

func TestPopCount(t *testing.T) {
	assert.Equal(t, 0, fpalgebra.PopCount([]byte{0x00}))
	assert.Equal(t, 8, fpalgebra.PopCount([]byte{0xFF}))
	assert.Equal(t, 4, fpalgebra.PopCount([]byte{0b10101010}))
}

func TestSubstructureContains(t *testing.T) {
	sub := []byte{0b1000}
	super := []byte{0b1010}
	ok, err := fpalgebra.SubstructureContains(sub, super)
	require.NoError(t, err)
	assert.True(t, ok)

	notSub := []byte{0b0100}
	ok, err = fpalgebra.SubstructureContains(notSub, super)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentity(t *testing.T) {
	ok, err := fpalgebra.Identity([]byte{1, 2, 3}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fpalgebra.Identity([]byte{1, 2, 3}, []byte{1, 2, 4})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTanimoto(t *testing.T) {
	a := []byte{0b1111}
	b := []byte{0b1100}
	score, err := fpalgebra.Tanimoto(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 0.0001)
}

func TestTanimoto_BothEmptyIsZero(t *testing.T) {
	score, err := fpalgebra.Tanimoto([]byte{0x00}, []byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, float32(0), score)
}

func TestMaxTanimoto(t *testing.T) {
	target := []byte{0b1111}
	candidates := [][]byte{{0b0001}, {0b1100}, {0b1111}}
	score, err := fpalgebra.MaxTanimoto(target, candidates)
	require.NoError(t, err)
	assert.Equal(t, float32(1), score)
}

func TestMaxTanimoto_Empty(t *testing.T) {
	score, err := fpalgebra.MaxTanimoto([]byte{0xFF}, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(0), score)
}
