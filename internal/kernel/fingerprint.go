package kernel

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// FingerprintWidth is the fixed bit width of every fingerprint this kernel
// produces, chosen to match the width fpalgebra and the index schema expect.
const FingerprintWidth = 1024

// Fingerprint is a fixed-width packed-bit vector, indexed most-significant
// bit first within each byte.
type Fingerprint struct {
	Bits      []byte
	Length    int
	NumOnBits int
}

// NewFingerprint allocates a zeroed Fingerprint of the given bit length.
func NewFingerprint(length int) *Fingerprint {
	return &Fingerprint{Bits: make([]byte, (length+7)/8), Length: length}
}

// GetBit reports whether bit i is set.
func (f *Fingerprint) GetBit(i int) bool {
	if i < 0 || i >= f.Length {
		return false
	}
	return f.Bits[i/8]&(1<<uint(7-i%8)) != 0
}

// SetBit sets bit i and keeps NumOnBits consistent.
func (f *Fingerprint) SetBit(i int) {
	if i < 0 || i >= f.Length {
		return
	}
	mask := byte(1 << uint(7-i%8))
	if f.Bits[i/8]&mask == 0 {
		f.Bits[i/8] |= mask
		f.NumOnBits++
	}
}

// PathFingerprint enumerates every simple path up to maxLen bonds starting
// at each atom and hashes its (element, bond-order) sequence into a bit.
// Because every path of a subgraph is also a path of any supergraph that
// contains it unchanged, this construction guarantees the monotonicity
// invariant required of substructure search: for a genuine embedded
// subgraph sub of super, PathFingerprint(sub) AND PathFingerprint(super)
// == PathFingerprint(sub).
func PathFingerprint(mol *Mol, maxLen int) *Fingerprint {
	fp := NewFingerprint(FingerprintWidth)
	for start := range mol.Atoms {
		enumeratePaths(mol, start, maxLen, func(path []int, bonds []BondOrder) {
			fp.SetBit(hashPath(mol, path, bonds))
		})
	}
	return fp
}

func enumeratePaths(mol *Mol, start, maxLen int, emit func(path []int, bonds []BondOrder)) {
	visited := make([]bool, len(mol.Atoms))
	visited[start] = true
	path := []int{start}
	var bonds []BondOrder

	var walk func(depth int)
	walk = func(depth int) {
		emit(append([]int(nil), path...), append([]BondOrder(nil), bonds...))
		if depth >= maxLen {
			return
		}
		cur := path[len(path)-1]
		for _, bi := range mol.NeighborBonds(cur) {
			b := mol.Bonds[bi]
			nb := b.otherEnd(cur)
			if visited[nb] {
				continue
			}
			visited[nb] = true
			path = append(path, nb)
			bonds = append(bonds, b.Order)
			walk(depth + 1)
			bonds = bonds[:len(bonds)-1]
			path = path[:len(path)-1]
			visited[nb] = false
		}
	}
	walk(0)
}

func writeUint32(h interface{ Write([]byte) (int, error) }, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func hashPath(mol *Mol, path []int, bonds []BondOrder) int {
	h := sha256.New()
	for i, atomIdx := range path {
		a := mol.Atoms[atomIdx]
		writeUint32(h, uint32(a.AtomicNumber()))
		if a.Aromatic {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		if i < len(bonds) {
			h.Write([]byte{byte(bonds[i])})
		}
	}
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint32(sum[:4])
	return int(v % uint32(FingerprintWidth))
}

// MorganFingerprint computes an atom-environment (extended connectivity)
// fingerprint: each atom's invariant is refined for `radius` iterations by
// folding in its neighbors' invariants, and every intermediate invariant
// observed at every atom across every radius contributes one set bit. This
// mirrors the canonical-ranking refinement used for serialization but keeps
// per-radius invariants distinct instead of collapsing them to a final rank.
func MorganFingerprint(mol *Mol, radius int) *Fingerprint {
	fp := NewFingerprint(FingerprintWidth)
	n := len(mol.Atoms)
	if n == 0 {
		return fp
	}
	invariant := make([]uint64, n)
	for i, a := range mol.Atoms {
		invariant[i] = initialInvariant(a, mol.Degree(i))
		fp.SetBit(int(invariant[i] % uint64(FingerprintWidth)))
	}
	for r := 0; r < radius; r++ {
		next := make([]uint64, n)
		for i := range mol.Atoms {
			neighbors := mol.NeighborAtoms(i)
			vals := make([]uint64, 0, len(neighbors))
			for _, nb := range neighbors {
				vals = append(vals, invariant[nb])
			}
			sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
			next[i] = foldInvariant(invariant[i], vals)
			fp.SetBit(int(next[i] % uint64(FingerprintWidth)))
		}
		invariant = next
	}
	return fp
}

func initialInvariant(a Atom, degree int) uint64 {
	h := sha256.New()
	writeUint32(h, uint32(a.AtomicNumber()))
	writeUint32(h, uint32(degree))
	writeUint32(h, uint32(a.Charge+128))
	if a.Aromatic {
		h.Write([]byte{1})
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

func foldInvariant(self uint64, neighbors []uint64) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], self)
	h.Write(buf[:])
	for _, v := range neighbors {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// PopCount returns the number of set bits.
func (f *Fingerprint) PopCount() int {
	count := 0
	for _, b := range f.Bits {
		count += popcountByte(b)
	}
	return count
}

func popcountByte(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}
