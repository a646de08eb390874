// Package cluster implements the candidate cluster encoder similarity
// search (C10) uses to narrow a similarity query down to a bounded set of
// basic-search clauses: given a query fingerprint, rank every registered
// cluster by how well it matches and report the total cluster count so the
// caller can take a percentage-bounded top-K.
package cluster

import (
	"context"
	"math/bits"
	"sort"

	"github.com/cheminee/search-engine/pkg/errors"
)

// Encoder ranks clusters against a fingerprint, best match first.
type Encoder interface {
	Encode(ctx context.Context, fingerprint []byte) ([]int, error)
	TotalClusters(ctx context.Context) (int, error)
}

// TopK returns how many of the ranked clusters Encode(...) returns should
// be kept, given a percentage of the total and a minimum of 1.
func TopK(total int, searchPercent float64) int {
	if total <= 0 {
		return 0
	}
	k := int((float64(total)*searchPercent)/100 + 0.999999)
	if k < 1 {
		k = 1
	}
	if k > total {
		k = total
	}
	return k
}

// LocalEncoder is a dependency-free fallback: it folds a fingerprint's bytes
// into a 32-bit signature and ranks all totalClusters cluster ids by Hamming
// distance between that signature and each cluster's own signature. It never
// needs an index to be built or trained, at the cost of cluster boundaries
// that don't reflect the training-time distribution a vector index would
// give.
type LocalEncoder struct {
	totalClusters int
}

// NewLocalEncoder constructs a LocalEncoder with totalClusters buckets.
func NewLocalEncoder(totalClusters int) *LocalEncoder {
	if totalClusters <= 0 {
		totalClusters = 1000
	}
	return &LocalEncoder{totalClusters: totalClusters}
}

func (e *LocalEncoder) TotalClusters(ctx context.Context) (int, error) {
	return e.totalClusters, nil
}

func (e *LocalEncoder) Encode(ctx context.Context, fingerprint []byte) ([]int, error) {
	if len(fingerprint) == 0 {
		return nil, errors.New(errors.CodeValidationFailed, "cluster: empty fingerprint")
	}
	signature := foldSignature(fingerprint)

	type scored struct {
		id   int
		dist int
	}
	ranked := make([]scored, e.totalClusters)
	for id := 0; id < e.totalClusters; id++ {
		ranked[id] = scored{id: id, dist: bits.OnesCount32(signature ^ clusterSignature(id))}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].dist < ranked[j].dist })

	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.id
	}
	return out, nil
}

// foldSignature XORs fingerprint bytes down to a 32-bit signature, four
// bytes at a time.
func foldSignature(fingerprint []byte) uint32 {
	var sig uint32
	for i, b := range fingerprint {
		shift := uint(8 * (i % 4))
		sig ^= uint32(b) << shift
	}
	return sig
}

// clusterSignature deterministically derives a cluster's own 32-bit
// signature from its id with a multiplicative hash followed by
// xorshift-multiply mixing, so cluster 0 and cluster 1 sit at a
// plausible Hamming distance apart rather than differing by exactly one bit.
func clusterSignature(id int) uint32 {
	x := uint32(id)*2654435761 + 0x9e3779b9
	x ^= x >> 15
	x *= 2246822519
	x ^= x >> 13
	return x
}
