package cluster

import (
	"context"

	"github.com/cheminee/search-engine/internal/infrastructure/search/milvus"
	"github.com/cheminee/search-engine/pkg/errors"
	"github.com/cheminee/search-engine/pkg/types/common"
)

// VectorDim is the width of the structure_vector field MoleculeVectorSchema
// registers, and so the width every fingerprint is folded into before a
// vector search against the clusters collection.
const VectorDim = 512

// MilvusEncoder ranks clusters by vector similarity against a clusters
// collection built on MoleculeVectorSchema: row id is the cluster id, and
// structure_vector is that cluster's centroid.
type MilvusEncoder struct {
	searcher       *milvus.Searcher
	collectionName string
	vectorField    string
	metricType     string
}

// NewMilvusEncoder constructs a MilvusEncoder against an already-created
// and loaded collection.
func NewMilvusEncoder(searcher *milvus.Searcher, collectionName string) *MilvusEncoder {
	return &MilvusEncoder{
		searcher:       searcher,
		collectionName: collectionName,
		vectorField:    "structure_vector",
		metricType:     "COSINE",
	}
}

func (e *MilvusEncoder) TotalClusters(ctx context.Context) (int, error) {
	count, err := e.searcher.GetEntityCount(ctx, e.collectionName)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeStorage, "cluster: failed to count clusters")
	}
	return int(count), nil
}

// Encode folds fingerprint into a VectorDim-wide float embedding and ranks
// every cluster against it, nearest first. The Milvus search itself runs with
// TopK set to TotalClusters, so every cluster comes back ranked.
func (e *MilvusEncoder) Encode(ctx context.Context, fingerprint []byte) ([]int, error) {
	total, err := e.TotalClusters(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	vector := foldVector(fingerprint, VectorDim)
	result, err := e.searcher.Search(ctx, common.VectorSearchRequest{
		CollectionName:  e.collectionName,
		VectorFieldName: e.vectorField,
		Vectors:         [][]float32{vector},
		TopK:            total,
		MetricType:      e.metricType,
		OutputFields:    []string{"id"},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "cluster: vector search failed")
	}
	if len(result.Results) == 0 {
		return nil, nil
	}

	hits := result.Results[0]
	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, int(h.ID))
	}
	return ids, nil
}

// foldVector expands fingerprint's bits into a dim-wide float32 embedding,
// one bit per dimension with wraparound when the fingerprint is narrower
// than dim and truncation when it's wider.
func foldVector(fingerprint []byte, dim int) []float32 {
	vec := make([]float32, dim)
	totalBits := len(fingerprint) * 8
	if totalBits == 0 {
		return vec
	}
	for i := 0; i < dim; i++ {
		bitIdx := i % totalBits
		byteIdx := bitIdx / 8
		bitOff := uint(bitIdx % 8)
		if fingerprint[byteIdx]&(1<<bitOff) != 0 {
			vec[i] = 1
		}
	}
	return vec
}
