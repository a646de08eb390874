package search

import (
	"context"
	"encoding/json"

	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/schema"
	"github.com/cheminee/search-engine/pkg/errors"
)

// Basic runs a query_string search against indexName and returns up to
// limit candidates, ordered by the backing engine's default scoring, with
// the stored SMILES/fingerprint/extra_data decoded eagerly. No re-ranking
// happens here — that is the verification loop's job (C9) or the
// Tanimoto re-rank (C10).
func Basic(ctx context.Context, searcher *opensearch.Searcher, indexName, queryString string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}

	result, err := searcher.Search(ctx, opensearch.SearchRequest{
		IndexName: indexName,
		Query:     &opensearch.Query{QueryType: "query_string", Value: queryString},
		Pagination: &opensearch.Pagination{
			Offset: 0,
			Limit:  limit,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryParse, "basic search failed")
	}

	candidates := make([]Candidate, 0, len(result.Hits))
	for _, hit := range result.Hits {
		doc, err := decodeHit(hit.Source)
		if err != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Address:     hit.ID,
			SMILES:      doc.SMILES,
			Fingerprint: doc.Fingerprint,
			ExtraData:   doc.ExtraData,
		})
	}
	return candidates, nil
}

func decodeHit(raw json.RawMessage) (schema.Document, error) {
	return schema.FromIndexSource(raw)
}
