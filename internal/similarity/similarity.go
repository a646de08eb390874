// Package similarity implements similarity search (C10): fan out the query
// molecule's tautomers to the cluster encoder, pull a percentage-bounded
// disjunction of candidate clusters through basic search, then re-rank the
// union of candidates by the best Tanimoto score against any tautomer.
package similarity

import (
	"context"
	"sort"

	"github.com/cheminee/search-engine/internal/cluster"
	"github.com/cheminee/search-engine/internal/fpalgebra"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/query"
	"github.com/cheminee/search-engine/internal/search"
)

// DefaultSearchPercent and DefaultTanimotoMinimum are the defaults C10
// applies when a caller leaves them unset.
const (
	DefaultSearchPercent   = 0.1
	DefaultTanimotoMinimum = 0.4
	candidateSearchLimit   = 1_000_000
)

// Hit is one similarity match, carrying the Tanimoto score that ranked it.
type Hit struct {
	Address   string
	SMILES    string
	ExtraData map[string]interface{}
	Score     float32
}

// Deps bundles the collaborators Search needs; Encoder is swappable between
// the dependency-free cluster.LocalEncoder and a cluster.MilvusEncoder.
type Deps struct {
	Engine   *kernel.Engine
	Searcher *opensearch.Searcher
	Encoder  cluster.Encoder
}

// Options configures one Search call.
type Options struct {
	TautomerLimit   int // 0 = canonical tautomer only
	SearchPercent   float64
	TanimotoMinimum float64
	ResultLimit     int
	ExtraQuery      string
}

func (o Options) withDefaults() Options {
	if o.SearchPercent <= 0 {
		o.SearchPercent = DefaultSearchPercent
	}
	if o.TanimotoMinimum <= 0 {
		o.TanimotoMinimum = DefaultTanimotoMinimum
	}
	if o.ResultLimit <= 0 {
		o.ResultLimit = 50
	}
	return o
}

// Search runs the similarity pipeline against one already-standardized query
// molecule and returns hits sorted by descending Tanimoto score, at most
// opts.ResultLimit of them.
func Search(ctx context.Context, deps Deps, indexName string, queryMol *kernel.Mol, opts Options) ([]Hit, error) {
	opts = opts.withDefaults()

	tautomerCap := opts.TautomerLimit
	if tautomerCap <= 0 {
		tautomerCap = 1
	}
	tautomers := kernel.EnumerateTautomers(queryMol, tautomerCap)

	fingerprints := make([][]byte, len(tautomers))
	for i, t := range tautomers {
		fingerprints[i] = deps.Engine.MorganFingerprint(t).Bits
	}

	total, err := deps.Encoder.TotalClusters(ctx)
	if err != nil {
		return nil, err
	}
	topK := cluster.TopK(total, opts.SearchPercent)

	candidates := make(map[string]search.Candidate)
	for _, fp := range fingerprints {
		ranked, err := deps.Encoder.Encode(ctx, fp)
		if err != nil {
			return nil, err
		}
		if len(ranked) > topK {
			ranked = ranked[:topK]
		}

		queryString := query.Similarity(ranked, opts.ExtraQuery)
		found, err := search.Basic(ctx, deps.Searcher, indexName, queryString, candidateSearchLimit)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			candidates[c.Address] = c
		}
	}

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		score, err := fpalgebra.MaxTanimoto(c.Fingerprint, fingerprints)
		if err != nil {
			continue
		}
		if float64(score) < opts.TanimotoMinimum {
			continue
		}
		hits = append(hits, Hit{
			Address:   c.Address,
			SMILES:    c.SMILES,
			ExtraData: c.ExtraData,
			Score:     score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Address < hits[j].Address
	})
	if len(hits) > opts.ResultLimit {
		hits = hits[:opts.ResultLimit]
	}
	return hits, nil
}
