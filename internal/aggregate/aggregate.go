// Package aggregate implements result aggregation (C12): turning verified
// structure matches or ranked similarity hits into the typed, deduplicated,
// deterministically ordered hit list callers actually see.
package aggregate

import (
	"sort"

	"github.com/cheminee/search-engine/internal/orchestrator"
	"github.com/cheminee/search-engine/internal/similarity"
)

// structureHitScore is the fixed score every identity/substructure/
// superstructure hit carries: verification is boolean, not ranked, so every
// confirmed match is reported as a perfect match.
const structureHitScore = 1.0

// Hit is one aggregated search result.
type Hit struct {
	SMILES        string                 `json:"smiles"`
	ExtraData     map[string]interface{} `json:"extra_data"`
	Score         float64                `json:"score"`
	Query         string                 `json:"query"`
	UsedTautomers bool                   `json:"used_tautomers"`
}

// FromStructureResult builds the aggregated hit list for an identity,
// substructure, or superstructure search.
func FromStructureResult(result orchestrator.Result, querySMILES string) []Hit {
	hits := make([]Hit, 0, len(result.Matches))
	for _, m := range result.Matches {
		hits = append(hits, Hit{
			SMILES:        m.SMILES,
			ExtraData:     m.ExtraData,
			Score:         structureHitScore,
			Query:         querySMILES,
			UsedTautomers: result.UsedTautomers,
		})
	}
	return SortResults(hits)
}

// FromSimilarityHits builds the aggregated hit list for a similarity
// search, carrying each candidate's Tanimoto score through.
func FromSimilarityHits(hits []similarity.Hit, querySMILES string, usedTautomers bool) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, Hit{
			SMILES:        h.SMILES,
			ExtraData:     h.ExtraData,
			Score:         float64(h.Score),
			Query:         querySMILES,
			UsedTautomers: usedTautomers,
		})
	}
	return SortResults(out)
}

// SortResults deduplicates hits by (smiles, extra_data) — the same molecule
// indexed twice with identical extra data collapses to one hit — then
// orders them by descending score, breaking ties by smiles so the result is
// deterministic across runs over the same index state.
func SortResults(hits []Hit) []Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		key := h.SMILES + "\x00" + extraDataKey(h.ExtraData)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SMILES < out[j].SMILES
	})
	return out
}

// extraDataKey renders extra data as a deterministic string for dedup
// purposes: sorted key=value pairs, one level deep (extra_data values in
// this engine are always scalars or the scaffolds int slice).
func extraDataKey(extra map[string]interface{}) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := ""
	for _, k := range keys {
		key += k + "=" + scalarString(extra[k]) + ";"
	}
	return key
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case []int:
		s := ""
		for i, n := range t {
			if i > 0 {
				s += ","
			}
			s += itoa(n)
		}
		return "[" + s + "]"
	case string:
		return t
	case float64:
		return ftoa(t)
	case int:
		return itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func ftoa(f float64) string {
	if f == float64(int64(f)) {
		return itoa(int(f))
	}
	// Fallback for non-integral values; extra_data floats are rare in this
	// engine's schema, so a simple fixed-precision rendering is sufficient
	// for dedup-key purposes.
	scaled := int64(f * 1e6)
	return itoa(int(scaled))
}
