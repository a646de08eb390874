// Package query implements the query-string builders (C7): identity,
// substructure, superstructure, and similarity searches all reduce to a
// string in the backing engine's boolean+range query language, built from
// a query molecule's descriptors, scaffold membership, and (for
// similarity) candidate cluster ids.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cheminee/search-engine/internal/schema"
)

// PositiveInfinity stands in for "no upper bound" in a range clause, per
// the builders' documented encoding of +∞ as a large constant.
const PositiveInfinity = 10000

// ScaffoldNone is the query-language value matching the no-scaffold
// sentinel persisted at ingest time.
const ScaffoldNone = schema.NoScaffoldSentinel

// clause is one field-bound term under construction, kept alongside its
// field name so extra_query's field-conflict rule can drop it later.
type clause struct {
	field string
	text  string
}

// Identity builds the equality query: every STRUCTURE_MATCH_DESCRIPTORS
// field bound to `[v TO v]`, conjoined with a scaffold membership clause
// requiring every id in scaffoldIDs (or the no-scaffold sentinel when
// scaffoldIDs is empty), then merged with extraQuery.
func Identity(descriptors map[string]float64, scaffoldIDs []int, extraQuery string) string {
	var clauses []clause
	for _, name := range schema.StructureMatchDescriptors() {
		v := formatValue(name, descriptors[name])
		clauses = append(clauses, clause{field: name, text: fmt.Sprintf("%s:[%s TO %s]", name, v, v)})
	}
	clauses = append(clauses, scaffoldClausesExact(scaffoldIDs)...)
	return merge(clauses, extraQuery)
}

// Substructure builds the containment query for "query ⊆ indexed": every
// STRUCTURE_MATCH_DESCRIPTORS field bound to `[v_query TO +∞]`, plus one
// conjoined scaffold clause per id when scaffoldIDs is non-empty (an empty
// scaffold set adds no scaffold clause at all, since anything may contain
// the query).
func Substructure(descriptors map[string]float64, scaffoldIDs []int, extraQuery string) string {
	var clauses []clause
	for _, name := range schema.StructureMatchDescriptors() {
		v := formatValue(name, descriptors[name])
		clauses = append(clauses, clause{field: name, text: fmt.Sprintf("%s:[%s TO %d]", name, v, PositiveInfinity)})
	}
	if len(scaffoldIDs) > 0 {
		clauses = append(clauses, scaffoldClausesExact(scaffoldIDs)...)
	}
	return merge(clauses, extraQuery)
}

// Superstructure builds the containment query for "indexed ⊆ query": every
// STRUCTURE_MATCH_DESCRIPTORS field bound to `[0 TO v_query]`, plus a
// scaffold clause requiring either the no-scaffold sentinel alone (query
// has no scaffolds) or a disjunction of the query's scaffold ids with the
// no-scaffold sentinel (candidates sharing a scaffold, or having none).
func Superstructure(descriptors map[string]float64, scaffoldIDs []int, extraQuery string) string {
	var clauses []clause
	for _, name := range schema.StructureMatchDescriptors() {
		v := formatValue(name, descriptors[name])
		clauses = append(clauses, clause{field: name, text: fmt.Sprintf("%s:[0 TO %s]", name, v)})
	}
	clauses = append(clauses, superstructureScaffoldClause(scaffoldIDs))
	return merge(clauses, extraQuery)
}

// Similarity builds a disjunction over the caller's already-ranked top-K
// candidate cluster ids, conjoined with extraQuery. It does not itself
// select K or rank clusters — that is the cluster encoder's job in C10.
func Similarity(clusterIDs []int, extraQuery string) string {
	if len(clusterIDs) == 0 {
		return merge(nil, extraQuery)
	}
	sorted := append([]int(nil), clusterIDs...)
	sort.Ints(sorted)
	terms := make([]string, len(sorted))
	for i, c := range sorted {
		terms[i] = fmt.Sprintf("other_descriptors.similarity_cluster:%d", c)
	}
	text := strings.Join(terms, " OR ")
	if len(terms) > 1 {
		text = "(" + text + ")"
	}
	return merge([]clause{{field: "other_descriptors.similarity_cluster", text: text}}, extraQuery)
}

// scaffoldClausesExact returns one extra_data.scaffolds:<id> clause per
// scaffold id, or the no-scaffold sentinel clause when ids is empty. Every
// returned clause shares the same field name so extra_query's
// field-conflict rule drops all of them together, not just the first.
func scaffoldClausesExact(ids []int) []clause {
	if len(ids) == 0 {
		return []clause{{field: scaffoldField, text: fmt.Sprintf("%s:%d", scaffoldField, ScaffoldNone)}}
	}
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	out := make([]clause, len(sorted))
	for i, id := range sorted {
		out[i] = clause{field: scaffoldField, text: fmt.Sprintf("%s:%d", scaffoldField, id)}
	}
	return out
}

func superstructureScaffoldClause(queryScaffoldIDs []int) clause {
	if len(queryScaffoldIDs) == 0 {
		return clause{field: scaffoldField, text: fmt.Sprintf("%s:%d", scaffoldField, ScaffoldNone)}
	}
	sorted := append([]int(nil), queryScaffoldIDs...)
	sort.Ints(sorted)
	terms := make([]string, len(sorted)+1)
	for i, id := range sorted {
		terms[i] = fmt.Sprintf("%s:%d", scaffoldField, id)
	}
	terms[len(sorted)] = fmt.Sprintf("%s:%d", scaffoldField, ScaffoldNone)
	return clause{field: scaffoldField, text: "(" + strings.Join(terms, " OR ") + ")"}
}

const scaffoldField = "extra_data.scaffolds"

// formatValue renders a descriptor value the way it was truncated at
// index time: integer descriptors as bare integers, everything else as a
// minimal decimal.
func formatValue(name string, v float64) string {
	if schema.IsIntegerDescriptor(name) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// merge conjoins the builder's own clauses with extraQuery, honoring the
// field-conflict rule: extraQuery is split on " AND "; for any term whose
// field already has a builder-generated clause, the builder's clause is
// dropped in favor of the caller's.
func merge(built []clause, extraQuery string) string {
	extraTerms := splitExtraQuery(extraQuery)
	extraFields := make(map[string]bool, len(extraTerms))
	for _, t := range extraTerms {
		extraFields[extraFieldOf(t)] = true
	}

	var out []string
	for _, c := range built {
		if extraFields[c.field] {
			continue
		}
		out = append(out, c.text)
	}
	out = append(out, extraTerms...)
	return strings.Join(out, " AND ")
}

func splitExtraQuery(extraQuery string) []string {
	extraQuery = strings.TrimSpace(extraQuery)
	if extraQuery == "" {
		return nil
	}
	parts := strings.Split(extraQuery, " AND ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extraFieldOf extracts the field name a caller-supplied clause binds,
// i.e. the text before its first ':'. Clauses the caller wraps in
// parentheses (an OR group) are left with their leading '(' stripped so
// the field name still matches a builder-generated clause for the same
// field.
func extraFieldOf(term string) string {
	term = strings.TrimPrefix(strings.TrimSpace(term), "(")
	if idx := strings.IndexByte(term, ':'); idx >= 0 {
		return term[:idx]
	}
	return term
}
