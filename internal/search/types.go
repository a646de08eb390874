// Package search implements basic search (C8) and the structure
// verification loop (C9): turning a query string into ordered document
// addresses, then filtering those candidates down to confirmed structural
// matches via fingerprint predicates and an exact re-match against the
// molecular kernel.
package search

// QueryType names the structural relationship a verification pass checks
// between the query molecule and a candidate.
type QueryType int

const (
	// Identity requires the candidate to be structurally identical to the
	// query.
	Identity QueryType = iota
	// Substructure requires the query to embed as a subgraph of the
	// candidate (query ⊆ candidate).
	Substructure
	// Superstructure requires the candidate to embed as a subgraph of the
	// query (candidate ⊆ query).
	Superstructure
)

// Candidate is one document address returned by basic search, decoded
// eagerly since the verification loop needs the stored SMILES and
// fingerprint for every candidate it inspects.
type Candidate struct {
	Address     string
	SMILES      string
	Fingerprint []byte
	ExtraData   map[string]interface{}
}

// TantivyLimit bounds how many candidates basic search should fetch before
// handing them to the verification loop: at least 10x the caller's
// result_limit, or a fixed 100k for identity searches (which this engine
// expects to resolve against a single canonical fingerprint with no
// tolerance for missed recall).
func TantivyLimit(qt QueryType, resultLimit int) int {
	if qt == Identity {
		return 100000
	}
	limit := resultLimit * 10
	if limit < 1 {
		return 0
	}
	return limit
}
