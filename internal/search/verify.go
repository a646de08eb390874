package search

import (
	"github.com/cheminee/search-engine/internal/fpalgebra"
	"github.com/cheminee/search-engine/internal/kernel"
)

// Match is one candidate that survived the verification loop: a confirmed
// structural match against the query molecule, carrying everything C12
// needs to build an aggregated hit without re-fetching the document.
type Match struct {
	Address   string
	SMILES    string
	ExtraData map[string]interface{}
}

// Verify runs the structure verification loop (C9) over candidates in
// order, stopping as soon as resultLimit confirmed matches have been found.
// For each candidate it first applies a cheap bit predicate over the stored
// and query fingerprints; only candidates that pass are re-parsed and given
// an exact kernel match, since the predicate can admit false positives the
// kernel catches (and, for sub/super, candidates identical to the query are
// rejected rather than counted as a containment match).
func Verify(engine *kernel.Engine, qt QueryType, queryMol *kernel.Mol, queryFingerprint []byte, querySMILES string, candidates []Candidate, resultLimit int) ([]Match, error) {
	var matches []Match
	for _, c := range candidates {
		if resultLimit > 0 && len(matches) >= resultLimit {
			break
		}

		ok, err := bitPredicate(qt, queryFingerprint, c.Fingerprint)
		if err != nil {
			continue
		}
		if !ok {
			continue
		}

		if qt != Identity && c.SMILES == querySMILES {
			continue
		}

		candidateMol, err := engine.Parse(c.SMILES)
		if err != nil {
			continue
		}

		if !kernelMatch(engine, qt, queryMol, candidateMol) {
			continue
		}

		matches = append(matches, Match{
			Address:   c.Address,
			SMILES:    c.SMILES,
			ExtraData: c.ExtraData,
		})
	}
	return matches, nil
}

// bitPredicate applies the cheap fingerprint-bit test that gates which
// candidates are worth an exact kernel re-match: equality for identity,
// subset-containment in the orientation the query type names.
func bitPredicate(qt QueryType, queryFP, candidateFP []byte) (bool, error) {
	switch qt {
	case Identity:
		return fpalgebra.Identity(candidateFP, queryFP)
	case Substructure:
		// query ⊆ candidate
		return fpalgebra.SubstructureContains(queryFP, candidateFP)
	case Superstructure:
		// candidate ⊆ query
		return fpalgebra.SubstructureContains(candidateFP, queryFP)
	default:
		return false, nil
	}
}

// kernelMatch re-checks a candidate that passed the bit predicate against
// the actual molecular kernel, in the orientation the query type names.
// Identity requires the two molecules to match in both directions; sub/super
// verification already excluded exact-SMILES candidates above, so a single
// directional match is sufficient here.
func kernelMatch(engine *kernel.Engine, qt QueryType, queryMol, candidateMol *kernel.Mol) bool {
	switch qt {
	case Identity:
		return engine.ExactMatch(queryMol, candidateMol) && engine.ExactMatch(candidateMol, queryMol)
	case Substructure:
		// query ⊆ candidate
		return engine.SubstructMatch(queryMol, candidateMol)
	case Superstructure:
		// candidate ⊆ query
		return engine.SubstructMatch(candidateMol, queryMol)
	default:
		return false
	}
}
