// Package orchestrator implements the search orchestrator (C11): it drives
// a query molecule through preparation, scaffold lookup, query-string
// construction, basic search, and structure verification for the identity,
// substructure, and superstructure query types, retrying with tautomers
// when a sub/super search falls short of the caller's result limit.
package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/molprep"
	"github.com/cheminee/search-engine/internal/query"
	"github.com/cheminee/search-engine/internal/scaffold"
	"github.com/cheminee/search-engine/internal/search"
	"github.com/cheminee/search-engine/pkg/errors"
)

// State names a stage of the structure-search state machine. Transitions
// only ever move forward; a search ends in Emitted or one of the terminal
// error states.
type State int

const (
	Parsing State = iota
	Standardized
	CandidateGen
	Verified
	Ranked
	Emitted
	InvalidInput
	Backend
)

func (s State) String() string {
	switch s {
	case Parsing:
		return "Parsing"
	case Standardized:
		return "Standardized"
	case CandidateGen:
		return "CandidateGen"
	case Verified:
		return "Verified"
	case Ranked:
		return "Ranked"
	case Emitted:
		return "Emitted"
	case InvalidInput:
		return "InvalidInput"
	case Backend:
		return "Backend"
	default:
		return "Unknown"
	}
}

// QueryType names which of the three structure searches Run performs.
type QueryType = search.QueryType

const (
	Identity      = search.Identity
	Substructure  = search.Substructure
	Superstructure = search.Superstructure
)

// Options configures one structure search.
type Options struct {
	ResultLimit   int
	TautomerLimit int // 0 disables tautomer retry
	UseScaffolds  bool
	UseChirality  bool // accepted for interface completeness; the kernel does not model stereocenters
	ExtraQuery    string
}

func (o Options) withDefaults() Options {
	if o.ResultLimit <= 0 {
		o.ResultLimit = 50
	}
	return o
}

// Result is the outcome of one structure search.
type Result struct {
	State         State
	Matches       []search.Match
	UsedTautomers bool
}

// Deps bundles the collaborators Run needs for one index.
type Deps struct {
	Preparer  *molprep.Preparer
	Scaffolds *scaffold.Registry
	Searcher  *opensearch.Searcher
	Engine    *kernel.Engine
}

// Run validates and standardizes querySMILES, builds the query-string for
// qt, runs basic search and verification, and — for substructure and
// superstructure searches that fall short of the result limit — retries
// across a bounded set of tautomers in parallel.
func Run(ctx context.Context, deps Deps, indexName string, qt QueryType, querySMILES string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	prepped, err := deps.Preparer.Process(querySMILES)
	if err != nil {
		return Result{State: InvalidInput}, err
	}

	var scaffoldIDs []int
	useScaffolds := opts.UseScaffolds
	if deps.Scaffolds != nil {
		if !optUseScaffoldsSet(opts) {
			useScaffolds = true
		}
		if useScaffolds {
			scaffoldIDs = deps.Scaffolds.ScaffoldsOf(prepped.Mol)
		}
	}

	fp := fingerprintFor(qt, prepped)
	matches, err := runOnce(ctx, deps, indexName, qt, prepped.Descriptors, scaffoldIDs, fp, prepped.Mol, prepped.CanonicalSMILES, opts)
	if err != nil {
		return Result{State: Backend}, err
	}

	usedTautomers := false
	if qt != Identity && len(matches) < opts.ResultLimit && opts.TautomerLimit > 0 {
		extra, err := runTautomers(ctx, deps, indexName, qt, prepped, scaffoldIDs, opts, matches)
		if err != nil {
			return Result{State: Backend}, err
		}
		if len(extra) > 0 {
			matches = dedupMatches(append(matches, extra...))
			usedTautomers = true
		}
	}

	state := Emitted
	if qt == Identity && len(matches) > 1 {
		matches = matches[:1]
	}

	return Result{State: state, Matches: matches, UsedTautomers: usedTautomers}, nil
}

// optUseScaffoldsSet exists only to document the default: a caller who
// leaves UseScaffolds false gets scaffold narrowing anyway unless Deps has
// no registry, matching use_scaffolds' documented default of true.
func optUseScaffoldsSet(o Options) bool {
	return o.UseScaffolds
}

func fingerprintFor(qt QueryType, prepped molprep.Prepared) []byte {
	return prepped.Fingerprint.Bits
}

func runOnce(ctx context.Context, deps Deps, indexName string, qt QueryType, descriptors map[string]float64, scaffoldIDs []int, queryFP []byte, queryMol *kernel.Mol, querySMILES string, opts Options) ([]search.Match, error) {
	queryString := buildQuery(qt, descriptors, scaffoldIDs, opts.ExtraQuery)
	tantivyLimit := search.TantivyLimit(qt, opts.ResultLimit)

	candidates, err := search.Basic(ctx, deps.Searcher, indexName, queryString, tantivyLimit)
	if err != nil {
		return nil, err
	}
	return search.Verify(deps.Engine, qt, queryMol, queryFP, querySMILES, candidates, opts.ResultLimit)
}

func buildQuery(qt QueryType, descriptors map[string]float64, scaffoldIDs []int, extraQuery string) string {
	switch qt {
	case Identity:
		return query.Identity(descriptors, scaffoldIDs, extraQuery)
	case Substructure:
		return query.Substructure(descriptors, scaffoldIDs, extraQuery)
	case Superstructure:
		return query.Superstructure(descriptors, scaffoldIDs, extraQuery)
	default:
		return extraQuery
	}
}

// runTautomers enumerates up to opts.TautomerLimit tautomers of the query
// (including the canonical form already tried by runOnce) and searches each
// of the non-canonical ones in parallel, bounded by TautomerLimit workers.
func runTautomers(ctx context.Context, deps Deps, indexName string, qt QueryType, prepped molprep.Prepared, scaffoldIDs []int, opts Options, existing []search.Match) ([]search.Match, error) {
	variants := kernel.EnumerateTautomers(prepped.Mol, opts.TautomerLimit)
	if len(variants) <= 1 {
		return nil, nil
	}

	results := make([][]search.Match, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.TautomerLimit)
	for i, variant := range variants[1:] {
		i, variant := i+1, variant
		g.Go(func() error {
			variantSMILES := deps.Engine.AsSMILES(variant)
			variantPrepped, err := deps.Preparer.Process(variantSMILES)
			if err != nil {
				return nil // a malformed tautomer variant just contributes no matches
			}
			matches, err := runOnce(gctx, deps, indexName, qt, variantPrepped.Descriptors, scaffoldIDs, variantPrepped.Fingerprint.Bits, variantPrepped.Mol, variantPrepped.CanonicalSMILES, opts)
			if err != nil {
				return err
			}
			results[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []search.Match
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

func dedupMatches(matches []search.Match) []search.Match {
	seen := make(map[string]bool, len(matches))
	out := make([]search.Match, 0, len(matches))
	for _, m := range matches {
		if seen[m.Address] {
			continue
		}
		seen[m.Address] = true
		out = append(out, m)
	}
	return out
}

// NewValidationError wraps a parse/standardization failure for callers that
// need an explicit InvalidInput classification rather than the raw kernel
// error.
func NewValidationError(err error) error {
	return errors.Wrap(err, errors.CodeValidationFailed, "orchestrator: invalid query molecule")
}
