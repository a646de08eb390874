// Package molprep implements molecule preparation: validate a line-notation
// string, run it through the standardization pipeline (fragment-parent →
// uncharge → canonical tautomer), and derive the fingerprint and descriptor
// set every downstream component (writer, query builders, verification
// loop) treats as the molecule's canonical representation.
package molprep

import (
	"sort"

	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/schema"
	"github.com/cheminee/search-engine/pkg/errors"
)

// Prepared is the output of Process: the canonical molecule plus its
// derived fingerprint and descriptor mapping. All three are pure functions
// of the canonical tautomer, never the raw input.
type Prepared struct {
	Mol             *kernel.Mol
	CanonicalSMILES string
	Fingerprint     *kernel.Fingerprint
	Morgan          *kernel.Fingerprint
	Descriptors     map[string]float64
}

// Preparer wraps a kernel.Engine with the C2 contract: validate,
// standardize, process.
type Preparer struct {
	engine *kernel.Engine
}

// New constructs a Preparer over a fresh kernel engine.
func New() *Preparer {
	return &Preparer{engine: kernel.NewEngine()}
}

// NewWithEngine constructs a Preparer over a caller-provided engine, useful
// when a single engine instance is shared to amortize its fixed algorithm
// parameters across many calls.
func NewWithEngine(e *kernel.Engine) *Preparer {
	return &Preparer{engine: e}
}

// Validate parses s and reports chemistry problems found; an empty slice
// means the string is valid. It fails with ParseError if the string is not
// parseable at all, distinct from failing validity checks on a parseable
// structure.
func (p *Preparer) Validate(s string) ([]string, error) {
	mol, err := p.engine.Parse(s)
	if err != nil {
		return nil, err
	}
	var problems []string
	if len(mol.Atoms) == 0 {
		problems = append(problems, "structure contains no atoms")
	}
	for i := range mol.Atoms {
		if mol.Atoms[i].AtomicNumber() == 0 && mol.Atoms[i].Symbol != "*" {
			problems = append(problems, "unrecognized element: "+mol.Atoms[i].Symbol)
		}
	}
	return problems, nil
}

// Standardize runs parse → fragment-parent → uncharge → canonical tautomer
// and returns the resulting canonical molecule. attemptFix is currently
// advisory: this kernel's parser has a single strictness level, so the flag
// only controls whether a parse failure is reported as StandardizationFailed
// (attemptFix true, signaling the caller already expects imperfect input)
// or surfaced directly as the kernel's ParseError.
func (p *Preparer) Standardize(s string, attemptFix bool) (*kernel.Mol, error) {
	mol, err := p.engine.Parse(s)
	if err != nil {
		if attemptFix {
			return nil, errors.StandardizationFailed(err.Error())
		}
		return nil, err
	}
	std := p.engine.Standardize(mol)
	tautomers := p.engine.EnumerateTautomers(std)
	canonical := canonicalTautomer(p.engine, tautomers)
	return canonical, nil
}

// canonicalTautomer picks the lexicographically smallest canonical SMILES
// among a molecule's tautomers so that repeated calls on equivalent input
// converge on the same representative.
func canonicalTautomer(e *kernel.Engine, tautomers []*kernel.Mol) *kernel.Mol {
	best := tautomers[0]
	bestSMILES := e.Canonicalize(best)
	for _, t := range tautomers[1:] {
		s := e.Canonicalize(t)
		if s < bestSMILES {
			best = t
			bestSMILES = s
		}
	}
	return best
}

// Process validates, standardizes, then computes (canonical_mol,
// fingerprint, descriptors) for s. It fails with ValidationFailed if
// Validate finds problems, or StandardizationFailed if the pipeline errors.
func (p *Preparer) Process(s string) (Prepared, error) {
	problems, err := p.Validate(s)
	if err != nil {
		return Prepared{}, err
	}
	if len(problems) > 0 {
		return Prepared{}, errors.ValidationFailed(problems[0]).WithDetail(
			sortedJoin(problems))
	}

	mol, err := p.Standardize(s, false)
	if err != nil {
		return Prepared{}, errors.StandardizationFailed(err.Error())
	}

	descriptors := toDescriptorMap(mol, p.engine.Descriptors(mol))
	return Prepared{
		Mol:             mol,
		CanonicalSMILES: p.engine.Canonicalize(mol),
		Fingerprint:     p.engine.Fingerprint(mol),
		Morgan:          p.engine.MorganFingerprint(mol),
		Descriptors:     descriptors,
	}, nil
}

func sortedJoin(problems []string) string {
	sorted := append([]string(nil), problems...)
	sort.Strings(sorted)
	joined := ""
	for i, p := range sorted {
		if i > 0 {
			joined += "; "
		}
		joined += p
	}
	return joined
}

func toDescriptorMap(mol *kernel.Mol, d kernel.Descriptors) map[string]float64 {
	m := map[string]float64{
		"exactmw":           d.MolecularWeight,
		"amw":               d.MolecularWeight,
		"NumHeavyAtoms":     float64(d.HeavyAtomCount),
		"NumAtoms":          float64(d.AtomCount),
		"NumRings":          float64(d.RingCount),
		"NumAromaticRings":  float64(d.AromaticRings),
		"NumRotatableBonds": float64(d.RotatableBonds),
		"NumHBD":            float64(d.HBondDonors),
		"NumHBA":            float64(d.HBondAcceptors),
		"lipinskiHBD":       float64(d.HBondDonors),
		"lipinskiHBA":       float64(d.HBondAcceptors),
		"FractionCSP3":      d.FractionCsp3,
		"CrippenClogP":      kernel.LogP(mol),
	}
	for _, name := range schema.KnownDescriptors {
		if _, ok := m[name]; !ok {
			m[name] = 0
		}
	}
	return m
}
