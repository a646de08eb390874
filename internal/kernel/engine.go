package kernel

import "github.com/cheminee/search-engine/pkg/errors"

// DefaultPathDepth and DefaultMorganRadius bound the fingerprint algorithms
// this Engine exposes. They are fixed rather than configurable so that two
// fingerprints computed by the same binary are always comparable.
const (
	DefaultPathDepth    = 7
	DefaultMorganRadius = 2
	DefaultTautomerCap  = 8
)

// Engine is the single entry point the rest of the module uses to reach
// into chemistry. No package outside internal/kernel parses a SMILES
// string, walks a bond list, or hashes an atom environment directly; every
// such operation goes through Engine so the representation behind it can
// change without touching callers.
type Engine struct {
	pathDepth    int
	morganRadius int
	tautomerCap  int
}

// NewEngine constructs an Engine with this kernel's default algorithm
// parameters.
func NewEngine() *Engine {
	return &Engine{
		pathDepth:    DefaultPathDepth,
		morganRadius: DefaultMorganRadius,
		tautomerCap:  DefaultTautomerCap,
	}
}

// Parse converts a SMILES string into an opaque molecular handle.
func (e *Engine) Parse(smiles string) (*Mol, error) {
	if smiles == "" {
		return nil, errors.ParseError("empty SMILES string")
	}
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return nil, errors.ParseError(err.Error())
	}
	return mol, nil
}

// Canonicalize returns the canonical SMILES string for mol.
func (e *Engine) Canonicalize(mol *Mol) string {
	return CanonicalSMILES(mol)
}

// FragmentParent returns the largest covalent fragment of mol.
func (e *Engine) FragmentParent(mol *Mol) *Mol {
	return FragmentParent(mol)
}

// Uncharge neutralizes the charges on mol that this kernel knows how to
// resolve without altering connectivity.
func (e *Engine) Uncharge(mol *Mol) *Mol {
	return Uncharge(mol)
}

// EnumerateTautomers returns mol and its reachable tautomers, bounded by
// this Engine's tautomer cap.
func (e *Engine) EnumerateTautomers(mol *Mol) []*Mol {
	return EnumerateTautomers(mol, e.tautomerCap)
}

// Fingerprint computes the default structural fingerprint used for
// identity and substructure search.
func (e *Engine) Fingerprint(mol *Mol) *Fingerprint {
	return PathFingerprint(mol, e.pathDepth)
}

// MorganFingerprint computes the atom-environment fingerprint used for
// similarity search and cluster encoding.
func (e *Engine) MorganFingerprint(mol *Mol) *Fingerprint {
	return MorganFingerprint(mol, e.morganRadius)
}

// Descriptors computes the numeric descriptor subset this kernel supports.
func (e *Engine) Descriptors(mol *Mol) Descriptors {
	return ComputeDescriptors(mol)
}

// SubstructMatch reports whether query embeds as a subgraph of target.
func (e *Engine) SubstructMatch(query, target *Mol) bool {
	return SubstructMatch(query, target)
}

// ExactMatch reports whether query and target are the same structure.
func (e *Engine) ExactMatch(query, target *Mol) bool {
	return ExactMatch(query, target)
}

// AsSMILES is an alias for Canonicalize kept for parity with the contract
// naming used elsewhere in this module's documentation.
func (e *Engine) AsSMILES(mol *Mol) string {
	return e.Canonicalize(mol)
}

// ToMolBlock serializes mol to a minimal V2000 connection table.
func (e *Engine) ToMolBlock(mol *Mol) string {
	return ToMolBlock(mol)
}

// FromMolBlock parses a minimal V2000 connection table into a Mol.
func (e *Engine) FromMolBlock(block string) (*Mol, error) {
	mol, err := FromMolBlock(block)
	if err != nil {
		return nil, errors.ParseError(err.Error())
	}
	return mol, nil
}

// Standardize runs the standard normalization pipeline used before a
// molecule is indexed: fragment selection, then uncharging.
func (e *Engine) Standardize(mol *Mol) *Mol {
	return e.Uncharge(e.FragmentParent(mol))
}
