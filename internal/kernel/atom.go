// Package kernel is the pure-Go molecular kernel behind the opaque handle
// boundary: it is the only package in this module that understands atoms,
// bonds, and SMILES syntax. Every other package talks to a *Mol through the
// Engine contract (parse, canonicalize, fragment_parent, uncharge,
// enumerate_tautomers, fingerprint, morgan_fingerprint, descriptors,
// substruct_match, as_smiles, to_mol_block) and never reaches into these
// internals directly.
package kernel

// element describes the static properties of a periodic-table entry that the
// kernel's organic subset needs: atomic number, default valence, and mass.
type element struct {
	symbol      string
	number      int
	valence     int
	mass        float64
	hAcceptable bool
}

// elementTable holds the static properties of H and of the organic-subset
// elements B, C, N, O, P, S, F, Cl, Br, I; it is keyed by the uppercase
// symbol only, with no separate aromatic lowercase entries.
var elementTable = map[string]element{
	"B":  {"B", 5, 3, 10.811, false},
	"C":  {"C", 6, 4, 12.011, false},
	"N":  {"N", 7, 3, 14.007, true},
	"O":  {"O", 8, 2, 15.999, true},
	"P":  {"P", 15, 3, 30.974, true},
	"S":  {"S", 16, 2, 32.065, true},
	"F":  {"F", 9, 1, 18.998, false},
	"Cl": {"Cl", 17, 1, 35.453, false},
	"Br": {"Br", 35, 1, 79.904, false},
	"I":  {"I", 53, 1, 126.904, false},
	"H":  {"H", 1, 1, 1.008, false},
}

func lookupElement(symbol string) (element, bool) {
	e, ok := elementTable[symbol]
	return e, ok
}

// Atom is one vertex of a parsed molecular graph.
type Atom struct {
	Symbol    string // element symbol, always title-case ("C", "Cl", "N")
	Aromatic  bool
	Charge    int
	Isotope   int // 0 means natural abundance
	HCount    int // explicit hydrogen count (bracket atoms) or -1 if implicit
	RingBonds []int
}

// Mass returns the atom's atomic mass, including any isotope override.
func (a Atom) Mass() float64 {
	if a.Isotope > 0 {
		return float64(a.Isotope)
	}
	if e, ok := lookupElement(a.Symbol); ok {
		return e.mass
	}
	return 0
}

// AtomicNumber returns the element's atomic number, or 0 if unknown.
func (a Atom) AtomicNumber() int {
	if e, ok := lookupElement(a.Symbol); ok {
		return e.number
	}
	return 0
}

func isOrganicSubsetSymbol(s string) bool {
	switch s {
	case "B", "C", "N", "O", "P", "S", "F", "Cl", "Br", "I":
		return true
	default:
		return false
	}
}
