package kernel

// BondOrder enumerates the bond types the organic SMILES subset supports.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondAromatic
)

// Bond is one edge of a parsed molecular graph. Begin/End are atom indices
// into the owning Mol's Atoms slice.
type Bond struct {
	Begin, End int
	Order      BondOrder
	Aromatic   bool
}

// otherEnd returns the bond endpoint that is not atomIdx.
func (b Bond) otherEnd(atomIdx int) int {
	if b.Begin == atomIdx {
		return b.End
	}
	return b.Begin
}
