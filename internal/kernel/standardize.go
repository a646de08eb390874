package kernel

// FragmentParent returns the largest connected fragment of mol by atom
// count, breaking ties in favor of the fragment whose heaviest atom has the
// highest atomic number (so a tie between a carbon fragment and a fragment
// containing only hydrogens picks the carbon fragment). Salts and counter-ions are expected to be the smaller
// fragments after a '.' disconnection in the source SMILES.
func FragmentParent(mol *Mol) *Mol {
	components := mol.ConnectedComponents()
	if len(components) <= 1 {
		return mol.Clone()
	}
	best := components[0]
	for _, comp := range components[1:] {
		if len(comp) > len(best) {
			best = comp
			continue
		}
		if len(comp) == len(best) && heaviestAtomicNumber(mol, comp) > heaviestAtomicNumber(mol, best) {
			best = comp
		}
	}
	return mol.Subgraph(best)
}

func heaviestAtomicNumber(mol *Mol, atomIdxs []int) int {
	max := 0
	for _, idx := range atomIdxs {
		if n := mol.Atoms[idx].AtomicNumber(); n > max {
			max = n
		}
	}
	return max
}

// Uncharge neutralizes atoms whose charge can be resolved by adding or
// removing hydrogens: a negatively charged heteroatom (O-, S-, N-) gains
// hydrogens to reach neutral valence; a positively charged N+ or O+ that
// carries an explicit hydrogen count loses one hydrogen. Carbocations,
// carbanions and cations with no hydrogen to remove are left untouched.
// Each atom is handled on its own: an opposite charge elsewhere in the same
// fragment does not keep an atom from being neutralized.
func Uncharge(mol *Mol) *Mol {
	out := mol.Clone()
	for i := range out.Atoms {
		a := &out.Atoms[i]
		if a.Charge == 0 {
			continue
		}
		switch {
		case a.Charge < 0 && isUnchargeableAnion(a.Symbol):
			h := a.HCount
			if h < 0 {
				h = 0
			}
			a.HCount = h + (-a.Charge)
			a.Charge = 0
		case a.Charge > 0 && isUnchargeableCation(a.Symbol) && a.HCount > 0:
			a.HCount--
			a.Charge = 0
		}
	}
	return out
}

func isUnchargeableAnion(symbol string) bool {
	switch symbol {
	case "O", "S", "N":
		return true
	default:
		return false
	}
}

func isUnchargeableCation(symbol string) bool {
	switch symbol {
	case "N", "O":
		return true
	default:
		return false
	}
}

// EnumerateTautomers returns mol plus a bounded set of alternate tautomers
// reachable by single 1,3-proton shifts across an O-C=C / N-C=C motif (the
// keto-enol and imine-enamine pattern). Only an O or N donor with an
// explicit hydrogen count (a bracket atom such as [OH] or [NH]) is
// considered; donors whose hydrogens are implicit, as in unbracketed OC=C,
// produce no alternate tautomer. It is not a complete tautomer enumerator;
// it is a deterministic approximation limited to one shift per result.
func EnumerateTautomers(mol *Mol, maxResults int) []*Mol {
	results := []*Mol{mol.Clone()}
	if maxResults <= 1 {
		return results
	}

	for donor := range mol.Atoms {
		if len(results) >= maxResults {
			break
		}
		if !isMobileHDonor(mol, donor) {
			continue
		}
		for _, bi := range mol.NeighborBonds(donor) {
			b := mol.Bonds[bi]
			if b.Order != BondSingle {
				continue
			}
			carbon := b.otherEnd(donor)
			if mol.Atoms[carbon].Symbol != "C" {
				continue
			}
			acceptor, dbIdx, ok := findAdjacentDoubleBondPartner(mol, carbon, donor)
			if !ok {
				continue
			}
			shifted := shiftTautomer(mol, donor, carbon, acceptor, bi, dbIdx)
			if shifted != nil {
				results = append(results, shifted)
			}
		}
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func isMobileHDonor(mol *Mol, atomIdx int) bool {
	a := mol.Atoms[atomIdx]
	if a.Symbol != "O" && a.Symbol != "N" {
		return false
	}
	return a.HCount > 0
}

func findAdjacentDoubleBondPartner(mol *Mol, carbon, excludeAtom int) (int, int, bool) {
	for _, bi := range mol.NeighborBonds(carbon) {
		b := mol.Bonds[bi]
		if b.Order != BondDouble {
			continue
		}
		other := b.otherEnd(carbon)
		if other == excludeAtom {
			continue
		}
		return other, bi, true
	}
	return 0, 0, false
}

func shiftTautomer(mol *Mol, donor, carbon, acceptor, singleBondIdx, doubleBondIdx int) *Mol {
	out := mol.Clone()
	if out.Atoms[donor].HCount <= 0 {
		return nil
	}
	out.Atoms[donor].HCount--
	out.Atoms[acceptor].HCount++

	for i := range out.Bonds {
		switch i {
		case singleBondIdx:
			out.Bonds[i].Order = BondDouble
		case doubleBondIdx:
			out.Bonds[i].Order = BondSingle
		}
	}
	_ = carbon
	out.buildAdjacency()
	return out
}
