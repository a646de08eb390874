package kernel

import "math"

// Descriptors holds the subset of whole-molecule numeric properties this
// kernel computes deterministically from the parsed graph alone, without
// 3D embedding or empirical correction tables.
type Descriptors struct {
	MolecularWeight float64
	HeavyAtomCount  int
	AtomCount       int
	BondCount       int
	RingCount       int
	RotatableBonds  int
	HBondDonors     int
	HBondAcceptors  int
	FormalCharge    int
	AromaticRings   int
	FractionCsp3    float64
}

// ComputeDescriptors derives Descriptors from mol. Ring count is the cycle
// rank of the molecular graph (bonds - atoms + components), which matches
// SSSR ring count for the overwhelming majority of organic structures this
// kernel's organic SMILES subset can express.
func ComputeDescriptors(mol *Mol) Descriptors {
	d := Descriptors{
		AtomCount: len(mol.Atoms),
		BondCount: len(mol.Bonds),
	}
	components := len(mol.ConnectedComponents())
	d.RingCount = len(mol.Bonds) - len(mol.Atoms) + components
	if d.RingCount < 0 {
		d.RingCount = 0
	}

	sp3Carbons := 0
	carbons := 0
	for i, a := range mol.Atoms {
		d.MolecularWeight += a.Mass()
		d.MolecularWeight += float64(implicitHCount(mol, i, a)) * 1.008
		if a.AtomicNumber() > 1 {
			d.HeavyAtomCount++
		}
		d.FormalCharge += a.Charge
		if isHBondAcceptorAtom(a) {
			d.HBondAcceptors++
		}
		if isHBondDonorAtom(mol, i, a) {
			d.HBondDonors++
		}
		if a.Symbol == "C" {
			carbons++
			if !a.Aromatic && mol.Degree(i)+implicitHCount(mol, i, a) == 4 && allSingleBonds(mol, i) {
				sp3Carbons++
			}
		}
	}
	if carbons > 0 {
		d.FractionCsp3 = float64(sp3Carbons) / float64(carbons)
	}

	d.AromaticRings = countAromaticRings(mol)
	d.RotatableBonds = countRotatableBonds(mol)
	return d
}

func implicitHCount(mol *Mol, atomIdx int, a Atom) int {
	if a.HCount >= 0 {
		return a.HCount
	}
	e, ok := lookupElement(a.Symbol)
	if !ok {
		return 0
	}
	used := 0
	for _, bi := range mol.NeighborBonds(atomIdx) {
		b := mol.Bonds[bi]
		switch b.Order {
		case BondDouble:
			used += 2
		case BondTriple:
			used += 3
		default:
			used++
		}
	}
	h := e.valence - used
	if a.Charge < 0 {
		h += a.Charge
	} else if a.Charge > 0 {
		h -= a.Charge
	}
	if h < 0 {
		return 0
	}
	return h
}

func allSingleBonds(mol *Mol, atomIdx int) bool {
	for _, bi := range mol.NeighborBonds(atomIdx) {
		if mol.Bonds[bi].Order != BondSingle {
			return false
		}
	}
	return true
}

func isHBondAcceptorAtom(a Atom) bool {
	switch a.Symbol {
	case "O", "N":
		return a.Charge <= 0
	default:
		return false
	}
}

func isHBondDonorAtom(mol *Mol, atomIdx int, a Atom) bool {
	if a.Symbol != "O" && a.Symbol != "N" {
		return false
	}
	return implicitHCount(mol, atomIdx, a) > 0
}

func countRotatableBonds(mol *Mol) int {
	count := 0
	for _, b := range mol.Bonds {
		if b.Order != BondSingle || b.Aromatic {
			continue
		}
		if mol.Degree(b.Begin) < 2 || mol.Degree(b.End) < 2 {
			continue
		}
		if isRingBond(mol, b) {
			continue
		}
		count++
	}
	return count
}

// isRingBond reports whether bond lies on a cycle: removing it still leaves
// an alternate path between its endpoints.
func isRingBond(mol *Mol, bond Bond) bool {
	return hasAlternatePath(mol, bond)
}

func hasAlternatePath(mol *Mol, bond Bond) bool {
	visited := make([]bool, len(mol.Atoms))
	visited[bond.Begin] = true
	stack := []int{bond.Begin}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, bi := range mol.NeighborBonds(cur) {
			if bi == indexOfBond(mol, bond) {
				continue
			}
			b := mol.Bonds[bi]
			nb := b.otherEnd(cur)
			if nb == bond.End {
				return true
			}
			if !visited[nb] {
				visited[nb] = true
				stack = append(stack, nb)
			}
		}
	}
	return false
}

func indexOfBond(mol *Mol, bond Bond) int {
	for i, b := range mol.Bonds {
		if b == bond {
			return i
		}
	}
	return -1
}

func countAromaticRings(mol *Mol) int {
	aromaticAtoms := make(map[int]bool)
	for i, a := range mol.Atoms {
		if a.Aromatic {
			aromaticAtoms[i] = true
		}
	}
	if len(aromaticAtoms) == 0 {
		return 0
	}
	visited := make(map[int]bool)
	rings := 0
	for atom := range aromaticAtoms {
		if visited[atom] {
			continue
		}
		comp := []int{}
		stack := []int{atom}
		visited[atom] = true
		bondsInComp := 0
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, bi := range mol.NeighborBonds(cur) {
				b := mol.Bonds[bi]
				nb := b.otherEnd(cur)
				if !aromaticAtoms[nb] {
					continue
				}
				bondsInComp++
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		bondsInComp /= 2
		cycleRank := bondsInComp - len(comp) + 1
		if cycleRank < 1 {
			cycleRank = 1
		}
		rings += cycleRank
	}
	return rings
}

// LogP approximates octanol-water partition via a crude Crippen-style
// per-atom contribution table; it is deliberately coarse and intended only
// to give the similarity/basic-search ranking path a monotonic numeric
// descriptor, not a publication-grade logP.
func LogP(mol *Mol) float64 {
	total := 0.0
	for i, a := range mol.Atoms {
		switch a.Symbol {
		case "C":
			if a.Aromatic {
				total += 0.29
			} else {
				total += 0.20
			}
		case "N":
			total -= 0.30
		case "O":
			total -= 0.35
		case "S":
			total += 0.20
		case "F":
			total += 0.10
		case "Cl", "Br", "I":
			total += 0.55
		}
		total += float64(implicitHCount(mol, i, a)) * 0.05
	}
	return math.Round(total*1000) / 1000
}
