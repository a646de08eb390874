package kernel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CanonicalSMILES serializes mol to a deterministic SMILES string. Atoms are
// ranked by iterative Morgan-style refinement of (atomic number, charge,
// degree, neighbor multiset) so that two Mol values with the same graph
// structure always produce the same output, regardless of parse order.
func CanonicalSMILES(mol *Mol) string {
	if len(mol.Atoms) == 0 {
		return ""
	}
	ranks := canonicalRanks(mol)

	visited := make([]bool, len(mol.Atoms))
	var out strings.Builder

	components := mol.ConnectedComponents()
	sort.Slice(components, func(i, j int) bool {
		return minRank(components[i], ranks) < minRank(components[j], ranks)
	})

	for ci, comp := range components {
		if ci > 0 {
			out.WriteByte('.')
		}
		start := comp[0]
		for _, a := range comp {
			if ranks[a] < ranks[start] {
				start = a
			}
		}
		ringDigits := assignRingClosures(mol, comp, visited)
		writeDFS(mol, &out, start, -1, visited, ranks, ringDigits)
	}
	return out.String()
}

func minRank(atomIdxs []int, ranks []int) int {
	m := ranks[atomIdxs[0]]
	for _, a := range atomIdxs[1:] {
		if ranks[a] < m {
			m = ranks[a]
		}
	}
	return m
}

// canonicalRanks computes a stable integer rank per atom via iterative
// refinement: start from (atomic number, charge, aromatic, degree), then
// repeatedly fold in the sorted rank multiset of each atom's neighbors until
// the partition stops refining, analogous to Morgan's extended connectivity
// algorithm.
func canonicalRanks(mol *Mol) []int {
	n := len(mol.Atoms)
	ranks := make([]int, n)
	classOf := make([]string, n)
	for i, a := range mol.Atoms {
		classOf[i] = fmt.Sprintf("%d|%d|%t|%d", a.AtomicNumber(), a.Charge, a.Aromatic, mol.Degree(i))
	}
	ranks = rankClasses(classOf)

	for iter := 0; iter < n+1; iter++ {
		nextClass := make([]string, n)
		for i := range mol.Atoms {
			neighbors := mol.NeighborAtoms(i)
			neighborRanks := make([]int, 0, len(neighbors))
			for _, nb := range neighbors {
				neighborRanks = append(neighborRanks, ranks[nb])
			}
			sort.Ints(neighborRanks)
			nextClass[i] = fmt.Sprintf("%d|%v", ranks[i], neighborRanks)
		}
		nextRanks := rankClasses(nextClass)
		if sameRanks(ranks, nextRanks) {
			break
		}
		ranks = nextRanks
	}
	return ranks
}

func rankClasses(classOf []string) []int {
	uniq := make(map[string]bool, len(classOf))
	for _, c := range classOf {
		uniq[c] = true
	}
	sorted := make([]string, 0, len(uniq))
	for c := range uniq {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	rankOf := make(map[string]int, len(sorted))
	for i, c := range sorted {
		rankOf[c] = i
	}
	out := make([]int, len(classOf))
	for i, c := range classOf {
		out[i] = rankOf[c]
	}
	return out
}

func sameRanks(a, b []int) bool {
	da, db := map[int]int{}, map[int]int{}
	for i := range a {
		da[a[i]]++
		db[b[i]]++
	}
	return len(da) == len(db)
}

// assignRingClosures picks ring-bond digit labels for bonds within comp that
// are not tree edges of a DFS spanning from the lowest-ranked atom. Returns,
// per atom, the list of (digit, bondOrder) pairs to emit at that atom.
func assignRingClosures(mol *Mol, comp []int, globalVisited []bool) map[int][]ringDigit {
	inComp := make(map[int]bool, len(comp))
	for _, a := range comp {
		inComp[a] = true
	}
	visited := make(map[int]bool, len(comp))
	digits := make(map[int][]ringDigit)
	nextDigit := 1
	var walk func(atom, parent int)
	walk = func(atom, parent int) {
		visited[atom] = true
		for _, bi := range mol.NeighborBonds(atom) {
			b := mol.Bonds[bi]
			nb := b.otherEnd(atom)
			if !inComp[nb] || nb == parent {
				continue
			}
			if visited[nb] {
				d := nextDigit
				nextDigit++
				digits[atom] = append(digits[atom], ringDigit{digit: d, order: b.Order})
				digits[nb] = append(digits[nb], ringDigit{digit: d, order: b.Order})
				continue
			}
		}
		for _, bi := range mol.NeighborBonds(atom) {
			b := mol.Bonds[bi]
			nb := b.otherEnd(atom)
			if inComp[nb] && !visited[nb] {
				walk(nb, atom)
			}
		}
	}
	start := comp[0]
	walk(start, -1)
	return digits
}

type ringDigit struct {
	digit int
	order BondOrder
}

func writeDFS(mol *Mol, out *strings.Builder, atom, parent int, visited []bool, ranks []int, ringDigits map[int][]ringDigit) {
	visited[atom] = true
	out.WriteString(atomToken(mol.Atoms[atom]))

	if rds, ok := ringDigits[atom]; ok {
		sorted := append([]ringDigit(nil), rds...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].digit < sorted[j].digit })
		for _, rd := range sorted {
			out.WriteString(bondSymbol(rd.order, false))
			out.WriteString(ringDigitToken(rd.digit))
		}
	}

	var children []int
	for _, bi := range mol.NeighborBonds(atom) {
		b := mol.Bonds[bi]
		nb := b.otherEnd(atom)
		if nb == parent || visited[nb] {
			continue
		}
		children = append(children, nb)
	}
	sort.Slice(children, func(i, j int) bool { return ranks[children[i]] < ranks[children[j]] })

	for i, child := range children {
		if visited[child] {
			continue
		}
		bond := bondBetween(mol, atom, child)
		sym := bondSymbol(bond.Order, bond.Aromatic && mol.Atoms[atom].Aromatic && mol.Atoms[child].Aromatic)
		last := i == len(children)-1
		if !last {
			out.WriteByte('(')
			out.WriteString(sym)
			writeDFS(mol, out, child, atom, visited, ranks, ringDigits)
			out.WriteByte(')')
		} else {
			out.WriteString(sym)
			writeDFS(mol, out, child, atom, visited, ranks, ringDigits)
		}
	}
}

func bondBetween(mol *Mol, a, b int) Bond {
	for _, bi := range mol.NeighborBonds(a) {
		if mol.Bonds[bi].otherEnd(a) == b {
			return mol.Bonds[bi]
		}
	}
	return Bond{Order: BondSingle}
}

func bondSymbol(order BondOrder, impliedAromatic bool) string {
	if impliedAromatic && order == BondAromatic {
		return ""
	}
	switch order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondAromatic:
		return ":"
	default:
		return ""
	}
}

func ringDigitToken(d int) string {
	if d >= 10 {
		return "%" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}

func atomToken(a Atom) string {
	symbol := a.Symbol
	if a.Aromatic {
		symbol = strings.ToLower(symbol)
	}
	plain := a.Charge == 0 && a.Isotope == 0 && (a.HCount <= 0 || !needsExplicitH(a)) && isOrganicSubsetSymbol(a.Symbol)
	if plain {
		return symbol
	}

	var b strings.Builder
	b.WriteByte('[')
	if a.Isotope > 0 {
		b.WriteString(strconv.Itoa(a.Isotope))
	}
	b.WriteString(symbol)
	if a.HCount > 0 {
		b.WriteByte('H')
		if a.HCount > 1 {
			b.WriteString(strconv.Itoa(a.HCount))
		}
	}
	if a.Charge != 0 {
		if a.Charge > 0 {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
		if abs := a.Charge; abs > 1 || abs < -1 {
			b.WriteString(strconv.Itoa(absInt(abs)))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func needsExplicitH(a Atom) bool {
	return a.HCount > 0
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
