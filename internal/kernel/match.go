package kernel

// SubstructMatch reports whether query occurs as an embedded subgraph of
// target: every query atom maps to a distinct target atom of compatible
// element/aromaticity, and every query bond maps to a target bond of
// compatible order between the mapped endpoints. Target atoms and bonds not
// touched by the mapping are unconstrained, so this is subgraph (not
// induced-subgraph) isomorphism, matching the conventional chemistry
// meaning of "contains this substructure".
func SubstructMatch(query, target *Mol) bool {
	_, ok := FindSubstructMatch(query, target)
	return ok
}

// FindSubstructMatch returns one mapping from query atom index to target
// atom index if query embeds in target, using backtracking search over the
// query atoms in breadth-first order from atom 0 (VF2-style state-space exploration without the full
// VF2 feasibility pruning tables, which this kernel's modest molecule sizes
// do not require).
func FindSubstructMatch(query, target *Mol) ([]int, bool) {
	if len(query.Atoms) == 0 {
		return nil, true
	}
	if len(query.Atoms) > len(target.Atoms) {
		return nil, false
	}

	order := queryAtomOrder(query)
	mapping := make([]int, len(query.Atoms))
	for i := range mapping {
		mapping[i] = -1
	}
	used := make([]bool, len(target.Atoms))

	if backtrack(query, target, order, 0, mapping, used) {
		return mapping, true
	}
	return nil, false
}

// queryAtomOrder visits atom 0 first, then always extends the mapped
// frontier so each subsequent atom shares a bond with an already-placed
// atom whenever the query graph is connected, which keeps the search space
// small.
func queryAtomOrder(query *Mol) []int {
	n := len(query.Atoms)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			order = append(order, cur)
			for _, nb := range query.NeighborAtoms(cur) {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return order
}

func backtrack(query, target *Mol, order []int, pos int, mapping []int, used []bool) bool {
	if pos == len(order) {
		return true
	}
	qAtom := order[pos]

	for tAtom := range target.Atoms {
		if used[tAtom] {
			continue
		}
		if !atomCompatible(query.Atoms[qAtom], target.Atoms[tAtom]) {
			continue
		}
		if target.Degree(tAtom) < query.Degree(qAtom) {
			continue
		}
		if !edgesConsistent(query, target, order, pos, qAtom, tAtom, mapping) {
			continue
		}

		mapping[qAtom] = tAtom
		used[tAtom] = true
		if backtrack(query, target, order, pos+1, mapping, used) {
			return true
		}
		mapping[qAtom] = -1
		used[tAtom] = false
	}
	return false
}

func edgesConsistent(query, target *Mol, order []int, pos, qAtom, tAtom int, mapping []int) bool {
	for i := 0; i < pos; i++ {
		other := order[i]
		qBond, hasQBond := findBond(query, qAtom, other)
		if !hasQBond {
			continue
		}
		tOther := mapping[other]
		tBond, hasTBond := findBond(target, tAtom, tOther)
		if !hasTBond {
			return false
		}
		if !bondCompatible(qBond, tBond) {
			return false
		}
	}
	return true
}

func findBond(mol *Mol, a, b int) (Bond, bool) {
	for _, bi := range mol.NeighborBonds(a) {
		bond := mol.Bonds[bi]
		if bond.otherEnd(a) == b {
			return bond, true
		}
	}
	return Bond{}, false
}

func atomCompatible(query, target Atom) bool {
	if query.Symbol != "*" && query.Symbol != target.Symbol {
		return false
	}
	if query.Aromatic != target.Aromatic {
		return false
	}
	return true
}

func bondCompatible(query, target Bond) bool {
	if query.Order == BondAromatic || target.Order == BondAromatic {
		return query.Aromatic == target.Aromatic || query.Order == target.Order
	}
	return query.Order == target.Order
}

// ExactMatch reports whether query and target are isomorphic as whole
// graphs: every atom and bond of target participates in the mapping, which
// is the identity-search notion of "same structure" rather than
// substructure containment.
func ExactMatch(query, target *Mol) bool {
	if len(query.Atoms) != len(target.Atoms) || len(query.Bonds) != len(target.Bonds) {
		return false
	}
	mapping, ok := FindSubstructMatch(query, target)
	if !ok {
		return false
	}
	for _, t := range mapping {
		if t < 0 {
			return false
		}
	}
	return true
}
