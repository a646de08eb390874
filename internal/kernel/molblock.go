package kernel

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMolBlock serializes mol to a minimal V2000 connection-table block: a
// three-line header (blank title, "  kernel" program line, blank comment),
// a counts line, one atom line per atom (position
// fields zeroed since this kernel carries no coordinates), one bond line
// per bond, and the "M  END" terminator.
func ToMolBlock(mol *Mol) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  kernel\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(mol.Atoms), len(mol.Bonds))
	for _, a := range mol.Atoms {
		symbol := a.Symbol
		fmt.Fprintf(&b, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", 0.0, 0.0, 0.0, symbol)
	}
	for _, bond := range mol.Bonds {
		fmt.Fprintf(&b, "%3d%3d%3d  0\n", bond.Begin+1, bond.End+1, molBlockBondCode(bond.Order))
	}
	b.WriteString("M  END\n")
	return b.String()
}

func molBlockBondCode(order BondOrder) int {
	switch order {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondAromatic:
		return 4
	default:
		return 1
	}
}

// FromMolBlock parses a minimal V2000 connection table back into a Mol,
// reading each atom's symbol and each bond's endpoints and order. Atom
// coordinates and all property lines (M  CHG, M  ISO, ...) are ignored, so
// charges and isotopes are not restored: every atom comes back uncharged,
// with no isotope and an implicit hydrogen count.
func FromMolBlock(block string) (*Mol, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("kernel: mol block too short")
	}
	counts := lines[3]
	if len(counts) < 6 {
		return nil, fmt.Errorf("kernel: malformed counts line %q", counts)
	}
	numAtoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, fmt.Errorf("kernel: malformed atom count: %w", err)
	}
	numBonds, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil {
		return nil, fmt.Errorf("kernel: malformed bond count: %w", err)
	}

	atomStart := 4
	if len(lines) < atomStart+numAtoms+numBonds {
		return nil, fmt.Errorf("kernel: mol block truncated: expected %d atom lines and %d bond lines", numAtoms, numBonds)
	}

	atoms := make([]Atom, numAtoms)
	for i := 0; i < numAtoms; i++ {
		line := lines[atomStart+i]
		if len(line) < 34 {
			return nil, fmt.Errorf("kernel: malformed atom line %q", line)
		}
		symbol := strings.TrimSpace(line[31:34])
		atoms[i] = Atom{Symbol: symbol, HCount: -1}
	}

	bondStart := atomStart + numAtoms
	bonds := make([]Bond, 0, numBonds)
	for i := 0; i < numBonds; i++ {
		line := lines[bondStart+i]
		if len(line) < 9 {
			return nil, fmt.Errorf("kernel: malformed bond line %q", line)
		}
		begin, err := strconv.Atoi(strings.TrimSpace(line[0:3]))
		if err != nil {
			return nil, fmt.Errorf("kernel: malformed bond begin index: %w", err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if err != nil {
			return nil, fmt.Errorf("kernel: malformed bond end index: %w", err)
		}
		code, err := strconv.Atoi(strings.TrimSpace(line[6:9]))
		if err != nil {
			return nil, fmt.Errorf("kernel: malformed bond order: %w", err)
		}
		order, aromatic := orderFromMolBlockCode(code)
		bonds = append(bonds, Bond{Begin: begin - 1, End: end - 1, Order: order, Aromatic: aromatic})
	}

	return NewMol(atoms, bonds), nil
}

func orderFromMolBlockCode(code int) (BondOrder, bool) {
	switch code {
	case 2:
		return BondDouble, false
	case 3:
		return BondTriple, false
	case 4:
		return BondAromatic, true
	default:
		return BondSingle, false
	}
}
