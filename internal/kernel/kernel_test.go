package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheminee/search-engine/internal/kernel"
)

func TestParseSMILES_Ethanol(t *testing.T) {
	mol, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	assert.Len(t, mol.Atoms, 3)
	assert.Len(t, mol.Bonds, 2)
}

func TestParseSMILES_Benzene(t *testing.T) {
	mol, err := kernel.ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	assert.Len(t, mol.Atoms, 6)
	assert.Len(t, mol.Bonds, 6)
	for _, b := range mol.Bonds {
		assert.True(t, b.Aromatic)
	}
}

func TestParseSMILES_Branch(t *testing.T) {
	mol, err := kernel.ParseSMILES("CC(C)C")
	require.NoError(t, err)
	assert.Len(t, mol.Atoms, 4)
	assert.Equal(t, 3, mol.Degree(1))
}

func TestParseSMILES_BracketChargeAndIsotope(t *testing.T) {
	mol, err := kernel.ParseSMILES("[13CH4]")
	require.NoError(t, err)
	require.Len(t, mol.Atoms, 1)
	assert.Equal(t, "C", mol.Atoms[0].Symbol)
	assert.Equal(t, 13, mol.Atoms[0].Isotope)
	assert.Equal(t, 4, mol.Atoms[0].HCount)
}

func TestParseSMILES_Anion(t *testing.T) {
	mol, err := kernel.ParseSMILES("[O-]")
	require.NoError(t, err)
	assert.Equal(t, -1, mol.Atoms[0].Charge)
}

func TestParseSMILES_Disconnected(t *testing.T) {
	mol, err := kernel.ParseSMILES("[Na+].[Cl-]")
	require.NoError(t, err)
	assert.Len(t, mol.Atoms, 2)
	assert.Len(t, mol.Bonds, 0)
	assert.Len(t, mol.ConnectedComponents(), 2)
}

func TestParseSMILES_UnmatchedParen(t *testing.T) {
	_, err := kernel.ParseSMILES("CC(C")
	assert.Error(t, err)
}

func TestParseSMILES_UnclosedBracket(t *testing.T) {
	_, err := kernel.ParseSMILES("[CH4")
	assert.Error(t, err)
}

func TestParseSMILES_Empty(t *testing.T) {
	_, err := kernel.ParseSMILES("")
	assert.Error(t, err)
}

func TestCanonicalSMILES_RoundTripsToSameGraph(t *testing.T) {
	inputs := []string{"CCO", "OCC", "CC(C)C", "C(C)(C)C", "c1ccccc1"}
	for _, in := range inputs {
		mol, err := kernel.ParseSMILES(in)
		require.NoError(t, err)
		canon := kernel.CanonicalSMILES(mol)
		reparsed, err := kernel.ParseSMILES(canon)
		require.NoErrorf(t, err, "canonical form %q of %q failed to reparse", canon, in)
		assert.Equal(t, len(mol.Atoms), len(reparsed.Atoms))
		assert.Equal(t, len(mol.Bonds), len(reparsed.Bonds))
	}
}

func TestCanonicalSMILES_SameGraphSameCanonicalForm(t *testing.T) {
	a, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	b, err := kernel.ParseSMILES("OCC")
	require.NoError(t, err)
	assert.Equal(t, kernel.CanonicalSMILES(a), kernel.CanonicalSMILES(b))
}

func TestFragmentParent_PicksLargestFragment(t *testing.T) {
	mol, err := kernel.ParseSMILES("CCCCCCCC.[Na+]")
	require.NoError(t, err)
	parent := kernel.FragmentParent(mol)
	assert.Len(t, parent.Atoms, 8)
}

func TestFragmentParent_SingleFragmentUnchanged(t *testing.T) {
	mol, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	parent := kernel.FragmentParent(mol)
	assert.Len(t, parent.Atoms, 3)
}

func TestUncharge_NeutralizesOxyanion(t *testing.T) {
	mol, err := kernel.ParseSMILES("[O-]")
	require.NoError(t, err)
	neutral := kernel.Uncharge(mol)
	assert.Equal(t, 0, neutral.Atoms[0].Charge)
	assert.Equal(t, 1, neutral.Atoms[0].HCount)
}

func TestEnumerateTautomers_ReturnsAtLeastInput(t *testing.T) {
	mol, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	variants := kernel.EnumerateTautomers(mol, 4)
	assert.GreaterOrEqual(t, len(variants), 1)
}

func TestPathFingerprint_MonotonicOverInducedSubgraph(t *testing.T) {
	super, err := kernel.ParseSMILES("CCCCCC")
	require.NoError(t, err)
	sub := super.Subgraph([]int{0, 1, 2})

	superFP := kernel.PathFingerprint(super, kernel.DefaultPathDepth)
	subFP := kernel.PathFingerprint(sub, kernel.DefaultPathDepth)

	for i := 0; i < kernel.FingerprintWidth; i++ {
		if subFP.GetBit(i) {
			assert.Truef(t, superFP.GetBit(i), "bit %d set in subgraph fingerprint but not in supergraph fingerprint", i)
		}
	}
}

func TestPathFingerprint_DifferentMoleculesDifferentBits(t *testing.T) {
	a, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	b, err := kernel.ParseSMILES("c1ccccc1")
	require.NoError(t, err)

	fpA := kernel.PathFingerprint(a, kernel.DefaultPathDepth)
	fpB := kernel.PathFingerprint(b, kernel.DefaultPathDepth)
	assert.NotEqual(t, fpA.Bits, fpB.Bits)
}

func TestMorganFingerprint_Deterministic(t *testing.T) {
	mol, err := kernel.ParseSMILES("CC(=O)O")
	require.NoError(t, err)
	fp1 := kernel.MorganFingerprint(mol, kernel.DefaultMorganRadius)
	fp2 := kernel.MorganFingerprint(mol, kernel.DefaultMorganRadius)
	assert.Equal(t, fp1.Bits, fp2.Bits)
	assert.Greater(t, fp1.PopCount(), 0)
}

func TestComputeDescriptors_Ethanol(t *testing.T) {
	mol, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	d := kernel.ComputeDescriptors(mol)
	assert.Equal(t, 3, d.AtomCount)
	assert.Equal(t, 2, d.BondCount)
	assert.Equal(t, 0, d.RingCount)
	assert.Equal(t, 1, d.HBondDonors)
	assert.Equal(t, 1, d.HBondAcceptors)
}

func TestComputeDescriptors_Benzene(t *testing.T) {
	mol, err := kernel.ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	d := kernel.ComputeDescriptors(mol)
	assert.Equal(t, 1, d.RingCount)
	assert.Equal(t, 1, d.AromaticRings)
}

func TestSubstructMatch_EthaneInHexane(t *testing.T) {
	query, err := kernel.ParseSMILES("CC")
	require.NoError(t, err)
	target, err := kernel.ParseSMILES("CCCCCC")
	require.NoError(t, err)
	assert.True(t, kernel.SubstructMatch(query, target))
}

func TestSubstructMatch_BenzeneNotInHexane(t *testing.T) {
	query, err := kernel.ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	target, err := kernel.ParseSMILES("CCCCCC")
	require.NoError(t, err)
	assert.False(t, kernel.SubstructMatch(query, target))
}

func TestExactMatch_SameStructureDifferentWriteOrder(t *testing.T) {
	a, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	b, err := kernel.ParseSMILES("OCC")
	require.NoError(t, err)
	assert.True(t, kernel.ExactMatch(a, b))
}

func TestExactMatch_DifferentStructures(t *testing.T) {
	a, err := kernel.ParseSMILES("CCO")
	require.NoError(t, err)
	b, err := kernel.ParseSMILES("CCC")
	require.NoError(t, err)
	assert.False(t, kernel.ExactMatch(a, b))
}

func TestMolBlock_RoundTrip(t *testing.T) {
	mol, err := kernel.ParseSMILES("CC(=O)O")
	require.NoError(t, err)
	block := kernel.ToMolBlock(mol)
	reparsed, err := kernel.FromMolBlock(block)
	require.NoError(t, err)
	assert.Equal(t, len(mol.Atoms), len(reparsed.Atoms))
	assert.Equal(t, len(mol.Bonds), len(reparsed.Bonds))
}

func TestEngine_StandardizeAndFingerprint(t *testing.T) {
	e := kernel.NewEngine()
	mol, err := e.Parse("CC(=O)[O-].[Na+]")
	require.NoError(t, err)
	std := e.Standardize(mol)
	assert.Len(t, std.Atoms, 4)

	fp := e.Fingerprint(std)
	assert.Greater(t, fp.PopCount(), 0)

	descriptors := e.Descriptors(std)
	assert.Equal(t, 4, descriptors.AtomCount)
}

func TestEngine_ParseRejectsEmptyInput(t *testing.T) {
	e := kernel.NewEngine()
	_, err := e.Parse("")
	assert.Error(t, err)
}
