package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, smiles string) *Molecule {
	t.Helper()
	m, err := Parse(smiles)
	require.NoError(t, err, smiles)
	return m
}

func ringSizes(ri *RingInfo) []int {
	out := make([]int, len(ri.Rings))
	for i, r := range ri.Rings {
		out[i] = len(r)
	}
	return out
}

func TestRings_SmallestSet(t *testing.T) {
	tests := []struct {
		smiles string
		sizes  []int
	}{
		{"CCCC", []int{}},
		{"C1CCCCC1", []int{6}},
		{"c1ccc2ccccc2c1", []int{6, 6}},
		{"C1CC2CCC1C2", []int{5, 5}},
		{"C1CC1C1CC1", []int{3, 3}},
		{"C12C3C4C1C5C2C3C45", []int{4, 4, 4, 4, 4}},
		{"C1CCCCCCCCC1", []int{10}},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			ri := mustParse(t, tt.smiles).Rings()
			assert.Equal(t, tt.sizes, ringSizes(ri))
		})
	}
}

func TestRings_CyclicOrder(t *testing.T) {
	m := mustParse(t, "C1CCCCC1")
	ring := m.Rings().Rings[0]
	for i := range ring {
		next := ring[(i+1)%len(ring)]
		assert.GreaterOrEqual(t, m.BondBetween(ring[i], next), 0, "atoms %d and %d not bonded", ring[i], next)
	}
}

func TestRings_Membership(t *testing.T) {
	m := mustParse(t, "C1CCCC1CC")
	ri := m.Rings()
	assert.True(t, ri.AtomInRing(0))
	assert.False(t, ri.AtomInRing(6))
	assert.True(t, ri.AtomInRingOfSize(2, 5))
	assert.False(t, ri.AtomInRingOfSize(2, 6))
	assert.False(t, ri.BondInRing(m.BondBetween(4, 5)))
	assert.True(t, ri.BondInRing(m.BondBetween(0, 1)))
}

func TestRings_SpiroBridgeheadMacrocycle(t *testing.T) {
	spiro := mustParse(t, "C1CCC2(C1)CCC2")
	assert.Equal(t, []int{3}, spiro.Rings().SpiroAtoms())

	norbornane := mustParse(t, "C1CC2CCC1C2")
	assert.Equal(t, []int{2, 5}, norbornane.Rings().BridgeheadAtoms(norbornane))
	assert.Empty(t, norbornane.Rings().SpiroAtoms())

	decalin := mustParse(t, "C1CCC2CCCCC2C1")
	assert.Empty(t, decalin.Rings().BridgeheadAtoms(decalin))
	assert.Equal(t, 2, decalin.Rings().AtomRingCount(3))

	macro := mustParse(t, "C1CCCCCCCCC1")
	assert.Equal(t, 1, macro.Rings().MacrocycleCount())
	assert.True(t, macro.Rings().AtomInMacrocycle(0))
}

func aromaticAtoms(m *Molecule) int {
	n := 0
	for _, a := range m.Atoms {
		if a.Aromatic {
			n++
		}
	}
	return n
}

func TestAromaticity(t *testing.T) {
	tests := []struct {
		name     string
		smiles   string
		aromatic int
	}{
		{"benzene", "c1ccccc1", 6},
		{"kekule benzene", "C1=CC=CC=C1", 6},
		{"pyridine", "c1ccncc1", 6},
		{"pyrrole", "c1cc[nH]c1", 5},
		{"furan", "c1ccoc1", 5},
		{"thiophene", "c1ccsc1", 5},
		{"naphthalene", "c1ccc2ccccc2c1", 10},
		{"pyridone", "O=c1cc[nH]cc1", 6},
		{"pyridine N-oxide", "[O-][n+]1ccccc1", 6},
		{"indane", "c1ccc2CCCc2c1", 6},
		{"cyclohexane", "C1CCCCC1", 0},
		{"cyclohexene", "C1=CCCCC1", 0},
		{"cyclopentadiene", "C1=CCC=C1", 0},
		{"cyclooctatetraene", "C1=CC=CC=CC=C1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParse(t, tt.smiles)
			assert.Equal(t, tt.aromatic, aromaticAtoms(m))
		})
	}
}

func TestAromaticity_BondFlagsKeepKekuleOrder(t *testing.T) {
	m := mustParse(t, "c1ccccc1")
	for _, b := range m.Bonds {
		assert.True(t, b.Aromatic)
		assert.Contains(t, []BondOrder{BondSingle, BondDouble}, b.Order)
	}
}
