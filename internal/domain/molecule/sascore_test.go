package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSAScore_Range(t *testing.T) {
	for _, smiles := range []string{
		"C", "CCO", "c1ccccc1", "CC(=O)Oc1ccccc1C(=O)O",
		"CC12CCC3C(CCC4=CC(=O)CCC34C)C1CCC2O",
		"[Na+].[Cl-]", "C12C3C4C1C5C2C3C45", "*C",
	} {
		t.Run(smiles, func(t *testing.T) {
			s := SAScore(mustParse(t, smiles))
			assert.GreaterOrEqual(t, s, 1.0)
			assert.LessOrEqual(t, s, 10.0)
		})
	}
}

func TestSAScore_ComplexityRaisesScore(t *testing.T) {
	benzene := SAScore(mustParse(t, "c1ccccc1"))
	steroid := SAScore(mustParse(t, "CC12CCC3C(CCC4=CC(=O)CCC34C)C1CCC2O"))
	cubane := SAScore(mustParse(t, "C12C3C4C1C5C2C3C45"))
	assert.Greater(t, steroid, benzene)
	assert.Greater(t, cubane, benzene)
}

// Reference values are RDKit's sascorer.  Small molecules score higher here.
func TestSAScore_StaysNearReference(t *testing.T) {
	for _, tc := range []struct {
		smiles string
		want   float64
	}{
		{"CCO", 1.98},
		{"c1ccccc1", 1.0},
	} {
		t.Run(tc.smiles, func(t *testing.T) {
			got := SAScore(mustParse(t, tc.smiles))
			assert.GreaterOrEqual(t, got, tc.want)
			assert.InDelta(t, tc.want, got, 1.0)
		})
	}
}

func TestSAScore_Deterministic(t *testing.T) {
	m := mustParse(t, "CC(C)Cc1ccc(cc1)C(C)C(=O)O")
	assert.Equal(t, SAScore(m), SAScore(mustParse(t, "CC(C)Cc1ccc(cc1)C(C)C(=O)O")))
}

func TestScaleSAScore(t *testing.T) {
	assert.Equal(t, 1.0, scaleSAScore(10))
	assert.Equal(t, 10.0, scaleSAScore(-100))
	mid := scaleSAScore(-1)
	assert.Greater(t, mid, 1.0)
	assert.Less(t, mid, 10.0)
}

func TestCircularEnvironments(t *testing.T) {
	envs := circularEnvironments(mustParse(t, "CCO"))
	// three atoms at radius 0 and 1, the two terminal atoms reach radius 2
	assert.Len(t, envs, 8)

	single := circularEnvironments(mustParse(t, "C"))
	assert.Len(t, single, 1)
}
