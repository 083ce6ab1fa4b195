package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrippenLogP_ReferenceValues(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		want   float64
	}{
		{"methane", "C", 0.6361},
		{"ethanol", "CCO", -0.0014},
		{"acetic acid", "CC(=O)O", 0.0909},
		{"benzene", "c1ccccc1", 1.6866},
		{"kekule benzene", "C1=CC=CC=C1", 1.6866},
		{"phenol", "Oc1ccccc1", 1.3922},
		{"acetonitrile", "CC#N", 0.52988},
		{"benzonitrile", "N#Cc1ccccc1", 1.55828},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustParse(t, tt.smiles)
			assert.InDelta(t, tt.want, CrippenLogP(m), 1e-4)
		})
	}
}

func TestCrippenType(t *testing.T) {
	tests := []struct {
		smiles string
		want   []string
	}{
		{"CCO", []string{"C1", "C3", "O2"}},
		{"CC(=O)O", []string{"C1", "C5", "O9", "O2"}},
		{"CC(=O)[O-]", []string{"C1", "C5", "O9", "O12"}},
		{"CN(C)C", []string{"C3", "N7", "C3", "C3"}},
		{"Nc1ccccc1", []string{"N3", "C22", "C18", "C18", "C18", "C18", "C18"}},
		{"C=C", []string{"C6", "C6"}},
		{"CC#N", []string{"C1", "C7", "N9"}},
		{"c1ccncc1", []string{"C18", "C18", "C18", "N11", "C18", "C18"}},
		{"Clc1ccccc1", []string{"Cl", "C15", "C18", "C18", "C18", "C18", "C18"}},
		{"[Na+].[Cl-]", []string{"Me1", "Hal"}},
		{"CS(C)=O", []string{"C3", "S1", "C3", "OS"}},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m := mustParse(t, tt.smiles)
			got := make([]string, len(m.Atoms))
			for i := range m.Atoms {
				got[i] = CrippenType(m, i)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrippenLogP_Ordering(t *testing.T) {
	hexane := CrippenLogP(mustParse(t, "CCCCCC"))
	glycerol := CrippenLogP(mustParse(t, "OCC(O)CO"))
	assert.Greater(t, hexane, glycerol)
}
