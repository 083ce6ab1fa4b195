package molecule

import "fmt"

// maxKekuleSteps bounds the matching search on pathological inputs.
const maxKekuleSteps = 100000

// finalize turns the raw parse graph into a validated molecule.
func finalize(m *Molecule) error {
	foldHydrogens(m)

	rings := m.Rings()
	for i, a := range m.Atoms {
		if a.Aromatic && !rings.AtomInRing(i) {
			return &ParseError{SMILES: m.SMILES, Pos: -1,
				Reason: fmt.Sprintf("non-ring atom %d (%s) marked aromatic", i+1, a.Symbol)}
		}
	}
	if err := kekulize(m); err != nil {
		return err
	}
	if err := assignHydrogens(m); err != nil {
		return err
	}
	perceiveAromaticity(m)
	return nil
}

// foldHydrogens removes plain [H] atoms hanging off a heavy atom and counts
// them on that atom instead.
func foldHydrogens(m *Molecule) {
	remove := make([]bool, len(m.Atoms))
	folded := false
	for i, a := range m.Atoms {
		if a.Number != numH || !a.Bracket || a.Isotope != 0 || a.Charge != 0 ||
			a.HCount != 0 || a.Chirality != "" || m.Degree(i) != 1 {
			continue
		}
		nb := m.Neighbors(i)[0]
		b := m.Bonds[nb.Bond]
		if m.Atoms[nb.Atom].Number == numH || b.Order != BondSingle || b.Aromatic {
			continue
		}
		remove[i] = true
		m.Atoms[nb.Atom].foldedH++
		folded = true
	}
	if !folded {
		return
	}

	newIndex := make([]int, len(m.Atoms))
	atoms := m.Atoms[:0:0]
	for i, a := range m.Atoms {
		if remove[i] {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := m.Bonds[:0:0]
	for _, b := range m.Bonds {
		if remove[b.From] || remove[b.To] {
			continue
		}
		b.From, b.To = newIndex[b.From], newIndex[b.To]
		bonds = append(bonds, b)
	}
	m.Atoms, m.Bonds = atoms, bonds
	m.rings = nil
	m.rebuildAdjacency()
}

// usedValence counts bond orders (aromatic bonds as one) and known hydrogens.
func usedValence(m *Molecule, idx int) int {
	a := m.Atoms[idx]
	used := a.foldedH
	if a.Bracket {
		used += a.HCount
	}
	for _, bi := range m.adj[idx] {
		b := m.Bonds[bi]
		if b.Aromatic {
			used++
		} else {
			used += int(b.Order)
		}
	}
	return used
}

func needsPiBond(m *Molecule, idx int) bool {
	a := m.Atoms[idx]
	allowed := allowedValences(a.Number, a.Charge)
	used := usedValence(m, idx)
	for _, v := range allowed {
		if v >= used {
			return v-used >= 1
		}
	}
	return false
}

type kekulizer struct {
	m     *Molecule
	need  []bool
	cand  [][]int
	match []int
	steps int
}

// kekulize assigns alternating single and double orders to the aromatic bonds
// written in the input.
func kekulize(m *Molecule) error {
	n := len(m.Atoms)
	k := &kekulizer{m: m, need: make([]bool, n), cand: make([][]int, n), match: make([]int, n)}
	for i, a := range m.Atoms {
		k.match[i] = -1
		if a.Aromatic {
			k.need[i] = needsPiBond(m, i)
		}
	}
	for bi, b := range m.Bonds {
		if b.Aromatic && k.need[b.From] && k.need[b.To] {
			k.cand[b.From] = append(k.cand[b.From], bi)
			k.cand[b.To] = append(k.cand[b.To], bi)
		}
	}

	if !k.solve() {
		return &ParseError{SMILES: m.SMILES, Pos: -1, Reason: "cannot kekulize aromatic system"}
	}
	for bi := range m.Bonds {
		if m.Bonds[bi].Aromatic {
			m.Bonds[bi].Order = BondSingle
		}
	}
	for _, bi := range k.match {
		if bi >= 0 {
			m.Bonds[bi].Order = BondDouble
		}
	}
	return nil
}

func (k *kekulizer) free(idx int) int {
	c := 0
	for _, bi := range k.cand[idx] {
		if k.match[k.m.Bonds[bi].Other(idx)] < 0 {
			c++
		}
	}
	return c
}

// solve matches the most constrained unmatched atom first and backtracks.
func (k *kekulizer) solve() bool {
	best, bestFree := -1, 0
	for i, need := range k.need {
		if !need || k.match[i] >= 0 {
			continue
		}
		f := k.free(i)
		if f == 0 {
			return false
		}
		if best < 0 || f < bestFree {
			best, bestFree = i, f
		}
	}
	if best < 0 {
		return true
	}
	k.steps++
	if k.steps > maxKekuleSteps {
		return false
	}
	for _, bi := range k.cand[best] {
		j := k.m.Bonds[bi].Other(best)
		if k.match[j] >= 0 {
			continue
		}
		k.match[best], k.match[j] = bi, bi
		if k.solve() {
			return true
		}
		k.match[best], k.match[j] = -1, -1
	}
	return false
}

// assignHydrogens fills in implicit hydrogens and rejects over-bonded atoms.
func assignHydrogens(m *Molecule) error {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		bonds := m.valence(i)
		allowed := allowedValences(a.Number, a.Charge)

		if a.Bracket || a.Number == numWildcard {
			a.HCount += a.foldedH
			if len(allowed) > 0 && bonds+a.HCount > allowed[len(allowed)-1] {
				return valenceError(m, i, bonds+a.HCount)
			}
			continue
		}

		used := bonds + a.foldedH
		target := -1
		for _, v := range allowed {
			if v >= used {
				target = v
				break
			}
		}
		if target < 0 {
			return valenceError(m, i, used)
		}
		a.HCount = target - bonds
	}
	return nil
}

func valenceError(m *Molecule, idx, valence int) error {
	return &ParseError{SMILES: m.SMILES, Pos: -1,
		Reason: fmt.Sprintf("explicit valence %d for atom %d (%s) is greater than permitted", valence, idx+1, m.Atoms[idx].Symbol)}
}
