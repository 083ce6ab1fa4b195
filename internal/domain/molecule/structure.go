// Package molecule is the chemistry core of MolScope: a SMILES reader that
// builds a validated molecular graph, ring and aromaticity perception, the
// two descriptors plotted by the application (Wildman-Crippen logP and the
// synthetic accessibility score) and 2D coordinate generation for depiction.
package molecule

// BondOrder is the Kekulé order of a bond.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
)

// Atom is a heavy atom of the molecular graph.  Hydrogens are carried as a
// count, never as separate atoms, except for molecules made only of hydrogen.
type Atom struct {
	Number    int    // atomic number, 0 for the wildcard
	Symbol    string // element symbol as written, e.g. "Cl"
	Aromatic  bool
	Charge    int
	Isotope   int
	HCount    int  // total attached hydrogens after perception
	Bracket   bool // written as [..]; its H count is explicit
	Chirality string
	Class     int

	foldedH int // explicit [H] neighbours merged into this atom
}

// Bond joins two atoms.  Order is always the Kekulé order; Aromatic marks
// bonds inside perceived aromatic rings.
type Bond struct {
	From, To int
	Order    BondOrder
	Aromatic bool
	Stereo   byte // '/' or '\\' as written, 0 otherwise
}

// Other returns the atom across the bond from idx.
func (b Bond) Other(idx int) int {
	if b.From == idx {
		return b.To
	}
	return b.From
}

// Molecule is a parsed and validated molecular graph.
type Molecule struct {
	SMILES string
	Name   string
	Atoms  []Atom
	Bonds  []Bond

	adj   [][]int // bond indices per atom
	rings *RingInfo
}

// Neighbor is an adjacent atom together with the connecting bond.
type Neighbor struct {
	Atom int
	Bond int
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(b Bond) int {
	m.Bonds = append(m.Bonds, b)
	idx := len(m.Bonds) - 1
	m.adj[b.From] = append(m.adj[b.From], idx)
	m.adj[b.To] = append(m.adj[b.To], idx)
	return idx
}

// rebuildAdjacency recomputes adjacency lists after atoms or bonds change.
func (m *Molecule) rebuildAdjacency() {
	m.adj = make([][]int, len(m.Atoms))
	for i, b := range m.Bonds {
		m.adj[b.From] = append(m.adj[b.From], i)
		m.adj[b.To] = append(m.adj[b.To], i)
	}
}

// Neighbors returns the atoms bonded to idx in bond order of appearance.
func (m *Molecule) Neighbors(idx int) []Neighbor {
	out := make([]Neighbor, 0, len(m.adj[idx]))
	for _, bi := range m.adj[idx] {
		out = append(out, Neighbor{Atom: m.Bonds[bi].Other(idx), Bond: bi})
	}
	return out
}

// Degree is the number of explicit (heavy) neighbours.
func (m *Molecule) Degree(idx int) int { return len(m.adj[idx]) }

// Connectivity is the SMARTS X value: neighbours plus attached hydrogens.
func (m *Molecule) Connectivity(idx int) int { return len(m.adj[idx]) + m.Atoms[idx].HCount }

// BondBetween returns the bond index joining a and b, or -1.
func (m *Molecule) BondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// valence is the sum of bond orders around idx, excluding hydrogens.
func (m *Molecule) valence(idx int) int {
	v := 0
	for _, bi := range m.adj[idx] {
		v += int(m.Bonds[bi].Order)
	}
	return v
}

// HeavyAtomCount counts atoms other than hydrogen.
func (m *Molecule) HeavyAtomCount() int {
	n := 0
	for _, a := range m.Atoms {
		if a.Number != numH {
			n++
		}
	}
	return n
}

// Rings returns the ring perception result, computing it on first use.
func (m *Molecule) Rings() *RingInfo {
	if m.rings == nil {
		m.rings = perceiveRings(m)
	}
	return m.rings
}

// Components returns the atom indices of each connected component in
// order of first appearance.
func (m *Molecule) Components() [][]int {
	seen := make([]bool, len(m.Atoms))
	var comps [][]int
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		comp := []int{start}
		seen[start] = true
		for q := 0; q < len(comp); q++ {
			for _, nb := range m.Neighbors(comp[q]) {
				if !seen[nb.Atom] {
					seen[nb.Atom] = true
					comp = append(comp, nb.Atom)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
