package molecule

import (
	"math/bits"
	"sort"
)

// MacrocycleSize is the smallest ring size counted as a macrocycle.
const MacrocycleSize = 9

// RingInfo is the smallest set of smallest rings of a molecule together with
// per-atom and per-bond membership.
type RingInfo struct {
	// Rings holds the atoms of each ring in cyclic order.
	Rings [][]int
	// RingBonds holds the bonds of each ring, parallel to Rings.
	RingBonds [][]int

	atomRings  [][]int
	inRingBond []bool
}

// NumRings is the size of the ring set.
func (r *RingInfo) NumRings() int { return len(r.Rings) }

// AtomInRing reports whether atom idx belongs to any ring.
func (r *RingInfo) AtomInRing(idx int) bool { return len(r.atomRings[idx]) > 0 }

// AtomRingCount is the number of rings in the set containing atom idx.
func (r *RingInfo) AtomRingCount(idx int) int { return len(r.atomRings[idx]) }

// BondInRing reports whether bond idx lies on any cycle.
func (r *RingInfo) BondInRing(idx int) bool { return r.inRingBond[idx] }

// AtomInRingOfSize reports whether atom idx is in a ring of exactly size atoms.
func (r *RingInfo) AtomInRingOfSize(idx, size int) bool {
	for _, ri := range r.atomRings[idx] {
		if len(r.Rings[ri]) == size {
			return true
		}
	}
	return false
}

// AtomInMacrocycle reports whether atom idx is in a ring of MacrocycleSize
// atoms or more.
func (r *RingInfo) AtomInMacrocycle(idx int) bool {
	for _, ri := range r.atomRings[idx] {
		if len(r.Rings[ri]) >= MacrocycleSize {
			return true
		}
	}
	return false
}

// MacrocycleCount is the number of rings with MacrocycleSize atoms or more.
func (r *RingInfo) MacrocycleCount() int {
	n := 0
	for _, ring := range r.Rings {
		if len(ring) >= MacrocycleSize {
			n++
		}
	}
	return n
}

// SpiroAtoms returns atoms that are the only atom shared by two rings.
func (r *RingInfo) SpiroAtoms() []int {
	seen := make(map[int]bool)
	for i := 0; i < len(r.Rings); i++ {
		for j := i + 1; j < len(r.Rings); j++ {
			shared := intersect(r.Rings[i], r.Rings[j])
			if len(shared) == 1 {
				seen[shared[0]] = true
			}
		}
	}
	return sortedKeys(seen)
}

// BridgeheadAtoms returns the end atoms of a path of two or more bonds shared
// by two rings.
func (r *RingInfo) BridgeheadAtoms(m *Molecule) []int {
	seen := make(map[int]bool)
	for i := 0; i < len(r.RingBonds); i++ {
		for j := i + 1; j < len(r.RingBonds); j++ {
			shared := intersect(r.RingBonds[i], r.RingBonds[j])
			if len(shared) < 2 {
				continue
			}
			count := make(map[int]int)
			for _, bi := range shared {
				count[m.Bonds[bi].From]++
				count[m.Bonds[bi].To]++
			}
			for atom, c := range count {
				if c == 1 {
					seen[atom] = true
				}
			}
		}
	}
	return sortedKeys(seen)
}

func intersect(a, b []int) []int {
	in := make(map[int]bool, len(a))
	for _, v := range a {
		in[v] = true
	}
	var out []int
	for _, v := range b {
		if in[v] {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// bitset is a set of bond indices used for cycle-space arithmetic over GF(2).
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << uint(i%64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<uint(i%64)) != 0 }
func (b bitset) clone() bitset  { return append(bitset(nil), b...) }
func (b bitset) key() string    { return string(bitsToBytes(b)) }

func (b bitset) xor(o bitset) {
	for i := range b {
		b[i] ^= o[i]
	}
}

func (b bitset) lowest() int {
	for i, w := range b {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

func bitsToBytes(b bitset) []byte {
	out := make([]byte, 0, len(b)*8)
	for _, w := range b {
		for s := 0; s < 64; s += 8 {
			out = append(out, byte(w>>uint(s)))
		}
	}
	return out
}

type ringCandidate struct {
	atoms []int
	bonds []int
	set   bitset
}

// perceiveRings computes ring bonds and a smallest set of smallest rings.
// Candidates come from Horton's construction and are kept greedily by size
// while they are independent in the cycle space.
func perceiveRings(m *Molecule) *RingInfo {
	ri := &RingInfo{
		atomRings:  make([][]int, len(m.Atoms)),
		inRingBond: ringBonds(m),
	}
	rank := len(m.Bonds) - len(m.Atoms) + len(m.Components())
	if rank <= 0 {
		return ri
	}

	cands := hortonCandidates(m, ri.inRingBond)
	sort.SliceStable(cands, func(i, j int) bool { return len(cands[i].bonds) < len(cands[j].bonds) })

	type row struct {
		pivot int
		set   bitset
	}
	var basis []row
	for _, c := range cands {
		if len(basis) == rank {
			break
		}
		v := c.set.clone()
		for _, r := range basis {
			if v.has(r.pivot) {
				v.xor(r.set)
			}
		}
		p := v.lowest()
		if p < 0 {
			continue
		}
		basis = append(basis, row{pivot: p, set: v})

		idx := len(ri.Rings)
		ri.Rings = append(ri.Rings, c.atoms)
		ri.RingBonds = append(ri.RingBonds, c.bonds)
		for _, a := range c.atoms {
			ri.atomRings[a] = append(ri.atomRings[a], idx)
		}
	}
	return ri
}

// ringBonds marks every bond that is not a bridge of the graph.
func ringBonds(m *Molecule) []bool {
	n := len(m.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	inRing := make([]bool, len(m.Bonds))
	for i := range inRing {
		inRing[i] = true
	}

	clock := 0
	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		disc[u], low[u] = clock, clock
		clock++
		for _, bi := range m.adj[u] {
			if bi == parentBond {
				continue
			}
			v := m.Bonds[bi].Other(u)
			if disc[v] < 0 {
				visit(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] > disc[u] {
					inRing[bi] = false
				}
			} else if disc[v] < low[u] {
				low[u] = disc[v]
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			visit(i, -1)
		}
	}
	return inRing
}

// hortonCandidates builds, for every root atom and every ring bond (x,y) not
// in the shortest-path tree of the root, the cycle path(r,x)+(x,y)+path(y,r).
func hortonCandidates(m *Molecule, inRing []bool) []ringCandidate {
	n := len(m.Atoms)
	seen := make(map[string]bool)
	var out []ringCandidate

	parent := make([]int, n)
	parentBond := make([]int, n)
	for root := 0; root < n; root++ {
		onRing := false
		for _, bi := range m.adj[root] {
			if inRing[bi] {
				onRing = true
				break
			}
		}
		if !onRing {
			continue
		}

		for i := range parent {
			parent[i], parentBond[i] = -2, -1
		}
		parent[root] = -1
		queue := []int{root}
		for q := 0; q < len(queue); q++ {
			u := queue[q]
			for _, bi := range m.adj[u] {
				if !inRing[bi] {
					continue
				}
				v := m.Bonds[bi].Other(u)
				if parent[v] == -2 {
					parent[v], parentBond[v] = u, bi
					queue = append(queue, v)
				}
			}
		}

		pathTo := func(x int) (atoms, bonds []int) {
			for ; x != -1; x = parent[x] {
				atoms = append(atoms, x)
				if parentBond[x] >= 0 {
					bonds = append(bonds, parentBond[x])
				}
			}
			return atoms, bonds
		}

		for bi, b := range m.Bonds {
			if !inRing[bi] || parent[b.From] == -2 || parent[b.To] == -2 {
				continue
			}
			if parentBond[b.From] == bi || parentBond[b.To] == bi {
				continue
			}
			px, bx := pathTo(b.From)
			py, by := pathTo(b.To)
			if !disjointExceptRoot(px, py, root) {
				continue
			}

			set := newBitset(len(m.Bonds))
			bonds := make([]int, 0, len(bx)+len(by)+1)
			for _, e := range append(append(bx, by...), bi) {
				set.set(e)
				bonds = append(bonds, e)
			}
			key := set.key()
			if seen[key] {
				continue
			}
			seen[key] = true

			// root .. x then y .. (child of root)
			atoms := make([]int, 0, len(px)+len(py)-1)
			for i := len(px) - 1; i >= 0; i-- {
				atoms = append(atoms, px[i])
			}
			atoms = append(atoms, py[:len(py)-1]...)
			sort.Ints(bonds)
			out = append(out, ringCandidate{atoms: atoms, bonds: bonds, set: set})
		}
	}
	return out
}

func disjointExceptRoot(a, b []int, root int) bool {
	in := make(map[int]bool, len(a))
	for _, v := range a {
		in[v] = true
	}
	for _, v := range b {
		if v != root && in[v] {
			return false
		}
	}
	return true
}
