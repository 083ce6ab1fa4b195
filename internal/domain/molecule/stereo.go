package molecule

import "math"

// maxChainDepth caps how far substituent chains are compared.
const maxChainDepth = 8

// ChiralCenters returns the atoms that carry four pairwise different
// substituents (counting hydrogen), whether or not the SMILES specified
// their configuration.
func ChiralCenters(m *Molecule) []int {
	var out []int
	for i := range m.Atoms {
		if isStereoCenter(m, i) {
			out = append(out, i)
		}
	}
	return out
}

func isStereoCenter(m *Molecule, idx int) bool {
	a := m.Atoms[idx]
	switch {
	case a.Aromatic:
		return false
	case a.Number == numC || a.Number == numSi || a.Number == numP:
	case a.Number == numN && a.Charge == 1:
	default:
		return false
	}

	nbs := m.Neighbors(idx)
	for _, nb := range nbs {
		if m.Bonds[nb.Bond].Order != BondSingle {
			return false
		}
	}
	if !(len(nbs) == 4 && a.HCount == 0) && !(len(nbs) == 3 && a.HCount == 1) {
		return false
	}

	cmp := newChainComparer(m)
	for i := 0; i < len(nbs); i++ {
		for j := i + 1; j < len(nbs); j++ {
			if cmp.same(idx, nbs[i].Bond, idx, nbs[j].Bond, cmp.ttl) {
				return false
			}
		}
	}
	return true
}

type chainKey struct {
	from1, bond1, from2, bond2, ttl int
}

// chainComparer decides whether two substituent chains look identical up to
// a fixed depth.
type chainComparer struct {
	m    *Molecule
	ttl  int
	memo map[chainKey]bool
}

func newChainComparer(m *Molecule) *chainComparer {
	ttl := int(3 + math.Sqrt(float64(len(m.Atoms))))
	if ttl > maxChainDepth {
		ttl = maxChainDepth
	}
	return &chainComparer{m: m, ttl: ttl, memo: make(map[chainKey]bool)}
}

// same walks bond1 away from from1 and bond2 away from from2 and compares
// the atoms reached and everything beyond them.
func (c *chainComparer) same(from1, bond1, from2, bond2, ttl int) bool {
	if ttl < 0 {
		return true
	}
	key := chainKey{from1, bond1, from2, bond2, ttl}
	if v, ok := c.memo[key]; ok {
		return v
	}
	v := c.compare(from1, bond1, from2, bond2, ttl)
	c.memo[key] = v
	return v
}

func (c *chainComparer) compare(from1, bond1, from2, bond2, ttl int) bool {
	b1, b2 := c.m.Bonds[bond1], c.m.Bonds[bond2]
	if b1.Order != b2.Order {
		return false
	}
	n1, n2 := b1.Other(from1), b2.Other(from2)
	a1, a2 := c.m.Atoms[n1], c.m.Atoms[n2]
	if a1.Number != a2.Number || a1.Charge != a2.Charge || a1.Isotope != a2.Isotope || a1.HCount != a2.HCount {
		return false
	}

	var subs1, subs2 []int
	for _, bi := range c.m.adj[n1] {
		if bi != bond1 {
			subs1 = append(subs1, bi)
		}
	}
	for _, bi := range c.m.adj[n2] {
		if bi != bond2 {
			subs2 = append(subs2, bi)
		}
	}
	if len(subs1) != len(subs2) {
		return false
	}
	if len(subs1) == 0 {
		return true
	}

	used := make([]bool, len(subs2))
	for _, s1 := range subs1 {
		matched := false
		for k, s2 := range subs2 {
			if used[k] {
				continue
			}
			if c.same(n1, s1, n2, s2, ttl-1) {
				used[k] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
