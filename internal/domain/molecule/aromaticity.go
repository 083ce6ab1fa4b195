package molecule

// perceiveAromaticity clears the aromatic flags written in the input and
// marks rings, and pairs of fused rings, that satisfy the 4n+2 rule.  Bond
// orders keep their Kekulé values.
func perceiveAromaticity(m *Molecule) {
	for i := range m.Atoms {
		m.Atoms[i].Aromatic = false
	}
	for i := range m.Bonds {
		m.Bonds[i].Aromatic = false
	}

	ri := m.Rings()
	aromatic := make([]bool, len(ri.Rings))
	for r, ring := range ri.Rings {
		aromatic[r] = huckel(m, ring)
	}
	for r1 := range ri.Rings {
		for r2 := r1 + 1; r2 < len(ri.Rings); r2++ {
			if aromatic[r1] && aromatic[r2] {
				continue
			}
			if len(intersect(ri.RingBonds[r1], ri.RingBonds[r2])) == 0 {
				continue
			}
			if huckel(m, union(ri.Rings[r1], ri.Rings[r2])) {
				aromatic[r1], aromatic[r2] = true, true
			}
		}
	}

	for r, ok := range aromatic {
		if !ok {
			continue
		}
		for _, a := range ri.Rings[r] {
			m.Atoms[a].Aromatic = true
		}
		for _, b := range ri.RingBonds[r] {
			m.Bonds[b].Aromatic = true
		}
	}
}

func union(a, b []int) []int {
	out := append([]int(nil), a...)
	in := make(map[int]bool, len(a))
	for _, v := range a {
		in[v] = true
	}
	for _, v := range b {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}

// huckel reports whether every atom of the ring system can take part in a
// conjugated pi system holding 4n+2 electrons.
func huckel(m *Molecule, atoms []int) bool {
	total := 0
	for _, a := range atoms {
		e := piElectrons(m, a)
		if e < 0 {
			return false
		}
		total += e
	}
	return total >= 2 && (total-2)%4 == 0
}

// piElectrons is the number of electrons atom idx donates to a ring pi
// system, or -1 when it cannot be part of one.
func piElectrons(m *Molecule, idx int) int {
	ri := m.Rings()
	a := m.Atoms[idx]

	ringDouble, exo := false, -1
	for _, nb := range m.Neighbors(idx) {
		switch m.Bonds[nb.Bond].Order {
		case BondDouble:
			if ri.BondInRing(nb.Bond) {
				if ringDouble {
					return -1
				}
				ringDouble = true
			} else {
				exo = nb.Atom
			}
		case BondTriple, BondQuadruple:
			return -1
		}
	}

	switch {
	case ringDouble && exo >= 0:
		return -1
	case ringDouble:
		return 1
	case exo >= 0:
		if a.Number == numC {
			switch m.Atoms[exo].Number {
			case numO, numN, numS:
				return 0
			}
		}
		return -1
	}

	conn := m.Connectivity(idx)
	switch a.Number {
	case numC:
		if conn == 3 && a.Charge == -1 {
			return 2
		}
		if conn == 3 && a.Charge == 1 {
			return 0
		}
	case numN, numP, numAs:
		if conn == 3 && a.Charge == 0 {
			return 2
		}
		if conn == 2 && a.Charge == -1 {
			return 2
		}
	case numO, numS, numSe, numTe:
		if conn == 2 && a.Charge == 0 {
			return 2
		}
	case numB:
		if conn == 3 && a.Charge == 0 {
			return 0
		}
	}
	return -1
}
