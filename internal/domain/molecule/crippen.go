package molecule

// Wildman-Crippen atom contributions (J. Chem. Inf. Comput. Sci. 1999, 39,
// 868).  Each heavy atom and each attached hydrogen is assigned one type; the
// estimated logP is the sum of the type contributions.
var crippenLogP = map[string]float64{
	"C1": 0.1441, "C2": 0.0000, "C3": -0.2035, "C4": -0.2051, "C5": -0.2783,
	"C6": 0.1551, "C7": 0.00170, "C8": 0.08452, "C9": -0.1444, "C10": -0.0516,
	"C11": 0.1193, "C12": -0.0967, "C13": -0.5443, "C14": 0.0000, "C15": 0.2450,
	"C16": 0.1980, "C17": 0.0000, "C18": 0.1581, "C19": 0.2955, "C20": 0.2713,
	"C21": 0.1360, "C22": 0.4619, "C23": 0.5437, "C24": 0.1893, "C25": -0.8186,
	"C26": 0.2640, "C27": 0.2148, "CS": 0.08129,

	"H1": 0.1230, "H2": -0.2677, "H3": 0.2142, "H4": 0.2980, "HS": 0.1125,

	"N1": -1.0190, "N2": -0.7096, "N3": -1.0270, "N4": -0.5188, "N5": 0.08387,
	"N6": 0.1836, "N7": -0.3187, "N8": -0.4458, "N9": 0.01508, "N10": -1.950,
	"N11": -0.3239, "N12": -1.119, "N13": -0.3396, "N14": 0.2887, "NS": -0.4806,

	"O1": 0.1552, "O2": -0.2893, "O3": -0.0684, "O4": -0.4195, "O5": 0.0335,
	"O6": -0.3339, "O7": -1.189, "O8": 0.1788, "O9": -0.1526, "O10": 0.1129,
	"O11": 0.4833, "O12": -1.326, "OS": -0.1188,

	"F": 0.4202, "Cl": 0.6895, "Br": 0.8456, "I": 0.8857, "Hal": -2.996,
	"P": 0.8612, "S1": 0.6482, "S2": -0.0024, "S3": 0.6237,
	"Me1": -0.3808, "Me2": -0.0025,
}

// CrippenLogP returns the Wildman-Crippen octanol/water partition coefficient
// estimate (clogP) of m.
func CrippenLogP(m *Molecule) float64 {
	total := 0.0
	for i, a := range m.Atoms {
		total += crippenLogP[CrippenType(m, i)]
		if a.HCount > 0 {
			total += float64(a.HCount) * crippenLogP[crippenHydrogenType(m, i)]
		}
	}
	return total
}

// CrippenType returns the Wildman-Crippen type label of atom idx, or "" for
// the wildcard atom.
func CrippenType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	switch {
	case a.Number == numWildcard:
		return ""
	case a.Number == numH:
		if m.Degree(idx) > 0 {
			return "H1"
		}
		return "HS"
	case a.Number == numC:
		if a.Aromatic {
			return aromaticCarbonType(m, idx)
		}
		return carbonType(m, idx)
	case a.Number == numN:
		return nitrogenType(m, idx)
	case a.Number == numO:
		return oxygenType(m, idx)
	case isHalogen(a.Number):
		if a.Charge != 0 {
			return "Hal"
		}
		return a.Symbol
	case a.Number == numP:
		return "P"
	case a.Number == numS:
		switch {
		case a.Aromatic:
			return "S3"
		case a.Charge == 0:
			return "S1"
		default:
			return "S2"
		}
	case isAlkali(a.Number):
		return "Me1"
	}
	return "Me2"
}

// SMARTS-style bond tests.  An unspecified SMARTS bond matches single or
// aromatic; '-' and '=' match only non-aromatic bonds.
func defaultBond(b Bond) bool { return b.Aromatic || b.Order == BondSingle }
func plainSingle(b Bond) bool { return !b.Aromatic && b.Order == BondSingle }
func plainDouble(b Bond) bool { return !b.Aromatic && b.Order == BondDouble }

func inElements(number int, set ...int) bool {
	for _, n := range set {
		if n == number {
			return true
		}
	}
	return false
}

// typingView bundles the neighbour queries shared by the typing rules.
type typingView struct {
	m   *Molecule
	idx int
	nbs []Neighbor
}

func view(m *Molecule, idx int) typingView {
	return typingView{m: m, idx: idx, nbs: m.Neighbors(idx)}
}

func (v typingView) atom(nb Neighbor) Atom { return v.m.Atoms[nb.Atom] }
func (v typingView) bond(nb Neighbor) Bond { return v.m.Bonds[nb.Bond] }

// count returns how many neighbours satisfy pred.
func (v typingView) count(pred func(Atom, Bond) bool) int {
	n := 0
	for _, nb := range v.nbs {
		if pred(v.atom(nb), v.bond(nb)) {
			n++
		}
	}
	return n
}

func (v typingView) any(pred func(Atom, Bond) bool) bool { return v.count(pred) > 0 }

func aliphaticHeavy(a Atom, b Bond) bool {
	return !a.Aromatic && a.Number != numH && defaultBond(b)
}

func aromaticVia(a Atom, b Bond) bool { return a.Aromatic && defaultBond(b) }

func carbonType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	v := view(m, idx)
	h, deg, x := a.HCount, len(v.nbs), m.Connectivity(idx)

	aliphC := func(t Atom, b Bond) bool { return t.Number == numC && !t.Aromatic && defaultBond(b) }
	allAliphC := v.count(aliphC) == deg

	switch {
	case h == 4 && deg == 0,
		h == 3 && deg == 1 && allAliphC,
		h == 2 && deg == 2 && allAliphC:
		return "C1"
	case h == 1 && deg == 3 && allAliphC,
		h == 0 && deg == 4 && allAliphC:
		return "C2"
	}

	hetero := v.any(func(t Atom, b Bond) bool {
		return !t.Aromatic && defaultBond(b) &&
			(inElements(t.Number, numN, numO, numP, numS) || isHalogen(t.Number))
	})
	nAliph := v.count(aliphaticHeavy)
	if hetero {
		switch {
		case h == 3 && deg == 1,
			h == 2 && x == 4 && nAliph >= 2:
			return "C3"
		case h == 1 && x == 4 && nAliph == 3,
			h == 0 && x == 4 && nAliph == 4:
			return "C4"
		}
	}

	if v.any(func(t Atom, b Bond) bool {
		return plainDouble(b) && !t.Aromatic && t.Number != numC && t.Number != numH
	}) {
		return "C5"
	}

	dblC := v.count(func(t Atom, b Bond) bool { return plainDouble(b) && !t.Aromatic && t.Number == numC })
	if dblC > 0 {
		others := v.count(func(t Atom, b Bond) bool { return !plainDouble(b) && aliphaticHeavy(t, b) })
		switch {
		case dblC == 2,
			h == 2,
			h == 1 && deg == 2 && others == 1,
			h == 0 && deg == 3 && others == 2:
			return "C6"
		}
	}

	if x == 2 && v.any(func(t Atom, b Bond) bool { return !b.Aromatic && b.Order == BondTriple }) {
		return "C7"
	}

	aromNb := -1
	for _, nb := range v.nbs {
		if aromaticVia(v.atom(nb), v.bond(nb)) {
			aromNb = nb.Atom
			break
		}
	}
	if aromNb >= 0 {
		switch {
		case h == 3 && m.Atoms[aromNb].Number == numC:
			return "C8"
		case h == 3:
			return "C9"
		case x == 4 && h == 2:
			return "C10"
		case x == 4 && h == 1:
			return "C11"
		case x == 4 && h == 0:
			return "C12"
		}
	}

	if dblC > 0 && aromNb >= 0 {
		return "C26"
	}
	if v.any(func(t Atom, b Bond) bool { return plainDouble(b) && t.Aromatic && t.Number == numC }) {
		return "C26"
	}

	if x == 4 && v.any(func(t Atom, b Bond) bool {
		return aliphaticHeavy(t, b) &&
			!inElements(t.Number, numC, numN, numO, numP, numS) && !isHalogen(t.Number)
	}) {
		return "C27"
	}
	return "CS"
}

func aromaticCarbonType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	v := view(m, idx)

	if a.HCount == 0 && v.any(func(t Atom, b Bond) bool {
		return plainSingle(b) && !t.Aromatic && t.Number != numH &&
			!inElements(t.Number, numC, numN, numO, numS) && !isHalogen(t.Number)
	}) {
		return "C13"
	}

	for _, nb := range v.nbs {
		if !defaultBond(v.bond(nb)) {
			continue
		}
		switch v.atom(nb).Number {
		case numF:
			return "C14"
		case numCl:
			return "C15"
		case numBr:
			return "C16"
		case numI:
			return "C17"
		}
	}

	if a.HCount == 1 {
		return "C18"
	}

	arom := v.count(func(t Atom, b Bond) bool { return b.Aromatic && t.Aromatic })
	if arom >= 3 {
		return "C19"
	}
	if arom >= 2 {
		for _, nb := range v.nbs {
			t, b := v.atom(nb), v.bond(nb)
			if plainSingle(b) && t.Aromatic {
				return "C20"
			}
		}
		for _, nb := range v.nbs {
			t, b := v.atom(nb), v.bond(nb)
			if !plainSingle(b) || t.Aromatic {
				continue
			}
			switch t.Number {
			case numC:
				return "C21"
			case numN:
				return "C22"
			case numO:
				return "C23"
			case numS:
				return "C24"
			}
		}
		if v.any(func(t Atom, b Bond) bool {
			return plainDouble(b) && !t.Aromatic && inElements(t.Number, numC, numN, numO)
		}) {
			return "C25"
		}
	}
	return "CS"
}

func nitrogenType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	v := view(m, idx)
	h, q, deg := a.HCount, a.Charge, len(v.nbs)

	if a.Aromatic {
		switch {
		case q == 0:
			return "N11"
		case q > 0:
			return "N12"
		}
		return "NS"
	}

	nAliph := v.count(aliphaticHeavy)
	nArom := v.count(aromaticVia)
	double := v.count(func(t Atom, b Bond) bool { return plainDouble(b) && t.Number != numH })
	triple := v.any(func(t Atom, b Bond) bool { return !b.Aromatic && b.Order == BondTriple })

	switch {
	case q == 0:
		switch {
		case h == 2 && nAliph >= 1:
			return "N1"
		case h == 1 && nAliph >= 2:
			return "N2"
		case h == 2 && nArom >= 1:
			return "N3"
		case h == 1 && nArom >= 1 && nAliph+nArom >= 2:
			return "N4"
		case h == 1 && double > 0:
			return "N5"
		case h == 0 && double > 0 && deg >= 2:
			return "N6"
		case h == 0 && nAliph == 3:
			return "N7"
		case h == 0 && nArom >= 1 && nAliph+nArom == 3:
			return "N8"
		case triple:
			return "N9"
		}
		return "NS"
	case q > 0:
		dblToC := v.any(func(t Atom, b Bond) bool { return plainDouble(b) && t.Number == numC })
		dblToN := v.any(func(t Atom, b Bond) bool { return plainDouble(b) && t.Number == numN && t.Charge == 0 })
		switch {
		case h >= 1:
			return "N10"
		case deg == 4 && nAliph+nArom == 4,
			double > 0 && deg == 3,
			double == 2 && dblToC && dblToN:
			return "N13"
		case triple || double > 0:
			return "N14"
		}
		return "NS"
	}
	return "N14"
}

func oxygenType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	v := view(m, idx)
	deg := len(v.nbs)

	switch {
	case a.Aromatic:
		return "O1"
	case a.HCount >= 1:
		return "O2"
	case deg == 2:
		if v.count(aliphaticHeavy) == 2 {
			return "O3"
		}
		if v.any(aromaticVia) {
			return "O4"
		}
		return "OS"
	case deg != 1:
		return "OS"
	}

	nb := v.nbs[0]
	t, b := v.atom(nb), v.bond(nb)
	if plainDouble(b) && inElements(t.Number, numN, numO) {
		return "O5"
	}
	if a.Charge == -1 {
		switch {
		case t.Number == numN:
			return "O5"
		case t.Number == numS:
			return "O6"
		case t.Number == numC && hasOtherDoubleO(m, nb.Atom, idx):
			return "O12"
		}
		return "O7"
	}
	if plainDouble(b) && t.Number == numC {
		if t.Aromatic {
			return "O8"
		}
		return carbonylOxygenType(m, idx, nb.Atom)
	}
	return "OS"
}

func hasOtherDoubleO(m *Molecule, c, except int) bool {
	for _, nb := range m.Neighbors(c) {
		if nb.Atom != except && m.Atoms[nb.Atom].Number == numO && plainDouble(m.Bonds[nb.Bond]) {
			return true
		}
	}
	return false
}

// carbonylOxygenType classifies O in O=C by the carbonyl carbon c.
func carbonylOxygenType(m *Molecule, o, c int) string {
	ct := m.Atoms[c]
	var others []Neighbor
	for _, nb := range m.Neighbors(c) {
		if nb.Atom != o {
			others = append(others, nb)
		}
	}
	atom := func(nb Neighbor) Atom { return m.Atoms[nb.Atom] }
	bond := func(nb Neighbor) Bond { return m.Bonds[nb.Bond] }

	switch {
	case ct.HCount == 2 && len(others) == 0:
		return "O9"
	case ct.HCount == 1 && len(others) == 1:
		t := atom(others[0])
		if !t.Aromatic && defaultBond(bond(others[0])) && inElements(t.Number, numC, numN, numO) {
			return "O9"
		}
		if t.Aromatic {
			return "O10"
		}
	case ct.HCount == 0 && len(others) == 1:
		t := atom(others[0])
		if t.Number == numO && plainDouble(bond(others[0])) {
			return "O9"
		}
	case len(others) == 2:
		t0, t1 := atom(others[0]), atom(others[1])
		b0, b1 := bond(others[0]), bond(others[1])
		aliph0, aliph1 := aliphaticHeavy(t0, b0), aliphaticHeavy(t1, b1)
		if aliph0 && aliph1 && (t0.Number == numC || t1.Number == numC) {
			return "O9"
		}
		carbonArom := func(p, q Atom) bool {
			return p.Number == numC && q.Aromatic ||
				p.Number == numC && p.Aromatic && !q.Aromatic && q.Number != numH
		}
		if carbonArom(t0, t1) || carbonArom(t1, t0) {
			return "O10"
		}
		if !inElements(t0.Number, numC, numH) && !inElements(t1.Number, numC, numH) {
			return "O11"
		}
	}
	return "OS"
}

// crippenHydrogenType types the hydrogens attached to atom idx.
func crippenHydrogenType(m *Molecule, idx int) string {
	a := m.Atoms[idx]
	switch a.Number {
	case numC, numH:
		return "H1"
	case numN:
		return "H3"
	case numO:
	default:
		return "H2"
	}

	nbs := m.Neighbors(idx)
	if len(nbs) == 0 {
		return "H2"
	}
	for _, nb := range nbs {
		t := m.Atoms[nb.Atom]
		switch {
		case t.Number == numC && t.Aromatic,
			t.Number == numC && m.Connectivity(nb.Atom) == 4,
			!inElements(t.Number, numC, numN, numO, numS):
			return "H2"
		}
	}
	for _, nb := range nbs {
		if m.Atoms[nb.Atom].Number == numN {
			return "H3"
		}
	}
	for _, nb := range nbs {
		t := m.Atoms[nb.Atom]
		if t.Number == numO || t.Number == numS {
			return "H4"
		}
		if t.Number != numC {
			continue
		}
		for _, nb2 := range m.Neighbors(nb.Atom) {
			if nb2.Atom == idx || !plainDouble(m.Bonds[nb2.Bond]) {
				continue
			}
			if inElements(m.Atoms[nb2.Atom].Number, numC, numN, numO, numS) {
				return "H4"
			}
		}
	}
	return "HS"
}
