package molecule

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// environmentRadius is the largest circular environment radius scored.
const environmentRadius = 2

// commonness of each element as it appears in typical drug-like molecules,
// keyed by atomic number and aromaticity.  Higher values are more common.
var baseCommonness = map[[2]int]float64{
	{numC, 1}: 1.6, {numC, 0}: 1.4, {numO, 0}: 1.1, {numF, 0}: 1.0,
	{numN, 1}: 0.9, {numN, 0}: 0.9, {numCl, 0}: 0.8, {numS, 1}: 0.6,
	{numO, 1}: 0.4, {numS, 0}: 0.4, {numBr, 0}: 0.3, {numI, 0}: -0.3,
	{numP, 0}: -0.8, {numP, 1}: -0.8, {numSi, 0}: -1.5, {numB, 0}: -2.0,
	{numB, 1}: -2.0, {numSe, 0}: -2.5, {numSe, 1}: -2.5, {numH, 0}: -1.0,
}

const unknownCommonness = -4.0

// SAScore returns the synthetic accessibility score of m between 1 (easy to
// make) and 10 (very hard).  It combines a fragment term, scored over the
// circular environment of every atom, with penalties for size, stereo
// centres, spiro and bridgehead atoms and macrocycles.
func SAScore(m *Molecule) float64 {
	n := m.HeavyAtomCount()
	if n == 0 {
		return 1
	}
	ri := m.Rings()

	envs := circularEnvironments(m)
	common := make([]float64, len(m.Atoms))
	for i := range m.Atoms {
		common[i] = atomCommonness(m, ri, i)
	}

	fragment := 0.0
	distinct := make(map[uint64]struct{}, len(envs))
	for _, e := range envs {
		fragment += environmentScore(m, common, e)
		distinct[e.hash] = struct{}{}
	}
	fragment /= float64(len(envs))

	fn := float64(n)
	sizePenalty := math.Pow(fn, 1.005) - fn
	stereoPenalty := math.Log10(float64(len(ChiralCenters(m))) + 1)
	spiroPenalty := math.Log10(float64(len(ri.SpiroAtoms())) + 1)
	bridgePenalty := math.Log10(float64(len(ri.BridgeheadAtoms(m))) + 1)
	macrocyclePenalty := 0.0
	if ri.MacrocycleCount() > 0 {
		macrocyclePenalty = math.Log10(2)
	}
	complexity := -(sizePenalty + stereoPenalty + spiroPenalty + bridgePenalty + macrocyclePenalty)

	density := 0.0
	if n > len(distinct) {
		density = 0.5 * math.Log(fn/float64(len(distinct)))
	}

	return scaleSAScore(fragment + complexity + density)
}

// scaleSAScore maps the raw score onto 1..10, smoothing the hard end.
func scaleSAScore(raw float64) float64 {
	const lo, hi = -4.0, 2.5
	s := 11 - (raw-lo+1)/(hi-lo)*9
	if s > 8 {
		s = 8 + math.Log(s+1-9)
	}
	return math.Max(1, math.Min(10, s))
}

func atomCommonness(m *Molecule, ri *RingInfo, idx int) float64 {
	a := m.Atoms[idx]
	arom := 0
	if a.Aromatic {
		arom = 1
	}
	c, ok := baseCommonness[[2]int{a.Number, arom}]
	if !ok {
		c = unknownCommonness
	}

	switch {
	case a.Charge == 0:
	case a.Number == numN && a.Charge > 0, a.Number == numO && a.Charge < 0:
		c -= 1.0
	default:
		c -= 2.0
	}
	if a.Isotope != 0 {
		c -= 2.0
	}

	deg := m.Degree(idx)
	if a.Number == numC && !a.Aromatic {
		switch {
		case deg == 4:
			c -= 0.6
		case deg == 3:
			c -= 0.2
		}
	}
	if (a.Number == numS || a.Number == numP) && m.valence(idx)+a.HCount > 3 {
		c -= 0.5
	}
	for _, nb := range m.Neighbors(idx) {
		if o := m.Bonds[nb.Bond].Order; o >= BondTriple {
			c -= 0.2
		}
	}

	if rc := ri.AtomRingCount(idx); rc > 1 {
		c -= 0.4 * float64(rc-1)
	}
	if ri.AtomInRingOfSize(idx, 3) || ri.AtomInRingOfSize(idx, 4) {
		c -= 0.8
	}
	if ri.AtomInMacrocycle(idx) {
		c -= 0.6
	}
	return c
}

// environment is the circular neighbourhood of an atom at a given radius.
type environment struct {
	center int
	radius int
	atoms  []int
	hash   uint64
}

// circularEnvironments enumerates Morgan-style environments of radius 0 to
// environmentRadius for every heavy atom.  An environment of radius r is
// emitted only when it covers more atoms than radius r-1.
func circularEnvironments(m *Molecule) []environment {
	ri := m.Rings()
	inv := make([]uint64, len(m.Atoms))
	for i, a := range m.Atoms {
		ring := 0
		if ri.AtomInRing(i) {
			ring = 1
		}
		inv[i] = hashInts(a.Number, m.Degree(i), a.HCount, a.Charge, a.Isotope, ring)
	}

	var out []environment
	spheres := make([][]int, len(m.Atoms))
	for i, a := range m.Atoms {
		if a.Number == numH {
			continue
		}
		spheres[i] = []int{i}
		out = append(out, environment{center: i, atoms: spheres[i], hash: inv[i]})
	}

	for r := 1; r <= environmentRadius; r++ {
		next := make([]uint64, len(m.Atoms))
		for i := range m.Atoms {
			type pair struct{ bond, inv uint64 }
			var ps []pair
			for _, nb := range m.Neighbors(i) {
				b := m.Bonds[nb.Bond]
				code := uint64(b.Order)
				if b.Aromatic {
					code = 12
				}
				ps = append(ps, pair{code, inv[nb.Atom]})
			}
			sort.Slice(ps, func(x, y int) bool {
				if ps[x].bond != ps[y].bond {
					return ps[x].bond < ps[y].bond
				}
				return ps[x].inv < ps[y].inv
			})
			d := xxhash.New()
			writeUint64(d, uint64(r), inv[i])
			for _, p := range ps {
				writeUint64(d, p.bond, p.inv)
			}
			next[i] = d.Sum64()
		}
		inv = next

		for i, a := range m.Atoms {
			if a.Number == numH {
				continue
			}
			grown := growSphere(m, spheres[i])
			if len(grown) == len(spheres[i]) {
				continue
			}
			spheres[i] = grown
			out = append(out, environment{center: i, radius: r, atoms: grown, hash: inv[i]})
		}
	}
	return out
}

func growSphere(m *Molecule, atoms []int) []int {
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	out := append([]int(nil), atoms...)
	for _, a := range atoms {
		for _, nb := range m.Neighbors(a) {
			if !in[nb.Atom] {
				in[nb.Atom] = true
				out = append(out, nb.Atom)
			}
		}
	}
	return out
}

func environmentScore(m *Molecule, common []float64, e environment) float64 {
	switch e.radius {
	case 0:
		return common[e.center]
	case 1:
		s := mean(common, e.atoms) - 0.2
		if extra := m.Degree(e.center) - 2; extra > 0 {
			s -= 0.15 * float64(extra)
		}
		return s
	default:
		s := mean(common, e.atoms) - 0.5
		for _, a := range e.atoms {
			if n := m.Atoms[a].Number; n != numC && n != numH {
				s -= 0.1
			}
		}
		return s
	}
}

func mean(values []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}

func hashInts(vals ...int) uint64 {
	d := xxhash.New()
	for _, v := range vals {
		writeUint64(d, uint64(int64(v)))
	}
	return d.Sum64()
}

func writeUint64(d *xxhash.Digest, vals ...uint64) {
	var buf [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
}
