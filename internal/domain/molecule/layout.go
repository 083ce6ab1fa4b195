package molecule

import (
	"context"
	"math"
)

// Point is a 2D coordinate in bond-length units.
type Point struct {
	X, Y float64
}

const (
	layoutIterations = 300
	componentGap     = 1.5

	// denseLayoutLimit is the largest component embedded from the full
	// distance matrix.  Bigger components get a breadth-first tree layout.
	denseLayoutLimit = 150
	// majorizeBudget bounds the pair updates spent on one component.
	majorizeBudget = 4_000_000
)

// Layout computes 2D depiction coordinates for every atom.  Each connected
// component of up to denseLayoutLimit atoms is embedded with classical
// multidimensional scaling over ideal distances, refined by stress
// majorization; larger components are laid out along a spanning tree.
// Components are rotated onto their principal axis and placed left to
// right.  Output is deterministic.  Layout stops with ctx's error once ctx
// is done.
func Layout(ctx context.Context, m *Molecule) ([]Point, error) {
	pts := make([]Point, len(m.Atoms))
	offset := 0.0
	for ci, comp := range m.Components() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local, err := layoutComponent(ctx, m, comp)
		if err != nil {
			return nil, err
		}

		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for _, p := range local {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		if ci > 0 {
			offset += componentGap
		}
		midY := (minY + maxY) / 2
		for k, atom := range comp {
			pts[atom] = Point{X: local[k].X - minX + offset, Y: local[k].Y - midY}
		}
		offset += maxX - minX
	}
	return pts, nil
}

func layoutComponent(ctx context.Context, m *Molecule, comp []int) ([]Point, error) {
	n := len(comp)
	switch {
	case n == 1:
		return []Point{{}}, nil
	case n == 2:
		return []Point{{X: 0}, {X: 1}}, nil
	case n > denseLayoutLimit:
		x := treeLayout(m, comp)
		alignPrincipalAxis(x)
		return x, nil
	}

	d := idealDistances(m, comp)
	x := classicalMDS(d)
	iterations := layoutIterations
	if limit := majorizeBudget / (n * n); limit < iterations {
		iterations = limit
	}
	if err := majorize(ctx, x, d, iterations); err != nil {
		return nil, err
	}
	alignPrincipalAxis(x)
	return x, nil
}

// treeLayout places the atoms of comp along a breadth-first spanning tree.
// A lone child continues its parent's axis with a 120 degree zig-zag; several
// children fan out over 120 degrees.  Ring closures are drawn as they fall.
// Linear in the size of comp.
func treeLayout(m *Molecule, comp []int) []Point {
	n := len(comp)
	local := make(map[int]int, n)
	for k, a := range comp {
		local[a] = k
	}

	pts := make([]Point, n)
	axis := make([]float64, n)
	depth := make([]int, n)
	placed := make([]bool, n)
	placed[0] = true

	const zig = math.Pi / 6
	queue := []int{comp[0]}
	for q := 0; q < len(queue); q++ {
		u := queue[q]
		ku := local[u]

		var kids []int
		for _, nb := range m.Neighbors(u) {
			if k := local[nb.Atom]; !placed[k] {
				placed[k] = true
				kids = append(kids, k)
				queue = append(queue, nb.Atom)
			}
		}

		for i, k := range kids {
			var a, heading float64
			switch {
			case q == 0:
				a = 2 * math.Pi * float64(i) / float64(len(kids))
				heading = a
			case len(kids) == 1:
				a = axis[ku]
				heading = a + zig
				if depth[ku]%2 == 1 {
					heading = a - zig
				}
			default:
				a = axis[ku] - math.Pi/3 + 2*math.Pi/3*float64(i)/float64(len(kids)-1)
				heading = a
			}
			axis[k] = a
			depth[k] = depth[ku] + 1
			pts[k] = Point{X: pts[ku].X + math.Cos(heading), Y: pts[ku].Y + math.Sin(heading)}
		}
	}
	return pts
}

// idealDistances returns target distances between the atoms of comp: chord
// lengths of a regular polygon for ring mates, a 120 degree zig-zag along
// the shortest path otherwise.
func idealDistances(m *Molecule, comp []int) [][]float64 {
	n := len(comp)
	local := make(map[int]int, n)
	for k, a := range comp {
		local[a] = k
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		hops := bfsHops(m, comp[i], local)
		for j := range d[i] {
			d[i][j] = zigzag(hops[j])
		}
	}

	ri := m.Rings()
	for r := len(ri.Rings) - 1; r >= 0; r-- {
		ring := ri.Rings[r]
		if _, ok := local[ring[0]]; !ok {
			continue
		}
		size := len(ring)
		for p := 0; p < size; p++ {
			for q := p + 1; q < size; q++ {
				steps := q - p
				if size-steps < steps {
					steps = size - steps
				}
				chord := math.Sin(math.Pi*float64(steps)/float64(size)) / math.Sin(math.Pi/float64(size))
				i, j := local[ring[p]], local[ring[q]]
				d[i][j], d[j][i] = chord, chord
			}
		}
	}
	return d
}

func bfsHops(m *Molecule, start int, local map[int]int) []int {
	hops := make([]int, len(local))
	for i := range hops {
		hops[i] = -1
	}
	hops[local[start]] = 0
	queue := []int{start}
	for q := 0; q < len(queue); q++ {
		u := queue[q]
		for _, nb := range m.Neighbors(u) {
			if k := local[nb.Atom]; hops[k] < 0 {
				hops[k] = hops[local[u]] + 1
				queue = append(queue, nb.Atom)
			}
		}
	}
	return hops
}

func zigzag(hops int) float64 {
	along := float64(hops) * math.Sqrt(3) / 2
	if hops%2 == 1 {
		return math.Sqrt(along*along + 0.25)
	}
	return along
}

// classicalMDS embeds the distance matrix in two dimensions from the two
// leading eigenvectors of the double-centred squared distance matrix.
func classicalMDS(d [][]float64) []Point {
	n := len(d)
	b := make([][]float64, n)
	rowMean := make([]float64, n)
	total := 0.0
	for i := range d {
		b[i] = make([]float64, n)
		for j := range d[i] {
			sq := d[i][j] * d[i][j]
			b[i][j] = sq
			rowMean[i] += sq
			total += sq
		}
		rowMean[i] /= float64(n)
	}
	total /= float64(n * n)
	for i := range b {
		for j := range b[i] {
			b[i][j] = -0.5 * (b[i][j] - rowMean[i] - rowMean[j] + total)
		}
	}

	pts := make([]Point, n)
	for axis := 0; axis < 2; axis++ {
		v, lambda := powerIteration(b, axis)
		scale := math.Sqrt(math.Max(lambda, 1e-9))
		for i := range pts {
			if axis == 0 {
				pts[i].X = v[i] * scale
			} else {
				pts[i].Y = v[i] * scale
			}
		}
		for i := range b {
			for j := range b[i] {
				b[i][j] -= lambda * v[i] * v[j]
			}
		}
	}
	return pts
}

func powerIteration(b [][]float64, seed int) ([]float64, float64) {
	n := len(b)
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Sin(float64(i+1)*(1.3+float64(seed))) + 0.1
	}
	normalize(v)

	lambda := 0.0
	next := make([]float64, n)
	for iter := 0; iter < 200; iter++ {
		for i := range b {
			s := 0.0
			for j := range b[i] {
				s += b[i][j] * v[j]
			}
			next[i] = s
		}
		norm := normalize(next)
		if norm == 0 {
			return v, 0
		}
		lambda = 0
		for i := range next {
			s := 0.0
			for j := range b[i] {
				s += b[i][j] * next[j]
			}
			lambda += next[i] * s
		}
		v, next = next, v
	}
	return v, lambda
}

func normalize(v []float64) float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return 0
	}
	for i := range v {
		v[i] /= norm
	}
	return norm
}

// majorize applies localized stress-majorization updates with weights 1/d².
func majorize(ctx context.Context, x []Point, d [][]float64, iterations int) error {
	for iter := 0; iter < iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range x {
			var sx, sy, sw float64
			for j := range x {
				if i == j || d[i][j] == 0 {
					continue
				}
				w := 1 / (d[i][j] * d[i][j])
				dx, dy := x[i].X-x[j].X, x[i].Y-x[j].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-9 {
					dx, dy, dist = 1e-3*float64(i-j), 1e-3, math.Hypot(1e-3*float64(i-j), 1e-3)
				}
				sx += w * (x[j].X + d[i][j]*dx/dist)
				sy += w * (x[j].Y + d[i][j]*dy/dist)
				sw += w
			}
			if sw > 0 {
				x[i] = Point{X: sx / sw, Y: sy / sw}
			}
		}
	}
	return nil
}

// alignPrincipalAxis centres the points and rotates them so the direction
// of largest spread is horizontal.
func alignPrincipalAxis(x []Point) {
	var cx, cy float64
	for _, p := range x {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(x))
	cy /= float64(len(x))

	var sxx, syy, sxy float64
	for i := range x {
		x[i].X -= cx
		x[i].Y -= cy
		sxx += x[i].X * x[i].X
		syy += x[i].Y * x[i].Y
		sxy += x[i].X * x[i].Y
	}
	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	c, s := math.Cos(-theta), math.Sin(-theta)
	for i, p := range x {
		x[i] = Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
	}
}
