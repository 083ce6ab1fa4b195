package molecule

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func mustLayout(t *testing.T, m *Molecule) []Point {
	t.Helper()
	pts, err := Layout(context.Background(), m)
	require.NoError(t, err)
	return pts
}

func TestLayout_SmallCases(t *testing.T) {
	pts := mustLayout(t, mustParse(t, "C"))
	require.Len(t, pts, 1)
	assert.Equal(t, Point{}, pts[0])

	pts = mustLayout(t, mustParse(t, "CO"))
	require.Len(t, pts, 2)
	assert.InDelta(t, 1.0, dist(pts[0], pts[1]), 1e-9)
	assert.InDelta(t, pts[0].Y, pts[1].Y, 1e-9)
}

func TestLayout_BondLengths(t *testing.T) {
	for _, smiles := range []string{"c1ccccc1", "CCCCCC", "CC(C)O", "c1ccc2ccccc2c1"} {
		t.Run(smiles, func(t *testing.T) {
			m := mustParse(t, smiles)
			pts := mustLayout(t, m)
			require.Len(t, pts, len(m.Atoms))
			for _, b := range m.Bonds {
				assert.InDelta(t, 1.0, dist(pts[b.From], pts[b.To]), 0.2, "bond %d-%d", b.From, b.To)
			}
		})
	}
}

func TestLayout_NoOverlappingAtoms(t *testing.T) {
	m := mustParse(t, "CC(=O)Oc1ccccc1C(=O)O")
	pts := mustLayout(t, m)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			assert.Greater(t, dist(pts[i], pts[j]), 0.5, "atoms %d and %d", i, j)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	a := mustLayout(t, mustParse(t, "CC(C)Cc1ccc(cc1)C(C)C(=O)O"))
	b := mustLayout(t, mustParse(t, "CC(C)Cc1ccc(cc1)C(C)C(=O)O"))
	assert.Equal(t, a, b)
}

func TestLayout_ComponentsSideBySide(t *testing.T) {
	m := mustParse(t, "CC.O")
	pts := mustLayout(t, m)
	require.Len(t, pts, 3)
	right := math.Max(pts[0].X, pts[1].X)
	assert.InDelta(t, right+componentGap, pts[2].X, 1e-9)
}

func TestLayout_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, smiles := range []string{"CCO", strings.Repeat("C", 120), strings.Repeat("C", 400)} {
		_, err := Layout(ctx, mustParse(t, smiles))
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestLayout_LargeChainIsBoundedAndSpaced(t *testing.T) {
	// About the longest single molecule a 5 KB upload can hold.
	m := mustParse(t, strings.Repeat("C", 4900))

	start := time.Now()
	pts := mustLayout(t, m)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, pts, len(m.Atoms))
	for _, b := range m.Bonds {
		assert.InDelta(t, 1.0, dist(pts[b.From], pts[b.To]), 1e-9)
	}
	// The zig-zag keeps next-but-one neighbours at the 120 degree distance.
	assert.InDelta(t, math.Sqrt(3), dist(pts[10], pts[12]), 1e-9)
}

func TestLayout_LargeBranchedTree(t *testing.T) {
	smiles := strings.Repeat("C(C)(C)", 60) + "C"
	m := mustParse(t, smiles)
	require.Greater(t, len(m.Atoms), denseLayoutLimit)

	pts := mustLayout(t, m)
	for _, b := range m.Bonds {
		assert.InDelta(t, 1.0, dist(pts[b.From], pts[b.To]), 1e-9)
	}
}

func TestLayout_DenseComponentAtLimit(t *testing.T) {
	m := mustParse(t, strings.Repeat("C", denseLayoutLimit))

	start := time.Now()
	pts := mustLayout(t, m)
	assert.Less(t, time.Since(start), 2*time.Second)
	for _, b := range m.Bonds {
		assert.InDelta(t, 1.0, dist(pts[b.From], pts[b.To]), 0.2)
	}
}
