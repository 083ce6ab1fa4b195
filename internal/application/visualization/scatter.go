package visualization

import (
	"bytes"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/pkg/errors"
)

var pointColor = drawing.ColorFromHex("1f77b4")

// RenderScatterPNG draws the same scatter as BuildFigure as a static PNG.
func RenderScatterPNG(table molecule.Table, width, height int) ([]byte, error) {
	if len(table) == 0 {
		return nil, errors.New(errors.ErrCodeMoleculeTableMissing, "no molecules to plot")
	}
	fig := BuildFigure(table)
	xs, ys := fig.Data[0].X, fig.Data[0].Y
	if len(xs) == 1 {
		// go-chart cannot range a single-value series; draw the point twice.
		xs, ys = []float64{xs[0], xs[0]}, []float64{ys[0], ys[0]}
	}

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  XAxisTitle,
			Range: paddedRange(xs),
		},
		YAxis: chart.YAxis{
			Name:  YAxisTitle,
			Range: paddedRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "molecules",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    pointColor,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePlotFailed, "render scatter")
	}
	return buf.Bytes(), nil
}

// paddedRange spans vals with a 5% margin and never collapses to a point.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
