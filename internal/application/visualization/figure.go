// Package visualization builds the interactive scatter plot of a descriptor
// table and answers its hover callbacks.
package visualization

import "github.com/turtacn/MolScope/internal/domain/molecule"

// Axis titles.  The y title is shown to users verbatim.
const (
	XAxisTitle = "clogP"
	YAxisTitle = "Synthetic accessibility score"
)

// Figure is a Plotly figure: the JSON is passed straight to Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one scatter trace.  Hover labels are turned off so the custom
// tooltip is the only thing shown on hover.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	X             []float64 `json:"x"`
	Y             []float64 `json:"y"`
	CustomData    []string  `json:"customdata"`
	HoverInfo     string    `json:"hoverinfo"`
	HoverTemplate *string   `json:"hovertemplate"`
	Marker        Marker    `json:"marker"`
}

type Marker struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

type Layout struct {
	Title     Title  `json:"title"`
	XAxis     Axis   `json:"xaxis"`
	YAxis     Axis   `json:"yaxis"`
	HoverMode string `json:"hovermode"`
	Margin    Margin `json:"margin"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title    Title `json:"title"`
	ZeroLine bool  `json:"zeroline"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// BuildFigure returns a scatter with one point per record, in table order,
// so that a point's index is its row in table.
func BuildFigure(table molecule.Table) Figure {
	x := make([]float64, len(table))
	y := make([]float64, len(table))
	for i, rec := range table {
		x[i] = rec.LogP
		y[i] = rec.SAScore
	}

	return Figure{
		Data: []Trace{{
			Type:       "scatter",
			Mode:       "markers",
			X:          x,
			Y:          y,
			CustomData: table.SMILES(),
			HoverInfo:  "none",
			Marker:     Marker{Size: 9, Color: "#1f77b4"},
		}},
		Layout: Layout{
			Title:     Title{Text: "Interactive Visualization"},
			XAxis:     Axis{Title: Title{Text: XAxisTitle}},
			YAxis:     Axis{Title: Title{Text: YAxisTitle}},
			HoverMode: "closest",
			Margin:    Margin{L: 70, R: 30, T: 60, B: 60},
		},
	}
}
