// Package depiction draws 2D structure images of molecules with fogleman/gg.
package depiction

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/pkg/errors"
)

// DataURIPrefix precedes the base64 payload of an inline PNG.
const DataURIPrefix = "data:image/png;base64,"

// DataURI encodes PNG bytes as an inline image URI.
func DataURI(png []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// Options configure a Renderer.
type Options struct {
	// Size is the edge length of the square PNG in pixels.
	Size int
	// MaxFontSize caps the label font size in points.
	MaxFontSize float64
}

// Renderer implements molecule.ImageRenderer.
type Renderer struct {
	size    int
	maxFont float64
	logger  logging.Logger
}

// NewRenderer builds a Renderer.  Zero options fall back to 300px and 14pt.
func NewRenderer(opts Options, logger logging.Logger) *Renderer {
	if opts.Size <= 0 {
		opts.Size = 300
	}
	if opts.MaxFontSize <= 0 {
		opts.MaxFontSize = 14
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Renderer{size: opts.Size, maxFont: opts.MaxFontSize, logger: logger}
}

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func regularFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return goFont, fontErr
}

// RGB colours per element; carbon and anything unlisted are black.
var elementColors = map[string][3]float64{
	"N":  {0.13, 0.20, 0.85},
	"O":  {0.85, 0.10, 0.10},
	"S":  {0.80, 0.80, 0.00},
	"F":  {0.10, 0.65, 0.10},
	"Cl": {0.10, 0.65, 0.10},
	"Br": {0.60, 0.20, 0.10},
	"I":  {0.58, 0.00, 0.58},
	"P":  {1.00, 0.50, 0.00},
}

// frame maps layout coordinates to pixels.
type frame struct {
	scale, cx, cy, half float64
}

func (f frame) px(p molecule.Point) (float64, float64) {
	return f.half + (p.X-f.cx)*f.scale, f.half - (p.Y-f.cy)*f.scale
}

// labelBox is the extent of an atom label around the atom position.
type labelBox struct {
	left, right, top, bottom float64
}

// RenderPNG draws mol on a white square canvas and returns the PNG bytes.
func (r *Renderer) RenderPNG(ctx context.Context, mol *molecule.Molecule) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mol == nil || len(mol.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "nothing to render")
	}
	ttf, err := regularFont()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "load font")
	}

	pts, err := molecule.Layout(ctx, mol)
	if err != nil {
		return nil, err
	}
	fr, fontSize := r.fit(pts)

	face := truetype.NewFace(ttf, &truetype.Options{Size: fontSize})
	small := truetype.NewFace(ttf, &truetype.Options{Size: fontSize * 0.7})
	defer face.Close()
	defer small.Close()

	dc := gg.NewContext(r.size, r.size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetLineWidth(math.Max(1, fontSize/10))
	dc.SetLineCapRound()

	pix := make([][2]float64, len(pts))
	for i, p := range pts {
		x, y := fr.px(p)
		pix[i] = [2]float64{x, y}
	}

	boxes := make([]labelBox, len(mol.Atoms))
	for i := range mol.Atoms {
		boxes[i] = r.drawLabel(dc, mol, i, pix, fontSize, face, small)
	}

	dc.SetRGB(0, 0, 0)
	for bi := range mol.Bonds {
		drawBond(dc, mol, bi, pix, boxes, fontSize)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "encode png")
	}
	r.logger.Debug("molecule rendered",
		logging.String("smiles", mol.SMILES),
		logging.Int("atoms", len(mol.Atoms)),
		logging.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// fit chooses the pixel scale so the layout fills the canvas with padding and
// returns the label font size for that scale.
func (r *Renderer) fit(pts []molecule.Point) (frame, float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	size := float64(r.size)
	maxBond := size / 6
	pad := size * 0.12
	avail := size - 2*pad

	scale := maxBond
	if w := maxX - minX; w > 0 {
		scale = math.Min(scale, avail/w)
	}
	if h := maxY - minY; h > 0 {
		scale = math.Min(scale, avail/h)
	}

	fontSize := math.Min(scale*0.45, math.Min(r.maxFont, size/16))
	fontSize = math.Max(fontSize, 6)
	return frame{scale: scale, cx: (minX + maxX) / 2, cy: (minY + maxY) / 2, half: size / 2}, fontSize
}

func needsLabel(mol *molecule.Molecule, idx int) bool {
	a := mol.Atoms[idx]
	return a.Number != 6 || a.Charge != 0 || a.Isotope != 0 || mol.Degree(idx) == 0
}

func chargeText(q int) string {
	switch {
	case q == 1:
		return "+"
	case q == -1:
		return "-"
	case q > 1:
		return strconv.Itoa(q) + "+"
	default:
		return strconv.Itoa(-q) + "-"
	}
}

// hydrogensLeft puts the H on the side away from the bonds.
func hydrogensLeft(mol *molecule.Molecule, idx int, pix [][2]float64) bool {
	sum := 0.0
	for _, nb := range mol.Neighbors(idx) {
		sum += pix[nb.Atom][0] - pix[idx][0]
	}
	return sum > 0
}

func (r *Renderer) drawLabel(dc *gg.Context, mol *molecule.Molecule, idx int, pix [][2]float64,
	fontSize float64, face, small font.Face) labelBox {
	if !needsLabel(mol, idx) {
		return labelBox{}
	}
	a := mol.Atoms[idx]
	x, y := pix[idx][0], pix[idx][1]

	if c, ok := elementColors[a.Symbol]; ok {
		dc.SetRGB(c[0], c[1], c[2])
	} else {
		dc.SetRGB(0, 0, 0)
	}

	dc.SetFontFace(face)
	w, _ := dc.MeasureString(a.Symbol)
	box := labelBox{left: w / 2, right: w / 2, top: fontSize / 2, bottom: fontSize / 2}
	dc.DrawStringAnchored(a.Symbol, x, y, 0.5, 0.5)

	if a.HCount > 0 {
		hw, _ := dc.MeasureString("H")
		sub := ""
		var sw float64
		if a.HCount > 1 {
			sub = strconv.Itoa(a.HCount)
			dc.SetFontFace(small)
			sw, _ = dc.MeasureString(sub)
		}
		start := x + box.right
		if hydrogensLeft(mol, idx, pix) {
			start = x - box.left - hw - sw
			box.left += hw + sw
		} else {
			box.right += hw + sw
		}
		dc.SetFontFace(face)
		dc.DrawStringAnchored("H", start, y, 0, 0.5)
		if sub != "" {
			dc.SetFontFace(small)
			dc.DrawStringAnchored(sub, start+hw, y+fontSize*0.3, 0, 0.5)
		}
	}

	dc.SetFontFace(small)
	if a.Charge != 0 {
		q := chargeText(a.Charge)
		qw, _ := dc.MeasureString(q)
		dc.DrawStringAnchored(q, x+box.right, y-fontSize*0.45, 0, 0.5)
		box.right += qw
	}
	if a.Isotope != 0 {
		iso := strconv.Itoa(a.Isotope)
		iw, _ := dc.MeasureString(iso)
		dc.DrawStringAnchored(iso, x-box.left-iw, y-fontSize*0.45, 0, 0.5)
		box.left += iw
	}

	// margin between label and bond ends
	m := fontSize * 0.1
	box.left += m
	box.right += m
	box.top += m
	box.bottom += m
	return box
}

func drawBond(dc *gg.Context, mol *molecule.Molecule, bi int, pix [][2]float64, boxes []labelBox, fontSize float64) {
	b := mol.Bonds[bi]
	x1, y1 := pix[b.From][0], pix[b.From][1]
	x2, y2 := pix[b.To][0], pix[b.To][1]
	p1 := clipToBox(x1, y1, x2, y2, boxes[b.From])
	p2 := clipToBox(x2, y2, x1, y1, boxes[b.To])

	dx, dy := p2[0]-p1[0], p2[1]-p1[1]
	length := math.Hypot(dx, dy)
	if length < 1e-6 {
		return
	}
	nx, ny := -dy/length, dx/length
	gap := fontSize / 3

	switch b.Order {
	case molecule.BondDouble:
		if cx, cy, ok := ringCentre(mol, bi, pix); ok {
			mx, my := (p1[0]+p2[0])/2, (p1[1]+p2[1])/2
			if (cx-mx)*nx+(cy-my)*ny < 0 {
				nx, ny = -nx, -ny
			}
			sx, sy := dx*0.15, dy*0.15
			line(dc, p1[0], p1[1], p2[0], p2[1])
			line(dc, p1[0]+nx*gap+sx, p1[1]+ny*gap+sy, p2[0]+nx*gap-sx, p2[1]+ny*gap-sy)
			return
		}
		h := gap / 2
		line(dc, p1[0]+nx*h, p1[1]+ny*h, p2[0]+nx*h, p2[1]+ny*h)
		line(dc, p1[0]-nx*h, p1[1]-ny*h, p2[0]-nx*h, p2[1]-ny*h)
	case molecule.BondTriple, molecule.BondQuadruple:
		line(dc, p1[0], p1[1], p2[0], p2[1])
		line(dc, p1[0]+nx*gap, p1[1]+ny*gap, p2[0]+nx*gap, p2[1]+ny*gap)
		line(dc, p1[0]-nx*gap, p1[1]-ny*gap, p2[0]-nx*gap, p2[1]-ny*gap)
	default:
		line(dc, p1[0], p1[1], p2[0], p2[1])
	}
}

func line(dc *gg.Context, x1, y1, x2, y2 float64) {
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
}

// ringCentre returns the pixel centroid of the smallest ring holding bond bi.
func ringCentre(mol *molecule.Molecule, bi int, pix [][2]float64) (float64, float64, bool) {
	ri := mol.Rings()
	best := -1
	for r, bonds := range ri.RingBonds {
		for _, b := range bonds {
			if b == bi && (best < 0 || len(ri.Rings[r]) < len(ri.Rings[best])) {
				best = r
			}
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	var cx, cy float64
	for _, a := range ri.Rings[best] {
		cx += pix[a][0]
		cy += pix[a][1]
	}
	n := float64(len(ri.Rings[best]))
	return cx / n, cy / n, true
}

// clipToBox moves the bond end at (x, y), heading to (x2, y2), onto the
// border of the label box around (x, y).
func clipToBox(x, y, x2, y2 float64, box labelBox) [2]float64 {
	w := box.right
	if x2 <= x {
		w = box.left
	}
	h := box.bottom
	if y2 < y {
		h = box.top
	}
	if w == 0 && h == 0 {
		return [2]float64{x, y}
	}
	k := math.Atan2(h, w)
	sigx := math.Copysign(1, x2-x)
	sigy := math.Copysign(1, y2-y)
	absRad := math.Atan2(math.Abs(y2-y), math.Abs(x2-x))
	if absRad > k {
		return [2]float64{x + sigx*h/math.Tan(absRad), y + sigy*h}
	}
	return [2]float64{x + sigx*w, y + sigy*w*math.Tan(absRad)}
}

// RenderSMILES parses smiles and renders it.
func (r *Renderer) RenderSMILES(ctx context.Context, smiles string) ([]byte, error) {
	mol, err := molecule.Parse(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, fmt.Sprintf("cannot depict %q", smiles))
	}
	return r.RenderPNG(ctx, mol)
}

var _ molecule.ImageRenderer = (*Renderer)(nil)
