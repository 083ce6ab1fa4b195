package visualization

import (
	"context"
	"time"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/depiction"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

// BBox is the pixel box of a hovered point as reported by Plotly.
type BBox struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// HoverPoint is one entry of Plotly's hover data.
type HoverPoint struct {
	CurveNumber int   `json:"curveNumber"`
	PointNumber *int  `json:"pointNumber"`
	BBox        *BBox `json:"bbox"`
}

// HoverEvent is the payload posted by the page on hover.  Points is null or
// empty when the cursor left the plot.  Generation names the table the
// plot was built from; empty means whatever table the session holds.
type HoverEvent struct {
	Points     []HoverPoint `json:"points"`
	Generation string       `json:"generation,omitempty"`
}

// Tooltip is the answer to a hover event.
type Tooltip struct {
	Show   bool   `json:"show"`
	BBox   *BBox  `json:"bbox,omitempty"`
	Image  string `json:"image,omitempty"`
	SMILES string `json:"smiles,omitempty"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Hidden is the tooltip for "nothing hovered".
var Hidden = Tooltip{Show: false}

// Service renders hover tooltips.
type Service struct {
	renderer     molecule.ImageRenderer
	tooltipWidth int
	metrics      *prometheus.AppMetrics
	logger       logging.Logger
}

// NewService creates a hover service.  metrics and logger may be nil.
func NewService(renderer molecule.ImageRenderer, tooltipWidth int, metrics *prometheus.AppMetrics, logger logging.Logger) *Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if tooltipWidth <= 0 {
		tooltipWidth = 250
	}
	return &Service{renderer: renderer, tooltipWidth: tooltipWidth, metrics: metrics, logger: logger}
}

// Hover resolves the first hovered point against table and renders it.
// Without a hovered point the renderer is not called.
func (s *Service) Hover(ctx context.Context, table molecule.Table, ev *HoverEvent) (Tooltip, error) {
	if ev == nil || len(ev.Points) == 0 || ev.Points[0].PointNumber == nil {
		s.metrics.RecordHover(prometheus.HoverEmpty)
		return Hidden, nil
	}
	pt := ev.Points[0]
	idx := *pt.PointNumber

	rec, ok := table.At(idx)
	if !ok {
		s.metrics.RecordHover(prometheus.HoverFailed)
		return Hidden, errors.Newf(errors.ErrCodeMoleculeIndexOutOfRange,
			"point %d is outside the table of %d molecules", idx, len(table))
	}

	mol, err := molecule.Parse(rec.SMILES)
	if err != nil {
		s.metrics.RecordHover(prometheus.HoverFailed)
		return Hidden, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "stored SMILES no longer parses")
	}

	timer := prometheus.NewTimer(s.metrics.RenderDuration.WithLabelValues("molecule"))
	png, err := s.renderer.RenderPNG(ctx, mol)
	elapsed := timer.ObserveDuration()
	if err != nil {
		s.metrics.RecordHover(prometheus.HoverFailed)
		s.logger.Error("hover render failed", logging.String("smiles", rec.SMILES), logging.Err(err))
		return Hidden, errors.Wrap(err, errors.ErrCodeRenderFailed, "render molecule")
	}

	s.metrics.RecordHover(prometheus.HoverRendered)
	s.logger.Debug("hover rendered",
		logging.Int("point", idx),
		logging.String("smiles", rec.SMILES),
		logging.Duration("elapsed", elapsed.Round(time.Microsecond)))

	return Tooltip{
		Show:   true,
		BBox:   pt.BBox,
		Image:  depiction.DataURI(png),
		SMILES: rec.SMILES,
		Name:   rec.Name,
		Width:  s.tooltipWidth,
	}, nil
}
