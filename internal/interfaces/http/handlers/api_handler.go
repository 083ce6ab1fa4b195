package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/application/visualization"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
	"github.com/turtacn/MolScope/pkg/errors"
)

// PlotSize is the pixel size of the static scatter download.
type PlotSize struct {
	Width  int
	Height int
}

// APIHandler serves the JSON and image endpoints used by the plot page.
type APIHandler struct {
	hover   *visualization.Service
	plot    PlotSize
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

func NewAPIHandler(hover *visualization.Service, plot PlotSize, metrics *prometheus.AppMetrics, logger logging.Logger) *APIHandler {
	if plot.Width <= 0 || plot.Height <= 0 {
		plot = PlotSize{Width: 800, Height: 600}
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &APIHandler{hover: hover, plot: plot, metrics: metrics, logger: logger}
}

// TableResponse is the body of GET /api/table.
type TableResponse struct {
	Count   int               `json:"count"`
	Records []molecule.Record `json:"records"`
}

// Hover handles POST /api/hover.
func (h *APIHandler) Hover(c *gin.Context) {
	var ev visualization.HoverEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed hover event"))
		return
	}
	table, err := sessionTable(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	// A page plotted from a replaced table must not show the new table's
	// molecules at its old positions.
	if state := middleware.GetSession(c); !state.Data.IsCurrent(ev.Generation) {
		h.metrics.RecordHover(prometheus.HoverStale)
		h.logger.Debug("hover from a replaced table",
			logging.String("generation", ev.Generation),
			logging.String("request_id", middleware.GetRequestID(c)))
		c.JSON(http.StatusOK, visualization.Hidden)
		return
	}

	tip, err := h.hover.Hover(c.Request.Context(), table, &ev)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tip)
}

// Table handles GET /api/table.
func (h *APIHandler) Table(c *gin.Context) {
	table, err := sessionTable(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, TableResponse{Count: len(table), Records: table})
}

// PlotPNG handles GET /plot.png, a static rendering of the scatter.
func (h *APIHandler) PlotPNG(c *gin.Context) {
	table, err := sessionTable(c)
	if err != nil {
		writeAppError(c, err)
		return
	}

	timer := prometheus.NewTimer(h.metrics.RenderDuration.WithLabelValues("scatter"))
	png, err := visualization.RenderScatterPNG(table, h.plot.Width, h.plot.Height)
	timer.ObserveDuration()
	if err != nil {
		h.logger.Error("scatter render failed", logging.Err(err), logging.Int("molecules", len(table)))
		writeAppError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="molscope.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
