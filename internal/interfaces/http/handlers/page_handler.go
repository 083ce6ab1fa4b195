package handlers

import (
	"crypto/subtle"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/application/ingestion"
	"github.com/turtacn/MolScope/internal/application/visualization"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Form field names of the upload page.
const (
	FieldFile      = "file"
	FieldCSRFToken = "csrf_token"
)

// FlashUploadFirst is shown when the plot page is opened without a table.
const FlashUploadFirst = "Please upload a file first."

// PageConfig holds the settings the HTML pages depend on.
type PageConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
	PlotlyURL         string
}

// PageHandler serves the upload form and the plot page.
type PageHandler struct {
	ingest  ingestion.Service
	cfg     PageConfig
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

func NewPageHandler(ingest ingestion.Service, cfg PageConfig, metrics *prometheus.AppMetrics, logger logging.Logger) *PageHandler {
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"txt"}
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PageHandler{ingest: ingest, cfg: cfg, metrics: metrics, logger: logger}
}

// indexView is the data of index.html.
type indexView struct {
	MaxKB       int64
	Accept      string
	CSRFToken   string
	Flashes     []string
	FieldErrors []string
}

// plotView is the data of plot.html.
type plotView struct {
	Count      int
	Generation string
	Figure     visualization.Figure
	PlotlyURL  string
}

// errorView is the data of error.html.
type errorView struct {
	Status  int
	Title   string
	Message string
}

// FormResponse is the JSON form of GET / for programmatic clients.
type FormResponse struct {
	CSRFToken         string   `json:"csrf_token"`
	MaxBytes          int64    `json:"max_bytes"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// UploadResponse is the JSON answer to an accepted upload.
type UploadResponse struct {
	Count      int    `json:"count"`
	Generation string `json:"generation"`
	Next       string `json:"next"`
}

// wantsJSON reports whether the client asked for JSON rather than pages.
func wantsJSON(c *gin.Context) bool {
	return c.GetHeader("Accept") != "" && c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// Index handles GET /.
func (h *PageHandler) Index(c *gin.Context) {
	if wantsJSON(c) {
		state := middleware.GetSession(c)
		token, err := state.Data.EnsureCSRFToken()
		if err != nil {
			writeAppError(c, err)
			return
		}
		if err := middleware.SaveSession(c); err != nil {
			writeAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, FormResponse{
			CSRFToken:         token,
			MaxBytes:          h.cfg.MaxBytes,
			AllowedExtensions: h.cfg.AllowedExtensions,
		})
		return
	}
	h.renderIndex(c, http.StatusOK, nil, nil)
}

// Upload handles POST /.  A valid file replaces the session table and
// redirects to the plot; anything else re-renders the form and leaves the
// previous table untouched.  JSON clients get the same outcomes as JSON.
func (h *PageHandler) Upload(c *gin.Context) {
	state := middleware.GetSession(c)

	if err := c.Request.ParseMultipartForm(h.cfg.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.RecordUpload(prometheus.OutcomeTooLarge, tooLarge.Limit, 0)
			h.TooLarge(c)
			return
		}
		// Not multipart at all: treated as a submission without a file.
		h.logger.Debug("upload form unreadable", logging.Err(err))
	}

	token := c.PostForm(FieldCSRFToken)
	if state.Data.CSRFToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(state.Data.CSRFToken)) != 1 {
		h.reject(c, errors.ErrCodeUploadCSRF)
		return
	}

	header, err := c.FormFile(FieldFile)
	if err != nil || header.Filename == "" {
		h.reject(c, errors.ErrCodeUploadMissingFile)
		return
	}
	if !h.allowed(header.Filename) {
		h.reject(c, errors.ErrCodeUploadExtension)
		return
	}
	if header.Size == 0 {
		h.reject(c, errors.ErrCodeUploadEmpty)
		return
	}

	table, err := h.readTable(c, header)
	if err != nil {
		if lineErr, ok := ingestion.AsLineError(err); ok {
			h.metrics.RecordUpload(prometheus.OutcomeInvalid, header.Size, 0)
			if wantsJSON(c) {
				writeAppError(c, errors.New(errors.ErrCodeValidation, lineErr.UserMessage()))
				return
			}
			h.renderIndex(c, http.StatusUnprocessableEntity, []string{lineErr.UserMessage()}, nil)
			return
		}
		if errors.IsCode(err, errors.ErrCodeUploadEmpty) {
			h.reject(c, errors.ErrCodeUploadEmpty)
			return
		}
		h.metrics.RecordUpload(prometheus.OutcomeRejected, header.Size, 0)
		h.logger.Error("upload failed", logging.Err(err), logging.String("request_id", middleware.GetRequestID(c)))
		h.renderError(c, err)
		return
	}

	generation := state.Data.SetTable(table)
	state.MarkDirty()
	if err := middleware.SaveSession(c); err != nil {
		h.logger.Error("session save failed", logging.Err(err), logging.String("request_id", middleware.GetRequestID(c)))
		h.renderError(c, err)
		return
	}
	h.metrics.RecordUpload(prometheus.OutcomeAccepted, header.Size, len(table))
	if wantsJSON(c) {
		c.JSON(http.StatusOK, UploadResponse{Count: len(table), Generation: generation, Next: "/next"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/next")
}

// Next handles GET /next, the interactive plot of the session table.
func (h *PageHandler) Next(c *gin.Context) {
	state := middleware.GetSession(c)
	if !state.Data.HasTable() {
		state.Data.AddFlash(FlashUploadFirst)
		state.MarkDirty()
		if err := middleware.SaveSession(c); err != nil {
			h.logger.Warn("session save failed", logging.Err(err))
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "plot.html", plotView{
		Count:      len(state.Data.Table),
		Generation: state.Data.Generation,
		Figure:     visualization.BuildFigure(state.Data.Table),
		PlotlyURL:  h.cfg.PlotlyURL,
	})
}

// TooLarge writes the 413 page.  It is also the reject hook of BodyLimit.
func (h *PageHandler) TooLarge(c *gin.Context) {
	if wantsJSON(c) {
		writeAppError(c, errors.New(errors.ErrCodeUploadTooLarge, errors.DefaultMessageForCode(errors.ErrCodeUploadTooLarge)))
		return
	}
	c.HTML(http.StatusRequestEntityTooLarge, "error.html", errorView{
		Status:  http.StatusRequestEntityTooLarge,
		Title:   errors.DefaultMessageForCode(errors.ErrCodeUploadTooLarge),
		Message: "The data value transmitted exceeds the capacity limit.",
	})
	c.Abort()
}

func (h *PageHandler) readTable(c *gin.Context, header *multipart.FileHeader) (molecule.Table, error) {
	f, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUploadUnreadable, "open upload")
	}
	defer f.Close()
	return h.ingest.Ingest(c.Request.Context(), f)
}

func (h *PageHandler) allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, a := range h.cfg.AllowedExtensions {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// reject re-renders the form with a field error for code.
func (h *PageHandler) reject(c *gin.Context, code errors.ErrorCode) {
	h.metrics.RecordUpload(prometheus.OutcomeRejected, 0, 0)
	h.logger.Debug("upload form rejected", logging.String("code", code.String()))
	if wantsJSON(c) {
		writeAppError(c, errors.New(code, errors.DefaultMessageForCode(code)))
		return
	}
	h.renderIndex(c, http.StatusBadRequest, nil, []string{errors.DefaultMessageForCode(code)})
}

func (h *PageHandler) renderIndex(c *gin.Context, status int, flashes, fieldErrors []string) {
	state := middleware.GetSession(c)
	token, err := state.Data.EnsureCSRFToken()
	if err != nil {
		h.renderError(c, err)
		return
	}
	pending := state.Data.PopFlashes()
	state.MarkDirty()
	if err := middleware.SaveSession(c); err != nil {
		h.logger.Warn("session save failed", logging.Err(err))
	}

	accept := make([]string, len(h.cfg.AllowedExtensions))
	for i, ext := range h.cfg.AllowedExtensions {
		accept[i] = "." + ext
	}
	c.HTML(status, "index.html", indexView{
		MaxKB:       h.cfg.MaxBytes / 1024,
		Accept:      strings.Join(accept, ","),
		CSRFToken:   token,
		Flashes:     append(pending, flashes...),
		FieldErrors: fieldErrors,
	})
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	if wantsJSON(c) {
		writeAppError(c, err)
		return
	}
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	_ = c.Error(err)
	c.HTML(status, "error.html", errorView{
		Status:  status,
		Title:   http.StatusText(status),
		Message: errors.UserMessage(err),
	})
	c.Abort()
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", errorView{
		Status:  http.StatusNotFound,
		Title:   http.StatusText(http.StatusNotFound),
		Message: "The requested URL was not found on the server.",
	})
}
