package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
	"github.com/turtacn/MolScope/internal/interfaces/http/handlers"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
	"github.com/turtacn/MolScope/internal/interfaces/http/web"
	"github.com/turtacn/MolScope/pkg/errors"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.
type RouterConfig struct {
	// Handlers
	PageHandler   *handlers.PageHandler
	APIHandler    *handlers.APIHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	SessionStore  session.Store
	SessionConfig middleware.SessionConfig
	HoverLimiter  *middleware.TokenBucketLimiter
	MaxUpload     int64
	Logging       middleware.LoggingConfig

	// Infrastructure
	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	Collector   prometheus.MetricsCollector
	MetricsPath string
	Mode        string
}

// NewRouter builds the gin engine.  Probes and metrics are mounted outside
// the session group so that scrapes never create sessions.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.NewNoopAppMetrics()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// --- Global middleware ---
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))

	// --- Probes and metrics (no session) ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.Collector.Handler()))
	}
	r.StaticFS("/static", http.FS(web.Static()))

	// --- Application (session scoped) ---
	app := r.Group("/")
	app.Use(middleware.Session(cfg.SessionStore, cfg.SessionConfig, cfg.Logger))
	registerPageRoutes(app, cfg.PageHandler, cfg.MaxUpload, cfg.Metrics)
	registerAPIRoutes(app, cfg.APIHandler, cfg.HoverLimiter, cfg.Metrics)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || cfg.PageHandler == nil {
			c.JSON(http.StatusNotFound, middleware.ErrorBody{Error: middleware.ErrorDetail{
				Code:    errors.ErrCodeNotFound.String(),
				Message: errors.DefaultMessageForCode(errors.ErrCodeNotFound),
			}})
			return
		}
		cfg.PageHandler.NotFound(c)
	})

	return r, nil
}

func registerPageRoutes(g *gin.RouterGroup, h *handlers.PageHandler, maxUpload int64, m *prometheus.AppMetrics) {
	if h == nil {
		return
	}
	g.GET("/", h.Index)
	g.POST("/", middleware.BodyLimit(maxUpload, m, h.TooLarge), h.Upload)
	g.GET("/next", h.Next)
}

func registerAPIRoutes(g *gin.RouterGroup, h *handlers.APIHandler, limiter *middleware.TokenBucketLimiter, m *prometheus.AppMetrics) {
	if h == nil {
		return
	}
	hover := []gin.HandlerFunc{}
	if limiter != nil {
		hover = append(hover, middleware.RateLimit(limiter, m, "hover"))
	}
	g.POST("/api/hover", append(hover, h.Hover)...)
	g.GET("/api/table", h.Table)
	g.GET("/plot.png", h.PlotPNG)
}
