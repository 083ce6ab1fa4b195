package config

import "time"

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second

	// DefaultUploadMaxBytes is the 5 KB request cap.
	DefaultUploadMaxBytes = 5 * 1024

	DefaultSessionBackend       = "memory"
	DefaultSessionTTL           = 24 * time.Hour
	DefaultSessionCookieName    = "molscope_session"
	DefaultSessionSweepInterval = 5 * time.Minute

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisKeyPrefix = "molscope:session:"

	DefaultDepictionImageSize    = 300
	DefaultDepictionTooltipWidth = 250
	DefaultDepictionFontSize     = 14

	DefaultPlotlyURL          = "https://cdn.plot.ly/plotly-2.35.2.min.js"
	DefaultPlotStaticWidth    = 800
	DefaultPlotStaticHeight   = 600
	DefaultRateLimitHoverRPS  = 20
	DefaultRateLimitHoverBurst = 40

	DefaultMetricsNamespace = "molscope"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultAllowedExtensions lists the upload extensions accepted by default.
var DefaultAllowedExtensions = []string{"txt"}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly configured values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = DefaultUploadMaxBytes
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultSessionCookieName
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = DefaultSessionSweepInterval
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	if cfg.Depiction.ImageSize == 0 {
		cfg.Depiction.ImageSize = DefaultDepictionImageSize
	}
	if cfg.Depiction.TooltipWidth == 0 {
		cfg.Depiction.TooltipWidth = DefaultDepictionTooltipWidth
	}
	if cfg.Depiction.FontSize == 0 {
		cfg.Depiction.FontSize = DefaultDepictionFontSize
	}

	if cfg.Plot.PlotlyURL == "" {
		cfg.Plot.PlotlyURL = DefaultPlotlyURL
	}
	if cfg.Plot.StaticWidth == 0 {
		cfg.Plot.StaticWidth = DefaultPlotStaticWidth
	}
	if cfg.Plot.StaticHeight == 0 {
		cfg.Plot.StaticHeight = DefaultPlotStaticHeight
	}

	if cfg.RateLimit.HoverRPS == 0 {
		cfg.RateLimit.HoverRPS = DefaultRateLimitHoverRPS
	}
	if cfg.RateLimit.HoverBurst == 0 {
		cfg.RateLimit.HoverBurst = DefaultRateLimitHoverBurst
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config with every default applied.  It is valid as-is.
func Default() *Config {
	cfg := &Config{}
	cfg.RateLimit.Enabled = true
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
