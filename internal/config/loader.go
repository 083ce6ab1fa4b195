package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "MOLSCOPE"

// newViper builds a Viper instance with YAML file type, MOLSCOPE_ env
// binding, "." → "_" key mapping, and every known key registered with its
// default so that environment overrides reach Unmarshal even without a file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)
	return v
}

func registerDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
	v.SetDefault("upload.allowed_extensions", d.Upload.AllowedExtensions)

	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.cookie_name", d.Session.CookieName)
	v.SetDefault("session.cookie_secure", d.Session.CookieSecure)
	v.SetDefault("session.sweep_interval", d.Session.SweepInterval)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("depiction.image_size", d.Depiction.ImageSize)
	v.SetDefault("depiction.tooltip_width", d.Depiction.TooltipWidth)
	v.SetDefault("depiction.font_size", d.Depiction.FontSize)

	v.SetDefault("plot.plotly_url", d.Plot.PlotlyURL)
	v.SetDefault("plot.static_width", d.Plot.StaticWidth)
	v.SetDefault("plot.static_height", d.Plot.StaticHeight)

	v.SetDefault("ratelimit.enabled", d.RateLimit.Enabled)
	v.SetDefault("ratelimit.hover_rps", d.RateLimit.HoverRPS)
	v.SetDefault("ratelimit.hover_burst", d.RateLimit.HoverBurst)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the YAML file at configPath, merges MOLSCOPE_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from MOLSCOPE_* environment variables and
// defaults only, e.g. MOLSCOPE_SESSION_BACKEND=redis MOLSCOPE_REDIS_ADDR=redis:6379.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when it is non-empty and falls back to
// LoadFromEnv otherwise.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and calls onChange with the re-parsed Config on
// every write.  Invalid edits are reported to onError (when non-nil) and
// never reach onChange.  Callers apply only the settings that are safe to
// change at runtime (log level, hover rate limit).
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on any error.  main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
