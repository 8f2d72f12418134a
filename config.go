package pressfront

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/eringen/pressfront/cache"
)

// SiteConfig holds all configuration for a pressfront site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD
	Image       string `yaml:"image"`       // Default share image

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	WordPressAPIURL string        `yaml:"wordpress_api_url"` // e.g. https://example.com/wp-json/wp/v2
	WPFormID        string        `yaml:"wpform_id"`         // WPForms id of the contact form
	WordPressUser   string        `yaml:"wordpress_user"`    // basic auth for form submissions
	WordPressPass   string        `yaml:"wordpress_password"`
	CommentAuth     bool          `yaml:"comment_auth"`     // post HTML-form comments through the authenticated API
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"` // default 10s
	UpstreamRPS     float64       `yaml:"upstream_rps"`     // 0 disables the outbound throttle
	PostsPerPage    int           `yaml:"posts_per_page"`   // default 6

	CacheBackend      string        `yaml:"cache_backend"` // memory, sqlite, redis or none
	CacheTTL          time.Duration `yaml:"cache_ttl"`     // default 5min
	CacheDatabasePath string        `yaml:"cache_database_path"`
	RedisAddr         string        `yaml:"redis_addr"`
	RedisDB           int           `yaml:"redis_db"`

	SessionSecret string   `yaml:"session_secret"` // generated per process when empty
	CookieSecure  bool     `yaml:"cookie_secure"`  // Set true for HTTPS
	CORSOrigins   []string `yaml:"cors_origins"`   // allowed origins for /api/*

	SubmitLimit  int           `yaml:"submit_limit"`  // form posts per IP per window (default 5)
	SubmitWindow time.Duration `yaml:"submit_window"` // default 1min

	LogLevel  string `yaml:"log_level"`  // default info
	LogFormat string `yaml:"log_format"` // text or json

	GoogleSiteVerification string `yaml:"google_site_verification"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = 10 * time.Second
	}
	if c.PostsPerPage <= 0 {
		c.PostsPerPage = 6
	}
	if c.CacheBackend == "" {
		c.CacheBackend = cache.BackendMemory
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.CacheDatabasePath == "" {
		c.CacheDatabasePath = "data/cache.db"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.SubmitLimit <= 0 {
		c.SubmitLimit = 5
	}
	if c.SubmitWindow == 0 {
		c.SubmitWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// ContactConfigured reports whether the contact form has somewhere to go.
func (c SiteConfig) ContactConfigured() bool {
	return c.WordPressAPIURL != "" && c.WPFormID != ""
}

// LoadConfig reads the YAML file at path, when path is not empty, then applies
// environment overrides and defaults. Missing WordPress settings are not an
// error here; they surface on the requests that need them.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("pressfront: read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("pressfront: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.Image = EnvOr("SITE_IMAGE", c.Image)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.WordPressAPIURL = EnvOr("WORDPRESS_API_URL", c.WordPressAPIURL)
	c.WPFormID = EnvOr("WPFORM_ID", c.WPFormID)
	c.WordPressUser = EnvOr("WORDPRESS_BASIC_AUTH_USER", c.WordPressUser)
	c.WordPressPass = EnvOr("WORDPRESS_BASIC_AUTH_PASSWORD", c.WordPressPass)
	c.CacheBackend = EnvOr("CACHE_BACKEND", c.CacheBackend)
	c.CacheDatabasePath = EnvOr("CACHE_DATABASE_PATH", c.CacheDatabasePath)
	c.RedisAddr = EnvOr("REDIS_ADDR", c.RedisAddr)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	c.LogLevel = EnvOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = EnvOr("LOG_FORMAT", c.LogFormat)
	c.GoogleSiteVerification = EnvOr("GOOGLE_SITE_VERIFICATION", c.GoogleSiteVerification)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = c.CORSOrigins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"COMMENT_AUTH", &c.CommentAuth},
		{"COOKIE_SECURE", &c.CookieSecure},
	}
	for _, b := range bools {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("pressfront: %s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CACHE_TTL", &c.CacheTTL},
		{"UPSTREAM_TIMEOUT", &c.UpstreamTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("pressfront: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("pressfront: UPSTREAM_RPS: %w", err)
		}
		c.UpstreamRPS = rps
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the built-in page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithCache uses c instead of opening the configured backend.
func WithCache(c cache.Cache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithHTTPClient sets the client used for every WordPress request.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l *logrus.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}
