// Package pressfront is a server-rendered front end for a headless WordPress
// blog, built with Go, Echo, and templ. It lists and renders posts, pages and
// categories fetched from the WordPress REST API, threads comments, builds
// SEO metadata, and proxies contact and comment submissions back to WordPress.
//
// Page markup comes from the ViewFuncs struct. The defaults render the
// embedded templates in package views; sites can swap any of them.
package pressfront

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/eringen/pressfront/cache"
	"github.com/eringen/pressfront/forms"
	"github.com/eringen/pressfront/views"
	"github.com/eringen/pressfront/wp"
)

// ViewFuncs holds the components the handlers render. This is the
// inversion-of-control point that lets a site own its markup.
type ViewFuncs struct {
	Home      func(views.HomePage) templ.Component
	PostCards func(views.Listing) templ.Component
	Category  func(views.CategoryPage) templ.Component
	Post      func(views.PostPage) templ.Component
	Text      func(views.TextPage) templ.Component
	Contact   func(views.ContactPage) templ.Component
	Error     func(views.ErrorPage) templ.Component
}

// DefaultViews returns the components backed by the embedded templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:      views.Home,
		PostCards: views.PostCards,
		Category:  views.Category,
		Post:      views.Post,
		Text:      views.Text,
		Contact:   views.Contact,
		Error:     views.Error,
	}
}

// App is the central pressfront application. It wires together the
// WordPress client, the form proxy, the response cache, handlers,
// middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	WP       *wp.Client
	Forms    *forms.Proxy
	Cache    cache.Cache
	Views    ViewFuncs
	Log      *logrus.Logger
	Registry *prometheus.Registry

	submitLimiter *SubmitLimiter
	customRoutes  []func(*App)
	httpClient    *http.Client
}

// New creates an App with middleware and routes installed. The returned App
// serves requests through a.Echo without Start being called.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	if a.Log == nil {
		log, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, err
		}
		a.Log = log
	}

	if a.Config.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("pressfront: session secret: %w", err)
		}
		a.Config.SessionSecret = secret
		a.Log.Warn("SESSION_SECRET not set; using a random secret, flash messages will not survive restarts")
	}

	if a.Cache == nil {
		c, err := cache.Open(cache.Options{
			Backend:      cfg.CacheBackend,
			TTL:          cfg.CacheTTL,
			DatabasePath: cfg.CacheDatabasePath,
			RedisAddr:    cfg.RedisAddr,
			RedisDB:      cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("pressfront: init cache: %w", err)
		}
		a.Cache = c
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.WP = wp.New(wp.Config{
		BaseURL:    cfg.WordPressAPIURL,
		Timeout:    cfg.UpstreamTimeout,
		RPS:        cfg.UpstreamRPS,
		Cache:      a.Cache,
		CacheTTL:   cfg.CacheTTL,
		Logger:     a.Log.WithField("component", "wp"),
		Metrics:    wp.NewMetrics(a.Registry),
		HTTPClient: a.httpClient,
	})
	a.Forms = forms.NewProxy(forms.Config{
		APIBase:    cfg.WordPressAPIURL,
		FormID:     cfg.WPFormID,
		User:       cfg.WordPressUser,
		Password:   cfg.WordPressPass,
		HTTPClient: a.httpClient,
		Logger:     a.Log.WithField("component", "forms"),
	})
	a.submitLimiter = NewSubmitLimiter(cfg.SubmitLimit, cfg.SubmitWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if !a.WP.Configured() {
		a.Log.Warn("WORDPRESS_API_URL not set; content pages will report the missing setting")
	}
	return a, nil
}

// Start listens on Config.Addr until the server is shut down.
func (a *App) Start() error {
	a.Log.WithFields(logrus.Fields{
		"addr":      a.Config.Addr,
		"wordpress": a.WP.BaseURL(),
		"cache":     a.Config.CacheBackend,
	}).Info("pressfront starting")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/assets", views.Assets)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", a.metricsHandler())

	e.GET("/", a.handleHome)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/posts/:slug/", a.handlePost)
	e.POST("/posts/:slug/comments/", a.handleCommentForm)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactForm)

	e.POST("/api/contact", a.handleAPIContact)
	e.POST("/api/comments", a.handleAPIComments)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.submitLimiter != nil {
		a.submitLimiter.Stop()
	}
	if a.Cache != nil {
		return a.Cache.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
