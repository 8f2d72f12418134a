package pressfront

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eringen/pressfront/views"
)

const sessionName = "pressfront_session"

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.Log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
				"ip":         v.RemoteIP,
			}).Info("request")
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "pressfront",
		Registerer: a.Registry,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/metrics" || strings.HasPrefix(path, "/assets/")
		},
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/metrics"
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'; frame-src https://www.youtube.com https://player.vimeo.com; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(a.corsMiddleware())

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			return isAPIPath(c.Request().URL.Path)
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/assets") ||
				isAPIPath(path) ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt" ||
				path == "/healthz" || path == "/metrics"
		},
	}))

	e.Use(cacheControlMiddleware)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// corsMiddleware answers preflights and sets CORS headers on /api/* only.
// The HTML pages stay same-origin.
func (a *App) corsMiddleware() echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: a.Config.CORSOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	wrapped := echo.WrapMiddleware(c.Handler)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withCORS := wrapped(next)
		return func(ctx echo.Context) error {
			if !isAPIPath(ctx.Request().URL.Path) {
				return next(ctx)
			}
			return withCORS(ctx)
		}
	}
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/assets/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		case isAPIPath(path) || path == "/healthz" || path == "/metrics":
			c.Response().Header().Set("Cache-Control", "no-store")
		case strings.HasPrefix(path, "/posts/") || strings.HasPrefix(path, "/contact"):
			// These pages carry a CSRF token and flash messages.
			c.Response().Header().Set("Cache-Control", "private, no-cache")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=300")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.Registry})
}

// Flash kinds stored in the session.
const (
	flashOK    = "ok"
	flashError = "error"
)

// setFlash stores a one-shot message for the next page view.
func setFlash(c echo.Context, ok bool, msg string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	kind := flashError
	if ok {
		kind = flashOK
	}
	sess.AddFlash(msg, kind)
	return sess.Save(c.Request(), c.Response())
}

// popFlash returns and clears the pending flash, if any.
func popFlash(c echo.Context) *views.Flash {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	var f *views.Flash
	for _, kind := range []string{flashOK, flashError} {
		msgs := sess.Flashes(kind)
		if len(msgs) == 0 {
			continue
		}
		if msg, ok := msgs[len(msgs)-1].(string); ok {
			f = &views.Flash{OK: kind == flashOK, Message: msg}
		}
	}
	if f != nil {
		_ = sess.Save(c.Request(), c.Response())
	}
	return f
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
