package pressfront

import (
	"html/template"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/seo"
	"github.com/eringen/pressfront/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// page fills the layout model shared by every page. jsonld entries come from
// the seo package and are already safe to embed in a script element.
func (a *App) page(c echo.Context, meta seo.Metadata, jsonld ...string) views.Page {
	scripts := make([]template.JS, 0, len(jsonld))
	for _, s := range jsonld {
		if s != "" {
			scripts = append(scripts, template.JS(s))
		}
	}
	return views.Page{
		Site:   a.site(),
		Meta:   meta,
		JSONLD: scripts,
		Path:   c.Request().URL.Path,
		CSRF:   CsrfToken(c),
	}
}

// fallback is the metadata used when WordPress has no Yoast data for a page.
func (a *App) fallback(title, description, pageURL string) seo.Fallback {
	return seo.Fallback{
		Title:              title,
		Description:        description,
		URL:                pageURL,
		Image:              a.Config.Image,
		SiteName:           a.Config.Name,
		Author:             a.Config.Author,
		Type:               seo.TypeWebsite,
		GoogleVerification: a.Config.GoogleSiteVerification,
	}
}

func (a *App) publisher() seo.Publisher {
	return seo.Publisher{Name: a.Config.Name, LogoURL: a.Config.Image}
}

func (a *App) renderError(c echo.Context, code int, title, message string) error {
	meta := seo.Build(nil, a.fallback(title+" | "+a.Config.Name, message, ""))
	meta.Robots = "noindex, nofollow"
	meta.GoogleBot = "noindex, nofollow"
	return RenderStatus(c, code, a.Views.Error(views.ErrorPage{
		Page:    a.page(c, meta),
		Code:    code,
		Title:   title,
		Message: message,
	}))
}
