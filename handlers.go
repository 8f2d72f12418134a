package pressfront

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/forms"
	"github.com/eringen/pressfront/seo"
	"github.com/eringen/pressfront/views"
	"github.com/eringen/pressfront/wp"
)

const (
	feedSize        = 20
	sitemapPageSize = 100
	sitemapMaxPages = 10
)

func isPartial(c echo.Context) bool {
	return c.QueryParam("partial") == "posts"
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	q := strings.TrimSpace(c.QueryParam("q"))
	page := pageParam(c)

	list, err := a.WP.ListPosts(ctx, wp.ListQuery{Page: page, PerPage: a.Config.PostsPerPage, Search: q})
	if err != nil {
		if isPartial(c) {
			return a.fragmentError(c, err)
		}
		return err
	}
	next := nextURL("/", list, page, url.Values{"q": {q}})
	if isPartial(c) {
		return Render(c, a.Views.PostCards(listing(list, next)))
	}

	var (
		yoast *seo.YoastHead
		intro template.HTML
	)
	home, err := a.WP.FreshPageBySlug(ctx, "home")
	switch {
	case err == nil:
		yoast = home.Yoast
		intro = template.HTML(content.Normalize(home.Excerpt.Rendered))
	case !errors.Is(err, wp.ErrNotFound):
		a.Log.WithError(err).Warn("home page metadata unavailable")
	}

	homeURL := BuildURL(a.Config.URL)
	meta := seo.Build(yoast, a.fallback(a.Config.Name, a.Config.Description, homeURL))
	p := a.page(c, meta,
		seo.WebsiteJSONLD(a.Config.Name, homeURL, a.Config.Description, a.Config.Author),
		seo.BlogJSONLD(a.Config.Name, homeURL, a.Config.Description, a.publisher()),
	)
	return Render(c, a.Views.Home(views.HomePage{
		Page:    p,
		Intro:   intro,
		Search:  views.Search{Action: "/", Query: q},
		Listing: listing(list, next),
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	q := strings.TrimSpace(c.QueryParam("q"))
	page := pageParam(c)

	cat, err := a.WP.CategoryBySlug(ctx, slug)
	if err != nil {
		if isPartial(c) {
			return a.fragmentError(c, err)
		}
		return err
	}
	list, err := a.WP.ListPosts(ctx, wp.ListQuery{Page: page, PerPage: a.Config.PostsPerPage, Category: cat.ID, Search: q})
	if err != nil {
		if isPartial(c) {
			return a.fragmentError(c, err)
		}
		return err
	}
	next := nextURL(views.CategoryPath(slug), list, page, url.Values{"q": {q}})
	if isPartial(c) {
		return Render(c, a.Views.PostCards(listing(list, next)))
	}

	name := content.Plain(cat.Name)
	description := content.Plain(cat.Description)
	if description == "" {
		description = "Posts filed under " + name + "."
	}
	pageURL := BuildURL(a.Config.URL, "category", slug)
	meta := seo.Build(cat.Yoast, a.fallback(name+" | "+a.Config.Name, description, pageURL))
	p := a.page(c, meta, seo.BreadcrumbJSONLD([]seo.Crumb{
		{Name: "Home", URL: BuildURL(a.Config.URL)},
		{Name: name, URL: pageURL},
	}))
	return Render(c, a.Views.Category(views.CategoryPage{
		Page:        p,
		Name:        name,
		Description: content.Plain(cat.Description),
		Search:      views.Search{Action: views.CategoryPath(slug), Query: q},
		Listing:     listing(list, next),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	log := a.Log.WithField("slug", slug)

	post, err := a.WP.PostBySlug(ctx, slug)
	if err != nil {
		return err
	}

	body := post.Body()
	if content.NeedsFullContent(body) && post.Link != "" {
		full, err := a.WP.FetchFullContent(ctx, post.Link)
		if err != nil {
			log.WithError(err).Warn("full content unavailable, using API content")
		} else {
			body = full
		}
	}
	rendered, err := templ.ToGoHTML(ctx, content.HTML(body))
	if err != nil {
		return err
	}

	comments, err := a.WP.Comments(ctx, post.ID)
	if err != nil {
		log.WithError(err).Warn("comments unavailable")
		comments = nil
	}

	title := content.Plain(post.Title.Rendered)
	pageURL := BuildURL(a.Config.URL, "posts", slug)
	fb := a.fallback(title, content.Plain(post.Excerpt.Rendered), pageURL)
	fb.Type = seo.TypeArticle
	fb.PublishedTime = post.Date
	fb.ModifiedTime = post.Modified
	img, hasImage := post.FeaturedImage()
	if hasImage {
		fb.Image = img.SourceURL
	}
	meta := seo.Build(post.Yoast, fb)

	cats := categoryLinks(post.Categories())
	crumbs := []seo.Crumb{{Name: "Home", URL: BuildURL(a.Config.URL)}}
	var primary *views.CategoryLink
	if len(cats) > 0 {
		primary = &cats[0]
		crumbs = append(crumbs, seo.Crumb{Name: primary.Name, URL: BuildURL(a.Config.URL, primary.URL)})
	}
	crumbs = append(crumbs, seo.Crumb{Name: title, URL: pageURL})

	keywords := post.Tags()
	if len(keywords) == 0 {
		for _, cat := range cats {
			keywords = append(keywords, cat.Name)
		}
	}

	p := a.page(c, meta,
		seo.ArticleJSONLD(meta, a.publisher(), keywords),
		seo.BreadcrumbJSONLD(crumbs),
	)
	p.Flash = popFlash(c)

	pp := views.PostPage{
		Page:         p,
		Title:        title,
		Categories:   cats,
		Primary:      primary,
		Share:        content.Share(pageURL, title),
		Body:         rendered,
		Comments:     commentNodes(wp.CommentTree(comments)),
		CommentCount: len(comments),
		Form: views.CommentForm{
			Enabled: a.WP.Configured(),
			Action:  views.PostPath(slug) + "comments/",
			PostID:  post.ID,
		},
	}
	if t, ok := post.Published(); ok {
		pp.Date = views.FormatDate(t)
		pp.DateISO = post.Date
	}
	if hasImage {
		pp.ImageURL = img.SourceURL
		pp.ImageAlt = content.Plain(img.AltText)
	}
	return Render(c, a.Views.Post(pp))
}

func (a *App) handleAbout(c echo.Context) error {
	ctx := c.Request().Context()
	about, err := a.WP.PageBySlug(ctx, "about")
	if err != nil {
		return err
	}
	title := content.Plain(about.Title.Rendered)
	if title == "" {
		title = "About"
	}
	meta := seo.Build(about.Yoast, a.fallback(title+" | "+a.Config.Name,
		content.Plain(about.Excerpt.Rendered), BuildURL(a.Config.URL, "about")))
	return Render(c, a.Views.Text(views.TextPage{
		Page:  a.page(c, meta),
		Title: title,
		Body:  template.HTML(content.Normalize(about.Body())),
	}))
}

func (a *App) handleContact(c echo.Context) error {
	return a.renderContact(c, http.StatusOK, forms.ContactInput{}, popFlash(c))
}

func (a *App) renderContact(c echo.Context, code int, in forms.ContactInput, flash *views.Flash) error {
	meta := seo.Build(nil, a.fallback("Contact | "+a.Config.Name,
		"Get in touch with "+a.Config.Name+".", BuildURL(a.Config.URL, "contact")))
	p := a.page(c, meta)
	p.Flash = flash
	return RenderStatus(c, code, a.Views.Contact(views.ContactPage{
		Page:    p,
		Enabled: a.Config.ContactConfigured(),
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	var posts []wp.Post
	for page := 1; page <= sitemapMaxPages; page++ {
		list, err := a.WP.ListPosts(ctx, wp.ListQuery{Page: page, PerPage: sitemapPageSize})
		if err != nil {
			return err
		}
		posts = append(posts, list.Posts...)
		if !list.HasMore(page) {
			break
		}
	}
	cats, err := a.WP.Categories(ctx)
	if err != nil {
		a.Log.WithError(err).Warn("sitemap: categories unavailable")
	}
	return a.renderSitemap(c, posts, cats)
}

func (a *App) handleFeed(c echo.Context) error {
	list, err := a.WP.ListPosts(c.Request().Context(), wp.ListQuery{Page: 1, PerPage: feedSize})
	if err != nil {
		return err
	}
	return a.renderRSS(c, list.Posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"wordpress": a.WP.Configured(),
	})
}

// classifyError maps an error to a status code and the title and message
// shown to the visitor.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, wp.ErrNotFound):
		return http.StatusNotFound, "Page not found",
			"The page you are looking for does not exist or has been moved."
	case errors.Is(err, wp.ErrNotConfigured):
		return http.StatusInternalServerError, "Site not configured",
			"WORDPRESS_API_URL is not set. Point it at the WordPress REST API, for example https://example.com/wp-json/wp/v2."
	case errors.Is(err, wp.ErrUnreachable):
		return http.StatusBadGateway, "Connection issue",
			"We could not reach the content server. Please try again in a moment."
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return he.Code, "Page not found",
				"The page you are looking for does not exist or has been moved."
		}
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return he.Code, http.StatusText(he.Code), msg
	}
	return http.StatusInternalServerError, "Something went wrong",
		"An unexpected error occurred. Please try again later."
}

// fragmentError answers a failed infinite-scroll request with an error card.
// It is sent with 200 so scroll.js inserts it; the card has no sentinel.
func (a *App) fragmentError(c echo.Context, err error) error {
	code, _, msg := classifyError(err)
	log := a.Log.WithError(err).WithField("status", code)
	if code >= 500 {
		log.Error("listing fragment failed")
	} else {
		log.Warn("listing fragment failed")
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return Render(c, a.Views.PostCards(views.Listing{Error: msg}))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, title, msg := classifyError(err)
	if code >= 500 {
		a.Log.WithFields(logrus.Fields{
			"uri":    c.Request().RequestURI,
			"status": code,
		}).WithError(err).Error("server error")
	}
	if isAPIPath(c.Request().URL.Path) {
		_ = c.JSON(code, apiResponse{Error: msg})
		return
	}
	if code == http.StatusNotFound || code == http.StatusTooManyRequests || code >= 500 {
		_ = a.renderError(c, code, title, msg)
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
