// Package views renders pressfront pages. Templates are html/template files
// embedded in the binary and exposed as templ components.
package views

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/*
var assetFS embed.FS

// Assets holds style.css and scroll.js.
var Assets, _ = fs.Sub(assetFS, "assets")

var (
	base = template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html", "templates/partials.html"))

	homeTmpl     = mustPage("home")
	categoryTmpl = mustPage("category")
	postTmpl     = mustPage("post")
	pageTmpl     = mustPage("page")
	contactTmpl  = mustPage("contact")
	errorTmpl    = mustPage("error")

	// Fragments get their own set; base must stay unexecuted to be cloned.
	fragments = template.Must(template.New("fragments").Funcs(funcs).ParseFS(templateFS, "templates/partials.html"))
)

func mustPage(name string) *template.Template {
	t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name+".html"))
	return t.Lookup("layout")
}

// Home renders the front page.
func Home(p HomePage) templ.Component {
	return templ.FromGoHTML(homeTmpl, p)
}

// Category renders a category listing.
func Category(p CategoryPage) templ.Component {
	return templ.FromGoHTML(categoryTmpl, p)
}

// PostCards renders the cards of one listing page and, when more pages exist,
// the sentinel the scroll script watches. It is the infinite-scroll fragment.
func PostCards(l Listing) templ.Component {
	return templ.FromGoHTML(fragments.Lookup("post-cards"), l)
}

// Post renders a single post.
func Post(p PostPage) templ.Component {
	return templ.FromGoHTML(postTmpl, p)
}

// Text renders a WordPress page.
func Text(p TextPage) templ.Component {
	return templ.FromGoHTML(pageTmpl, p)
}

// Contact renders the contact form.
func Contact(p ContactPage) templ.Component {
	return templ.FromGoHTML(contactTmpl, p)
}

// Error renders the 404 and 5xx pages.
func Error(p ErrorPage) templ.Component {
	return templ.FromGoHTML(errorTmpl, p)
}
