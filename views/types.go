package views

import (
	"html/template"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/seo"
)

// Site holds the site-wide settings every page shows.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	OK      bool
	Message string
}

// Page is embedded by every page model. Its fields feed the layout.
type Page struct {
	Site   Site
	Meta   seo.Metadata
	JSONLD []template.JS
	Path   string // request path, for the active nav link
	CSRF   string
	Flash  *Flash
}

// CategoryLink is a category pill on a card or a breadcrumb.
type CategoryLink struct {
	Name string
	URL  string
}

// PostCard is one entry of a listing.
type PostCard struct {
	Title      string
	Excerpt    string
	URL        string
	Date       string
	DateISO    string
	ImageURL   string
	ImageAlt   string
	Categories []CategoryLink
}

// Listing is a page of cards plus the URL of the next fragment, empty on the
// last page.
type Listing struct {
	Posts   []PostCard
	NextURL string
	Error   string
}

// HomePage is the front page.
type HomePage struct {
	Page
	Intro   template.HTML
	Search  Search
	Listing Listing
}

// CategoryPage lists the posts of one category.
type CategoryPage struct {
	Page
	Name        string
	Description string
	Search      Search
	Listing     Listing
}

// Search is the search form above a listing. Action is the path of the
// listing it filters.
type Search struct {
	Action string
	Query  string
}

// CommentNode is a comment and its replies.
type CommentNode struct {
	ID      int
	Author  string
	Date    string
	DateISO string
	Body    template.HTML
	Depth   int
	Replies []CommentNode
}

// CommentForm is the state of the comment form on a post page.
type CommentForm struct {
	Enabled bool
	Action  string
	PostID  int
	Name    string
	Email   string
	Message string
}

// PostPage is a single post with its comment thread.
type PostPage struct {
	Page
	Title        string
	Date         string
	DateISO      string
	Categories   []CategoryLink
	Primary      *CategoryLink
	ImageURL     string
	ImageAlt     string
	Share        content.ShareLinks
	Body         template.HTML
	Comments     []CommentNode
	CommentCount int
	Form         CommentForm
}

// TextPage is a WordPress page such as About.
type TextPage struct {
	Page
	Title string
	Body  template.HTML
}

// ContactPage is the contact form.
type ContactPage struct {
	Page
	Enabled bool
	Name    string
	Email   string
	Subject string
	Message string
}

// ErrorPage is shown for 404 and 5xx responses.
type ErrorPage struct {
	Page
	Code    int
	Title   string
	Message string
}
