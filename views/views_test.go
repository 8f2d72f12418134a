package views

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pressfront/seo"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func basePage() Page {
	meta := seo.Build(&seo.YoastHead{Description: "Notes & essays"}, seo.Fallback{Title: "Field Notes", URL: "https://blog.example.com/"})
	return Page{
		Site:   Site{Name: "Field Notes", URL: "https://blog.example.com", Author: "Ann"},
		Meta:   meta,
		JSONLD: []template.JS{template.JS(seo.WebsiteJSONLD("Field Notes", "https://blog.example.com/", "", ""))},
		Path:   "/",
		CSRF:   "tok123",
	}
}

func TestHomeRendersHeadAndListing(t *testing.T) {
	out := render(t, Home(HomePage{
		Page:   basePage(),
		Search: Search{Action: "/", Query: `go "generics"`},
		Listing: Listing{
			Posts:   []PostCard{{Title: "Tom & Jerry", URL: "/posts/tom/", Date: "Mar 1, 2024", Categories: []CategoryLink{{Name: "Go", URL: "/category/go/"}}}},
			NextURL: "/?page=2&partial=posts",
		},
	}))

	checks := []string{
		"<title>Field Notes</title>",
		`<link rel="canonical" href="https://blog.example.com/">`,
		`<meta name="description" content="Notes &amp; essays">`,
		`<meta property="og:type" content="website">`,
		`<script type="application/ld+json">{"@context":"https://schema.org"`,
		"Tom &amp; Jerry",
		`href="/category/go/"`,
		`id="post-list"`,
		`data-next="/?page=2&amp;partial=posts"`,
		`value="go &#34;generics&#34;"`,
		`class="nav-link is-active" href="/"`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("home output missing %q", want)
		}
	}
}

func TestHomeEmptyListing(t *testing.T) {
	out := render(t, Home(HomePage{Page: basePage()}))
	if !strings.Contains(out, "No posts found.") {
		t.Error("expected empty-state message")
	}
	if strings.Contains(out, "data-next") {
		t.Error("no sentinel expected without a next page")
	}
}

func TestPostCardsFragment(t *testing.T) {
	out := render(t, PostCards(Listing{Posts: []PostCard{{Title: "A", URL: "/posts/a/"}, {Title: "B", URL: "/posts/b/"}}}))
	if strings.Contains(out, "<html") || strings.Contains(out, "<title>") {
		t.Error("fragment must not include the layout")
	}
	if strings.Count(out, `<article class="card">`) != 2 {
		t.Errorf("expected two cards, got %q", out)
	}
	if strings.Contains(out, "data-next") {
		t.Error("last page must not render a sentinel")
	}

	out = render(t, PostCards(Listing{Posts: []PostCard{{Title: "A"}}, NextURL: "/category/go/?page=3&partial=posts"}))
	if !strings.Contains(out, `data-next="/category/go/?page=3&amp;partial=posts"`) {
		t.Errorf("missing sentinel: %q", out)
	}
}

func TestPostRendersThreadedComments(t *testing.T) {
	p := basePage()
	p.Path = "/posts/hello/"
	out := render(t, Post(PostPage{
		Page:    p,
		Title:   "Hello",
		Primary: &CategoryLink{Name: "Go", URL: "/category/go/"},
		Body:    template.HTML("<p>Body <em>text</em></p>"),
		Comments: []CommentNode{
			{ID: 1, Author: "Ann", Body: "<p>top</p>", Replies: []CommentNode{{ID: 2, Author: "Bob", Depth: 1, Body: "<p>reply</p>"}}},
			{ID: 3, Author: "Cy", Body: "<p>second</p>"},
		},
		CommentCount: 3,
		Form:         CommentForm{Enabled: true, Action: "/posts/hello/comments/", PostID: 42},
	}))

	checks := []string{
		"<p>Body <em>text</em></p>",
		"Comments (3)",
		`id="comment-1"`,
		`class="comment depth-1" id="comment-2"`,
		`action="/posts/hello/comments/"`,
		`name="_csrf" value="tok123"`,
		`name="post_id" value="42"`,
		`<a href="/category/go/">Go</a>`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("post output missing %q", want)
		}
	}
	// Reply is nested inside its parent, before the next top-level comment.
	if i, j, k := strings.Index(out, "comment-1"), strings.Index(out, "comment-2"), strings.Index(out, "comment-3"); !(i < j && j < k) {
		t.Errorf("comment order wrong: %d %d %d", i, j, k)
	}
}

func TestPostWithoutComments(t *testing.T) {
	out := render(t, Post(PostPage{Page: basePage(), Title: "Quiet"}))
	if !strings.Contains(out, "No comments yet.") {
		t.Error("expected empty comments message")
	}
	if strings.Contains(out, "comment-form") {
		t.Error("form must be hidden when disabled")
	}
}

func TestContactAndFlash(t *testing.T) {
	p := basePage()
	p.Flash = &Flash{OK: true, Message: "Thank you! Your message was sent."}
	out := render(t, Contact(ContactPage{Page: p, Enabled: true, Name: "Ann"}))
	for _, want := range []string{"flash flash-ok", "Thank you! Your message was sent.", `value="Ann"`, `action="/contact/"`} {
		if !strings.Contains(out, want) {
			t.Errorf("contact output missing %q", want)
		}
	}
}

func TestErrorPage(t *testing.T) {
	out := render(t, Error(ErrorPage{Page: basePage(), Code: 502, Title: "Connection issue", Message: "WordPress did not answer."}))
	if !strings.Contains(out, "502") || !strings.Contains(out, "Connection issue") {
		t.Errorf("unexpected error page: %q", out)
	}
}

func TestTextPage(t *testing.T) {
	out := render(t, Text(TextPage{Page: basePage(), Title: "About", Body: "<p>Me</p>"}))
	if !strings.Contains(out, "<h1>About</h1>") || !strings.Contains(out, "<p>Me</p>") {
		t.Errorf("unexpected about page: %q", out)
	}
}

func TestAssets(t *testing.T) {
	for _, name := range []string{"style.css", "scroll.js"} {
		b, err := fs.ReadFile(Assets, name)
		if err != nil || len(b) == 0 {
			t.Errorf("asset %s: %v", name, err)
		}
	}
}

func TestHelpers(t *testing.T) {
	if got := PostPath("a b"); got != "/posts/a%20b/" {
		t.Errorf("PostPath = %q", got)
	}
	if got := CategoryPath("go"); got != "/category/go/" {
		t.Errorf("CategoryPath = %q", got)
	}
	if got := FormatDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); got != "Mar 1, 2024" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := navClass("/about/", "/"); got != "nav-link" {
		t.Errorf("navClass = %q", got)
	}
	if got := depthClass(9); got != "comment depth-6" {
		t.Errorf("depthClass = %q", got)
	}
}
