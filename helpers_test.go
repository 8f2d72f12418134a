package pressfront

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/wp"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.com", nil, "https://blog.example.com"},
		{"https://blog.example.com", []string{"posts", "hello"}, "https://blog.example.com/posts/hello/"},
		{"https://blog.example.com/sub", []string{"about"}, "https://blog.example.com/sub/about/"},
		{"https://blog.example.com", []string{"/category/go/"}, "https://blog.example.com/category/go/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestPageParam(t *testing.T) {
	e := echo.New()
	tests := map[string]int{
		"/":         1,
		"/?page=3":  3,
		"/?page=0":  1,
		"/?page=-2": 1,
		"/?page=x":  1,
	}
	for target, want := range tests {
		c := e.NewContext(httptest.NewRequest("GET", target, nil), httptest.NewRecorder())
		if got := pageParam(c); got != want {
			t.Errorf("pageParam(%q) = %d, want %d", target, got, want)
		}
	}
}

func TestNextURL(t *testing.T) {
	list := wp.PostList{TotalPages: 3}
	if got := nextURL("/", list, 1, nil); got != "/?page=2&partial=posts" {
		t.Errorf("nextURL = %q", got)
	}
	if got := nextURL("/", list, 2, url.Values{"q": {"go web"}}); got != "/?page=3&partial=posts&q=go+web" {
		t.Errorf("nextURL with query = %q", got)
	}
	if got := nextURL("/", list, 3, nil); got != "" {
		t.Errorf("last page nextURL = %q, want empty", got)
	}
}

func TestCommentNodes(t *testing.T) {
	comments := []wp.Comment{
		{ID: 1, Parent: 0, AuthorName: "Ann", Date: "2024-03-01T10:00:00"},
		{ID: 2, Parent: 1, AuthorName: "Bob"},
		{ID: 4, Parent: 2, AuthorName: "Dee"},
		{ID: 3, Parent: 0},
	}
	nodes := commentNodes(wp.CommentTree(comments))
	if len(nodes) != 2 || nodes[0].ID != 1 || nodes[1].ID != 3 {
		t.Fatalf("top level = %+v", nodes)
	}
	if nodes[0].Date != "Mar 1, 2024" || nodes[0].DateISO != "2024-03-01T10:00:00" {
		t.Errorf("date = %q / %q", nodes[0].Date, nodes[0].DateISO)
	}
	if nodes[1].Author != "Anonymous" {
		t.Errorf("missing author = %q", nodes[1].Author)
	}
	reply := nodes[0].Replies
	if len(reply) != 1 || reply[0].ID != 2 || reply[0].Depth != 1 {
		t.Fatalf("replies = %+v", reply)
	}
	if deep := reply[0].Replies; len(deep) != 1 || deep[0].ID != 4 || deep[0].Depth != 2 {
		t.Errorf("nested replies = %+v", deep)
	}
}

func TestCommentNodesIgnoresCycles(t *testing.T) {
	tree := map[int][]wp.Comment{
		0: {{ID: 1}},
		1: {{ID: 2, Parent: 1}},
		2: {{ID: 1, Parent: 2}},
	}
	nodes := commentNodes(tree)
	if len(nodes) != 1 || len(nodes[0].Replies) != 1 || len(nodes[0].Replies[0].Replies) != 0 {
		t.Errorf("cycle not cut: %+v", nodes)
	}
}

func TestPostCard(t *testing.T) {
	p := wp.Post{
		Slug:    "hello",
		Date:    "2024-03-01T10:00:00",
		Title:   wp.Rendered{Rendered: "Tom &amp; Jerry"},
		Excerpt: wp.Rendered{Rendered: "<p>Short   story</p>"},
		Embedded: &wp.Embedded{
			FeaturedMedia: []wp.Media{{SourceURL: "https://cdn.example.com/x.jpg", AltText: "X"}},
			Terms:         [][]wp.Term{{{Name: "Go &amp; Web", Slug: ""}}},
		},
	}
	card := postCard(p)
	if card.Title != "Tom & Jerry" || card.Excerpt != "Short story" {
		t.Errorf("text = %q / %q", card.Title, card.Excerpt)
	}
	if card.URL != "/posts/hello/" || card.Date != "Mar 1, 2024" {
		t.Errorf("url/date = %q / %q", card.URL, card.Date)
	}
	if card.ImageURL != "https://cdn.example.com/x.jpg" {
		t.Errorf("image = %q", card.ImageURL)
	}
	if len(card.Categories) != 1 || card.Categories[0].Name != "Go & Web" {
		t.Fatalf("categories = %+v", card.Categories)
	}
	if got := card.Categories[0].URL; got != "/category/go-web/" {
		t.Errorf("derived category URL = %q", got)
	}
}
