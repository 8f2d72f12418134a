package wp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pressfront/cache"
)

const samplePosts = `[
  {
    "id": 11,
    "slug": "hello-world",
    "date": "2024-03-01T10:00:00",
    "modified": "2024-03-02T11:00:00",
    "link": "https://blog.example.com/hello-world/",
    "title": {"rendered": "Hello &amp; World"},
    "excerpt": {"rendered": "<p>First post</p>"},
    "content": {"rendered": "<p>Body</p>"},
    "yoast_head_json": {"title": "Hello SEO", "og_image": [{"url": "https://blog.example.com/a.jpg", "width": 1200, "height": 630}]},
    "_embedded": {
      "wp:featuredmedia": [{"source_url": "https://blog.example.com/a.jpg", "alt_text": "A"}],
      "wp:term": [[{"id": 3, "name": "Go", "slug": "go", "taxonomy": "category"}], [{"id": 9, "name": "tips", "slug": "tips", "taxonomy": "post_tag"}]]
    }
  }
]`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := Config{BaseURL: srv.URL + "/wp-json/wp/v2/", Logger: quietLogger()}
	for _, o := range opts {
		o(&cfg)
	}
	return New(cfg), srv
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{Logger: quietLogger()})
	assert.False(t, c.Configured())

	_, err := c.ListPosts(context.Background(), ListQuery{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.PostBySlug(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Comments(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestListPostsQueryAndPagination(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		q := r.URL.Query()
		_, embed := q["_embed"]
		assert.True(t, embed, "missing _embed in %s", r.URL.RawQuery)
		assert.Equal(t, "6", q.Get("per_page"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "3", q.Get("categories"))
		assert.Equal(t, "go lang", q.Get("search"))
		w.Header().Set("X-WP-TotalPages", "4")
		w.Header().Set("X-WP-Total", "20")
		io.WriteString(w, samplePosts)
	})

	list, err := c.ListPosts(context.Background(), ListQuery{Page: 2, Category: 3, Search: "go lang"})
	require.NoError(t, err)
	assert.Equal(t, 4, list.TotalPages)
	assert.Equal(t, 20, list.Total)
	require.Len(t, list.Posts, 1)
	assert.True(t, list.HasMore(2))
	assert.False(t, list.HasMore(4))

	p := list.Posts[0]
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "<p>Body</p>", p.Body())
	require.NotNil(t, p.Yoast)
	assert.Equal(t, "Hello SEO", p.Yoast.Title)
	assert.Equal(t, 1200, p.Yoast.OGImage[0].Width)
	assert.Equal(t, []Term{{ID: 3, Name: "Go", Slug: "go", Taxonomy: "category"}}, p.Categories())
	assert.Equal(t, []string{"tips"}, p.Tags())
	img, ok := p.FeaturedImage()
	assert.True(t, ok)
	assert.Equal(t, "A", img.AltText)
	ts, ok := p.Published()
	assert.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
}

func TestListPostsTotalPagesDefaultsToOne(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	list, err := c.ListPosts(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalPages)
	assert.Empty(t, list.Posts)
	assert.False(t, list.HasMore(1))
}

func TestBySlugNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	ctx := context.Background()

	_, err := c.PostBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrUnreachable))

	_, err = c.PageBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.CategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBySlugQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wp/v2/posts", "/wp-json/wp/v2/pages":
			assert.Equal(t, "hello-world", r.URL.Query().Get("slug"))
			io.WriteString(w, samplePosts)
		case "/wp-json/wp/v2/categories":
			assert.Equal(t, "go", r.URL.Query().Get("slug"))
			io.WriteString(w, `[{"id": 3, "name": "Go", "slug": "go", "description": "Gophers"}]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	p, err := c.PostBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, 11, p.ID)

	pg, err := c.PageBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello &amp; World", pg.Title.Rendered)

	cat, err := c.CategoryBySlug(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, Category{ID: 3, Name: "Go", Slug: "go", Description: "Gophers"}, cat)
}

func TestUpstreamStatusIsUnreachable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	})

	_, err := c.PostBySlug(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.False(t, errors.Is(err, ErrNotFound))

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
	assert.Equal(t, "post", ue.Op)
	assert.Contains(t, ue.Body, "database down")
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Config{BaseURL: base, Logger: quietLogger()})
	_, err := c.ListPosts(context.Background(), ListQuery{})
	assert.ErrorIs(t, err, ErrUnreachable)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.Status)
}

func TestMalformedJSONIsUnreachable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>maintenance</html>`)
	})
	_, err := c.Comments(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestComments(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/comments", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("post"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		io.WriteString(w, `[
			{"id": 1, "parent": 0, "post": 42, "date": "2024-01-01T00:00:00", "author_name": "Ann", "content": {"rendered": "<p>hi</p>"}},
			{"id": 2, "parent": 1, "post": 42, "date": "2024-01-02T00:00:00", "author_name": "Bob", "content": {"rendered": "<p>re</p>"}}
		]`)
	})
	comments, err := c.Comments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Ann", comments[0].AuthorName)
	assert.Equal(t, 1, comments[1].Parent)
}

func TestCommentTree(t *testing.T) {
	comments := []Comment{
		{ID: 1, Parent: 0},
		{ID: 2, Parent: 1},
		{ID: 3, Parent: 0},
	}
	tree := CommentTree(comments)

	require.Len(t, tree[0], 2)
	assert.Equal(t, 1, tree[0][0].ID)
	assert.Equal(t, 3, tree[0][1].ID)
	require.Len(t, tree[1], 1)
	assert.Equal(t, 2, tree[1][0].ID)
	assert.Empty(t, tree[2])
	assert.Empty(t, tree[3])
}

func TestCommentTreeKeepsEveryComment(t *testing.T) {
	comments := []Comment{{ID: 5, Parent: 9}, {ID: 6, Parent: 0}, {ID: 7, Parent: 5}, {ID: 8, Parent: 5}}
	tree := CommentTree(comments)
	total := 0
	for parent, kids := range tree {
		for _, k := range kids {
			assert.Equal(t, parent, k.Parent)
		}
		total += len(kids)
	}
	assert.Equal(t, len(comments), total)
	assert.Equal(t, []Comment{{ID: 7, Parent: 5}, {ID: 8, Parent: 5}}, tree[5])
}

func TestCommentTreeEmpty(t *testing.T) {
	assert.Empty(t, CommentTree(nil))
}

func TestListPostsCachesFirstPageOnly(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("X-WP-TotalPages", "3")
		io.WriteString(w, samplePosts)
	}, func(cfg *Config) {
		cfg.Cache = cache.NewMemory(0)
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := c.ListPosts(ctx, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, list.TotalPages, "pagination header must survive the cache")
		require.Len(t, list.Posts, 1)
	}
	assert.Equal(t, int32(1), hits.Load())

	c.ListPosts(ctx, ListQuery{Page: 2})
	c.ListPosts(ctx, ListQuery{Page: 2})
	assert.Equal(t, int32(3), hits.Load())

	c.ListPosts(ctx, ListQuery{Search: "go"})
	c.ListPosts(ctx, ListQuery{Search: "go"})
	assert.Equal(t, int32(5), hits.Load())
}

func TestPostsAreNotCached(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, samplePosts)
	}, func(cfg *Config) {
		cfg.Cache = cache.NewMemory(0)
	})
	ctx := context.Background()
	c.PostBySlug(ctx, "hello-world")
	c.PostBySlug(ctx, "hello-world")
	assert.Equal(t, int32(2), hits.Load())

	c.PageBySlug(ctx, "about")
	c.PageBySlug(ctx, "about")
	assert.Equal(t, int32(3), hits.Load())

	c.FreshPageBySlug(ctx, "home")
	c.FreshPageBySlug(ctx, "home")
	assert.Equal(t, int32(5), hits.Load(), "the home SEO lookup skips the cache")

	c.Categories(ctx)
	c.Categories(ctx)
	assert.Equal(t, int32(6), hits.Load(), "the category list is cached")
}

func TestFailuresAreNotCached(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[]`)
	}, func(cfg *Config) {
		cfg.Cache = cache.NewMemory(0)
	})
	ctx := context.Background()
	_, err := c.ListPosts(ctx, ListQuery{})
	assert.ErrorIs(t, err, ErrUnreachable)
	_, err = c.ListPosts(ctx, ListQuery{})
	assert.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slug") == "broken" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `[]`)
	}, func(cfg *Config) {
		cfg.Metrics = m
	})
	ctx := context.Background()
	c.ListPosts(ctx, ListQuery{})
	c.PostBySlug(ctx, "broken")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("list_posts", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("post", "status_503")))
}

func TestSiteBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/wp-json/wp/v2", "https://example.com"},
		{"https://example.com/blog/wp-json/wp/v2/", "https://example.com/blog"},
		{"https://example.com/api", "https://example.com/api"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SiteBase(tt.input); got != tt.expected {
			t.Errorf("SiteBase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
