// Package wp reads posts, pages, categories and comments from the WordPress
// REST API (/wp-json/wp/v2).
package wp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/eringen/pressfront/cache"
)

// DefaultPerPage is the listing page size used by the front end.
const DefaultPerPage = 6

const maxBody = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL    string        // e.g. https://example.com/wp-json/wp/v2
	Timeout    time.Duration // per request (default 10s)
	RPS        float64       // outbound requests per second; 0 disables throttling
	Cache      cache.Cache   // nil disables response caching
	CacheTTL   time.Duration // default cache.DefaultTTL
	Logger     logrus.FieldLogger
	Metrics    *Metrics
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	log      logrus.FieldLogger
	metrics  *Metrics
}

// New creates a Client. A Client without a base URL is valid; every call
// returns ErrNotConfigured.
func New(cfg Config) *Client {
	c := &Client{
		base:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:     cfg.HTTPClient,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = cache.DefaultTTL
	}
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return c
}

// Configured reports whether an API base URL is set.
func (c *Client) Configured() bool {
	return c.base != ""
}

// BaseURL returns the API base without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// SiteBase returns the public site root: the API base with everything from
// "/wp-json" on removed.
func (c *Client) SiteBase() string {
	return SiteBase(c.base)
}

// SiteBase strips the REST path from an API base URL.
func SiteBase(apiBase string) string {
	apiBase = strings.TrimRight(apiBase, "/")
	if i := strings.Index(apiBase, "/wp-json"); i >= 0 {
		return apiBase[:i]
	}
	return apiBase
}

// ListPosts returns one page of posts with embedded media and terms.
// The unfiltered first page is served from the cache when one is set.
func (c *Client) ListPosts(ctx context.Context, q ListQuery) (PostList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	v := url.Values{}
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	if q.Category > 0 {
		v.Set("categories", strconv.Itoa(q.Category))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	cacheable := q.Page == 1 && q.Category == 0 && q.Search == ""

	var posts []Post
	hdr, err := c.get(ctx, "list_posts", "/posts", v, true, cacheable, &posts)
	if err != nil {
		return PostList{}, err
	}
	list := PostList{Posts: posts, TotalPages: 1}
	if n, err := strconv.Atoi(hdr.Get("X-WP-TotalPages")); err == nil && n > 0 {
		list.TotalPages = n
	}
	if n, err := strconv.Atoi(hdr.Get("X-WP-Total")); err == nil {
		list.Total = n
	}
	return list, nil
}

// PostBySlug returns the post with the given slug, or ErrNotFound.
func (c *Client) PostBySlug(ctx context.Context, slug string) (Post, error) {
	var posts []Post
	if _, err := c.get(ctx, "post", "/posts", url.Values{"slug": {slug}}, true, false, &posts); err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return posts[0], nil
}

// PageBySlug returns the page with the given slug, or ErrNotFound.
// Pages change rarely and are cached.
func (c *Client) PageBySlug(ctx context.Context, slug string) (Page, error) {
	return c.pageBySlug(ctx, slug, true)
}

// FreshPageBySlug is PageBySlug without the cache. The home page's SEO block
// is read this way so Yoast edits show up on the next request.
func (c *Client) FreshPageBySlug(ctx context.Context, slug string) (Page, error) {
	return c.pageBySlug(ctx, slug, false)
}

func (c *Client) pageBySlug(ctx context.Context, slug string, cacheable bool) (Page, error) {
	var pages []Page
	if _, err := c.get(ctx, "page", "/pages", url.Values{"slug": {slug}}, true, cacheable, &pages); err != nil {
		return Page{}, err
	}
	if len(pages) == 0 {
		return Page{}, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	return pages[0], nil
}

// CategoryBySlug returns the category with the given slug, or ErrNotFound.
func (c *Client) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var cats []Category
	if _, err := c.get(ctx, "category", "/categories", url.Values{"slug": {slug}}, false, false, &cats); err != nil {
		return Category{}, err
	}
	if len(cats) == 0 {
		return Category{}, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return cats[0], nil
}

// Categories returns up to 100 non-empty categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	v := url.Values{"per_page": {"100"}, "hide_empty": {"true"}}
	var cats []Category
	if _, err := c.get(ctx, "categories", "/categories", v, false, true, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Comments returns up to 100 approved comments on a post, in API order.
func (c *Client) Comments(ctx context.Context, postID int) ([]Comment, error) {
	v := url.Values{"post": {strconv.Itoa(postID)}, "per_page": {"100"}}
	var comments []Comment
	if _, err := c.get(ctx, "comments", "/comments", v, false, false, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentTree groups comments by parent id, keeping the input order within
// each group. Top-level comments are under key 0.
func CommentTree(comments []Comment) map[int][]Comment {
	tree := make(map[int][]Comment)
	for _, cm := range comments {
		tree[cm.Parent] = append(tree[cm.Parent], cm)
	}
	return tree
}

type cachedResponse struct {
	TotalPages string          `json:"total_pages,omitempty"`
	Total      string          `json:"total,omitempty"`
	Body       json.RawMessage `json:"body"`
}

func (c *Client) endpoint(path string, v url.Values, embed bool) string {
	q := v.Encode()
	if embed {
		if q == "" {
			q = "_embed"
		} else {
			q = "_embed&" + q
		}
	}
	if q == "" {
		return c.base + path
	}
	return c.base + path + "?" + q
}

// get fetches path and decodes the JSON body into dst. Cacheable responses
// are stored together with their pagination headers.
func (c *Client) get(ctx context.Context, op, path string, v url.Values, embed, cacheable bool, dst any) (http.Header, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	u := c.endpoint(path, v, embed)
	useCache := cacheable && c.cache != nil

	if useCache {
		if raw, err := c.cache.Get(ctx, u); err == nil {
			var cr cachedResponse
			if err := json.Unmarshal(raw, &cr); err == nil && json.Unmarshal(cr.Body, dst) == nil {
				c.metrics.cacheLookup(op, true)
				hdr := http.Header{}
				hdr.Set("X-WP-TotalPages", cr.TotalPages)
				hdr.Set("X-WP-Total", cr.Total)
				return hdr, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			c.log.WithError(err).WithField("op", op).Warn("cache read failed")
		}
		c.metrics.cacheLookup(op, false)
	}

	body, hdr, err := c.fetch(ctx, op, u, "application/json")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "url": u}).WithError(err).Error("wordpress returned malformed JSON")
		return nil, &UpstreamError{Op: op, URL: u, Err: fmt.Errorf("decode: %w", err)}
	}

	if useCache {
		raw, err := json.Marshal(cachedResponse{
			TotalPages: hdr.Get("X-WP-TotalPages"),
			Total:      hdr.Get("X-WP-Total"),
			Body:       body,
		})
		if err == nil {
			if err := c.cache.Set(ctx, u, raw, c.cacheTTL); err != nil {
				c.log.WithError(err).WithField("op", op).Warn("cache write failed")
			}
		}
	}
	return hdr, nil
}

// fetch performs one GET without retries.
func (c *Client) fetch(ctx context.Context, op, u, accept string) ([]byte, http.Header, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, &UpstreamError{Op: op, URL: u, Err: err}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, &UpstreamError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", accept)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, "error", started)
		c.log.WithFields(logrus.Fields{"op": op, "url": u}).WithError(err).Error("wordpress request failed")
		return nil, nil, &UpstreamError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.metrics.observe(op, "error", started)
		return nil, nil, &UpstreamError{Op: op, URL: u, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(op, "status_"+strconv.Itoa(resp.StatusCode), started)
		c.log.WithFields(logrus.Fields{"op": op, "url": u, "status": resp.StatusCode}).Error("wordpress returned an error status")
		return nil, nil, &UpstreamError{Op: op, URL: u, Status: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	c.metrics.observe(op, "ok", started)
	return body, resp.Header, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
