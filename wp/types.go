package wp

import (
	"encoding/json"
	"time"

	"github.com/eringen/pressfront/seo"
)

// Rendered is WordPress's {"rendered": "..."} wrapper around markup fields.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Media is an entry of _embedded["wp:featuredmedia"].
type Media struct {
	SourceURL string `json:"source_url,omitempty"`
	AltText   string `json:"alt_text,omitempty"`
}

// Term is a taxonomy term attached through _embedded["wp:term"].
type Term struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
}

// Embedded holds the resources inlined by ?_embed.
type Embedded struct {
	FeaturedMedia []Media           `json:"wp:featuredmedia,omitempty"`
	Terms         [][]Term          `json:"wp:term,omitempty"`
	Replies       []json.RawMessage `json:"replies,omitempty"`
}

// Post is a WordPress post or page as returned by /wp/v2.
type Post struct {
	ID       int            `json:"id"`
	Slug     string         `json:"slug"`
	Date     string         `json:"date"`
	Modified string         `json:"modified,omitempty"`
	Link     string         `json:"link,omitempty"`
	Title    Rendered       `json:"title"`
	Excerpt  Rendered       `json:"excerpt"`
	Content  *Rendered      `json:"content,omitempty"`
	Yoast    *seo.YoastHead `json:"yoast_head_json,omitempty"`
	Embedded *Embedded      `json:"_embedded,omitempty"`
}

// Page has the same shape as Post.
type Page = Post

const wpTime = "2006-01-02T15:04:05"

// Published parses Date. WordPress omits the zone; the site's local time is
// treated as UTC.
func (p Post) Published() (time.Time, bool) {
	t, err := time.Parse(wpTime, p.Date)
	return t, err == nil
}

// Body returns the rendered content, or "" when the post has none.
func (p Post) Body() string {
	if p.Content == nil {
		return ""
	}
	return p.Content.Rendered
}

// Categories returns the first term group, which WordPress fills with
// categories.
func (p Post) Categories() []Term {
	if p.Embedded == nil || len(p.Embedded.Terms) == 0 {
		return nil
	}
	return p.Embedded.Terms[0]
}

// Tags returns the names of the post_tag terms.
func (p Post) Tags() []string {
	if p.Embedded == nil {
		return nil
	}
	var tags []string
	for _, group := range p.Embedded.Terms {
		for _, t := range group {
			if t.Taxonomy == "post_tag" && t.Name != "" {
				tags = append(tags, t.Name)
			}
		}
	}
	return tags
}

// FeaturedImage returns the first embedded featured media item.
func (p Post) FeaturedImage() (Media, bool) {
	if p.Embedded == nil || len(p.Embedded.FeaturedMedia) == 0 {
		return Media{}, false
	}
	m := p.Embedded.FeaturedMedia[0]
	return m, m.SourceURL != ""
}

// Category is a WordPress category term.
type Category struct {
	ID          int            `json:"id"`
	Name        string         `json:"name,omitempty"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Count       int            `json:"count,omitempty"`
	Yoast       *seo.YoastHead `json:"yoast_head_json,omitempty"`
}

// Comment is an approved comment. Parent 0 marks a top-level comment.
type Comment struct {
	ID          int      `json:"id"`
	Parent      int      `json:"parent"`
	Post        int      `json:"post"`
	Date        string   `json:"date"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email,omitempty"`
	Content     Rendered `json:"content"`
}

// Published parses Date like Post.Published.
func (c Comment) Published() (time.Time, bool) {
	t, err := time.Parse(wpTime, c.Date)
	return t, err == nil
}

// ListQuery selects a page of posts. Zero values fall back to page 1 and
// DefaultPerPage.
type ListQuery struct {
	Page     int
	PerPage  int
	Category int
	Search   string
}

// PostList is one page of a post listing.
type PostList struct {
	Posts      []Post
	Total      int
	TotalPages int
}

// HasMore reports whether a page after page exists.
func (l PostList) HasMore(page int) bool {
	return page < l.TotalPages
}
