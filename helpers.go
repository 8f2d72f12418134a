package pressfront

import (
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/views"
	"github.com/eringen/pressfront/wp"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// pageParam reads ?page=, treating anything that is not a positive integer
// as the first page.
func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// nextURL is the fragment URL for the page after page, or "" on the last page.
func nextURL(basePath string, list wp.PostList, page int, extra url.Values) string {
	if !list.HasMore(page) {
		return ""
	}
	v := url.Values{}
	for k, vals := range extra {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	v.Set("page", strconv.Itoa(page+1))
	v.Set("partial", "posts")
	return basePath + "?" + v.Encode()
}

func categoryLinks(terms []wp.Term) []views.CategoryLink {
	var out []views.CategoryLink
	for _, t := range terms {
		if t.Name == "" {
			continue
		}
		name := content.Decode(t.Name)
		out = append(out, views.CategoryLink{
			Name: name,
			URL:  views.CategoryPath(content.CategorySlug(name, t.Slug)),
		})
	}
	return out
}

func postCard(p wp.Post) views.PostCard {
	card := views.PostCard{
		Title:      content.Plain(p.Title.Rendered),
		Excerpt:    content.Plain(p.Excerpt.Rendered),
		URL:        views.PostPath(p.Slug),
		Categories: categoryLinks(p.Categories()),
	}
	if t, ok := p.Published(); ok {
		card.Date = views.FormatDate(t)
		card.DateISO = p.Date
	}
	if img, ok := p.FeaturedImage(); ok {
		card.ImageURL = img.SourceURL
		card.ImageAlt = content.Plain(img.AltText)
	}
	return card
}

func listing(list wp.PostList, next string) views.Listing {
	l := views.Listing{NextURL: next}
	for _, p := range list.Posts {
		l.Posts = append(l.Posts, postCard(p))
	}
	return l
}

// commentNodes walks tree from the top-level comments, keeping the order
// WordPress returned. A comment is shown at most once even if parent links
// form a cycle.
func commentNodes(tree map[int][]wp.Comment) []views.CommentNode {
	return walkComments(tree, 0, 0, make(map[int]bool))
}

func walkComments(tree map[int][]wp.Comment, parent, depth int, seen map[int]bool) []views.CommentNode {
	children := tree[parent]
	if len(children) == 0 {
		return nil
	}
	nodes := make([]views.CommentNode, 0, len(children))
	for _, cm := range children {
		if seen[cm.ID] {
			continue
		}
		seen[cm.ID] = true
		n := views.CommentNode{
			ID:     cm.ID,
			Author: content.Plain(cm.AuthorName),
			Body:   template.HTML(content.Normalize(cm.Content.Rendered)),
			Depth:  depth,
		}
		n.Replies = walkComments(tree, cm.ID, depth+1, seen)
		if n.Author == "" {
			n.Author = "Anonymous"
		}
		if t, ok := cm.Published(); ok {
			n.Date = views.FormatDate(t)
			n.DateISO = cm.Date
		}
		nodes = append(nodes, n)
	}
	return nodes
}
