package views

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PostPath is the local path of a post.
func PostPath(slug string) string {
	return "/posts/" + url.PathEscape(slug) + "/"
}

// CategoryPath is the local path of a category.
func CategoryPath(slug string) string {
	return "/category/" + url.PathEscape(slug) + "/"
}

// FormatDate renders t like "Mar 1, 2024".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// navClass marks the link for the current section.
func navClass(current, href string) string {
	active := current == href || (href != "/" && strings.HasPrefix(current, href))
	if active {
		return "nav-link is-active"
	}
	return "nav-link"
}

// depthClass offsets nested comments; levels past six share one class.
func depthClass(depth int) string {
	if depth > 6 {
		depth = 6
	}
	return "comment depth-" + strconv.Itoa(depth)
}

var funcs = template.FuncMap{
	"navClass":   navClass,
	"depthClass": depthClass,
	"year":       func() int { return time.Now().Year() },
}
