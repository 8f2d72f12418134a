package pressfront

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/wp"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, posts []wp.Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	var newest time.Time
	for _, p := range posts {
		pubDate := ""
		if t, ok := p.Published(); ok {
			pubDate = t.Format(time.RFC1123Z)
			if t.After(newest) {
				newest = t
			}
		}
		postURL := BuildURL(base, "posts", p.Slug)
		var cats []string
		for _, t := range p.Categories() {
			if t.Name != "" {
				cats = append(cats, content.Plain(t.Name))
			}
		}
		items = append(items, rssItem{
			Title:       content.Plain(p.Title.Rendered),
			Link:        postURL,
			Description: content.Plain(p.Excerpt.Rendered),
			Categories:  cats,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	channel := rssChannel{
		Title:       a.Config.Name,
		Link:        BuildURL(base),
		Description: a.Config.Description,
		Items:       items,
	}
	if !newest.IsZero() {
		channel.LastBuildDate = newest.Format(time.RFC1123Z)
	}
	feed := rssXML{Version: "2.0", Channel: channel}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
