// Package seo resolves page metadata from Yoast's precomputed head JSON,
// falling back to values the page supplies itself.
package seo

import "strconv"

// Twitter card types accepted from Yoast.
const (
	CardSummary           = "summary"
	CardSummaryLargeImage = "summary_large_image"
	CardPlayer            = "player"
	CardApp               = "app"
)

// Content types for Open Graph.
const (
	TypeWebsite = "website"
	TypeArticle = "article"
)

const (
	robots    = "index, follow"
	googleBot = "index, follow, max-video-preview:-1, max-image-preview:large, max-snippet:-1"
)

// YoastImage is one entry of Yoast's og_image list.
type YoastImage struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Type   string `json:"type,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// YoastHead is the yoast_head_json block WordPress attaches to posts,
// pages and terms when the Yoast SEO plugin is active.
type YoastHead struct {
	Title         string       `json:"title,omitempty"`
	Description   string       `json:"description,omitempty"`
	Canonical     string       `json:"canonical,omitempty"`
	OGTitle       string       `json:"og_title,omitempty"`
	OGDescription string       `json:"og_description,omitempty"`
	OGURL         string       `json:"og_url,omitempty"`
	OGSiteName    string       `json:"og_site_name,omitempty"`
	OGImage       []YoastImage `json:"og_image,omitempty"`
	TwitterCard   string       `json:"twitter_card,omitempty"`
	Author        string       `json:"author,omitempty"`
	PublishedTime string       `json:"published_time,omitempty"`
	ModifiedTime  string       `json:"modified_time,omitempty"`

	ArticlePublishedTime string `json:"article_published_time,omitempty"`
	ArticleModifiedTime  string `json:"article_modified_time,omitempty"`
}

func (y *YoastHead) published() string {
	if y.PublishedTime != "" {
		return y.PublishedTime
	}
	return y.ArticlePublishedTime
}

func (y *YoastHead) modified() string {
	if y.ModifiedTime != "" {
		return y.ModifiedTime
	}
	return y.ArticleModifiedTime
}

// Fallback holds the values a page knows without Yoast.
type Fallback struct {
	Title         string
	Description   string
	URL           string
	Image         string
	SiteName      string
	Author        string
	PublishedTime string
	ModifiedTime  string
	Type          string // TypeWebsite (default) or TypeArticle

	GoogleVerification string
}

// Image is an Open Graph image.
type Image struct {
	URL    string
	Width  int
	Height int
	Type   string
	Alt    string
}

// OpenGraph carries og:* values.
type OpenGraph struct {
	Type          string
	Title         string
	Description   string
	URL           string
	SiteName      string
	Images        []Image
	PublishedTime string
	ModifiedTime  string
	Authors       []string
}

// Twitter carries twitter:* values.
type Twitter struct {
	Card        string
	Title       string
	Description string
	Images      []string
	Creator     string
}

// Metadata is the resolved head metadata for one rendered page.
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	OpenGraph   OpenGraph
	Twitter     Twitter

	// Set only for articles.
	Authors       []string
	PublishedTime string
	ModifiedTime  string

	Robots             string
	GoogleBot          string
	GoogleVerification string
}

// IsArticle reports whether the metadata describes an article.
func (m Metadata) IsArticle() bool {
	return m.OpenGraph.Type == TypeArticle
}

func pick(external, fallback string) string {
	if external != "" {
		return external
	}
	return fallback
}

// Build merges y over fb. A nil y yields metadata derived from fb alone.
func Build(y *YoastHead, fb Fallback) Metadata {
	if y == nil {
		y = &YoastHead{}
	}

	title := pick(y.Title, fb.Title)
	description := pick(y.Description, fb.Description)
	canonical := pick(y.Canonical, fb.URL)

	var images []Image
	for _, img := range y.OGImage {
		images = append(images, Image{URL: img.URL, Width: img.Width, Height: img.Height, Type: img.Type, Alt: img.Alt})
	}
	if len(images) == 0 && fb.Image != "" {
		images = []Image{{URL: fb.Image}}
	}

	typ := fb.Type
	if typ == "" {
		typ = TypeWebsite
	}
	article := typ == TypeArticle

	m := Metadata{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OpenGraph: OpenGraph{
			Type:        typ,
			Title:       pick(y.OGTitle, title),
			Description: pick(y.OGDescription, description),
			URL:         pick(y.OGURL, canonical),
			SiteName:    pick(y.OGSiteName, pick(fb.SiteName, fb.Title)),
			Images:      images,
		},
		Twitter: Twitter{
			Card:        twitterCard(y.TwitterCard, len(images) > 0),
			Title:       title,
			Description: description,
		},
		Robots:             robots,
		GoogleBot:          googleBot,
		GoogleVerification: fb.GoogleVerification,
	}
	for _, img := range images {
		m.Twitter.Images = append(m.Twitter.Images, img.URL)
	}

	if article {
		author := pick(y.Author, fb.Author)
		m.PublishedTime = pick(y.published(), fb.PublishedTime)
		m.ModifiedTime = pick(y.modified(), fb.ModifiedTime)
		m.OpenGraph.PublishedTime = m.PublishedTime
		m.OpenGraph.ModifiedTime = m.ModifiedTime
		if author != "" {
			m.Authors = []string{author}
			m.OpenGraph.Authors = []string{author}
			m.Twitter.Creator = author
		}
	}
	return m
}

func twitterCard(card string, hasImage bool) string {
	switch card {
	case CardSummary, CardSummaryLargeImage, CardPlayer, CardApp:
		return card
	}
	if hasImage {
		return CardSummaryLargeImage
	}
	return CardSummary
}

// Tag is a single <meta> element. Exactly one of Name and Property is set.
type Tag struct {
	Name     string
	Property string
	Content  string
}

// Tags flattens m into the <meta> elements a page head needs.
// Empty values are omitted. Title and canonical are rendered separately.
func (m Metadata) Tags() []Tag {
	var tags []Tag
	name := func(n, v string) {
		if v != "" {
			tags = append(tags, Tag{Name: n, Content: v})
		}
	}
	prop := func(p, v string) {
		if v != "" {
			tags = append(tags, Tag{Property: p, Content: v})
		}
	}

	name("description", m.Description)
	name("robots", m.Robots)
	name("googlebot", m.GoogleBot)
	name("google-site-verification", m.GoogleVerification)
	for _, a := range m.Authors {
		name("author", a)
	}

	og := m.OpenGraph
	prop("og:type", og.Type)
	prop("og:title", og.Title)
	prop("og:description", og.Description)
	prop("og:url", og.URL)
	prop("og:site_name", og.SiteName)
	for _, img := range og.Images {
		prop("og:image", img.URL)
		if img.Width > 0 {
			prop("og:image:width", strconv.Itoa(img.Width))
		}
		if img.Height > 0 {
			prop("og:image:height", strconv.Itoa(img.Height))
		}
		prop("og:image:type", img.Type)
		prop("og:image:alt", img.Alt)
	}
	prop("article:published_time", og.PublishedTime)
	prop("article:modified_time", og.ModifiedTime)
	for _, a := range og.Authors {
		prop("article:author", a)
	}

	tw := m.Twitter
	name("twitter:card", tw.Card)
	name("twitter:title", tw.Title)
	name("twitter:description", tw.Description)
	for _, img := range tw.Images {
		name("twitter:image", img)
	}
	name("twitter:creator", tw.Creator)
	return tags
}
