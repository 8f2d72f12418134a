package seo

import (
	"encoding/json"
	"strings"
)

// Publisher identifies the organization behind the site in JSON-LD blocks.
type Publisher struct {
	Name    string
	LogoURL string
}

func (p Publisher) schema() map[string]interface{} {
	data := map[string]interface{}{
		"@type": "Organization",
		"name":  p.Name,
	}
	if p.LogoURL != "" {
		data["logo"] = map[string]string{
			"@type": "ImageObject",
			"url":   p.LogoURL,
		}
	}
	return data
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	Name string
	URL  string
}

func encode(data map[string]interface{}) string {
	data["@context"] = "https://schema.org"
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJSONLD produces a Schema.org WebSite block.
func WebsiteJSONLD(name, url, description, author string) string {
	data := map[string]interface{}{
		"@type": "WebSite",
		"name":  name,
		"url":   url,
	}
	if description != "" {
		data["description"] = description
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	return encode(data)
}

// BlogJSONLD produces a Schema.org Blog block for listing pages.
func BlogJSONLD(name, url, description string, pub Publisher) string {
	data := map[string]interface{}{
		"@type":     "Blog",
		"name":      name,
		"publisher": pub.schema(),
	}
	if url != "" {
		data["url"] = url
	}
	if description != "" {
		data["description"] = description
	}
	return encode(data)
}

// ArticleJSONLD produces a Schema.org Article block from resolved metadata.
func ArticleJSONLD(m Metadata, pub Publisher, keywords []string) string {
	data := map[string]interface{}{
		"@type":     "Article",
		"headline":  m.Title,
		"publisher": pub.schema(),
	}
	if m.Description != "" {
		data["description"] = m.Description
	}
	if m.Canonical != "" {
		data["url"] = m.Canonical
		data["mainEntityOfPage"] = map[string]string{
			"@type": "WebPage",
			"@id":   m.Canonical,
		}
	}
	if len(m.OpenGraph.Images) > 0 {
		data["image"] = []string{m.OpenGraph.Images[0].URL}
	}
	if m.PublishedTime != "" {
		data["datePublished"] = m.PublishedTime
		data["dateModified"] = pick(m.ModifiedTime, m.PublishedTime)
	}
	if len(m.Authors) > 0 {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  m.Authors[0],
		}
	}
	if len(keywords) > 0 {
		data["keywords"] = strings.Join(keywords, ", ")
	}
	return encode(data)
}

// BreadcrumbJSONLD produces a Schema.org BreadcrumbList block.
func BreadcrumbJSONLD(crumbs []Crumb) string {
	items := make([]map[string]interface{}, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, map[string]interface{}{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     c.URL,
		})
	}
	return encode(map[string]interface{}{
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}
