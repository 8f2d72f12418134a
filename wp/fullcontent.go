package wp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchFullContent downloads the public page at link and returns the inner
// HTML of its first .entry-content element. WordPress truncates the REST
// content of posts using a read-more block; the theme page has all of it.
func (c *Client) FetchFullContent(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("full content: empty link: %w", ErrNotFound)
	}
	body, _, err := c.fetch(ctx, "full_content", link, "text/html")
	if err != nil {
		return "", err
	}
	return ExtractEntryContent(body)
}

// ExtractEntryContent returns the inner HTML of the first .entry-content
// element in a theme page.
func ExtractEntryContent(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	sel := doc.Find(".entry-content").First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("full content: no .entry-content: %w", ErrNotFound)
	}
	html, err := sel.Html()
	if err != nil {
		return "", err
	}
	html = strings.TrimSpace(html)
	if html == "" {
		return "", fmt.Errorf("full content: empty .entry-content: %w", ErrNotFound)
	}
	return html, nil
}
