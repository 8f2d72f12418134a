// Package content turns WordPress-rendered markup into text and HTML that the
// templates can display: entity decoding, tag stripping, and normalization of
// page-builder wrapper markup.
package content

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
)

var (
	reEntity     = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|\w+);`)
	reTag        = regexp.MustCompile(`<[^>]+>`)
	reWhitespace = regexp.MustCompile(`\s+`)

	reSectionOpen  = regexp.MustCompile(`(?i)<section\b[^>]*>`)
	reSectionClose = regexp.MustCompile(`(?i)</section>`)
	// <div class="... elementor-column ..."> and friends
	reWrapper = regexp.MustCompile(`(?i)<div\b[^>]*class="[^"]*(?:` + strings.Join(wrapperClasses, "|") + `)[^"]*"[^>]*>`)
	// social share widgets are dropped along with their contents up to the first </div>
	reShareBlock = regexp.MustCompile(`(?i)<div[^>]*class="[^"]*(?:oss-social-share|ocean-social|social-share)[^"]*"[^>]*>[\s\S]*?</div>`)
	reStyleAttr  = regexp.MustCompile(`(?i)\sstyle="[^"]*"`)
	reEmptyPara  = regexp.MustCompile(`(?i)<p>\s*</p>`)

	reReadMore = regexp.MustCompile(`(?i)more-link|elementor-widget-read-more`)
	reSlug     = regexp.MustCompile(`[^a-z0-9]+`)
)

// wrapperClasses are Elementor layout classes whose divs carry no meaning.
var wrapperClasses = []string{
	"elementor-widget-container",
	"elementor-widget-wrap",
	"elementor-container",
	"elementor-column",
	"elementor-element",
	"elementor-widget",
}

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// Decode replaces character references with the characters they name.
// Unknown names and out-of-range code points are left as written.
func Decode(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return reEntity.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if name[0] != '#' {
			if v, ok := namedEntities[name]; ok {
				return v
			}
			return ref
		}
		var (
			n   uint64
			err error
		)
		if name[1] == 'x' || name[1] == 'X' {
			n, err = strconv.ParseUint(name[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(name[1:], 10, 32)
		}
		if err != nil || !utf8.ValidRune(rune(n)) {
			return ref
		}
		return string(rune(n))
	})
}

// StripTags removes all markup and collapses whitespace into single spaces.
func StripTags(s string) string {
	for reTag.MatchString(s) {
		s = reTag.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// Plain is StripTags followed by Decode, used for titles, excerpts and names.
func Plain(s string) string {
	return Decode(StripTags(s))
}

// Normalize rewrites WordPress and Elementor wrapper markup into plain divs,
// drops social share widgets, inline styles and empty paragraphs.
// The result is still HTML; this is not a sanitizer.
func Normalize(html string) string {
	clean := reSectionOpen.ReplaceAllString(html, "<div>")
	clean = reSectionClose.ReplaceAllString(clean, "</div>")
	clean = reWrapper.ReplaceAllString(clean, "<div>")
	clean = reShareBlock.ReplaceAllString(clean, "")
	// Removing an attribute or paragraph can splice a new one together,
	// so repeat until nothing changes.
	for {
		next := reEmptyPara.ReplaceAllString(reStyleAttr.ReplaceAllString(clean, ""), "")
		if next == clean {
			return clean
		}
		clean = next
	}
}

// HasInlineStyle reports whether html still carries a style="..." attribute.
func HasInlineStyle(html string) bool {
	return reStyleAttr.MatchString(html)
}

// NeedsFullContent reports whether WordPress truncated the post body behind a
// read-more link, in which case the public page holds the complete article.
func NeedsFullContent(html string) bool {
	return reReadMore.MatchString(html)
}

// HTML returns a templ.Component that writes the normalized form of html
// without escaping it.
func HTML(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Normalize(html))
		return err
	})
}

// CategorySlug returns slug, or a URL-safe slug derived from name when the
// term came without one.
func CategorySlug(name, slug string) string {
	if slug != "" {
		return slug
	}
	s := reSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// ShareLinks holds social sharing URLs for a page.
type ShareLinks struct {
	Twitter  string
	Facebook string
	LinkedIn string
}

// Share builds sharing URLs for pageURL with the given plain-text title.
func Share(pageURL, title string) ShareLinks {
	u := url.QueryEscape(pageURL)
	t := url.QueryEscape(title)
	return ShareLinks{
		Twitter:  "https://twitter.com/intent/tweet?url=" + u + "&text=" + t,
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + u,
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + u,
	}
}
