// Package sanitize turns classifier-supplied snippets into plain archive text.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"newsdigest/internal/ports"
)

const blockElements = "p, div, br, li, h1, h2, h3, h4, h5, h6, blockquote, tr, section, article"

// Cleaner strips markup from descriptions before they are archived.
type Cleaner struct {
	policy *bluemonday.Policy
}

var _ ports.TextCleaner = (*Cleaner)(nil)

// NewCleaner builds a cleaner on the bluemonday UGC policy.
func NewCleaner() *Cleaner {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "section", "article")
	return &Cleaner{policy: p}
}

// Clean returns whitespace-normalized plain text. Unsafe elements and
// their content are dropped; block boundaries become spaces.
func (c *Cleaner) Clean(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") && !strings.Contains(trimmed, "&") {
		return normalizeWhitespace(trimmed)
	}

	safe := c.policy.Sanitize(trimmed)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(safe))
	if err != nil {
		return normalizeWhitespace(bluemonday.StrictPolicy().Sanitize(trimmed))
	}

	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
