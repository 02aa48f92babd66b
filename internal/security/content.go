// Package security sanitizes user supplied post content before it is stored.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer cleans post titles and bodies.
type ContentSanitizer interface {
	// Title strips every tag and returns plain text.
	Title(raw string) string
	// Body keeps a small set of formatting tags and drops scripts, styles,
	// iframes and event handler attributes.
	Body(raw string) string
}

type contentSanitizer struct {
	strict *bluemonday.Policy
	body   *bluemonday.Policy
}

// NewContentSanitizer builds the policies once; they are safe for concurrent use.
func NewContentSanitizer() ContentSanitizer {
	body := bluemonday.NewPolicy()
	body.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "h2", "h3",
	)
	body.AllowAttrs("href").OnElements("a")
	body.AllowStandardURLs()
	body.RequireNoReferrerOnLinks(true)
	body.AddTargetBlankToFullyQualifiedLinks(true)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		body:   body,
	}
}

func (s *contentSanitizer) Title(raw string) string {
	// StrictPolicy escapes entities; titles are stored as plain text.
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}

func (s *contentSanitizer) Body(raw string) string {
	return strings.TrimSpace(s.body.Sanitize(raw))
}
