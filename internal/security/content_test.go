package security

import (
	"strings"
	"testing"
)

func TestTitle_StripsMarkup(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Title(`  <b>Hello</b> <script>alert(1)</script>world & friends  `)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Errorf("Title() = %q, markup or script survived", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "& friends") {
		t.Errorf("Title() = %q, text lost", got)
	}
}

func TestBody_KeepsFormattingDropsScripts(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Body(`<p onclick="steal()">Intro <strong>bold</strong></p><script>alert(1)</script><iframe src="https://evil"></iframe>`)
	if strings.Contains(got, "script") || strings.Contains(got, "iframe") || strings.Contains(got, "onclick") {
		t.Errorf("Body() = %q, unsafe content survived", got)
	}
	if !strings.Contains(got, "<p>Intro <strong>bold</strong></p>") {
		t.Errorf("Body() = %q, formatting lost", got)
	}
}

func TestBody_LinksGetNoReferrer(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Body(`<a href="https://example.com/post">read</a> <a href="javascript:alert(1)">bad</a>`)
	if !strings.Contains(got, "noreferrer") {
		t.Errorf("Body() = %q, want noreferrer on link", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("Body() = %q, javascript URL survived", got)
	}
}

func TestBody_Empty(t *testing.T) {
	if got := NewContentSanitizer().Body(""); got != "" {
		t.Errorf("Body(\"\") = %q", got)
	}
}
