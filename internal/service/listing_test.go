package service

import (
	"math"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":     1,
		"1":    1,
		"3":    3,
		" 4 ":  4,
		"0":    1,
		"-2":   1,
		"abc":  1,
		"2.5":  1,
		"9999": 9999,
	}
	for in, want := range tests {
		if got := ParsePage(in); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSanitizeSearchTerm(t *testing.T) {
	tests := map[string]string{
		"<script>":            "script",
		"hello world":         "hello world",
		"Go 1.22!":            "Go 122",
		".*(a|b)+":            "ab",
		"":                    "",
		"café":                "caf",
		"  spaced  ":          "  spaced  ",
		`"; DROP TABLE posts`: " DROP TABLE posts",
	}
	for in, want := range tests {
		if got := SanitizeSearchTerm(in); got != want {
			t.Errorf("SanitizeSearchTerm(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		page, pageSize int
		total          int64
		offset         int
		hasNext        bool
		inRange        bool
	}{
		{1, 6, 10, 0, true, true},
		{2, 6, 10, 6, false, true},
		{3, 6, 10, 0, false, false},
		{1, 6, 6, 0, false, true},
		{2, 6, 6, 0, false, false},
		{1, 6, 0, 0, false, false},
		{math.MaxInt, 6, 10, 0, false, false},
		{1537228672809129302, 6, 10, 0, false, false},
		{math.MaxInt / 6, 6, math.MaxInt64, (math.MaxInt/6 - 1) * 6, true, true},
	}
	for _, tt := range tests {
		offset, hasNext, inRange := pageWindow(tt.page, tt.pageSize, tt.total)
		if offset != tt.offset || hasNext != tt.hasNext || inRange != tt.inRange {
			t.Errorf("pageWindow(%d, %d, %d) = %d, %v, %v; want %d, %v, %v",
				tt.page, tt.pageSize, tt.total, offset, hasNext, inRange, tt.offset, tt.hasNext, tt.inRange)
		}
	}
}
