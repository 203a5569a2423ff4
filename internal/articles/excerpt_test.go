package articles

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerptStripsHTML(t *testing.T) {
	got := Excerpt("<h1>Title</h1><p>First paragraph.</p><script>alert(1)</script>", 100)
	if got != "Title First paragraph." {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}

func TestExcerptPassesPlainTextThrough(t *testing.T) {
	if got := Excerpt("just plain text", 100); got != "just plain text" {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}

func TestExcerptTruncates(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := Excerpt(long, 50)
	if utf8.RuneCountInString(got) > 51 {
		t.Fatalf("excerpt too long: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated excerpt should end with ellipsis: %q", got)
	}
}

func TestExcerptCollapsesWhitespace(t *testing.T) {
	if got := Excerpt("a\n\n  b\tc", 100); got != "a b c" {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}
