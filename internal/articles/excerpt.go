package articles

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt reduces an HTML article body to a plain-text snippet of at most
// max runes for list cards. Non-HTML input passes through as-is.
func Excerpt(body string, max int) string {
	text := body
	if strings.Contains(body, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := max
	// Break on a word boundary when one is close enough.
	for i := max; i > max-20 && i > 0; i-- {
		if runes[i-1] == ' ' {
			cut = i - 1
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
