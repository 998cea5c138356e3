// ABOUTME: Plain-text projection of documents for search indexing and previews.
// ABOUTME: Previews are limited by line count and character count.

package richtext

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultPreviewLines = 5
	DefaultPreviewChars = 80
)

// PlainText joins the block texts with newlines.
func PlainText(d Document) string {
	lines := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		lines[i] = b.Text()
	}
	return strings.Join(lines, "\n")
}

// PlainTextOf decodes raw persisted content and returns its plain text.
func PlainTextOf(raw string) string {
	return PlainText(Decode(raw))
}

// Preview returns at most maxLines lines and maxChars characters of the plain
// text of d, reporting whether anything was cut. Non-positive limits mean no limit.
func Preview(d Document, maxLines, maxChars int) (string, bool) {
	return truncate(PlainText(d), maxLines, maxChars)
}

// PreviewOf is Preview over raw persisted content. Content that does not
// parse is previewed as the raw string.
func PreviewOf(raw string, maxLines, maxChars int) (string, bool) {
	return truncate(PlainTextOf(raw), maxLines, maxChars)
}

func truncate(text string, maxLines, maxChars int) (string, bool) {
	cut := false
	if maxLines > 0 {
		lines := strings.SplitN(text, "\n", maxLines+1)
		if len(lines) > maxLines {
			lines = lines[:maxLines]
			cut = true
		}
		text = strings.Join(lines, "\n")
	}
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
		cut = true
	}
	return text, cut
}
