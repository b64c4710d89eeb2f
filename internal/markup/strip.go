package markup

import (
	"regexp"
	"strings"
)

var (
	verseBlock   = regexp.MustCompile(`(?s)\[sh\](.*?)\[/sh\]`)
	footnoteMark = regexp.MustCompile(`(?s)\[\[.*?\]\]`)
	imageMark    = regexp.MustCompile(`(?i)\[(?:img:)?[^\s\[\]]+\.(?:jpe?g|png|gif|webp|svg)\]`)
	strayTokens  = strings.NewReplacer(verseOpen, "", verseClose, "", "[", "", "]", "", "{", "", "}", "")
)

// StripMarkup removes every construct the renderer recognizes and returns
// plain prose: verse tags are dropped with hemistichs joined by a space,
// footnotes and images are removed, and span wrappers are unwrapped.
func StripMarkup(text string) string {
	text = verseBlock.ReplaceAllStringFunc(text, func(m string) string {
		body := m[len(verseOpen) : len(m)-len(verseClose)]
		var parts []string
		for _, line := range verseLines(body) {
			parts = append(parts, line...)
		}
		return " " + strings.Join(parts, " ") + " "
	})
	text = footnoteMark.ReplaceAllString(text, "")
	text = imageMark.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\n`, " ")
	text = strayTokens.Replace(text)
	for strings.Contains(text, "((") || strings.Contains(text, "))") {
		text = strings.ReplaceAll(text, "((", "")
		text = strings.ReplaceAll(text, "))", "")
	}
	return strings.Join(strings.Fields(text), " ")
}

// Preview strips text and cuts it to at most n runes, backing up to the last
// word boundary and appending "...". Text that fits is returned whole.
func Preview(text string, n int) string {
	plain := StripMarkup(text)
	runes := []rune(plain)
	if n <= 0 || len(runes) <= n {
		return plain
	}
	cut := runes[:n]
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimSpace(string(cut)) + "..."
}

// Truncate strips text and returns at most its first n runes.
func Truncate(text string, n int) string {
	runes := []rune(StripMarkup(text))
	if n <= 0 || len(runes) <= n {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:n]))
}
