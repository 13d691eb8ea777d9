// Package extract pulls labeled regions out of free-form completion text.
//
// Extraction is permissive: a missing start delimiter is reported through
// the boolean result rather than an error, and a missing end delimiter
// falls back to the remainder of the text so a truncated completion still
// yields a best-effort value.
package extract

import "strings"

// Section returns the trimmed text between the first occurrence of start
// and the first occurrence of end after it. An empty end, or an end that
// never appears after start, selects the remainder of text. The boolean is
// false only when start does not occur in text.
func Section(text, start, end string) (string, bool) {
	idx := strings.Index(text, start)
	if idx == -1 {
		return "", false
	}
	rest := text[idx+len(start):]

	if end == "" {
		return strings.TrimSpace(rest), true
	}
	if stop := strings.Index(rest, end); stop != -1 {
		return strings.TrimSpace(rest[:stop]), true
	}
	return strings.TrimSpace(rest), true
}

// SectionToEnd returns the trimmed text after the first occurrence of start.
func SectionToEnd(text, start string) (string, bool) {
	return Section(text, start, "")
}

// Line returns the trimmed remainder of the line that follows label.
func Line(text, label string) (string, bool) {
	return Section(text, label, "\n")
}
