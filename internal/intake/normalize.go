package intake

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NegationPhrases are the answers that mean "none" for a list topic. The
// kiosk speaks vi-VN; the English forms cover operators typing on a
// standard keyboard.
var NegationPhrases = []string{
	"không có",
	"không",
	"none",
	"no",
	"nothing",
}

var folder = cases.Fold()

// NormalizeList turns dictated free text into a list. Empty text or text
// containing a negation phrase yields an empty list; otherwise the text is
// split on commas, each part trimmed, and empty parts dropped. Order and
// duplicates are preserved.
func NormalizeList(raw string) []string {
	text := norm.NFC.String(strings.TrimSpace(raw))
	if text == "" || IsNegation(text) {
		return []string{}
	}

	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsNegation reports whether text contains one of NegationPhrases as whole
// words, ignoring case and Unicode normalization form.
func IsNegation(text string) bool {
	words := splitWords(text)
	if len(words) == 0 {
		return false
	}
	for _, phrase := range NegationPhrases {
		if containsSequence(words, splitWords(phrase)) {
			return true
		}
	}
	return false
}

// splitWords tokenizes on whitespace and commas only, so hyphenated names
// such as "No-Spa" stay one word. Punctuation around a word is dropped.
func splitWords(s string) []string {
	s = folder.String(norm.NFC.String(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	words := fields[:0]
	for _, f := range fields {
		if w := strings.TrimFunc(f, notWordRune); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}

func containsSequence(words, seq []string) bool {
	if len(seq) == 0 || len(seq) > len(words) {
		return false
	}
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j := range seq {
			if words[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
