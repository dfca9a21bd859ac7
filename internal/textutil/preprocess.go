// Package textutil provides text cleanup applied before the pipeline runs.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Clean strips URLs, HTML tags, emoji and control characters, applies NFKC
// normalization and collapses whitespace. Social-media text arrives noisy;
// every stage downstream assumes this cleanup already happened.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = urlPattern.ReplaceAllString(text, " ")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = stripSymbols(text)
	text = norm.NFKC.String(text)
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripSymbols removes emoji and other pictographic symbols while keeping
// letters, digits, punctuation and spaces in any script.
func stripSymbols(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsPunct(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsMark(r):
			// Combining marks are significant in Indic scripts.
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hash computes a stable content hash for duplicate detection.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// Truncate limits text to max bytes without splitting a rune.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !isRuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
