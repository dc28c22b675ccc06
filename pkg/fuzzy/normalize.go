// Package fuzzy compares names ignoring case, accents, punctuation and spacing.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// ContainsWords reports whether the words of name appear, in order and as whole words,
// in s. Both sides are normalized first. A name without letters or digits falls back to a
// case-insensitive substring match.
func (n *Normalizer) ContainsWords(s, name string) bool {
	normalizedName := n.basicNormalize(name)
	if normalizedName == "" {
		return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(name)))
	}
	return strings.Contains(" "+n.basicNormalize(s)+" ", " "+normalizedName+" ")
}

// basicNormalize lowercases text and strips accents and punctuation.
func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}
