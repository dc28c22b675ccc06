// Package text provides the string primitives used to turn raw media-page text into
// structured track metadata: input cleaning, separator search, artist/track splitting,
// time parsing and URL extraction.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	zeroWidthRegex  = regexp.MustCompile("[\u200B\u200C\u200D\u2060\uFEFF]")

	// trackingParams are query parameters that never identify content.
	trackingParams = []string{
		"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
		"si", "feature", "pp",
	}
)

// NormalizeText prepares a single-line title for parsing: NFKC composition (full-width
// ASCII becomes ASCII, but CJK brackets survive), zero-width removal, whitespace collapsing
// and line breaks folded into spaces.
func NormalizeText(s string) string {
	lines := strings.Split(s, "\n")
	normalizedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = NormalizeLine(line)
		if line != "" {
			normalizedLines = append(normalizedLines, line)
		}
	}

	return strings.Join(normalizedLines, " ")
}

// NormalizeLine is NormalizeText for text already known to be one line.
func NormalizeLine(s string) string {
	s = norm.NFKC.String(s)
	s = zeroWidthRegex.ReplaceAllString(s, "")
	s = strings.TrimRight(s, "\r")
	s = whitespaceRegex.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// CleanURL strips tracking parameters and trailing punctuation from a page URL.
// Returns an empty string when rawURL is not an absolute http(s) URL.
func CleanURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	rawURL = strings.TrimRight(rawURL, ".,!?;")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
