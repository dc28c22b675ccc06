package text

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	cssURLRegex  = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^'"\s)][^)]*?))\s*\)`)
	videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// videoPathPrefixes are path segments followed by the video ID on the main domain.
	videoPathPrefixes = map[string]bool{
		"embed":  true,
		"v":      true,
		"shorts": true,
		"live":   true,
	}
)

// URLFromCSSProperty returns the argument of the first url(...) token in a CSS property
// value such as a background shorthand. Returns an empty string when there is none.
func URLFromCSSProperty(prop string) string {
	matches := cssURLRegex.FindStringSubmatch(prop)
	if matches == nil {
		return ""
	}

	for _, group := range matches[1:] {
		if group != "" {
			return strings.TrimSpace(group)
		}
	}
	return ""
}

// VideoIDFromURL extracts the YouTube video ID from watch, short-link and embed URLs.
// Returns an empty string for any other URL.
func VideoIDFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	hostname := strings.ToLower(u.Hostname())
	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var videoID string
	switch hostname {
	case "youtu.be":
		videoID = pathParts[0]
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com",
		"youtube-nocookie.com", "www.youtube-nocookie.com":
		if pathParts[0] == "watch" {
			videoID = u.Query().Get("v")
		} else if len(pathParts) >= 2 && videoPathPrefixes[pathParts[0]] {
			videoID = pathParts[1]
		}
	default:
		return ""
	}

	if !videoIDRegex.MatchString(videoID) {
		return ""
	}
	return videoID
}
