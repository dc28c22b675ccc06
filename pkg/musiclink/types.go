// Package musiclink turns the raw text and metadata objects surfaced by media pages into
// draft artist/track/album records.
package musiclink

import (
	"net/url"
	"strings"
)

// TrackInfo holds track information extracted from one raw source.
// An empty string means the field was not recognized.
type TrackInfo struct {
	Artist   string `json:"artist,omitempty"`
	Track    string `json:"track,omitempty"`
	Album    string `json:"album,omitempty"`
	TrackArt string `json:"trackArt,omitempty"`
}

// IsEmpty reports whether neither artist nor track was recognized.
func (t *TrackInfo) IsEmpty() bool {
	return t == nil || (t.Artist == "" && t.Track == "")
}

// SourceKind names the formatting convention of a raw source.
type SourceKind string

const (
	// KindVideoTitle is a free-form video title ("Artist - Track", `Artist "Track"`, ...).
	KindVideoTitle SourceKind = "video-title"
	// KindShortTitle is a track-list style title that only uses dash separators.
	KindShortTitle SourceKind = "short-title"
	// KindDescription is an auto-generated multi-line description ("Track · Artist").
	KindDescription SourceKind = "description"
	// KindMediaSession is a platform media session metadata object.
	KindMediaSession SourceKind = "media-session"
)

// ParseSourceKind validates a kind name. The empty string is accepted and means
// the kind is inferred from the origin URL.
func ParseSourceKind(s string) (SourceKind, bool) {
	switch kind := SourceKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "", KindVideoTitle, KindShortTitle, KindDescription, KindMediaSession:
		return kind, true
	}
	return "", false
}

// Source is one raw input handed over by a page adapter.
type Source struct {
	Kind SourceKind
	// Text is the title or description, depending on Kind.
	Text string
	// FallbackTitle is the page title, used when a description or media session
	// yields nothing.
	FallbackTitle string
	MediaSession  *MediaSession
	OriginURL     string
}

// EffectiveKind returns Kind, or the kind implied by OriginURL when Kind is empty.
func (s Source) EffectiveKind() SourceKind {
	if s.Kind != "" {
		return s.Kind
	}
	if s.MediaSession != nil {
		return KindMediaSession
	}
	return KindForURL(s.OriginURL)
}

// title returns the text a title normalizer should read for this source.
func (s Source) title() string {
	switch s.EffectiveKind() {
	case KindVideoTitle, KindShortTitle:
		return s.Text
	}
	return s.FallbackTitle
}

// Normalizer maps one raw source shape to a draft record.
type Normalizer interface {
	// Name identifies the normalizer in logs and metrics.
	Name() string

	// CanNormalize checks if this normalizer understands the source.
	CanNormalize(src Source) bool

	// Normalize returns nil when the source is not in this normalizer's format.
	Normalize(src Source) *TrackInfo
}

// KindForURL guesses the title convention from the page URL.
// Unknown hosts default to the video title convention, the most permissive one.
func KindForURL(rawURL string) SourceKind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return KindVideoTitle
	}

	hostname := strings.ToLower(u.Hostname())
	// Support main, mobile, and short link domains.
	switch hostname {
	case "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com", "on.soundcloud.com":
		return KindShortTitle
	}
	return KindVideoTitle
}
