package musiclink

import (
	"math"
	"strconv"
	"strings"

	"nowplaying/pkg/text"
)

// maxArtworkSide bounds parsed sizes so the area cannot overflow.
const maxArtworkSide = 1 << 20

// MediaSession mirrors the platform media session object a page exposes.
type MediaSession struct {
	Metadata *MediaMetadata `json:"metadata"`
}

// MediaMetadata is the metadata part of a media session.
type MediaMetadata struct {
	Title   string       `json:"title"`
	Artist  string       `json:"artist"`
	Album   string       `json:"album"`
	Artwork []MediaImage `json:"artwork"`
}

// MediaImage is one artwork entry. Sizes holds space separated "WxH" tokens or "any".
type MediaImage struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes,omitempty"`
	Type  string `json:"type,omitempty"`
}

// ParseMediaInfo maps a media session to a draft record. Returns nil for a nil session or
// a session without metadata.
func ParseMediaInfo(session *MediaSession) *TrackInfo {
	if session == nil || session.Metadata == nil {
		return nil
	}

	metadata := session.Metadata
	return &TrackInfo{
		Artist:   text.NormalizeLine(metadata.Artist),
		Track:    text.NormalizeLine(metadata.Title),
		Album:    text.NormalizeLine(metadata.Album),
		TrackArt: largestArtwork(metadata.Artwork),
	}
}

// largestArtwork returns the source of the entry with the largest reported size. Later
// entries win ties and entries without a readable size rank lowest, so a list sorted by
// ascending size yields its last entry.
func largestArtwork(artwork []MediaImage) string {
	best := ""
	bestArea := -1
	for _, image := range artwork {
		src := strings.TrimSpace(image.Src)
		if src == "" {
			continue
		}

		area := imageArea(image.Sizes)
		if best == "" || area >= bestArea {
			best = src
			bestArea = area
		}
	}
	return best
}

// imageArea returns the largest area listed in sizes, MaxInt for "any" and -1 when no
// token is readable.
func imageArea(sizes string) int {
	area := -1
	for _, token := range strings.Fields(strings.ToLower(sizes)) {
		if token == "any" {
			return math.MaxInt
		}

		width, height, ok := strings.Cut(token, "x")
		if !ok {
			continue
		}
		w, errW := strconv.Atoi(width)
		h, errH := strconv.Atoi(height)
		if errW != nil || errH != nil || w < 0 || h < 0 || w > maxArtworkSide || h > maxArtworkSide {
			continue
		}
		if w*h > area {
			area = w * h
		}
	}
	return area
}

// MediaSessionNormalizer adapts ParseMediaInfo to the Normalizer interface.
type MediaSessionNormalizer struct{}

// NewMediaSessionNormalizer creates a media session normalizer.
func NewMediaSessionNormalizer() *MediaSessionNormalizer {
	return &MediaSessionNormalizer{}
}

func (n *MediaSessionNormalizer) Name() string {
	return string(KindMediaSession)
}

func (n *MediaSessionNormalizer) CanNormalize(src Source) bool {
	return src.EffectiveKind() == KindMediaSession
}

func (n *MediaSessionNormalizer) Normalize(src Source) *TrackInfo {
	return ParseMediaInfo(src.MediaSession)
}
