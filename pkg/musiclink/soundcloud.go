package musiclink

import (
	"nowplaying/pkg/text"
)

// ParseShortFormTitle parses track-list style titles such as SoundCloud's, where only dash
// separators are meaningful. A nil separators list means text.ShortFormSeparators.
// Unmatched input is returned whole as the track.
func ParseShortFormTitle(title string, separators []string) TrackInfo {
	if len(separators) == 0 {
		separators = text.ShortFormSeparators
	}

	cleaned := text.NormalizeText(title)
	if cleaned == "" {
		return TrackInfo{}
	}

	result := text.SplitArtistTrack(cleaned, text.WithSeparators(separators))
	if result.IsEmpty() {
		return TrackInfo{Track: cleaned}
	}

	return TrackInfo{Artist: result.Artist, Track: result.Track}
}

// SoundCloudNormalizer handles short-form titles.
type SoundCloudNormalizer struct {
	separators []string
}

// NewSoundCloudNormalizer creates a short-form title normalizer.
func NewSoundCloudNormalizer(separators []string) *SoundCloudNormalizer {
	return &SoundCloudNormalizer{separators: separators}
}

func (n *SoundCloudNormalizer) Name() string {
	return string(KindShortTitle)
}

func (n *SoundCloudNormalizer) CanNormalize(src Source) bool {
	return src.EffectiveKind() == KindShortTitle
}

func (n *SoundCloudNormalizer) Normalize(src Source) *TrackInfo {
	info := ParseShortFormTitle(src.title(), n.separators)
	return &info
}
