package text

import (
	"strings"
)

var (
	// DefaultSeparators are the artist/track delimiters tried when a caller passes none.
	DefaultSeparators = []string{
		" -- ",
		" - ",
		" – ", // en dash
		" — ", // em dash
		" ― ", // horizontal bar
		" ~ ",
		" // ",
		" | ",
		": ",
	}

	// ShortFormSeparators is the restricted set used for track-list style titles:
	// hyphen, en dash, em dash and horizontal bar.
	ShortFormSeparators = []string{
		" - ",
		" – ",
		" — ",
		" ― ",
	}
)

// SeparatorMatch is the position of a separator inside a string, in bytes.
type SeparatorMatch struct {
	Index  int
	Length int
}

// ArtistTrack is a draft artist/track pair. An empty string means the field is unknown.
type ArtistTrack struct {
	Artist string
	Track  string
}

// IsEmpty reports whether neither artist nor track was recognized.
func (at ArtistTrack) IsEmpty() bool {
	return at.Artist == "" && at.Track == ""
}

// FindSeparator returns the separator that occurs earliest in s. When several separators
// start at the same index the longest one wins, so " -- " is preferred over " - ".
// A nil or empty separators list means DefaultSeparators.
func FindSeparator(s string, separators []string) (SeparatorMatch, bool) {
	if s == "" {
		return SeparatorMatch{}, false
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}

	best := SeparatorMatch{Index: -1}
	for _, sep := range separators {
		if sep == "" {
			continue
		}

		index := strings.Index(s, sep)
		if index < 0 {
			continue
		}

		if best.Index < 0 || index < best.Index || (index == best.Index && len(sep) > best.Length) {
			best = SeparatorMatch{Index: index, Length: len(sep)}
		}
	}

	if best.Index < 0 {
		return SeparatorMatch{}, false
	}

	return best, true
}

type splitOptions struct {
	separators []string
	swap       bool
}

// SplitOption configures SplitArtistTrack.
type SplitOption func(*splitOptions)

// WithSeparators replaces the default separator list.
func WithSeparators(separators []string) SplitOption {
	return func(o *splitOptions) {
		o.separators = separators
	}
}

// WithSwap treats the text before the separator as the track and the text after it as the artist.
func WithSwap() SplitOption {
	return func(o *splitOptions) {
		o.swap = true
	}
}

// SplitArtistTrack splits s around the first separator into artist and track.
// If no separator is found both fields are empty and the caller decides the fallback.
func SplitArtistTrack(s string, opts ...SplitOption) ArtistTrack {
	var o splitOptions
	for _, opt := range opts {
		opt(&o)
	}

	match, ok := FindSeparator(s, o.separators)
	if !ok {
		return ArtistTrack{}
	}

	before := strings.TrimSpace(s[:match.Index])
	after := strings.TrimSpace(s[match.Index+match.Length:])

	if o.swap {
		return ArtistTrack{Artist: after, Track: before}
	}
	return ArtistTrack{Artist: before, Track: after}
}
