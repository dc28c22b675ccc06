package musiclink

import (
	"errors"
	"testing"
)

func TestManager_Normalize(t *testing.T) {
	manager := NewManager(DefaultConfig())

	tests := []struct {
		name           string
		src            Source
		expected       TrackInfo
		expectedSource string
	}{
		{
			name:           "Video title",
			src:            Source{Kind: KindVideoTitle, Text: "Artist - Track"},
			expected:       TrackInfo{Artist: "Artist", Track: "Track"},
			expectedSource: "video-title",
		},
		{
			name:           "Kind inferred from a SoundCloud URL",
			src:            Source{Text: "Artist: Track", OriginURL: "https://soundcloud.com/a/b"},
			expected:       TrackInfo{Track: "Artist: Track"},
			expectedSource: "short-title",
		},
		{
			name: "Description wins over the fallback title",
			src: Source{
				Kind:          KindDescription,
				Text:          "Track · Artist\n\nAlbum",
				FallbackTitle: "Other - Title",
			},
			expected:       TrackInfo{Artist: "Artist", Track: "Track", Album: "Album"},
			expectedSource: "description",
		},
		{
			name: "Unrecognized description falls back to the title",
			src: Source{
				Kind:          KindDescription,
				Text:          "Provided to YouTube by Label\n\nAuto-generated by YouTube.",
				FallbackTitle: "Artist - Track",
			},
			expected:       TrackInfo{Artist: "Artist", Track: "Track"},
			expectedSource: "video-title",
		},
		{
			name: "Plain-text description yields to a complete fallback title",
			src: Source{
				Kind:          KindDescription,
				Text:          "Subscribe to my channel for more music!\nFollow me on Instagram",
				FallbackTitle: "Daft Punk - Around the World",
			},
			expected:       TrackInfo{Artist: "Daft Punk", Track: "Around the World"},
			expectedSource: "video-title",
		},
		{
			name: "Track-only media session yields to a complete fallback title",
			src: Source{
				MediaSession:  &MediaSession{Metadata: &MediaMetadata{Title: "Around the World"}},
				FallbackTitle: "Daft Punk - Around the World",
			},
			expected:       TrackInfo{Artist: "Daft Punk", Track: "Around the World"},
			expectedSource: "video-title",
		},
		{
			name: "Partial description kept when the fallback title is no better",
			src: Source{
				Kind:          KindDescription,
				Text:          "Around the World\n\nHomework",
				FallbackTitle: "Around the World",
			},
			expected:       TrackInfo{Track: "Around the World", Album: "Homework"},
			expectedSource: "description",
		},
		{
			name: "Media session",
			src: Source{
				MediaSession: &MediaSession{Metadata: &MediaMetadata{Artist: "Artist", Title: "Track"}},
			},
			expected:       TrackInfo{Artist: "Artist", Track: "Track"},
			expectedSource: "media-session",
		},
		{
			name: "Empty media session falls back to the title",
			src: Source{
				Kind:          KindMediaSession,
				MediaSession:  &MediaSession{Metadata: &MediaMetadata{}},
				FallbackTitle: "Track Name",
			},
			expected:       TrackInfo{Track: "Track Name"},
			expectedSource: "video-title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := manager.Normalize(tt.src)
			if err != nil {
				t.Fatalf("Normalize() unexpected error: %v", err)
			}
			if *result.Info != tt.expected {
				t.Errorf("Normalize() = %+v, want %+v", result.Info, tt.expected)
			}
			if result.Normalizer != tt.expectedSource {
				t.Errorf("Normalize() normalizer = %s, want %s", result.Normalizer, tt.expectedSource)
			}
		})
	}
}

func TestManager_NormalizeErrors(t *testing.T) {
	manager := NewManager(DefaultConfig())

	tests := []struct {
		name    string
		src     Source
		wantErr error
	}{
		{
			name:    "Unknown kind",
			src:     Source{Kind: "bogus", Text: "Artist - Track"},
			wantErr: ErrNoNormalizer,
		},
		{
			name:    "Description without track line or fallback",
			src:     Source{Kind: KindDescription, Text: "© 2020 Label"},
			wantErr: ErrNotRecognized,
		},
		{
			name:    "Empty title",
			src:     Source{Kind: KindVideoTitle, Text: "   "},
			wantErr: ErrNotRecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Normalize(tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		input    string
		expected SourceKind
		ok       bool
	}{
		{"video-title", KindVideoTitle, true},
		{" Description ", KindDescription, true},
		{"", "", true},
		{"podcast", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, ok := ParseSourceKind(tt.input)
			if kind != tt.expected || ok != tt.ok {
				t.Errorf("ParseSourceKind(%q) = (%q, %v), want (%q, %v)", tt.input, kind, ok, tt.expected, tt.ok)
			}
		})
	}
}
