package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type testConnector struct {
	label string
}

func (c testConnector) Label() string { return c.label }

func TestSong_FieldPrecedence(t *testing.T) {
	song := NewSong(SongData{
		Artist:      "Parsed Artist",
		Track:       "Parsed Track",
		Album:       "Parsed Album",
		AlbumArtist: "Parsed Album Artist",
		Duration:    200,
		TrackArt:    "https://img/parsed.jpg",
		OriginURL:   "https://example.com/watch",
	}, nil)

	if err := song.ApplyUserCorrection(map[Field]string{
		FieldArtist:      "Fixed Artist",
		FieldTrack:       "Fixed Track",
		FieldAlbum:       "Fixed Album",
		FieldAlbumArtist: "Fixed Album Artist",
	}); err != nil {
		t.Fatalf("ApplyUserCorrection() unexpected error: %v", err)
	}
	song.SetProcessedDuration(180)
	song.UpdateMetadata(func(m *Metadata) {
		m.TrackArtURL = "https://img/enriched.jpg"
	})

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Artist from processed", song.Artist(), "Fixed Artist"},
		{"Track from processed", song.Track(), "Fixed Track"},
		{"Album from processed", song.Album(), "Fixed Album"},
		{"Album artist from processed", song.AlbumArtist(), "Fixed Album Artist"},
		{"Duration from parsed", song.Duration(), 200},
		{"Track art from parsed", song.TrackArt(), "https://img/parsed.jpg"},
		{"Origin URL from parsed", song.OriginURL(), "https://example.com/watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestSong_FallbackToLowerLayers(t *testing.T) {
	song := NewSong(SongData{Artist: "Artist"}, nil)

	if song.Track() != "" {
		t.Errorf("Track() = %q, want empty", song.Track())
	}
	if song.Duration() != 0 {
		t.Errorf("Duration() = %d, want 0", song.Duration())
	}
	if song.TrackArt() != "" {
		t.Errorf("TrackArt() = %q, want empty", song.TrackArt())
	}

	song.SetProcessedDuration(180)
	if song.Duration() != 180 {
		t.Errorf("Duration() = %d, want processed 180", song.Duration())
	}

	song.UpdateMetadata(func(m *Metadata) { m.TrackArtURL = "https://img/enriched.jpg" })
	if song.TrackArt() != "https://img/enriched.jpg" {
		t.Errorf("TrackArt() = %q, want the enriched artwork", song.TrackArt())
	}
}

func TestSong_ProcessedValuesAreNeverUnset(t *testing.T) {
	song := NewSong(SongData{Artist: "Parsed"}, nil)

	if err := song.SetProcessed(FieldArtist, "Fixed"); err != nil {
		t.Fatalf("SetProcessed() unexpected error: %v", err)
	}
	if err := song.SetProcessed(FieldArtist, ""); err != nil {
		t.Fatalf("SetProcessed() unexpected error: %v", err)
	}
	song.SetProcessedDuration(120)
	song.SetProcessedDuration(0)

	if song.Artist() != "Fixed" {
		t.Errorf("Artist() = %q, want %q", song.Artist(), "Fixed")
	}
	if song.Duration() != 120 {
		t.Errorf("Duration() = %d, want 120", song.Duration())
	}
}

func TestSong_SetProcessedRejectsUnknownSlots(t *testing.T) {
	song := NewSong(SongData{}, nil)

	for _, field := range []Field{FieldOriginURL, FieldUniqueID, FieldDuration, "bogus"} {
		if err := song.SetProcessed(field, "x"); !errors.Is(err, ErrFieldNotProcessed) {
			t.Errorf("SetProcessed(%s) error = %v, want %v", field, err, ErrFieldNotProcessed)
		}
	}
}

func TestSong_ApplyUserCorrection(t *testing.T) {
	song := NewSong(SongData{Artist: "Artist", Track: "Track"}, nil)

	err := song.ApplyUserCorrection(map[Field]string{
		FieldArtist:   "Other",
		FieldDuration: "10",
	})
	if !errors.Is(err, ErrFieldNotEditable) {
		t.Fatalf("ApplyUserCorrection() error = %v, want %v", err, ErrFieldNotEditable)
	}
	if song.Artist() != "Artist" {
		t.Errorf("Artist() = %q, a rejected correction must not write anything", song.Artist())
	}
	if song.IsValid() {
		t.Error("IsValid() = true after a rejected correction")
	}

	if err := song.ApplyUserCorrection(map[Field]string{FieldTrack: "Fixed"}); err != nil {
		t.Fatalf("ApplyUserCorrection() unexpected error: %v", err)
	}
	if !song.Flags().IsCorrectedByUser || !song.IsValid() {
		t.Error("A user correction should mark the song corrected and valid")
	}
}

func TestSong_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		flags    Flags
		expected bool
	}{
		{"No flags", Flags{}, false},
		{"Valid", Flags{IsValid: true}, true},
		{"Corrected by user", Flags{IsCorrectedByUser: true}, true},
		{"Unrelated flags", Flags{IsScrobbled: true, IsSkipped: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := NewSong(SongData{}, nil)
			song.SetFlags(tt.flags)
			if song.IsValid() != tt.expected {
				t.Errorf("IsValid() = %v, want %v", song.IsValid(), tt.expected)
			}
		})
	}
}

func TestSong_UniqueID(t *testing.T) {
	t.Run("Explicit ID is used verbatim", func(t *testing.T) {
		song := NewSong(SongData{Artist: "A", Track: "T", UniqueID: "yt:dQw4w9WgXcQ"}, nil)
		id, ok := song.UniqueID()
		if !ok || id != "yt:dQw4w9WgXcQ" {
			t.Errorf("UniqueID() = (%q, %v), want the explicit ID", id, ok)
		}
	})

	t.Run("Empty song has no ID", func(t *testing.T) {
		song := NewSong(SongData{Artist: "A", UniqueID: "id"}, nil)
		if id, ok := song.UniqueID(); ok {
			t.Errorf("UniqueID() = %q, want none", id)
		}
	})

	t.Run("Content hash ignores case and spacing", func(t *testing.T) {
		a := NewSong(SongData{Artist: "Daft Punk", Track: "One More Time"}, nil)
		b := NewSong(SongData{Artist: "  daft punk ", Track: "ONE MORE TIME"}, nil)
		idA, _ := a.UniqueID()
		idB, _ := b.UniqueID()
		if idA == "" || idA != idB {
			t.Errorf("UniqueID() = %q and %q, want the same hash", idA, idB)
		}
	})

	t.Run("Content hash keeps punctuation", func(t *testing.T) {
		tests := []struct {
			name string
			a, b SongData
		}{
			{"Punctuation-only artists", SongData{Artist: "!!!", Track: "Heart of Hearts"}, SongData{Artist: "???", Track: "Heart of Hearts"}},
			{"Apostrophe", SongData{Artist: "Guns N' Roses", Track: "Patience"}, SongData{Artist: "Guns N Roses", Track: "Patience"}},
			{"Accent", SongData{Artist: "Björk", Track: "Hyperballad"}, SongData{Artist: "Bjork", Track: "Hyperballad"}},
			{"Part boundary", SongData{Artist: "ab", Track: "c"}, SongData{Artist: "a", Track: "bc"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				a, b := NewSong(tt.a, nil), NewSong(tt.b, nil)
				if a.Equals(b) {
					t.Errorf("%v and %v should not be equal", a, b)
				}
			})
		}
	})

	t.Run("Content hash composes Unicode", func(t *testing.T) {
		a := NewSong(SongData{Artist: "Bj\u00f6rk", Track: "Joga"}, nil)
		b := NewSong(SongData{Artist: "Bjo\u0308rk", Track: "Joga"}, nil)
		if !a.Equals(b) {
			t.Error("Composed and decomposed spellings should be equal")
		}
	})

	t.Run("Album is part of the hash", func(t *testing.T) {
		a := NewSong(SongData{Artist: "A", Track: "T", Album: "One"}, nil)
		b := NewSong(SongData{Artist: "A", Track: "T", Album: "Two"}, nil)
		if a.Equals(b) {
			t.Error("Songs from different albums should not be equal")
		}
	})

	t.Run("Stable across corrections", func(t *testing.T) {
		song := NewSong(SongData{Artist: "A", Track: "T"}, nil)
		before, _ := song.UniqueID()

		_ = song.ApplyUserCorrection(map[Field]string{FieldArtist: "B"})
		song.SetLoveStatus(true, false)
		song.SetFlags(Flags{IsValid: true})

		after, _ := song.UniqueID()
		if before != after {
			t.Errorf("UniqueID() changed from %q to %q", before, after)
		}
	})
}

func TestSong_Equals(t *testing.T) {
	song := NewSong(SongData{Artist: "A", Track: "T"}, nil)
	var nilSong *Song

	tests := []struct {
		name     string
		other    any
		expected bool
	}{
		{"Same song", song, true},
		{"Same content", NewSong(SongData{Artist: "A", Track: "T"}, nil), true},
		{"Different content", NewSong(SongData{Artist: "A", Track: "Other"}, nil), false},
		{"Nil", nil, false},
		{"Nil song", nilSong, false},
		{"Not a song", "A — T", false},
		{"Struct without ID", struct{}{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := song.Equals(tt.other); got != tt.expected {
				t.Errorf("Equals() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSong_ArtistTrackString(t *testing.T) {
	tests := []struct {
		name     string
		data     SongData
		expected string
	}{
		{"Both present", SongData{Artist: "Artist", Track: "Track"}, "Artist — Track"},
		{"Missing artist", SongData{Track: "Track"}, ""},
		{"Missing track", SongData{Artist: "Artist"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSong(tt.data, nil).ArtistTrackString(); got != tt.expected {
				t.Errorf("ArtistTrackString() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSong_SetLoveStatus(t *testing.T) {
	type call struct {
		loved bool
		force bool
	}

	tests := []struct {
		name     string
		calls    []call
		expected LoveStatus
	}{
		{"No calls", nil, LoveUnknown},
		{"Loved", []call{{true, false}}, Loved},
		{"True then false", []call{{true, false}, {false, false}}, Unloved},
		{"False then true", []call{{false, false}, {true, false}}, Unloved},
		{"False then forced true", []call{{false, false}, {true, true}}, Loved},
		{"Forced false after loved", []call{{true, false}, {false, true}}, Unloved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := NewSong(SongData{}, nil)
			for _, c := range tt.calls {
				song.SetLoveStatus(c.loved, c.force)
			}
			if song.LoveStatus() != tt.expected {
				t.Errorf("LoveStatus() = %s, want %s", song.LoveStatus(), tt.expected)
			}
		})
	}
}

func TestSong_Reset(t *testing.T) {
	song := NewSong(SongData{Artist: "A", Track: "T"}, testConnector{label: "YouTube"})

	if song.Metadata().Label != "YouTube" {
		t.Errorf("Metadata().Label = %q, want the connector label", song.Metadata().Label)
	}

	_ = song.ApplyUserCorrection(map[Field]string{FieldArtist: "B"})
	song.SetLoveStatus(true, false)
	song.UpdateMetadata(func(m *Metadata) { m.UserPlayCount = 3 })

	song.ResetData()
	if song.Flags() != (Flags{}) {
		t.Errorf("Flags() = %+v, want all false", song.Flags())
	}
	if song.Metadata() != (Metadata{Label: "YouTube"}) {
		t.Errorf("Metadata() = %+v, want only the label", song.Metadata())
	}
	if song.Artist() != "B" {
		t.Errorf("ResetData() must not touch the processed layer, Artist() = %q", song.Artist())
	}

	song.SetFlags(Flags{IsValid: true})
	song.ResetInfo()
	if song.Artist() != "A" {
		t.Errorf("Artist() = %q after ResetInfo, want the parsed value", song.Artist())
	}
	if !song.Flags().IsValid {
		t.Error("ResetInfo() must not touch flags")
	}
}

func TestSong_CloneableData(t *testing.T) {
	song := NewSong(SongData{Artist: "A", Track: "T", Duration: 90}, testConnector{label: "SoundCloud"})
	_ = song.SetProcessed(FieldAlbum, "Album")
	song.SetLoveStatus(true, false)

	clone := song.CloneableData()
	clone.Parsed.Artist = "Changed"
	clone.Metadata.Label = "Changed"

	if song.Artist() != "A" || song.Metadata().Label != "SoundCloud" {
		t.Error("Mutating the clone must not affect the song")
	}

	payload, err := MarshalCloneable(song.CloneableData())
	if err != nil {
		t.Fatalf("MarshalCloneable() unexpected error: %v", err)
	}
	decoded, err := DecodeCloneable(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("DecodeCloneable() unexpected error: %v", err)
	}

	restored := NewSongFromCloneable(decoded, testConnector{label: "SoundCloud"})
	if !restored.Equals(song) {
		t.Error("Restored song should equal the original")
	}
	if restored.Album() != "Album" || restored.LoveStatus() != Loved || restored.Duration() != 90 {
		t.Errorf("Restored song lost data: %+v", restored.CloneableData())
	}
}

func TestSong_String(t *testing.T) {
	tests := []struct {
		name     string
		data     SongData
		expected string
	}{
		{"With album", SongData{Artist: "A", Track: "T", Album: "L"}, "A — T [L]"},
		{"Without album", SongData{Artist: "A", Track: "T"}, "A — T"},
		{"Empty", SongData{Track: "T"}, "<empty song>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSong(tt.data, nil).String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSongProperties(t *testing.T) {
	p := gopter.NewProperties(nil)

	p.Property("equality is reflexive", prop.ForAll(func(artist, track, id string) bool {
		song := NewSong(SongData{Artist: artist, Track: track, UniqueID: id}, nil)
		return song.Equals(song)
	}, gen.AlphaString(), gen.AlphaString(), gen.AlphaString()))

	p.Property("same data and same ID are equal", prop.ForAll(func(artist, track, id string) bool {
		data := SongData{Artist: artist, Track: track, UniqueID: id}
		return NewSong(data, nil).Equals(NewSong(data, nil))
	}, gen.Identifier(), gen.Identifier(), gen.Identifier()))

	p.Property("songs differing only in ID are not equal", prop.ForAll(func(artist, track, id string) bool {
		a := NewSong(SongData{Artist: artist, Track: track, UniqueID: id}, nil)
		b := NewSong(SongData{Artist: artist, Track: track, UniqueID: id + "x"}, nil)
		return !a.Equals(b)
	}, gen.Identifier(), gen.Identifier(), gen.Identifier()))

	p.Property("empty iff artist or track is missing", prop.ForAll(
		func(parsedArtist, parsedTrack, fixedArtist, fixedTrack string) bool {
			song := NewSong(SongData{Artist: parsedArtist, Track: parsedTrack}, nil)
			_ = song.SetProcessed(FieldArtist, fixedArtist)
			_ = song.SetProcessed(FieldTrack, fixedTrack)

			missing := (parsedArtist == "" && fixedArtist == "") || (parsedTrack == "" && fixedTrack == "")
			return song.IsEmpty() == missing
		},
		gen.OneConstOf("", "Artist"), gen.OneConstOf("", "Track"),
		gen.OneConstOf("", "Fixed Artist"), gen.OneConstOf("", "Fixed Track"),
	))

	p.Property("parsed duration wins over processed", prop.ForAll(func(parsed int, writes []int) bool {
		song := NewSong(SongData{Duration: parsed}, nil)
		for _, w := range writes {
			song.SetProcessedDuration(w)
		}
		return song.Duration() == parsed
	}, gen.IntRange(1, 36000), gen.SliceOf(gen.IntRange(-10, 36000))))

	p.TestingRun(t)
}
