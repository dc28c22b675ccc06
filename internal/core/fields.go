package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned when a field name is not in BaseFields.
	ErrUnknownField = errors.New("unknown song field")
	// ErrFieldNotProcessed is returned when a field has no slot in the processed layer.
	ErrFieldNotProcessed = errors.New("field cannot be set in the processed layer")
	// ErrFieldNotEditable is returned when a user correction names a field outside UserFields.
	ErrFieldNotEditable = errors.New("field cannot be corrected by the user")
)

// Field names one slot of the as-received song layer.
type Field string

const (
	FieldArtist              Field = "artist"
	FieldTrack               Field = "track"
	FieldAlbum               Field = "album"
	FieldAlbumArtist         Field = "albumArtist"
	FieldUniqueID            Field = "uniqueID"
	FieldOriginURL           Field = "originUrl"
	FieldTrackArt            Field = "trackArt"
	FieldDuration            Field = "duration"
	FieldCurrentTime         Field = "currentTime"
	FieldIsPlaying           Field = "isPlaying"
	FieldIsPodcast           Field = "isPodcast"
	FieldIsScrobblingAllowed Field = "isScrobblingAllowed"
)

// BaseFields lists every field that can be meaningful in the as-received layer.
var BaseFields = []Field{
	FieldArtist,
	FieldTrack,
	FieldAlbum,
	FieldAlbumArtist,
	FieldUniqueID,
	FieldOriginURL,
	FieldTrackArt,
	FieldDuration,
	FieldCurrentTime,
	FieldIsPlaying,
	FieldIsPodcast,
	FieldIsScrobblingAllowed,
}

// UserFields lists the fields a human correction may set.
var UserFields = []Field{
	FieldArtist,
	FieldTrack,
	FieldAlbum,
	FieldAlbumArtist,
}

// ParseField resolves a field name, ignoring case.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for _, field := range BaseFields {
		if strings.EqualFold(string(field), name) {
			return field, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsUserField reports whether field may be set by a user correction.
func IsUserField(field Field) bool {
	for _, f := range UserFields {
		if f == field {
			return true
		}
	}
	return false
}

// FillEmptyFields copies the named fields from source into target wherever the
// target field still holds its zero value. A nil source or an empty field list
// leaves target untouched. Unknown fields are ignored.
func FillEmptyFields(target, source *SongData, fields []Field) *SongData {
	if target == nil || source == nil {
		return target
	}

	for _, field := range fields {
		switch field {
		case FieldArtist:
			fillZero(&target.Artist, source.Artist)
		case FieldTrack:
			fillZero(&target.Track, source.Track)
		case FieldAlbum:
			fillZero(&target.Album, source.Album)
		case FieldAlbumArtist:
			fillZero(&target.AlbumArtist, source.AlbumArtist)
		case FieldUniqueID:
			fillZero(&target.UniqueID, source.UniqueID)
		case FieldOriginURL:
			fillZero(&target.OriginURL, source.OriginURL)
		case FieldTrackArt:
			fillZero(&target.TrackArt, source.TrackArt)
		case FieldDuration:
			fillZero(&target.Duration, source.Duration)
		case FieldCurrentTime:
			fillZero(&target.CurrentTime, source.CurrentTime)
		case FieldIsPlaying:
			fillZero(&target.IsPlaying, source.IsPlaying)
		case FieldIsPodcast:
			fillZero(&target.IsPodcast, source.IsPodcast)
		case FieldIsScrobblingAllowed:
			fillZero(&target.IsScrobblingAllowed, source.IsScrobblingAllowed)
		}
	}
	return target
}

func fillZero[T comparable](dst *T, src T) {
	var zero T
	if *dst == zero {
		*dst = src
	}
}
