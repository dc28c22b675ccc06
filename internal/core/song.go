package core

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// artistTrackSeparator joins artist and track in display strings.
	artistTrackSeparator = " — "
	// identitySeparator joins the parts of an identity key.
	identitySeparator = "\x1f"
)

// Connector is the page adapter a song was read from.
type Connector interface {
	Label() string
}

// SongData is the as-received layer of a song. Zero values mean the producer did not
// supply the field.
type SongData struct {
	Artist              string `json:"artist,omitempty"`
	Track               string `json:"track,omitempty"`
	Album               string `json:"album,omitempty"`
	AlbumArtist         string `json:"albumArtist,omitempty"`
	UniqueID            string `json:"uniqueID,omitempty"`
	OriginURL           string `json:"originUrl,omitempty"`
	TrackArt            string `json:"trackArt,omitempty"`
	Duration            int    `json:"duration,omitempty"`
	CurrentTime         int    `json:"currentTime,omitempty"`
	IsPlaying           bool   `json:"isPlaying,omitempty"`
	IsPodcast           bool   `json:"isPodcast,omitempty"`
	IsScrobblingAllowed bool   `json:"isScrobblingAllowed,omitempty"`
}

// ProcessedData is the sparse override layer written by correction and enrichment steps.
type ProcessedData struct {
	Artist      string `json:"artist,omitempty"`
	Track       string `json:"track,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"albumArtist,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

type Flags struct {
	IsValid           bool `json:"isValid"`
	IsCorrectedByUser bool `json:"isCorrectedByUser"`
	IsScrobbled       bool `json:"isScrobbled"`
	IsSkipped         bool `json:"isSkipped"`
	IsReplaying       bool `json:"isReplaying"`
	IsMarkedAsPlaying bool `json:"isMarkedAsPlaying"`
	IsAlbumFetched    bool `json:"isAlbumFetched"`
}

// LoveStatus is the user's loved state for a song.
type LoveStatus string

const (
	LoveUnknown LoveStatus = ""
	Loved       LoveStatus = "loved"
	Unloved     LoveStatus = "unloved"
)

func (l LoveStatus) String() string {
	if l == LoveUnknown {
		return "unknown"
	}
	return string(l)
}

// Metadata holds runtime-only data. It takes no part in identity.
type Metadata struct {
	TrackArtURL    string     `json:"trackArtUrl,omitempty"`
	NotificationID string     `json:"notificationId,omitempty"`
	Label          string     `json:"label,omitempty"`
	StartTimestamp int64      `json:"startTimestamp,omitempty"`
	UserLoved      LoveStatus `json:"userloved,omitempty"`
	ArtistURL      string     `json:"artistUrl,omitempty"`
	TrackURL       string     `json:"trackUrl,omitempty"`
	AlbumURL       string     `json:"albumUrl,omitempty"`
	UserPlayCount  int        `json:"userPlayCount,omitempty"`
}

// CloneableData is a self-contained copy of every song layer.
type CloneableData struct {
	Parsed    SongData      `json:"parsed"`
	Processed ProcessedData `json:"processed"`
	Flags     Flags         `json:"flags"`
	Metadata  Metadata      `json:"metadata"`
}

// Song is the canonical record of one playing track. Reads go through the accessors,
// which apply per-field precedence between the as-received and processed layers.
//
// A Song is not safe for concurrent use.
type Song struct {
	parsed    SongData
	processed ProcessedData
	flags     Flags
	metadata  Metadata
	connector Connector

	// contentID is derived from the parsed layer once, at construction.
	contentID string
}

// NewSong builds a song from as-received data. connector may be nil.
func NewSong(data SongData, connector Connector) *Song {
	s := &Song{
		parsed:    data,
		connector: connector,
	}
	s.contentID = s.computeID()
	s.ResetData()
	return s
}

// NewSongFromCloneable rebuilds a song from a CloneableData snapshot.
func NewSongFromCloneable(data CloneableData, connector Connector) *Song {
	s := &Song{
		parsed:    data.Parsed,
		processed: data.Processed,
		flags:     data.Flags,
		metadata:  data.Metadata,
		connector: connector,
	}
	s.contentID = s.computeID()
	return s
}

func (s *Song) computeID() string {
	if s.parsed.UniqueID != "" {
		return s.parsed.UniqueID
	}
	sum := sha1.Sum([]byte(identityKey(s.parsed.Artist, s.parsed.Track, s.parsed.Album)))
	return hex.EncodeToString(sum[:])
}

// identityKey folds case, composes Unicode and trims each part. Punctuation and inner
// spacing are kept, so differently written songs keep different identities.
func identityKey(parts ...string) string {
	folder := cases.Fold()
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = folder.String(norm.NFC.String(strings.TrimSpace(part)))
	}
	return strings.Join(normalized, identitySeparator)
}

func (s *Song) Artist() string {
	return firstNonEmpty(s.processed.Artist, s.parsed.Artist)
}

func (s *Song) Track() string {
	return firstNonEmpty(s.processed.Track, s.parsed.Track)
}

func (s *Song) Album() string {
	return firstNonEmpty(s.processed.Album, s.parsed.Album)
}

func (s *Song) AlbumArtist() string {
	return firstNonEmpty(s.processed.AlbumArtist, s.parsed.AlbumArtist)
}

// Duration returns the song length in seconds. The connector-reported duration wins
// over a processed one.
func (s *Song) Duration() int {
	if s.parsed.Duration != 0 {
		return s.parsed.Duration
	}
	return s.processed.Duration
}

// TrackArt returns the as-received artwork, then the artwork found by enrichment.
func (s *Song) TrackArt() string {
	return firstNonEmpty(s.parsed.TrackArt, s.metadata.TrackArtURL)
}

func (s *Song) OriginURL() string {
	return s.parsed.OriginURL
}

func (s *Song) CurrentTime() int {
	return s.parsed.CurrentTime
}

func (s *Song) IsPlaying() bool {
	return s.parsed.IsPlaying
}

// IsValid reports whether the song was confirmed valid or corrected by the user.
func (s *Song) IsValid() bool {
	return s.flags.IsCorrectedByUser || s.flags.IsValid
}

// IsEmpty reports whether artist or track is missing.
func (s *Song) IsEmpty() bool {
	return s.Artist() == "" || s.Track() == ""
}

// UniqueID returns the producer-supplied ID, or a hash of the normalized as-received
// artist, track and album. Empty songs have no ID.
func (s *Song) UniqueID() (string, bool) {
	if s.IsEmpty() {
		return "", false
	}
	return s.contentID, true
}

type identified interface {
	UniqueID() (string, bool)
}

// Equals compares unique IDs. Values that do not expose a unique ID are never equal.
func (s *Song) Equals(other any) bool {
	if s == nil || other == nil {
		return false
	}
	if song, ok := other.(*Song); ok && song == nil {
		return false
	}

	o, ok := other.(identified)
	if !ok {
		return false
	}

	id, hasID := s.UniqueID()
	otherID, otherHasID := o.UniqueID()
	return hasID == otherHasID && id == otherID
}

// ArtistTrackString returns "Artist — Track", or "" when either is missing.
func (s *Song) ArtistTrackString() string {
	if s.IsEmpty() {
		return ""
	}
	return s.Artist() + artistTrackSeparator + s.Track()
}

// SetLoveStatus records a loved state. Without force the status can only move towards
// unloved; force overwrites it.
func (s *Song) SetLoveStatus(loved, force bool) {
	if force || s.metadata.UserLoved == LoveUnknown {
		s.metadata.UserLoved = loveStatusOf(loved)
		return
	}
	if !loved {
		s.metadata.UserLoved = Unloved
	}
}

func (s *Song) LoveStatus() LoveStatus {
	return s.metadata.UserLoved
}

func loveStatusOf(loved bool) LoveStatus {
	if loved {
		return Loved
	}
	return Unloved
}

// ResetData clears flags and metadata. The connector label is restored.
func (s *Song) ResetData() {
	s.flags = Flags{}
	s.metadata = Metadata{}
	if s.connector != nil {
		s.metadata.Label = s.connector.Label()
	}
}

// ResetInfo drops every processed value so reads fall back to the as-received layer.
func (s *Song) ResetInfo() {
	s.processed = ProcessedData{}
}

// SetProcessed writes a string field of the processed layer. Empty values are ignored.
func (s *Song) SetProcessed(field Field, value string) error {
	var dst *string
	switch field {
	case FieldArtist:
		dst = &s.processed.Artist
	case FieldTrack:
		dst = &s.processed.Track
	case FieldAlbum:
		dst = &s.processed.Album
	case FieldAlbumArtist:
		dst = &s.processed.AlbumArtist
	default:
		return fmt.Errorf("%w: %s", ErrFieldNotProcessed, field)
	}

	if value != "" {
		*dst = value
	}
	return nil
}

// SetProcessedDuration writes the processed duration. Non-positive values are ignored.
func (s *Song) SetProcessedDuration(seconds int) {
	if seconds > 0 {
		s.processed.Duration = seconds
	}
}

// ApplyUserCorrection writes user-edited fields and marks the song as corrected.
// Nothing is written if any field is not editable.
func (s *Song) ApplyUserCorrection(values map[Field]string) error {
	for field := range values {
		if !IsUserField(field) {
			return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
		}
	}

	for field, value := range values {
		if err := s.SetProcessed(field, value); err != nil {
			return err
		}
	}
	s.flags.IsCorrectedByUser = true
	return nil
}

func (s *Song) Flags() Flags {
	return s.flags
}

func (s *Song) SetFlags(flags Flags) {
	s.flags = flags
}

func (s *Song) Metadata() Metadata {
	return s.metadata
}

// UpdateMetadata applies fn to the song's metadata.
func (s *Song) UpdateMetadata(fn func(*Metadata)) {
	fn(&s.metadata)
}

func (s *Song) Connector() Connector {
	return s.connector
}

// CloneableData returns a copy of every layer that shares no memory with the song.
func (s *Song) CloneableData() CloneableData {
	return CloneableData{
		Parsed:    s.parsed,
		Processed: s.processed,
		Flags:     s.flags,
		Metadata:  s.metadata,
	}
}

func (s *Song) String() string {
	if s.IsEmpty() {
		return "<empty song>"
	}
	if album := s.Album(); album != "" {
		return fmt.Sprintf("%s [%s]", s.ArtistTrackString(), album)
	}
	return s.ArtistTrackString()
}

// EncodeCloneable writes data as msgpack, keyed by the JSON field names.
func EncodeCloneable(w io.Writer, data CloneableData) error {
	return msgpack.NewEncoder(w).UseJSONTag(true).Encode(data)
}

// DecodeCloneable reads data written by EncodeCloneable.
func DecodeCloneable(r io.Reader) (CloneableData, error) {
	var data CloneableData
	err := msgpack.NewDecoder(r).UseJSONTag(true).Decode(&data)
	return data, err
}

// MarshalCloneable is EncodeCloneable into a byte slice.
func MarshalCloneable(data CloneableData) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCloneable(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
