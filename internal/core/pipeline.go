package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"nowplaying/pkg/musiclink"
	"nowplaying/pkg/text"
)

var (
	// ErrNotRecognized is returned when no normalizer found an artist or track.
	ErrNotRecognized = errors.New("no track recognized in source")
	// ErrUnsupportedSource is returned when no normalizer understands the source kind.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// SourceNormalizer turns a raw source into a draft record.
type SourceNormalizer interface {
	Normalize(src musiclink.Source) (musiclink.Result, error)
}

// SeenStore remembers song identities within a session.
type SeenStore interface {
	Seen(id string) bool
}

// Request is everything a page adapter reports about the current playback.
type Request struct {
	Source musiclink.Source
	Time   text.TimeInfo
	// UniqueID is a platform identifier for the track, when the page exposes one.
	UniqueID            string
	IsPlaying           bool
	IsPodcast           bool
	IsScrobblingAllowed bool
}

// Outcome is a Song built from a request.
type Outcome struct {
	Song *Song
	// Normalizer names the normalizer that recognized the source.
	Normalizer string
	// Seen is true when the same song was already processed in this session.
	Seen bool
}

// Pipeline builds songs from raw page data.
type Pipeline struct {
	normalizer SourceNormalizer
	seen       SeenStore
	logger     *zap.Logger
}

// NewPipeline creates a pipeline. seen may be nil to disable repeat detection.
func NewPipeline(normalizer SourceNormalizer, seen SeenStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		normalizer: normalizer,
		seen:       seen,
		logger:     logger,
	}
}

// NewPipelineFromConfig wires the built-in normalizers with the parser settings of cfg.
func NewPipelineFromConfig(cfg *Config, seen SeenStore, logger *zap.Logger) *Pipeline {
	return NewPipeline(musiclink.NewManager(cfg.Parser), seen, logger)
}

// Process normalizes the request source and wraps the result in a Song.
func (p *Pipeline) Process(ctx context.Context, req Request, connector Connector) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.normalizer.Normalize(req.Source)
	switch {
	case errors.Is(err, musiclink.ErrNoNormalizer):
		p.logger.Debug("No normalizer for source", zap.String("kind", string(req.Source.Kind)))
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedSource, req.Source.Kind)
	case err != nil:
		p.logger.Debug("Source not recognized",
			zap.String("kind", string(req.Source.EffectiveKind())),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNotRecognized, err)
	}

	data := songDataFromRequest(req, result.Info)
	song := NewSong(data, connector)

	outcome := &Outcome{
		Song:       song,
		Normalizer: result.Normalizer,
	}
	if id, ok := song.UniqueID(); ok && p.seen != nil {
		outcome.Seen = p.seen.Seen(id)
	}

	p.logger.Debug("Processed source",
		zap.String("normalizer", result.Normalizer),
		zap.String("artist", song.Artist()),
		zap.String("track", song.Track()),
		zap.String("album", song.Album()),
		zap.Bool("seen", outcome.Seen))

	return outcome, nil
}

func songDataFromRequest(req Request, info *musiclink.TrackInfo) SongData {
	data := SongData{
		UniqueID:            req.UniqueID,
		OriginURL:           text.CleanURL(req.Source.OriginURL),
		IsPlaying:           req.IsPlaying,
		IsPodcast:           req.IsPodcast,
		IsScrobblingAllowed: req.IsScrobblingAllowed,
	}
	if info != nil {
		data.Artist = info.Artist
		data.Track = info.Track
		data.Album = info.Album
		data.TrackArt = info.TrackArt
	}
	if req.Time.Duration != nil {
		data.Duration = *req.Time.Duration
	}
	if req.Time.CurrentTime != nil {
		data.CurrentTime = *req.Time.CurrentTime
	}
	return data
}
